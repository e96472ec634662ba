package sharder

import (
	"log/slog"
	"net/http"

	v1 "github.com/aevon-lab/project-idmint/internal/api/v1"
	httperr "github.com/aevon-lab/project-idmint/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// Service exposes an Authority to peer nodes.
type Service struct {
	authority Authority
}

func NewService(a Authority) *Service {
	if a == nil {
		panic("sharder: authority must not be nil")
	}
	return &Service{authority: a}
}

// RegisterRoutes registers the internal allocation route.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST(AllocatePath, s.AllocateHandler)
}

// AllocateHandler handles POST /internal/v1/shards/allocate.
func (s *Service) AllocateHandler(c *gin.Context) {
	shard, err := s.authority.Allocate(c.Request.Context())
	if err != nil {
		slog.Error("[Sharder] Allocation failed", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpShardAssignmentError,
			Message:   "Failed to allocate shard",
		})
		return
	}
	c.JSON(http.StatusOK, v1.AllocateShardResponse{ShardID: shard})
}
