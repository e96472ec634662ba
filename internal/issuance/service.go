package issuance

import (
	"context"

	"github.com/aevon-lab/project-idmint/internal/counter"
	"github.com/aevon-lab/project-idmint/internal/encoding"
	"github.com/gin-gonic/gin"
)

// Issuer is the partition actor surface the handlers need.
type Issuer interface {
	Issue(ctx context.Context, partition string, count int) (*counter.Allocation, error)
	MaxCount() int
}

type Service struct {
	issuer   Issuer
	codec    encoding.Codec
	resolver PartitionResolver
	debug    bool
}

// NewService wires the HTTP boundary. codec may be nil when no salt is
// configured; decode calls then fail with a ConfigError like issue calls do.
func NewService(issuer Issuer, codec encoding.Codec, resolver PartitionResolver, debug bool) *Service {
	if issuer == nil {
		panic("issuance: issuer must not be nil")
	}
	if resolver == nil {
		resolver = GeoResolver{}
	}
	return &Service{
		issuer:   issuer,
		codec:    codec,
		resolver: resolver,
		debug:    debug,
	}
}

// RegisterRoutes registers the issuance routes. Diagnostic routes exist only in debug mode.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/ids", s.IssueHandler)
	r.POST("/v1/ids", s.IssueHandler)

	if s.debug {
		r.GET("/debug", s.DebugHandler)
		r.POST("/debug/decode", s.DecodeHandler)
	}
}
