package issuance

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	v1 "github.com/aevon-lab/project-idmint/internal/api/v1"
	httperr "github.com/aevon-lab/project-idmint/internal/core/errors"
	"github.com/aevon-lab/project-idmint/internal/core/idlayout"
	"github.com/aevon-lab/project-idmint/internal/core/storage"
	"github.com/aevon-lab/project-idmint/internal/counter"
	"github.com/aevon-lab/project-idmint/internal/encoding"
	"github.com/aevon-lab/project-idmint/internal/server"
	"github.com/gin-gonic/gin"
)

const (
	msgIssueFailed   = "Failed to issue ids"
	msgInvalidJSON   = "Invalid JSON body"
	msgOwnership     = "Partition counter was modified by another writer"
	msgUndecodableID = "Id was not issued under this deployment's salt"
)

// issueError carries the structured HTTP error shape from a helper back to the handler.
type issueError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *issueError) Error() string {
	return e.message
}

// IssueHandler handles GET/POST /v1/ids?count=N[&numeric=true].
func (s *Service) IssueHandler(c *gin.Context) {
	alloc, ierr := s.issue(c)
	if ierr != nil {
		writeError(c, ierr)
		return
	}

	withNumeric := s.debug || queryBool(c, "numeric")

	if wantsProtobuf(c) {
		var numeric []uint64
		if withNumeric {
			numeric = alloc.IDs
		}
		c.Data(http.StatusOK, ContentTypeProtobuf, marshalIssueResponse(alloc.Encoded, numeric))
		return
	}

	resp := v1.IssueResponse{IDs: alloc.Encoded}
	if withNumeric {
		resp.NumericIDs = v1.FormatNumeric(alloc.IDs)
	}
	c.JSON(http.StatusOK, resp)
}

// DebugHandler handles GET /debug: the issue path plus slot and counter diagnostics.
func (s *Service) DebugHandler(c *gin.Context) {
	alloc, ierr := s.issue(c)
	if ierr != nil {
		writeError(c, ierr)
		return
	}
	c.JSON(http.StatusOK, v1.DebugResponse{
		Partition:       alloc.Partition,
		Shard:           alloc.Shard,
		Slot:            alloc.Slot,
		PreviousCounter: alloc.Previous,
		Counter:         alloc.Counter,
		IDs:             alloc.Encoded,
		NumericIDs:      v1.FormatNumeric(alloc.IDs),
	})
}

// DecodeHandler handles POST /debug/decode.
func (s *Service) DecodeHandler(c *gin.Context) {
	var req v1.DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ID) == "" {
		writeError(c, &issueError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpValidationError,
			message:    msgInvalidJSON,
		})
		return
	}
	if s.codec == nil {
		writeError(c, classify(&httperr.ConfigError{Setting: "generator.encoding_salt", Reason: "no encoding salt configured"}))
		return
	}

	id, err := s.codec.Decode(req.ID)
	if err != nil {
		status, errType := http.StatusInternalServerError, httperr.HttpInternalError
		if errors.Is(err, encoding.ErrUndecodable) {
			status, errType = http.StatusUnprocessableEntity, httperr.HttpUndecodableError
		}
		writeError(c, &issueError{statusCode: status, errorType: errType, message: msgUndecodableID})
		return
	}

	c.JSON(http.StatusOK, v1.DecodeResponse{
		ID:        req.ID,
		NumericID: strconv.FormatUint(id, 10),
		Parts:     idlayout.Decompose(id),
	})
}

// issue resolves the partition, parses count and runs one allocation.
func (s *Service) issue(c *gin.Context) (*counter.Allocation, *issueError) {
	partition, err := s.resolver.Resolve(c.Request)
	if err != nil {
		return nil, classify(err)
	}

	count, err := parseCount(countParam(c))
	if err != nil {
		return nil, classify(err)
	}

	alloc, err := s.issuer.Issue(c.Request.Context(), partition, count)
	if err != nil {
		ierr := classify(err)
		logFailure(c, partition, count, ierr, err)
		return nil, ierr
	}
	return alloc, nil
}

func countParam(c *gin.Context) string {
	if v := c.Query("count"); v != "" {
		return v
	}
	if c.Request.Method == http.MethodPost {
		return c.PostForm("count")
	}
	return ""
}

// parseCount reads an optional count. Absence means 1; range is checked by the issuer.
func parseCount(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &httperr.ValidationError{Field: "count", Reason: strconv.Quote(raw) + " is not an integer"}
	}
	return n, nil
}

func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}

func wantsProtobuf(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), ContentTypeProtobuf)
}

// classify maps domain errors to their HTTP shape. Messages of typed errors
// are surfaced verbatim; unexpected errors are not.
func classify(err error) *issueError {
	var (
		cfgErr *httperr.ConfigError
		valErr *httperr.ValidationError
		ovfErr *httperr.OverflowError
		asgErr *httperr.AssignmentError
	)
	switch {
	case errors.As(err, &valErr):
		return &issueError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpValidationError,
			message:    valErr.Error(),
			details:    map[string]interface{}{"field": valErr.Field},
		}
	case errors.As(err, &cfgErr):
		return &issueError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpConfigError,
			message:    cfgErr.Error(),
		}
	case errors.As(err, &ovfErr):
		return &issueError{
			statusCode: http.StatusInsufficientStorage,
			errorType:  httperr.HttpCounterOverflowError,
			message:    ovfErr.Error(),
			details: map[string]interface{}{
				"partition": ovfErr.Partition,
				"slot":      ovfErr.Slot,
				"current":   ovfErr.Current,
				"requested": ovfErr.Requested,
				"offending": ovfErr.Offending(),
			},
		}
	case errors.As(err, &asgErr):
		return &issueError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpShardAssignmentError,
			message:    asgErr.Error(),
			details:    map[string]interface{}{"shard": asgErr.Shard},
		}
	case errors.Is(err, storage.ErrConflict):
		return &issueError{
			statusCode: http.StatusConflict,
			errorType:  httperr.HttpOwnershipConflict,
			message:    msgOwnership,
		}
	default:
		return &issueError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgIssueFailed,
		}
	}
}

func logFailure(c *gin.Context, partition string, count int, ierr *issueError, err error) {
	attrs := []any{
		"request_id", c.GetString(server.RequestIDKey),
		"partition", partition,
		"count", count,
		"error_type", ierr.errorType,
		"error", err,
	}
	if ierr.statusCode >= http.StatusInternalServerError {
		slog.Error("[Issuance] Issue failed", attrs...)
		return
	}
	slog.Warn("[Issuance] Issue rejected", attrs...)
}

// writeError serializes an issueError as the JSON HTTP response.
func writeError(c *gin.Context, err *issueError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
