// Package v1 holds the wire types of the public and internal HTTP API.
package v1

import (
	"strconv"

	"github.com/aevon-lab/project-idmint/internal/core/idlayout"
)

// IssueResponse is the body of a successful GET/POST /v1/ids.
type IssueResponse struct {
	// IDs are the encoded ids, newest first.
	IDs []string `json:"ids"`

	// NumericIDs are the composed 64-bit ids as decimal strings, so that
	// JavaScript clients do not lose precision above 2^53. Present only when
	// requested or in debug mode.
	NumericIDs []string `json:"numeric_ids,omitempty"`
}

// DebugResponse is the operator-only diagnostic payload of GET /debug.
type DebugResponse struct {
	Partition       string   `json:"partition"`
	Shard           uint16   `json:"shard"`
	Slot            uint8    `json:"slot"`
	PreviousCounter uint64   `json:"previous_counter"`
	Counter         uint64   `json:"counter"`
	IDs             []string `json:"ids"`
	NumericIDs      []string `json:"numeric_ids"`
}

// DecodeRequest is the body of POST /debug/decode.
type DecodeRequest struct {
	ID string `json:"id"`
}

// DecodeResponse reports the numeric id behind an encoded id and its fields.
type DecodeResponse struct {
	ID        string         `json:"id"`
	NumericID string         `json:"numeric_id"`
	Parts     idlayout.Parts `json:"parts"`
}

// AllocateShardResponse is the body of POST /internal/v1/shards/allocate.
type AllocateShardResponse struct {
	ShardID uint64 `json:"shard_id"`
}

// FormatNumeric renders composed ids as decimal strings.
func FormatNumeric(ids []uint64) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatUint(id, 10)
	}
	return out
}
