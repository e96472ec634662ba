package sharder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	v1 "github.com/aevon-lab/project-idmint/internal/api/v1"
)

// AllocatePath is the internal route a node hosting the Local authority serves.
const AllocatePath = "/internal/v1/shards/allocate"

// Remote calls the authority hosted by a peer node.
type Remote struct {
	url    string
	client *http.Client
}

// NewRemote creates a client for the node at baseURL, e.g. "http://sharder:8080".
func NewRemote(baseURL string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Remote{
		url:    strings.TrimRight(baseURL, "/") + AllocatePath,
		client: &http.Client{Timeout: timeout},
	}
}

// Allocate asks the peer for the next shard id. A failed call may still have
// consumed a value on the peer; the caller then asks again and the lost value
// is never used.
func (r *Remote) Allocate(ctx context.Context) (uint64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("shard authority %s: %w", r.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("shard authority %s: http %d", r.url, resp.StatusCode)
	}

	var out v1.AllocateShardResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("shard authority %s: invalid response: %w", r.url, err)
	}
	return out.ShardID, nil
}
