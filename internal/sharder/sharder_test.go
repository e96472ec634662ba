package sharder

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/aevon-lab/project-idmint/internal/actor"
	"github.com/aevon-lab/project-idmint/internal/core/storage"
	"github.com/aevon-lab/project-idmint/internal/core/storage/memory"
	shardermocks "github.com/aevon-lab/project-idmint/internal/mocks/sharder"
)

func newLocal(t *testing.T, store storage.NextShardStore) *Local {
	t.Helper()
	l := NewLocal(store, actor.Options{})
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestLocal_AllocatesSequentiallyFromZero(t *testing.T) {
	store := memory.New()
	l := newLocal(t, store)

	for want := uint64(0); want < 3; want++ {
		got, err := l.Allocate(context.Background())
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	next, err := store.LoadNextShard(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(3), next)
}

func TestLocal_ResumesFromPersistedNext(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.StoreNextShard(context.Background(), 0, 41))

	got, err := newLocal(t, store).Allocate(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(41), got)
}

func TestLocal_ConcurrentCallsNeverShareAValue(t *testing.T) {
	l := newLocal(t, memory.New())

	const callers = 300
	var (
		mu   sync.Mutex
		seen = make(map[uint64]int)
	)
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			v, err := l.Allocate(ctx)
			if err != nil {
				return err
			}
			mu.Lock()
			seen[v]++
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Len(t, seen, callers)
	for v := uint64(0); v < callers; v++ {
		require.Equal(t, 1, seen[v], "value %d", v)
	}
}

// conflictingStore simulates a second writer moving the sequence underneath the authority.
type conflictingStore struct{}

func (conflictingStore) LoadNextShard(context.Context) (uint64, error) { return 5, nil }
func (conflictingStore) StoreNextShard(context.Context, uint64, uint64) error {
	return storage.ErrConflict
}

func TestLocal_ConflictIsSurfaced(t *testing.T) {
	_, err := newLocal(t, conflictingStore{}).Allocate(context.Background())
	require.ErrorIs(t, err, storage.ErrConflict)
}

func TestRemote_RoundTripThroughService(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	NewService(newLocal(t, memory.New())).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	remote := NewRemote(srv.URL+"/", time.Second)
	for want := uint64(0); want < 3; want++ {
		got, err := remote.Allocate(context.Background())
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestService_AllocateFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authority := shardermocks.NewAuthority(t)
	authority.EXPECT().
		Allocate(mock.Anything).
		Return(uint64(0), errors.New("store unavailable")).
		Once()

	r := gin.New()
	NewService(authority).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, AllocatePath, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	require.Contains(t, resp.Body.String(), "shard_assignment_error")
}

func TestRemote_HTTPErrorIsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewRemote(srv.URL, time.Second).Allocate(context.Background())
	require.ErrorContains(t, err, "http 503")
}
