package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	v1 "github.com/aevon-lab/project-idmint/internal/api/v1"
	"github.com/aevon-lab/project-idmint/internal/core/config"
	iderr "github.com/aevon-lab/project-idmint/internal/core/errors"
	"github.com/aevon-lab/project-idmint/internal/core/idlayout"
	"github.com/aevon-lab/project-idmint/internal/encoding"
)

func testConfig(storageType, path string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, Host: "127.0.0.1", Mode: "release"},
		Generator: config.GeneratorConfig{
			MaxCount:     8192,
			EncodingSalt: "app-test-salt",
			ShardMode:    "authority",
			IdleTimeout:  "1m",
			MailboxSize:  16,
		},
		Storage: config.StorageConfig{
			Type:          storageType,
			Path:          path,
			Fsync:         "always",
			FsyncInterval: "5ms",
		},
		Authority: config.AuthorityConfig{Mode: "local", Timeout: "2s"},
	}
}

func issue(t *testing.T, a *App, query string, headers map[string]string) v1.IssueResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/ids"+query, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body v1.IssueResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

func TestBuild_MemoryServesIDs(t *testing.T) {
	a, err := Build(context.Background(), testConfig("memory", ""))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	body := issue(t, a, "?count=5", nil)
	require.Len(t, body.IDs, 5)

	resp := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestBuild_PebbleResumesAfterRestart(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig("pebble", dir)
	codec, err := encoding.NewHashids(cfg.Generator.EncodingSalt, 0)
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for round := 0; round < 2; round++ {
		a, err := Build(context.Background(), cfg)
		require.NoError(t, err)

		for _, s := range issue(t, a, "?count=50", nil).IDs {
			_, dup := seen[s]
			require.False(t, dup, "id %s issued twice", s)
			seen[s] = struct{}{}

			id, err := codec.Decode(s)
			require.NoError(t, err)
			require.Equal(t, uint16(0), idlayout.Decompose(id).Shard)
		}
		require.NoError(t, a.Close())
	}
	require.Len(t, seen, 100)
}

func TestBuild_RefusesSchemeChange(t *testing.T) {
	dir := t.TempDir()

	a, err := Build(context.Background(), testConfig("pebble", dir))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	cfg := testConfig("pebble", dir)
	cfg.Generator.ShardMode = "hash"
	_, err = Build(context.Background(), cfg)
	var cfgErr *iderr.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "generator.shard_mode", cfgErr.Setting)
}

func TestBuild_NoSaltStillStarts(t *testing.T) {
	cfg := testConfig("memory", "")
	cfg.Generator.EncodingSalt = ""
	a, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	resp := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/v1/ids", nil))
	require.Equal(t, http.StatusInternalServerError, resp.Code)

	var errResp iderr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, iderr.HttpConfigError, errResp.ErrorType)
}

func TestBuild_RemoteAuthorityUsesExposedPeer(t *testing.T) {
	peerCfg := testConfig("memory", "")
	peerCfg.Authority.Expose = true
	peer, err := Build(context.Background(), peerCfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = peer.Close() })

	ts := httptest.NewServer(peer.Server.Engine)
	t.Cleanup(ts.Close)

	// Consume shard 0 on the peer itself.
	issue(t, peer, "", nil)

	cfg := testConfig("memory", "")
	cfg.Authority = config.AuthorityConfig{Mode: "remote", URL: ts.URL, Timeout: "2s"}
	a, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	codec, err := encoding.NewHashids(cfg.Generator.EncodingSalt, 0)
	require.NoError(t, err)

	body := issue(t, a, "", map[string]string{"X-Geo-Country": "JP"})
	id, err := codec.Decode(body.IDs[0])
	require.NoError(t, err)
	require.Equal(t, uint16(1), idlayout.Decompose(id).Shard)
}

func TestBuild_UnknownStorage(t *testing.T) {
	_, err := Build(context.Background(), testConfig("cassandra", ""))
	var cfgErr *iderr.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "storage.type", cfgErr.Setting)
}
