package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aevon-lab/project-idmint/internal/encoding"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompose(t *testing.T) {
	out, err := run(t, "compose", "10", "42", "5")
	require.NoError(t, err)
	require.Equal(t, "660741\n", out)

	_, err = run(t, "compose", "10", "512", "5")
	require.Error(t, err)
}

func TestDecode(t *testing.T) {
	t.Setenv("IDMINT_GENERATOR__ENCODING_SALT", "cli-salt")
	codec, err := encoding.NewHashids("cli-salt", 0)
	require.NoError(t, err)
	s, err := codec.Encode(660741)
	require.NoError(t, err)

	out, err := run(t, "decode", s)
	require.NoError(t, err)
	require.Equal(t, "id=660741 counter=10 shard=42 slot=5\n", out)
}

func TestConfigShow_RedactsSecrets(t *testing.T) {
	t.Setenv("IDMINT_GENERATOR__ENCODING_SALT", "very-secret")
	out, err := run(t, "config", "show")
	require.NoError(t, err)
	require.NotContains(t, out, "very-secret")
	require.True(t, strings.Contains(out, "<redacted>"))
}

func TestMigrate_RequiresPostgres(t *testing.T) {
	_, err := run(t, "migrate", "version")
	require.ErrorContains(t, err, "postgres")
}
