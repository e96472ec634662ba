package encoding

import (
	"testing"

	"github.com/stretchr/testify/require"

	iderr "github.com/aevon-lab/project-idmint/internal/core/errors"
	"github.com/aevon-lab/project-idmint/internal/core/idlayout"
)

func TestHashids_RoundTrip(t *testing.T) {
	c, err := NewHashids("deployment-salt", 0)
	require.NoError(t, err)

	ids := []uint64{
		0,
		1,
		660741,
		1 << 32,
		1<<32 - 1,
		idlayout.MustCompose(idlayout.MaxCounter, 511, 127),
		idlayout.MustCompose(123456789, 300, 64),
	}
	for _, id := range ids {
		s, err := c.Encode(id)
		require.NoError(t, err)
		require.NotEmpty(t, s)

		got, err := c.Decode(s)
		require.NoError(t, err)
		require.Equal(t, id, got, "encoded %q", s)
	}
}

func TestHashids_Deterministic(t *testing.T) {
	a, err := NewHashids("salt", 0)
	require.NoError(t, err)
	b, err := NewHashids("salt", 0)
	require.NoError(t, err)

	sa, err := a.Encode(660741)
	require.NoError(t, err)
	sb, err := b.Encode(660741)
	require.NoError(t, err)
	require.Equal(t, sa, sb)
}

func TestHashids_WrongSaltNeverDecodes(t *testing.T) {
	issuer, err := NewHashids("salt-a", 0)
	require.NoError(t, err)
	other, err := NewHashids("salt-b", 0)
	require.NoError(t, err)

	ids := []uint64{1, 660741, 2280915309995, idlayout.MustCompose(99, 42, 5), ^uint64(0)}
	for n := uint64(0); n < 20000; n++ {
		ids = append(ids, idlayout.MustCompose(n*7919+1, uint16(n%idlayout.ShardCount), uint8(n%idlayout.SlotCount)))
	}

	for _, id := range ids {
		s, err := issuer.Encode(id)
		require.NoError(t, err)

		got, err := other.Decode(s)
		require.ErrorIs(t, err, ErrUndecodable, "id %d encoded as %q decoded to %d under another salt", id, s, got)
	}
}

func TestHashids_TamperedTagIsUndecodable(t *testing.T) {
	c, err := NewHashids("salt", 0)
	require.NoError(t, err)

	// Same id halves, wrong tag: a well-formed hashids string that must still be rejected.
	forged, err := c.h.EncodeInt64([]int64{0, 660741, int64(c.tag(660741) ^ 1)})
	require.NoError(t, err)
	_, err = c.Decode(forged)
	require.ErrorIs(t, err, ErrUndecodable)

	// Two-component strings are not ids either.
	short, err := c.h.EncodeInt64([]int64{0, 660741})
	require.NoError(t, err)
	_, err = c.Decode(short)
	require.ErrorIs(t, err, ErrUndecodable)
}

func TestHashids_DifferentSaltsDifferentStrings(t *testing.T) {
	a, err := NewHashids("salt-one", 0)
	require.NoError(t, err)
	b, err := NewHashids("salt-two", 0)
	require.NoError(t, err)

	sa, _ := a.Encode(660741)
	sb, _ := b.Encode(660741)
	require.NotEqual(t, sa, sb)
}

func TestHashids_MinLength(t *testing.T) {
	c, err := NewHashids("salt", 12)
	require.NoError(t, err)

	s, err := c.Encode(1)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(s), 12)
}

func TestHashids_GarbageIsUndecodable(t *testing.T) {
	c, err := NewHashids("salt", 0)
	require.NoError(t, err)

	for _, s := range []string{"", "!!!", "0"} {
		_, err := c.Decode(s)
		require.ErrorIs(t, err, ErrUndecodable, "input %q", s)
	}
}

func TestNewHashids_EmptySaltIsConfigError(t *testing.T) {
	_, err := NewHashids("", 0)
	var cfgErr *iderr.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "generator.encoding_salt", cfgErr.Setting)
}
