package counter

import (
	"crypto/rand"
	"fmt"

	"github.com/aevon-lab/project-idmint/internal/core/idlayout"
)

// SlotSource draws the slot for one request.
type SlotSource interface {
	Slot() (uint8, error)
}

// CryptoSlots draws slots uniformly from crypto/rand.
type CryptoSlots struct{}

func (CryptoSlots) Slot() (uint8, error) {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("failed to draw slot: %w", err)
	}
	return b[0] & uint8(idlayout.MaxSlot), nil
}
