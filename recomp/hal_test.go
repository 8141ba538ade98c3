package recomp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Reading the packed status byte always yields bit 5 set, matching the
// unused bit the real 6502 always reads back as 1.
func TestTestHalReadStatusBit5Always(t *testing.T) {
	h := NewTestHal()
	require.Equal(t, byte(0x20), h.ReadStatus()&0x20)
	h.WriteStatus(0x00)
	require.Equal(t, byte(0x20), h.ReadStatus()&0x20)
}

// push followed by pop yields the pushed byte and leaves SP unchanged,
// including the SP=0x00 and SP=0xFF wrap boundaries.
func TestTestHalPushPopRoundTrip(t *testing.T) {
	for _, startSP := range []byte{0x00, 0xFF, 0x80, 0x01} {
		h := NewTestHal()
		h.WriteSP(startSP)
		h.Push(0x42)
		got := h.Pop()
		require.Equal(t, byte(0x42), got)
		require.Equal(t, startSP, h.ReadSP())
	}
}

// Zero-page-wrap addressing: Memory(base=0xFF, Some(X), wrap=true) with
// X=2 reads [0x01], not [0x101] — zero-page indexed addressing never
// crosses into page one.
func TestMemoryOperandZeroPageWrap(t *testing.T) {
	h := NewTestHal()
	h.WriteMemory(0x01, 0x77)
	h.WriteMemory(0x101, 0x88)
	idx := RegX
	op := MemoryOperand{Base: 0xFF, Index: &idx, ZeroPageWrap: true}
	h.WriteRegister(RegX, 2)
	require.Equal(t, uint16(0x01), effectiveAddress(op, h))
	require.Equal(t, byte(0x77), readOperand(op, h, nil))
}

func TestFlagReadWriteRoundTrip(t *testing.T) {
	h := NewTestHal()
	for _, f := range []Flag{FlagC, FlagZ, FlagI, FlagD, FlagB, FlagV, FlagN} {
		h.WriteFlag(f, true)
		require.True(t, h.ReadFlag(f))
		h.WriteFlag(f, false)
		require.False(t, h.ReadFlag(f))
	}
}
