package recomp

// Hal is the capability contract generated code uses to touch CPU state and
// memory. The core assumes nothing about its implementation beyond these
// operations; memory mirroring, MMIO, and device side effects are entirely
// the Hal's concern.
type Hal interface {
	ReadRegister(r Register) byte
	WriteRegister(r Register, v byte)

	ReadFlag(f Flag) bool
	WriteFlag(f Flag, v bool)

	// ReadStatus returns the packed P byte with bit 5 always set.
	ReadStatus() byte
	// WriteStatus replaces P, preserving the bit-5-always-1 invariant.
	WriteStatus(v byte)

	ReadSP() byte
	WriteSP(v byte)

	ReadMemory(addr uint16) byte
	// WriteMemory reports whether this write landed inside a region the
	// Hal considers compiled-code-bearing; the driver reads this signal
	// back via PollRecompile.
	WriteMemory(addr uint16, v byte) (dirtiedCode bool)

	Push(v byte)
	Pop() byte

	// PollRecompile reports whether a write observed since the last poll
	// requires invalidating compiled methods.
	PollRecompile() bool
	// DirtyRange returns the address range the most recent code-dirtying
	// write touched, consumed by the driver to conservatively invalidate
	// every registered method whose source span overlaps it. A bare
	// "something changed" bool isn't enough for the driver to know which
	// methods to drop, so this extension supplies the address range that
	// decision needs.
	DirtyRange() (lo, hi uint16)

	// PollInterrupt returns 0 if no interrupt is pending, otherwise the
	// vector address whose pointer should be loaded and jumped to.
	PollInterrupt() uint16

	// TriggerSoftwareInterrupt is the BRK convenience hook.
	TriggerSoftwareInterrupt()
}

// TestHal is the reference Hal implementation: a 64 KiB memory array plus a
// flag bitfield plus SP. Structurally grounded on the teacher's
// Cpu6502/SF6502 pairing in nes/cpu.go, generalized so CPU state and memory
// live behind the Hal interface instead of being read directly by opcode
// handlers.
type TestHal struct {
	a, x, y byte
	sp      byte
	status  byte // bit layout: N V 1 B D I Z C

	mem [0x10000]byte

	dirty        bool
	dirtyLo      uint16
	dirtyHi      uint16
	codeLo       uint16
	codeHi       uint16
	haveCodeSpan bool

	pendingVector uint16
}

// NewTestHal returns a TestHal with status bit 5 set, matching the
// always-1 invariant, and all other state zeroed.
func NewTestHal() *TestHal {
	return &TestHal{status: 0x20}
}

// SetCodeSpan marks [lo, hi] (inclusive) as the address range WriteMemory
// treats as compiled-code-bearing, for exercising PollRecompile/DirtyRange
// in tests without a real method table.
func (h *TestHal) SetCodeSpan(lo, hi uint16) {
	h.codeLo, h.codeHi = lo, hi
	h.haveCodeSpan = true
}

func flagBit(f Flag) byte {
	switch f {
	case FlagC:
		return 0
	case FlagZ:
		return 1
	case FlagI:
		return 2
	case FlagD:
		return 3
	case FlagB:
		return 4
	case FlagV:
		return 6
	case FlagN:
		return 7
	default:
		return 0
	}
}

func (h *TestHal) ReadRegister(r Register) byte {
	switch r {
	case RegA:
		return h.a
	case RegX:
		return h.x
	case RegY:
		return h.y
	default:
		return 0
	}
}

func (h *TestHal) WriteRegister(r Register, v byte) {
	switch r {
	case RegA:
		h.a = v
	case RegX:
		h.x = v
	case RegY:
		h.y = v
	}
}

func (h *TestHal) ReadFlag(f Flag) bool {
	return h.status&(1<<flagBit(f)) != 0
}

func (h *TestHal) WriteFlag(f Flag, v bool) {
	bit := byte(1) << flagBit(f)
	if v {
		h.status |= bit
	} else {
		h.status &^= bit
	}
	h.status |= 0x20
}

func (h *TestHal) ReadStatus() byte {
	return h.status | 0x20
}

func (h *TestHal) WriteStatus(v byte) {
	h.status = v | 0x20
}

func (h *TestHal) ReadSP() byte { return h.sp }

func (h *TestHal) WriteSP(v byte) { h.sp = v }

func (h *TestHal) ReadMemory(addr uint16) byte {
	return h.mem[addr]
}

func (h *TestHal) WriteMemory(addr uint16, v byte) bool {
	h.mem[addr] = v
	if h.haveCodeSpan && addr >= h.codeLo && addr <= h.codeHi {
		h.dirty = true
		h.dirtyLo, h.dirtyHi = addr, addr
		return true
	}
	return false
}

func (h *TestHal) Push(v byte) {
	h.mem[0x0100|uint16(h.sp)] = v
	h.sp--
}

func (h *TestHal) Pop() byte {
	h.sp++
	return h.mem[0x0100|uint16(h.sp)]
}

func (h *TestHal) PollRecompile() bool {
	d := h.dirty
	h.dirty = false
	return d
}

func (h *TestHal) DirtyRange() (uint16, uint16) {
	return h.dirtyLo, h.dirtyHi
}

func (h *TestHal) PollInterrupt() uint16 {
	v := h.pendingVector
	h.pendingVector = 0
	return v
}

// RaiseInterrupt arms PollInterrupt to return vector on its next call, for
// tests exercising PollForInterruptStmt.
func (h *TestHal) RaiseInterrupt(vector uint16) {
	h.pendingVector = vector
}

func (h *TestHal) TriggerSoftwareInterrupt() {
	h.pendingVector = 0xFFFE // IRQ/BRK vector
}
