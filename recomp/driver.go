package recomp

// Driver owns the table of compiled methods keyed by 6502 entry address
// and routes JSR/JMP/RTS/interrupt transitions between them. The core is
// single-threaded and cooperative: a Driver holds an exclusive reference
// to its Hal for the duration of a top-level Invoke, and its method table
// is mutated only from that call stack.
type Driver struct {
	methods map[uint16]*Method

	// expectedReturns tracks the return address each still-active JSR is
	// waiting for, nearest-first. JMP-shaped CallMethod statements leave
	// this stack untouched — JMP is a tail transfer, not a call — so a
	// chain of tail JMPs after a JSR still resolves against that JSR's
	// expectation when the eventual RTS fires.
	expectedReturns []uint16
}

// NewDriver returns an empty Driver.
func NewDriver() *Driver {
	return &Driver{methods: make(map[uint16]*Method)}
}

// Register adds method under addr. Re-registering an address replaces the
// previous method, supporting the recompilation-poll protocol's lazy
// invalidate-then-relift cycle.
func (d *Driver) Register(addr uint16, m *Method) {
	d.methods[addr] = m
}

// Unregister removes any method at addr.
func (d *Driver) Unregister(addr uint16) {
	delete(d.methods, addr)
}

// MethodAddrs returns every currently-registered entry address. Exposed
// for a host wishing to serialise the method table to an external artifact;
// this module defines the hook only, not a format.
func (d *Driver) MethodAddrs() []uint16 {
	addrs := make([]uint16, 0, len(d.methods))
	for addr := range d.methods {
		addrs = append(addrs, addr)
	}
	return addrs
}

// Invoke runs the method registered at addr against h, failing with
// ErrUnmappedTarget if none is registered.
func (d *Driver) Invoke(addr uint16, h Hal) error {
	m, ok := d.methods[addr]
	if !ok {
		return UnmappedTargetError(addr)
	}
	return m.Run(d, h)
}

func (d *Driver) pushExpectedReturn(addr uint16) {
	d.expectedReturns = append(d.expectedReturns, addr)
}

func (d *Driver) popExpectedReturn() {
	if len(d.expectedReturns) == 0 {
		return
	}
	d.expectedReturns = d.expectedReturns[:len(d.expectedReturns)-1]
}

func (d *Driver) peekExpectedReturn() (uint16, bool) {
	if len(d.expectedReturns) == 0 {
		return 0, false
	}
	return d.expectedReturns[len(d.expectedReturns)-1], true
}

// invalidateOverlapping unregisters every method whose source span
// overlaps the Hal's most recently reported dirty write — conservative,
// since a single written byte could belong to any statement in a method
// that read or covered it. Invalidated entries are only removed; the
// driver does not re-lift them, and invoking a removed address fails with
// ErrUnmappedTarget until a new method is registered there.
func (d *Driver) invalidateOverlapping(h Hal) {
	lo, hi := h.DirtyRange()
	for addr, m := range d.methods {
		if m.Overlaps(lo, hi) {
			delete(d.methods, addr)
		}
	}
}
