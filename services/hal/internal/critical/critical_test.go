package critical

import (
	"testing"

	"isrcell-go/errcode"
)

// fakeMask models a single global interrupt-enable bit.
type fakeMask struct {
	enabled  bool
	disables int
	restores int
}

func (m *fakeMask) MaskAll() State {
	m.disables++
	prev := m.enabled
	m.enabled = false
	if prev {
		return 1
	}
	return 0
}

func (m *fakeMask) Restore(s State) {
	m.restores++
	m.enabled = s == 1
}

func TestRunMasksAndRestores(t *testing.T) {
	m := &fakeMask{enabled: true}
	ex := New(m)

	ex.Run(func(tok Token) {
		if m.enabled {
			t.Fatal("interrupts enabled inside section")
		}
		if !tok.Valid() {
			t.Fatal("token invalid inside its own section")
		}
	})
	if !m.enabled {
		t.Fatal("interrupts not re-enabled after section")
	}
	if ex.Depth() != 0 {
		t.Fatalf("depth = %d after exit", ex.Depth())
	}
}

func TestNestedSectionsRestoreOriginalState(t *testing.T) {
	for _, initial := range []bool{true, false} {
		m := &fakeMask{enabled: initial}
		ex := New(m)

		var nest func(n int)
		nest = func(n int) {
			if n == 0 {
				return
			}
			ex.Run(func(Token) {
				nest(n - 1)
				// The inner exit must not have re-enabled anything.
				if m.enabled {
					t.Fatalf("interrupts re-enabled by inner section at depth %d", ex.Depth())
				}
			})
		}
		nest(5)

		if m.enabled != initial {
			t.Fatalf("initial=%v: mask after nesting = %v", initial, m.enabled)
		}
		if m.disables != 5 || m.restores != 5 {
			t.Fatalf("disables=%d restores=%d, want 5/5", m.disables, m.restores)
		}
	}
}

func TestPanicInsideNestedSectionRestoresMask(t *testing.T) {
	m := &fakeMask{enabled: true}
	ex := New(m)

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		ex.Run(func(Token) {
			ex.Run(func(Token) {
				ex.Run(func(Token) { panic("boom") })
			})
		})
	}()

	if !m.enabled {
		t.Fatal("mask left disabled after panic")
	}
	if ex.Depth() != 0 {
		t.Fatalf("depth = %d after panic unwind", ex.Depth())
	}
}

func TestStaleAndForgedTokens(t *testing.T) {
	ex := New(&fakeMask{enabled: true})

	var kept Token
	ex.Run(func(tok Token) { kept = tok })
	if kept.Valid() {
		t.Fatal("token valid after its section closed")
	}

	// A token from an earlier section stays stale even while a new one is open.
	ex.Run(func(Token) {
		if kept.Valid() {
			t.Fatal("stale token revived by a later section")
		}
	})

	for name, tok := range map[string]Token{"zero": {}, "stale": kept} {
		func() {
			defer func() {
				if r := recover(); r != errcode.NoCriticalSection {
					t.Fatalf("%s token: recover = %v, want %v", name, r, errcode.NoCriticalSection)
				}
			}()
			tok.Check()
		}()
	}
}

func TestDoReturnsValue(t *testing.T) {
	ex := New(&fakeMask{enabled: true})
	got := Do(ex, func(Token) int { return 42 })
	if got != 42 {
		t.Fatalf("Do = %d, want 42", got)
	}
}

type countingProbe struct{ enters, exits, maxDepth uint32 }

func (p *countingProbe) Enter(d uint32) {
	p.enters++
	if d > p.maxDepth {
		p.maxDepth = d
	}
}
func (p *countingProbe) Exit(uint32) { p.exits++ }

func TestProbeSeesEveryLevel(t *testing.T) {
	ex := New(&fakeMask{enabled: true})
	p := &countingProbe{}
	ex.SetProbe(p)
	ex.Run(func(Token) { ex.Run(func(Token) {}) })
	if p.enters != 2 || p.exits != 2 || p.maxDepth != 2 {
		t.Fatalf("probe = %+v", *p)
	}
}
