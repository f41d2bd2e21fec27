//go:build !tinygo

package critical

// InterruptMask is a no-op on regular Go. Host builds that need real masking
// semantics use the simulated controller from the platform package.
type InterruptMask struct{}

func (InterruptMask) MaskAll() State { return 0 }
func (InterruptMask) Restore(State)  {}
