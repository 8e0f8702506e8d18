package utils

// Guard runs a cleanup when a function that acquires resources returns early with an error,
// e.g. closing an already started provider when a sink fails to open:
//
//	guard := NewGuard(func() { provider.Close(ctx) })
//	defer guard.OnFail()
//	if err != nil { return err }
//	guard.Success()
type Guard struct {
	OnFail  func()
	success bool
}

// NewGuard returns a Guard that calls onFailCleanup from OnFail unless Success was called.
func NewGuard(onFailCleanup func()) *Guard {
	ret := &Guard{}
	ret.OnFail = func() {
		if !ret.success {
			onFailCleanup()
		}
	}
	return ret
}

// Success declares the function succeeded and the cleanup does not need to run.
func (guard *Guard) Success() {
	guard.success = true
}
