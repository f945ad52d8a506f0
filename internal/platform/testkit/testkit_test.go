package testkit

import "testing"

func TestMustPanic(t *testing.T) {
	t.Parallel()
	MustPanic(t, func() { panic("boom") })
}

func TestMustNotPanic(t *testing.T) {
	t.Parallel()
	MustNotPanic(t, func() {})
}

func TestMustContain(t *testing.T) {
	t.Parallel()
	MustContain(t, "[HS_DIAG] attempt outcome=OK", "outcome=OK")
}

func TestMustApprox(t *testing.T) {
	t.Parallel()
	MustApprox(t, 0.1+0.2, 0.3, 1e-9)
}
