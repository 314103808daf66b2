package aclproxy

import "testing"

func TestSendCreditReleaseRunsHookOnce(t *testing.T) {
	calls := 0
	c := newSendCredit(TransportBrEdr, func() { calls++ })
	c.Release()
	c.Release()
	if calls != 1 {
		t.Fatalf("release hook called %d times, want 1", calls)
	}
}

func TestSendCreditMarkUsedSuppressesRelease(t *testing.T) {
	calls := 0
	c := newSendCredit(TransportBrEdr, func() { calls++ })
	c.MarkUsed()
	c.Release()
	if calls != 0 {
		t.Fatalf("release hook called after MarkUsed, want 0 calls")
	}
}

func TestSendCreditDoubleMarkUsedPanics(t *testing.T) {
	c := newSendCredit(TransportBrEdr, func() {})
	c.MarkUsed()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on double MarkUsed")
		}
	}()
	c.MarkUsed()
}

func TestSendCreditTransport(t *testing.T) {
	c := newSendCredit(TransportLE, func() {})
	if c.Transport() != TransportLE {
		t.Fatalf("Transport() = %v, want LE", c.Transport())
	}
}
