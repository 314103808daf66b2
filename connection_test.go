package aclproxy

import "testing"

func TestConnectionStartRecombinationRejectsActiveSlot(t *testing.T) {
	c := newConnection(1, TransportLE)
	alloc := &fakeAllocator{}
	if err := c.startRecombination(DirectionFromController, alloc, 10); err != nil {
		t.Fatalf("first StartRecombination failed: %v", err)
	}
	err := c.startRecombination(DirectionFromController, alloc, 10)
	var aerr *Error
	if !asError(err, &aerr) || aerr.Code != CodeFailedPrecondition {
		t.Fatalf("err = %v, want FailedPrecondition", err)
	}
}

func TestConnectionRecombineFragmentLifecycle(t *testing.T) {
	c := newConnection(1, TransportLE)
	alloc := &fakeAllocator{}
	if err := c.startRecombination(DirectionFromController, alloc, 10); err != nil {
		t.Fatal(err)
	}
	if !c.recombinationActive(DirectionFromController) {
		t.Fatal("expected recombination active after Start")
	}

	outcome, pdu := c.recombineFragment(DirectionFromController, []byte{1, 2, 3, 4})
	if outcome != recombineEmpty || pdu != nil {
		t.Fatalf("first write: outcome=%v pdu=%v, want empty/nil", outcome, pdu)
	}
	if !c.recombinationActive(DirectionFromController) {
		t.Fatal("expected recombination still active mid-accumulation")
	}

	outcome, pdu = c.recombineFragment(DirectionFromController, []byte{5, 6, 7, 8, 9, 10})
	if outcome != recombineFullPdu {
		t.Fatalf("final write: outcome=%v, want full pdu", outcome)
	}
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if string(pdu) != string(want) {
		t.Fatalf("pdu = %v, want %v", pdu, want)
	}
	if c.recombinationActive(DirectionFromController) {
		t.Fatal("expected recombination cleared after completion")
	}
}

func TestConnectionRecombineFragmentOverflow(t *testing.T) {
	c := newConnection(1, TransportLE)
	alloc := &fakeAllocator{}
	c.startRecombination(DirectionFromController, alloc, 4)
	outcome, _ := c.recombineFragment(DirectionFromController, []byte{1, 2, 3, 4, 5})
	if outcome != recombineError {
		t.Fatalf("outcome = %v, want error on overflow", outcome)
	}
}

func TestConnectionEndRecombinationIdempotent(t *testing.T) {
	c := newConnection(1, TransportLE)
	c.endRecombination(DirectionFromHost)
	c.endRecombination(DirectionFromHost)
	if c.recombinationActive(DirectionFromHost) {
		t.Fatal("expected no active recombination")
	}

	alloc := &fakeAllocator{}
	c.startRecombination(DirectionFromHost, alloc, 4)
	c.endRecombination(DirectionFromHost)
	c.endRecombination(DirectionFromHost)
	if c.recombinationActive(DirectionFromHost) {
		t.Fatal("expected recombination cleared and staying cleared")
	}
}

func TestConnectionTableCapacityAndDuplicate(t *testing.T) {
	table := newConnectionTable(2)
	if err := table.insert(newConnection(1, TransportBrEdr)); err != nil {
		t.Fatal(err)
	}
	if err := table.insert(newConnection(2, TransportBrEdr)); err != nil {
		t.Fatal(err)
	}
	err := table.insert(newConnection(3, TransportBrEdr))
	var aerr *Error
	if !asError(err, &aerr) || aerr.Code != CodeResourceExhausted {
		t.Fatalf("err = %v, want ResourceExhausted", err)
	}

	err = table.insert(newConnection(1, TransportBrEdr))
	if !asError(err, &aerr) || aerr.Code != CodeAlreadyExists {
		t.Fatalf("err = %v, want AlreadyExists", err)
	}
}

func TestConnectionTableRemoveAndReset(t *testing.T) {
	table := newConnectionTable(2)
	table.insert(newConnection(1, TransportBrEdr))
	if _, ok := table.remove(1); !ok {
		t.Fatal("expected remove to find handle 1")
	}
	if _, ok := table.find(1); ok {
		t.Fatal("expected handle 1 gone after remove")
	}

	table.insert(newConnection(2, TransportBrEdr))
	table.reset()
	if table.len() != 0 {
		t.Fatalf("len() = %d after reset, want 0", table.len())
	}
}

func TestConnectionSignalingChannelLookup(t *testing.T) {
	c := newConnection(1, TransportBrEdr)
	c.leuSignalingChannel = fakeSignalingChannel(0x40)
	c.acluSignalingChannel = fakeSignalingChannel(0x41)

	if got := c.signalingChannelFor(0x40); got == nil || got.LocalCID() != 0x40 {
		t.Fatalf("signalingChannelFor(0x40) = %v, want leu channel", got)
	}
	if got := c.signalingChannelFor(0x41); got == nil || got.LocalCID() != 0x41 {
		t.Fatalf("signalingChannelFor(0x41) = %v, want aclu channel", got)
	}
	if got := c.signalingChannelFor(0x42); got != nil {
		t.Fatalf("signalingChannelFor(0x42) = %v, want nil", got)
	}
}

type fakeSignalingChannel uint16

func (f fakeSignalingChannel) LocalCID() uint16 { return uint16(f) }
