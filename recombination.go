package aclproxy

// recombinationBuffer accumulates fragment bytes for one (connection,
// direction) slot until targetSize bytes have been written, at which
// point the contiguous storage holds one complete L2CAP PDU (header
// included).
type recombinationBuffer struct {
	storage    []byte
	targetSize int
	written    int
}

// createRecombinationBuffer allocates a contiguous region of exactly
// size bytes from alloc. It fails if the allocator cannot satisfy a
// contiguous request of that size; contiguity is required so the
// completed PDU can later be handed to the L2CAP channel as a single
// span with no further copying.
func createRecombinationBuffer(alloc Allocator, size int) (*recombinationBuffer, bool) {
	storage, ok := alloc.Allocate(size)
	if !ok {
		return nil, false
	}
	return &recombinationBuffer{storage: storage, targetSize: size}, true
}

// write appends data to the buffer. It fails with CodeInvalidArgument
// (OutOfRange in the design this mirrors) if the write would exceed
// targetSize.
func (b *recombinationBuffer) write(data []byte) error {
	if b.written+len(data) > b.targetSize {
		return errorf(CodeInvalidArgument, "recombination buffer overflow: written=%d add=%d target=%d", b.written, len(data), b.targetSize)
	}
	copy(b.storage[b.written:], data)
	b.written += len(data)
	return nil
}

// isComplete reports whether every byte of the target has been written.
func (b *recombinationBuffer) isComplete() bool {
	return b.written == b.targetSize
}

// take yields the completed contiguous buffer. The caller must not
// write through b afterward.
func (b *recombinationBuffer) take() []byte {
	return b.storage[:b.written]
}
