package aclproxy

// Allocator is the external multi-buffer allocator a Recombination
// Buffer draws its contiguous storage from. Its implementation lives
// outside this component; per channel, the L2CAP channel manager
// supplies one via Channel.RxAllocator.
type Allocator interface {
	// Allocate returns a contiguous buffer of exactly size bytes, or
	// false if the allocator cannot satisfy a contiguous request of
	// that size right now.
	Allocate(size int) ([]byte, bool)
}

// Channel is the per-(handle, direction, cid) L2CAP channel the core
// delegates PDU dispatch to once a frame (fragmented or not) has been
// classified as belonging to a proxy-owned channel.
type Channel interface {
	// RxAllocator returns the allocator this channel's receive side
	// uses for recombination, or nil if the channel does not support
	// receiving fragmented PDUs.
	RxAllocator() Allocator

	// HandlePduFromController is invoked with the full L2CAP PDU
	// (header plus payload) for traffic moving controller-to-host. It
	// returns true if the channel accepted and consumed the PDU, false
	// if it did not; the core then forwards the original ACL frame of an
	// unfragmented PDU, and drops a recombined PDU entirely.
	HandlePduFromController(pdu []byte) bool

	// HandlePduFromHost is the host-to-controller counterpart of
	// HandlePduFromController.
	HandlePduFromHost(pdu []byte) bool
}

// SignalingChannel is the owned L2CAP signaling endpoint referenced by
// an ACL Connection Record. Its internals are external to this
// component; the core only needs to compare local CIDs.
type SignalingChannel interface {
	LocalCID() uint16
}

// ChannelManager is the external L2CAP channel registry the core
// delegates channel lookup and lifecycle notification to.
type ChannelManager interface {
	// FindChannelByLocalCid looks up the channel registered for the
	// given connection handle and local CID, direction FromController.
	FindChannelByLocalCid(handle uint16, cid uint16) (Channel, bool)

	// FindChannelByRemoteCid looks up the channel registered for the
	// given connection handle and remote CID, direction FromHost.
	FindChannelByRemoteCid(handle uint16, cid uint16) (Channel, bool)

	// HandleDisconnectionComplete notifies the manager that a
	// connection's channels should be torn down.
	HandleDisconnectionComplete(handle uint16)

	// DrainChannelQueues flushes any channel output that was queued
	// while credits were unavailable. Called after the core's lock is
	// released, since drained sends may re-enter credit reservation.
	DrainChannelQueues()

	// SetLEACLDataPacketLength publishes the LE ACL data packet length
	// learned from the LE Read Buffer Size event. A length of zero
	// means the controller shares buffers across transports, which
	// this component does not support; LE channels are expected to
	// stay quiescent in that case.
	SetLEACLDataPacketLength(n uint16)
}

// findChannel resolves the L2CAP channel for (handle, cid) in the given
// direction, delegating to the appropriate ChannelManager method.
func findChannel(mgr ChannelManager, handle uint16, cid uint16, dir Direction) (Channel, bool) {
	if dir == DirectionFromController {
		return mgr.FindChannelByLocalCid(handle, cid)
	}
	return mgr.FindChannelByRemoteCid(handle, cid)
}
