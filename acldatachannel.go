package aclproxy

import (
	"sync"

	"github.com/DaBs/aclproxy/wire"
)

// FrameSink is the downstream target an ACLDataChannel forwards raw HCI
// frames and events to: the host side or the controller side of the
// proxy, depending on direction.
type FrameSink interface {
	Forward(frame []byte)
}

// FrameSinkFunc adapts a plain function to a FrameSink.
type FrameSinkFunc func(frame []byte)

// Forward calls f.
func (f FrameSinkFunc) Forward(frame []byte) { f(frame) }

// ACLDataChannel owns the credit pools and connection table, processes
// incoming HCI events, classifies and routes ACL data frames, and
// exposes the send path used by L2CAP. It is the single point of
// synchronization for all of that state: one mutex guards both credit
// pools, the connection table, and every record's recombination state.
type ACLDataChannel struct {
	mu    sync.Mutex
	pools [numTransports]*CreditPool
	table *connectionTable

	channelManager ChannelManager
	toHost         FrameSink
	toController   FrameSink
}

// NewACLDataChannel constructs a channel with the given per-transport
// reservation targets and connection-table capacity. toReserveBrEdr and
// toReserveLE are the desired reservations, fixed for the lifetime of
// the channel; actual reservations are granted later, once, by the
// matching Read Buffer Size events.
func NewACLDataChannel(toReserveBrEdr, toReserveLE, tableCapacity int, channelManager ChannelManager, toHost, toController FrameSink) *ACLDataChannel {
	d := &ACLDataChannel{
		table:          newConnectionTable(tableCapacity),
		channelManager: channelManager,
		toHost:         toHost,
		toController:   toController,
	}
	d.pools[TransportBrEdr] = NewCreditPool(toReserveBrEdr)
	d.pools[TransportLE] = NewCreditPool(toReserveLE)
	return d
}

// Reset zeroes both credit pools and empties the connection table. It
// must be called before any Reserve re-initialization, since Reserve
// panics if called twice without an intervening Reset.
func (d *ACLDataChannel) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.pools {
		p.Reset()
	}
	d.table.reset()
}

// ProcessReadBufferSizeCommandCompleteEvent extracts the BR/EDR
// total_num_acl_data_packets field, reserves the proxy's share, and
// rewrites the field in place to the host's remaining share. Like the LE
// buffer-size methods below, and unlike the Handle* event methods and
// ProcessDisconnectionCompleteEvent, it does not forward the event
// itself — the event is mutated in place and propagates by ordinary
// forwarding outside this component, once the caller observes this
// call returned without error.
func (d *ACLDataChannel) ProcessReadBufferSizeCommandCompleteEvent(event []byte) error {
	view := wire.NewReadBufferSizeCommandCompleteView(event)
	total, err := view.TotalNumACLDataPacketsWErr()
	if err != nil {
		GetLogger().Warnf("aclproxy: malformed read buffer size command complete: %v", err)
		return wrapError(CodeInvalidArgument, err, "read buffer size command complete")
	}

	d.mu.Lock()
	hostMax := d.pools[TransportBrEdr].Reserve(int(total))
	d.mu.Unlock()

	if err := view.SetTotalNumACLDataPacketsWErr(uint16(hostMax)); err != nil {
		GetLogger().Errorf("aclproxy: could not rewrite total_num_acl_data_packets: %v", err)
	}
	d.channelManager.DrainChannelQueues()
	return nil
}

// processLEReadBufferSizeCommandCompleteEvent implements both the V1
// and V2 LE Read Buffer Size command complete handling; the two differ
// only in trailing ISO fields this component does not read.
func (d *ACLDataChannel) processLEReadBufferSizeCommandCompleteEvent(event []byte) error {
	view := wire.NewLEReadBufferSizeCommandCompleteView(event)
	total, err := view.TotalNumLEACLDataPacketsWErr()
	if err != nil {
		GetLogger().Warnf("aclproxy: malformed le read buffer size command complete: %v", err)
		return wrapError(CodeInvalidArgument, err, "le read buffer size command complete")
	}
	length, err := view.LEACLDataPacketLengthWErr()
	if err != nil {
		GetLogger().Warnf("aclproxy: malformed le read buffer size command complete: %v", err)
		return wrapError(CodeInvalidArgument, err, "le read buffer size command complete")
	}

	d.mu.Lock()
	hostMax := d.pools[TransportLE].Reserve(int(total))
	d.mu.Unlock()

	if err := view.SetTotalNumLEACLDataPacketsWErr(uint8(hostMax)); err != nil {
		GetLogger().Errorf("aclproxy: could not rewrite total_num_le_acl_data_packets: %v", err)
	}
	if length == 0 {
		GetLogger().Warnf("aclproxy: le_acl_data_packet_length is 0: shared buffers not yet supported, LE channels will remain non-functional")
	}
	d.channelManager.SetLEACLDataPacketLength(length)
	d.channelManager.DrainChannelQueues()
	return nil
}

// ProcessLEReadBufferSizeV1CommandCompleteEvent handles the V1 form of
// the LE Read Buffer Size command complete event.
func (d *ACLDataChannel) ProcessLEReadBufferSizeV1CommandCompleteEvent(event []byte) error {
	return d.processLEReadBufferSizeCommandCompleteEvent(event)
}

// ProcessLEReadBufferSizeV2CommandCompleteEvent handles the V2 form of
// the LE Read Buffer Size command complete event.
func (d *ACLDataChannel) ProcessLEReadBufferSizeV2CommandCompleteEvent(event []byte) error {
	return d.processLEReadBufferSizeCommandCompleteEvent(event)
}

// HandleNumberOfCompletedPacketsEvent reclaims proxy-originated credits
// reported complete by the controller, rewriting each pair's count down
// to the residual that belongs to host traffic. If every pair was fully
// reclaimed the event is suppressed; otherwise the rewritten event is
// forwarded to the host.
func (d *ACLDataChannel) HandleNumberOfCompletedPacketsEvent(packet []byte) {
	view := wire.NewNumberOfCompletedPacketsView(packet)
	numHandles, err := view.NumHandlesWErr()
	if err != nil {
		GetLogger().Warnf("aclproxy: malformed number of completed packets event: %v", err)
		d.toHost.Forward(packet)
		return
	}

	anyReclaimed := false
	anyResidual := false

	d.mu.Lock()
	for i := 0; i < int(numHandles); i++ {
		handle, herr := view.ConnectionHandleWErr(i)
		count, cerr := view.NumCompletedPacketsWErr(i)
		if herr != nil || cerr != nil {
			anyResidual = true
			break
		}
		if count == 0 {
			continue
		}
		c, ok := d.table.find(handle)
		if !ok {
			anyResidual = true
			continue
		}
		reclaimed := count
		if int(reclaimed) > c.numPendingPackets {
			reclaimed = uint16(c.numPendingPackets)
		}
		if reclaimed > 0 {
			c.numPendingPackets -= int(reclaimed)
			d.pools[c.transport].MarkCompleted(int(reclaimed))
			anyReclaimed = true
		}
		residual := count - reclaimed
		_ = view.SetNumCompletedPacketsWErr(i, residual)
		if residual > 0 {
			anyResidual = true
		}
	}
	d.mu.Unlock()

	if anyReclaimed {
		d.channelManager.DrainChannelQueues()
	}
	if anyResidual {
		d.toHost.Forward(packet)
	}
}

func (d *ACLDataChannel) createConnectionOnSuccess(handle uint16, status uint8, transport Transport) {
	if status != wire.StatusSuccess {
		return
	}
	d.mu.Lock()
	err := d.table.insert(newConnection(handle, transport))
	d.mu.Unlock()
	if err != nil {
		GetLogger().Warnf("aclproxy: could not create connection record for handle 0x%04x transport %s: %v", handle, transport, err)
	}
}

// HandleConnectionCompleteEvent handles a BR/EDR Connection Complete
// event: on parse success and status SUCCESS, creates a connection
// record. The event is always forwarded to the host, regardless of
// outcome.
func (d *ACLDataChannel) HandleConnectionCompleteEvent(event []byte) {
	view := wire.NewConnectionCompleteView(event)
	if status, err := view.StatusWErr(); err == nil {
		if handle, herr := view.ConnectionHandleWErr(); herr == nil {
			d.createConnectionOnSuccess(handle, status, TransportBrEdr)
		}
	} else {
		GetLogger().Warnf("aclproxy: malformed connection complete event: %v", err)
	}
	d.toHost.Forward(event)
}

// HandleLeConnectionCompleteEvent handles an LE Connection Complete
// subevent, creating an LE connection record on success.
func (d *ACLDataChannel) HandleLeConnectionCompleteEvent(event []byte) {
	view := wire.NewLEConnectionCompleteView(event)
	if status, err := view.StatusWErr(); err == nil {
		if handle, herr := view.ConnectionHandleWErr(); herr == nil {
			d.createConnectionOnSuccess(handle, status, TransportLE)
		}
	} else {
		GetLogger().Warnf("aclproxy: malformed le connection complete event: %v", err)
	}
	d.toHost.Forward(event)
}

func (d *ACLDataChannel) handleLeEnhancedConnectionComplete(event []byte) {
	view := wire.NewLEEnhancedConnectionCompleteView(event)
	if status, err := view.StatusWErr(); err == nil {
		if handle, herr := view.ConnectionHandleWErr(); herr == nil {
			d.createConnectionOnSuccess(handle, status, TransportLE)
		}
	} else {
		GetLogger().Warnf("aclproxy: malformed le enhanced connection complete event: %v", err)
	}
	d.toHost.Forward(event)
}

// HandleLeEnhancedConnectionCompleteV1Event handles the V1 LE Enhanced
// Connection Complete subevent.
func (d *ACLDataChannel) HandleLeEnhancedConnectionCompleteV1Event(event []byte) {
	d.handleLeEnhancedConnectionComplete(event)
}

// HandleLeEnhancedConnectionCompleteV2Event handles the V2 LE Enhanced
// Connection Complete subevent.
func (d *ACLDataChannel) HandleLeEnhancedConnectionCompleteV2Event(event []byte) {
	d.handleLeEnhancedConnectionComplete(event)
}

// ProcessDisconnectionCompleteEvent locates and destroys the connection
// record named by a successful Disconnection Complete event, releasing
// any credits still pending for it and notifying the L2CAP channel
// manager. On a failure status the record is retained; a warning is
// logged if packets were in flight.
func (d *ACLDataChannel) ProcessDisconnectionCompleteEvent(span []byte) {
	view := wire.NewDisconnectionCompleteView(span)
	status, err := view.StatusWErr()
	if err != nil {
		GetLogger().Warnf("aclproxy: malformed disconnection complete event: %v", err)
		d.toHost.Forward(span)
		return
	}
	handle, herr := view.ConnectionHandleWErr()
	if herr != nil {
		GetLogger().Warnf("aclproxy: malformed disconnection complete event: %v", herr)
		d.toHost.Forward(span)
		return
	}

	var erased bool

	d.mu.Lock()
	c, ok := d.table.find(handle)
	if status == wire.StatusSuccess {
		if ok {
			if c.numPendingPackets > 0 {
				d.pools[c.transport].MarkCompleted(c.numPendingPackets)
			}
			d.table.remove(handle)
			erased = true
		}
	} else if ok && c.numPendingPackets > 0 {
		GetLogger().Warnf("aclproxy: disconnection failed (status=0x%02x) for handle 0x%04x with %d packets still pending", status, handle, c.numPendingPackets)
	}
	d.mu.Unlock()

	if erased {
		d.channelManager.HandleDisconnectionComplete(handle)
	}
	d.toHost.Forward(span)
}

// HasSendAclCapability reports whether the controller has granted any
// reservation for transport.
func (d *ACLDataChannel) HasSendAclCapability(transport Transport) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pools[transport].HasSendCapability()
}

// GetNumFreeAclPackets returns the number of credits not currently
// pending for transport.
func (d *ACLDataChannel) GetNumFreeAclPackets(transport Transport) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pools[transport].Available()
}

// ReserveSendCredit reserves exactly one credit against transport's
// pool, returning a SendCredit bound to a release hook that returns the
// reservation on drop. It fails with ResourceExhausted if the pool has
// no credits available.
func (d *ACLDataChannel) ReserveSendCredit(transport Transport) (*SendCredit, error) {
	d.mu.Lock()
	err := d.pools[transport].MarkPending(1)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return newSendCredit(transport, func() {
		d.mu.Lock()
		d.pools[transport].MarkCompleted(1)
		d.mu.Unlock()
	}), nil
}

// SendAcl consumes credit and forwards packet to the controller on
// behalf of the connection it names. The credit auto-releases on any
// failure path.
func (d *ACLDataChannel) SendAcl(packet []byte, credit *SendCredit) error {
	view := wire.NewACLHeaderView(packet)
	if err := view.HeaderFitsWErr(); err != nil {
		credit.Release()
		return wrapError(CodeInvalidArgument, err, "send acl: malformed header")
	}
	handle := view.Handle()

	d.mu.Lock()
	c, ok := d.table.find(handle)
	if !ok {
		d.mu.Unlock()
		credit.Release()
		return newError(CodeNotFound)
	}
	if credit.Transport() != c.transport {
		d.mu.Unlock()
		credit.Release()
		return newError(CodeInvalidArgument)
	}
	credit.MarkUsed()
	c.numPendingPackets++
	d.mu.Unlock()

	d.toController.Forward(packet)
	return nil
}

// FindSignalingChannel returns the connection's signaling channel for
// handle, provided its local CID matches localCID; otherwise nil.
func (d *ACLDataChannel) FindSignalingChannel(handle uint16, localCID uint16) SignalingChannel {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.table.find(handle)
	if !ok {
		return nil
	}
	return c.signalingChannelFor(localCID)
}

// AclDataOutcome describes what HandleACLData did with a frame, for
// callers (and tests) that need to observe the classification result
// rather than just its side effects.
type AclDataOutcome struct {
	// Forwarded is true if the original frame was sent on unmodified.
	Forwarded bool
	// Consumed is true if the frame (or the PDU it completed) was
	// delivered to an L2CAP channel, quietly absorbed as part of an
	// in-progress recombination, or discarded as a malformed L2CAP frame
	// or on recombination overflow.
	Consumed bool
	// Dropped is true if the target channel rejected a PDU after its
	// recombination completed. Frames discarded as malformed or on
	// recombination overflow are reported as Consumed, not Dropped.
	Dropped bool
	// Pdu is the full L2CAP PDU delivered to a channel, set only when
	// Consumed is true and delivery reached a channel (as opposed to
	// being absorbed mid-recombination).
	Pdu []byte
}

// forwardSinkFor returns the FrameSink an ACL frame traveling in dir
// should be forwarded to when classification decides to pass it
// through untouched.
func (d *ACLDataChannel) forwardSinkFor(dir Direction) FrameSink {
	if dir == DirectionFromController {
		return d.toHost
	}
	return d.toController
}

// aclClassification is the locked portion's verdict on an ACL frame.
type aclClassification int

const (
	clsForward aclClassification = iota
	clsConsumedNoDispatch
	clsDispatch
)

// classifyLocked implements the frame classification algorithm. It
// must be called with d.mu held; it never forwards or dispatches
// itself — it only decides what the caller should do once the lock is
// released.
func (d *ACLDataChannel) classifyLocked(dir Direction, handle uint16, boundary uint8, payload []byte) (cls aclClassification, l2capPdu []byte, isFragment bool) {
	c, ok := d.table.find(handle)
	if !ok {
		return clsForward, nil, false
	}

	switch boundary {
	case wire.PbfContinuingFragment:
		if !c.recombinationActive(dir) {
			return clsForward, nil, false
		}
		isFragment = true

	case wire.PbfFirstNonFlushable, wire.PbfFirstFlushable:
		if c.recombinationActive(dir) {
			GetLogger().Warnf("aclproxy: dropping partially recombined pdu on handle 0x%04x dir %s: new first fragment arrived", handle, dir)
			c.endRecombination(dir)
		}
		if len(payload) < wire.BasicL2capHeaderSize {
			return clsForward, nil, false
		}
		hdr := wire.NewBasicL2capHeaderView(payload)
		cid, err := hdr.ChannelIDWErr()
		if err != nil {
			return clsForward, nil, false
		}
		channel, found := findChannel(d.channelManager, handle, cid, dir)
		if !found {
			return clsForward, nil, false
		}
		pduLen, _ := hdr.PduLengthWErr()
		l2capFrameLength := wire.BasicL2capHeaderSize + int(pduLen)
		aclPayloadSize := len(payload)

		switch {
		case l2capFrameLength < aclPayloadSize:
			GetLogger().Warnf("aclproxy: malformed l2cap frame on handle 0x%04x: frame length %d < acl payload %d", handle, l2capFrameLength, aclPayloadSize)
			return clsConsumedNoDispatch, nil, false
		case l2capFrameLength == aclPayloadSize:
			return clsDispatch, payload, false
		default:
			alloc := channel.RxAllocator()
			if alloc == nil {
				return clsForward, nil, false
			}
			if err := c.startRecombination(dir, alloc, l2capFrameLength); err != nil {
				return clsForward, nil, false
			}
			isFragment = true
		}

	default:
		GetLogger().Warnf("aclproxy: unrecognized boundary flag 0x%x on handle 0x%04x", boundary, handle)
		return clsForward, nil, false
	}

	outcome, pdu := c.recombineFragment(dir, payload)
	switch outcome {
	case recombineError:
		GetLogger().Warnf("aclproxy: recombination overflow on handle 0x%04x dir %s, dropping pdu", handle, dir)
		c.endRecombination(dir)
		return clsConsumedNoDispatch, nil, false
	case recombineFullPdu:
		return clsDispatch, pdu, true
	default:
		return clsConsumedNoDispatch, nil, false
	}
}

// HandleACLData classifies an ACL frame traveling in dir and routes it:
// consumed by recombination, dispatched to an L2CAP channel, or
// forwarded to the opposite side unchanged. All parsing, connection
// lookup, and recombination happen under the lock; forwarding and
// channel dispatch happen after it is released, so that a channel's
// HandlePdu* call (which may itself call back into ReserveSendCredit)
// never reenters the lock.
func (d *ACLDataChannel) HandleACLData(dir Direction, frame []byte) AclDataOutcome {
	view := wire.NewACLHeaderView(frame)
	if err := view.HeaderFitsWErr(); err != nil {
		d.forwardSinkFor(dir).Forward(frame)
		return AclDataOutcome{Forwarded: true}
	}
	handle := view.Handle()
	boundary := view.BoundaryFlag()
	payload := view.Payload()

	d.mu.Lock()
	cls, l2capPdu, isFragment := d.classifyLocked(dir, handle, boundary, payload)
	d.mu.Unlock()

	switch cls {
	case clsForward:
		d.forwardSinkFor(dir).Forward(frame)
		return AclDataOutcome{Forwarded: true}
	case clsConsumedNoDispatch:
		return AclDataOutcome{Consumed: true}
	}

	hdr := wire.NewBasicL2capHeaderView(l2capPdu)
	cid, err := hdr.ChannelIDWErr()
	if err != nil {
		GetLogger().Errorf("aclproxy: could not re-parse recombined pdu header on handle 0x%04x: %v", handle, err)
		d.forwardSinkFor(dir).Forward(frame)
		return AclDataOutcome{Forwarded: true}
	}
	channel, found := findChannel(d.channelManager, handle, cid, dir)
	if !found {
		if isFragment {
			GetLogger().Errorf("aclproxy: channel for handle 0x%04x cid 0x%04x vanished mid-recombination", handle, cid)
		}
		d.forwardSinkFor(dir).Forward(frame)
		return AclDataOutcome{Forwarded: true}
	}

	var consumed bool
	if dir == DirectionFromController {
		consumed = channel.HandlePduFromController(l2capPdu)
	} else {
		consumed = channel.HandlePduFromHost(l2capPdu)
	}

	if consumed {
		return AclDataOutcome{Consumed: true, Pdu: l2capPdu}
	}
	if isFragment {
		GetLogger().Warnf("aclproxy: channel rejected recombined pdu on handle 0x%04x cid 0x%04x; unsupported, dropping", handle, cid)
		return AclDataOutcome{Dropped: true}
	}
	d.forwardSinkFor(dir).Forward(frame)
	return AclDataOutcome{Forwarded: true}
}
