package aclproxy

// SendCredit is a scoped reservation of exactly one credit against a
// transport's CreditPool. It is move-only: copying a SendCredit would
// let the release hook run twice, so every constructor below returns a
// pointer and callers must pass that pointer onward rather than
// dereference-and-copy it.
//
// Exactly one of Release or MarkUsed must be called before a SendCredit
// goes out of scope. Go has no destructors, so unlike the RAII handle
// this type mirrors, that obligation is not enforced by the language —
// it is enforced by ACLDataChannel always calling one or the other on
// every exit path of ReserveSendCredit's callers.
type SendCredit struct {
	transport Transport
	release   func()
	used      bool
}

// newSendCredit builds a live SendCredit for transport t whose release
// hook is release.
func newSendCredit(t Transport, release func()) *SendCredit {
	return &SendCredit{transport: t, release: release}
}

// Transport returns the transport this credit was reserved against.
func (c *SendCredit) Transport() Transport {
	return c.transport
}

// MarkUsed consumes the credit: it clears the release hook so that a
// later Release is a no-op. Callers invoke this only after irrevocably
// handing the packet to the controller and incrementing the
// connection's num_pending_packets. Calling MarkUsed twice, or calling
// it after Release, is a fatal precondition violation — both indicate a
// bookkeeping bug in the caller, not a runtime condition to recover
// from.
func (c *SendCredit) MarkUsed() {
	if c.used {
		panic("aclproxy: SendCredit.MarkUsed called on an already-terminated credit")
	}
	c.used = true
	c.release = nil
}

// Release runs the credit's release hook, returning the reservation to
// its pool, unless the credit has already been consumed via MarkUsed
// or already released. It is idempotent by construction: once used is
// true the hook is gone, so a second Release call is a safe no-op, not
// a panic — this lets a caller always call Release in a deferred
// cleanup without tracking whether MarkUsed already ran on a different
// path.
func (c *SendCredit) Release() {
	if c.used {
		return
	}
	c.used = true
	if c.release != nil {
		c.release()
		c.release = nil
	}
}
