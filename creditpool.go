package aclproxy

// CreditPool tracks, for one transport, how many of the controller's
// ACL buffer slots the proxy has reserved for its own outbound traffic
// and how many of those are currently in flight.
//
// CreditPool holds no lock of its own; callers serialize access under
// the owning ACLDataChannel's mutex.
type CreditPool struct {
	toReserve     int
	proxyMax      int
	proxyPending  int
	reserved      bool
}

// NewCreditPool constructs a pool with the given desired reservation.
// proxyMax stays zero until Reserve is called.
func NewCreditPool(toReserve int) *CreditPool {
	return &CreditPool{toReserve: toReserve}
}

// Reserve is called exactly once per transport, when the matching Read
// Buffer Size Command Complete event is observed. It sets
// proxy_max = min(controllerMax, to_reserve) and returns the remainder
// the caller should rewrite into the event before forwarding it to the
// host. Calling Reserve a second time without an intervening Reset is a
// fatal precondition violation.
func (p *CreditPool) Reserve(controllerMax int) (hostMax int) {
	if p.reserved {
		panic("aclproxy: CreditPool.Reserve called twice without Reset")
	}
	p.proxyMax = controllerMax
	if p.toReserve < p.proxyMax {
		p.proxyMax = p.toReserve
	}
	p.reserved = true
	return controllerMax - p.proxyMax
}

// MarkPending attempts to reserve n credits, failing with
// ResourceExhausted if fewer than n are available.
func (p *CreditPool) MarkPending(n int) error {
	if n > p.Available() {
		return newError(CodeResourceExhausted)
	}
	p.proxyPending += n
	return nil
}

// MarkCompleted releases up to n previously-pending credits.
// Over-completion (n greater than what is actually pending) is logged
// and clamped rather than treated as an error, since a misbehaving
// controller should not be able to drive proxy_pending negative.
func (p *CreditPool) MarkCompleted(n int) {
	if n > p.proxyPending {
		GetLogger().Warnf("aclproxy: credit pool over-completion: reclaiming %d but only %d pending, clamping", n, p.proxyPending)
		n = p.proxyPending
	}
	p.proxyPending -= n
}

// Reset zeroes proxy_max and proxy_pending and clears the
// already-reserved flag, permitting a future Reserve call.
func (p *CreditPool) Reset() {
	p.proxyMax = 0
	p.proxyPending = 0
	p.reserved = false
}

// HasSendCapability reports whether the controller has granted any
// reservation at all.
func (p *CreditPool) HasSendCapability() bool {
	return p.proxyMax > 0
}

// Initialized is an alias for HasSendCapability, named for the
// Initialized() predicate in the data model.
func (p *CreditPool) Initialized() bool {
	return p.proxyMax > 0
}

// Available returns the number of credits not currently pending.
func (p *CreditPool) Available() int {
	return p.proxyMax - p.proxyPending
}

// ProxyMax returns the granted reservation.
func (p *CreditPool) ProxyMax() int {
	return p.proxyMax
}

// ProxyPending returns the number of credits currently in flight.
func (p *CreditPool) ProxyPending() int {
	return p.proxyPending
}
