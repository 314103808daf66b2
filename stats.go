package aclproxy

import (
	jsoniter "github.com/json-iterator/go"
)

// TransportStats is a point-in-time snapshot of one transport's credit
// pool.
type TransportStats struct {
	Transport    string `json:"transport"`
	ToReserve    int    `json:"to_reserve"`
	ProxyMax     int    `json:"proxy_max"`
	ProxyPending int    `json:"proxy_pending"`
	Available    int    `json:"available"`
	Initialized  bool   `json:"initialized"`
}

// ConnectionStats is a point-in-time snapshot of one tracked
// connection.
type ConnectionStats struct {
	Handle                    uint16 `json:"handle"`
	Transport                 string `json:"transport"`
	NumPendingPackets         int    `json:"num_pending_packets"`
	RecombinationActiveHost   bool   `json:"recombination_active_from_host"`
	RecombinationActiveCtlr   bool   `json:"recombination_active_from_controller"`
}

// Stats is a full diagnostics snapshot of an ACLDataChannel: it is not
// persisted anywhere and exists purely for live introspection (a debug
// command, or a test assertion on the shape of internal state).
type Stats struct {
	Transports  []TransportStats  `json:"transports"`
	Connections []ConnectionStats `json:"connections"`
}

// Snapshot captures a consistent view of d's state under its lock.
func (d *ACLDataChannel) Snapshot() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := Stats{
		Transports:  make([]TransportStats, 0, numTransports),
		Connections: make([]ConnectionStats, 0, d.table.len()),
	}
	for t, p := range d.pools {
		transport := Transport(t)
		s.Transports = append(s.Transports, TransportStats{
			Transport:    transport.String(),
			ToReserve:    p.toReserve,
			ProxyMax:     p.ProxyMax(),
			ProxyPending: p.ProxyPending(),
			Available:    p.Available(),
			Initialized:  p.Initialized(),
		})
	}
	for _, c := range d.table.byHandle {
		s.Connections = append(s.Connections, ConnectionStats{
			Handle:                  c.handle,
			Transport:               c.transport.String(),
			NumPendingPackets:       c.numPendingPackets,
			RecombinationActiveHost: c.recombinationActive(DirectionFromHost),
			RecombinationActiveCtlr: c.recombinationActive(DirectionFromController),
		})
	}
	return s
}

// MarshalJSON lets jsoniter (and encoding/json, via the same struct
// tags) encode a snapshot directly.
func (s Stats) MarshalJSON() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(struct {
		Transports  []TransportStats  `json:"transports"`
		Connections []ConnectionStats `json:"connections"`
	}(s))
}
