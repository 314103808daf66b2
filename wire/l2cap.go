package wire

import (
	"encoding/binary"
	"fmt"
)

// BasicL2capHeaderView is a read-only window onto a Basic L2CAP header:
// pdu_length (16 bits LE), channel_id (16 bits LE).
type BasicL2capHeaderView struct {
	buf []byte
}

// NewBasicL2capHeaderView wraps buf.
func NewBasicL2capHeaderView(buf []byte) BasicL2capHeaderView {
	return BasicL2capHeaderView{buf: buf}
}

// FitsWErr reports whether buf is long enough to hold a Basic L2CAP
// header.
func (v BasicL2capHeaderView) FitsWErr() error {
	if len(v.buf) < BasicL2capHeaderSize {
		return fmt.Errorf("l2cap header: buffer too short: %d bytes", len(v.buf))
	}
	return nil
}

// PduLengthWErr returns the PDU length field (payload bytes following
// the header, not including the header itself).
func (v BasicL2capHeaderView) PduLengthWErr() (uint16, error) {
	if err := v.FitsWErr(); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(v.buf[0:2]), nil
}

// ChannelIDWErr returns the destination channel_id field.
func (v BasicL2capHeaderView) ChannelIDWErr() (uint16, error) {
	if err := v.FitsWErr(); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(v.buf[2:4]), nil
}
