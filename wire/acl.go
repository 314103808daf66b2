package wire

import (
	"encoding/binary"
	"fmt"
)

// ACLHeaderSize is the size in bytes of an HCI ACL data packet header.
const ACLHeaderSize = 4

// ACLHeaderView is a read-write window onto an HCI ACL data packet:
// handle/flags word (16 bits LE), data_total_length (16 bits LE),
// followed by the payload.
type ACLHeaderView struct {
	buf []byte
}

// NewACLHeaderView wraps buf. It does not validate length; use
// HeaderFitsWErr before reading fields from an untrusted buffer.
func NewACLHeaderView(buf []byte) ACLHeaderView {
	return ACLHeaderView{buf: buf}
}

// HeaderFitsWErr reports whether buf is long enough to contain an ACL
// header at all.
func (v ACLHeaderView) HeaderFitsWErr() error {
	if len(v.buf) < ACLHeaderSize {
		return fmt.Errorf("acl header: buffer too short: %d bytes", len(v.buf))
	}
	return nil
}

func (v ACLHeaderView) firstWord() uint16 {
	return binary.LittleEndian.Uint16(v.buf[0:2])
}

// HandleWErr returns the 12-bit connection handle, masked out of the
// header's first word.
func (v ACLHeaderView) HandleWErr() (uint16, error) {
	if err := v.HeaderFitsWErr(); err != nil {
		return 0, err
	}
	return v.firstWord() & HandleMask, nil
}

// Handle is the infallible convenience form of HandleWErr; it returns
// 0 if the buffer is too short.
func (v ACLHeaderView) Handle() uint16 {
	h, _ := v.HandleWErr()
	return h
}

// BoundaryFlagWErr returns the 2-bit packet boundary flag.
func (v ACLHeaderView) BoundaryFlagWErr() (uint8, error) {
	if err := v.HeaderFitsWErr(); err != nil {
		return 0, err
	}
	return uint8((v.firstWord() >> 12) & 0x3), nil
}

// BoundaryFlag is the infallible convenience form of BoundaryFlagWErr.
func (v ACLHeaderView) BoundaryFlag() uint8 {
	f, _ := v.BoundaryFlagWErr()
	return f
}

// DataTotalLengthWErr returns the ACL payload length in bytes.
func (v ACLHeaderView) DataTotalLengthWErr() (uint16, error) {
	if err := v.HeaderFitsWErr(); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(v.buf[2:4]), nil
}

// DataTotalLength is the infallible convenience form.
func (v ACLHeaderView) DataTotalLength() uint16 {
	n, _ := v.DataTotalLengthWErr()
	return n
}

// PayloadWErr returns the payload span following the header, verifying
// it is at least DataTotalLength bytes long.
func (v ACLHeaderView) PayloadWErr() ([]byte, error) {
	n, err := v.DataTotalLengthWErr()
	if err != nil {
		return nil, err
	}
	end := ACLHeaderSize + int(n)
	if len(v.buf) < end {
		return nil, fmt.Errorf("acl payload: buffer too short: have %d want %d", len(v.buf), end)
	}
	return v.buf[ACLHeaderSize:end], nil
}

// Payload is the infallible convenience form; it returns whatever
// trailing bytes exist past the header if the declared length overruns
// the buffer.
func (v ACLHeaderView) Payload() []byte {
	p, err := v.PayloadWErr()
	if err == nil {
		return p
	}
	if len(v.buf) > ACLHeaderSize {
		return v.buf[ACLHeaderSize:]
	}
	return nil
}

// Bytes returns the full backing buffer, header and payload together.
func (v ACLHeaderView) Bytes() []byte {
	return v.buf
}
