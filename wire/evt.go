package wire

import (
	"encoding/binary"
	"fmt"
)

// HCI status code for a successful command/event, Bluetooth Core Spec
// Vol 2 Part D §2.
const StatusSuccess = 0x00

// These views are windows onto the return-parameter span of a decoded
// HCI Command Complete event, or onto a decoded LE Meta subevent's
// parameter span. The opcode/subevent-code dispatch that produces these
// spans happens upstream in the HCI event decoder (out of scope, §1 of
// the governing design).

// ReadBufferSizeCommandCompleteView windows the BR/EDR Read_Buffer_Size
// command complete parameters: status(1), acl_data_packet_length(2),
// sco_data_packet_length(1), total_num_acl_data_packets(2),
// total_num_sco_data_packets(2).
type ReadBufferSizeCommandCompleteView struct{ buf []byte }

func NewReadBufferSizeCommandCompleteView(buf []byte) ReadBufferSizeCommandCompleteView {
	return ReadBufferSizeCommandCompleteView{buf: buf}
}

func (v ReadBufferSizeCommandCompleteView) fitsWErr(n int) error {
	if len(v.buf) < n {
		return fmt.Errorf("read buffer size cc: buffer too short: %d bytes", len(v.buf))
	}
	return nil
}

func (v ReadBufferSizeCommandCompleteView) StatusWErr() (uint8, error) {
	if err := v.fitsWErr(1); err != nil {
		return 0, err
	}
	return v.buf[0], nil
}

func (v ReadBufferSizeCommandCompleteView) TotalNumACLDataPacketsWErr() (uint16, error) {
	if err := v.fitsWErr(7); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(v.buf[4:6]), nil
}

// SetTotalNumACLDataPacketsWErr rewrites the field in place.
func (v ReadBufferSizeCommandCompleteView) SetTotalNumACLDataPacketsWErr(n uint16) error {
	if err := v.fitsWErr(7); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(v.buf[4:6], n)
	return nil
}

// LEReadBufferSizeCommandCompleteView windows the LE Read_Buffer_Size
// (V1 or V2) command complete parameters: status(1),
// le_acl_data_packet_length(2), total_num_le_acl_data_packets(1). V2
// carries additional ISO fields this view does not need.
type LEReadBufferSizeCommandCompleteView struct{ buf []byte }

func NewLEReadBufferSizeCommandCompleteView(buf []byte) LEReadBufferSizeCommandCompleteView {
	return LEReadBufferSizeCommandCompleteView{buf: buf}
}

func (v LEReadBufferSizeCommandCompleteView) fitsWErr(n int) error {
	if len(v.buf) < n {
		return fmt.Errorf("le read buffer size cc: buffer too short: %d bytes", len(v.buf))
	}
	return nil
}

func (v LEReadBufferSizeCommandCompleteView) StatusWErr() (uint8, error) {
	if err := v.fitsWErr(1); err != nil {
		return 0, err
	}
	return v.buf[0], nil
}

func (v LEReadBufferSizeCommandCompleteView) LEACLDataPacketLengthWErr() (uint16, error) {
	if err := v.fitsWErr(4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(v.buf[1:3]), nil
}

func (v LEReadBufferSizeCommandCompleteView) TotalNumLEACLDataPacketsWErr() (uint8, error) {
	if err := v.fitsWErr(4); err != nil {
		return 0, err
	}
	return v.buf[3], nil
}

// SetLEACLDataPacketLengthWErr rewrites the field in place.
func (v LEReadBufferSizeCommandCompleteView) SetLEACLDataPacketLengthWErr(n uint16) error {
	if err := v.fitsWErr(4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(v.buf[1:3], n)
	return nil
}

// SetTotalNumLEACLDataPacketsWErr rewrites the field in place.
func (v LEReadBufferSizeCommandCompleteView) SetTotalNumLEACLDataPacketsWErr(n uint8) error {
	if err := v.fitsWErr(4); err != nil {
		return err
	}
	v.buf[3] = n
	return nil
}

// NumberOfCompletedPacketsView windows the Number_Of_Completed_Packets
// event: num_handles(1), followed by num_handles pairs of
// (connection_handle:16, num_completed_packets:16), all little-endian.
type NumberOfCompletedPacketsView struct{ buf []byte }

func NewNumberOfCompletedPacketsView(buf []byte) NumberOfCompletedPacketsView {
	return NumberOfCompletedPacketsView{buf: buf}
}

func (v NumberOfCompletedPacketsView) NumHandlesWErr() (uint8, error) {
	if len(v.buf) < 1 {
		return 0, fmt.Errorf("number of completed packets: empty buffer")
	}
	return v.buf[0], nil
}

func (v NumberOfCompletedPacketsView) pairOffset(i int) int {
	return 1 + i*4
}

func (v NumberOfCompletedPacketsView) ConnectionHandleWErr(i int) (uint16, error) {
	off := v.pairOffset(i)
	if len(v.buf) < off+2 {
		return 0, fmt.Errorf("number of completed packets: pair %d out of range", i)
	}
	return binary.LittleEndian.Uint16(v.buf[off:off+2]) & HandleMask, nil
}

func (v NumberOfCompletedPacketsView) NumCompletedPacketsWErr(i int) (uint16, error) {
	off := v.pairOffset(i)
	if len(v.buf) < off+4 {
		return 0, fmt.Errorf("number of completed packets: pair %d out of range", i)
	}
	return binary.LittleEndian.Uint16(v.buf[off+2 : off+4]), nil
}

// SetNumCompletedPacketsWErr rewrites the count field of pair i in place.
func (v NumberOfCompletedPacketsView) SetNumCompletedPacketsWErr(i int, n uint16) error {
	off := v.pairOffset(i)
	if len(v.buf) < off+4 {
		return fmt.Errorf("number of completed packets: pair %d out of range", i)
	}
	binary.LittleEndian.PutUint16(v.buf[off+2:off+4], n)
	return nil
}

// connHandleStatusView is the shared status(1) + connection_handle(2)
// layout underlying Connection Complete, LE Connection Complete, LE
// Enhanced Connection Complete (V1/V2), and Disconnection Complete.
type connHandleStatusView struct{ buf []byte }

func (v connHandleStatusView) fitsWErr() error {
	if len(v.buf) < 3 {
		return fmt.Errorf("connection event: buffer too short: %d bytes", len(v.buf))
	}
	return nil
}

func (v connHandleStatusView) StatusWErr() (uint8, error) {
	if err := v.fitsWErr(); err != nil {
		return 0, err
	}
	return v.buf[0], nil
}

func (v connHandleStatusView) ConnectionHandleWErr() (uint16, error) {
	if err := v.fitsWErr(); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(v.buf[1:3]) & HandleMask, nil
}

// ConnectionCompleteView windows a BR/EDR Connection Complete event.
type ConnectionCompleteView struct{ connHandleStatusView }

func NewConnectionCompleteView(buf []byte) ConnectionCompleteView {
	return ConnectionCompleteView{connHandleStatusView{buf: buf}}
}

// LEConnectionCompleteView windows an LE Connection Complete subevent.
type LEConnectionCompleteView struct{ connHandleStatusView }

func NewLEConnectionCompleteView(buf []byte) LEConnectionCompleteView {
	return LEConnectionCompleteView{connHandleStatusView{buf: buf}}
}

// LEEnhancedConnectionCompleteView windows an LE Enhanced Connection
// Complete subevent, V1 or V2; both share the status/handle prefix this
// component reads.
type LEEnhancedConnectionCompleteView struct{ connHandleStatusView }

func NewLEEnhancedConnectionCompleteView(buf []byte) LEEnhancedConnectionCompleteView {
	return LEEnhancedConnectionCompleteView{connHandleStatusView{buf: buf}}
}

// DisconnectionCompleteView windows a Disconnection Complete event:
// status(1), connection_handle(2), reason(1).
type DisconnectionCompleteView struct{ connHandleStatusView }

func NewDisconnectionCompleteView(buf []byte) DisconnectionCompleteView {
	return DisconnectionCompleteView{connHandleStatusView{buf: buf}}
}

func (v DisconnectionCompleteView) ReasonWErr() (uint8, error) {
	if len(v.buf) < 4 {
		return 0, fmt.Errorf("disconnection complete: buffer too short: %d bytes", len(v.buf))
	}
	return v.buf[3], nil
}
