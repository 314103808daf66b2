// Package wire contains bit-exact views over HCI and L2CAP byte spans.
//
// Views never copy; they index into the caller-supplied slice directly,
// including for the setters, so a buffer rewritten through a view is the
// same buffer the caller forwards onward.
package wire

// HCI packet boundary flag values, Bluetooth Core Spec Vol 2 Part E §5.4.2.
const (
	PbfFirstNonFlushable  = 0x00
	PbfContinuingFragment = 0x01
	PbfFirstFlushable     = 0x02
	PbfCompleteL2CAPPDU   = 0x03
)

// BasicL2capHeaderSize is the size in bytes of a Basic L2CAP header
// (pdu_length:16 little-endian, channel_id:16 little-endian).
const BasicL2capHeaderSize = 4

// HandleMask isolates the 12-bit connection handle packed into the
// low bits of an ACL header's first 16-bit word.
const HandleMask = 0x0FFF
