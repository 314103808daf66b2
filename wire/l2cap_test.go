package wire

import "testing"

func TestBasicL2capHeaderViewFields(t *testing.T) {
	// pdu_length=20, channel_id=0x0041
	buf := []byte{0x14, 0x00, 0x41, 0x00}
	v := NewBasicL2capHeaderView(buf)

	pduLen, err := v.PduLengthWErr()
	if err != nil {
		t.Fatal(err)
	}
	if pduLen != 20 {
		t.Fatalf("PduLengthWErr() = %d, want 20", pduLen)
	}

	cid, err := v.ChannelIDWErr()
	if err != nil {
		t.Fatal(err)
	}
	if cid != 0x0041 {
		t.Fatalf("ChannelIDWErr() = 0x%04x, want 0x0041", cid)
	}
}

func TestBasicL2capHeaderViewTooShort(t *testing.T) {
	v := NewBasicL2capHeaderView([]byte{0x01, 0x02})
	if _, err := v.PduLengthWErr(); err == nil {
		t.Fatal("expected error on short buffer")
	}
}
