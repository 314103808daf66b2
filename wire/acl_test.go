package wire

import "testing"

func TestACLHeaderViewFields(t *testing.T) {
	// handle=0x0041, boundary=FIRST_FLUSHABLE(0x2), data_total_length=3
	buf := []byte{0x41, 0x20, 0x03, 0x00, 0xAA, 0xBB, 0xCC}
	v := NewACLHeaderView(buf)

	if h := v.Handle(); h != 0x0041 {
		t.Fatalf("Handle() = 0x%04x, want 0x0041", h)
	}
	if f := v.BoundaryFlag(); f != PbfFirstFlushable {
		t.Fatalf("BoundaryFlag() = %d, want %d", f, PbfFirstFlushable)
	}
	if n := v.DataTotalLength(); n != 3 {
		t.Fatalf("DataTotalLength() = %d, want 3", n)
	}
	payload := v.Payload()
	want := []byte{0xAA, 0xBB, 0xCC}
	if string(payload) != string(want) {
		t.Fatalf("Payload() = %v, want %v", payload, want)
	}
}

func TestACLHeaderViewHandleMasking(t *testing.T) {
	// Upper 4 bits are boundary(2)+reserved(2); only low 12 bits are handle.
	buf := []byte{0xFF, 0xFF, 0x00, 0x00}
	v := NewACLHeaderView(buf)
	if h := v.Handle(); h != 0x0FFF {
		t.Fatalf("Handle() = 0x%04x, want 0x0FFF", h)
	}
}

func TestACLHeaderViewTooShort(t *testing.T) {
	v := NewACLHeaderView([]byte{0x01, 0x02})
	if err := v.HeaderFitsWErr(); err == nil {
		t.Fatal("expected error on short buffer")
	}
	if h := v.Handle(); h != 0 {
		t.Fatalf("Handle() on short buffer = %d, want 0", h)
	}
}
