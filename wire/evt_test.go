package wire

import "testing"

func TestReadBufferSizeCommandCompleteRewrite(t *testing.T) {
	// status=0, acl_data_packet_length=27, sco_data_packet_length=0,
	// total_num_acl_data_packets=10, total_num_sco_data_packets=0
	buf := []byte{0x00, 0x1B, 0x00, 0x00, 0x0A, 0x00, 0x00, 0x00}
	v := NewReadBufferSizeCommandCompleteView(buf)

	total, err := v.TotalNumACLDataPacketsWErr()
	if err != nil {
		t.Fatal(err)
	}
	if total != 10 {
		t.Fatalf("TotalNumACLDataPacketsWErr() = %d, want 10", total)
	}

	if err := v.SetTotalNumACLDataPacketsWErr(6); err != nil {
		t.Fatal(err)
	}
	total, _ = v.TotalNumACLDataPacketsWErr()
	if total != 6 {
		t.Fatalf("after rewrite = %d, want 6", total)
	}
}

func TestLEReadBufferSizeCommandCompleteRewrite(t *testing.T) {
	// status=0, le_acl_data_packet_length=27, total_num_le_acl_data_packets=4
	buf := []byte{0x00, 0x1B, 0x00, 0x04}
	v := NewLEReadBufferSizeCommandCompleteView(buf)

	length, err := v.LEACLDataPacketLengthWErr()
	if err != nil || length != 27 {
		t.Fatalf("LEACLDataPacketLengthWErr() = %d, %v, want 27, nil", length, err)
	}
	total, err := v.TotalNumLEACLDataPacketsWErr()
	if err != nil || total != 4 {
		t.Fatalf("TotalNumLEACLDataPacketsWErr() = %d, %v, want 4, nil", total, err)
	}

	if err := v.SetTotalNumLEACLDataPacketsWErr(2); err != nil {
		t.Fatal(err)
	}
	total, _ = v.TotalNumLEACLDataPacketsWErr()
	if total != 2 {
		t.Fatalf("after rewrite = %d, want 2", total)
	}
}

func TestNumberOfCompletedPacketsViewPairs(t *testing.T) {
	// num_handles=1, pair (0x0001, 3)
	buf := []byte{0x01, 0x01, 0x00, 0x03, 0x00}
	v := NewNumberOfCompletedPacketsView(buf)

	n, err := v.NumHandlesWErr()
	if err != nil || n != 1 {
		t.Fatalf("NumHandlesWErr() = %d, %v, want 1, nil", n, err)
	}
	handle, err := v.ConnectionHandleWErr(0)
	if err != nil || handle != 0x0001 {
		t.Fatalf("ConnectionHandleWErr(0) = 0x%04x, %v, want 0x0001, nil", handle, err)
	}
	count, err := v.NumCompletedPacketsWErr(0)
	if err != nil || count != 3 {
		t.Fatalf("NumCompletedPacketsWErr(0) = %d, %v, want 3, nil", count, err)
	}

	if err := v.SetNumCompletedPacketsWErr(0, 0); err != nil {
		t.Fatal(err)
	}
	count, _ = v.NumCompletedPacketsWErr(0)
	if count != 0 {
		t.Fatalf("after rewrite = %d, want 0", count)
	}
}

func TestConnectionCompleteViewFields(t *testing.T) {
	// status=0, connection_handle=0x0001
	buf := []byte{0x00, 0x01, 0x00}
	v := NewConnectionCompleteView(buf)

	status, err := v.StatusWErr()
	if err != nil || status != StatusSuccess {
		t.Fatalf("StatusWErr() = %d, %v, want success", status, err)
	}
	handle, err := v.ConnectionHandleWErr()
	if err != nil || handle != 0x0001 {
		t.Fatalf("ConnectionHandleWErr() = 0x%04x, %v, want 0x0001", handle, err)
	}
}

func TestDisconnectionCompleteViewFields(t *testing.T) {
	// status=0, connection_handle=0x0003, reason=0x13
	buf := []byte{0x00, 0x03, 0x00, 0x13}
	v := NewDisconnectionCompleteView(buf)

	reason, err := v.ReasonWErr()
	if err != nil || reason != 0x13 {
		t.Fatalf("ReasonWErr() = 0x%02x, %v, want 0x13", reason, err)
	}
}
