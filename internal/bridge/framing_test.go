package bridge

import (
	"bytes"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{"op":"window_list"}`)
	if err := writeFrame(&buf, payload); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 4+len(payload) {
		t.Errorf("frame length = %d, want %d", buf.Len(), 4+len(payload))
	}

	got, err := readFrame(&buf, DefaultMaxFrameBytes)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("read %q, want %q", got, payload)
	}
}

func TestFrameEmptyBody(t *testing.T) {
	var buf bytes.Buffer
	if err := writeFrame(&buf, nil); err != nil {
		t.Fatal(err)
	}
	got, err := readFrame(&buf, DefaultMaxFrameBytes)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty body, got %d bytes", len(got))
	}
}

func TestReadFrameTooLarge(t *testing.T) {
	var buf bytes.Buffer
	if err := writeFrame(&buf, make([]byte, 64)); err != nil {
		t.Fatal(err)
	}
	_, err := readFrame(&buf, 16)
	if err == nil {
		t.Fatal("oversize frame accepted")
	}
	if !isFrameTooLarge(err) {
		t.Errorf("error %v not classified as frame-too-large", err)
	}
}

func TestReadFrameTruncated(t *testing.T) {
	// Prefix claims 100 bytes, body has 3.
	buf := bytes.NewBuffer([]byte{0, 0, 0, 100, 'a', 'b', 'c'})
	if _, err := readFrame(buf, DefaultMaxFrameBytes); err == nil {
		t.Fatal("truncated frame accepted")
	}
}
