package network

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestEncodeDecodePacket(t *testing.T) {
	payload := []byte(`{"direction":"north"}`)
	raw, err := EncodePacket(MsgTypeWalk, payload)
	if err != nil {
		t.Fatalf("EncodePacket failed: %v", err)
	}
	if len(raw) != 4+len(payload) {
		t.Fatalf("Expected %d bytes, got %d", 4+len(payload), len(raw))
	}
	if raw[0] != 0 || raw[1] != MsgTypeWalk {
		t.Errorf("Unexpected header % x", raw[:4])
	}

	p, err := DecodePacket(raw)
	if err != nil {
		t.Fatalf("DecodePacket failed: %v", err)
	}
	if p.MsgID != MsgTypeWalk || !bytes.Equal(p.Data, payload) {
		t.Errorf("Decoded %d %q", p.MsgID, p.Data)
	}

	var req WalkRequest
	if err := p.Decode(&req); err != nil || req.Direction != "north" {
		t.Errorf("Decode = %+v, %v", req, err)
	}
}

func TestDecodePacket_Short(t *testing.T) {
	if _, err := DecodePacket([]byte{0, 1, 0}); !errors.Is(err, io.ErrShortBuffer) {
		t.Errorf("Expected ErrShortBuffer for a truncated header, got %v", err)
	}
	if _, err := DecodePacket([]byte{0, 1, 0, 5, 'a'}); !errors.Is(err, io.ErrShortBuffer) {
		t.Errorf("Expected ErrShortBuffer for a truncated body, got %v", err)
	}
}

func TestEncodePacket_TooLarge(t *testing.T) {
	if _, err := EncodePacket(MsgTypeSnapshot, make([]byte, 1<<16)); !errors.Is(err, ErrPacketTooLarge) {
		t.Errorf("Expected ErrPacketTooLarge, got %v", err)
	}
}
