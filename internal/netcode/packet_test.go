package netcode

import (
	"testing"

	"rollbackgame/internal/config"
)

func TestPlayerInputPacketRoundTrip(t *testing.T) {
	var pkt PlayerInputPacket
	pkt.PlayerNumber = 1
	pkt.CurrentFrame = 1234
	for i := range pkt.Inputs {
		pkt.Inputs[i] = PlayerInput(i % 16)
	}

	encoded := pkt.Encode()
	if len(encoded) != playerInputPacketSize {
		t.Fatalf("expected encoded length %d, got %d", playerInputPacketSize, len(encoded))
	}

	decoded, err := DecodePlayerInputPacket(encoded)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if decoded != pkt {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, pkt)
	}
}

func TestDecodePlayerInputPacketRejectsWrongSize(t *testing.T) {
	_, err := DecodePlayerInputPacket(make([]byte, 3))
	if err == nil {
		t.Fatal("expected an error decoding a too-short buffer")
	}
}

func TestConfirmationPacketRoundTrip(t *testing.T) {
	var pkt ConfirmationPacket
	pkt.ValidatedFrame = 42
	for i := range pkt.Checksums {
		pkt.Checksums[i] = PhysicsState(i + 1000)
	}

	encoded := pkt.Encode()
	if len(encoded) != confirmationPacketSize {
		t.Fatalf("expected encoded length %d, got %d", confirmationPacketSize, len(encoded))
	}

	decoded, err := DecodeConfirmationPacket(encoded)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if decoded != pkt {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, pkt)
	}
}

func TestConfirmationPacketSizeMatchesMaxPlayers(t *testing.T) {
	if confirmationPacketSize != 4+config.MaxPlayers*4 {
		t.Fatalf("confirmation packet size should track config.MaxPlayers")
	}
}
