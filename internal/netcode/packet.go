package netcode

import (
	"encoding/binary"
	"fmt"

	"rollbackgame/internal/config"
)

// PlayerInputPacket is what a client sends the host every tick: its
// whole local input ring, so the host can backfill any frames a prior
// packet lost. Wire layout (little-endian): playerNumber u8, currentFrame
// u32, then RingCapacity input bytes.
type PlayerInputPacket struct {
	PlayerNumber PlayerNumber
	CurrentFrame Frame
	Inputs       [config.RingCapacity]PlayerInput
}

// playerInputPacketSize is the exact encoded length of a PlayerInputPacket.
const playerInputPacketSize = 1 + 4 + config.RingCapacity

// Encode serializes p into its wire format.
func (p PlayerInputPacket) Encode() []byte {
	buf := make([]byte, playerInputPacketSize)
	buf[0] = byte(p.PlayerNumber)
	binary.LittleEndian.PutUint32(buf[1:5], uint32(p.CurrentFrame))
	for i, in := range p.Inputs {
		buf[5+i] = byte(in)
	}
	return buf
}

// DecodePlayerInputPacket parses a wire-format PlayerInputPacket.
func DecodePlayerInputPacket(buf []byte) (PlayerInputPacket, error) {
	var p PlayerInputPacket
	if len(buf) != playerInputPacketSize {
		return p, fmt.Errorf("netcode: player input packet: want %d bytes, got %d", playerInputPacketSize, len(buf))
	}
	p.PlayerNumber = PlayerNumber(buf[0])
	p.CurrentFrame = Frame(binary.LittleEndian.Uint32(buf[1:5]))
	for i := range p.Inputs {
		p.Inputs[i] = PlayerInput(buf[5+i])
	}
	return p, nil
}

// ConfirmationPacket is what the host broadcasts back after validating a
// frame: the frame number plus every player's checksum at that frame, so
// each client can detect its own divergence.
type ConfirmationPacket struct {
	ValidatedFrame Frame
	Checksums      [config.MaxPlayers]PhysicsState
}

// confirmationPacketSize is the exact encoded length of a ConfirmationPacket.
const confirmationPacketSize = 4 + config.MaxPlayers*4

// Encode serializes c into its wire format.
func (c ConfirmationPacket) Encode() []byte {
	buf := make([]byte, confirmationPacketSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(c.ValidatedFrame))
	for i, sum := range c.Checksums {
		off := 4 + i*4
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(sum))
	}
	return buf
}

// DecodeConfirmationPacket parses a wire-format ConfirmationPacket.
func DecodeConfirmationPacket(buf []byte) (ConfirmationPacket, error) {
	var c ConfirmationPacket
	if len(buf) != confirmationPacketSize {
		return c, fmt.Errorf("netcode: confirmation packet: want %d bytes, got %d", confirmationPacketSize, len(buf))
	}
	c.ValidatedFrame = Frame(binary.LittleEndian.Uint32(buf[0:4]))
	for i := range c.Checksums {
		off := 4 + i*4
		c.Checksums[i] = PhysicsState(binary.LittleEndian.Uint32(buf[off : off+4]))
	}
	return c, nil
}
