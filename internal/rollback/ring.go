package rollback

import (
	"rollbackgame/internal/config"
	"rollbackgame/internal/netcode"
)

// inputRing is a per-player fixed-size history of received inputs,
// indexed by frame modulo its capacity. frames records which frame each
// slot actually holds, so a stale slot from a frame more than
// RingCapacity in the past is never misread as belonging to the frame
// that now aliases to the same index.
type inputRing struct {
	inputs [config.RingCapacity]netcode.PlayerInput
	frames [config.RingCapacity]netcode.Frame
	known  [config.RingCapacity]bool
}

// Set records in as the input received for frame.
func (r *inputRing) Set(frame netcode.Frame, in netcode.PlayerInput) {
	idx := int(frame) % config.RingCapacity
	r.inputs[idx] = in
	r.frames[idx] = frame
	r.known[idx] = true
}

// Get returns the input recorded for frame, and whether one was ever
// recorded there. A false ok means the caller must predict instead, or
// — for the confirmed path, where every input must already be known —
// that the caller asked for a frame outside the ring's retained window.
func (r *inputRing) Get(frame netcode.Frame) (in netcode.PlayerInput, ok bool) {
	idx := int(frame) % config.RingCapacity
	if !r.known[idx] || r.frames[idx] != frame {
		return 0, false
	}
	return r.inputs[idx], true
}
