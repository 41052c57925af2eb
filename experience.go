package expreplay

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Frame is a single state observation, stored flat in row-major order.
// Its logical shape is the FrameShape of the memory that holds it.
type Frame []uint8

// Experience is one recorded transition: the observed state, the action
// taken in it, the reward received, and whether the episode ended.
type Experience struct {
	State  Frame
	Action int32
	Reward float32
	Done   bool
}

// action, reward and done flag trailing the variable-length frame.
const experienceTrailerLen = 4 + 4 + 1

// MarshalBinary implements encoding.BinaryMarshaler.
func (e Experience) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 4+len(e.State)+experienceTrailerLen)

	binary.LittleEndian.PutUint32(buf, uint32(len(e.State)))
	rem := buf[4:]
	copy(rem, e.State)
	rem = rem[len(e.State):]

	binary.LittleEndian.PutUint32(rem, uint32(e.Action))
	rem = rem[4:]
	binary.LittleEndian.PutUint32(rem, math.Float32bits(e.Reward))
	rem = rem[4:]
	if e.Done {
		rem[0] = 1
	}

	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (e *Experience) UnmarshalBinary(buf []byte) error {
	if len(buf) < 4 {
		return errors.Wrapf(ErrCorruptState, "experience record has %d bytes, shorter than its header", len(buf))
	}

	n := int(binary.LittleEndian.Uint32(buf))
	rem := buf[4:]
	if len(rem) != n+experienceTrailerLen {
		return errors.Wrapf(ErrCorruptState, "experience record has %d bytes after header, want %d", len(rem), n+experienceTrailerLen)
	}

	// UnmarshalBinary must copy the data it wishes to keep.
	e.State = make(Frame, n)
	copy(e.State, rem)
	rem = rem[n:]

	e.Action = int32(binary.LittleEndian.Uint32(rem))
	rem = rem[4:]
	e.Reward = math.Float32frombits(binary.LittleEndian.Uint32(rem))
	rem = rem[4:]
	e.Done = rem[0] != 0
	return nil
}
