// Package expreplay implements a fixed-capacity experience replay memory for
// reinforcement learning agents: transitions are appended to a circular
// buffer that overwrites its oldest entries once full, and are sampled back
// as stacked context windows that never mix frames from different episodes.
package expreplay

import (
	"io"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

var (
	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("expreplay: invalid config")
	// ErrIndexOutOfRange is returned by SampleWindow for an index outside
	// the occupied portion of the buffer.
	ErrIndexOutOfRange = errors.New("expreplay: sample index out of range")
	// ErrInsufficientData is returned by the batch samplers while the
	// buffer holds too few experiences for the requested partition.
	ErrInsufficientData = errors.New("expreplay: not enough experiences to sample")
	// ErrCorruptState is returned by Load when a saved memory state fails
	// to decode or does not match the given Config.
	ErrCorruptState = errors.New("expreplay: corrupt memory state")
)

// Window is a single sampled training example: ContextLen+1 consecutive
// frames ending at one transition, with that transition's scalars.
type Window struct {
	// States has shape [ContextLen+1, frame shape...] and dtype uint8.
	// Frames before an episode boundary within the window are zero.
	States *tensor.Dense
	Action int32
	Reward float32
	Done   bool
}

// Batch is a set of sampled windows stacked for one training step.
type Batch struct {
	// States has shape [batch, ContextLen+1, frame shape...] and dtype
	// uint8.
	States *tensor.Dense
	// Actions are narrowed to int8; action spaces must fit in it.
	Actions []int8
	Rewards []float32
	Dones   []bool
}

// Buffer is implemented by the replay memory variants: the in-memory Memory
// and the disk-backed equivalents in ldbstore and rdbstore.
//
// Implementations are not safe for concurrent use; wrap them in a
// LockedBuffer to share one across goroutines.
type Buffer interface {
	// Append records one transition, overwriting the oldest entry if the
	// buffer is full, and advances the recency window.
	Append(exp Experience)
	// RecentState returns the ContextLen-1 most recent frames of the
	// still-open episode, zero-padded at the front, for assembling the
	// agent's next model input.
	RecentState() []Frame
	// SampleWindow reconstructs the context window for the transition at
	// the given index in [0, Len()).
	SampleWindow(idx int) (Window, error)
	// SampleBatch draws batchSize windows uniformly from the lower 80%
	// training partition of the occupied buffer.
	SampleBatch(batchSize int) (Batch, error)
	// SampleTestBatch draws batchSize windows from the upper 20% held-out
	// partition, disjoint from the training partition.
	SampleTestBatch(batchSize int) (Batch, error)
	// Len returns the number of occupied slots.
	Len() int
	io.Closer
}
