package expreplay

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Config holds the immutable construction parameters of a replay memory.
// The same Config used to save a memory must be used to load it back.
type Config struct {
	// Capacity is the fixed number of transitions the memory holds.
	// Once full, new appends overwrite the oldest entries.
	Capacity int
	// FrameShape is the shape of a single state observation.
	FrameShape tensor.Shape
	// ContextLen is the number of consecutive frames the agent sees as
	// one model input. Sampled windows hold ContextLen+1 frames: the
	// input context plus the successor frame.
	ContextLen int
}

// FrameSize returns the number of bytes in one frame.
func (c Config) FrameSize() int { return c.FrameShape.TotalSize() }

// Validate checks that the configuration describes a usable memory.
func (c Config) Validate() error {
	switch {
	case c.Capacity <= 0:
		return errors.Wrapf(ErrInvalidConfig, "capacity must be positive, got %d", c.Capacity)
	case c.ContextLen < 1:
		return errors.Wrapf(ErrInvalidConfig, "context length must be at least 1, got %d", c.ContextLen)
	case len(c.FrameShape) == 0:
		return errors.Wrap(ErrInvalidConfig, "frame shape must not be empty")
	}

	for _, dim := range c.FrameShape {
		if dim <= 0 {
			return errors.Wrapf(ErrInvalidConfig, "frame shape %v has a non-positive dimension", c.FrameShape)
		}
	}

	return nil
}
