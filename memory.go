package expreplay

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/timpalpant/go-expreplay/internal/window"
)

// Memory is a fixed-capacity replay memory holding the most recent Capacity
// transitions in four co-indexed dense arrays. Once full, new appends
// overwrite the oldest entries in place.
//
// Memory performs no locking; it is designed for a single collection loop
// that appends and samples sequentially. Wrap it in a LockedBuffer to share
// it across goroutines.
type Memory struct {
	cfg       Config
	frameSize int

	states  []uint8
	actions []int32
	rewards []float32
	dones   []bool

	size   int // occupied slots, saturates at cfg.Capacity
	cursor int // next slot to overwrite

	recent recentQueue
	rng    *rand.Rand
}

// New returns an empty Memory with the given configuration.
func New(cfg Config) (*Memory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.FrameShape = cfg.FrameShape.Clone()
	frameSize := cfg.FrameSize()
	return &Memory{
		cfg:       cfg,
		frameSize: frameSize,
		states:    make([]uint8, cfg.Capacity*frameSize),
		actions:   make([]int32, cfg.Capacity),
		rewards:   make([]float32, cfg.Capacity),
		dones:     make([]bool, cfg.Capacity),
		recent:    newRecentQueue(cfg.ContextLen - 1),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Config returns the memory's construction parameters.
func (m *Memory) Config() Config { return m.cfg }

// Len implements Buffer.
func (m *Memory) Len() int { return m.size }

// Close implements Buffer. It is a no-op for the in-memory implementation.
func (m *Memory) Close() error { return nil }

// Append implements Buffer. The frame is copied into the memory's storage;
// exp itself is retained in the recency window until its episode ends.
// Append panics if the frame does not match the configured shape.
func (m *Memory) Append(exp Experience) {
	m.assign(m.cursor, exp)
	if m.size < m.cfg.Capacity {
		m.size++
	}
	m.cursor = (m.cursor + 1) % m.cfg.Capacity

	if exp.Done {
		m.recent.clear()
	} else {
		m.recent.push(exp)
	}
}

func (m *Memory) assign(pos int, exp Experience) {
	if len(exp.State) != m.frameSize {
		panic(errors.Errorf("expreplay: frame has %d bytes, want %d", len(exp.State), m.frameSize))
	}

	copy(m.frameAt(pos), exp.State)
	m.actions[pos] = exp.Action
	m.rewards[pos] = exp.Reward
	m.dones[pos] = exp.Done
}

// RecentState implements Buffer: the ContextLen-1 most recent frames of the
// still-open episode, oldest first, zero-filled at the front while the
// episode is younger than that. The caller appends its own latest
// observation to complete the ContextLen-frame model input.
func (m *Memory) RecentState() []Frame {
	n := m.cfg.ContextLen - 1
	out := make([]Frame, 0, n)
	for i := m.recent.len(); i < n; i++ {
		out = append(out, make(Frame, m.frameSize))
	}
	m.recent.each(func(exp Experience) {
		out = append(out, exp.State)
	})
	return out
}

// SampleWindow implements Buffer. The window ends at the transition stored
// at position (idx+ContextLen-1) mod Len(); frames that precede an episode
// boundary within the window are zero-filled so no sample mixes data from
// two episodes.
func (m *Memory) SampleWindow(idx int) (Window, error) {
	if idx < 0 || idx >= m.size {
		return Window{}, errors.Wrapf(ErrIndexOutOfRange, "index %d outside [0, %d)", idx, m.size)
	}

	frames := make([]uint8, (m.cfg.ContextLen+1)*m.frameSize)
	m.stackWindow(frames, idx)

	last := m.slot(idx + m.cfg.ContextLen - 1)
	return Window{
		States: tensor.New(
			tensor.WithShape(m.stackShape()...),
			tensor.WithBacking(frames),
		),
		Action: m.actions[last],
		Reward: m.rewards[last],
		Done:   m.dones[last],
	}, nil
}

// stackWindow assembles the masked window starting at idx into dst, which
// must be zeroed.
func (m *Memory) stackWindow(dst []uint8, idx int) {
	window.Stack(dst, m.frameSize, m.cfg.ContextLen,
		func(k int) []uint8 { return m.frameAt(m.slot(idx + k)) },
		func(k int) bool { return m.dones[m.slot(idx+k)] },
	)
}

// slot maps a logical window position onto the occupied portion of the ring.
func (m *Memory) slot(i int) int { return i % m.size }

func (m *Memory) frameAt(pos int) []uint8 {
	return m.states[pos*m.frameSize : (pos+1)*m.frameSize]
}

// stackShape returns the tensor shape of stacked windows, with any leading
// batch dimensions prepended.
func (m *Memory) stackShape(leading ...int) []int {
	shape := make([]int, 0, len(leading)+1+len(m.cfg.FrameShape))
	shape = append(shape, leading...)
	shape = append(shape, m.cfg.ContextLen+1)
	shape = append(shape, m.cfg.FrameShape...)
	return shape
}
