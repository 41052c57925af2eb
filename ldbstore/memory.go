package ldbstore

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"gorgonia.org/tensor"

	"github.com/timpalpant/go-expreplay"
	"github.com/timpalpant/go-expreplay/internal/window"
)

// Memory implements expreplay.Buffer with all experience records kept in a
// LevelDB database, keyed by slot number. Only the recency window and the
// occupancy counters live in memory.
//
// It is functionally equivalent to expreplay.Memory. Sampling a window
// issues ContextLen+1 point reads against the database.
type Memory struct {
	path string
	cfg  expreplay.Config

	frameSize int
	size      int
	cursor    int
	recent    []expreplay.Experience

	db    *leveldb.DB
	rOpts *opt.ReadOptions
	wOpts *opt.WriteOptions
	rng   *rand.Rand
}

// New opens (or creates) a LevelDB-backed replay memory at the given
// directory path.
func New(path string, opts *opt.Options, cfg expreplay.Config) (*Memory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := leveldb.OpenFile(path, opts)
	if err != nil {
		return nil, err
	}

	cfg.FrameShape = cfg.FrameShape.Clone()
	return &Memory{
		path:      path,
		cfg:       cfg,
		frameSize: cfg.FrameSize(),
		db:        db,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Close implements io.Closer.
func (m *Memory) Close() error {
	return m.db.Close()
}

// Len implements expreplay.Buffer.
func (m *Memory) Len() int { return m.size }

// Config returns the memory's construction parameters.
func (m *Memory) Config() expreplay.Config { return m.cfg }

// Append implements expreplay.Buffer.
func (m *Memory) Append(exp expreplay.Experience) {
	if len(exp.State) != m.frameSize {
		panic(errors.Errorf("ldbstore: frame has %d bytes, want %d", len(exp.State), m.frameSize))
	}

	m.putExperience(m.cursor, exp)
	if m.size < m.cfg.Capacity {
		m.size++
	}
	m.cursor = (m.cursor + 1) % m.cfg.Capacity

	if exp.Done {
		m.recent = m.recent[:0]
	} else if m.cfg.ContextLen > 1 {
		m.recent = append(m.recent, exp)
		if len(m.recent) > m.cfg.ContextLen-1 {
			copy(m.recent, m.recent[1:])
			m.recent = m.recent[:m.cfg.ContextLen-1]
		}
	}
}

func (m *Memory) putExperience(pos int, exp expreplay.Experience) {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], uint64(pos))
	key := buf[:n]

	value, err := exp.MarshalBinary()
	if err != nil {
		panic(err)
	}

	if err := m.db.Put(key, value, m.wOpts); err != nil {
		panic(err)
	}
}

func (m *Memory) getExperience(pos int) expreplay.Experience {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], uint64(pos))

	value, err := m.db.Get(buf[:n], m.rOpts)
	if err != nil {
		panic(err)
	}

	var exp expreplay.Experience
	if err := exp.UnmarshalBinary(value); err != nil {
		panic(err)
	}

	return exp
}

// RecentState implements expreplay.Buffer.
func (m *Memory) RecentState() []expreplay.Frame {
	n := m.cfg.ContextLen - 1
	out := make([]expreplay.Frame, 0, n)
	for i := len(m.recent); i < n; i++ {
		out = append(out, make(expreplay.Frame, m.frameSize))
	}
	for _, exp := range m.recent {
		out = append(out, exp.State)
	}
	return out
}

// readWindow fetches the ContextLen+1 experiences of the window starting at
// idx, in window order.
func (m *Memory) readWindow(idx int) []expreplay.Experience {
	exps := make([]expreplay.Experience, m.cfg.ContextLen+1)
	for k := range exps {
		exps[k] = m.getExperience((idx + k) % m.size)
	}
	return exps
}

// SampleWindow implements expreplay.Buffer.
func (m *Memory) SampleWindow(idx int) (expreplay.Window, error) {
	if idx < 0 || idx >= m.size {
		return expreplay.Window{}, errors.Wrapf(expreplay.ErrIndexOutOfRange, "index %d outside [0, %d)", idx, m.size)
	}

	exps := m.readWindow(idx)
	frames := make([]uint8, (m.cfg.ContextLen+1)*m.frameSize)
	window.Stack(frames, m.frameSize, m.cfg.ContextLen,
		func(k int) []uint8 { return exps[k].State },
		func(k int) bool { return exps[k].Done },
	)

	last := exps[m.cfg.ContextLen-1]
	return expreplay.Window{
		States: tensor.New(
			tensor.WithShape(m.stackShape()...),
			tensor.WithBacking(frames),
		),
		Action: last.Action,
		Reward: last.Reward,
		Done:   last.Done,
	}, nil
}

// SampleBatch implements expreplay.Buffer.
func (m *Memory) SampleBatch(batchSize int) (expreplay.Batch, error) {
	lo, span := window.TrainRange(m.size, m.cfg.ContextLen)
	return m.sampleRange(lo, span, batchSize)
}

// SampleTestBatch implements expreplay.Buffer.
func (m *Memory) SampleTestBatch(batchSize int) (expreplay.Batch, error) {
	lo, span := window.TestRange(m.size, m.cfg.ContextLen)
	return m.sampleRange(lo, span, batchSize)
}

func (m *Memory) sampleRange(lo, span, batchSize int) (expreplay.Batch, error) {
	if batchSize <= 0 {
		return expreplay.Batch{}, errors.Errorf("ldbstore: batch size must be positive, got %d", batchSize)
	}
	if span <= 0 {
		return expreplay.Batch{}, errors.Wrapf(expreplay.ErrInsufficientData, "%d experiences stored", m.size)
	}

	windowBytes := (m.cfg.ContextLen + 1) * m.frameSize
	backing := make([]uint8, batchSize*windowBytes)
	actions := make([]int8, batchSize)
	rewards := make([]float32, batchSize)
	dones := make([]bool, batchSize)

	for i := 0; i < batchSize; i++ {
		idx := lo + m.rng.Intn(span)
		exps := m.readWindow(idx)
		window.Stack(backing[i*windowBytes:(i+1)*windowBytes], m.frameSize, m.cfg.ContextLen,
			func(k int) []uint8 { return exps[k].State },
			func(k int) bool { return exps[k].Done },
		)

		last := exps[m.cfg.ContextLen-1]
		actions[i] = int8(last.Action)
		rewards[i] = last.Reward
		dones[i] = last.Done
	}

	return expreplay.Batch{
		States: tensor.New(
			tensor.WithShape(m.stackShape(batchSize)...),
			tensor.WithBacking(backing),
		),
		Actions: actions,
		Rewards: rewards,
		Dones:   dones,
	}, nil
}

func (m *Memory) stackShape(leading ...int) []int {
	shape := make([]int, 0, len(leading)+1+len(m.cfg.FrameShape))
	shape = append(shape, leading...)
	shape = append(shape, m.cfg.ContextLen+1)
	shape = append(shape, m.cfg.FrameShape...)
	return shape
}

// MarshalBinary implements encoding.BinaryMarshaler. Only the metadata is
// serialized; the experience records stay in the database at path.
func (m *Memory) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(m.path); err != nil {
		return nil, err
	}

	if err := enc.Encode(m.cfg); err != nil {
		return nil, err
	}

	if err := enc.Encode(m.size); err != nil {
		return nil, err
	}

	if err := enc.Encode(m.cursor); err != nil {
		return nil, err
	}

	if err := enc.Encode(m.recent); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The construction
// Options are not serialized; the database is reopened with defaults and
// must already exist.
func (m *Memory) UnmarshalBinary(buf []byte) error {
	r := bytes.NewReader(buf)
	dec := gob.NewDecoder(r)

	if err := dec.Decode(&m.path); err != nil {
		return err
	}

	if err := dec.Decode(&m.cfg); err != nil {
		return err
	}

	if err := dec.Decode(&m.size); err != nil {
		return err
	}

	if err := dec.Decode(&m.cursor); err != nil {
		return err
	}

	if err := dec.Decode(&m.recent); err != nil {
		return err
	}

	if err := m.cfg.Validate(); err != nil {
		return err
	}

	m.frameSize = m.cfg.FrameSize()
	m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	db, err := leveldb.OpenFile(m.path, &opt.Options{ErrorIfMissing: true})
	if err != nil {
		return err
	}

	m.db = db
	return nil
}

func init() {
	gob.Register(&Memory{})
}
