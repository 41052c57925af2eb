package expreplay

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// MarshalTo writes the complete memory state to w: the four storage arrays,
// the occupancy counters, and the recency window, in that fixed order.
func (m *Memory) MarshalTo(w io.Writer) error {
	enc := gob.NewEncoder(w)

	if err := enc.Encode(m.states); err != nil {
		return err
	}

	if err := enc.Encode(m.rewards); err != nil {
		return err
	}

	if err := enc.Encode(m.actions); err != nil {
		return err
	}

	if err := enc.Encode(m.dones); err != nil {
		return err
	}

	if err := enc.Encode(m.size); err != nil {
		return err
	}

	if err := enc.Encode(m.cursor); err != nil {
		return err
	}

	return enc.Encode(m.recent.snapshot())
}

// Load reads a memory state previously written by MarshalTo and validates it
// against cfg. Any decode failure or mismatch with cfg returns
// ErrCorruptState and no memory: a partially restored state is never
// returned.
func Load(r io.Reader, cfg Config) (*Memory, error) {
	m, err := New(cfg)
	if err != nil {
		return nil, err
	}

	dec := gob.NewDecoder(r)

	var states []uint8
	if err := dec.Decode(&states); err != nil {
		return nil, corrupt(err, "state array")
	}

	var rewards []float32
	if err := dec.Decode(&rewards); err != nil {
		return nil, corrupt(err, "reward array")
	}

	var actions []int32
	if err := dec.Decode(&actions); err != nil {
		return nil, corrupt(err, "action array")
	}

	var dones []bool
	if err := dec.Decode(&dones); err != nil {
		return nil, corrupt(err, "done array")
	}

	var size, cursor int
	if err := dec.Decode(&size); err != nil {
		return nil, corrupt(err, "size")
	}

	if err := dec.Decode(&cursor); err != nil {
		return nil, corrupt(err, "cursor")
	}

	var recent []Experience
	if err := dec.Decode(&recent); err != nil {
		return nil, corrupt(err, "recency window")
	}

	switch {
	case len(states) != len(m.states):
		return nil, errors.Wrapf(ErrCorruptState, "state array has %d bytes, want %d", len(states), len(m.states))
	case len(rewards) != cfg.Capacity || len(actions) != cfg.Capacity || len(dones) != cfg.Capacity:
		return nil, errors.Wrapf(ErrCorruptState, "scalar arrays have %d/%d/%d entries, want %d",
			len(rewards), len(actions), len(dones), cfg.Capacity)
	case size < 0 || size > cfg.Capacity:
		return nil, errors.Wrapf(ErrCorruptState, "size %d outside [0, %d]", size, cfg.Capacity)
	case cursor < 0 || cursor >= cfg.Capacity:
		return nil, errors.Wrapf(ErrCorruptState, "cursor %d outside [0, %d)", cursor, cfg.Capacity)
	case len(recent) > cfg.ContextLen-1:
		return nil, errors.Wrapf(ErrCorruptState, "recency window holds %d entries, cap is %d",
			len(recent), cfg.ContextLen-1)
	}

	for _, exp := range recent {
		if len(exp.State) != m.frameSize {
			return nil, errors.Wrapf(ErrCorruptState, "recency frame has %d bytes, want %d",
				len(exp.State), m.frameSize)
		}
	}

	m.states = states
	m.rewards = rewards
	m.actions = actions
	m.dones = dones
	m.size = size
	m.cursor = cursor
	m.recent.restore(recent)
	return m, nil
}

func corrupt(err error, what string) error {
	return errors.Wrapf(ErrCorruptState, "decoding %s: %v", what, err)
}

// SaveFile writes the memory to the file at path, replacing whatever is
// there.
func (m *Memory) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating replay memory file")
	}

	if err := m.MarshalTo(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing replay memory to %v", path)
	}

	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "writing replay memory to %v", path)
	}

	glog.V(1).Infof("Saved replay memory (%d experiences) to %v", m.Len(), path)
	return nil
}

// LoadFile restores a memory previously written by SaveFile.
func LoadFile(path string, cfg Config) (*Memory, error) {
	glog.Infof("Loading replay memory from %v", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening replay memory file")
	}
	defer f.Close()

	m, err := Load(f, cfg)
	if err != nil {
		return nil, err
	}

	glog.Infof("Loaded replay memory with %d experiences", m.Len())
	return m, nil
}
