package expreplay

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/timpalpant/go-expreplay/internal/window"
)

// SampleBatch implements Buffer. Windows are drawn uniformly, with
// replacement, from the lower 80% training partition of the occupied buffer.
func (m *Memory) SampleBatch(batchSize int) (Batch, error) {
	lo, span := window.TrainRange(m.size, m.cfg.ContextLen)
	return m.sampleRange(lo, span, batchSize)
}

// SampleTestBatch implements Buffer. Windows are drawn from the upper 20%
// held-out partition, disjoint from the range SampleBatch draws from.
func (m *Memory) SampleTestBatch(batchSize int) (Batch, error) {
	lo, span := window.TestRange(m.size, m.cfg.ContextLen)
	return m.sampleRange(lo, span, batchSize)
}

func (m *Memory) sampleRange(lo, span, batchSize int) (Batch, error) {
	if batchSize <= 0 {
		return Batch{}, errors.Errorf("expreplay: batch size must be positive, got %d", batchSize)
	}
	if span <= 0 {
		return Batch{}, errors.Wrapf(ErrInsufficientData, "%d experiences stored", m.size)
	}

	windowBytes := (m.cfg.ContextLen + 1) * m.frameSize
	backing := make([]uint8, batchSize*windowBytes)
	actions := make([]int8, batchSize)
	rewards := make([]float32, batchSize)
	dones := make([]bool, batchSize)

	for i := 0; i < batchSize; i++ {
		idx := lo + m.rng.Intn(span)
		m.stackWindow(backing[i*windowBytes:(i+1)*windowBytes], idx)

		last := m.slot(idx + m.cfg.ContextLen - 1)
		actions[i] = int8(m.actions[last])
		rewards[i] = m.rewards[last]
		dones[i] = m.dones[last]
	}

	return Batch{
		States: tensor.New(
			tensor.WithShape(m.stackShape(batchSize)...),
			tensor.WithBacking(backing),
		),
		Actions: actions,
		Rewards: rewards,
		Dones:   dones,
	}, nil
}
