package expreplay

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"

	"github.com/timpalpant/go-expreplay/catch"
)

// TestCatchCollectionLoop drives a complete data-collection loop against the
// catch environment: each tick the agent assembles its model input from
// RecentState plus the live observation, acts, and records the transition.
func TestCatchCollectionLoop(t *testing.T) {
	env := catch.NewEnv(6, 6, 17)
	cfg := Config{
		Capacity:   500,
		FrameShape: tensor.Shape(env.FrameShape()),
		ContextLen: 4,
	}
	m, err := New(cfg)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(99))
	episodeStart := true
	for m.Len() < cfg.Capacity {
		obs := env.Observe()

		context := m.RecentState()
		require.Len(t, context, cfg.ContextLen-1)
		for _, f := range context {
			require.Len(t, f, cfg.FrameSize())
		}
		if episodeStart {
			// A fresh episode starts from an all-zero context.
			for _, f := range context {
				assert.Equal(t, make(Frame, cfg.FrameSize()), f)
			}
		}

		action := catch.Action(rng.Intn(catch.NumActions))
		reward, done := env.Step(action)
		m.Append(Experience{
			State:  obs,
			Action: int32(action),
			Reward: reward,
			Done:   done,
		})

		episodeStart = done
		if done {
			env.Reset()
		}
	}

	batch, err := m.SampleBatch(64)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{64, 5, 6, 6}, batch.States.Shape())

	test, err := m.SampleTestBatch(32)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{32, 5, 6, 6}, test.States.Shape())

	// Catch pays out only at episode ends.
	for i, r := range batch.Rewards {
		if batch.Dones[i] {
			assert.Contains(t, []float32{1, -1}, r, "window %d", i)
		} else {
			assert.Zero(t, r, "window %d", i)
		}
	}

	path := filepath.Join(t.TempDir(), "catch.bin")
	require.NoError(t, m.SaveFile(path))

	restored, err := LoadFile(path, cfg)
	require.NoError(t, err)
	require.Equal(t, m.Len(), restored.Len())

	for _, idx := range []int{0, 123, 456} {
		want, err := m.SampleWindow(idx)
		require.NoError(t, err)
		got, err := restored.SampleWindow(idx)
		require.NoError(t, err)
		assert.Equal(t, want.States.Data(), got.States.Data(), "index %d", idx)
		assert.Equal(t, want.Action, got.Action, "index %d", idx)
	}
}
