package expreplay

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

var (
	_ Buffer = (*Memory)(nil)
	_ Buffer = (*LockedBuffer)(nil)
)

func TestLockedBufferDelegates(t *testing.T) {
	m, err := New(testConfig(10, 4))
	require.NoError(t, err)
	buf := NewLocked(m)

	for i := 0; i < 10; i++ {
		buf.Append(exp1(uint8(10+i), int32(i), 0, false))
	}

	assert.Equal(t, 10, buf.Len())
	assert.Len(t, buf.RecentState(), 3)

	w, err := buf.SampleWindow(2)
	require.NoError(t, err)
	assert.Equal(t, []uint8{12, 13, 14, 15, 16}, w.States.Data().([]uint8))

	_, err = buf.SampleBatch(4)
	require.NoError(t, err)
	_, err = buf.SampleTestBatch(4)
	assert.ErrorIs(t, err, ErrInsufficientData)

	require.NoError(t, buf.Close())
}

func TestLockedBufferConcurrentAccess(t *testing.T) {
	m, err := New(Config{Capacity: 1000, FrameShape: tensor.Shape{4}, ContextLen: 4})
	require.NoError(t, err)
	buf := NewLocked(m)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 5000; i++ {
			buf.Append(Experience{
				State:  make(Frame, 4),
				Action: int32(i % 3),
				Done:   i%37 == 36,
			})
		}
	}()

	var sampleErrs int
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if _, err := buf.SampleBatch(16); err != nil && !errors.Is(err, ErrInsufficientData) {
				sampleErrs++
			}
			buf.RecentState()
			buf.Len()
		}
	}()

	wg.Wait()
	assert.Zero(t, sampleErrs)
	assert.Equal(t, 1000, buf.Len())
}
