package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// stacker builds Stack callbacks over dense frame/done slices, one entry per
// window position.
func stacker(frames [][]byte, dones []bool) (func(int) []byte, func(int) bool) {
	return func(k int) []byte { return frames[k] },
		func(k int) bool { return dones[k] }
}

func TestStackNoBoundary(t *testing.T) {
	frames := [][]byte{{1}, {2}, {3}, {4}, {5}}
	dones := []bool{false, false, false, false, false}

	dst := make([]byte, 5)
	frame, done := stacker(frames, dones)
	Stack(dst, 1, 4, frame, done)

	assert.Equal(t, []byte{1, 2, 3, 4, 5}, dst)
}

func TestStackBoundaryMasksEarlierFrames(t *testing.T) {
	frames := [][]byte{{1}, {2}, {3}, {4}, {5}}

	// A terminal flag at position k zero-fills positions 0..k.
	for k := 0; k <= 2; k++ {
		dones := make([]bool, 5)
		dones[k] = true

		dst := make([]byte, 5)
		frame, done := stacker(frames, dones)
		Stack(dst, 1, 4, frame, done)

		for pos := 0; pos < 5; pos++ {
			want := frames[pos][0]
			if pos <= k {
				want = 0
			}
			assert.Equal(t, want, dst[pos], "boundary at %d, position %d", k, pos)
		}
	}
}

func TestStackHonorsOnlyNearestBoundary(t *testing.T) {
	frames := [][]byte{{1}, {2}, {3}, {4}, {5}}
	dones := []bool{true, false, true, false, false}

	dst := make([]byte, 5)
	frame, done := stacker(frames, dones)
	Stack(dst, 1, 4, frame, done)

	// The scan stops at position 2; the earlier flag at 0 is irrelevant.
	assert.Equal(t, []byte{0, 0, 0, 4, 5}, dst)
}

func TestStackIgnoresFinalTransitionFlags(t *testing.T) {
	frames := [][]byte{{1}, {2}, {3}, {4}, {5}}
	dones := []bool{false, false, false, true, true}

	dst := make([]byte, 5)
	frame, done := stacker(frames, dones)
	Stack(dst, 1, 4, frame, done)

	// Positions contextLen-1 and contextLen belong to the sampled
	// transition itself and never trigger masking.
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, dst)
}

func TestStackMultiByteFrames(t *testing.T) {
	frames := [][]byte{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}}
	dones := []bool{true, false, false}

	dst := make([]byte, 9)
	frame, done := stacker(frames, dones)
	Stack(dst, 3, 2, frame, done)

	assert.Equal(t, []byte{0, 0, 0, 2, 2, 2, 3, 3, 3}, dst)
}

func TestStackContextLenOne(t *testing.T) {
	frames := [][]byte{{7}, {8}}
	dones := []bool{true, true}

	dst := make([]byte, 2)
	frame, done := stacker(frames, dones)
	Stack(dst, 1, 1, frame, done)

	// A two-frame window has no history positions to mask.
	assert.Equal(t, []byte{7, 8}, dst)
}

func TestTrainRange(t *testing.T) {
	testCases := []struct {
		size, contextLen int
		lo, span         int
	}{
		{size: 100, contextLen: 4, lo: 0, span: 75},
		{size: 50, contextLen: 4, lo: 0, span: 35},
		{size: 1000000, contextLen: 4, lo: 0, span: 799995},
		{size: 10, contextLen: 4, lo: 0, span: 3},
		{size: 7, contextLen: 4, lo: 0, span: 0},
		{size: 0, contextLen: 4, lo: 0, span: -5},
	}

	for _, tc := range testCases {
		lo, span := TrainRange(tc.size, tc.contextLen)
		assert.Equal(t, tc.lo, lo, "size %d", tc.size)
		assert.Equal(t, tc.span, span, "size %d", tc.size)
	}
}

func TestTestRange(t *testing.T) {
	testCases := []struct {
		size, contextLen int
		lo, span         int
	}{
		{size: 100, contextLen: 4, lo: 80, span: 15},
		{size: 50, contextLen: 4, lo: 40, span: 5},
		{size: 1000000, contextLen: 4, lo: 800000, span: 199995},
		{size: 30, contextLen: 4, lo: 24, span: 1},
		{size: 25, contextLen: 4, lo: 20, span: 0},
	}

	for _, tc := range testCases {
		lo, span := TestRange(tc.size, tc.contextLen)
		assert.Equal(t, tc.lo, lo, "size %d", tc.size)
		assert.Equal(t, tc.span, span, "size %d", tc.size)
	}
}

func TestRangesDisjoint(t *testing.T) {
	for _, size := range []int{20, 100, 1000, 99999} {
		trainLo, trainSpan := TrainRange(size, 4)
		testLo, testSpan := TestRange(size, 4)

		if trainSpan <= 0 || testSpan <= 0 {
			continue
		}

		// A training window starting at the last eligible index spans
		// positions trainLo+trainSpan-1 .. +contextLen; all must stay
		// below the held-out partition.
		lastTrainPos := trainLo + trainSpan - 1 + 4
		assert.Less(t, lastTrainPos, testLo, "size %d", size)
		assert.LessOrEqual(t, testLo+testSpan-1+4, size-1, "size %d", size)
	}
}
