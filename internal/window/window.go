// Package window implements the context-window arithmetic shared by the
// in-memory replay memory and its disk-backed equivalents: stacking
// consecutive frames with episode-boundary masking, and the train/test
// partition of the sampling range.
package window

// Stack assembles contextLen+1 consecutive frames into dst, which must hold
// (contextLen+1)*frameSize zeroed bytes. frame(k) and done(k) report the
// stored frame and terminal flag at window position k, for k in
// [0, contextLen].
//
// Scanning backward from position contextLen-2, the first position whose
// terminal flag is set marks the end of a prior, unrelated episode: that
// position and everything before it are left zero-filled, and only later
// positions receive real frame data. At most one boundary is honored. The
// two final positions belong to the transition being sampled and are never
// masked.
func Stack(dst []byte, frameSize, contextLen int, frame func(k int) []byte, done func(k int) bool) {
	start := 0
	for k := contextLen - 2; k >= 0; k-- {
		if done(k) {
			start = k + 1
			break
		}
	}

	for k := start; k <= contextLen; k++ {
		copy(dst[k*frameSize:(k+1)*frameSize], frame(k))
	}
}

// TrainRange returns the half-open interval [lo, lo+span) of window start
// indices eligible for training batches: the lower 80% of the occupied
// buffer, pulled back by contextLen+1 so a window never runs off the end of
// its partition. span <= 0 means the buffer holds too little data to sample.
func TrainRange(size, contextLen int) (lo, span int) {
	return 0, int(float64(size)*0.8) - contextLen - 1
}

// TestRange returns the held-out interval: the upper 20% of the occupied
// buffer, disjoint from TrainRange for any size.
func TestRange(size, contextLen int) (lo, span int) {
	return int(float64(size) * 0.8), int(float64(size)*0.2) - contextLen - 1
}
