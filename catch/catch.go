// Package catch implements the classic falling-ball testbed: a ball drops
// one row per tick and the agent slides a paddle along the bottom row to
// intercept it. Episodes are short and rewards are dense, which makes it a
// convenient end-to-end exercise for replay memories.
package catch

import "math/rand"

// Action moves the paddle one column left or right, or keeps it still.
type Action int

const (
	MoveLeft Action = iota
	Stay
	MoveRight
)

// NumActions is the size of the action space.
const NumActions = 3

// Env is a single game instance. It is not safe for concurrent use.
type Env struct {
	rows, cols int

	ballRow   int
	ballCol   int
	paddleCol int
	done      bool

	rng *rand.Rand
}

// NewEnv returns a catch environment rendering rows x cols frames. Play is
// reproducible for a fixed seed.
func NewEnv(rows, cols int, seed int64) *Env {
	env := &Env{
		rows: rows,
		cols: cols,
		rng:  rand.New(rand.NewSource(seed)),
	}
	env.Reset()
	return env
}

// FrameShape returns the dimensions of the frames Observe renders.
func (e *Env) FrameShape() []int {
	return []int{e.rows, e.cols}
}

// Reset starts a new episode: the ball appears in a random column of the top
// row and the paddle returns to the middle of the bottom row.
func (e *Env) Reset() {
	e.ballRow = 0
	e.ballCol = e.rng.Intn(e.cols)
	e.paddleCol = e.cols / 2
	e.done = false
}

// Observe renders the current frame: 255 at the ball and paddle pixels, 0
// elsewhere.
func (e *Env) Observe() []uint8 {
	frame := make([]uint8, e.rows*e.cols)
	frame[e.ballRow*e.cols+e.ballCol] = 255
	frame[(e.rows-1)*e.cols+e.paddleCol] = 255
	return frame
}

// Step advances one tick: the paddle moves by the chosen action, then the
// ball falls one row. The episode ends when the ball reaches the bottom row,
// with reward +1 if the paddle is under it and -1 otherwise.
//
// Step panics if called after the episode has ended; call Reset first.
func (e *Env) Step(action Action) (reward float32, done bool) {
	if e.done {
		panic("catch: Step called on a finished episode")
	}

	e.paddleCol += int(action) - 1
	if e.paddleCol < 0 {
		e.paddleCol = 0
	}
	if e.paddleCol > e.cols-1 {
		e.paddleCol = e.cols - 1
	}

	e.ballRow++
	if e.ballRow < e.rows-1 {
		return 0, false
	}

	e.done = true
	if e.ballCol == e.paddleCol {
		return 1, true
	}

	return -1, true
}

// Done reports whether the current episode has finished.
func (e *Env) Done() bool { return e.done }
