package expreplay

// recentQueue is a bounded FIFO over the current episode's most recent
// non-terminal experiences. It holds at most ContextLen-1 entries; pushing
// into a full queue evicts the oldest. A terminal transition clears it.
type recentQueue struct {
	buf  []Experience
	head int
	n    int
}

func newRecentQueue(capacity int) recentQueue {
	return recentQueue{buf: make([]Experience, capacity)}
}

func (q *recentQueue) len() int { return q.n }

func (q *recentQueue) push(exp Experience) {
	if len(q.buf) == 0 {
		return
	}

	if q.n == len(q.buf) {
		q.buf[q.head] = exp
		q.head = (q.head + 1) % len(q.buf)
		return
	}

	q.buf[(q.head+q.n)%len(q.buf)] = exp
	q.n++
}

// clear zeroes the entries so their frames can be collected.
func (q *recentQueue) clear() {
	for i := range q.buf {
		q.buf[i] = Experience{}
	}
	q.head = 0
	q.n = 0
}

// each visits the queued experiences oldest first.
func (q *recentQueue) each(visit func(Experience)) {
	for i := 0; i < q.n; i++ {
		visit(q.buf[(q.head+i)%len(q.buf)])
	}
}

// snapshot returns the queued experiences oldest first.
func (q *recentQueue) snapshot() []Experience {
	out := make([]Experience, 0, q.n)
	q.each(func(exp Experience) { out = append(out, exp) })
	return out
}

func (q *recentQueue) restore(entries []Experience) {
	for _, exp := range entries {
		q.push(exp)
	}
}
