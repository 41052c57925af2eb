package expreplay

import "sync"

// LockedBuffer wraps a Buffer with a mutex so that a collection goroutine
// can append while a training goroutine samples.
type LockedBuffer struct {
	mx  sync.Mutex
	buf Buffer
}

// NewLocked returns buf wrapped in a LockedBuffer.
func NewLocked(buf Buffer) *LockedBuffer {
	return &LockedBuffer{buf: buf}
}

// Append implements Buffer.
func (l *LockedBuffer) Append(exp Experience) {
	l.mx.Lock()
	defer l.mx.Unlock()
	l.buf.Append(exp)
}

// RecentState implements Buffer.
func (l *LockedBuffer) RecentState() []Frame {
	l.mx.Lock()
	defer l.mx.Unlock()
	return l.buf.RecentState()
}

// SampleWindow implements Buffer.
func (l *LockedBuffer) SampleWindow(idx int) (Window, error) {
	l.mx.Lock()
	defer l.mx.Unlock()
	return l.buf.SampleWindow(idx)
}

// SampleBatch implements Buffer.
func (l *LockedBuffer) SampleBatch(batchSize int) (Batch, error) {
	l.mx.Lock()
	defer l.mx.Unlock()
	return l.buf.SampleBatch(batchSize)
}

// SampleTestBatch implements Buffer.
func (l *LockedBuffer) SampleTestBatch(batchSize int) (Batch, error) {
	l.mx.Lock()
	defer l.mx.Unlock()
	return l.buf.SampleTestBatch(batchSize)
}

// Len implements Buffer.
func (l *LockedBuffer) Len() int {
	l.mx.Lock()
	defer l.mx.Unlock()
	return l.buf.Len()
}

// Close implements Buffer.
func (l *LockedBuffer) Close() error {
	l.mx.Lock()
	defer l.mx.Unlock()
	return l.buf.Close()
}
