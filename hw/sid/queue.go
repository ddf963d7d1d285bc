package sid

import "sync"

// SampleQueue holds the samples produced by the SID until the audio device
// consumes them. There is a single producer (the emulation goroutine) and a
// single consumer (the audio device).
type SampleQueue struct {
	mu        sync.Mutex
	buf       []float32
	last      float32
	underruns int
	record    func([]float32)
}

// Push appends a batch of samples.
func (q *SampleQueue) Push(samples []float32) {
	if len(samples) == 0 {
		return
	}
	q.mu.Lock()
	q.buf = append(q.buf, samples...)
	rec := q.record
	q.mu.Unlock()

	if rec != nil {
		rec(samples)
	}
}

// Len returns the number of queued samples.
func (q *SampleQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

// Drain fills dst with queued samples, each one repeated over channels
// interleaved slots. When the queue runs out, the last sample is held and
// Drain reports an underrun.
func (q *SampleQueue) Drain(dst []float32, channels int) (underrun bool) {
	if channels < 1 {
		channels = 1
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	frames := len(dst) / channels
	n := min(frames, len(q.buf))
	for i := range n {
		for c := range channels {
			dst[i*channels+c] = q.buf[i]
		}
	}
	if n > 0 {
		q.last = q.buf[n-1]
		q.buf = q.buf[:copy(q.buf, q.buf[n:])]
	}

	for i := n * channels; i < len(dst); i++ {
		dst[i] = q.last
	}
	if n < frames {
		q.underruns++
		return true
	}
	return false
}

// Underruns returns the number of underruns since the last call.
func (q *SampleQueue) Underruns() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := q.underruns
	q.underruns = 0
	return n
}

// SetRecorder sets a function receiving every pushed batch, or removes it
// when rec is nil. rec is called from the producer goroutine and must not
// retain the slice.
func (q *SampleQueue) SetRecorder(rec func([]float32)) {
	q.mu.Lock()
	q.record = rec
	q.mu.Unlock()
}
