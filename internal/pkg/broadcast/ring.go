package broadcast

// ring is a fixed-capacity FIFO that overwrites its oldest entry when full.
type ring struct {
	buf   []string
	start int
	size  int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]string, capacity)}
}

func (r *ring) push(msg string) {
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = msg
		r.size++
		return
	}
	r.buf[r.start] = msg
	r.start = (r.start + 1) % len(r.buf)
}

func (r *ring) len() int { return r.size }

func (r *ring) each(fn func(string)) {
	for i := 0; i < r.size; i++ {
		fn(r.buf[(r.start+i)%len(r.buf)])
	}
}
