package dashboard

// DefaultHistorySize is the number of distance samples kept per panel.
const DefaultHistorySize = 50

// History is a fixed-size circular buffer of distance samples.
// Once full, each push evicts the oldest sample.
type History struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a history holding at most size samples.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		data: make([]float64, size),
		size: size,
	}
}

// Push appends a sample, evicting the oldest one when full.
func (h *History) Push(value float64) {
	h.data[h.head] = value
	h.head = (h.head + 1) % h.size
	if h.count < h.size {
		h.count++
	}
}

// Last returns the last count values in chronological order (oldest first).
// Returns fewer values if not enough history is available.
func (h *History) Last(count int) []float64 {
	if count <= 0 || h.count == 0 {
		return nil
	}
	if count > h.count {
		count = h.count
	}

	result := make([]float64, count)

	// head is the next write position, so the newest value is at head-1.
	start := (h.head - count + h.size) % h.size
	for i := 0; i < count; i++ {
		result[i] = h.data[(start+i)%h.size]
	}
	return result
}

// Values returns every stored sample, oldest first. The slice is a copy.
func (h *History) Values() []float64 {
	return h.Last(h.count)
}

// Latest returns the newest sample.
func (h *History) Latest() (float64, bool) {
	if h.count == 0 {
		return 0, false
	}
	return h.data[(h.head-1+h.size)%h.size], true
}

// Len is the number of stored samples.
func (h *History) Len() int { return h.count }

// Cap is the maximum number of samples.
func (h *History) Cap() int { return h.size }

// Reset drops all samples.
func (h *History) Reset() {
	h.head = 0
	h.count = 0
}
