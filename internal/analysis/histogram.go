package analysis

// Entry is a per-key tally held by a Histogram.
type Entry struct {
	Key       string
	Jobs      int // rows seen with this key
	Certified int // rows with this key whose status was certified
}

// Histogram counts rows and certified rows per categorical key.
// Keys are case-sensitive and remembered in first-seen order.
type Histogram struct {
	name  string
	index map[string]int
	items []Entry
}

// NewHistogram returns an empty histogram. The name is used for default report file names.
func NewHistogram(name string) *Histogram {
	return &Histogram{name: name, index: make(map[string]int)}
}

// Name returns the histogram label, e.g. "occupations".
func (h *Histogram) Name() string { return h.name }

// Record counts one row under key.
func (h *Histogram) Record(key string, certified bool) {
	i, ok := h.index[key]
	if !ok {
		i = len(h.items)
		h.index[key] = i
		h.items = append(h.items, Entry{Key: key})
	}
	h.items[i].Jobs++
	if certified {
		h.items[i].Certified++
	}
}

// Get returns the tally for key.
func (h *Histogram) Get(key string) (Entry, bool) {
	i, ok := h.index[key]
	if !ok {
		return Entry{}, false
	}
	return h.items[i], true
}

// Len reports the number of distinct keys.
func (h *Histogram) Len() int { return len(h.items) }

// Snapshot returns a copy of all entries in first-seen order.
func (h *Histogram) Snapshot() []Entry {
	out := make([]Entry, len(h.items))
	copy(out, h.items)
	return out
}
