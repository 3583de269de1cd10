package collect

// Queue is a breadth-first queue that ignores paths it has already seen.
type Queue struct {
	items []string
	seen  map[string]bool
	idx   int
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{seen: make(map[string]bool)}
}

// Add enqueues path unless it was added before. It reports whether the
// path was new.
func (q *Queue) Add(path string) bool {
	if q.seen[path] {
		return false
	}
	q.seen[path] = true
	q.items = append(q.items, path)
	return true
}

// HasNext returns true while unread paths remain.
func (q *Queue) HasNext() bool {
	return q.idx < len(q.items)
}

// Next returns the next unread path.
func (q *Queue) Next() string {
	p := q.items[q.idx]
	q.idx++
	return p
}

// Len returns the number of distinct paths seen.
func (q *Queue) Len() int {
	return len(q.items)
}
