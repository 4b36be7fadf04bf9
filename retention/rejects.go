package retention

// rejects remembers the most recently rejected candidates, oldest dropped first.
type rejects[K comparable, C any] struct {
	limit int
	gen   uint64
	items map[K]rejected[C]
	fifo  []rejectedRef[K] // may hold stale refs; compacted lazily
}

type rejected[C any] struct {
	c   C
	gen uint64
}

type rejectedRef[K comparable] struct {
	key K
	gen uint64
}

func newRejects[K comparable, C any](limit int) *rejects[K, C] {
	return &rejects[K, C]{limit: limit, items: make(map[K]rejected[C])}
}

func (r *rejects[K, C]) put(key K, c C) {
	if r.limit == 0 {
		return
	}
	r.gen++
	r.items[key] = rejected[C]{c: c, gen: r.gen}
	r.fifo = append(r.fifo, rejectedRef[K]{key: key, gen: r.gen})

	for len(r.items) > r.limit {
		ref := r.fifo[0]
		r.fifo = r.fifo[1:]
		if cur, ok := r.items[ref.key]; ok && cur.gen == ref.gen {
			delete(r.items, ref.key)
		}
	}
	if len(r.fifo) > 2*r.limit+16 {
		r.compact()
	}
}

func (r *rejects[K, C]) compact() {
	live := r.fifo[:0:0]
	for _, ref := range r.fifo {
		if cur, ok := r.items[ref.key]; ok && cur.gen == ref.gen {
			live = append(live, ref)
		}
	}
	r.fifo = live
}

func (r *rejects[K, C]) take(key K) (C, bool) {
	cur, ok := r.items[key]
	if ok {
		delete(r.items, key)
	}
	return cur.c, ok
}

func (r *rejects[K, C]) forget(key K) { delete(r.items, key) }

func (r *rejects[K, C]) len() int { return len(r.items) }
