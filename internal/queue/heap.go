package queue

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/shortlist/internal/contract"
	"github.com/hupe1980/shortlist/score"
)

var (
	// ErrDuplicateKey is raised when adding a key that is already present.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrUnknownKey is raised when addressing a key that is not present.
	ErrUnknownKey = errors.New("unknown key")
)

// heapArity is the fan-out of both orderings (4-ary heap).
const heapArity = 4

const noPos = -1

type order uint8

const (
	bestFirst  order = iota // max-heap, root is the best entry
	worstFirst              // min-heap over unlocked entries, root is the eviction candidate
)

type slot[K comparable] struct {
	key   K
	score score.CompositeScore
	seq   uint64
	pos   [2]int32 // position in the best-first and worst-first orderings
	live  bool
}

type ordering struct {
	ids   []int32
	order order
}

// Heap is a max-first priority structure over (key, CompositeScore) pairs,
// addressable by key.
//
// Entries live in an arena of slots with stable indices; removed slots go to
// a free list. Two d-ary heaps over slot indices order the entries: one
// best-first, one worst-first holding only unlocked entries. A key index maps
// every key to its slot. Each method validates its arguments before touching
// any of these, so a contract-violation panic leaves them consistent.
//
// Ties are broken by insertion order: older entries rank higher and are
// evicted last.
type Heap[K comparable] struct {
	slots  []slot[K]
	free   []int32
	index  map[K]int32
	locked *bitset.BitSet
	best   ordering
	worst  ordering
	width  int // -1 until the first Add
	seq    uint64
}

// New returns an empty heap with room for capacity entries.
func New[K comparable](capacity int) *Heap[K] {
	if capacity < 0 {
		capacity = 0
	}
	return &Heap[K]{
		slots:  make([]slot[K], 0, capacity),
		index:  make(map[K]int32, capacity),
		locked: bitset.New(uint(capacity)),
		best:   ordering{ids: make([]int32, 0, capacity), order: bestFirst},
		worst:  ordering{ids: make([]int32, 0, capacity), order: worstFirst},
		width:  -1,
	}
}

// Len returns the number of entries.
func (h *Heap[K]) Len() int { return len(h.index) }

// Evictable returns the number of unlocked entries.
func (h *Heap[K]) Evictable() int { return len(h.worst.ids) }

// Contains reports whether key is present.
func (h *Heap[K]) Contains(key K) bool {
	_, ok := h.index[key]
	return ok
}

// Score returns the score of key.
func (h *Heap[K]) Score(key K) (score.CompositeScore, bool) {
	id, ok := h.index[key]
	if !ok {
		return score.CompositeScore{}, false
	}
	return h.slots[id].score, true
}

// Locked reports whether key is present and locked.
func (h *Heap[K]) Locked(key K) bool {
	id, ok := h.index[key]
	return ok && h.locked.Test(uint(id))
}

// Add inserts key with score s. Panics if key is already present or if s
// has a different width than the entries already stored.
func (h *Heap[K]) Add(key K, s score.CompositeScore) {
	if _, ok := h.index[key]; ok {
		contract.Failf("queue.Heap.Add", ErrDuplicateKey, "key %v", key)
	}
	h.checkWidth("queue.Heap.Add", s)

	id := h.alloc()
	h.seq++
	h.slots[id] = slot[K]{key: key, score: s, seq: h.seq, pos: [2]int32{noPos, noPos}, live: true}
	h.index[key] = id
	h.locked.Clear(uint(id))
	h.push(&h.best, id)
	h.push(&h.worst, id)
	if h.width < 0 {
		h.width = s.Width()
	}
}

// Update replaces the score of key and reports whether it changed.
func (h *Heap[K]) Update(key K, s score.CompositeScore) bool {
	id := h.mustLookup("queue.Heap.Update", key)
	h.checkWidth("queue.Heap.Update", s)

	sl := &h.slots[id]
	cmp := s.Compare(sl.score)
	if cmp == 0 {
		return false
	}
	sl.score = s
	h.fix(&h.best, id)
	if h.slots[id].pos[worstFirst] != noPos {
		h.fix(&h.worst, id)
	}
	return true
}

// Top returns the best entry.
func (h *Heap[K]) Top() (K, score.CompositeScore, bool) {
	return h.root(&h.best)
}

// Pop removes and returns the best entry.
func (h *Heap[K]) Pop() (K, score.CompositeScore, bool) {
	k, s, ok := h.root(&h.best)
	if ok {
		h.remove(h.best.ids[0])
	}
	return k, s, ok
}

// Min returns the worst unlocked entry.
func (h *Heap[K]) Min() (K, score.CompositeScore, bool) {
	return h.root(&h.worst)
}

// PopMin removes and returns the worst unlocked entry.
func (h *Heap[K]) PopMin() (K, score.CompositeScore, bool) {
	k, s, ok := h.root(&h.worst)
	if ok {
		h.remove(h.worst.ids[0])
	}
	return k, s, ok
}

// Remove deletes key and reports whether it was present.
func (h *Heap[K]) Remove(key K) bool {
	id, ok := h.index[key]
	if !ok {
		return false
	}
	h.remove(id)
	return true
}

// SetLocked locks or unlocks key. Locked entries are never returned by Min
// or PopMin. Panics if key is not present.
func (h *Heap[K]) SetLocked(key K, locked bool) {
	id := h.mustLookup("queue.Heap.SetLocked", key)
	if h.locked.Test(uint(id)) == locked {
		return
	}
	if locked {
		h.locked.Set(uint(id))
		h.detach(&h.worst, id)
		return
	}
	h.locked.Clear(uint(id))
	h.push(&h.worst, id)
}

// Ordered yields entries from best to worst. The heap must not be mutated
// during iteration.
func (h *Heap[K]) Ordered() iter.Seq2[K, score.CompositeScore] {
	return func(yield func(K, score.CompositeScore) bool) {
		ids := slices.Clone(h.best.ids)
		slices.SortFunc(ids, h.compareBest)
		for _, id := range ids {
			if !yield(h.slots[id].key, h.slots[id].score) {
				return
			}
		}
	}
}

// compareBest orders slots best first for slices.SortFunc.
func (h *Heap[K]) compareBest(a, b int32) int {
	switch {
	case a == b:
		return 0
	case h.before(bestFirst, a, b):
		return -1
	case h.before(bestFirst, b, a):
		return 1
	default:
		return 0
	}
}

// Keys returns all keys in unspecified order.
func (h *Heap[K]) Keys() []K {
	keys := make([]K, 0, len(h.index))
	for k := range h.index {
		keys = append(keys, k)
	}
	return keys
}

// Check verifies the internal invariants and returns the first violation.
func (h *Heap[K]) Check() error {
	if len(h.best.ids) != len(h.index) {
		return fmt.Errorf("best-first ordering holds %d entries, index %d", len(h.best.ids), len(h.index))
	}
	live := 0
	for id := range h.slots {
		if h.slots[id].live {
			live++
		}
	}
	if live != len(h.index) {
		return fmt.Errorf("%d live slots, index %d", live, len(h.index))
	}
	unlocked := 0
	for k, id := range h.index {
		sl := &h.slots[id]
		if !sl.live || sl.key != k {
			return fmt.Errorf("index entry %v points to slot %d holding %v", k, id, sl.key)
		}
		if p := sl.pos[bestFirst]; p == noPos || h.best.ids[p] != id {
			return fmt.Errorf("slot %d has stale best-first position %d", id, p)
		}
		p := sl.pos[worstFirst]
		if h.locked.Test(uint(id)) {
			if p != noPos {
				return fmt.Errorf("locked slot %d is evictable", id)
			}
			continue
		}
		unlocked++
		if p == noPos || h.worst.ids[p] != id {
			return fmt.Errorf("slot %d has stale worst-first position %d", id, p)
		}
	}
	if unlocked != len(h.worst.ids) {
		return fmt.Errorf("worst-first ordering holds %d entries, %d unlocked", len(h.worst.ids), unlocked)
	}
	for _, o := range []*ordering{&h.best, &h.worst} {
		for i := 1; i < len(o.ids); i++ {
			parent := (i - 1) / heapArity
			if h.before(o.order, o.ids[i], o.ids[parent]) {
				return fmt.Errorf("heap order violated at %d", i)
			}
		}
	}
	return nil
}

func (h *Heap[K]) mustLookup(op string, key K) int32 {
	id, ok := h.index[key]
	if !ok {
		contract.Failf(op, ErrUnknownKey, "key %v", key)
	}
	return id
}

func (h *Heap[K]) checkWidth(op string, s score.CompositeScore) {
	if h.width >= 0 && s.Width() != h.width {
		contract.Failf(op, score.ErrShapeMismatch, "width %d, heap holds %d", s.Width(), h.width)
	}
}

func (h *Heap[K]) alloc() int32 {
	if n := len(h.free); n > 0 {
		id := h.free[n-1]
		h.free = h.free[:n-1]
		return id
	}
	h.slots = append(h.slots, slot[K]{})
	return int32(len(h.slots) - 1)
}

func (h *Heap[K]) remove(id int32) {
	sl := &h.slots[id]
	h.detach(&h.best, id)
	if sl.pos[worstFirst] != noPos {
		h.detach(&h.worst, id)
	}
	delete(h.index, sl.key)
	h.locked.Clear(uint(id))
	*sl = slot[K]{pos: [2]int32{noPos, noPos}}
	h.free = append(h.free, id)
}

func (h *Heap[K]) root(o *ordering) (K, score.CompositeScore, bool) {
	if len(o.ids) == 0 {
		var zero K
		return zero, score.CompositeScore{}, false
	}
	sl := &h.slots[o.ids[0]]
	return sl.key, sl.score, true
}

// before reports whether slot a belongs above slot b in the given ordering.
func (h *Heap[K]) before(o order, a, b int32) bool {
	sa, sb := &h.slots[a], &h.slots[b]
	cmp := sa.score.Compare(sb.score)
	if o == bestFirst {
		if cmp != 0 {
			return cmp > 0
		}
		return sa.seq < sb.seq
	}
	if cmp != 0 {
		return cmp < 0
	}
	return sa.seq > sb.seq
}

func (h *Heap[K]) place(o *ordering, i int, id int32) {
	o.ids[i] = id
	h.slots[id].pos[o.order] = int32(i)
}

func (h *Heap[K]) push(o *ordering, id int32) {
	o.ids = append(o.ids, id)
	h.place(o, len(o.ids)-1, id)
	h.up(o, len(o.ids)-1)
}

// detach removes id from o by moving the last element into its place.
func (h *Heap[K]) detach(o *ordering, id int32) {
	i := int(h.slots[id].pos[o.order])
	last := len(o.ids) - 1
	h.slots[id].pos[o.order] = noPos
	if i != last {
		h.place(o, i, o.ids[last])
	}
	o.ids = o.ids[:last]
	if i < last {
		h.fixAt(o, i)
	}
}

func (h *Heap[K]) fix(o *ordering, id int32) {
	h.fixAt(o, int(h.slots[id].pos[o.order]))
}

func (h *Heap[K]) fixAt(o *ordering, i int) {
	if !h.up(o, i) {
		h.down(o, i)
	}
}

// up moves the element at j towards the root and reports whether it moved.
func (h *Heap[K]) up(o *ordering, j int) bool {
	start := j
	id := o.ids[j]
	for j > 0 {
		i := (j - 1) / heapArity
		if !h.before(o.order, id, o.ids[i]) {
			break
		}
		h.place(o, j, o.ids[i])
		j = i
	}
	h.place(o, j, id)
	return j != start
}

// down moves the element at i0 towards the leaves.
func (h *Heap[K]) down(o *ordering, i0 int) {
	n := len(o.ids)
	i := i0
	id := o.ids[i]
	for {
		firstChild := heapArity*i + 1
		if firstChild >= n {
			break
		}
		best := firstChild
		lastChild := min(firstChild+heapArity, n)
		for c := firstChild + 1; c < lastChild; c++ {
			if h.before(o.order, o.ids[c], o.ids[best]) {
				best = c
			}
		}
		if !h.before(o.order, o.ids[best], id) {
			break
		}
		h.place(o, i, o.ids[best])
		i = best
	}
	h.place(o, i, id)
}
