package ltstar

import "container/heap"

// openEntry is a node waiting in the open set. seq breaks ties between equal keys so that entries
// pop in insertion order.
type openEntry struct {
	node         handle
	f            float64
	seq          uint64
	indexInQueue int
}

type openQueue []*openEntry

func (q openQueue) Len() int { return len(q) }

func (q openQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}

func (q openQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].indexInQueue = i
	q[j].indexInQueue = j
}

func (q *openQueue) Push(x any) {
	entry := x.(*openEntry)
	entry.indexInQueue = len(*q)
	*q = append(*q, entry)
}

func (q *openQueue) Pop() any {
	old := *q
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.indexInQueue = -1
	*q = old[:n-1]
	return entry
}

// openSet is a priority queue of node handles with membership lookup.
type openSet struct {
	queue   openQueue
	entries map[handle]*openEntry
	nextSeq uint64
}

func newOpenSet() *openSet {
	return &openSet{entries: map[handle]*openEntry{}}
}

func (o *openSet) Len() int {
	return o.queue.Len()
}

func (o *openSet) contains(h handle) bool {
	_, ok := o.entries[h]
	return ok
}

// insert adds h with key f. h must not already be present.
func (o *openSet) insert(h handle, f float64) {
	entry := &openEntry{node: h, f: f, seq: o.nextSeq}
	o.nextSeq++
	heap.Push(&o.queue, entry)
	o.entries[h] = entry
}

// remove takes h out of the set if present.
func (o *openSet) remove(h handle) bool {
	entry, ok := o.entries[h]
	if !ok {
		return false
	}
	heap.Remove(&o.queue, entry.indexInQueue)
	delete(o.entries, h)
	return true
}

// pop removes and returns the handle with the lowest key.
func (o *openSet) pop() handle {
	entry := heap.Pop(&o.queue).(*openEntry)
	delete(o.entries, entry.node)
	return entry.node
}
