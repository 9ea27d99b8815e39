package pathfind

import "container/heap"

// entry is one queued visit. A node may be queued several times as its
// distance improves; only the first pop of a node counts.
type entry struct {
	label int
	dist  float64
	seq   int // insertion order, breaks distance ties
}

// queue is a min-heap ordered by (dist, seq).
type queue []entry

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].seq < q[j].seq
}

func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queue) Push(x any) { *q = append(*q, x.(entry)) }

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

func (q *queue) push(e entry) { heap.Push(q, e) }

func (q *queue) pop() entry { return heap.Pop(q).(entry) }
