package search

type cellState uint8

const (
	unseen cellState = iota
	open
	closed
)

const noParent = -1

// node is the per-cell search state, stored in an arena parallel to the grid.
type node struct {
	g         float64
	h         float64
	f         float64
	parent    int
	seq       uint64
	heapIndex int
	state     cellState
}

// frontier is a binary heap of arena indices ordered by f, then by the order
// in which cells were first discovered.
type frontier struct {
	items []int
	nodes []node
}

func (q *frontier) Len() int { return len(q.items) }

func (q *frontier) Less(i, j int) bool {
	a, b := &q.nodes[q.items[i]], &q.nodes[q.items[j]]
	if a.f != b.f {
		return a.f < b.f
	}
	return a.seq < b.seq
}

func (q *frontier) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.nodes[q.items[i]].heapIndex = i
	q.nodes[q.items[j]].heapIndex = j
}

func (q *frontier) Push(x any) {
	idx := x.(int)
	q.nodes[idx].heapIndex = len(q.items)
	q.items = append(q.items, idx)
}

func (q *frontier) Pop() any {
	n := len(q.items)
	idx := q.items[n-1]
	q.items = q.items[:n-1]
	q.nodes[idx].heapIndex = -1
	return idx
}

func (q *frontier) peek() int {
	return q.items[0]
}
