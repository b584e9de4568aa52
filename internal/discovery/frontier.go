package discovery

import "container/heap"

// frontierItem is one queued URL awaiting classification.
type frontierItem struct {
	url      string
	depth    int
	priority int
	seq      int
}

// frontier is an explicit priority queue over not-yet-visited URLs. Ordering:
// shallower depth first (depth-monotonic expansion), then higher priority,
// then insertion order. Frontier mutation happens only on the crawl loop's
// goroutine.
type frontier struct {
	items []frontierItem
	seq   int
}

func newFrontier() *frontier {
	f := &frontier{}
	heap.Init((*frontierHeap)(f))
	return f
}

func (f *frontier) Push(url string, depth, priority int) {
	f.seq++
	heap.Push((*frontierHeap)(f), frontierItem{
		url:      url,
		depth:    depth,
		priority: priority,
		seq:      f.seq,
	})
}

func (f *frontier) Pop() (frontierItem, bool) {
	if len(f.items) == 0 {
		return frontierItem{}, false
	}
	item := heap.Pop((*frontierHeap)(f)).(frontierItem)
	return item, true
}

func (f *frontier) Len() int { return len(f.items) }

type frontierHeap frontier

func (h *frontierHeap) Len() int { return len(h.items) }

func (h *frontierHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if a.depth != b.depth {
		return a.depth < b.depth
	}
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	return a.seq < b.seq
}

func (h *frontierHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *frontierHeap) Push(x any) { h.items = append(h.items, x.(frontierItem)) }

func (h *frontierHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}
