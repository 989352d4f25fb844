package achievements

import (
	"sync"

	"github.com/pocketledger/pocketledger/internal/model"
)

// queue holds newly earned achievements until the presentation layer
// drains them, oldest first.
type queue struct {
	mu    sync.Mutex
	items []model.Achievement
}

func (q *queue) push(a model.Achievement) {
	q.mu.Lock()
	q.items = append(q.items, a)
	q.mu.Unlock()
}

func (q *queue) pop() (model.Achievement, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return model.Achievement{}, false
	}
	a := q.items[0]
	q.items[0] = model.Achievement{}
	q.items = q.items[1:]
	return a, true
}

func (q *queue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
