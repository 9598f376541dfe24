package dispatch

import (
	"sync"
	"time"

	"github.com/sentinelops/sentinel/internal/domain/alert"
	"github.com/sentinelops/sentinel/internal/domain/notification"
	"github.com/sentinelops/sentinel/internal/pkg/errors"
	"github.com/sentinelops/sentinel/internal/pkg/metrics"
)

// deliveryItem is one queued notification delivery
type deliveryItem struct {
	history   *notification.History
	channel   *notification.Channel
	alert     *alert.Alert
	notBefore time.Time
}

// laneQueue holds one bounded channel per priority level so a worker never
// busy-loops over items of the wrong priority: each lane's workers consume
// only their own queue.
type laneQueue struct {
	mu     sync.Mutex
	closed bool
	lanes  map[notification.Priority]chan *deliveryItem
}

func newLaneQueue(size int) *laneQueue {
	lanes := make(map[notification.Priority]chan *deliveryItem, 4)
	for _, p := range notification.Priorities() {
		lanes[p] = make(chan *deliveryItem, size)
	}
	return &laneQueue{lanes: lanes}
}

// push enqueues an item into its priority lane without blocking; a full
// lane rejects the item, a closed queue rejects it without touching the
// lane channels.
func (q *laneQueue) push(item *deliveryItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return errors.Transient("dispatcher stopped", nil)
	}

	lane, ok := q.lanes[item.history.Priority]
	if !ok {
		lane = q.lanes[notification.PriorityNormal]
	}

	select {
	case lane <- item:
		metrics.SetQueueDepth(string(item.history.Priority), len(lane))
		return nil
	default:
		return errors.RateLimited("delivery queue full")
	}
}

// lane returns the channel for a priority level
func (q *laneQueue) lane(p notification.Priority) <-chan *deliveryItem {
	return q.lanes[p]
}

// close closes every lane and rejects any later push
func (q *laneQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	for _, lane := range q.lanes {
		close(lane)
	}
}
