package space

// EventKind identifies a change notification.
type EventKind uint8

const (
	EntryAdded EventKind = iota
	EntryUpdated
	EntryRemoved
	ActorAdded
	ActorWillChange
	ActorDidChange
	ActorRemoved
)

func (k EventKind) String() string {
	switch k {
	case EntryAdded:
		return "entry_added"
	case EntryUpdated:
		return "entry_updated"
	case EntryRemoved:
		return "entry_removed"
	case ActorAdded:
		return "actor_added"
	case ActorWillChange:
		return "actor_will_change"
	case ActorDidChange:
		return "actor_did_change"
	case ActorRemoved:
		return "actor_removed"
	}
	return "unknown"
}

// Event is emitted by a Space when an element changes. Old holds the element
// before the change (removed, updated, will change) and New the element after
// it (added, updated, did change).
type Event struct {
	Kind EventKind
	Old  Element
	New  Element
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
