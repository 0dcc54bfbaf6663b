/*
Package reconcile merges a one-time historical snapshot with a live event
stream into a single de-duplicated ordered view.

Each view moves through two states: Seeding, before the historical fetch has
landed, and Live, once it has. Live events arriving during Seeding are
buffered and replayed after the seed, so a push racing the snapshot fetch is
neither lost nor duplicated; the message id is the deduplication key either
way.
*/
package reconcile

import (
	"sort"
	"sync"

	"pairchat/internal/app/convo"
)

// State is the lifecycle state of a view.
type State int

const (
	// Seeding means the historical snapshot has not been installed yet.
	Seeding State = iota

	// Live means the snapshot is installed and events merge directly.
	Live
)

// MessageView is the ordered, de-duplicated view of one conversation.
//
// Ordering is resolved by each message's timestamp, ties by arrival, never
// by broadcast delivery order: a pushed event may overtake or trail the
// snapshot fetch and still land in the right place.
type MessageView struct {
	mu       sync.Mutex
	state    State
	messages []convo.Message
	seen     map[string]struct{}
	buffered []convo.Message
}

// NewMessageView returns an empty view in the Seeding state.
func NewMessageView() *MessageView {
	return &MessageView{
		seen: make(map[string]struct{}),
	}
}

// State returns the view's current lifecycle state.
func (v *MessageView) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Seed installs the historical snapshot and transitions the view to Live.
// Events that arrived during Seeding are replayed on top of the snapshot.
// Duplicate ids within the snapshot itself are suppressed.
//
// Seed may be called again on an already-Live view (reconnect-and-reseed):
// snapshot entries already present are ignored by id, so a re-seed never
// duplicates or reorders what the view already holds.
func (v *MessageView) Seed(snapshot []convo.Message) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, msg := range snapshot {
		v.insert(msg)
	}

	v.state = Live

	for _, msg := range v.buffered {
		v.insert(msg)
	}
	v.buffered = nil
}

// Apply merges one live-pushed message into the view. It reports whether
// the view changed; a duplicate id is an idempotent no-op. During Seeding
// the message is buffered for replay and Apply reports false.
func (v *MessageView) Apply(msg convo.Message) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == Seeding {
		v.buffered = append(v.buffered, msg)
		return false
	}

	return v.insert(msg)
}

// insert places msg at its ordered position unless its id is already known.
// Callers hold the lock.
func (v *MessageView) insert(msg convo.Message) bool {
	if _, dup := v.seen[msg.ID]; dup {
		return false
	}
	v.seen[msg.ID] = struct{}{}

	// Find the first entry with a strictly greater timestamp; equal
	// timestamps keep arrival order.
	at := sort.Search(len(v.messages), func(i int) bool {
		return v.messages[i].Timestamp > msg.Timestamp
	})

	v.messages = append(v.messages, convo.Message{})
	copy(v.messages[at+1:], v.messages[at:])
	v.messages[at] = msg
	return true
}

// Messages returns a copy of the view's messages in ascending order.
func (v *MessageView) Messages() []convo.Message {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]convo.Message, len(v.messages))
	copy(out, v.messages)
	return out
}

// Len returns the number of visible messages.
func (v *MessageView) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.messages)
}
