package store

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Store implementation.
//
// It backs the unit tests of every component above the store boundary and
// keeps sorted-set insertions stable: members with equal scores stay in
// insertion order, which is the ordering contract the conversation log
// depends on.
type Memory struct {
	mu      sync.RWMutex
	scalars map[string]string
	sets    map[string]map[string]struct{}
	zsets   map[string][]zentry
}

type zentry struct {
	score  float64
	member string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		scalars: make(map[string]string),
		sets:    make(map[string]map[string]struct{}),
		zsets:   make(map[string][]zentry),
	}
}

// Get returns the scalar value at key, or ErrNotFound if the key is absent.
func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.scalars[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

// Set stores the scalar value at key.
func (m *Memory) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scalars[key] = value
	return nil
}

// SAdd adds member to the set at key.
func (m *Memory) SAdd(ctx context.Context, key, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.sets[key]
	if !ok {
		set = make(map[string]struct{})
		m.sets[key] = set
	}
	set[member] = struct{}{}
	return nil
}

// SRem removes member from the set at key.
func (m *Memory) SRem(ctx context.Context, key, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if set, ok := m.sets[key]; ok {
		delete(set, member)
	}
	return nil
}

// SIsMember reports whether member belongs to the set at key.
func (m *Memory) SIsMember(ctx context.Context, key, member string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set, ok := m.sets[key]
	if !ok {
		return false, nil
	}
	_, ok = set[member]
	return ok, nil
}

// SMembers returns all members of the set at key, in unspecified order.
func (m *Memory) SMembers(ctx context.Context, key string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set, ok := m.sets[key]
	if !ok {
		return []string{}, nil
	}

	members := make([]string, 0, len(set))
	for member := range set {
		members = append(members, member)
	}
	sort.Strings(members)
	return members, nil
}

// ZAdd inserts member with the given score, keeping entries sorted by
// ascending score and insertion order within equal scores. Re-adding an
// existing member updates its score in place.
func (m *Memory) ZAdd(ctx context.Context, key string, score float64, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.zsets[key]

	for i := range entries {
		if entries[i].member == member {
			entries[i].score = score
			sort.SliceStable(entries, func(a, b int) bool {
				return entries[a].score < entries[b].score
			})
			m.zsets[key] = entries
			return nil
		}
	}

	entries = append(entries, zentry{score: score, member: member})
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].score < entries[b].score
	})
	m.zsets[key] = entries
	return nil
}

// ZRange returns the members between the start and stop positions in
// ascending-score order. Negative indices count from the tail.
func (m *Memory) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.zsets[key]
	n := int64(len(entries))

	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if stop < 0 {
		stop += n
	}
	if start >= n || stop < start {
		return []string{}, nil
	}
	if stop >= n {
		stop = n - 1
	}

	members := make([]string, 0, stop-start+1)
	for _, entry := range entries[start : stop+1] {
		members = append(members, entry.member)
	}
	return members, nil
}
