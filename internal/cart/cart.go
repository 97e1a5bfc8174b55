// Package cart keeps the shopper's cart: a deduplicated set of good IDs
// persisted across sessions, with change notifications for whoever is
// displaying a badge or a cart page.
package cart

import (
	"encoding/json"
	"math"
	"strconv"
	"sync"

	"lavka/internal/store"
)

// Event is broadcast after every mutation.
type Event struct {
	Count int
}

// Storage is the slice of the kv store the cart needs.
type Storage interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
	Delete(key string) error
}

// Store owns the cart state. Mutations are atomic: read-modify-write
// happens under one lock, the persisted value is always the deduplicated
// set, and observers fire after the write lands.
type Store struct {
	mu     sync.Mutex
	kv     Storage
	subs   map[int]func(Event)
	nextID int
}

func New(kv Storage) *Store {
	return &Store{kv: kv, subs: map[int]func(Event){}}
}

// Subscribe registers an observer for cart changes and returns its
// unsubscribe function. The store knows nothing about its observers
// beyond the callback.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// IDs returns the cart contents in stored order. The order carries no
// meaning; it is just stable. Corrupted or unreadable stored data reads
// as an empty cart.
func (s *Store) IDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) Count() int { return len(s.IDs()) }

func (s *Store) Contains(id int64) bool {
	for _, v := range s.IDs() {
		if v == id {
			return true
		}
	}
	return false
}

// Add puts one good into the cart. Adding a present ID changes nothing
// but still notifies, so views refresh off user intent either way.
func (s *Store) Add(id int64) error {
	s.mu.Lock()
	ids := s.read()
	present := false
	for _, v := range ids {
		if v == id {
			present = true
			break
		}
	}
	var err error
	if !present {
		err = s.write(append(ids, id))
	}
	n := len(ids)
	if !present && err == nil {
		n++
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify(n)
	return nil
}

// Remove drops one good; removing an absent ID is a no-op.
func (s *Store) Remove(id int64) error {
	s.mu.Lock()
	ids := s.read()
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	var err error
	if len(out) != len(ids) {
		err = s.write(out)
	}
	n := len(out)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify(n)
	return nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	err := s.kv.Delete(store.KeyCartIDs)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify(0)
	return nil
}

// read decodes the persisted list, keeping only finite numeric IDs and
// dropping duplicates. Callers hold the lock.
func (s *Store) read() []int64 {
	raw, ok, err := s.kv.Get(store.KeyCartIDs)
	if err != nil || !ok || raw == "" {
		return []int64{}
	}
	var parsed []any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return []int64{}
	}
	seen := map[int64]bool{}
	ids := make([]int64, 0, len(parsed))
	for _, v := range parsed {
		id, ok := asID(v)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func asID(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

func (s *Store) write(ids []int64) error {
	buf, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return s.kv.Put(store.KeyCartIDs, string(buf))
}

func (s *Store) notify(count int) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	ev := Event{Count: count}
	for _, fn := range fns {
		fn(ev)
	}
}
