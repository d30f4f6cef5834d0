// Package cart holds the session-scoped shopping cart of the terminal
// storefront and the checkout confirmation flow built on top of it.
package cart

import (
	"errors"
	"sync"

	"github.com/atinyakov/GreenCart/internal/models"
)

// ErrInvalidQuantity is returned when an add is attempted with a non-positive quantity.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// Snapshot is the cart state delivered to subscribers after each mutation.
type Snapshot struct {
	Lines      []models.LineItem
	ItemCount  int
	TotalCents int64
}

// Store is the in-memory cart. It keeps at most one line per product id.
// The zero value is not usable; call NewStore.
type Store struct {
	mu     sync.Mutex
	lines  []models.LineItem
	subs   map[int]func(Snapshot)
	order  []int
	nextID int
}

// NewStore returns an empty cart.
func NewStore() *Store {
	return &Store{subs: make(map[int]func(Snapshot))}
}

// Add puts qty units of p into the cart. An existing line for p.ID has its
// quantity incremented; the unit price captured on first add is kept.
func (s *Store) Add(p models.Product, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	s.mu.Lock()
	if i := s.indexOf(p.ID); i >= 0 {
		s.lines[i].Quantity += qty
	} else {
		s.lines = append(s.lines, models.LineItem{
			ProductID:      p.ID,
			Name:           p.Name,
			Quantity:       qty,
			UnitPriceCents: p.PriceCents,
		})
	}
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, snap)
	return nil
}

// Remove deletes the line for productID. Absent ids are ignored.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	if !s.removeLocked(productID) {
		s.mu.Unlock()
		return
	}
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

// UpdateQuantity sets the quantity of productID's line. A quantity of zero
// or less removes the line. Absent ids are ignored.
func (s *Store) UpdateQuantity(productID string, qty int) {
	s.mu.Lock()
	changed := false
	if qty <= 0 {
		changed = s.removeLocked(productID)
	} else if i := s.indexOf(productID); i >= 0 && s.lines[i].Quantity != qty {
		s.lines[i].Quantity = qty
		changed = true
	}
	if !changed {
		s.mu.Unlock()
		return
	}
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

// Lines returns a copy of the current line items in insertion order.
func (s *Store) Lines() []models.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.LineItem(nil), s.lines...)
}

// Line returns the line for productID, if present.
func (s *Store) Line(productID string) (models.LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(productID); i >= 0 {
		return s.lines[i], true
	}
	return models.LineItem{}, false
}

// TotalItemCount is the sum of quantities over all lines.
func (s *Store) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return itemCount(s.lines)
}

// TotalPrice is the sum of quantity * unit price over all lines, in cents.
func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalCents(s.lines)
}

// Subscribe registers fn to receive a snapshot after every mutation.
// Callbacks run synchronously on the mutating goroutine, in subscription
// order, after the store lock is released. The returned func unsubscribes
// and is safe to call more than once.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (s *Store) indexOf(productID string) int {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(productID string) bool {
	i := s.indexOf(productID)
	if i < 0 {
		return false
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	return true
}

func (s *Store) snapshotLocked() (Snapshot, []func(Snapshot)) {
	snap := Snapshot{
		Lines:      append([]models.LineItem(nil), s.lines...),
		ItemCount:  itemCount(s.lines),
		TotalCents: totalCents(s.lines),
	}
	subs := make([]func(Snapshot), 0, len(s.order))
	for _, id := range s.order {
		subs = append(subs, s.subs[id])
	}
	return snap, subs
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}

func itemCount(lines []models.LineItem) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func totalCents(lines []models.LineItem) int64 {
	var total int64
	for _, l := range lines {
		total += int64(l.Quantity) * l.UnitPriceCents
	}
	return total
}
