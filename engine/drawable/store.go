package drawable

import (
	"errors"
	"fmt"
)

// MaxMaterialID is the largest material id a render queue sort key can hold.
const MaxMaterialID = 1<<24 - 1

// ErrMaterialOutOfRange is returned by Add for a material id above MaxMaterialID.
var ErrMaterialOutOfRange = errors.New("drawable: material id out of range")

// Store is an arena of drawables addressed by Handle. Entries are never removed, so a
// handle stays valid for the lifetime of the store.
// Not safe for concurrent mutation; during culling each worker writes only the drawables
// of its own candidate range.
type Store struct {
	items []Drawable
}

// NewStore creates an empty Store.
//
// Parameters:
//   - capacity: initial capacity hint
//
// Returns:
//   - *Store: the new store
func NewStore(capacity int) *Store {
	return &Store{items: make([]Drawable, 0, max(capacity, 0))}
}

// Add appends a drawable and returns its handle. Drawables whose material id does not fit
// a sort key are rejected, since their draws would interleave with another material.
//
// Parameters:
//   - d: the drawable to store
//
// Returns:
//   - Handle: the handle of the stored drawable, InvalidHandle on error
//   - error: ErrMaterialOutOfRange
func (s *Store) Add(d Drawable) (Handle, error) {
	if d.MaterialID > MaxMaterialID {
		return InvalidHandle, fmt.Errorf("%w: %d > %d", ErrMaterialOutOfRange, d.MaterialID, MaxMaterialID)
	}
	s.items = append(s.items, d)
	return Handle(len(s.items) - 1), nil
}

// Get returns a pointer to the drawable, or nil when the handle is not valid.
//
// Parameters:
//   - h: the drawable handle
//
// Returns:
//   - *Drawable: the stored drawable or nil
func (s *Store) Get(h Handle) *Drawable {
	if !s.Valid(h) {
		return nil
	}
	return &s.items[h]
}

// Valid reports whether h addresses a stored drawable.
func (s *Store) Valid(h Handle) bool {
	return int(h) < len(s.items)
}

// Len returns the number of stored drawables.
func (s *Store) Len() int {
	return len(s.items)
}

// ClearVisibility clears the given bits on every stored drawable.
//
// Parameters:
//   - mask: the bits to clear
func (s *Store) ClearVisibility(mask VisibilityBits) {
	for i := range s.items {
		s.items[i].Visibility &^= mask
	}
}

// CountVisible returns how many drawables have every bit in mask set.
//
// Parameters:
//   - mask: the bits to check
//
// Returns:
//   - int: the number of matching drawables
func (s *Store) CountVisible(mask VisibilityBits) int {
	n := 0
	for i := range s.items {
		if s.items[i].IsVisible(mask) {
			n++
		}
	}
	return n
}
