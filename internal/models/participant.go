package models

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrDuplicateItem is returned when a give-list already holds an item id.
	ErrDuplicateItem = errors.New("duplicate item id")
	// ErrInvalidLocation is returned for coordinates outside the globe.
	ErrInvalidLocation = errors.New("invalid location")
	// ErrDuplicateWant is returned when two valued wants share an id.
	ErrDuplicateWant = errors.New("duplicate want id")
)

var validate = validator.New()

// Participant is someone offering items and wanting others in return.
type Participant struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Lat   float64 `json:"latitude" validate:"min=-90,max=90"`
	Lon   float64 `json:"longitude" validate:"min=-180,max=180"`
	Give  []Item  `json:"items_to_give" validate:"-"`
	Wants []Want  `json:"items_to_receive" validate:"-"`
}

// NewParticipant returns a participant at the given location with empty lists.
func NewParticipant(id int, name string, lat, lon float64) *Participant {
	return &Participant{ID: id, Name: name, Lat: lat, Lon: lon}
}

// Validate checks the participant's coordinates. NaN fails both bounds.
func (p *Participant) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("participant %d: %w: %v", p.ID, ErrInvalidLocation, err)
	}
	return nil
}

// AddGive appends item to the give-list, rejecting a repeated item id.
func (p *Participant) AddGive(item Item) error {
	for _, it := range p.Give {
		if it.ID == item.ID {
			return fmt.Errorf("participant %d: item %d: %w", p.ID, item.ID, ErrDuplicateItem)
		}
	}
	p.Give = append(p.Give, item)
	return nil
}

// AddWant appends w to the want-list. A valued want without an id is given
// the next id after the largest one already held.
func (p *Participant) AddWant(w Want) {
	if w.Kind == ValuedWant && w.ID == 0 {
		w.ID = p.nextWantID()
	}
	p.Wants = append(p.Wants, w)
}

func (p *Participant) nextWantID() int {
	highest := 0
	for _, w := range p.Wants {
		if w.Kind == ValuedWant && w.ID > highest {
			highest = w.ID
		}
	}
	return highest + 1
}

// RemoveGive drops the item with itemID from the give-list.
func (p *Participant) RemoveGive(itemID int) {
	kept := p.Give[:0]
	for _, it := range p.Give {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	p.Give = kept
}

// RemoveWant drops every want that is the same as w (see Want.Same).
func (p *Participant) RemoveWant(w Want) {
	kept := p.Wants[:0]
	for _, want := range p.Wants {
		if !want.Same(w) {
			kept = append(kept, want)
		}
	}
	p.Wants = kept
}

// checkItems verifies give-list item ids are unique.
func (p *Participant) checkItems() error {
	seen := make(map[int]bool, len(p.Give))
	for _, it := range p.Give {
		if seen[it.ID] {
			return fmt.Errorf("participant %d: item %d: %w", p.ID, it.ID, ErrDuplicateItem)
		}
		seen[it.ID] = true
	}
	return nil
}

// checkWants verifies valued wants carry distinct ids.
func (p *Participant) checkWants() error {
	seen := make(map[int]bool, len(p.Wants))
	for _, w := range p.Wants {
		if w.Kind != ValuedWant {
			continue
		}
		if seen[w.ID] {
			return fmt.Errorf("participant %d: want %d: %w", p.ID, w.ID, ErrDuplicateWant)
		}
		seen[w.ID] = true
	}
	return nil
}

// Check runs Validate and the give-list and want-list uniqueness checks.
func (p *Participant) Check() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := p.checkItems(); err != nil {
		return err
	}
	return p.checkWants()
}

// Clone returns a deep copy of p.
func (p *Participant) Clone() *Participant {
	c := *p
	c.Give = append([]Item(nil), p.Give...)
	c.Wants = append([]Want(nil), p.Wants...)
	return &c
}
