package models

import "math"

// DefaultTolerance is the relative value band used when comparing a valued
// want against an offered item.
const DefaultTolerance = 0.2

// Item is a physical item a participant offers in trade.
type Item struct {
	ID       int     `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Category string  `json:"category" yaml:"category"`
	Value    float64 `json:"value" yaml:"value"` // zero until set or evaluated
}

// WantKind tags which variant of Want is populated.
type WantKind int

const (
	// CategoryWant matches any item of the category regardless of value.
	CategoryWant WantKind = iota
	// ValuedWant matches items of the category within a tolerance band
	// around the target value.
	ValuedWant
)

func (k WantKind) String() string {
	switch k {
	case CategoryWant:
		return "category"
	case ValuedWant:
		return "valued"
	default:
		return "unknown"
	}
}

// Want is something a participant wants to receive. It is a tagged union:
// Kind decides whether ID and Value carry meaning.
type Want struct {
	Kind     WantKind
	ID       int // ValuedWant only; identifies the want for removal
	Category string
	Value    float64 // ValuedWant only; target value
}

// NewCategoryWant returns a want for any item of category.
func NewCategoryWant(category string) Want {
	return Want{Kind: CategoryWant, Category: category}
}

// NewValuedWant returns a want for an item of category worth about value.
func NewValuedWant(id int, category string, value float64) Want {
	return Want{Kind: ValuedWant, ID: id, Category: category, Value: value}
}

// Matches reports whether item satisfies the want. A valued want with no
// positive target is compared by category only.
func (w Want) Matches(item Item, tolerance float64) bool {
	if w.Category != item.Category {
		return false
	}
	switch w.Kind {
	case ValuedWant:
		if w.Value <= 0 {
			return true
		}
		return math.Abs(w.Value-item.Value) <= tolerance*item.Value
	default:
		return true
	}
}

// Target is the value the want aims for when offered item. Category wants
// aim for the item's own value.
func (w Want) Target(item Item) float64 {
	if w.Kind == ValuedWant && w.Value > 0 {
		return w.Value
	}
	return item.Value
}

// Same reports whether other identifies the same want: category equality for
// category wants, id equality for valued wants.
func (w Want) Same(other Want) bool {
	if w.Kind != other.Kind {
		return false
	}
	if w.Kind == ValuedWant {
		return w.ID == other.ID
	}
	return w.Category == other.Category
}
