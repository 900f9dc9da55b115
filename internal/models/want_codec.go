package models

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// wantObject is the mapping form of a want. A mapping without a positive
// value decodes to a category want.
type wantObject struct {
	ID       int     `json:"id,omitempty" yaml:"id,omitempty"`
	Category string  `json:"category" yaml:"category"`
	Value    float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

func (o wantObject) want() (Want, error) {
	if o.Category == "" {
		return Want{}, fmt.Errorf("want: category is required")
	}
	if o.Value > 0 {
		return NewValuedWant(o.ID, o.Category, o.Value), nil
	}
	return NewCategoryWant(o.Category), nil
}

// MarshalJSON encodes a category want as a bare string and a valued want as
// an object.
func (w Want) MarshalJSON() ([]byte, error) {
	if w.Kind == CategoryWant {
		return json.Marshal(w.Category)
	}
	return json.Marshal(wantObject{ID: w.ID, Category: w.Category, Value: w.Value})
}

// UnmarshalJSON accepts either a category string or a want object.
func (w *Want) UnmarshalJSON(data []byte) error {
	var category string
	if err := json.Unmarshal(data, &category); err == nil {
		if category == "" {
			return fmt.Errorf("want: category is required")
		}
		*w = NewCategoryWant(category)
		return nil
	}
	var obj wantObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("want: %w", err)
	}
	parsed, err := obj.want()
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// UnmarshalYAML accepts a scalar category or a want mapping.
func (w *Want) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.Value == "" {
			return fmt.Errorf("want: category is required (line %d)", node.Line)
		}
		*w = NewCategoryWant(node.Value)
		return nil
	}
	var obj wantObject
	if err := node.Decode(&obj); err != nil {
		return fmt.Errorf("want: line %d: %w", node.Line, err)
	}
	parsed, err := obj.want()
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
