// Package roster loads participants from a YAML file, used to seed the
// server and for offline matching.
package roster

import (
	"fmt"
	"os"

	"github.com/zulandar/swapyard/internal/models"
	"gopkg.in/yaml.v3"
)

// File is the on-disk roster layout.
type File struct {
	Participants []Entry `yaml:"participants"`
}

// Entry is one participant. A want is either a category string or a
// mapping with category, id and value.
type Entry struct {
	ID    int           `yaml:"id"`
	Name  string        `yaml:"name"`
	Lat   float64       `yaml:"latitude"`
	Lon   float64       `yaml:"longitude"`
	Give  []models.Item `yaml:"give"`
	Wants []models.Want `yaml:"wants"`
}

// Load reads a roster file from path.
func Load(path string) ([]*models.Participant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("roster: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes roster YAML into validated participants in file order.
func Parse(data []byte) ([]*models.Participant, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("roster: parse: %w", err)
	}

	seen := make(map[int]bool, len(f.Participants))
	out := make([]*models.Participant, 0, len(f.Participants))
	for i, e := range f.Participants {
		if seen[e.ID] {
			return nil, fmt.Errorf("roster: participants[%d]: duplicate id %d", i, e.ID)
		}
		seen[e.ID] = true

		p := models.NewParticipant(e.ID, e.Name, e.Lat, e.Lon)
		for _, item := range e.Give {
			if err := p.AddGive(item); err != nil {
				return nil, fmt.Errorf("roster: participants[%d]: %w", i, err)
			}
		}
		for _, w := range e.Wants {
			p.AddWant(w)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("roster: participants[%d]: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}
