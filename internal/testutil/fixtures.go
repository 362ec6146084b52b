package testutil

import (
	"fmt"

	"github.com/Sternrassler/digi-client/pkg/digimon"
)

// Mon builds a minimal listable Digimon.
func Mon(id int, name, level string, types ...digimon.TypeRef) digimon.Digimon {
	d := digimon.Digimon{
		ID:     id,
		Name:   name,
		Images: []digimon.Image{{Href: fmt.Sprintf("https://img.test/%d.png", id)}},
		Types:  types,
	}
	if level != "" {
		d.Levels = []digimon.LevelRef{{ID: 1, Level: level}}
	}
	return d
}

// Catalog registers n generic Digimon with IDs 1..n on m, all at level.
func (m *MockAPI) Catalog(n int, level string) {
	ds := make([]digimon.Digimon, 0, n)
	for id := 1; id <= n; id++ {
		ds = append(ds, Mon(id, fmt.Sprintf("Mon%03d", id), level, digimon.TypeRef{ID: 1, Type: "Vaccine"}))
	}
	m.AddDigimon(ds...)
}

// Levels registers the nine standard levels, IDs 1..9.
func (m *MockAPI) Levels() {
	names := []string{"Baby I", "Baby II", "Child", "Adult", "Perfect", "Ultimate", "Armor", "Hybrid", "Unknown"}
	for i, name := range names {
		m.AddLevel(digimon.Level{ID: i + 1, Name: name})
	}
}

// Types registers n generic types, IDs 1..n.
func (m *MockAPI) Types(n int) {
	for id := 1; id <= n; id++ {
		m.AddType(digimon.Type{ID: id, Name: fmt.Sprintf("Type%02d", id)})
	}
}
