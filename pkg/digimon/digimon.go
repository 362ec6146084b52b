// Package digimon defines the payloads returned by the Digimon reference API
// and the view helpers built on top of them.
//
// Every optional facet degrades to a placeholder instead of failing, so a
// partially populated payload still renders.
package digimon

import "strings"

// Fallback is shown for any facet the API did not return.
const Fallback = "N/A"

// Image is a media reference attached to a Digimon.
type Image struct {
	Href        string `json:"href"`
	Transparent bool   `json:"transparent"`
}

// LevelRef links a Digimon to one of its evolution levels.
type LevelRef struct {
	ID    int    `json:"id"`
	Level string `json:"level"`
}

// TypeRef links a Digimon to one of its types.
type TypeRef struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

// AttributeRef links a Digimon to one of its attributes.
type AttributeRef struct {
	ID        int    `json:"id"`
	Attribute string `json:"attribute"`
}

// FieldRef links a Digimon to one of its fields.
type FieldRef struct {
	ID    int    `json:"id"`
	Field string `json:"field"`
	Image string `json:"image"`
}

// Description is a localized description text.
type Description struct {
	Origin      string `json:"origin"`
	Language    string `json:"language"`
	Description string `json:"description"`
}

// Skill is a named attack or ability.
type Skill struct {
	ID          int    `json:"id"`
	Skill       string `json:"skill"`
	Translation string `json:"translation"`
	Description string `json:"description"`
}

// Evolution is one entry of the prior or next evolution lists.
type Evolution struct {
	ID        int    `json:"id"`
	Digimon   string `json:"digimon"`
	Condition string `json:"condition"`
	Image     string `json:"image"`
	URL       string `json:"url"`
}

// Digimon is the detail payload of GET /digimon/{id}.
type Digimon struct {
	ID              int            `json:"id"`
	Name            string         `json:"name"`
	XAntibody       bool           `json:"xAntibody"`
	Images          []Image        `json:"images"`
	Levels          []LevelRef     `json:"levels"`
	Types           []TypeRef      `json:"types"`
	Attributes      []AttributeRef `json:"attributes"`
	Fields          []FieldRef     `json:"fields"`
	ReleaseDate     string         `json:"releaseDate"`
	Descriptions    []Description  `json:"descriptions"`
	Skills          []Skill        `json:"skills"`
	PriorEvolutions []Evolution    `json:"priorEvolutions"`
	NextEvolutions  []Evolution    `json:"nextEvolutions"`
}

// ItemID implements collection.Item.
func (d *Digimon) ItemID() int { return d.ID }

// ItemName implements collection.Item.
func (d *Digimon) ItemName() string { return d.Name }

// PrimaryImage returns the first non-empty image href, or "".
func (d *Digimon) PrimaryImage() string {
	for _, img := range d.Images {
		if strings.TrimSpace(img.Href) != "" {
			return img.Href
		}
	}
	return ""
}

// Listable reports whether d may appear in a list view: it needs a name and
// at least one resolvable image.
func (d *Digimon) Listable() bool {
	return d != nil && strings.TrimSpace(d.Name) != "" && d.PrimaryImage() != ""
}

// PrimaryLevel returns the first level name or Fallback.
func (d *Digimon) PrimaryLevel() string {
	if len(d.Levels) > 0 {
		return orFallback(d.Levels[0].Level)
	}
	return Fallback
}

// PrimaryType returns the first type name or Fallback.
func (d *Digimon) PrimaryType() string {
	if len(d.Types) > 0 {
		return orFallback(d.Types[0].Type)
	}
	return Fallback
}

// PrimaryAttribute returns the first attribute name or Fallback.
func (d *Digimon) PrimaryAttribute() string {
	if len(d.Attributes) > 0 {
		return orFallback(d.Attributes[0].Attribute)
	}
	return Fallback
}

// Release returns the release date or Fallback.
func (d *Digimon) Release() string {
	return orFallback(d.ReleaseDate)
}

// HasType reports whether typeID appears in the type facet.
func (d *Digimon) HasType(typeID int) bool {
	for _, t := range d.Types {
		if t.ID == typeID {
			return true
		}
	}
	return false
}

// TypeNames returns the names of all types in payload order.
func (d *Digimon) TypeNames() []string {
	names := make([]string, 0, len(d.Types))
	for _, t := range d.Types {
		names = append(names, t.Type)
	}
	return names
}

func orFallback(s string) string {
	if strings.TrimSpace(s) == "" {
		return Fallback
	}
	return s
}
