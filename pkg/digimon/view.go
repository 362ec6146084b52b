package digimon

// Direction tags an evolution edge.
type Direction string

const (
	// Prior points at a Digimon this one evolves from.
	Prior Direction = "prior"
	// Next points at a Digimon this one evolves into.
	Next Direction = "next"
)

// EvolutionEdge is a directed relation between two Digimon, kept exactly as
// the server returned it.
type EvolutionEdge struct {
	Direction Direction `json:"direction"`
	FromID    int       `json:"fromId"`
	ToID      int       `json:"toId"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	Condition string    `json:"condition,omitempty"`
}

// Edges returns prior edges followed by next edges.
func (d *Digimon) Edges() []EvolutionEdge {
	edges := make([]EvolutionEdge, 0, len(d.PriorEvolutions)+len(d.NextEvolutions))
	for _, e := range d.PriorEvolutions {
		edges = append(edges, EvolutionEdge{
			Direction: Prior,
			FromID:    d.ID,
			ToID:      e.ID,
			Name:      orFallback(e.Digimon),
			Image:     e.Image,
			Condition: e.Condition,
		})
	}
	for _, e := range d.NextEvolutions {
		edges = append(edges, EvolutionEdge{
			Direction: Next,
			FromID:    d.ID,
			ToID:      e.ID,
			Name:      orFallback(e.Digimon),
			Image:     e.Image,
			Condition: e.Condition,
		})
	}
	return edges
}

// DescriptionView is a description entry ready for display.
type DescriptionView struct {
	Language string `json:"language"`
	Text     string `json:"text"`
}

// SkillView is a skill entry ready for display.
type SkillView struct {
	Name        string `json:"name"`
	Translation string `json:"translation"`
	Description string `json:"description"`
}

// DetailView is the detail page of a single Digimon. Every string field is
// populated, falling back to Fallback.
type DetailView struct {
	ID           int               `json:"id"`
	Name         string            `json:"name"`
	Image        string            `json:"image"`
	Level        string            `json:"level"`
	Type         string            `json:"type"`
	Attribute    string            `json:"attribute"`
	ReleaseDate  string            `json:"releaseDate"`
	Descriptions []DescriptionView `json:"descriptions"`
	Skills       []SkillView       `json:"skills"`
	Prior        []EvolutionEdge   `json:"priorEvolutions"`
	Next         []EvolutionEdge   `json:"nextEvolutions"`
}

// View builds the detail page of d.
func (d *Digimon) View() DetailView {
	v := DetailView{
		ID:           d.ID,
		Name:         orFallback(d.Name),
		Image:        d.PrimaryImage(),
		Level:        d.PrimaryLevel(),
		Type:         d.PrimaryType(),
		Attribute:    d.PrimaryAttribute(),
		ReleaseDate:  d.Release(),
		Descriptions: make([]DescriptionView, 0, len(d.Descriptions)),
		Skills:       make([]SkillView, 0, len(d.Skills)),
		Prior:        []EvolutionEdge{},
		Next:         []EvolutionEdge{},
	}
	for _, desc := range d.Descriptions {
		v.Descriptions = append(v.Descriptions, DescriptionView{
			Language: orFallback(desc.Language),
			Text:     orFallback(desc.Description),
		})
	}
	for _, s := range d.Skills {
		v.Skills = append(v.Skills, SkillView{
			Name:        orFallback(s.Skill),
			Translation: orFallback(s.Translation),
			Description: orFallback(s.Description),
		})
	}
	for _, e := range d.Edges() {
		if e.Direction == Prior {
			v.Prior = append(v.Prior, e)
		} else {
			v.Next = append(v.Next, e)
		}
	}
	return v
}
