package digimon

import (
	"encoding/json"
	"testing"
)

func TestDigimon_Fallbacks(t *testing.T) {
	d := &Digimon{ID: 1, Name: "Agumon"}

	if got := d.PrimaryLevel(); got != Fallback {
		t.Errorf("PrimaryLevel() = %q, want %q", got, Fallback)
	}
	if got := d.PrimaryType(); got != Fallback {
		t.Errorf("PrimaryType() = %q, want %q", got, Fallback)
	}
	if got := d.PrimaryAttribute(); got != Fallback {
		t.Errorf("PrimaryAttribute() = %q, want %q", got, Fallback)
	}
	if got := d.Release(); got != Fallback {
		t.Errorf("Release() = %q, want %q", got, Fallback)
	}
	if got := d.PrimaryImage(); got != "" {
		t.Errorf("PrimaryImage() = %q, want empty", got)
	}
}

func TestDigimon_Listable(t *testing.T) {
	tests := []struct {
		name string
		d    *Digimon
		want bool
	}{
		{name: "nil", d: nil, want: false},
		{name: "no name", d: &Digimon{Images: []Image{{Href: "a.png"}}}, want: false},
		{name: "no images", d: &Digimon{Name: "Agumon"}, want: false},
		{name: "blank image", d: &Digimon{Name: "Agumon", Images: []Image{{Href: " "}}}, want: false},
		{name: "second image resolvable", d: &Digimon{Name: "Agumon", Images: []Image{{}, {Href: "b.png"}}}, want: true},
		{name: "complete", d: &Digimon{Name: "Agumon", Images: []Image{{Href: "a.png"}}}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Listable(); got != tt.want {
				t.Errorf("Listable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDigimon_HasTypeAndNames(t *testing.T) {
	d := &Digimon{Types: []TypeRef{{ID: 5, Type: "Reptile"}, {ID: 9, Type: "Dragon"}}}

	if !d.HasType(5) || !d.HasType(9) {
		t.Error("HasType() should report both payload types")
	}
	if d.HasType(7) {
		t.Error("HasType(7) = true, want false")
	}

	names := d.TypeNames()
	if len(names) != 2 || names[0] != "Reptile" || names[1] != "Dragon" {
		t.Errorf("TypeNames() = %v", names)
	}
}

func TestDigimon_View(t *testing.T) {
	payload := `{
		"id": 1,
		"name": "Agumon",
		"images": [{"href": "https://digi-api.com/images/digimon/w/Agumon.png", "transparent": false}],
		"levels": [{"id": 3, "level": "Child"}],
		"types": [],
		"attributes": [{"id": 1, "attribute": "Vaccine"}],
		"descriptions": [{"origin": "reference_book", "language": "en_us", "description": ""}],
		"skills": [{"id": 1, "skill": "Baby Flame", "translation": "", "description": "Spits fire"}],
		"priorEvolutions": [{"id": 2, "digimon": "Koromon", "image": "k.png"}],
		"nextEvolutions": [{"id": 3, "digimon": "Greymon", "condition": "Battle", "image": "g.png"}]
	}`

	var d Digimon
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	v := d.View()
	if v.Level != "Child" || v.Attribute != "Vaccine" {
		t.Errorf("View() level/attribute = %q/%q", v.Level, v.Attribute)
	}
	if v.Type != Fallback || v.ReleaseDate != Fallback {
		t.Errorf("View() type/release = %q/%q, want fallbacks", v.Type, v.ReleaseDate)
	}
	if v.Descriptions[0].Text != Fallback {
		t.Errorf("empty description = %q, want fallback", v.Descriptions[0].Text)
	}
	if v.Skills[0].Translation != Fallback {
		t.Errorf("empty translation = %q, want fallback", v.Skills[0].Translation)
	}
	if len(v.Prior) != 1 || v.Prior[0].Direction != Prior || v.Prior[0].ToID != 2 {
		t.Errorf("Prior = %+v", v.Prior)
	}
	if len(v.Next) != 1 || v.Next[0].Condition != "Battle" || v.Next[0].FromID != 1 {
		t.Errorf("Next = %+v", v.Next)
	}
}

func TestPageable_HasMore(t *testing.T) {
	tests := []struct {
		name string
		p    Pageable
		want bool
	}{
		{name: "flag set", p: Pageable{HasNextPage: true}, want: true},
		{name: "next link without flag", p: Pageable{NextPage: "https://digi-api.com/api/v1/digimon?page=2"}, want: false},
		{name: "last page", p: Pageable{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.HasMore(); got != tt.want {
				t.Errorf("HasMore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDigimon_Summary(t *testing.T) {
	d := &Digimon{ID: 7, Name: "Gabumon", Images: []Image{{Href: ""}, {Href: "g.png"}}}
	s := d.Summary()
	if s.ID != 7 || s.Name != "Gabumon" || s.Image != "g.png" {
		t.Errorf("Summary() = %+v", s)
	}
	if !s.Listable() {
		t.Error("summary with name and image should be listable")
	}
}
