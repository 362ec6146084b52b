package digimon

import "strings"

// Summary is one element of the `content` array of a paged listing.
type Summary struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Href  string `json:"href"`
	Image string `json:"image"`

	// Types is only filled by the type filter, from the detail payload.
	Types []string `json:"types,omitempty"`
}

// ItemID implements collection.Item.
func (s Summary) ItemID() int { return s.ID }

// ItemName implements collection.Item.
func (s Summary) ItemName() string { return s.Name }

// Listable reports whether s has a name and an image.
func (s Summary) Listable() bool {
	return strings.TrimSpace(s.Name) != "" && strings.TrimSpace(s.Image) != ""
}

// Level is the payload of GET /level/{id}.
type Level struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Href        string `json:"href,omitempty"`
}

// ItemID implements collection.Item.
func (l Level) ItemID() int { return l.ID }

// ItemName implements collection.Item.
func (l Level) ItemName() string { return l.Name }

// Type is the payload of GET /type/{id}.
type Type struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Href        string `json:"href,omitempty"`
}

// ItemID implements collection.Item.
func (t Type) ItemID() int { return t.ID }

// ItemName implements collection.Item.
func (t Type) ItemName() string { return t.Name }

// Pageable is the pagination metadata of a listing.
type Pageable struct {
	CurrentPage    int    `json:"currentPage"`
	ElementsOnPage int    `json:"elementsOnPage"`
	TotalElements  int    `json:"totalElements"`
	TotalPages     int    `json:"totalPages"`
	PreviousPage   string `json:"previousPage"`
	NextPage       string `json:"nextPage"`
	HasNextPage    bool   `json:"hasNextPage"`
}

// HasMore reports whether the server advertises a further page. Only
// hasNextPage counts; a nextPage link alongside hasNextPage=false is ignored.
func (p Pageable) HasMore() bool {
	return p.HasNextPage
}

// Page is the payload of GET /digimon?page=&pageSize=.
type Page struct {
	Content  []Summary `json:"content"`
	Pageable Pageable  `json:"pageable"`
}

// Summary projects a detail payload onto a list item.
func (d *Digimon) Summary() Summary {
	return Summary{
		ID:    d.ID,
		Name:  d.Name,
		Image: d.PrimaryImage(),
	}
}
