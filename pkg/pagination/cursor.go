package pagination

// Phase is the tagged state of a Cursor.
type Phase int

const (
	// Idle waits for a scroll-threshold signal to fetch Page.
	Idle Phase = iota
	// Fetching has a request for Page in flight.
	Fetching
	// Done means the server reported no further page.
	Done
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Ticket identifies one page fetch started by a Cursor.
type Ticket struct {
	Page int
	gen  uint64
}

// Cursor tracks the pagination position of one list. It is not safe for
// concurrent use; feeds guard it with their own mutex.
type Cursor struct {
	phase     Phase
	page      int
	pageSize  int
	gen       uint64
	processed map[int]struct{}
}

// NewCursor creates a cursor in Idle(1).
func NewCursor(pageSize int) *Cursor {
	return &Cursor{
		phase:     Idle,
		page:      1,
		pageSize:  pageSize,
		processed: make(map[int]struct{}),
	}
}

// Phase returns the current phase.
func (c *Cursor) Phase() Phase { return c.phase }

// Page returns the next page to fetch (Idle), the page in flight (Fetching)
// or the last completed page (Done).
func (c *Cursor) Page() int { return c.page }

// PageSize returns the fixed page size.
func (c *Cursor) PageSize() int { return c.pageSize }

// HasMore reports whether further pages may exist.
func (c *Cursor) HasMore() bool { return c.phase != Done }

// Processed reports whether page has already been fetched and merged.
func (c *Cursor) Processed(page int) bool {
	_, ok := c.processed[page]
	return ok
}

// Begin starts fetching the next page.
func (c *Cursor) Begin() (Ticket, bool) {
	return c.BeginPage(c.page)
}

// BeginPage starts fetching page. It refuses while another fetch is in
// flight, after Done, and for pages already processed.
func (c *Cursor) BeginPage(page int) (Ticket, bool) {
	if c.phase != Idle || page < 1 || c.Processed(page) {
		return Ticket{}, false
	}
	c.phase = Fetching
	c.page = page
	return Ticket{Page: page, gen: c.gen}, true
}

// Current reports whether t is the fetch the cursor is waiting for.
func (c *Cursor) Current(t Ticket) bool {
	return c.phase == Fetching && t.gen == c.gen && t.Page == c.page
}

// Complete records page t as processed and advances. It returns false for a
// stale ticket, which must then be discarded.
func (c *Cursor) Complete(t Ticket, hasMore bool) bool {
	if !c.Current(t) {
		return false
	}
	c.processed[t.Page] = struct{}{}
	if hasMore {
		c.phase = Idle
		c.page = t.Page + 1
	} else {
		c.phase = Done
	}
	return true
}

// Fail returns to Idle on the same page without recording it.
func (c *Cursor) Fail(t Ticket) bool {
	if !c.Current(t) {
		return false
	}
	c.phase = Idle
	return true
}

// Reset returns to Idle(1) with an empty processed set and a new generation.
func (c *Cursor) Reset() {
	c.gen++
	c.phase = Idle
	c.page = 1
	c.processed = make(map[int]struct{})
}
