package pagination

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Page is an offset/limit window over an ordered listing.
type Page struct {
	Offset int
	Limit  int
}

// Query is bound from ?skip=&limit= query parameters.
type Query struct {
	Skip  int `form:"skip" binding:"omitempty,min=0"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// Page applies defaults to q.
func (q Query) Page() Page {
	return New(q.Skip, q.Limit)
}

// New clamps offset and limit into a usable window.
func New(offset, limit int) Page {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Offset: offset, Limit: limit}
}

// Apply returns the slice of n items covered by p as [start, end) indices.
func (p Page) Apply(n int) (start, end int) {
	start = min(p.Offset, n)
	end = min(start+p.Limit, n)
	return start, end
}
