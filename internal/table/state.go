package table

import "strings"

// DefaultPageSize is used when Options.PageSize is not set.
const DefaultPageSize = 20

// SearchKey is the filter key of the free-text search box.
const SearchKey = "search"

// Sort is the active ordering of a table.
type Sort struct {
	Field string
	Desc  bool
}

// String renders the wire form "field,asc" or "field,desc".
func (s Sort) String() string {
	dir := "asc"
	if s.Desc {
		dir = "desc"
	}
	return s.Field + "," + dir
}

// State is the paging, sorting and filtering position of one table.  Its
// methods return modified copies so a change can be tried on the network
// before it is committed.
type State struct {
	Page    int
	Size    int
	Sort    Sort
	Filters map[string]string
}

// NewState returns page 0 sorted ascending by the first sortable column,
// falling back to id.
func NewState(cols []Column, size int) State {
	if size < 1 {
		size = DefaultPageSize
	}
	field := "id"
	for _, c := range cols {
		if c.Sortable {
			field = c.Key
			break
		}
	}
	return State{Size: size, Sort: Sort{Field: field}, Filters: map[string]string{}}
}

func (s State) clone() State {
	f := make(map[string]string, len(s.Filters))
	for k, v := range s.Filters {
		f[k] = v
	}
	s.Filters = f
	return s
}

// ToggleSort orders by field ascending, or flips the direction when field
// is already the sort field.  The page is kept.
func (s State) ToggleSort(field string) State {
	s = s.clone()
	if s.Sort.Field == field {
		s.Sort.Desc = !s.Sort.Desc
	} else {
		s.Sort = Sort{Field: field}
	}
	return s
}

// WithSearch sets the free-text search and goes back to page 0.
func (s State) WithSearch(text string) State {
	s = s.clone()
	s.Filters[SearchKey] = text
	s.Page = 0
	return s
}

// WithFilters re-reads every declared field from values: a non-empty value
// sets the filter, an empty one removes it.  Fields missing from values are
// left alone.  The page goes back to 0.
func (s State) WithFilters(fields []string, values map[string]string) State {
	s = s.clone()
	for _, f := range fields {
		v, ok := values[f]
		if !ok {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			s.Filters[f] = v
		} else {
			delete(s.Filters, f)
		}
	}
	s.Page = 0
	return s
}

// Next moves one page forward.
func (s State) Next() State {
	s = s.clone()
	s.Page++
	return s
}

// Prev moves one page back, never below page 0.
func (s State) Prev() State {
	s = s.clone()
	if s.Page > 0 {
		s.Page--
	}
	return s
}

// Query builds the request body: page, size and sort next to the filters.
// Filter keys never override the paging keys.
func (s State) Query() map[string]any {
	q := make(map[string]any, len(s.Filters)+3)
	for k, v := range s.Filters {
		q[k] = v
	}
	q["page"] = s.Page
	q["size"] = s.Size
	q["sort"] = s.Sort.String()
	return q
}
