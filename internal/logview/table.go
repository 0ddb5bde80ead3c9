package logview

import (
	"strings"

	"github.com/medshare/portal-dashboard/pkg/types"
)

// Page sizes the table view accepts
var allowedPageSizes = map[int]bool{5: true, 10: true, 25: true, 50: true, 100: true}

// DefaultPageSize is used when no size or an unsupported size is asked for
const DefaultPageSize = 5

// Matches reports whether any field's string representation contains
// the query as a case-insensitive substring. An empty query matches
// everything. The full-field policy trades precision for
// discoverability in an operational log viewer.
func Matches(record types.Searchable, query string) bool {
	if query == "" {
		return true
	}

	needle := strings.ToLower(query)
	for _, value := range record.SearchFields() {
		if value == "" {
			continue
		}
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}

	return false
}

// Filter returns the subsequence of records matching the query,
// preserving order
func Filter(records []types.LogRecord, query string) []types.LogRecord {
	if query == "" {
		return records
	}

	var filtered []types.LogRecord
	for _, record := range records {
		if Matches(record, query) {
			filtered = append(filtered, record)
		}
	}

	return filtered
}

// NormalizePageSize clamps a requested page size to the supported set
func NormalizePageSize(size int) int {
	if allowedPageSizes[size] {
		return size
	}
	return DefaultPageSize
}

// Paginate slices the filtered sequence into the requested fixed-size
// page. An out-of-range page yields an empty slice.
func Paginate(records []types.LogRecord, page, size int) []types.LogRecord {
	if page < 0 {
		page = 0
	}
	size = NormalizePageSize(size)

	start := page * size
	if start >= len(records) {
		return nil
	}

	end := start + size
	if end > len(records) {
		end = len(records)
	}

	return records[start:end]
}

// TableView is the stateful search/pagination surface over one log
// collection. Changing the query or the page size resets the current
// page to zero so the view never lands on an out-of-range page.
type TableView struct {
	records  []types.LogRecord
	query    string
	page     int
	pageSize int
}

// NewTableView creates a table view over a log collection
func NewTableView(records []types.LogRecord) *TableView {
	return &TableView{
		records:  records,
		pageSize: DefaultPageSize,
	}
}

// Replace swaps in a freshly fetched collection, keeping the current
// query and resetting the page
func (t *TableView) Replace(records []types.LogRecord) {
	t.records = records
	t.page = 0
}

// SetQuery changes the search query and resets the page
func (t *TableView) SetQuery(query string) {
	if query == t.query {
		return
	}
	t.query = query
	t.page = 0
}

// SetPageSize changes the page size and resets the page
func (t *TableView) SetPageSize(size int) {
	t.pageSize = NormalizePageSize(size)
	t.page = 0
}

// SetPage moves to the requested page
func (t *TableView) SetPage(page int) {
	if page < 0 {
		page = 0
	}
	t.page = page
}

// Page returns the current page index
func (t *TableView) Page() int { return t.page }

// PageSize returns the current page size
func (t *TableView) PageSize() int { return t.pageSize }

// FilteredCount returns how many records match the current query
func (t *TableView) FilteredCount() int {
	return len(Filter(t.records, t.query))
}

// Visible returns the records on the current page after filtering
func (t *TableView) Visible() []types.LogRecord {
	return Paginate(Filter(t.records, t.query), t.page, t.pageSize)
}
