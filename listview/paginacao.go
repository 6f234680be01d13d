// Package listview holds the table view-model math shared by every listing
// endpoint: pagination derivation, the page-button model, slice boundaries
// and client-side filtering over already-normalized records.
package listview

import "strconv"

// maxPagesWithoutEllipsis is the largest page count rendered verbatim.
const maxPagesWithoutEllipsis = 7

// Ellipsis is the gap marker in the page-button model.
const Ellipsis PageItem = -1

// PageItem is either a 1-based page number or the Ellipsis marker.
// It marshals as the number, or as the "…" string for the marker, matching
// what the panel's pagination widget consumes.
type PageItem int

// MarshalJSON renders page numbers as numbers and the marker as "…".
func (p PageItem) MarshalJSON() ([]byte, error) {
	if p == Ellipsis {
		return []byte(`"…"`), nil
	}
	return []byte(strconv.Itoa(int(p))), nil
}

// DerivePaging resolves the last-page number for a listing. The backend's
// own lastPage wins when present and positive; otherwise it is derived from
// the total. Always at least 1, even for an empty result.
func DerivePaging(total, pageSize int, backendLastPage *int) int {
	if backendLastPage != nil && *backendLastPage > 0 {
		return *backendLastPage
	}
	if total > 0 && pageSize > 0 {
		last := (total + pageSize - 1) / pageSize
		if last < 1 {
			return 1
		}
		return last
	}
	return 1
}

// PaginationItems builds the page-button model for the pagination widget.
// Small page counts are rendered verbatim; beyond that the model keeps the
// first and last page, a window of one page around the current one, and
// ellipsis markers wherever pages were elided.
func PaginationItems(current, totalPages int) []PageItem {
	if totalPages < 1 {
		totalPages = 1
	}
	if current < 1 {
		current = 1
	} else if current > totalPages {
		current = totalPages
	}

	if totalPages <= maxPagesWithoutEllipsis {
		items := make([]PageItem, 0, totalPages)
		for p := 1; p <= totalPages; p++ {
			items = append(items, PageItem(p))
		}
		return items
	}

	inicio := current - 1
	if inicio < 2 {
		inicio = 2
	}
	fim := current + 1
	if fim > totalPages-1 {
		fim = totalPages - 1
	}

	items := []PageItem{1}
	if inicio > 2 {
		items = append(items, Ellipsis)
	}
	for p := inicio; p <= fim; p++ {
		items = append(items, PageItem(p))
	}
	if fim < totalPages-1 {
		items = append(items, Ellipsis)
	}
	return append(items, PageItem(totalPages))
}

// PageSlice describes the visible window of a collection plus the 1-based
// display indices shown as "exibindo X a Y de Z".
type PageSlice struct {
	Start        int // inclusive index into the collection
	End          int // exclusive index into the collection
	StartDisplay int // 1-based, 0 when the collection is empty
	EndDisplay   int
}

// SliceForPage computes the slice boundaries for a page over a collection
// of the given length. Out-of-range pages clamp to an empty window at the
// end rather than failing.
func SliceForPage(length, page, pageSize int) PageSlice {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	start := (page - 1) * pageSize
	if start > length {
		start = length
	}
	end := start + pageSize
	if end > length {
		end = length
	}

	ps := PageSlice{Start: start, End: end, EndDisplay: end}
	if length == 0 || start >= end {
		ps.StartDisplay = 0
		ps.EndDisplay = end
	} else {
		ps.StartDisplay = start + 1
	}
	return ps
}
