package review

import (
	"slices"

	"kycreview/internal/kyc/models"
	"kycreview/internal/kyc/remote"
	"kycreview/internal/kyc/store"
)

// DefaultPageSize is the initial list page size.
const DefaultPageSize = 10

// PageSizes are the page sizes the list offers.
var PageSizes = []int{10, 25, 50}

type ListRow struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CustomerID string `json:"customer_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	Badge      Badge  `json:"badge"`
	Href       string `json:"href"`
}

type ListView struct {
	Rows      []ListRow `json:"rows"`
	Total     int       `json:"total"`
	Page      int       `json:"page"`
	PageSize  int       `json:"page_size"`
	PageSizes []int     `json:"page_sizes"`
	Loading   bool      `json:"loading"`
	Error     string    `json:"error,omitempty"`
}

// NormalizePage clamps page to >= 0 and pageSize to one of PageSizes.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 0 {
		page = 0
	}
	if !slices.Contains(PageSizes, pageSize) {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

// BuildList renders the list view: newest records first, paginated with a
// zero-based page index. listPath prefixes the per-row detail link.
func BuildList(state store.ListState, page, pageSize int, listPath string) ListView {
	page, pageSize = NormalizePage(page, pageSize)
	if listPath == "" {
		listPath = DefaultListPath
	}
	view := ListView{
		Rows:      []ListRow{},
		Page:      page,
		PageSize:  pageSize,
		PageSizes: slices.Clone(PageSizes),
		Loading:   state.IsLoading,
	}
	if state.IsError {
		view.Error = listErrorBanner(state.Err)
	}

	records := SortNewestFirst(state.Records)
	view.Total = len(records)

	start := page * pageSize
	if start >= len(records) {
		return view
	}
	end := min(start+pageSize, len(records))
	for _, rec := range records[start:end] {
		view.Rows = append(view.Rows, listRow(rec, listPath))
	}
	return view
}

// SortNewestFirst returns a copy of records ordered by creation time,
// descending. Records with equal timestamps keep their input order.
func SortNewestFirst(records []models.KycRecord) []models.KycRecord {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b models.KycRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func listRow(rec models.KycRecord, listPath string) ListRow {
	name := Placeholder
	if rec.Profile != nil && rec.Profile.FullName != "" {
		name = rec.Profile.FullName
	}
	return ListRow{
		ID:         rec.ID,
		Name:       name,
		CustomerID: rec.CustomerID,
		Date:       FormatDate(rec.CreatedAt),
		Status:     string(rec.Status),
		Badge:      BadgeFor(rec.Status),
		Href:       listPath + "/" + rec.ID,
	}
}

func listErrorBanner(err error) string {
	msg := remote.MessageOf(err, "")
	if msg == "" {
		return "Failed to load KYC list."
	}
	return "Failed to load KYC list: " + msg + "."
}
