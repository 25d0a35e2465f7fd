package review

import (
	"time"
	"unicode/utf8"

	"kycreview/internal/kyc/models"
)

const (
	// Placeholder is shown for absent values.
	Placeholder = "—"

	NoImagesText      = "No images available."
	NotFoundText      = "No KYC found"
	LoadErrorTitle    = "Failed to load KYC"
	LoadErrorFallback = "Please try again."

	TooltipApprove  = "Approve this KYC"
	TooltipReject   = "Reject this KYC"
	TooltipDisabled = "Action disabled for this status"

	MsgApproved      = "KYC approved successfully"
	MsgRejected      = "KYC rejected successfully"
	MsgApproveFailed = "Approval failed"
	MsgRejectFailed  = "Rejection failed"
	MsgCopied        = "Copied!"

	dateLayout = "Jan 2, 2006"
	shortIDLen = 8
)

// BadgeColor is the severity of a status badge.
type BadgeColor string

const (
	BadgeSuccess BadgeColor = "success"
	BadgeFailure BadgeColor = "failure"
	BadgeWarning BadgeColor = "warning"
	BadgeGray    BadgeColor = "gray"
)

type Badge struct {
	Label string     `json:"label"`
	Color BadgeColor `json:"color"`
}

// BadgeFor maps a status to its label and color. Unrecognized statuses keep
// their raw text on a gray badge; an empty status reads "Unknown".
func BadgeFor(status models.Status) Badge {
	switch status {
	case models.StatusApproved:
		return Badge{Label: "Approved", Color: BadgeSuccess}
	case models.StatusRejected:
		return Badge{Label: "Rejected", Color: BadgeFailure}
	case models.StatusUnderReview:
		return Badge{Label: "Under Review", Color: BadgeWarning}
	case models.StatusPending:
		return Badge{Label: "Pending", Color: BadgeWarning}
	case "":
		return Badge{Label: "Unknown", Color: BadgeGray}
	default:
		return Badge{Label: string(status), Color: BadgeGray}
	}
}

// ShortID truncates identifiers longer than eight characters to their first
// eight followed by an ellipsis.
func ShortID(id string) string {
	if id == "" {
		return Placeholder
	}
	if utf8.RuneCountInString(id) <= shortIDLen {
		return id
	}
	return string([]rune(id)[:shortIDLen]) + "…"
}

// FormatDate renders t for display, or the placeholder for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Format(dateLayout)
}

// FormatDOB renders a date of birth string. Unparseable values are shown as
// given.
func FormatDOB(dob string) string {
	if dob == "" {
		return Placeholder
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, dob); err == nil {
			return t.Format(dateLayout)
		}
	}
	return dob
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

// ImageSlot identifies one of the record's three images.
type ImageSlot string

const (
	SlotDocumentFront ImageSlot = "front"
	SlotDocumentBack  ImageSlot = "back"
	SlotSelfie        ImageSlot = "selfie"
)

type ImageTile struct {
	Slot  ImageSlot `json:"slot"`
	Title string    `json:"title"`
	URL   string    `json:"url"`
}

// ImageTiles lists the images present on rec in display order.
func ImageTiles(rec *models.KycRecord) []ImageTile {
	tiles := []ImageTile{}
	if rec == nil {
		return tiles
	}
	idType := Placeholder
	if rec.Document != nil {
		idType = orPlaceholder(rec.Document.Type)
		if rec.Document.FrontURL != "" {
			tiles = append(tiles, ImageTile{Slot: SlotDocumentFront, Title: idType + " — Front", URL: rec.Document.FrontURL})
		}
		if rec.Document.BackURL != "" {
			tiles = append(tiles, ImageTile{Slot: SlotDocumentBack, Title: idType + " — Back", URL: rec.Document.BackURL})
		}
	}
	if rec.Selfie != nil && rec.Selfie.URL != "" {
		tiles = append(tiles, ImageTile{Slot: SlotSelfie, Title: "Selfie", URL: rec.Selfie.URL})
	}
	return tiles
}

// imageURL returns the URL stored in slot, or "" when absent.
func imageURL(rec *models.KycRecord, slot ImageSlot) string {
	for _, t := range ImageTiles(rec) {
		if t.Slot == slot {
			return t.URL
		}
	}
	return ""
}
