package models

// RejectionReason is a selectable reason for rejecting a record. The remote
// authority receives the Label, not the Value.
type RejectionReason struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var rejectionReasons = []RejectionReason{
	{Value: "document_issue", Label: "Document Not Clear"},
	{Value: "information_mismatch", Label: "Information Mismatch"},
	{Value: "expired_document", Label: "Expired Document"},
	{Value: "invalid_document", Label: "Invalid Document Type"},
}

// RejectionReasons returns the fixed option set in display order.
func RejectionReasons() []RejectionReason {
	return append([]RejectionReason(nil), rejectionReasons...)
}

// LookupReason resolves a reason code.
func LookupReason(value string) (RejectionReason, bool) {
	for _, r := range rejectionReasons {
		if r.Value == value {
			return r, true
		}
	}
	return RejectionReason{}, false
}

// ReasonLabels returns the labels of reasons in selection order. The result
// is never nil so it encodes as an empty JSON array.
func ReasonLabels(reasons []RejectionReason) []string {
	labels := make([]string, 0, len(reasons))
	for _, r := range reasons {
		labels = append(labels, r.Label)
	}
	return labels
}
