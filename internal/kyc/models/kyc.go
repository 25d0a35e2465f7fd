package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Status is the review status of a KYC record as reported by the remote
// authority. Values outside the known set are kept verbatim.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
)

// Known reports whether s is one of the four statuses the console understands.
func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Actionable reports whether an admin may approve or reject a record in this
// status. Only pending and under_review records are open for a decision.
func (s Status) Actionable() bool {
	return s == StatusPending || s == StatusUnderReview
}

// Profile is the applicant's declared identity.
type Profile struct {
	FullName string `json:"full_name,omitempty"`
	DOB      string `json:"dob,omitempty"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`
}

// Document references the uploaded identity document images.
type Document struct {
	Type     string `json:"type,omitempty"`
	FrontURL string `json:"front_url,omitempty"`
	BackURL  string `json:"back_url,omitempty"`
}

// Selfie references the applicant's selfie image.
type Selfie struct {
	URL string `json:"url,omitempty"`
}

// KycRecord is one identity verification submission.
//
// Records are created by the remote authority and only change status through
// an approve or reject decision. The console never deletes them.
type KycRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id,omitempty"`
	CustomerID string    `json:"customer_id,omitempty"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	Profile    *Profile  `json:"profile,omitempty"`
	Document   *Document `json:"document,omitempty"`
	Selfie     *Selfie   `json:"selfie,omitempty"`
}

// CanAct reports whether approve/reject actions are permitted.
func (r *KycRecord) CanAct() bool {
	return r != nil && r.Status.Actionable()
}

// UnmarshalJSON accepts the remote's "_id" key as well as "id", and a
// numeric user_id.
func (r *KycRecord) UnmarshalJSON(data []byte) error {
	type alias KycRecord
	var wire struct {
		alias
		MongoID string      `json:"_id"`
		UserID  looseString `json:"user_id"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*r = KycRecord(wire.alias)
	if r.ID == "" {
		r.ID = wire.MongoID
	}
	r.UserID = string(wire.UserID)
	return nil
}

// looseString decodes a JSON string or number into a string.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*s = looseString(strconv.FormatInt(i, 10))
		return nil
	}
	*s = looseString(n.String())
	return nil
}

// ListResponse is the body of GET /all-kyc.
type ListResponse struct {
	Kycs []KycRecord `json:"kycs"`
}

// SingleResponse is the body of GET /single-kyc/{id}. Kyc is nil when the
// authority has no such record.
type SingleResponse struct {
	Kyc *KycRecord `json:"kyc"`
}

// RejectRequest is the body of PUT /admin-reject-kyc.
type RejectRequest struct {
	ID      string   `json:"id"`
	Reasons []string `json:"reasons"`
}

// MarshalJSON always encodes reasons as an array, never null.
func (r RejectRequest) MarshalJSON() ([]byte, error) {
	reasons := r.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	type alias RejectRequest
	return json.Marshal(alias{ID: r.ID, Reasons: reasons})
}
