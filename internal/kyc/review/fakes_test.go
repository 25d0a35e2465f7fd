package review

import (
	"context"
	"sync"
	"time"

	"kycreview/internal/kyc/models"
	"kycreview/internal/kyc/querycache"
	"kycreview/internal/kyc/store"
)

// fakeRemote is an in-memory authority. Decisions update the stored status
// so refetches after invalidation observe them.
type fakeRemote struct {
	mu          sync.Mutex
	records     map[string]models.KycRecord
	approveErr  error
	rejectErr   error
	getErr      error
	gate        chan struct{}
	approveIDs  []string
	rejectCalls []models.RejectRequest
	getCalls    int
}

func newFakeRemote(records ...models.KycRecord) *fakeRemote {
	f := &fakeRemote{records: make(map[string]models.KycRecord)}
	for _, r := range records {
		f.records[r.ID] = r
	}
	return f
}

func (f *fakeRemote) ListKYC(context.Context) ([]models.KycRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.KycRecord, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRemote) GetKYC(_ context.Context, id string) (*models.KycRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.records[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeRemote) ApproveKYC(ctx context.Context, id string) error {
	f.wait(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approveIDs = append(f.approveIDs, id)
	if f.approveErr != nil {
		return f.approveErr
	}
	f.setStatus(id, models.StatusApproved)
	return nil
}

func (f *fakeRemote) RejectKYC(ctx context.Context, req models.RejectRequest) error {
	f.wait(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectCalls = append(f.rejectCalls, req)
	if f.rejectErr != nil {
		return f.rejectErr
	}
	f.setStatus(req.ID, models.StatusRejected)
	return nil
}

func (f *fakeRemote) wait(ctx context.Context) {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate == nil {
		return
	}
	select {
	case <-gate:
	case <-ctx.Done():
	}
}

// setStatus updates a record. Caller holds f.mu.
func (f *fakeRemote) setStatus(id string, status models.Status) {
	if r, ok := f.records[id]; ok {
		r.Status = status
		f.records[id] = r
	}
}

func (f *fakeRemote) rejects() []models.RejectRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.RejectRequest(nil), f.rejectCalls...)
}

func (f *fakeRemote) approves() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.approveIDs...)
}

func newRecordStore(remote *fakeRemote) *store.Store {
	st, err := store.New(remote, querycache.New())
	if err != nil {
		panic(err)
	}
	return st
}

var createdAt = time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

func kycRecord(id string, status models.Status) models.KycRecord {
	return models.KycRecord{
		ID:         id,
		UserID:     "user-0001-abcdef",
		CustomerID: "CUST-42",
		Status:     status,
		CreatedAt:  createdAt,
		Profile: &models.Profile{
			FullName: "Ada Lovelace",
			DOB:      "1990-12-10",
			Address:  "12 St James Square",
			City:     "London",
			Country:  "GB",
		},
		Document: &models.Document{
			Type:     "Passport",
			FrontURL: "https://img.example/front.jpg",
			BackURL:  "https://img.example/back.jpg",
		},
		Selfie: &models.Selfie{URL: "https://img.example/selfie.jpg"},
	}
}
