package store

import (
	"kycreview/internal/kyc/models"
	"kycreview/internal/kyc/querycache"
)

// MutationState is the progress of the latest approve or reject call for one
// record.
type MutationState struct {
	IsLoading bool
	IsSuccess bool
	IsError   bool
	Err       error
}

// ListState is the observable state of the record list query.
type ListState struct {
	Records    []models.KycRecord
	IsLoading  bool
	IsFetching bool
	IsSuccess  bool
	IsError    bool
	Err        error
	// Stale is set when the records were read before the latest decision
	// and the next read will refetch.
	Stale bool
}

// RecordState is the observable state of a single record query. Record is nil
// when nothing was loaded or the authority returned no record.
type RecordState struct {
	Record     *models.KycRecord
	IsLoading  bool
	IsFetching bool
	IsSuccess  bool
	IsError    bool
	Err        error
}

func listStateFrom(snap querycache.Snapshot) ListState {
	records, _ := snap.Data.([]models.KycRecord)
	return ListState{
		Records:    records,
		IsLoading:  snap.IsLoading,
		IsFetching: snap.IsFetching,
		IsSuccess:  snap.IsSuccess,
		IsError:    snap.IsError,
		Err:        snap.Err,
		Stale:      snap.Stale,
	}
}

func recordStateFrom(snap querycache.Snapshot) RecordState {
	record, _ := snap.Data.(*models.KycRecord)
	return RecordState{
		Record:     record,
		IsLoading:  snap.IsLoading,
		IsFetching: snap.IsFetching,
		IsSuccess:  snap.IsSuccess,
		IsError:    snap.IsError,
		Err:        snap.Err,
	}
}
