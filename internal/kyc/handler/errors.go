package handler

import (
	"errors"

	"kycreview/internal/kyc/remote"
	"kycreview/internal/kyc/review"
	dErrors "kycreview/pkg/domain-errors"
	"kycreview/pkg/platform/sentinel"
)

// toDomainError maps store, workflow and registry errors to coded errors.
// Remote failures carry the authority's message when it sent one.
func toDomainError(err error, fallback string) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}

	var re *remote.Error
	if errors.As(err, &re) {
		switch re.Kind {
		case remote.KindNotFound:
			return dErrors.Wrap(err, dErrors.CodeNotFound, remote.MessageOf(err, "KYC not found"))
		case remote.KindUnavailable:
			return dErrors.Wrap(err, dErrors.CodeUnavailable, remote.MessageOf(err, fallback))
		default:
			return dErrors.Wrap(err, dErrors.CodeBadGateway, remote.MessageOf(err, fallback))
		}
	}

	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "review session not found")
	case errors.Is(err, review.ErrActionDisabled),
		errors.Is(err, review.ErrSubmitting),
		errors.Is(err, review.ErrNoDialog),
		errors.Is(err, review.ErrNoRecord),
		errors.Is(err, review.ErrEmptyField):
		return dErrors.Wrap(err, dErrors.CodeConflict, err.Error())
	case errors.Is(err, review.ErrUnknownReason),
		errors.Is(err, review.ErrNoImage),
		errors.Is(err, review.ErrUnknownField):
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, err.Error())
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, fallback)
}
