package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "kycreview/pkg/domain-errors"
)

// OpenSessionRequest mounts a detail view for one record.
type OpenSessionRequest struct {
	KycID string `json:"kyc_id" validate:"required,max=128"`
}

// SelectReasonsRequest replaces the selected rejection reason codes. An
// empty list clears the selection.
type SelectReasonsRequest struct {
	Reasons []string `json:"reasons" validate:"max=16,dive,required"`
}

// PreviewRequest enlarges one of the record's images.
type PreviewRequest struct {
	Slot string `json:"slot" validate:"required,oneof=front back selfie"`
}

// CopyRequest copies a record identifier to the reviewer's clipboard.
type CopyRequest struct {
	Field string `json:"field" validate:"required,oneof=id user_id customer_id"`
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// validationError turns validator output into an invalid_input error naming
// the first offending field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", field)
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "max":
		msg = fmt.Sprintf("%s exceeds maximum of %s", field, fe.Param())
	default:
		msg = fmt.Sprintf("%s is invalid", field)
	}
	return dErrors.New(dErrors.CodeInvalidInput, msg)
}
