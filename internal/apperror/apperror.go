// Package apperror maps validation failures to response payloads and types
// upstream tracker failures.
package apperror

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrMissingAPIKey is returned before any request is made when the tracker
// API key is not configured.
var ErrMissingAPIKey = errors.New("tracker api key is not configured")

// UpstreamError carries the status code of a non-OK tracker response so
// callers can decide whether a retry is worthwhile.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("tracker responded with status %d", e.Status)
}

// Retryable reports whether the failure is a server-side one worth retrying.
func (e *UpstreamError) Retryable() bool {
	return e.Status >= 500
}

var (
	errRequired       = errors.New("is required")
	errMustBePositive = errors.New("must be a positive number")
	errPercentRange   = errors.New("must be between 1 and 1000")
	errMaxBelowMin    = errors.New("must not be below min_percent")
)

var customErrors = map[string]error{
	"PriceRequest.UserID.required":     errRequired,
	"PriceRequest.ItemID.required":     errRequired,
	"PriceRequest.BasePrice.gte":       errMustBePositive,
	"PriceRequest.MinPercent.gte":      errPercentRange,
	"PriceRequest.MinPercent.lte":      errPercentRange,
	"PriceRequest.MaxPercent.gte":      errPercentRange,
	"PriceRequest.MaxPercent.lte":      errPercentRange,
	"PriceRequest.MaxPercent.gtefield": errMaxBelowMin,
	"PurchaseRequest.Hours.required":   errRequired,
	"PurchaseRequest.Hours.gt":         errMustBePositive,
}

// CustomValidationError converts validator errors into the standardized
// [{field: message}] response format.
func CustomValidationError(err error) []map[string]string {
	errList := make([]map[string]string, 0)

	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		for _, e := range validationErr {
			field := e.StructNamespace()
			key := field + "." + e.Tag()

			errMsg := fmt.Sprintf("%s is invalid", field)
			if v, ok := customErrors[key]; ok {
				errMsg = v.Error()
			}

			errList = append(errList, map[string]string{e.Field(): errMsg})
		}
	}
	return errList
}
