// Package apierror converts ledger failures and raw request values into huma
// errors shared by every v1 handler.
package apierror

import (
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledger"
)

// UserHeader carries the caller identity. Authentication happens upstream.
const UserHeader = "X-User-ID"

// FromLedger maps a ledger error onto an HTTP error. Validation and rule errors
// are 400, missing rows 404 and everything else 500. The kind is always in the
// error details.
func FromLedger(err error, fallback string) error {
	kind := ledger.KindOf(err)
	detail := &huma.ErrorDetail{Location: "kind", Value: string(kind), Message: ledger.MessageOf(err)}

	switch kind {
	case ledger.KindValidation, ledger.KindInvalidRule:
		return huma.NewError(http.StatusBadRequest, ledger.MessageOf(err), detail)
	case ledger.KindNotFound:
		return huma.NewError(http.StatusNotFound, ledger.MessageOf(err), detail)
	default:
		detail.Message = fallback
		return huma.NewError(http.StatusInternalServerError, fallback, detail)
	}
}

func UserID(raw string) (uuid.UUID, error) {
	id, err := uuid.FromString(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, huma.NewError(http.StatusBadRequest, "invalid "+UserHeader+" header")
	}
	return id, nil
}

func ID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.FromString(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, huma.NewError(http.StatusBadRequest, "invalid "+field, err)
	}
	return id, nil
}

// OptionalID parses an optional identifier; nil or empty is "no category".
func OptionalID(field string, raw *string) (uuid.NullUUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return uuid.NullUUID{}, nil
	}
	id, err := ID(field, *raw)
	if err != nil {
		return uuid.NullUUID{}, err
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}

// Date parses a YYYY-MM-DD calendar date.
func Date(field, raw string) (time.Time, error) {
	d, err := ledger.ParseDate(raw)
	if err != nil {
		return time.Time{}, huma.NewError(http.StatusBadRequest, "invalid "+field, err)
	}
	return d, nil
}

// Invalid wraps a parse failure of one request field.
func Invalid(field string, err error) error {
	return huma.NewError(http.StatusBadRequest, "invalid "+field+": "+ledger.MessageOf(err))
}

func FormatID(id uuid.NullUUID) *string {
	if !id.Valid {
		return nil
	}
	s := id.UUID.String()
	return &s
}

func FormatDate(d *time.Time) *string {
	if d == nil {
		return nil
	}
	s := ledger.DateKey(*d)
	return &s
}
