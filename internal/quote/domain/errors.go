package domain

import "github.com/railzwaylabs/pricecalc/internal/apperror"

var (
	ErrEmptyQuote    = apperror.New(apperror.KindValidation, "empty_quote", "select at least one item before saving")
	ErrNameRequired  = apperror.New(apperror.KindValidation, "name_required", "a quote name is required")
	ErrInvalidID     = apperror.New(apperror.KindValidation, "invalid_id", "invalid quote id")
	ErrInvalidFormat = apperror.New(apperror.KindValidation, "invalid_format", "unsupported export format")
	ErrNotFound      = apperror.New(apperror.KindNotFound, "quote_not_found", "quote not found")
	ErrNotOwner      = apperror.New(apperror.KindAuthorization, "forbidden", "this quote belongs to another user")
)
