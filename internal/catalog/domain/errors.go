package domain

import "github.com/railzwaylabs/pricecalc/internal/apperror"

var (
	ErrEmptyImport     = apperror.New(apperror.KindValidation, "empty_import", "the CSV file is empty")
	ErrMissingColumns  = apperror.New(apperror.KindValidation, "missing_columns", "the CSV header is missing required columns")
	ErrInvalidRow      = apperror.New(apperror.KindValidation, "invalid_row", "the CSV contains an invalid row")
	ErrNoAcceptedRows  = apperror.New(apperror.KindValidation, "no_accepted_rows", "no rows are in general availability")
	ErrInvalidSource   = apperror.New(apperror.KindValidation, "invalid_source", "unknown import source")
	ErrImportTooLarge  = apperror.New(apperror.KindValidation, "import_too_large", "the CSV file is too large")
	ErrCatalogNotReady = apperror.New(apperror.KindTransient, "catalog_unavailable", "the pricing catalog could not be loaded")
)
