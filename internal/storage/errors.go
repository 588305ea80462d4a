package storage

import "github.com/carson-networks/budget-ledger/internal/storage/sqlconfig"

// Errors shared by every store implementation.
var (
	ErrNotFound            = sqlconfig.ErrNotFound
	ErrDuplicateOccurrence = sqlconfig.ErrDuplicateOccurrence
	ErrConflict            = sqlconfig.ErrConflict
)
