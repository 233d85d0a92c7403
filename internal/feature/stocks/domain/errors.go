// Package domain holds errors shared by the stocks feature.
package domain

import "errors"

var (
	// ErrStockNotFound is returned when no stock matches the lookup.
	ErrStockNotFound = errors.New("stock not found")
	// ErrDuplicateHistory is returned when a (stock, date) history row already exists.
	ErrDuplicateHistory = errors.New("history already exists for stock and date")
)
