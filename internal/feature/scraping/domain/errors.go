// Package domain holds the scraping errors.
package domain

import "errors"

var (
	// ErrNoTable means the page had no table with recognisable price-list headers.
	ErrNoTable = errors.New("no price list table found")
	// ErrNoRows means a table was found but yielded no usable rows.
	ErrNoRows = errors.New("price list table has no rows")
	// ErrNoPriceList means every candidate URL for a date failed.
	ErrNoPriceList = errors.New("no price list published for date")
)
