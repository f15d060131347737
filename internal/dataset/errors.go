package dataset

import "errors"

// Sentinel kinds for dataset loading errors.
var (
	ErrEmptyFile  = errors.New("crime csv is empty")
	ErrHeader     = errors.New("crime csv header invalid")
	ErrNoFiles    = errors.New("no crime csv files found")
	ErrLoadFailed = errors.New("dataset load failed")
)
