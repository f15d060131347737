package service

import "errors"

// Sentinel kinds for service lifecycle errors.
var (
	ErrStartFailed  = errors.New("service start failed")
	ErrIngestFailed = errors.New("record ingest failed")
)
