package models

import "errors"

// Sentinel errors for the pipeline's failure taxonomy. Batch operations treat
// ErrNotFound and ErrUnsupportedFormat as skip-and-continue; ErrUpstream is
// recovered by falling back to the next strategy where one exists.
var (
	// ErrNotFound means a requested file does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrUnsupportedFormat means extraction was attempted on a file type
	// outside the supported set.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrUpstream means a generative-backend or index-provider call failed.
	ErrUpstream = errors.New("upstream call failed")
)
