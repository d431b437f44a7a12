package sensor

import (
	"context"

	"codeberg.org/seliv/tempwatch/internal/errors"
)

const (
	// ErrUnavailable means the access layer behind the source is missing
	// or not initialized (no NVML, no bridge script, no sensors exposed).
	ErrUnavailable = errors.ErrorCode("sensor_source_unavailable")

	// ErrPermissionDenied means the source exists but the process lacks
	// the privileges to read it.
	ErrPermissionDenied = errors.ErrorCode("sensor_permission_denied")

	// ErrSampleTimeout means the bounded wait for a snapshot expired.
	ErrSampleTimeout = errors.ErrorCode("sensor_sample_timeout")

	// ErrMalformed means the source returned data in an unexpected shape.
	ErrMalformed = errors.ErrorCode("sensor_malformed_snapshot")
)

// Code extracts the taxonomy code from a source error. The poll loop
// treats every kind identically; the code is kept for diagnostics.
func Code(err error) errors.ErrorCode {
	var coded errors.Error
	if errors.As(err, &coded) {
		return coded.Code()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrSampleTimeout
	}

	return ErrUnavailable
}
