package events

import "codeberg.org/seliv/tempwatch/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrInvalidDBPath = errors.ErrorCode("events_invalid_db_path")

	// Schema Errors
	ErrSchemaInitFailed       = errors.ErrorCode("events_schema_init_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("events_schema_validation_failed")
	ErrSchemaVersionAhead     = errors.ErrorCode("events_schema_version_ahead")
	ErrTransactionFailed      = errors.ErrorCode("events_transaction_failed")

	// Storage Errors
	ErrStorageInit  = errors.ErrInitFailed
	ErrStorageClose = errors.ErrShutdownFailed

	// Service Errors
	ErrServiceShutdown = errors.ErrShutdownFailed

	// Collection Errors
	ErrInvalidEvent    = errors.ErrorCode("events_invalid_event")
	ErrEventCollection = errors.ErrorCode("events_collection_failed")

	// Operation Errors
	ErrOperationTimeout = errors.ErrTimeout
)
