package services

import "errors"

var (
	// ErrServiceNotFound is returned when entries exist but none match
	ErrServiceNotFound = errors.New("no registered service matches")

	// ErrPersistence wraps failures from the registry's durable store
	ErrPersistence = errors.New("service registry persistence failure")
)
