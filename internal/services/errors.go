package services

import "errors"

var (
	// ErrLocalWrite means the local durable cache rejected a save. The
	// caller still holds the form state and must surface the failure.
	ErrLocalWrite = errors.New("local cache write failed")

	// ErrRemoteSync wraps network or server failures against the hosted
	// store. Records stay pending and are retried later.
	ErrRemoteSync = errors.New("remote sync failed")

	// ErrOffline is returned for operations that need the hosted store
	// while the connectivity flag is false.
	ErrOffline = errors.New("remote store is offline")

	ErrNotFound = errors.New("inventory record not found")
)
