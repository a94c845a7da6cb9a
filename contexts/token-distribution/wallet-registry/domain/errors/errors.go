package errors

import "errors"

var (
	ErrUserNotFound         = errors.New("wallet is not known to the registry")
	ErrAlreadyRegistered    = errors.New("wallet is already registered")
	ErrInvalidSyncMode      = errors.New("snapshot sync mode must be replace or merge")
	ErrInvalidSnapshotEntry = errors.New("snapshot import amounts must be > 0")
)
