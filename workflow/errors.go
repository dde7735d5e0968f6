package workflow

import "errors"

var (
	ErrInvalidJob       = errors.New("invalid job")
	ErrDatabaseNotReady = errors.New("database not ready")
)
