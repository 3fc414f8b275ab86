package types

import "errors"

var (
	ErrFileNotFound           = errors.New("csv file not found")
	ErrRemoteUnavailable      = errors.New("remote source unavailable")
	ErrPersistenceUnavailable = errors.New("persistent store unavailable")
	ErrMissingParameter       = errors.New("missing parameter")
)

const (
	KindFileNotFound           = "FileNotFound"
	KindRemoteUnavailable      = "RemoteUnavailable"
	KindPersistenceUnavailable = "PersistenceUnavailable"
	KindMissingParameter       = "MissingParameter"
	KindInternal               = "Internal"
)

// KindOf maps an error onto its machine-readable kind.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrMissingParameter):
		return KindMissingParameter
	case errors.Is(err, ErrFileNotFound):
		return KindFileNotFound
	case errors.Is(err, ErrRemoteUnavailable):
		return KindRemoteUnavailable
	case errors.Is(err, ErrPersistenceUnavailable):
		return KindPersistenceUnavailable
	default:
		return KindInternal
	}
}
