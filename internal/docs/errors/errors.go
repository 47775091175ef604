// Package errors provides sentinel errors for source discovery and loading.
package errors

import "errors"

var (
	// ErrSourceDirNotFound indicates the configured source directory does not exist.
	ErrSourceDirNotFound = errors.New("source directory not found")

	// ErrDocsDirWalkFailed indicates filesystem traversal of the source directory failed.
	ErrDocsDirWalkFailed = errors.New("documentation directory walk failed")

	// ErrFileReadFailed indicates reading a discovered document failed.
	ErrFileReadFailed = errors.New("documentation file read failed")

	// ErrInvalidExcludePattern indicates an exclude pattern could not be compiled.
	ErrInvalidExcludePattern = errors.New("invalid exclude pattern")

	// ErrInvalidRelativePath indicates calculating a path relative to the source directory failed.
	ErrInvalidRelativePath = errors.New("invalid relative path calculation")
)
