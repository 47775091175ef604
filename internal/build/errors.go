package build

import "errors"

// Sentinel errors classifying pipeline failures. They are wrapped with
// context at the call site.
var (
	ErrDiscovery = errors.New("docprep: discovery error")
	ErrDocument  = errors.New("docprep: document error")
	ErrOutput    = errors.New("docprep: output error")
)

// DocError records the failure of one document.
type DocError struct {
	Path string
	Err  error
}

func (e DocError) Error() string { return e.Path + ": " + e.Err.Error() }

func (e DocError) Unwrap() error { return e.Err }
