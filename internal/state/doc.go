// Package state persists incremental build state.
//
// Each processed document is recorded with the fingerprint of the source it
// was built from, so later builds can skip documents whose source and output
// are unchanged. Build history and small key/value settings (such as the
// configuration snapshot the state was produced under) live alongside.
package state
