// Package build runs the document preparation pipeline.
//
// A build discovers source documents, passes each one through the
// source-read hooks on a bounded worker pool and writes the result to the
// output directory, where the downstream renderer picks it up. Incremental
// builds consult the state store and skip documents whose source is
// unchanged since the last successful build.
package build
