// Package stickystore persists the submitter's "last used" settings snapshot
// between runs.
//
// The snapshot lives in a single JSON file guarded by an advisory lock on a
// sibling ".lock" file, so two submitters started at once cannot interleave
// a read and a write. Writes go through a temp file and rename. A missing
// file reads as an empty snapshot.
package stickystore
