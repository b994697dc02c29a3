// Package submission drives one render job submission end to end.
//
// It seeds job settings from the open scene, layers the sticky settings and
// an optional job history bundle on top, checks the result against the
// adaptor's init data contract, then writes a new job bundle, saves the
// sticky snapshot, and records the submission in the history database.
//
// Resolve performs only the settings resolution and has no side effects,
// which is what `rendersubmit settings show` uses.
package submission
