// Package preflight provides readiness checks for the paths and documents
// rendersubmit depends on.
//
// The CLI "rendersubmit status" command runs RunAll and renders one line per
// check. Submit does not call these checks; it reports the same failures as
// errors when it reaches the affected step.
package preflight
