// Package logs reads back the rendersubmit log file for the CLI.
//
// Tail keeps memory bounded by holding only the last N matching lines, so it
// is safe on log files that have grown across many submissions.
package logs
