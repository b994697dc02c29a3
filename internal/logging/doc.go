// Package logging builds the slog loggers used by rendersubmit.
//
// Console output goes to stderr and is colorized when stderr is a terminal.
// When a log directory is configured every record is also appended to
// rendersubmit.log in the same format, without color. Context helpers tag
// records with the submission ID so a whole submit run can be grepped out of
// the log file.
package logging
