// Package jobbundle writes and reads job history bundles.
//
// A bundle is a directory under the job history root named
// "<YYYY-MM-DD>-<seq>-<jobname>" holding template.json,
// parameter_values.json, and asset_references.json. The sequence number is
// a two digit per-day counter. A bundle directory can later be handed back to
// jobsettings.Settings.ApplySubmitterSettings to resubmit the same job.
package jobbundle
