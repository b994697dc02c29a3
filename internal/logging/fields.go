package logging

// Standard structured logging keys.
const (
	FieldComponent    = "component"
	FieldSubmissionID = "submission_id"
	FieldBundleDir    = "bundle_dir"
	FieldScene        = "scene_file"
	FieldEventType    = "event_type"
	FieldErrorHint    = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldAlert flags anomalies that should stand out.
	FieldAlert = "alert"
)
