// Package jobsettings resolves job submission settings from the open scene,
// persisted sticky preferences, and job history bundle overlays into one
// conflict-free Settings value, and projects it into the documents consumed
// by the submission layer.
//
// # Sources and precedence
//
// A Settings value is seeded from the scene, then ApplyStickySettings
// overlays the last-used preferences, then ApplySubmitterSettings overlays a
// bundle directory written by a prior submission. Later sources win, but each
// source follows its own rules:
//
//   - Sticky parameters only update parameters that already exist and are not
//     in the non-sticky set; sticky path lists replace the current lists.
//   - Bundle parameters replace the whole parameter list. Bundle filenames are
//     unioned with the current explicit filenames and the auto-detected
//     filenames are then subtracted. Bundle directories and referenced paths
//     replace the current lists.
//
// The filename and directory rules differ on purpose and must stay separate.
//
// # Documents
//
// StickySettings, ParameterValuesDocument, and AssetReferencesDocument are the
// JSON shapes persisted on disk. In decoded documents a nil list means the key
// was absent, while an empty list means the key was present and empty.
package jobsettings
