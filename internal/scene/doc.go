// Package scene is the boundary to the host application session.
//
// The host scripting API (reading the open scene, saving, pausing the
// real-time view) lives outside this module. Session abstracts it, and
// FileSession implements it over a JSON scene description written by the
// host-side script, so the submitter can run headless and in tests.
//
// PackageFiles consumes the archive the host writes when it packages a scene
// with its assets and returns the scene file plus every other unpacked file.
package scene
