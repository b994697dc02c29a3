// Package adaptor holds the compatibility contract with the render adaptor
// that executes submitted jobs.
//
// The adaptor validates its init data (scene, output path, output format) and
// per-task run data (frame) against the JSON Schemas embedded here. Any
// change to either schema must ship with a bump of InterfaceVersion;
// CheckCompatibility is the pass/fail gate that enforces this against a
// checked-in expected copy.
//
// InitDataFromSettings and RunDataForFrames project resolved job settings
// into those payloads so a submission can be rejected before it reaches the
// farm.
package adaptor
