package adaptor

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"golang.org/x/mod/semver"
)

// InterfaceVersion is the integration data interface version. Bump it
// whenever either embedded schema changes.
const InterfaceVersion = "v0.1.0"

var (
	// ErrSchemaChanged reports that an embedded schema no longer matches the
	// expected copy.
	ErrSchemaChanged = errors.New("adaptor schema changed")
	// ErrVersionMismatch reports an interface version other than expected.
	ErrVersionMismatch = errors.New("adaptor interface version mismatch")
	// ErrInvalidData reports init or run data rejected by its schema.
	ErrInvalidData = errors.New("invalid adaptor data")
)

//go:embed schemas/init_data.schema.json
var initDataSchema []byte

//go:embed schemas/run_data.schema.json
var runDataSchema []byte

// InitDataSchema returns a copy of the embedded init data schema.
func InitDataSchema() []byte { return bytes.Clone(initDataSchema) }

// RunDataSchema returns a copy of the embedded run data schema.
func RunDataSchema() []byte { return bytes.Clone(runDataSchema) }

// Version returns the major and minor components of InterfaceVersion.
func Version() (major, minor int) {
	major, minor, _ = parseMajorMinor(InterfaceVersion)
	return major, minor
}

func parseMajorMinor(version string) (int, int, error) {
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	if !semver.IsValid(version) {
		return 0, 0, fmt.Errorf("invalid semantic version %q", version)
	}
	parts := strings.SplitN(strings.TrimPrefix(semver.MajorMinor(version), "v"), ".", 2)
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("parse major version: %w", err)
	}
	minor := 0
	if len(parts) == 2 {
		if minor, err = strconv.Atoi(parts[1]); err != nil {
			return 0, 0, fmt.Errorf("parse minor version: %w", err)
		}
	}
	return major, minor, nil
}

// CheckCompatibility compares the embedded schemas against the expected
// copies and the interface version against expectedVersion (major.minor).
// Schemas compare by JSON value, so formatting differences are ignored.
func CheckCompatibility(expectedInit, expectedRun []byte, expectedVersion string) error {
	if err := compareSchema("init_data.schema.json", initDataSchema, expectedInit); err != nil {
		return err
	}
	if err := compareSchema("run_data.schema.json", runDataSchema, expectedRun); err != nil {
		return err
	}
	if expectedVersion == "" {
		return nil
	}
	wantMajor, wantMinor, err := parseMajorMinor(expectedVersion)
	if err != nil {
		return err
	}
	major, minor := Version()
	if major != wantMajor || minor != wantMinor {
		return fmt.Errorf("%w: have %d.%d, expected %d.%d", ErrVersionMismatch, major, minor, wantMajor, wantMinor)
	}
	return nil
}

func compareSchema(name string, actual, expected []byte) error {
	var have, want any
	if err := json.Unmarshal(actual, &have); err != nil {
		return fmt.Errorf("decode embedded %s: %w", name, err)
	}
	if err := json.Unmarshal(expected, &want); err != nil {
		return fmt.Errorf("decode expected %s: %w", name, err)
	}
	if !reflect.DeepEqual(have, want) {
		return fmt.Errorf("%w: %s differs from the expected schema; bump the interface version", ErrSchemaChanged, name)
	}
	return nil
}

var (
	resolveOnce  sync.Once
	resolvedInit *jsonschema.Resolved
	resolvedRun  *jsonschema.Resolved
	resolveErr   error
)

func resolvedSchemas() (*jsonschema.Resolved, *jsonschema.Resolved, error) {
	resolveOnce.Do(func() {
		resolvedInit, resolveErr = resolveSchema(initDataSchema)
		if resolveErr != nil {
			return
		}
		resolvedRun, resolveErr = resolveSchema(runDataSchema)
	})
	return resolvedInit, resolvedRun, resolveErr
}

func resolveSchema(data []byte) (*jsonschema.Resolved, error) {
	var schema jsonschema.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve schema: %w", err)
	}
	return resolved, nil
}

// validate checks v against schema after a JSON round trip so the validator
// sees plain JSON values.
func validate(schema *jsonschema.Resolved, kind string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("decode %s: %w", kind, err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidData, kind, err)
	}
	return nil
}

// CheckSchemas reports whether the embedded schemas equal the expected ones.
func CheckSchemas(expectedInit, expectedRun []byte) error {
	return CheckCompatibility(expectedInit, expectedRun, "")
}
