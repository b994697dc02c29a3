package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"rendersubmit/internal/config"
	"rendersubmit/internal/scene"
	"rendersubmit/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	scenePath  string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	scenePath := filepath.Join(base, "scene.json")
	writeSceneDescription(t, scenePath, scene.Description{
		ScenePath:      filepath.Join(base, "scenes", "Turntable.bip"),
		OutputFilePath: filepath.Join(base, "renders", "turntable.%d.png"),
		OutputFormat:   "PNG",
		Frames:         "1-3",
		DetectedAssets: []string{filepath.Join(base, "textures", "wood.png")},
	})

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		scenePath:  scenePath,
		baseDir:    base,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	testsupport.WriteFile(t, path, string(data))
}

func writeSceneDescription(t *testing.T, path string, desc scene.Description) {
	t.Helper()
	testsupport.WriteJSON(t, path, desc)
}

func readSceneDescription(t *testing.T, path string) scene.Description {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read scene description: %v", err)
	}
	desc, err := scene.ParseDescription(data)
	if err != nil {
		t.Fatalf("parse scene description: %v", err)
	}
	return desc
}

func decodeJSON(t *testing.T, output string, target any) {
	t.Helper()
	if err := json.Unmarshal([]byte(output), target); err != nil {
		t.Fatalf("decode JSON output: %v\n%s", err, output)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
