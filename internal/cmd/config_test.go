package cmd_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Alia5/macropad/internal/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"
)

func TestFlagKey(t *testing.T) {
	for in, want := range map[string]string{
		"Addr":         "addr",
		"ActiveLow":    "active_low",
		"WriteTimeout": "write_timeout",
		"RawFile":      "raw_file",
		"GPIO":         "gpio",
	} {
		assert.Equal(t, want, cmd.FlagKey(in), in)
	}
}

func TestTemplate(t *testing.T) {
	root, err := cmd.Template("run")
	require.NoError(t, err)

	gpio := root["gpio"].(map[string]any)
	assert.Equal(t, "/dev/gpiochip0", gpio["chip"])
	assert.Equal(t, []any{uint64(0), uint64(1), uint64(2), uint64(3)}, gpio["select"])
	assert.Equal(t, "10ms", gpio["settle"])
	assert.Equal(t, true, gpio["active_low"])
	assert.Equal(t, "1ms", root["scan"].(map[string]any)["interval"])
	assert.Equal(t, ":3243", root["link"].(map[string]any)["addr"])
	assert.Equal(t, "info", root["log"].(map[string]any)["level"])

	mon, err := cmd.Template("monitor")
	require.NoError(t, err)
	assert.NotContains(t, mon, "addr")
	assert.Contains(t, mon, "leds")

	_, err = cmd.Template("service")
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "run.json")
	require.NoError(t, (&cmd.ConfigInit{Command: "run", Format: "json", Output: jsonPath}).Run())
	var got map[string]any
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "gpio", got["reader"])

	err = (&cmd.ConfigInit{Command: "run", Format: "json", Output: jsonPath}).Run()
	assert.ErrorContains(t, err, "--force")
	require.NoError(t, (&cmd.ConfigInit{Command: "run", Format: "json", Output: jsonPath, Force: true}).Run())

	yamlPath := filepath.Join(dir, "nested", "monitor.yaml")
	require.NoError(t, (&cmd.ConfigInit{Command: "monitor", Format: "yaml", Output: yamlPath}).Run())
	data, err = os.ReadFile(yamlPath)
	require.NoError(t, err)
	got = nil
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, "3s", got["dial_timeout"])

	tomlPath := filepath.Join(dir, "run.toml")
	require.NoError(t, (&cmd.ConfigInit{Command: "run", Format: "toml", Output: tomlPath}).Run())
	assert.FileExists(t, tomlPath)
}
