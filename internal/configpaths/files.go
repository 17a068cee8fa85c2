// Package configpaths lists where macropad looks for config files.
package configpaths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// EnvConfig names the environment variable that points at a config file.
const EnvConfig = "MACROPAD_CONFIG"

const systemDir = "/etc/macropad"

var baseNames = []string{"macropad", "config", "run", "monitor"}

// DefaultConfigDir returns the per-user configuration directory.
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("AppData"); appdata != "" {
			return filepath.Join(appdata, "MacroPad"), nil
		}
		return "", errors.New("AppData not set")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "macropad"), nil
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", "macropad"), nil
		}
		return "", errors.New("HOME not set")
	}
}

// DefaultNamedConfigPath returns <config dir>/<baseName>.<ext> for format.
func DefaultNamedConfigPath(baseName, format string) (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, baseName+"."+Ext(format)), nil
}

// Ext maps a format name to its file extension.
func Ext(format string) string {
	switch format {
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return "json"
	}
}

// EnsureDir creates the parent directory of filePath.
func EnsureDir(filePath string) error {
	return os.MkdirAll(filepath.Dir(filePath), 0o755)
}

// ConfigCandidatePaths returns config candidates per loader, in priority
// order: userPath, working directory, user config dir, then /etc/macropad.
func ConfigCandidatePaths(userPath string) (jsonPaths, yamlPaths, tomlPaths []string) {
	addFile := func(p string) {
		switch filepath.Ext(p) {
		case ".yaml", ".yml":
			yamlPaths = append(yamlPaths, p)
		case ".toml":
			tomlPaths = append(tomlPaths, p)
		default:
			jsonPaths = append(jsonPaths, p)
		}
	}
	addDir := func(dir string) {
		for _, base := range baseNames {
			jsonPaths = append(jsonPaths, filepath.Join(dir, base+".json"))
			yamlPaths = append(yamlPaths, filepath.Join(dir, base+".yaml"), filepath.Join(dir, base+".yml"))
			tomlPaths = append(tomlPaths, filepath.Join(dir, base+".toml"))
		}
	}

	if userPath != "" {
		addFile(userPath)
	}
	if wd, err := os.Getwd(); err == nil {
		addDir(wd)
	}
	if dir, err := DefaultConfigDir(); err == nil {
		addDir(dir)
	}
	if runtime.GOOS != "windows" {
		addDir(systemDir)
	}
	return
}
