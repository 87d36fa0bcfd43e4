package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// EnvFileVar names an explicit user-level env file, overriding the one in Dir.
const EnvFileVar = "RUSTME_ENV_FILE"

// Dir returns the user-level rustme configuration directory. rustme reads
// an optional env file from it before running (see EnvFile).
//
// Resolution:
//   - $RUSTME_CONFIG_HOME if set
//   - $XDG_CONFIG_HOME/rustme if set (on any platform)
//   - %AppData%/rustme on Windows
//   - ~/.config/rustme elsewhere
func Dir() string {
	if dir := os.Getenv("RUSTME_CONFIG_HOME"); dir != "" {
		return dir
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rustme")
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "rustme")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "rustme")
}

// EnvFile returns the user-level env file that supplies RUSTME_* defaults
// such as RUSTME_USER_AGENT and RUSTME_HTTP_TIMEOUT. $RUSTME_ENV_FILE wins;
// otherwise it is "env" inside Dir. An empty result means there is none.
func EnvFile() string {
	if path := os.Getenv(EnvFileVar); path != "" {
		return path
	}
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "env")
}
