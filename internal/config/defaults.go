package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

const appName = "textreplacer"

// userBase resolves a per-user base directory: the first non-empty env var
// in envs, else home joined with fallback.
func userBase(fallback []string, envs ...string) string {
	for _, env := range envs {
		if v := os.Getenv(env); v != "" {
			return filepath.Join(v, appName)
		}
	}
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(append(append([]string{home}, fallback...), appName)...)
}

// appSupportDir is shared by config and data on macOS and Windows.
func appSupportDir() string {
	if runtime.GOOS == "windows" {
		return userBase([]string{"AppData", "Roaming"}, "APPDATA")
	}
	return userBase([]string{"Library", "Application Support"})
}

// PlatformDataDir holds the statistics database: XDG_DATA_HOME or
// ~/.local/share on Linux, the application support folder elsewhere.
func PlatformDataDir() string {
	switch runtime.GOOS {
	case "darwin", "windows":
		return appSupportDir()
	}
	return userBase([]string{".local", "share"}, "XDG_DATA_HOME")
}

// PlatformConfigDir holds config files: XDG_CONFIG_HOME or ~/.config on
// Linux, the application support folder elsewhere.
func PlatformConfigDir() string {
	switch runtime.GOOS {
	case "darwin", "windows":
		return appSupportDir()
	}
	return userBase([]string{".config"}, "XDG_CONFIG_HOME")
}

// PlatformRuntimeDir holds the instance lock. It prefers XDG_RUNTIME_DIR on
// Linux and LOCALAPPDATA on Windows, and otherwise uses a per-uid directory
// under the system temp dir.
func PlatformRuntimeDir() string {
	switch runtime.GOOS {
	case "windows":
		return userBase([]string{"AppData", "Local"}, "LOCALAPPDATA", "APPDATA")
	case "linux":
		if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
			return filepath.Join(dir, appName)
		}
	}
	return filepath.Join(os.TempDir(), appName+"-"+strconv.Itoa(os.Getuid()))
}

var configExts = []string{"toml", "json", "yaml", "yml"}

// SupportedConfigFormats lists the file extensions Load understands,
// in lookup order.
func SupportedConfigFormats() []string {
	return append([]string(nil), configExts...)
}

// FindConfigFile looks for config.<ext> in the working directory, then in
// PlatformConfigDir. It returns "" when there is none.
func FindConfigFile() string {
	for _, dir := range []string{".", PlatformConfigDir()} {
		for _, ext := range configExts {
			path := filepath.Join(dir, "config."+ext)
			if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
				return path
			}
		}
	}
	return ""
}
