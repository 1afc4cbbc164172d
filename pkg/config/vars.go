package config

import (
	"fmt"
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "pixlink"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/pixlink by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files.
// Returns ~/.cache/pixlink by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/pixlink/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/pixlink/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// SourcesFilePath returns the full path to the sources.yaml file that
// describes climate sources and survey layers.
func SourcesFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "sources.yaml")
}

// ExtractDir returns the directory that holds the wide per-year extraction
// files of one climate source.
func ExtractDir(homeDir, sourceName string) string {
	return filepath.Join(CacheDir(homeDir), "extract", sourceName)
}

// YearFilePath returns the path of the wide per-year extraction file for a
// climate source. The file doubles as the resume marker of the year.
// Year zero names the single file of a static climatology.
func YearFilePath(homeDir, sourceName string, year int) string {
	name := fmt.Sprintf("%s_%d.sqlite", sourceName, year)
	if year == 0 {
		name = fmt.Sprintf("%s_static.sqlite", sourceName)
	}
	return filepath.Join(ExtractDir(homeDir, sourceName), name)
}
