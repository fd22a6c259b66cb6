package fs

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/mitchellh/go-homedir"
)

// BaseDirs maps scope variables such as "$APPDATA" to directories.
type BaseDirs map[string]string

// ResolveBaseDirs returns the base directories of the current user for the
// application identifier. Directories that cannot be determined are omitted.
func ResolveBaseDirs(identifier string) BaseDirs {
	dirs := BaseDirs{"$TEMP": os.TempDir()}

	home, err := homedir.Dir()
	if err == nil {
		dirs["$HOME"] = home
		dirs["$DOCUMENT"] = filepath.Join(home, "Documents")
		dirs["$DOWNLOAD"] = filepath.Join(home, "Downloads")
		dirs["$DESKTOP"] = filepath.Join(home, "Desktop")
	}

	if cfg, err := os.UserConfigDir(); err == nil {
		dirs["$APPCONFIG"] = filepath.Join(cfg, identifier)
	}
	if data := dataDir(home); data != "" {
		dirs["$APPDATA"] = filepath.Join(data, identifier)
	}
	if local := localDataDir(home); local != "" {
		dirs["$APPLOCALDATA"] = filepath.Join(local, identifier)
	}
	return dirs
}

func dataDir(home string) string {
	switch runtime.GOOS {
	case "windows":
		return os.Getenv("APPDATA")
	case "darwin", "ios":
		if home == "" {
			return ""
		}
		return filepath.Join(home, "Library", "Application Support")
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); filepath.IsAbs(dir) {
			return dir
		}
		if home == "" {
			return ""
		}
		return filepath.Join(home, ".local", "share")
	}
}

func localDataDir(home string) string {
	if runtime.GOOS == "windows" {
		return os.Getenv("LOCALAPPDATA")
	}
	return dataDir(home)
}
