package fileutil

import (
	"os"
	"strings"
)

// IsShortcut reports whether a file is a shortcut or symlink.
func IsShortcut(path, name string) bool {
	if strings.HasSuffix(strings.ToLower(name), ".lnk") {
		return true
	}
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

// IsHidden reports whether a file is hidden. On Unix this is a dotfile
// check; Windows consults the hidden file attribute.
func IsHidden(path, name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return hasHiddenAttribute(path)
}

// IsSystemFile reports whether a file is marked as a system file. Always
// false outside Windows.
func IsSystemFile(path, name string) bool {
	return hasSystemAttribute(path)
}
