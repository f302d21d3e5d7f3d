//go:build !windows

package fileutil

import "errors"

// moveToWindowsTrash is a stub for non-Windows platforms.
// This function should never be called on non-Windows systems.
func moveToWindowsTrash(path string) error {
	return errors.New("Windows Recycle Bin is not available on this platform")
}

// hasHiddenAttribute is a stub for non-Windows platforms; hidden files are
// detected by the dotfile convention instead.
func hasHiddenAttribute(path string) bool { return false }

// hasSystemAttribute is a stub for non-Windows platforms.
func hasSystemAttribute(path string) bool { return false }
