//go:build linux

package services

import "fmt"

// The x/clipboard linux backend needs cgo and a running X server, so linux
// builds report the clipboard as unavailable and the CLI prints the text instead.
const clipboardAvailable = false

func initClipboard() error {
	return fmt.Errorf("no clipboard on this platform (linux without X11)")
}

func writeToClipboard(string) error {
	return fmt.Errorf("no clipboard on this platform (linux without X11)")
}
