package ipc

import (
	"fmt"
	"os"

	"github.com/hyprplug/hyprplugd/internal/compositor"
)

// DefaultSocketPath derives the client listening socket's path from
// $XDG_RUNTIME_DIR and the session signature (§6.4, grounded on
// hyprland-community-pyprland's client deriving its own socket path the
// same way). Both the daemon and the CLI client call this so they always
// agree on where the socket lives.
func DefaultSocketPath() (string, error) {
	sig := os.Getenv(compositor.SignatureEnvVar)
	if sig == "" {
		return "", fmt.Errorf("%s is not set; is hyprplugd running under a compositor session?", compositor.SignatureEnvVar)
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = "/tmp"
	}
	return fmt.Sprintf("%s/hypr/%s/.hyprplug.sock", runtimeDir, sig), nil
}
