// Package clipboard copies text to the system clipboard.
package clipboard

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	atclip "github.com/atotto/clipboard"
)

// isWayland returns true if the session is running under Wayland.
func isWayland() bool {
	return os.Getenv("WAYLAND_DISPLAY") != ""
}

// Seams for tests.
var (
	lookPath   = exec.LookPath
	runCommand = func(ctx context.Context, name string, args ...string) error {
		return exec.CommandContext(ctx, name, args...).Run()
	}
	writeAll = atclip.WriteAll
)

// Copy places text on the clipboard. Under Wayland it prefers wl-copy, since
// X11 clipboard tools only reach XWayland clients; otherwise (X11, macOS) it
// goes through atotto/clipboard.
func Copy(text string) error {
	if isWayland() {
		if _, err := lookPath("wl-copy"); err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := runCommand(ctx, "wl-copy", "--", text); err != nil {
				return fmt.Errorf("wl-copy: %w", err)
			}
			return nil
		}
	}
	if atclip.Unsupported {
		return fmt.Errorf("no clipboard utility found (install xclip, xsel or wl-clipboard)")
	}
	if err := writeAll(text); err != nil {
		return fmt.Errorf("write to clipboard: %w", err)
	}
	return nil
}
