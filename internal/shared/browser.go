package shared

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

var startCommand = func(cmd *exec.Cmd) error { return cmd.Start() }

// OpenBrowser opens the default system browser at rawURL.
//
// Only absolute http(s) URLs are accepted since link URLs come from user input.
func OpenBrowser(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: not a web url: %q", ErrInvalidArgument, rawURL)
	}

	var cmd *exec.Cmd
	switch rt := getRuntime(); rt {
	case "darwin":
		cmd = exec.Command("open", u.String())
	case "linux":
		cmd = exec.Command("xdg-open", u.String())
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", u.String())
	default:
		return fmt.Errorf("unsupported platform: %s", rt)
	}

	if err := startCommand(cmd); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
