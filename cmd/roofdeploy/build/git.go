package build

import (
	"bytes"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/exp/slog"
)

// GitRevision returns the abbreviated commit hash of the working tree, used
// as the image tag when no revision is supplied on the command line.
func GitRevision(dir string) (string, error) {
	buf := new(bytes.Buffer)
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	cmd.Dir = dir
	cmd.Stdout = buf
	cmd.Stderr = os.Stderr
	slog.Debug(cmd.String())
	if err := cmd.Start(); err != nil {
		return "", err
	}
	if err := cmd.Wait(); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
