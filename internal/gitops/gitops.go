package gitops

import (
	"fmt"
	"os/exec"
	"strings"
)

// Revision returns the commit checked out in dir, with a "-dirty" suffix
// when the working tree has uncommitted changes. It fails when dir is not
// inside a git work tree.
func Revision(dir string) (string, error) {
	head := exec.Command("git", "rev-parse", "--verify", "HEAD")
	head.Dir = dir
	out, err := head.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse HEAD: %w", err)
	}
	rev := strings.TrimSpace(string(out))

	status := exec.Command("git", "status", "--porcelain")
	status.Dir = dir
	changes, err := status.Output()
	if err != nil {
		return "", fmt.Errorf("git status: %w", err)
	}
	if len(strings.TrimSpace(string(changes))) > 0 {
		rev += "-dirty"
	}
	return rev, nil
}
