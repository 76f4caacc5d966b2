package docker

import (
	"os/exec"
	"testing"
)

// SkipIfNoDocker skips t in short mode or when the docker CLI is missing or the
// daemon isn't running.
func SkipIfNoDocker(t testing.TB) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping Docker tests in short mode")
	}

	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("Docker not available")
	}

	if err := exec.Command("docker", "ps").Run(); err != nil {
		t.Skip("Docker daemon not running")
	}
}
