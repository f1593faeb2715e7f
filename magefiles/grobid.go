//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
)

const grobidImage = "lfoppiano/grobid:0.8.0"

// GrobidPull pulls the GROBID container image used by `matex grobid start`.
// Tries docker first, then podman.
func GrobidPull() error {
	for _, bin := range []string{"docker", "podman"} {
		if _, err := exec.LookPath(bin); err != nil {
			continue
		}
		fmt.Printf("Pulling %s with %s...\n", grobidImage, bin)
		cmd := exec.Command(bin, "pull", grobidImage)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s pull: %w", bin, err)
		}
		return nil
	}
	return fmt.Errorf("no container runtime found: install docker or podman")
}
