package render

import (
	"fmt"
	"os/exec"
	"strings"
)

// FindDot locates the Graphviz dot binary on PATH.
func FindDot() (string, error) {
	path, err := exec.LookPath("dot")
	if err != nil {
		return "", fmt.Errorf("graphviz not found: install it and make sure 'dot' is on PATH: %w", err)
	}
	return path, nil
}

// Render pipes DOT source through the dot binary, writing
// <output>.<format>.
func Render(dotSource, output, format string) error {
	dotPath, err := FindDot()
	if err != nil {
		return err
	}
	cmd := exec.Command(dotPath, "-T"+format, "-o", output+"."+format)
	cmd.Stdin = strings.NewReader(dotSource)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("dot failed: %v: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
