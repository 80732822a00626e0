package blender

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const versionExpr = "import bpy; print(bpy.app.version_string)"

// Version probes the executable for its bpy version string by running a
// tiny --python-expr invocation.
func (r *Runner) Version(ctx context.Context) (string, error) {
	result, err := r.Run(ctx, Invocation{
		Expr:    versionExpr,
		Timeout: 2 * time.Minute,
	})
	if err != nil {
		return "", err
	}
	if !result.OK() {
		return "", fmt.Errorf("version probe failed: exit %d: %s",
			result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	// Blender prints its own banner lines starting with "Blender";
	// the expression output is the first line that is neither.
	for _, line := range strings.Split(result.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Blender") {
			continue
		}
		return line, nil
	}
	return "", fmt.Errorf("version probe produced no version line")
}
