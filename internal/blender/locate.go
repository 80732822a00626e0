// Package blender locates and invokes the Blender executable in
// headless mode. All scene and render work happens inside Blender;
// this package only builds argument lists, runs the subprocess, and
// captures its output.
package blender

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

// ErrNotFound indicates no Blender executable could be resolved.
var ErrNotFound = errors.New("blender executable not found")

// Probe records one step of executable discovery, in resolution order.
type Probe struct {
	Source string `json:"source"` // flag, env, config, known-path, path
	Value  string `json:"value,omitempty"`
	Found  bool   `json:"found"`
	Detail string `json:"detail,omitempty"`
}

// Locator resolves the Blender executable from, in priority order:
// the --blender flag, the BLENDER_EXE environment variable, the config
// file, a per-OS table of well-known install paths, and finally $PATH.
type Locator struct {
	// Explicit is the --blender flag value. If set and missing on disk
	// resolution fails immediately instead of falling through.
	Explicit string

	// ConfigPath is blender.executable from the config file.
	ConfigPath string

	logger *zap.Logger
}

// NewLocator creates a Locator. logger may be nil.
func NewLocator(explicit, configPath string, logger *zap.Logger) *Locator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locator{Explicit: explicit, ConfigPath: configPath, logger: logger}
}

// Resolve returns the first usable executable path along with the full
// probe trail. On failure the trail is still returned so callers (the
// doctor command) can render it.
func (l *Locator) Resolve() (string, []Probe, error) {
	var probes []Probe

	if l.Explicit != "" {
		p := checkCandidate("flag", l.Explicit)
		probes = append(probes, p)
		if !p.Found {
			return "", probes, fmt.Errorf("--blender %s: %w (file does not exist)", l.Explicit, ErrNotFound)
		}
		l.logger.Debug("Resolved Blender from flag", zap.String("path", l.Explicit))
		return l.Explicit, probes, nil
	}
	probes = append(probes, Probe{Source: "flag", Detail: "not set"})

	if envPath := os.Getenv("BLENDER_EXE"); envPath != "" {
		p := checkCandidate("env", envPath)
		probes = append(probes, p)
		if p.Found {
			l.logger.Debug("Resolved Blender from BLENDER_EXE", zap.String("path", envPath))
			return envPath, probes, nil
		}
	} else {
		probes = append(probes, Probe{Source: "env", Detail: "BLENDER_EXE not set"})
	}

	if l.ConfigPath != "" {
		p := checkCandidate("config", l.ConfigPath)
		probes = append(probes, p)
		if p.Found {
			l.logger.Debug("Resolved Blender from config", zap.String("path", l.ConfigPath))
			return l.ConfigPath, probes, nil
		}
	} else {
		probes = append(probes, Probe{Source: "config", Detail: "blender.executable not set"})
	}

	for _, candidate := range knownPaths() {
		if candidate == "" {
			continue
		}
		if fileExists(candidate) {
			probes = append(probes, Probe{Source: "known-path", Value: candidate, Found: true})
			l.logger.Debug("Resolved Blender from known install path", zap.String("path", candidate))
			return candidate, probes, nil
		}
	}
	probes = append(probes, Probe{Source: "known-path", Detail: "no well-known install path exists"})

	if fromPath, err := exec.LookPath(blenderBinaryName()); err == nil {
		probes = append(probes, Probe{Source: "path", Value: fromPath, Found: true})
		l.logger.Debug("Resolved Blender from $PATH", zap.String("path", fromPath))
		return fromPath, probes, nil
	}
	probes = append(probes, Probe{Source: "path", Detail: "blender not on $PATH"})

	return "", probes, fmt.Errorf("%w: checked --blender flag, BLENDER_EXE, config file, "+
		"well-known install paths, and $PATH; set BLENDER_EXE in your environment or .env file", ErrNotFound)
}

func checkCandidate(source, value string) Probe {
	p := Probe{Source: source, Value: value}
	if fileExists(value) {
		p.Found = true
	} else {
		p.Detail = "set but file does not exist"
	}
	return p
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func blenderBinaryName() string {
	if runtime.GOOS == "windows" {
		return "blender.exe"
	}
	return "blender"
}

// knownPaths returns well-known install locations for the current OS.
func knownPaths() []string {
	home, _ := os.UserHomeDir()

	switch runtime.GOOS {
	case "darwin":
		paths := []string{"/Applications/Blender.app/Contents/MacOS/Blender"}
		if home != "" {
			paths = append(paths, filepath.Join(home, "Applications/Blender.app/Contents/MacOS/Blender"))
		}
		return paths
	case "windows":
		programFiles := os.Getenv("PROGRAMFILES")
		if programFiles == "" {
			return nil
		}
		base := filepath.Join(programFiles, "Blender Foundation")
		paths := []string{filepath.Join(base, "Blender", "blender.exe")}
		// Versioned install directories, newest major releases first.
		for _, v := range []string{"5.0", "4.5", "4.0"} {
			paths = append(paths, filepath.Join(base, "Blender "+v, "blender.exe"))
		}
		return paths
	default:
		paths := []string{
			"/usr/bin/blender",
			"/usr/local/bin/blender",
			"/snap/bin/blender",
		}
		if home != "" {
			paths = append(paths, filepath.Join(home, ".local/bin/blender"))
		}
		return paths
	}
}

// ProbeLine renders one probe as a human-readable line for doctor output.
func (p Probe) ProbeLine() string {
	var b strings.Builder
	b.WriteString(p.Source)
	if p.Value != "" {
		b.WriteString(" ")
		b.WriteString(p.Value)
	}
	if p.Detail != "" {
		b.WriteString(" (")
		b.WriteString(p.Detail)
		b.WriteString(")")
	}
	return b.String()
}
