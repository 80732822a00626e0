// Package bpy carries the Python payloads executed inside Blender and
// the protocol for exchanging data with them. Options cross into the
// payload as a single JSON argument after "--"; results come back as a
// JSON document between fixed marker lines so they can be extracted
// from Blender's console noise.
package bpy

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed scripts/*.py
var scriptFS embed.FS

// Payload identifies one embedded in-Blender script.
type Payload string

const (
	PayloadConvert   Payload = "convert.py"
	PayloadRender    Payload = "render.py"
	PayloadSceneInfo Payload = "scene_info.py"
	PayloadModify    Payload = "modify_scene.py"
	PayloadAPIQuery  Payload = "api_query.py"
)

// Payloads lists every embedded payload.
func Payloads() []Payload {
	return []Payload{
		PayloadConvert,
		PayloadRender,
		PayloadSceneInfo,
		PayloadModify,
		PayloadAPIQuery,
	}
}

// Marker lines bracketing the payload's result JSON on stdout.
const (
	resultBegin = "BLENDERCTL_RESULT_BEGIN"
	resultEnd   = "BLENDERCTL_RESULT_END"
)

// ErrNoResult indicates stdout contained no marker-delimited result.
var ErrNoResult = errors.New("no result block in Blender output")

// PayloadError is an error reported by the payload itself via the
// "error" key of its result document.
type PayloadError struct {
	Message string
}

func (e *PayloadError) Error() string {
	return e.Message
}

// Source returns the embedded script bytes.
func Source(p Payload) ([]byte, error) {
	data, err := scriptFS.ReadFile("scripts/" + string(p))
	if err != nil {
		return nil, fmt.Errorf("embedded payload %s: %w", p, err)
	}
	return data, nil
}

// Materialize writes the payload to dir and returns its path. The
// caller owns cleanup of dir.
func Materialize(p Payload, dir string) (string, error) {
	data, err := Source(p)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, string(p))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("materialize payload %s: %w", p, err)
	}
	return path, nil
}

// EncodeOptions marshals an option struct into the single JSON argument
// handed to the payload after "--".
func EncodeOptions(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode payload options: %w", err)
	}
	return string(data), nil
}

// ExtractResult locates the marker-delimited JSON block in stdout and
// decodes it into out. A payload-reported error ("error" key) is
// surfaced as a *PayloadError after decoding, so out still holds any
// partial fields the payload produced.
func ExtractResult(stdout string, out any) error {
	block, err := resultBlock(stdout)
	if err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal([]byte(block), out); err != nil {
			return fmt.Errorf("decode payload result: %w", err)
		}
	}

	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(block), &probe); err == nil && probe.Error != "" {
		return &PayloadError{Message: probe.Error}
	}
	return nil
}

func resultBlock(stdout string) (string, error) {
	lines := strings.Split(stdout, "\n")
	begin, end := -1, -1
	for i, line := range lines {
		switch strings.TrimSpace(line) {
		case resultBegin:
			begin = i
		case resultEnd:
			if begin >= 0 && end < 0 {
				end = i
			}
		}
	}
	if begin < 0 || end < 0 || end <= begin {
		return "", ErrNoResult
	}
	return strings.Join(lines[begin+1:end], "\n"), nil
}
