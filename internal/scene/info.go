// Package scene holds typed views over the scene report produced by
// the in-Blender scene-info payload. These records are transient: they
// mirror Blender's live object graph at the moment of the query and
// are never persisted by this tool.
package scene

import (
	"fmt"
	"sort"
	"strings"
)

// Section names accepted by the scene-info payload.
const (
	SectionObjects     = "objects"
	SectionMaterials   = "materials"
	SectionTextures    = "textures"
	SectionCameras     = "cameras"
	SectionLights      = "lights"
	SectionCollections = "collections"
	SectionAnimation   = "animation"
	SectionRender      = "render"
)

// AllSections lists every section in display order.
func AllSections() []string {
	return []string{
		SectionObjects,
		SectionMaterials,
		SectionTextures,
		SectionCameras,
		SectionLights,
		SectionCollections,
		SectionAnimation,
		SectionRender,
	}
}

// Request selects which sections the payload collects.
type Request struct {
	Sections []string `json:"sections,omitempty"`
}

// Info is the full scene report.
type Info struct {
	Error          string `json:"error,omitempty"`
	File           string `json:"file"`
	BlenderVersion string `json:"blender_version"`

	Objects     []Object     `json:"objects,omitempty"`
	Materials   []Material   `json:"materials,omitempty"`
	Textures    []Texture    `json:"textures,omitempty"`
	Cameras     []Camera     `json:"cameras,omitempty"`
	Lights      []Light      `json:"lights,omitempty"`
	Collections []Collection `json:"collections,omitempty"`
	Animation   *Animation   `json:"animation,omitempty"`
	Render      *Render      `json:"render,omitempty"`
}

// Object describes one scene object. Mesh fields are populated only
// for MESH-type objects.
type Object struct {
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Location []float64 `json:"location"`
	Rotation []float64 `json:"rotation"`
	Scale    []float64 `json:"scale"`
	Parent   string    `json:"parent,omitempty"`
	Visible  bool      `json:"visible"`

	Vertices  int      `json:"vertices,omitempty"`
	Faces     int      `json:"faces,omitempty"`
	Edges     int      `json:"edges,omitempty"`
	Materials []string `json:"materials,omitempty"`
}

// Material describes one material datablock.
type Material struct {
	Name     string   `json:"name"`
	UseNodes bool     `json:"use_nodes"`
	Users    int      `json:"users"`
	Nodes    []string `json:"nodes,omitempty"`
}

// Texture describes one image datablock.
type Texture struct {
	Name     string `json:"name"`
	Filepath string `json:"filepath"`
	Size     []int  `json:"size"`
	Channels int    `json:"channels"`
	IsPacked bool   `json:"is_packed"`
	Users    int    `json:"users"`
}

// Camera describes one camera datablock.
type Camera struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Lens        float64 `json:"lens"`
	SensorWidth float64 `json:"sensor_width"`
	ClipStart   float64 `json:"clip_start"`
	ClipEnd     float64 `json:"clip_end"`
}

// Light describes one light datablock.
type Light struct {
	Name   string    `json:"name"`
	Type   string    `json:"type"`
	Energy float64   `json:"energy"`
	Color  []float64 `json:"color"`
}

// Collection describes one collection and its membership.
type Collection struct {
	Name     string   `json:"name"`
	Objects  []string `json:"objects"`
	Children []string `json:"children"`
}

// Animation describes the scene timeline.
type Animation struct {
	FPS             int     `json:"fps"`
	FPSBase         float64 `json:"fps_base"`
	FrameStart      int     `json:"frame_start"`
	FrameEnd        int     `json:"frame_end"`
	FrameCurrent    int     `json:"frame_current"`
	DurationFrames  int     `json:"duration_frames"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Render describes the scene's render settings.
type Render struct {
	Engine               string `json:"engine"`
	ResolutionX          int    `json:"resolution_x"`
	ResolutionY          int    `json:"resolution_y"`
	ResolutionPercentage int    `json:"resolution_percentage"`
	FileFormat           string `json:"file_format"`
	Filepath             string `json:"filepath"`
}

// ValidateSections rejects unknown section names before any subprocess
// is spawned.
func ValidateSections(sections []string) error {
	known := make(map[string]bool, len(AllSections()))
	for _, s := range AllSections() {
		known[s] = true
	}
	for _, s := range sections {
		if !known[s] {
			return fmt.Errorf("unknown section %q (known: %s)", s, strings.Join(AllSections(), " "))
		}
	}
	return nil
}

// Summary renders the report as a human-readable listing. Sections
// absent from the report are skipped.
func (i *Info) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "File: %s\n", orUnsaved(i.File))
	fmt.Fprintf(&b, "Blender: %s\n", i.BlenderVersion)

	if i.Objects != nil {
		byType := map[string]int{}
		var verts, faces int
		for _, obj := range i.Objects {
			byType[obj.Type]++
			verts += obj.Vertices
			faces += obj.Faces
		}
		fmt.Fprintf(&b, "\nObjects (%d):\n", len(i.Objects))
		for _, typ := range sortedTypeKeys(byType) {
			fmt.Fprintf(&b, "  %s: %d\n", typ, byType[typ])
		}
		if verts > 0 {
			fmt.Fprintf(&b, "  total vertices: %d, faces: %d\n", verts, faces)
		}
	}

	if i.Materials != nil {
		fmt.Fprintf(&b, "\nMaterials (%d):\n", len(i.Materials))
		for _, mat := range i.Materials {
			fmt.Fprintf(&b, "  %s (users: %d, nodes: %v)\n", mat.Name, mat.Users, mat.UseNodes)
		}
	}

	if i.Textures != nil {
		fmt.Fprintf(&b, "\nTextures (%d):\n", len(i.Textures))
		for _, tex := range i.Textures {
			size := ""
			if len(tex.Size) == 2 {
				size = fmt.Sprintf(" %dx%d", tex.Size[0], tex.Size[1])
			}
			packed := ""
			if tex.IsPacked {
				packed = " [packed]"
			}
			fmt.Fprintf(&b, "  %s%s%s\n", tex.Name, size, packed)
		}
	}

	if i.Cameras != nil {
		fmt.Fprintf(&b, "\nCameras (%d):\n", len(i.Cameras))
		for _, cam := range i.Cameras {
			fmt.Fprintf(&b, "  %s (%s, %.1fmm)\n", cam.Name, cam.Type, cam.Lens)
		}
	}

	if i.Lights != nil {
		fmt.Fprintf(&b, "\nLights (%d):\n", len(i.Lights))
		for _, light := range i.Lights {
			fmt.Fprintf(&b, "  %s (%s, energy %.1f)\n", light.Name, light.Type, light.Energy)
		}
	}

	if i.Collections != nil {
		fmt.Fprintf(&b, "\nCollections (%d):\n", len(i.Collections))
		for _, coll := range i.Collections {
			fmt.Fprintf(&b, "  %s (%d objects, %d children)\n", coll.Name, len(coll.Objects), len(coll.Children))
		}
	}

	if i.Animation != nil {
		a := i.Animation
		fmt.Fprintf(&b, "\nAnimation: frames %d-%d @ %d fps (%.2fs)\n",
			a.FrameStart, a.FrameEnd, a.FPS, a.DurationSeconds)
	}

	if i.Render != nil {
		r := i.Render
		fmt.Fprintf(&b, "\nRender: %s %dx%d@%d%% -> %s\n",
			r.Engine, r.ResolutionX, r.ResolutionY, r.ResolutionPercentage, r.FileFormat)
	}

	return b.String()
}

func orUnsaved(path string) string {
	if path == "" {
		return "(unsaved)"
	}
	return path
}

func sortedTypeKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
