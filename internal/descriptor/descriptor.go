// Package descriptor models the controller metadata contract produced by
// the external extractor: one record per Stimulus controller file, already
// parsed and trusted. This layer never re-derives the metadata itself.
package descriptor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sort"
)

// QuerySelector is one querySelector-like call recorded in a controller.
type QuerySelector struct {
	Selector       string `json:"selector"`
	Method         string `json:"method"`
	Line           int    `json:"line"`
	IsTemplate     bool   `json:"isTemplate"`
	SkipValidation bool   `json:"skipValidation"`
}

// AntiPattern is an architecture violation the extractor flagged in a
// controller source file.
type AntiPattern struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Controller describes one Stimulus controller's declared surface.
// Skip lists come from inline skip-comment directives in the controller
// source; the extractor computes them once, this layer only consumes them.
type Controller struct {
	Name               string          `json:"name"`
	Targets            []string        `json:"targets"`
	OptionalTargets    []string        `json:"optionalTargets"`
	TargetsWithSkip    []string        `json:"targetsWithSkip"`
	Values             []string        `json:"values"`
	ValuesWithDefaults []string        `json:"valuesWithDefaults"`
	ValuesWithSkip     []string        `json:"valuesWithSkip"`
	Outlets            []string        `json:"outlets"`
	Methods            []string        `json:"methods"`
	QuerySelectors     []QuerySelector `json:"querySelectors"`
	AntiPatterns       []AntiPattern   `json:"antiPatterns"`
	IsSystemController bool            `json:"isSystemController"`
	SourceFile         string          `json:"sourceFile"`
}

// HasMethod reports whether the controller declares the named method.
func (c *Controller) HasMethod(name string) bool {
	for _, m := range c.Methods {
		if m == name {
			return true
		}
	}
	return false
}

// Map is the read-only controller registry for one validation run, keyed by
// kebab-case controller name.
type Map map[string]*Controller

// Names returns controller names in sorted order for deterministic output.
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Extract invokes the external metadata extractor as a subprocess and
// decodes the descriptor records it emits on stdout. Every validator depends
// on this map, so any failure here is escalated as a hard error.
func Extract(ctx context.Context, command []string, controllersDir string) (Map, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("descriptor: no extractor command configured")
	}
	args := append(append([]string{}, command[1:]...), controllersDir)
	out, err := exec.CommandContext(ctx, command[0], args...).Output()
	if err != nil {
		return nil, fmt.Errorf("descriptor: extractor %s failed: %w", command[0], err)
	}
	return decode(out)
}

// LoadFile reads a pre-generated descriptor JSON file (CI artifacts, tests).
func LoadFile(path string) (Map, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("descriptor: read %s: %w", path, err)
	}
	return decode(raw)
}

func decode(raw []byte) (Map, error) {
	var list []*Controller
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("descriptor: decode: %w", err)
	}
	m := make(Map, len(list))
	for _, c := range list {
		if c.Name == "" {
			return nil, fmt.Errorf("descriptor: record without name (source %s)", c.SourceFile)
		}
		m[c.Name] = c
	}
	return m, nil
}

// contains is shared by the skip-list checks below.
func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// TargetRequired reports whether a declared target must be present in
// markup: optional targets and skip-marked targets are exempt.
func (c *Controller) TargetRequired(name string) bool {
	return !contains(c.OptionalTargets, name) && !contains(c.TargetsWithSkip, name)
}

// ValueRequired reports whether a declared value must be present in markup:
// values with defaults and skip-marked values are exempt.
func (c *Controller) ValueRequired(name string) bool {
	return !contains(c.ValuesWithDefaults, name) && !contains(c.ValuesWithSkip, name)
}
