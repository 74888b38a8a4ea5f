// Package script replays editing sessions described in YAML.
//
// A script is a list of steps, either at the top level or under "steps":
//
//	version: "1"
//	steps:
//	  - action: add_frame
//	    frame: current
//	  - action: stroke
//	    color: "#000000"
//	    size: 4
//	    points: [[10, 10], [120, 80]]
//
// Frame and layer references are "current", a 1-based position or an id.
package script

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrBadReference  = errors.New("bad reference")
)

type Script struct {
	Version string `yaml:"version,omitempty"`
	Steps   []Step `yaml:"steps"`
}

// Step is one editor operation. Only the fields its action reads are used.
type Step struct {
	Action string `yaml:"action"`

	Frame  string `yaml:"frame,omitempty"`
	Layer  string `yaml:"layer,omitempty"`
	Target string `yaml:"target,omitempty"`
	Name   string `yaml:"name,omitempty"`

	Tool    string `yaml:"tool,omitempty"`
	Color   string `yaml:"color,omitempty"`
	Size    int    `yaml:"size,omitempty"`
	FPS     int    `yaml:"fps,omitempty"`
	Count   int    `yaml:"count,omitempty"`
	Visible *bool  `yaml:"visible,omitempty"`
	Enabled *bool  `yaml:"enabled,omitempty"`

	Points [][2]float64 `yaml:"points,omitempty"`
}

// Parse accepts either a bare list of steps or a Script document.
func Parse(data []byte) (*Script, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return &Script{}, nil
	}

	var s Script
	if node.Content[0].Kind == yaml.SequenceNode {
		if err := node.Content[0].Decode(&s.Steps); err != nil {
			return nil, err
		}
		return &s, nil
	}
	if err := node.Content[0].Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ReadScript reads a script from a YAML file.
func ReadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}
