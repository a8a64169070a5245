// Package render prints command results for people (user) or for programs (json, yaml).
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"
)

// Renderer writes a command result to w.
type Renderer interface {
	Render(w io.Writer, v any) error
}

// RendererFunc adapts a function to the [Renderer] interface.
type RendererFunc func(w io.Writer, v any) error

func (f RendererFunc) Render(w io.Writer, v any) error { return f(w, v) }

var renderers = map[string]Renderer{
	"user": RendererFunc(User),
	"json": RendererFunc(JSON),
	"yaml": RendererFunc(YAML),
}

// Names returns the names accepted by [New], sorted.
func Names() []string {
	names := make([]string, 0, len(renderers))
	for name := range renderers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New returns the renderer registered under name.
func New(name string) (Renderer, error) {
	r, ok := renderers[name]
	if !ok {
		return nil, fmt.Errorf("unknown renderer %q", name)
	}
	return r, nil
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("render json: %w", err)
	}
	return nil
}

// YAML writes v as a YAML document.
func YAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("render yaml: %w", err)
	}
	return enc.Close()
}
