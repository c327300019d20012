// Package manifest records what an export run produced as a YAML file next
// to the artifacts.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest describes one export run.
type Manifest struct {
	Project   string    `yaml:"project"`
	Mode      string    `yaml:"mode"`
	Version   string    `yaml:"version,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
	Width     int       `yaml:"width"`
	Height    int       `yaml:"height"`
	Items     []Item    `yaml:"items"`
}

// Item is one exported artifact. Error is set when the item failed.
type Item struct {
	Index int    `yaml:"index"`
	Slide string `yaml:"slide,omitempty"`
	Name  string `yaml:"name"`
	Bytes int    `yaml:"bytes"`
	Error string `yaml:"error,omitempty"`
}

func (m *Manifest) Add(index int, slide, name string, size int, err error) {
	it := Item{Index: index, Slide: slide, Name: name, Bytes: size}
	if err != nil {
		it.Error = err.Error()
		it.Bytes = 0
	}
	m.Items = append(m.Items, it)
}

// Failed counts items with an error.
func (m *Manifest) Failed() int {
	n := 0
	for _, it := range m.Items {
		if it.Error != "" {
			n++
		}
	}
	return n
}

// Path returns a timestamped manifest filename inside dir.
func Path(dir string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("export_%s.yaml", t.Format("2006-01-02_15-04-05")))
}

func Write(m *Manifest, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}
