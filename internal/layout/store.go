package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultProject is returned by Load when nothing has been saved yet.
func DefaultProject() *Project {
	return &Project{
		Name:         "untitled",
		BaseFilename: "slide",
		Slides:       []Slide{*NewSlide("slide", "")},
		KenBurns:     DefaultKenBurns(),
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Save writes a project as JSON, or YAML when the path ends in .yaml/.yml.
func Save(project *Project, path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(project)
	} else {
		data, err = json.MarshalIndent(project, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Load reads a project saved by Save. A missing file yields DefaultProject.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultProject(), nil
		}
		return nil, err
	}

	var project Project
	if isYAML(path) {
		err = yaml.Unmarshal(data, &project)
	} else {
		err = json.Unmarshal(data, &project)
	}
	if err != nil {
		return nil, fmt.Errorf("parse project %s: %w", path, err)
	}

	if project.BaseFilename == "" {
		project.BaseFilename = "slide"
	}
	if project.KenBurns == (KenBurnsConfig{}) {
		project.KenBurns = DefaultKenBurns()
	}
	for i := range project.Slides {
		project.Slides[i].Normalize()
	}
	return &project, nil
}
