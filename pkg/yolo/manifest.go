package yolo

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest points a training routine at the image directories and the class mapping.
type Manifest struct {
	Path  string         `yaml:"path"`
	Train string         `yaml:"train"`
	Val   string         `yaml:"val"`
	Names map[int]string `yaml:"names"`
}

func NewManifest(datasetDir string, classes []string) Manifest {
	names := make(map[int]string, len(classes))
	for i, name := range classes {
		names[i] = name
	}

	return Manifest{
		Path:  datasetDir,
		Train: string(SplitTrain) + "/" + ImagesDirName,
		Val:   string(SplitVal) + "/" + ImagesDirName,
		Names: names,
	}
}

func (m Manifest) Write(path string) error {
	out, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	return &m, nil
}
