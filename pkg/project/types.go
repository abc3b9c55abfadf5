// Package project implements the project store and the graph processor:
// project-scoped mutations over a pkg/graph.Graph with side-effecting
// workspace materialization.
package project

import "time"

// Project is a scientific-computing project directory tree.
type Project struct {
	ID              string `json:"id" yaml:"id"`
	Label           string `json:"label" yaml:"label"`
	Description     string `json:"description" yaml:"description"`
	Location        string `json:"location" yaml:"location"`
	Status          string `json:"status" yaml:"status"`
	MetadataVersion string `json:"metadata_version" yaml:"metadata_version"`
}

// metadataFile is the on-disk shape of metadata.yaml.
type metadataFile struct {
	Project Project `yaml:"project"`
}

// parametersFile is the on-disk shape of a node or project parameters.json.
type parametersFile struct {
	Metadata   map[string]interface{} `json:"metadata"`
	Parameters map[string]interface{} `json:"parameters"`
}

// propertiesFile is the on-disk shape of a node's properties.yaml.
type propertiesFile struct {
	Properties map[string]interface{} `yaml:"properties"`
}

func emptyParametersFile() parametersFile {
	return parametersFile{
		Metadata:   map[string]interface{}{},
		Parameters: map[string]interface{}{},
	}
}

func emptyPropertiesFile() propertiesFile {
	return propertiesFile{Properties: map[string]interface{}{}}
}

// RunMetadata is the on-disk shape of a run's metadata.yaml.
type RunMetadata struct {
	Handle      string    `yaml:"handle"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Tags        []string  `yaml:"tags"`
	CreatedAt   time.Time `yaml:"created_at"`
	Status      string    `yaml:"status"`
}
