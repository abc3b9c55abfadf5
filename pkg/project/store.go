package project

import (
	"context"
	"path/filepath"

	fluidizeerrors "github.com/fluidize-dev/fluidize-engine/pkg/errors"
	"github.com/fluidize-dev/fluidize-engine/pkg/graph"
	"github.com/fluidize-dev/fluidize-engine/pkg/paths"
	"github.com/fluidize-dev/fluidize-engine/pkg/store"
)

// Store is the ProjectStore from spec §6: upsert, get, list, delete, plus
// the supplemented partial-update operation used by the CLI's `project
// update` command.
type Store struct {
	store  store.Store
	layout paths.Layout
}

// NewStore constructs a project Store rooted at layout.
func NewStore(s store.Store, layout paths.Layout) *Store {
	return &Store{store: s, layout: layout}
}

// Upsert creates or replaces the project's metadata.yaml. Idempotent: a
// second upsert with the same id overwrites rather than erroring. A
// freshly created project gets an empty graph.json and parameters.json.
func (s *Store) Upsert(ctx context.Context, p Project) error {
	projectPath := s.layout.ProjectPath(p.ID)
	if err := s.store.CreateDirectory(ctx, projectPath); err != nil {
		return err
	}

	metadataPath := filepath.Join(projectPath, "metadata.yaml")
	if err := s.store.WriteYAML(ctx, metadataPath, metadataFile{Project: p}); err != nil {
		return err
	}

	paramsPath := filepath.Join(projectPath, "parameters.json")
	exists, err := s.store.Exists(ctx, paramsPath)
	if err != nil {
		return err
	}
	if !exists {
		if err := s.store.WriteJSON(ctx, paramsPath, emptyParametersFile()); err != nil {
			return err
		}
	}

	graphPath := s.layout.GraphPath(p.ID)
	exists, err = s.store.Exists(ctx, graphPath)
	if err != nil {
		return err
	}
	if !exists {
		if err := graph.New().SaveToFile(ctx, s.store, graphPath); err != nil {
			return err
		}
	}

	return nil
}

// Get loads a project's metadata.yaml. Returns errors.NotFound if the
// project directory or its metadata file is absent.
func (s *Store) Get(ctx context.Context, id string) (*Project, error) {
	metadataPath := filepath.Join(s.layout.ProjectPath(id), "metadata.yaml")

	var mf metadataFile
	if err := s.store.ReadYAML(ctx, metadataPath, &mf); err != nil {
		if fluidizeerrors.Is(err, fluidizeerrors.CodeNotFound) {
			return nil, fluidizeerrors.NotFound("project", id)
		}
		return nil, err
	}
	return &mf.Project, nil
}

// List returns every project id known to the store.
func (s *Store) List(ctx context.Context) ([]string, error) {
	return s.store.ListDirectories(ctx, s.layout.ProjectsPath())
}

// Delete removes a project's entire directory tree. Idempotent.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.store.RemoveDirectory(ctx, s.layout.ProjectPath(id))
}

// Update applies a partial update to a project's metadata: only non-empty
// fields in patch overwrite the stored value. The id itself is immutable.
func (s *Store) Update(ctx context.Context, id string, patch Project) (*Project, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Label != "" {
		current.Label = patch.Label
	}
	if patch.Description != "" {
		current.Description = patch.Description
	}
	if patch.Location != "" {
		current.Location = patch.Location
	}
	if patch.Status != "" {
		current.Status = patch.Status
	}
	if patch.MetadataVersion != "" {
		current.MetadataVersion = patch.MetadataVersion
	}

	if err := s.Upsert(ctx, *current); err != nil {
		return nil, err
	}
	return current, nil
}
