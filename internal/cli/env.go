package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/fluidize-dev/fluidize-engine/pkg/paths"
	"github.com/fluidize-dev/fluidize-engine/pkg/store"
)

// defaultBaseDir is $HOME/.fluidize/data, used when neither --base-dir nor
// the FLUIDIZE_BASE_DIR environment variable is set.
func defaultBaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".fluidize", "data"), nil
}

// resolveLayout builds a paths.Layout from the --base-dir flag / config /
// environment, falling back to defaultBaseDir.
func resolveLayout() (paths.Layout, error) {
	base := viper.GetString("base_dir")
	if base == "" {
		var err error
		base, err = defaultBaseDir()
		if err != nil {
			return paths.Layout{}, err
		}
	}
	return paths.New(base), nil
}

// resolveStore constructs the configured store.Store backend.
func resolveStore() (store.Store, error) {
	name := viper.GetString("store")
	if name == "" {
		name = "local"
	}
	s, err := store.New(name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create store backend %q: %w", name, err)
	}
	return s, nil
}
