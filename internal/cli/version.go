package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set via -ldflags "-X ...cli.version=..." at release build time;
// it defaults to "dev" for local builds.
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the fluidizectl version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("fluidizectl version %s\n", version)
			return nil
		},
	}
}
