// Package cli implements the fluidizectl CLI commands.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	// Import store backends to register them via init().
	_ "github.com/fluidize-dev/fluidize-engine/pkg/store/local"
)

var cfgFile string

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "fluidizectl",
	Short: "Run directory-tree simulation graphs in containers",
	Long: `fluidizectl manages Fluidize projects: directory trees holding a
DAG of simulation nodes and their runs.

Command Structure:
  fluidizectl <resource> <action> [arguments] [flags]

Examples:
  fluidizectl project create my-project
  fluidizectl graph add-node my-project --id sim-a --simulation-id heat-2d
  fluidizectl graph upsert-edge my-project --id e1 --source sim-a --target sim-b
  fluidizectl run start my-project
  fluidizectl run status my-project 1`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fluidize/config.yaml)")
	rootCmd.PersistentFlags().String("base-dir", "", "Project store root (default is $HOME/.fluidize/data)")
	rootCmd.PersistentFlags().String("store", "local", "Project store backend")

	_ = viper.BindPFlag("base_dir", rootCmd.PersistentFlags().Lookup("base-dir"))
	_ = viper.BindPFlag("store", rootCmd.PersistentFlags().Lookup("store"))
	viper.SetEnvPrefix("FLUIDIZE")
	viper.AutomaticEnv()

	rootCmd.AddCommand(newProjectCmd())
	rootCmd.AddCommand(newGraphCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home + "/.fluidize")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	_ = viper.ReadInConfig()
}
