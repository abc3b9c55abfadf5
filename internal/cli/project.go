package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fluidize-dev/fluidize-engine/pkg/project"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"proj", "projects"},
		Short:   "Manage Fluidize projects",
		Long:    `Create, inspect, and remove project directory trees.`,
	}

	cmd.AddCommand(newProjectCreateCmd())
	cmd.AddCommand(newProjectGetCmd())
	cmd.AddCommand(newProjectListCmd())
	cmd.AddCommand(newProjectDeleteCmd())
	cmd.AddCommand(newProjectUpdateCmd())

	return cmd
}

func projectStore() (*project.Store, error) {
	s, err := resolveStore()
	if err != nil {
		return nil, err
	}
	layout, err := resolveLayout()
	if err != nil {
		return nil, err
	}
	return project.NewStore(s, layout), nil
}

func newProjectCreateCmd() *cobra.Command {
	var (
		label       string
		description string
	)

	cmd := &cobra.Command{
		Use:   "create <id>",
		Short: "Create a project",
		Long: `Create a new project directory tree.

Examples:
  fluidizectl project create my-project
  fluidizectl project create my-project --label "My Project"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			ps, err := projectStore()
			if err != nil {
				return err
			}

			if label == "" {
				label = id
			}
			p := project.Project{
				ID:          id,
				Label:       label,
				Description: description,
				Status:      "active",
			}
			if err := ps.Upsert(context.Background(), p); err != nil {
				return fmt.Errorf("failed to create project: %w", err)
			}
			fmt.Printf("Created project %q\n", p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "Display label (defaults to the project id)")
	cmd.Flags().StringVar(&description, "description", "", "Project description")

	return cmd
}

func newProjectGetCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := projectStore()
			if err != nil {
				return err
			}
			p, err := ps.Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get project: %w", err)
			}
			return printResource(p, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")
	return cmd
}

func newProjectListCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := projectStore()
			if err != nil {
				return err
			}
			ids, err := ps.List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list projects: %w", err)
			}

			switch outputFormat {
			case "json":
				data, err := json.MarshalIndent(ids, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			case "yaml":
				data, err := yaml.Marshal(ids)
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			default:
				if len(ids) == 0 {
					fmt.Println("No projects found.")
					return nil
				}
				fmt.Printf("%-30s\n", "ID")
				for _, id := range ids {
					fmt.Printf("%-30s\n", id)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")
	return cmd
}

func newProjectDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := projectStore()
			if err != nil {
				return err
			}
			if err := ps.Delete(context.Background(), args[0]); err != nil {
				return fmt.Errorf("failed to delete project: %w", err)
			}
			fmt.Printf("Deleted project %q\n", args[0])
			return nil
		},
	}
	return cmd
}

func newProjectUpdateCmd() *cobra.Command {
	var (
		label       string
		description string
		status      string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a project's metadata",
		Long: `Update only the fields passed as flags, leaving the rest unchanged.

Examples:
  fluidizectl project update my-project --label "Renamed Project"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := projectStore()
			if err != nil {
				return err
			}
			p, err := ps.Update(context.Background(), args[0], project.Project{
				Label:       label,
				Description: description,
				Status:      status,
			})
			if err != nil {
				return fmt.Errorf("failed to update project: %w", err)
			}
			fmt.Printf("Updated project %q\n", p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "New display label")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&status, "status", "", "New status")

	return cmd
}

// printResource renders v as table (via fmt.Printf on a %+v), json, or yaml.
func printResource(v interface{}, outputFormat string) error {
	switch outputFormat {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	default:
		fmt.Printf("%+v\n", v)
	}
	return nil
}
