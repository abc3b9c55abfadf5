package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	fluidizeexec "github.com/fluidize-dev/fluidize-engine/pkg/exec"
	"github.com/fluidize-dev/fluidize-engine/pkg/logsink"
	_ "github.com/fluidize-dev/fluidize-engine/pkg/logsink/wsbroadcast"
	"github.com/fluidize-dev/fluidize-engine/pkg/paths"
	"github.com/fluidize-dev/fluidize-engine/pkg/project"
	"github.com/fluidize-dev/fluidize-engine/pkg/run"
	"github.com/fluidize-dev/fluidize-engine/pkg/store"
)

// sharedSupervisor backs every `fluidizectl run` invocation made by this
// process. It only matters within a single invocation: a run launched by
// `run start` proceeds on a goroutine owned by this process and is lost if
// the process exits before it finishes, unless --wait is passed.
var sharedSupervisor = run.NewSupervisor()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start and inspect project runs",
		Long:  `Execute a project's graph as a sequence of containerized nodes.`,
	}

	cmd.AddCommand(newRunStartCmd())
	cmd.AddCommand(newRunStatusCmd())
	cmd.AddCommand(newRunListCmd())
	cmd.AddCommand(newRunCancelCmd())

	return cmd
}

func newOrchestrator(s store.Store, layout paths.Layout) (*run.Orchestrator, error) {
	sink, err := logsink.New("stdout", nil)
	if err != nil {
		return nil, err
	}
	dockerRunner, err := fluidizeexec.NewDockerRunner()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to docker: %w", err)
	}
	strategy := fluidizeexec.NewLocalContainerStrategy(dockerRunner, s, layout)
	return run.NewOrchestrator(s, layout, strategy, sink, sharedSupervisor, run.FirstByID), nil
}

func newRunStartCmd() *cobra.Command {
	var (
		name        string
		description string
		tags        []string
		wait        bool
	)

	cmd := &cobra.Command{
		Use:   "start <project-id>",
		Short: "Start a run of a project's graph",
		Long: `Compute the topological order of a project's graph and execute one
container per node, wiring each node's predecessor output into its input.

Examples:
  fluidizectl run start my-project
  fluidizectl run start my-project --wait`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID := args[0]
			s, err := resolveStore()
			if err != nil {
				return err
			}
			layout, err := resolveLayout()
			if err != nil {
				return err
			}

			orchestrator, err := newOrchestrator(s, layout)
			if err != nil {
				return err
			}
			processor := project.NewGraphProcessor(projectID, s, layout, nil)

			ctx := context.Background()
			result, err := orchestrator.RunFlow(ctx, processor, run.StartPayload{
				Name:        name,
				Description: description,
				Tags:        tags,
			})
			if err != nil {
				return fmt.Errorf("failed to start run: %w", err)
			}
			fmt.Printf("Started run %d, handle %s (%s)\n", result.RunNumber, result.RunHandle, result.FlowStatus)

			if !wait {
				return nil
			}

			runs := run.NewRuns(s, layout, sharedSupervisor)
			for {
				snapshot, err := runs.GetStatus(ctx, projectID, result.RunNumber)
				if err != nil {
					return err
				}
				if snapshot.Status == "completed" || snapshot.Status == "failed" || snapshot.Status == "canceled" {
					fmt.Printf("Run %d finished: %s\n", result.RunNumber, snapshot.Status)
					if snapshot.Status != "completed" {
						return fmt.Errorf("run %d ended with status %q", result.RunNumber, snapshot.Status)
					}
					return nil
				}
				time.Sleep(500 * time.Millisecond)
			}
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Run name")
	cmd.Flags().StringVar(&description, "description", "", "Run description")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Run tag (repeatable)")
	cmd.Flags().BoolVar(&wait, "wait", false, "Block until the run finishes")

	return cmd
}

func newRunStatusCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "status <project-id> <run-number>",
		Short: "Show a run's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			runNumber, err := parsePositiveInt(args[1])
			if err != nil {
				return err
			}
			s, err := resolveStore()
			if err != nil {
				return err
			}
			layout, err := resolveLayout()
			if err != nil {
				return err
			}
			runs := run.NewRuns(s, layout, sharedSupervisor)
			snapshot, err := runs.GetStatus(context.Background(), args[0], runNumber)
			if err != nil {
				return fmt.Errorf("failed to get run status: %w", err)
			}
			return printResource(snapshot, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")
	return cmd
}

func newRunListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list <project-id>",
		Aliases: []string{"ls"},
		Short:   "List a project's runs",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveStore()
			if err != nil {
				return err
			}
			layout, err := resolveLayout()
			if err != nil {
				return err
			}
			names, err := s.ListDirectories(context.Background(), layout.RunsPath(args[0]))
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}
			sort.Strings(names)
			if len(names) == 0 {
				fmt.Println("No runs found.")
				return nil
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
	return cmd
}

func newRunCancelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel <project-id> <run-number>",
		Short: "Request cancellation of an in-flight run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			runNumber, err := parsePositiveInt(args[1])
			if err != nil {
				return err
			}
			if !sharedSupervisor.Cancel(args[0], runNumber) {
				return fmt.Errorf("run %d is not active in this process", runNumber)
			}
			fmt.Printf("Requested cancellation of run %d\n", runNumber)
			return nil
		},
	}
	return cmd
}
