package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	fluidizegraph "github.com/fluidize-dev/fluidize-engine/pkg/graph"
	"github.com/fluidize-dev/fluidize-engine/pkg/graph/visual"
	"github.com/fluidize-dev/fluidize-engine/pkg/project"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Inspect and edit a project's simulation graph",
		Long:  `Add, move, and remove nodes and edges in a project's DAG.`,
	}

	cmd.AddCommand(newGraphGetCmd())
	cmd.AddCommand(newGraphAddNodeCmd())
	cmd.AddCommand(newGraphUpdatePositionCmd())
	cmd.AddCommand(newGraphDeleteNodeCmd())
	cmd.AddCommand(newGraphUpsertEdgeCmd())
	cmd.AddCommand(newGraphDeleteEdgeCmd())

	return cmd
}

func graphProcessor(projectID string) (*project.GraphProcessor, error) {
	s, err := resolveStore()
	if err != nil {
		return nil, err
	}
	layout, err := resolveLayout()
	if err != nil {
		return nil, err
	}
	return project.NewGraphProcessor(projectID, s, layout, nil), nil
}

func newGraphGetCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "get <project-id>",
		Short: "Print a project's graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gp, err := graphProcessor(args[0])
			if err != nil {
				return err
			}
			g := gp.GetGraph(context.Background())

			if outputFormat == "mermaid" {
				diagram, err := visual.RenderMermaid(g, visual.Options{Title: args[0]})
				if err != nil {
					return fmt.Errorf("failed to render diagram: %w", err)
				}
				fmt.Print(diagram)
				return nil
			}

			// Graph keeps its maps out of JSON/YAML, so print them as sorted lists.
			out := struct {
				Nodes []*fluidizegraph.Node `json:"nodes" yaml:"nodes"`
				Edges []*fluidizegraph.Edge `json:"edges" yaml:"edges"`
			}{Nodes: []*fluidizegraph.Node{}, Edges: []*fluidizegraph.Edge{}}
			for _, n := range g.Nodes {
				out.Nodes = append(out.Nodes, n)
			}
			for _, e := range g.Edges {
				out.Edges = append(out.Edges, e)
			}
			sort.Slice(out.Nodes, func(i, j int) bool { return out.Nodes[i].ID < out.Nodes[j].ID })
			sort.Slice(out.Edges, func(i, j int) bool { return out.Edges[i].ID < out.Edges[j].ID })
			return printResource(out, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "json", "Output format: json, yaml, mermaid")
	return cmd
}

func newGraphAddNodeCmd() *cobra.Command {
	var (
		id           string
		label        string
		simulationID string
		x, y         float64
	)

	cmd := &cobra.Command{
		Use:   "add-node <project-id>",
		Short: "Insert a node into a project's graph",
		Long: `Insert a node, cloning its simulation template workspace if
--simulation-id is set, or initializing an empty workspace otherwise.

Examples:
  fluidizectl graph add-node my-project --id sim-a --simulation-id heat-2d
  fluidizectl graph add-node my-project --id sim-b --label "Post-process"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return fmt.Errorf("--id is required")
			}
			gp, err := graphProcessor(args[0])
			if err != nil {
				return err
			}
			node := &fluidizegraph.Node{
				ID:       id,
				Position: fluidizegraph.Position{X: x, Y: y},
				Data:     fluidizegraph.NodeData{Label: label, SimulationID: simulationID},
			}
			if err := gp.InsertNode(context.Background(), node); err != nil {
				return fmt.Errorf("failed to insert node: %w", err)
			}
			fmt.Printf("Inserted node %q\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Node id (required)")
	cmd.Flags().StringVar(&label, "label", "", "Display label")
	cmd.Flags().StringVar(&simulationID, "simulation-id", "", "Simulation template id to clone")
	cmd.Flags().Float64Var(&x, "x", 0, "Canvas X position")
	cmd.Flags().Float64Var(&y, "y", 0, "Canvas Y position")

	return cmd
}

func newGraphUpdatePositionCmd() *cobra.Command {
	var (
		id   string
		x, y float64
	)

	cmd := &cobra.Command{
		Use:   "update-position <project-id>",
		Short: "Move a node on the canvas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return fmt.Errorf("--id is required")
			}
			gp, err := graphProcessor(args[0])
			if err != nil {
				return err
			}
			g := gp.GetGraph(context.Background())
			node := g.GetNode(id)
			if node == nil {
				return fmt.Errorf("node %q not found", id)
			}
			node.Position = fluidizegraph.Position{X: x, Y: y}
			if err := gp.UpdateNodePosition(context.Background(), node); err != nil {
				return fmt.Errorf("failed to update node position: %w", err)
			}
			fmt.Printf("Moved node %q to (%g, %g)\n", id, x, y)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Node id (required)")
	cmd.Flags().Float64Var(&x, "x", 0, "New canvas X position")
	cmd.Flags().Float64Var(&y, "y", 0, "New canvas Y position")

	return cmd
}

func newGraphDeleteNodeCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "delete-node <project-id>",
		Short: "Remove a node and its incident edges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return fmt.Errorf("--id is required")
			}
			gp, err := graphProcessor(args[0])
			if err != nil {
				return err
			}
			if err := gp.DeleteNode(context.Background(), id); err != nil {
				return fmt.Errorf("failed to delete node: %w", err)
			}
			fmt.Printf("Deleted node %q\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Node id (required)")
	return cmd
}

func newGraphUpsertEdgeCmd() *cobra.Command {
	var id, source, target, edgeType string

	cmd := &cobra.Command{
		Use:   "upsert-edge <project-id>",
		Short: "Add or replace an edge between two existing nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" || source == "" || target == "" {
				return fmt.Errorf("--id, --source and --target are required")
			}
			gp, err := graphProcessor(args[0])
			if err != nil {
				return err
			}
			edge := &fluidizegraph.Edge{ID: id, Source: source, Target: target, Type: edgeType}
			if err := gp.UpsertEdge(context.Background(), edge); err != nil {
				return fmt.Errorf("failed to upsert edge: %w", err)
			}
			fmt.Printf("Upserted edge %q (%s -> %s)\n", id, source, target)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Edge id (required)")
	cmd.Flags().StringVar(&source, "source", "", "Source node id (required)")
	cmd.Flags().StringVar(&target, "target", "", "Target node id (required)")
	cmd.Flags().StringVar(&edgeType, "type", "", "Edge type")

	return cmd
}

func newGraphDeleteEdgeCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "delete-edge <project-id>",
		Short: "Remove an edge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return fmt.Errorf("--id is required")
			}
			gp, err := graphProcessor(args[0])
			if err != nil {
				return err
			}
			if err := gp.DeleteEdge(context.Background(), id); err != nil {
				return fmt.Errorf("failed to delete edge: %w", err)
			}
			fmt.Printf("Deleted edge %q\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Edge id (required)")
	return cmd
}

// parsePositiveInt parses a positive run number argument, used by the run
// subcommands that take <run-number> positionally.
func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid run number %q", s)
	}
	return n, nil
}
