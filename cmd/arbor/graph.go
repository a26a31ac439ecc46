package main

import (
	"fmt"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/script"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [script.yaml]",
	Short: "Export the tree as a Mermaid diagram",
	Long: `Replays the given script (expectations are ignored) and outputs a Mermaid
diagram (graph TD) of the resulting tree. Without a script, the initial tree is drawn.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		mgr := newManager(cfg, logger, domain.LifecycleHooks{})

		if len(args) == 1 {
			sc, err := script.Load(args[0])
			if err != nil {
				return err
			}
			sc.Expect = nil
			if _, err := sc.Replay(cmd.Context(), mgr); err != nil {
				return err
			}
		}

		state, _, err := mgr.View(cmd.Context())
		if err != nil {
			return err
		}

		overlay := &graph.GraphOverlay{MaxDepth: mgr.MaxDepth()}
		if highlight, _ := cmd.Flags().GetBool("active"); highlight {
			overlay.ActiveNode = state.ActiveNodeID
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(state.Root, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().Bool("active", true, "Highlight the active node")
}
