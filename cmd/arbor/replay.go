package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/script"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <script.yaml>",
	Short: "Replay a command script and check its expectations",
	Long: `Runs every step of a YAML script against a fresh tree, prints the final tree and
exits non-zero if the script's expect block does not match.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		verbose, _ := cmd.Flags().GetBool("verbose")

		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		sc, err := script.Load(args[0])
		if err != nil {
			return err
		}

		mgr := newManager(cfg, logger, domain.LifecycleHooks{})
		report, replayErr := sc.Replay(cmd.Context(), mgr)
		if replayErr != nil && !errors.Is(replayErr, script.ErrExpectationFailed) {
			return replayErr
		}

		out := cmd.OutOrStdout()
		if jsonMode {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			return replayErr
		}

		if verbose {
			for i, res := range report.Results {
				status := "ok"
				if !res.Changed {
					status = "unchanged (" + string(res.Reason) + ")"
				}
				fmt.Fprintf(out, "%3d  %-10s %s\n", i+1, sc.Steps[i], status)
			}
			fmt.Fprintln(out)
		}

		fmt.Fprint(out, tui.PlainTree(report.Final.Root, report.Final.ActiveNodeID))
		fmt.Fprintf(out, "\n%s: %d of %d steps applied, active %s, next id %d\n",
			sc.Name, report.Applied(), len(sc.Steps), report.Final.ActiveNodeID, report.Final.NextID)

		if replayErr != nil {
			return replayErr
		}
		if sc.Expect != nil {
			fmt.Fprintln(out, "expectations met")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().Bool("json", false, "Print the replay report as JSON")
	replayCmd.Flags().BoolP("verbose", "v", false, "List every step with its outcome")
}
