package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive session",
	Long: `Starts a REPL over a fresh tree. Type 'help' for the command list.

When stdin and stdout are terminals, output is rendered as styled Markdown. Otherwise
plain text is written, which makes 'arbor run' usable in pipes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		headless, _ := cmd.Flags().GetBool("headless")
		jsonMode, _ := cmd.Flags().GetBool("json")

		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		mgr := newManager(cfg, logger, domain.LifecycleHooks{})

		interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		opts := []runner.Option{
			runner.WithLogger(logger),
			runner.WithHeadless(headless || jsonMode || !interactive),
			runner.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()),
		}

		switch {
		case jsonMode:
			opts = append(opts, runner.WithInputHandler(runner.NewJSONHandler(cmd.InOrStdin(), cmd.OutOrStdout())))
		case interactive && !headless:
			tui.PrintBanner(cmd.OutOrStdout())
			opts = append(opts, runner.WithRenderer(tui.NewRenderer()))
		default:
			opts = append(opts, runner.WithInputHandler(
				runner.NewTextHandler(cmd.InOrStdin(), cmd.OutOrStdout(), runner.WithPrompt("")),
			))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runner.NewRunner(mgr, opts...).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("headless", false, "Run in headless mode (no banner, no prompt, plain output)")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (one JSON document per command)")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
