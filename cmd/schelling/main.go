package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := newRootCmd()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "schelling",
		Short: "Schelling segregation model on a toroidal grid",
		Long: `schelling runs the Schelling segregation model: two agent types on a
wrapping N×N grid, where agents with too few same-type neighbors move to
empty cells until nobody moves or an iteration cap is reached.

It sweeps move strategies and update orders, reports how many iterations
each run needed, and renders the final boards as PNG images.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "YAML sweep configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "log verbosity: info, debug or trace")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON lines")

	rootCmd.AddCommand(
		newSweepCmd(),
		newThresholdsCmd(),
		newRunCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "schelling version %s\n", version)
			}
		},
	}
}
