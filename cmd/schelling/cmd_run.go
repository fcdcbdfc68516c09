package main

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"schelling-ca/internal/logging"
	"schelling-ca/internal/render"
	"schelling-ca/internal/sims/schelling"
	pcore "schelling-ca/pkg/core"
)

func newRunCmd() *cobra.Command {
	def := schelling.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single simulation and report its outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			cfg := schelling.DefaultConfig()
			cfg.Size, _ = flags.GetInt("size")
			cfg.EmptyRatio, _ = flags.GetFloat64("empty-ratio")
			cfg.Threshold, _ = flags.GetInt("h")
			cfg.MaxIterations, _ = flags.GetInt("max-iter")
			cfg.Seed, _ = flags.GetInt64("seed")
			move, _ := flags.GetString("move")
			order, _ := flags.GetString("order")
			cfg.Move = schelling.MoveStrategy(move)
			cfg.Order = schelling.UpdateOrder(order)

			level, _ := flags.GetString("log-level")
			logger := logging.NewLogger(level, cmd.ErrOrStderr())

			model, err := schelling.New(cfg, pcore.NewSource(cfg.Seed))
			if err != nil {
				return err
			}
			initial := model.Grid().Counts()
			initialUnhappy := len(model.Grid().Unhappy(cfg.Threshold))
			model.SetTickHook(func(tick int, stats schelling.StepStats) {
				logger.Log(cmd.Context(), logging.LevelTrace, "tick",
					"n", tick, "unhappy", stats.Unhappy, "moved", stats.Moved, "stranded", stats.Stranded)
			})

			out, err := model.Run(cmd.Context())
			if err != nil {
				return err
			}
			cfg = model.Config()
			final := model.Grid().Counts()
			finalUnhappy := len(model.Grid().Unhappy(cfg.Threshold))

			image := ""
			if path, _ := flags.GetString("out"); path != "" {
				scale, _ := flags.GetInt("scale")
				img, err := render.Snapshot(model.Cells(), cfg.Size, cfg.Size, render.Options{
					Scale:   scale,
					Palette: schelling.Palette(),
					Legend:  schelling.Legend,
				})
				if err != nil {
					return err
				}
				if err := render.WritePNG(path, img); err != nil {
					return err
				}
				image = path
			}

			jsonOut, _ := flags.GetBool("json")
			w := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(w).Encode(map[string]any{
					"config":          cfg,
					"iterations":      out.Iterations,
					"state":           out.State.String(),
					"initial":         initial,
					"final":           final,
					"initial_unhappy": initialUnhappy,
					"final_unhappy":   finalUnhappy,
					"image":           image,
				})
			}
			fmt.Fprintf(w, "%s seed=%d\n", cfg, cfg.Seed)
			fmt.Fprintf(w, "population: %s red, %s blue, %s empty\n",
				humanize.Comma(int64(initial.Red)), humanize.Comma(int64(initial.Blue)), humanize.Comma(int64(initial.Empty)))
			fmt.Fprintf(w, "unhappy agents: %s -> %s\n",
				humanize.Comma(int64(initialUnhappy)), humanize.Comma(int64(finalUnhappy)))
			fmt.Fprintf(w, "%s after %s iterations\n", out.State, humanize.Comma(int64(out.Iterations)))
			if image != "" {
				fmt.Fprintf(w, "snapshot: %s\n", image)
			}
			return nil
		},
	}
	cmd.Flags().Int("size", def.Size, "grid side length N")
	cmd.Flags().Float64("empty-ratio", def.EmptyRatio, "fraction of empty cells")
	cmd.Flags().Int("h", def.Threshold, "happiness threshold (0-8)")
	cmd.Flags().String("move", string(def.Move), "move strategy: random, horizontal, nearest")
	cmd.Flags().String("order", string(def.Order), "update order: sequential, random")
	cmd.Flags().Int("max-iter", def.MaxIterations, "iteration cap")
	cmd.Flags().Int64("seed", def.Seed, "random seed")
	cmd.Flags().String("out", "", "write the final board to this PNG file")
	cmd.Flags().Int("scale", 4, "pixels per cell in the snapshot")
	return cmd
}
