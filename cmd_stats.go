package main

import (
	"github.com/spf13/cobra"

	"github.com/phobologic/astdistance/internal/match"
	"github.com/phobologic/astdistance/internal/model"
	"github.com/phobologic/astdistance/internal/ranking"
	"github.com/phobologic/astdistance/internal/report"
	"github.com/phobologic/astdistance/internal/stats"
)

func (a *app) statsCmd() *cobra.Command {
	var (
		origin     originFlags
		targetLang string
		top        int
	)
	cmd := &cobra.Command{
		Use:   "stats <target-dir>",
		Short: "Summarize parse results and porting coverage",
		Long: `Stats counts parsed files, failures by kind, canonical nodes per language
and kind, and markers. With --origin it also matches the trees and reports
coverage with the average and maximum distance of the scored pairs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tl, err := resolveLang(targetLang)
			if err != nil {
				return err
			}
			if err := origin.resolve(); err != nil {
				return err
			}
			if err := a.setup(cmd); err != nil {
				return err
			}
			ctx, cancel := a.runContext(cmd)
			defer cancel()

			target, err := a.load(ctx, args[0], tl)
			if err != nil {
				return err
			}
			summary := stats.Compute(target)

			var (
				orig  *model.SourceTree
				worst []model.Match
			)
			if origin.dir != "" {
				orig, err = a.load(ctx, origin.dir, origin.resolved)
				if err != nil {
					return err
				}
				mc := a.cfg.MatchConfig(a.workerCount(), a.log)
				mc.ScorePathMatches = true
				rep, err := match.Match(ctx, orig, target, mc)
				if err != nil {
					return err
				}
				summary.AddPorting(orig, rep)
				worst = ranking.ByDivergence(ranking.SelectMatches(rep, top).Matched)
			}
			return a.write(report.NewStats(target, orig, summary, worst))
		},
	}
	origin.register(cmd)
	cmd.Flags().StringVar(&targetLang, "lang", "", "language of the target tree (default: all supported)")
	cmd.Flags().IntVar(&top, "top", 10, "number of most divergent pairs to list with --origin (0 = all)")
	return cmd
}
