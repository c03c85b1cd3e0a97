package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phobologic/astdistance/internal/match"
	"github.com/phobologic/astdistance/internal/model"
	"github.com/phobologic/astdistance/internal/ranking"
	"github.com/phobologic/astdistance/internal/report"
)

// pairArgs are the positional arguments of deep and missing.
type pairArgs struct {
	originDir, originLang string
	targetDir, targetLang string
}

func parsePairArgs(args []string) (pairArgs, error) {
	p := pairArgs{originDir: args[0], targetDir: args[2]}
	var err error
	if p.originLang, err = resolveLang(args[1]); err != nil {
		return p, err
	}
	if p.targetLang, err = resolveLang(args[3]); err != nil {
		return p, err
	}
	return p, nil
}

// matchTrees loads both trees and matches them.
func (a *app) matchTrees(ctx context.Context, p pairArgs, scoreAll bool) (origin, target *model.SourceTree, rep *model.MatchingReport, err error) {
	origin, err = a.load(ctx, p.originDir, p.originLang)
	if err != nil {
		return nil, nil, nil, err
	}
	target, err = a.load(ctx, p.targetDir, p.targetLang)
	if err != nil {
		return nil, nil, nil, err
	}
	mc := a.cfg.MatchConfig(a.workerCount(), a.log)
	mc.ScorePathMatches = scoreAll
	rep, err = match.Match(ctx, origin, target, mc)
	if err != nil {
		return nil, nil, nil, err
	}
	return origin, target, rep, nil
}

func (a *app) deepCmd() *cobra.Command {
	var (
		top    int
		filter string
	)
	cmd := &cobra.Command{
		Use:   "deep <origin-dir> <origin-lang> <target-dir> <target-lang>",
		Short: "Pair origin and target files and show their distances",
		Long: `Deep matches every origin file with its port: first by port-lint
source headers, then by normalized path, then by structural similarity
within the same top-level directory. Every pair is scored; unmatched origin
files and unexplained target files are listed separately.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePairArgs(args)
			if err != nil {
				return err
			}
			if err := a.setup(cmd); err != nil {
				return err
			}
			ctx, cancel := a.runContext(cmd)
			defer cancel()

			origin, target, rep, err := a.matchTrees(ctx, p, true)
			if err != nil {
				return err
			}
			rep = ranking.FilterByPath(rep, filter)
			rep = ranking.SelectMatches(rep, top)
			return a.write(report.NewDeep(origin, target, rep))
		},
	}
	cmd.Flags().IntVar(&top, "top", 0, "list only the N most divergent pairs (0 = all)")
	cmd.Flags().StringVar(&filter, "filter", "", "keep only files whose path contains this substring")
	return cmd
}

func (a *app) missingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "missing <origin-dir> <origin-lang> <target-dir> <target-lang>",
		Short: "List origin files with no port",
		Long: `Missing runs the same matching as deep and lists only the origin files
left without a counterpart. Exits 1 when any file is missing.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePairArgs(args)
			if err != nil {
				return err
			}
			if err := a.setup(cmd); err != nil {
				return err
			}
			ctx, cancel := a.runContext(cmd)
			defer cancel()

			origin, target, rep, err := a.matchTrees(ctx, p, false)
			if err != nil {
				return err
			}
			a.log.Debug("missing files", zap.Int("count", len(rep.UnmatchedOrigin)))
			if err := a.write(report.NewMissing(origin, target, rep)); err != nil {
				return err
			}
			if len(rep.UnmatchedOrigin) > 0 {
				return errFindings
			}
			return nil
		},
	}
}
