package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phobologic/astdistance/internal/lint"
	"github.com/phobologic/astdistance/internal/match"
	"github.com/phobologic/astdistance/internal/model"
	"github.com/phobologic/astdistance/internal/report"
)

// originFlags are shared by the modes that can compare against an origin
// tree but do not require one.
type originFlags struct {
	dir      string
	lang     string
	resolved string
}

func (o *originFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.dir, "origin", "", "origin tree to compare against")
	cmd.Flags().StringVar(&o.lang, "origin-lang", "", "language of the origin tree")
}

func (o *originFlags) resolve() error {
	switch {
	case o.dir == "" && o.lang != "":
		return errors.New("--origin-lang requires --origin")
	case o.dir != "" && o.lang == "":
		return errors.New("--origin requires --origin-lang")
	case o.dir == "":
		return nil
	}
	name, err := resolveLang(o.lang)
	if err != nil {
		return err
	}
	o.resolved = name
	return nil
}

func (a *app) lintCmd() *cobra.Command {
	var (
		origin     originFlags
		targetLang string
	)
	cmd := &cobra.Command{
		Use:   "lint <target-dir>",
		Short: "Flag target subtrees that diverge structurally",
		Long: `Lint compares each target function and type against a reference.

With --origin, the reference is the matched origin file: aligned functions
and types are scored, and origin declarations the port dropped are reported.
Without it, the reference is the most common shape of that declaration kind
in the target tree itself.

Exits 1 when any finding is reported.`,
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
			lc := a.cfg.LintConfig(a.log)

			var (
				res  lint.Result
				orig *model.SourceTree
			)
			if origin.dir == "" {
				res, err = lint.Baseline(ctx, target, lc)
				if err != nil {
					return err
				}
			} else {
				orig, err = a.load(ctx, origin.dir, origin.resolved)
				if err != nil {
					return err
				}
				rep, err := match.Match(ctx, orig, target, a.cfg.MatchConfig(a.workerCount(), a.log))
				if err != nil {
					return err
				}
				res, err = lint.Counterpart(ctx, orig, target, rep, lc)
				if err != nil {
					return err
				}
			}
			a.log.Debug("lint done", zap.Int("findings", len(res.Findings)), zap.Bool("truncated", res.Truncated))

			if err := a.write(report.NewLint(target, orig, res.Findings, res.Truncated)); err != nil {
				return err
			}
			if len(res.Findings) > 0 {
				return errFindings
			}
			return nil
		},
	}
	origin.register(cmd)
	cmd.Flags().StringVar(&targetLang, "lang", "", "language of the target tree (default: all supported)")
	return cmd
}
