package main

import (
	"github.com/spf13/cobra"

	"github.com/phobologic/astdistance/internal/report"
	"github.com/phobologic/astdistance/internal/todo"
)

func (a *app) todosCmd() *cobra.Command {
	var targetLang string
	cmd := &cobra.Command{
		Use:   "todos <target-dir>",
		Short: "List unresolved-work markers",
		Long: `Todos lists every unresolved-work marker found in comments and marker
calls such as todo!() or TODO(), sorted by path and line. The tokens are
configured with the markers key.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tl, err := resolveLang(targetLang)
			if err != nil {
				return err
			}
			if err := a.setup(cmd); err != nil {
				return err
			}
			ctx, cancel := a.runContext(cmd)
			defer cancel()

			tree, err := a.load(ctx, args[0], tl)
			if err != nil {
				return err
			}
			markers := todo.Collect(tree)
			return a.write(report.NewTodos(tree, markers, todo.CountByToken(markers)))
		},
	}
	cmd.Flags().StringVar(&targetLang, "lang", "", "language of the target tree (default: all supported)")
	return cmd
}
