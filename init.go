package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phobologic/astdistance/internal/config"
)

const configHeader = `# astdistance configuration.
#
# workers         parallel workers; 0 uses GOMAXPROCS
# max_file_size   files larger than this many bytes are skipped
# skip_tests      leave test files out of both trees
# exclude         doublestar globs matched against slash paths
# markers         comment tokens reported by todos
# distance        edit costs; max_nodes collapses larger trees into summaries
# match           threshold accepts structural pairs scoring below it;
#                 group_depth leading directories must agree
# lint.rules      per-rule threshold, severity (error, warning, info), enabled
`

// errConfigExists is returned when init would overwrite a file without --force.
var errConfigExists = errors.New("config file already exists (use --force to overwrite)")

func (a *app) initCmd() *cobra.Command {
	var dryRun, force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default configuration file",
		Long: `Init writes the built-in defaults, with every lint rule spelled out, to
path (default ` + config.DefaultFile + `). An existing file is left alone
unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFile
			if len(args) > 0 {
				path = args[0]
			}
			return a.runInit(path, dryRun, force)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the file instead of writing it")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func (a *app) runInit(path string, dryRun, force bool) error {
	content, err := generateConfig()
	if err != nil {
		return err
	}
	if dryRun {
		_, _ = fmt.Fprint(a.stdout, content)
		return nil
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, errConfigExists)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	_, _ = fmt.Fprintf(a.stderr, "wrote default configuration to %s\n", path)
	return nil
}

// generateConfig returns the commented default configuration.
func generateConfig() (string, error) {
	data, err := config.Default().Marshal()
	if err != nil {
		return "", err
	}
	return configHeader + "\n" + string(data), nil
}
