// astdistance measures how faithfully one source tree has been ported into
// another by comparing canonical syntax trees.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/phobologic/astdistance/internal/config"
	"github.com/phobologic/astdistance/internal/lang"
	"github.com/phobologic/astdistance/internal/logging"
	"github.com/phobologic/astdistance/internal/model"
	"github.com/phobologic/astdistance/internal/parse"
	"github.com/phobologic/astdistance/internal/report"
)

var version = "dev"

// Process exit codes.
const (
	exitOK       = 0
	exitFindings = 1
	exitError    = 2
)

// errFindings marks a completed run whose result is reported through exit
// code 1: lint findings or missing files.
var errFindings = errors.New("findings reported")

func main() {
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if a.log != nil {
		_ = a.log.Sync()
	}
	code := exitCode(err)
	if code == exitError {
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return code
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errFindings):
		return exitFindings
	default:
		return exitError
	}
}

// app holds the global flags and the state built from them.
type app struct {
	stdout, stderr io.Writer

	configPath string
	format     string
	timeout    time.Duration
	workers    int
	verbose    bool

	cfg *config.Config
	log *zap.Logger
	out report.Format
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "astdistance",
		Short: "Measure structural fidelity of a source-to-source port",
		Long: `astdistance parses an origin tree and its port into a shared canonical
syntax tree and measures how far they drift apart.

Modes:
  lint     flag target subtrees that diverge from their counterpart or from
           the tree's own common shape
  todos    list unresolved-work markers
  stats    summarize parse results and porting coverage
  deep     pair every origin file with its port and show the distances
  missing  list origin files that have no port yet`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.log = logging.New(a.verbose, a.stderr)
			f, err := report.ParseFormat(a.format)
			if err != nil {
				return err
			}
			a.out = f
			if a.workers < 0 {
				return fmt.Errorf("--workers must be non-negative, got %d", a.workers)
			}
			return nil
		},
	}
	root.SetVersionTemplate("astdistance {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", config.DefaultFile, "configuration file")
	pf.StringVar(&a.format, "format", string(report.FormatTOON), "output format: toon or json")
	pf.DurationVar(&a.timeout, "timeout", 0, "abort analysis after this long and report partial results")
	pf.IntVar(&a.workers, "workers", 0, "parallel workers (default: config, then GOMAXPROCS)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.lintCmd(),
		a.todosCmd(),
		a.statsCmd(),
		a.deepCmd(),
		a.missingCmd(),
		a.initCmd(),
	)
	return root
}

// setup loads the configuration. It runs after language tags are resolved
// so that argument errors surface before any file is read.
func (a *app) setup(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		if _, err := os.Stat(a.configPath); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log.Debug("configuration loaded", zap.String("path", a.configPath), zap.Int("workers", a.workerCount()))
	return nil
}

func (a *app) workerCount() int {
	if a.workers > 0 {
		return a.workers
	}
	if a.cfg.Workers > 0 {
		return a.cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// runContext applies --timeout to the command context.
func (a *app) runContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	if a.timeout > 0 {
		return context.WithTimeout(cmd.Context(), a.timeout)
	}
	return context.WithCancel(cmd.Context())
}

func (a *app) load(ctx context.Context, root, language string) (*model.SourceTree, error) {
	return parse.Load(ctx, root, a.cfg.LoadOptions(language, a.workerCount(), a.log))
}

func (a *app) write(r report.Report) error {
	return report.Write(a.stdout, a.out, r)
}

// resolveLang maps a language tag or alias to its registered name. An empty
// tag means every supported language.
func resolveLang(tag string) (string, error) {
	if tag == "" {
		return "", nil
	}
	l, err := lang.Lookup(tag)
	if err != nil {
		return "", err
	}
	return l.Name, nil
}
