// Package parse loads a directory into a SourceTree: discovery, reading,
// parsing and canonicalization, fanned out over a bounded worker group.
package parse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/astdistance/internal/canon"
	"github.com/phobologic/astdistance/internal/discover"
	"github.com/phobologic/astdistance/internal/lang"
	"github.com/phobologic/astdistance/internal/model"
)

// DefaultMaxFileSize is the size above which files are skipped.
const DefaultMaxFileSize = 1_000_000 // 1 MB

// ErrNotDirectory is returned when the root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Options configures Load.
type Options struct {
	// Language restricts loading to one language; empty loads every
	// supported language.
	Language    string
	Workers     int
	MaxFileSize int64
	Exclude     []string
	SkipTests   bool
	Markers     []string
	Logger      *zap.Logger
}

// Load discovers and canonicalizes every source file under root. Per-file
// failures become diagnostics; the returned error is reserved for problems
// with the root itself and internal failures. When ctx is cancelled, files
// not yet started are dropped and the tree is marked Truncated.
func Load(ctx context.Context, root string, opts Options) (*model.SourceTree, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}

	dopts := discover.Options{Exclude: opts.Exclude, SkipTests: opts.SkipTests}
	if opts.Language != "" {
		dopts.Languages = []string{opts.Language}
	}
	entries, err := discover.Files(root, dopts)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	log.Debug("discovered files", zap.String("root", root), zap.Int("count", len(entries)))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	l := &loader{
		root:    root,
		maxSize: maxSize,
		canon:   canon.Options{Markers: opts.Markers},
		parsers: make(map[string]*sync.Pool),
	}
	for _, e := range entries {
		if e.Err != nil {
			continue
		}
		if _, ok := l.parsers[e.Language]; ok {
			continue
		}
		language := lang.Languages[e.Language]
		l.parsers[e.Language] = &sync.Pool{New: func() any { return language.NewParser() }}
	}

	slots := make([]*model.SourceFile, len(entries))
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i := range entries {
		i := i
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			f, err := l.load(ctx, entries[i])
			if err != nil {
				return fmt.Errorf("%s: %w", entries[i].Path, err)
			}
			slots[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tree := &model.SourceTree{Root: root, Language: opts.Language}
	for _, f := range slots {
		if f == nil {
			tree.Truncated = true
			continue
		}
		tree.Files = append(tree.Files, f)
		if f.Diag != nil {
			tree.Diagnostics = append(tree.Diagnostics, *f.Diag)
			log.Warn("file excluded",
				zap.String("path", f.Diag.Path),
				zap.String("kind", string(f.Diag.Kind)),
				zap.String("reason", f.Diag.Message))
		}
	}
	if tree.Truncated {
		log.Warn("loading interrupted", zap.String("root", root), zap.Int("loaded", len(tree.Files)), zap.Int("discovered", len(entries)))
	}
	return tree, nil
}

type loader struct {
	root    string
	maxSize int64
	canon   canon.Options
	parsers map[string]*sync.Pool
}

// load returns nil without error when the context ends mid-parse.
func (l *loader) load(ctx context.Context, e discover.FileEntry) (*model.SourceFile, error) {
	f := &model.SourceFile{Path: e.Path, Language: e.Language, Size: e.Size}
	fail := func(kind model.DiagnosticKind, err error) (*model.SourceFile, error) {
		f.Diag = &model.Diagnostic{Path: e.Path, Kind: kind, Message: err.Error()}
		return f, nil
	}

	if e.Err != nil {
		return fail(model.DiagIO, e.Err)
	}
	if e.Size > l.maxSize {
		return fail(model.DiagSkipped, fmt.Errorf("exceeds %d bytes", l.maxSize))
	}
	source, err := os.ReadFile(filepath.Join(l.root, filepath.FromSlash(e.Path)))
	if err != nil {
		return fail(model.DiagIO, err)
	}
	f.Source = source
	f.Size = int64(len(source))
	if f.Size > l.maxSize {
		return fail(model.DiagSkipped, fmt.Errorf("exceeds %d bytes", l.maxSize))
	}

	language := lang.Languages[e.Language]
	pool := l.parsers[e.Language]
	parser := pool.Get().(*sitter.Parser)
	defer pool.Put(parser)

	root, release, err := language.Parse(ctx, parser, source)
	if err != nil {
		var serr *lang.SyntaxError
		if errors.As(err, &serr) {
			return fail(model.DiagSyntax, serr)
		}
		if ctx.Err() != nil {
			return nil, nil
		}
		return fail(model.DiagSyntax, err)
	}
	defer release()

	tree, err := canon.Canonicalize(root, language, l.canon)
	if err != nil {
		var gap *canon.MappingGapError
		if errors.As(err, &gap) {
			return fail(model.DiagMappingGap, gap)
		}
		return nil, err
	}
	f.Tree = tree
	return f, nil
}
