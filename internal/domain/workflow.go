package domain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"probe.dev/pkg/probe/internal/adapter"
	"probe.dev/pkg/probe/internal/controller"
	m "probe.dev/pkg/probe/internal/model"
	"probe.dev/pkg/probe/pkg/sourcemap"
)

// DefaultInclude matches Solidity test files anywhere below a root.
var DefaultInclude = []string{"**/*" + m.TestFileMarker}

// TargetsArgs holds the arguments for listing debug targets.
type TargetsArgs struct {
	Paths   []m.Path
	Include []string
	Exclude []string
	Threads int
	Format  controller.OutputFormat
}

// SourceMapArgs holds the arguments for decoding a solc source map. Exactly
// one of Raw and MapFile is expected; Source is optional.
type SourceMapArgs struct {
	Raw     string
	MapFile m.Path
	Source  m.Path
	Format  controller.OutputFormat
}

// Workflow runs the command-line use cases.
type Workflow interface {
	Targets(ctx context.Context, args TargetsArgs) error
	CollectTargets(ctx context.Context, args TargetsArgs) ([]m.DebugTarget, error)
	SourceMap(ctx context.Context, args SourceMapArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	Selector
	ui controller.UI
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(fsAdapter adapter.SourceFSAdapter, selector Selector, ui controller.UI) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		Selector:        selector,
		ui:              ui,
	}
}

func (w *workflow) Targets(ctx context.Context, args TargetsArgs) error {
	targets, err := w.CollectTargets(ctx, args)
	if err != nil {
		return err
	}

	return w.ui.DisplayTargets(ctx, targets, controller.WithFormat(args.Format))
}

func (w *workflow) CollectTargets(ctx context.Context, args TargetsArgs) ([]m.DebugTarget, error) {
	files, err := w.findTestFiles(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("find test files: %w", err)
	}

	slog.Info("scanning test files", "count", len(files), "threads", args.Threads)

	results := make([][]m.DebugTarget, len(files))

	group, groupCtx := errgroup.WithContext(ctx)
	if args.Threads > 0 {
		group.SetLimit(args.Threads)
	}

	for i, file := range files {
		group.Go(func() error {
			targets, err := w.targetsForFile(groupCtx, file)
			if err != nil {
				return err
			}

			results[i] = targets

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	var targets []m.DebugTarget
	for _, fileTargets := range results {
		targets = append(targets, fileTargets...)
	}

	return targets, nil
}

func (w *workflow) targetsForFile(ctx context.Context, file m.File) ([]m.DebugTarget, error) {
	content, err := w.ReadFile(ctx, file.FullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file.ShortPath, err)
	}

	hash, err := w.HashFile(ctx, file.FullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", file.ShortPath, err)
	}

	file.Hash = hash

	functions, err := w.SelectDebugTargets(ctx, string(file.ShortPath), string(content))
	if err != nil {
		slog.Error("failed to select debug targets", "file", file.ShortPath, "error", err)
		return nil, err
	}

	targets := make([]m.DebugTarget, 0, len(functions))
	for _, fn := range functions {
		targets = append(targets, m.DebugTarget{Source: file, Function: fn})
	}

	return targets, nil
}

// findTestFiles expands the path arguments into a sorted, de-duplicated
// list of files. A trailing "/..." walks recursively; explicit files are
// taken as given.
func (w *workflow) findTestFiles(ctx context.Context, args TargetsArgs) ([]m.File, error) {
	paths := args.Paths
	if len(paths) == 0 {
		paths = []m.Path{"./..."}
	}

	include := args.Include
	if len(include) == 0 {
		include = DefaultInclude
	}

	seen := make(map[m.Path]bool)

	var files []m.File

	add := func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		if seen[m.Path(abs)] {
			return nil
		}

		seen[m.Path(abs)] = true
		files = append(files, m.File{ShortPath: m.Path(filepath.Clean(path)), FullPath: m.Path(abs)})

		return nil
	}

	for _, path := range paths {
		root, recursive := splitRecursive(string(path))

		info, err := w.FileInfo(ctx, m.Path(root))
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if err := add(root); err != nil {
				return nil, err
			}

			continue
		}

		err = w.Walk(ctx, m.Path(root), recursive, func(walked string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() {
				return nil
			}

			rel, err := w.RelPath(ctx, m.Path(root), m.Path(walked))
			if err != nil {
				return err
			}

			ok, err := w.Match(rel, include, args.Exclude)
			if err != nil || !ok {
				return err
			}

			return add(walked)
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ShortPath < files[j].ShortPath
	})

	return files, nil
}

func splitRecursive(path string) (string, bool) {
	if path == "..." {
		return ".", true
	}

	if root, ok := strings.CutSuffix(path, "/..."); ok {
		if root == "" {
			root = "/"
		}

		return root, true
	}

	return path, false
}

func (w *workflow) SourceMap(ctx context.Context, args SourceMapArgs) error {
	raw := strings.TrimSpace(args.Raw)

	if args.MapFile != "" {
		content, err := w.ReadFile(ctx, args.MapFile)
		if err != nil {
			return fmt.Errorf("failed to read source map %s: %w", args.MapFile, err)
		}

		raw = strings.TrimSpace(string(content))
	}

	if raw == "" {
		return fmt.Errorf("empty source map")
	}

	var source []byte

	if args.Source != "" {
		content, err := w.ReadFile(ctx, args.Source)
		if err != nil {
			return fmt.Errorf("failed to read source %s: %w", args.Source, err)
		}

		source = content
	}

	items := sourcemap.Decode(raw)
	entries := make([]m.SourceMapEntry, 0, len(items))

	for i, item := range items {
		entry := m.SourceMapEntry{
			Index:         i,
			Offset:        item.S,
			Length:        item.L,
			File:          item.F,
			Jump:          string(item.J),
			ModifierDepth: item.M,
		}

		if source != nil {
			if line, column, ok := item.Position(source); ok {
				entry.Position = &m.Position{Line: line, Column: column}
			}
		}

		entries = append(entries, entry)
	}

	return w.ui.DisplaySourceMap(ctx, entries, controller.WithFormat(args.Format))
}
