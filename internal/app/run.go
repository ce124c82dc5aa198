package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/crossflowio/crossflow/internal/bpmn"
	"github.com/crossflowio/crossflow/internal/ctxlog"
	"github.com/crossflowio/crossflow/internal/fsutil"
	"github.com/crossflowio/crossflow/internal/source"
	"github.com/crossflowio/crossflow/internal/transpiler"
)

// Run executes the batch: discover every normalized record under the input
// path and transpile them in parallel, each run isolated, all sharing the
// read-only mapping table. A failing record aborts only itself; Run
// reports the aggregate at the end.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	recordPaths, err := fsutil.FindFilesByExtension(a.config.InputPath, ".json")
	if err != nil {
		return fmt.Errorf("failed to discover input records: %w", err)
	}
	if len(recordPaths) == 0 {
		a.logger.Warn("No record files found in input path, nothing to do.", "path", a.config.InputPath)
		return nil
	}
	a.logger.Info("Starting batch transpilation.", "records", len(recordPaths), "workers", a.config.Workers)

	var mu sync.Mutex
	failures := make(map[string]error)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(a.config.Workers)

	for _, recordPath := range recordPaths {
		recordPath := recordPath
		group.Go(func() error {
			if err := a.transpileOne(groupCtx, recordPath); err != nil {
				a.logger.Error("Record failed to transpile.", "record", recordPath, "error", err)
				mu.Lock()
				failures[recordPath] = err
				mu.Unlock()
			}
			// Per-record errors are collected, not propagated; one bad
			// record must not cancel its siblings.
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	if len(failures) > 0 {
		failed := make([]string, 0, len(failures))
		for p := range failures {
			failed = append(failed, p)
		}
		sort.Strings(failed)
		return fmt.Errorf("%d of %d records failed to transpile: %v", len(failures), len(recordPaths), failed)
	}

	a.logger.Info("Batch transpilation finished.", "records", len(recordPaths))
	return nil
}

// transpileOne loads one record, runs the pipeline, and writes the
// resulting package under the output directory.
func (a *App) transpileOne(ctx context.Context, recordPath string) error {
	rec, err := source.LoadRecord(ctx, recordPath)
	if err != nil {
		return err
	}

	result, err := a.pipeline.Run(ctx, rec)
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		a.logger.Warn("Transpilation warning.", "process", rec.Process, "detail", w)
	}

	return a.writePackage(rec.Process, result)
}

// writePackage materializes the package files under <out>/<process-slug>/.
func (a *App) writePackage(process string, result *transpiler.Result) error {
	root := filepath.Join(a.config.OutputDir, filepath.FromSlash(bpmn.Slug(process)))
	for _, name := range result.Package.FileNames() {
		target := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create package directory: %w", err)
		}
		if err := os.WriteFile(target, result.Package.Files[name], 0o644); err != nil {
			return fmt.Errorf("failed to write package file %s: %w", name, err)
		}
	}
	a.logger.Info("Package written.", "process", process, "dir", root, "files", len(result.Package.Files))
	return nil
}
