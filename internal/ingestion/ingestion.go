package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/brokerfees/internal/domain/models"
	"github.com/guttosm/brokerfees/internal/logger"
	"github.com/guttosm/brokerfees/internal/service"
)

const (
	tableSuffix   = ".json"
	patchedSuffix = ".patched.json"
	maxWorkers    = 8
)

// Options controls a directory run.
type Options struct {
	// Parallel is the number of files validated at once; 0 picks min(8, NumCPU).
	// Values above 8 are capped at 8 with a warning.
	Parallel int
	// Patch writes <name>.patched.json next to every invalid table.
	Patch bool
}

// FileResult is the validation outcome for one table file.
type FileResult struct {
	File    string
	RunID   string
	Result  models.ValidationResult
	Patched int
	Output  string
}

// ProcessDirectory validates every *.json table in dir concurrently.
//
// Behavior:
//   - Previously written *.patched.json files are ignored.
//   - Each file is recorded as a validation run with source "batch:<file>".
//   - With opts.Patch, invalid tables are patched and written alongside.
//   - The first file error (unreadable or malformed JSON, write failure)
//     cancels the remaining files and is returned.
//
// Returns:
//   - []FileResult: One result per table file, ordered by file name.
//   - error: If the directory holds no table file or a file fails.
func ProcessDirectory(ctx context.Context, dir string, svc service.FeeService, opts Options) ([]FileResult, error) {
	files, err := tableFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no table files (*%s) in %s", tableSuffix, dir)
	}

	logger.L().Info().Int("files", len(files)).Str("dir", dir).Msg("batch validation start")

	maxParallel := workerLimit(opts.Parallel)
	logger.L().Info().Int("max_parallel", maxParallel).Bool("patch", opts.Patch).Msg("batch validation configured")

	results := make([]FileResult, len(files))

	// errgroup will cancel siblings on first error.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			base := filepath.Base(file)

			res, err := processFile(gctx, file, svc, opts.Patch)
			if err != nil {
				logger.L().Error().Str("file", base).Dur("elapsed", time.Since(start)).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", file, err)
			}
			results[i] = res
			logger.L().Info().
				Int("idx", i+1).
				Int("total", len(files)).
				Str("file", base).
				Bool("valid", res.Result.Valid).
				Int("checked", res.Result.Checked).
				Int("errors", len(res.Result.Errors)).
				Int("patched", res.Patched).
				Dur("elapsed", time.Since(start)).
				Msg("file done")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func processFile(ctx context.Context, path string, svc service.FeeService, patch bool) (FileResult, error) {
	table, err := readTable(path)
	if err != nil {
		return FileResult{}, err
	}
	base := filepath.Base(path)
	rep := svc.ValidateTable(ctx, "batch:"+base, table)
	out := FileResult{File: base, RunID: rep.RunID, Result: rep.Result}
	if !patch || rep.Result.Valid {
		return out, nil
	}

	_, out.Patched = svc.PatchTable(table, rep.Result.Errors)
	out.Output = strings.TrimSuffix(path, tableSuffix) + patchedSuffix
	if err := writeTable(out.Output, table); err != nil {
		return FileResult{}, err
	}
	return out, nil
}

func tableFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, tableSuffix) || strings.HasSuffix(name, patchedSuffix) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// workerLimit resolves the requested parallelism to the errgroup limit.
func workerLimit(requested int) int {
	if requested <= 0 {
		return min(maxWorkers, runtime.NumCPU())
	}
	if requested > maxWorkers {
		logger.L().Warn().Int("requested", requested).Int("max_parallel", maxWorkers).Msg("parallelism capped")
		return maxWorkers
	}
	return requested
}
