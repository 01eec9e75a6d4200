package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/kabir-fx/abhiraksha/constants"
	"github.com/kabir-fx/abhiraksha/internal/async"
)

type FileResult struct {
	Path     string
	Document constants.DocumentType
	Output   string
	Err      string
}

type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Skipped   uint32
	Failed    uint32
}

// ProcessDirectory walks root once and handles every eligible file inline,
// writing results to the outbox exactly as the watcher path does. Hidden
// directories and files whose type cannot be inferred are skipped.
func (in *Inbox) ProcessDirectory(ctx context.Context, root string) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, DirStats{}, err
	}

	var results []FileResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if d.IsDir() {
			if path != root && IsHidden(path) {
				return filepath.SkipDir
			}
			return nil
		}
		stats.Scanned++
		if !Eligible(path) {
			return nil
		}
		doc, ok := DocumentTypeFor(path)
		if !ok {
			stats.Skipped++
			in.logger.Warn("inbox.skip.unknown_type", "path", path)
			return nil
		}
		stats.Matched++

		res := FileResult{Path: path, Document: doc, Output: filepath.Join(in.OutDir, OutputName(path, doc))}
		if err := in.Handle(ctx, async.NewJob(path, doc)); err != nil {
			res.Err = err.Error()
			res.Output = ""
			stats.Failed++
		} else {
			stats.Succeeded++
		}
		results = append(results, res)
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	in.logger.Info("inbox.directory.done", "root", root, "scanned", stats.Scanned, "matched", stats.Matched,
		"succeeded", stats.Succeeded, "skipped", stats.Skipped, "failed", stats.Failed)
	return results, stats, nil
}
