package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/downfa11-org/logsnap/pkg/config"
	"github.com/downfa11-org/logsnap/pkg/snapshot"
	"github.com/downfa11-org/logsnap/util"
)

// FileExporter writes finished snapshots to local files, JSON lines or
// Parquet, and optionally uploads each finished file to an
// S3-compatible object store. An empty snapshot still produces a
// valid, empty file.
type FileExporter struct {
	dir         string
	format      string
	compression string
	uploader    *Uploader
}

func New(cfg *config.Config) (*FileExporter, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", cfg.OutputDir, err)
	}

	e := &FileExporter{
		dir:         cfg.OutputDir,
		format:      cfg.Format,
		compression: cfg.Compression,
	}
	if cfg.S3.Enabled() {
		up, err := NewUploader(cfg.S3)
		if err != nil {
			return nil, err
		}
		e.uploader = up
	}
	return e, nil
}

func (e *FileExporter) Export(ctx context.Context, dest snapshot.Destination, snap *snapshot.Snapshot) error {
	var (
		path string
		err  error
	)
	switch e.format {
	case "parquet":
		path, err = e.exportParquet(dest, snap)
	default:
		path, err = e.exportJSONL(dest, snap)
	}
	if err != nil {
		return err
	}
	util.Info("Topic [%s] exported %d entries to %s", snap.Topic, snap.Len(), path)

	if e.uploader != nil {
		if err := e.uploader.Upload(ctx, path, filepath.Base(path)); err != nil {
			return fmt.Errorf("upload %s: %w", path, err)
		}
	}
	return nil
}
