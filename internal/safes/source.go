// Package safes loads the list of safes a sweep warms.
package safes

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/hamed0406/safewarmer/internal/domain"
)

// Source yields an ordered list of safes. Duplicates are kept.
type Source interface {
	Load(ctx context.Context) ([]domain.Safe, error)
}

// Select picks the file at path when it exists, otherwise remote. With a
// non-empty path the remote list is written there for the next run.
func Select(path string, remote Source, log *zap.Logger) Source {
	if path == "" {
		return remote
	}
	if _, err := os.Stat(path); err == nil {
		return &File{Path: path}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Persisting{Remote: remote, Path: path, Logger: log}
}

// Persisting loads from Remote and saves the result to Path. A failed write
// is logged; the loaded list is still returned.
type Persisting struct {
	Remote Source
	Path   string
	Logger *zap.Logger
}

func (p *Persisting) Load(ctx context.Context) ([]domain.Safe, error) {
	out, err := p.Remote.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := WriteFile(p.Path, out); err != nil {
		p.Logger.Warn("safes_cache_write_error", zap.String("path", p.Path), zap.Error(err))
	} else {
		p.Logger.Info("safes_cached", zap.String("path", p.Path), zap.Int("count", len(out)))
	}
	return out, nil
}
