// Package ingest holds adapter shims between creek ports and the dumps adapter
package ingest

import (
	"context"

	"pvcreek/internal/adapters/ingest/dumps"
	"pvcreek/internal/services/creek/domain"
)

// sources implements domain.Sources over a dumps.Fetcher
// The fetcher is either a plain HTTP fetcher or a download-once cache
type sources struct {
	f dumps.Fetcher
}

// NewSources wraps f
func NewSources(f dumps.Fetcher) domain.Sources { return &sources{f: f} }

func (s *sources) Local(path string) (domain.LineSource, error) {
	rd, err := dumps.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return rd, nil
}

func (s *sources) Remote(ctx context.Context, name string) (domain.LineSource, error) {
	rd, err := dumps.Open(ctx, s.f, name)
	if err != nil {
		return nil, err
	}
	return rd, nil
}
