package domain

import "context"

// StreamerPort is the public port of the module
type StreamerPort interface {
	Open(ctx context.Context, req Request) (Stream, error)
}

// CachePort exposes the download-once cache when one is configured
type CachePort interface {
	IsCached(name string) (bool, error)
	Download(ctx context.Context, name string) (path string, downloaded bool, err error)
}

// Stream yields filtered records; Next returns io.EOF at the end
type Stream interface {
	Next() (Record, error)
	Close() error
	Stats() Stats
	// Name labels the dump being read
	Name() string
}

// LineSource is a raw line reader over one dump
type LineSource interface {
	Next() (string, error)
	Close() error
	Stats() (lines int, bytes int64)
}

// Sources opens line readers
type Sources interface {
	Local(path string) (LineSource, error)
	Remote(ctx context.Context, name string) (LineSource, error)
}
