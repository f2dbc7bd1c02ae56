package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fwojciec/crux"
	"github.com/fwojciec/crux/batch"
	"github.com/fwojciec/crux/fs"
)

// sink receives extracted items.
type sink interface {
	Write(ctx context.Context, item batch.Item) error
	Commit() error
	Abort() error
}

// Record is the JSON form of one extracted page.
type Record struct {
	URL        string                `json:"url"`
	Fields     map[crux.Field]string `json:"fields,omitempty"`
	URLs       map[crux.Field]string `json:"urls,omitempty"`
	DurationMs int64                 `json:"duration_ms,omitempty"`
	Error      string                `json:"error,omitempty"`
	Code       string                `json:"code,omitempty"`
}

// NewRecord flattens an item for output.
func NewRecord(item batch.Item) Record {
	rec := Record{URL: item.URL}
	if item.Err != nil {
		rec.Error = item.Err.Error()
		rec.Code = crux.ErrorCode(item.Err)
		return rec
	}
	r := item.Resource
	if r == nil {
		return rec
	}
	if r.URL != nil {
		rec.URL = r.URL.String()
	}
	if len(r.Fields) > 0 {
		rec.Fields = r.Fields
	}
	for k, u := range r.URLs {
		if u == nil {
			continue
		}
		if rec.URLs == nil {
			rec.URLs = make(map[crux.Field]string, len(r.URLs))
		}
		rec.URLs[k] = u.String()
	}
	if d, ok := r.ReadingTime(); ok {
		rec.DurationMs = d.Milliseconds()
	}
	return rec
}

// jsonSink writes one JSON object per line.
type jsonSink struct {
	enc *json.Encoder
}

func (s *jsonSink) Write(_ context.Context, item batch.Item) error {
	if err := s.enc.Encode(NewRecord(item)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func (s *jsonSink) Commit() error { return nil }
func (s *jsonSink) Abort() error  { return nil }

// fileSink writes successful items as Markdown files.
type fileSink struct {
	store  *fs.FileStore
	stdout io.Writer
	saved  int
}

func (s *fileSink) Write(ctx context.Context, item batch.Item) error {
	if item.Err != nil {
		return nil
	}
	rel, err := s.store.Save(ctx, item.Resource)
	if err != nil {
		return err
	}
	s.saved++
	fmt.Fprintln(s.stdout, rel)
	return nil
}

// Commit leaves existing output untouched when nothing was saved.
func (s *fileSink) Commit() error {
	if s.saved == 0 {
		return nil
	}
	return s.store.Commit()
}

func (s *fileSink) Abort() error  { return s.store.Abort() }
