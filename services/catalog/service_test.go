package catalog

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"reelcache/models"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func feedClient(body string) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(body)),
				Header:     make(http.Header),
			}, nil
		}),
	}
}

func TestEntriesArrayFeed(t *testing.T) {
	svc := NewService("https://feed.example/catalog", feedClient(`[{"id": 101}, {"id": 202}]`))

	entries, err := svc.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "101" || entries[1].ID != "202" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestEntriesObjectFeed(t *testing.T) {
	svc := NewService("https://feed.example/catalog",
		feedClient(`{"b":{"id":"202","type":"tv"},"a":{"id":101,"type":"movie"}}`))

	entries, err := svc.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Keys are sorted for deterministic pagination.
	if entries[0].ID != "101" || entries[0].Kind != models.KindMovie {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].ID != "202" || entries[1].Kind != models.KindSeries {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}

func TestEntriesObjectFeedKeyAsID(t *testing.T) {
	svc := NewService("https://feed.example/catalog",
		feedClient(`{"303":{"type":"movie"}}`))

	entries, err := svc.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "303" {
		t.Errorf("expected key used as identifier, got %+v", entries)
	}
}

func TestEntriesSkipsMalformed(t *testing.T) {
	svc := NewService("https://feed.example/catalog",
		feedClient(`[{"id": 101}, {"name": "no id"}, {"tmdb_id": "404"}]`))

	entries, err := svc.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	if entries[1].ID != "404" {
		t.Errorf("expected tmdb_id fallback, got %+v", entries[1])
	}
}

func TestEntriesNotConfigured(t *testing.T) {
	svc := NewService("", nil)
	if _, err := svc.Entries(context.Background()); err != ErrFeedNotConfigured {
		t.Errorf("expected ErrFeedNotConfigured, got %v", err)
	}
}

func TestRandomUsesInjectedPicker(t *testing.T) {
	svc := NewService("https://feed.example/catalog", feedClient(`[{"id": 101}, {"id": 202}, {"id": 303}]`))
	svc.SetPicker(func(n int) int {
		if n != 3 {
			t.Errorf("picker called with n=%d", n)
		}
		return 2
	})

	entry, err := svc.Random(context.Background())
	if err != nil {
		t.Fatalf("Random failed: %v", err)
	}
	if entry.ID != "303" {
		t.Errorf("expected deterministic pick 303, got %s", entry.ID)
	}
}

func TestRandomEmptyFeed(t *testing.T) {
	svc := NewService("https://feed.example/catalog", feedClient(`[]`))
	if _, err := svc.Random(context.Background()); err != ErrCatalogEmpty {
		t.Errorf("expected ErrCatalogEmpty, got %v", err)
	}
}
