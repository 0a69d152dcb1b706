package providers

import (
	"context"
	"sync"

	"github.com/yourusername/codetrack/scraper-service/internal/fetch"
)

// fakeFetcher serves canned responses and counts calls
type fakeFetcher struct {
	mu       sync.Mutex
	body     []byte
	err      error
	calls    int
	lastURL  string
	lastBody []byte
	lastOpts fetch.Options
}

func (f *fakeFetcher) Get(ctx context.Context, rawURL string, opts fetch.Options) (*fetch.Response, error) {
	return f.record(rawURL, nil, opts)
}

func (f *fakeFetcher) Post(ctx context.Context, rawURL string, body []byte, opts fetch.Options) (*fetch.Response, error) {
	return f.record(rawURL, body, opts)
}

func (f *fakeFetcher) record(rawURL string, body []byte, opts fetch.Options) (*fetch.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastURL = rawURL
	f.lastBody = body
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return &fetch.Response{URL: rawURL, StatusCode: 200, Body: f.body}, nil
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
