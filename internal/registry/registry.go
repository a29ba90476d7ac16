// Package registry tracks claimed URLs and per-origin download permits.
package registry

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Registry combines the seen-URL set with lazily created per-origin
// counting permits. The permit-creation map has its own mutex, distinct from
// any permit, so a goroutine holding a permit never blocks creation.
type Registry struct {
	seenMu sync.Mutex
	seen   map[string]struct{}

	permitMu  sync.Mutex
	permits   map[string]*semaphore.Weighted
	perServer int64
}

// New constructs a Registry allowing perServer concurrent downloads against
// any single origin.
func New(perServer int) *Registry {
	if perServer < 1 {
		perServer = 1
	}
	return &Registry{
		seen:      make(map[string]struct{}),
		permits:   make(map[string]*semaphore.Weighted),
		perServer: int64(perServer),
	}
}

// TryClaim atomically inserts url into the seen set and reports whether it
// was absent. Once a URL is claimed no other caller may download it.
func (r *Registry) TryClaim(url string) bool {
	r.seenMu.Lock()
	defer r.seenMu.Unlock()
	if _, ok := r.seen[url]; ok {
		return false
	}
	r.seen[url] = struct{}{}
	return true
}

// Claimed reports how many URLs have been claimed so far.
func (r *Registry) Claimed() int {
	r.seenMu.Lock()
	defer r.seenMu.Unlock()
	return len(r.seen)
}

// Acquire blocks until fewer than the configured limit of downloads are
// active against server. Permit waits on one origin never block another.
func (r *Registry) Acquire(ctx context.Context, server string) error {
	return r.permit(server).Acquire(ctx, 1)
}

// Release returns a permit taken with Acquire.
func (r *Registry) Release(server string) {
	r.permit(server).Release(1)
}

func (r *Registry) permit(server string) *semaphore.Weighted {
	r.permitMu.Lock()
	defer r.permitMu.Unlock()
	sem, ok := r.permits[server]
	if !ok {
		sem = semaphore.NewWeighted(r.perServer)
		r.permits[server] = sem
	}
	return sem
}
