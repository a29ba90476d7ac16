// Package collyfetcher implements the HTTP fetch collaborator using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
)

// Config controls collector behavior.
type Config struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRedirects int
}

// Fetcher downloads single documents with a per-request timeout and a
// bounded redirect chain.
type Fetcher struct {
	cfg  Config
	base *colly.Collector
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = 6
	}
	c := colly.NewCollector(colly.Async(false))
	c.AllowURLRevisit = true
	c.IgnoreRobotsTxt = true
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	c.WithTransport(newTransport())
	c.SetRequestTimeout(cfg.Timeout)
	c.SetRedirectHandler(func(req *http.Request, via []*http.Request) error {
		if len(via) >= cfg.MaxRedirects {
			return fmt.Errorf("stopped after %d redirects", cfg.MaxRedirects)
		}
		return nil
	})
	return &Fetcher{cfg: cfg, base: c}
}

// Get executes a single HTTP GET and returns the response body. Redirects
// are followed up to the configured hop limit.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	collector := f.base.Clone()

	var (
		mu       sync.Mutex
		body     []byte
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		mu.Lock()
		defer mu.Unlock()
		body = r.Body
	})
	collector.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		defer mu.Unlock()
		fetchErr = err
	})

	if err := collector.Visit(url); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	collector.Wait()

	mu.Lock()
	defer mu.Unlock()
	if fetchErr != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, fetchErr)
	}
	return body, nil
}

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
