// Package probe checks whether the hosts a bulletin links to over http://
// answer over HTTPS. Hosts that do not are kept on http:// by the URL
// upgrader instead of being rewritten to a dead link.
package probe

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gaurav-prasanna/bulletinpipe/core"
	"github.com/gaurav-prasanna/bulletinpipe/core/urls"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultUserAgent = "BulletinPipe/1.0 (TLS probe)"
	maxParallel      = 8
)

// HTTPSProber probes hosts with an HTTPS HEAD request.
type HTTPSProber struct {
	client *http.Client
}

// New creates an HTTPSProber with a short timeout.
func New() *HTTPSProber {
	return NewWithClient(&http.Client{Timeout: defaultTimeout})
}

// NewWithClient creates an HTTPSProber using c.
func NewWithClient(c *http.Client) *HTTPSProber {
	return &HTTPSProber{client: c}
}

// Probe reports whether host completes a TLS handshake and answers an
// HTTP request. Any status code counts as an answer.
func (p *HTTPSProber) Probe(ctx context.Context, host string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, "https://"+host+"/", nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// Unreachable probes every host src references over http:// and returns
// the ones without a working HTTPS endpoint, sorted.
func Unreachable(ctx context.Context, prober core.Prober, src string) []string {
	hosts := urls.InsecureHosts(src)

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		sem  = make(chan struct{}, maxParallel)
		dead []string
	)
	for _, h := range hosts {
		wg.Add(1)
		go func(host string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if prober.Probe(ctx, host) {
				return
			}
			mu.Lock()
			dead = append(dead, host)
			mu.Unlock()
		}(h)
	}
	wg.Wait()

	sort.Strings(dead)
	return dead
}
