package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbe(t *testing.T) {
	var method string
	tlsSrv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusNotFound)
	}))
	defer tlsSrv.Close()

	plain := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer plain.Close()

	p := NewWithClient(tlsSrv.Client())
	ctx := context.Background()

	assert.True(t, p.Probe(ctx, strings.TrimPrefix(tlsSrv.URL, "https://")))
	assert.Equal(t, http.MethodHead, method)
	assert.False(t, p.Probe(ctx, strings.TrimPrefix(plain.URL, "http://")))
	assert.False(t, p.Probe(ctx, "bad host"))
}

func TestProbeCanceled(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, NewWithClient(srv.Client()).Probe(ctx, strings.TrimPrefix(srv.URL, "https://")))
}

type fakeProber map[string]bool

func (f fakeProber) Probe(_ context.Context, host string) bool {
	return f[host]
}

func TestUnreachable(t *testing.T) {
	src := `<a href="http://b.org/x">b</a><img src="http://A.org/i.jpg"><a href="http://c.org">c</a>` +
		`<a href="https://d.org">d</a><a href="http://b.org/y">b</a>`
	got := Unreachable(context.Background(), fakeProber{"c.org": true}, src)
	assert.Equal(t, []string{"a.org", "b.org"}, got)

	assert.Empty(t, Unreachable(context.Background(), fakeProber{}, "<p>no links</p>"))
}
