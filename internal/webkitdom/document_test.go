package webkitdom

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeScriptHost records evaluations in submission order and serves queued
// EvalJSON results.
type fakeScriptHost struct {
	mu          sync.Mutex
	scripts     []string
	evalResults []string
	evalCalled  chan struct{}
}

func newFakeScriptHost(results ...string) *fakeScriptHost {
	return &fakeScriptHost{
		evalResults: results,
		evalCalled:  make(chan struct{}, 8),
	}
}

func (h *fakeScriptHost) EvalJSON(_ context.Context, script string) (json.RawMessage, error) {
	h.mu.Lock()
	h.scripts = append(h.scripts, script)
	var res string
	if len(h.evalResults) > 0 {
		res = h.evalResults[0]
		h.evalResults = h.evalResults[1:]
	} else {
		res = "null"
	}
	h.mu.Unlock()
	h.evalCalled <- struct{}{}
	return json.RawMessage(res), nil
}

func (h *fakeScriptHost) RunJavaScript(_ context.Context, script string) {
	h.mu.Lock()
	h.scripts = append(h.scripts, script)
	h.mu.Unlock()
}

func (h *fakeScriptHost) IsDestroyed() bool { return false }

func (h *fakeScriptHost) recorded() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.scripts))
	copy(out, h.scripts)
	return out
}

var tokenRe = regexp.MustCompile(`token: (\d+)`)

func listenerToken(t *testing.T, script string) uint64 {
	t.Helper()
	m := tokenRe.FindStringSubmatch(script)
	require.NotNil(t, m, "no event token in script: %s", script)
	token, err := strconv.ParseUint(m[1], 10, 64)
	require.NoError(t, err)
	return token
}

func TestWhenLoadedInstallsListenerBeforeReadyCheck(t *testing.T) {
	host := newFakeScriptHost("false")
	router := NewRouter(context.Background())
	el := &Element{wv: host, router: router, expr: "frame"}

	done := make(chan error, 1)
	go func() { done <- el.WhenLoaded(context.Background()) }()

	// The readyState evaluation is submitted after the listener install;
	// once it has run, the listener script is already recorded.
	select {
	case <-host.evalCalled:
	case <-time.After(time.Second):
		t.Fatal("readyState check never evaluated")
	}

	scripts := host.recorded()
	require.Len(t, scripts, 2)
	require.Contains(t, scripts[0], "addEventListener")
	require.Contains(t, scripts[1], "readyState")

	// Frame finishes loading after the check said false: the installed
	// listener fires and resolves the wait.
	router.dispatchDOMEvent(json.RawMessage(
		fmt.Sprintf(`{"token":%d}`, listenerToken(t, scripts[0]))))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("WhenLoaded did not resolve after load event")
	}
}

func TestWhenLoadedResolvesImmediatelyWhenComplete(t *testing.T) {
	host := newFakeScriptHost("true")
	router := NewRouter(context.Background())
	el := &Element{wv: host, router: router, expr: "frame"}

	require.NoError(t, el.WhenLoaded(context.Background()))

	// Even on the fast path the listener went in first.
	scripts := host.recorded()
	require.Len(t, scripts, 2)
	require.True(t, strings.Contains(scripts[0], "addEventListener"))
}
