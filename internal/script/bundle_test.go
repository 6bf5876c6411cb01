package script

import (
	"strings"
	"testing"

	"github.com/grafana/sobek"
	"github.com/stretchr/testify/require"
)

func TestBundleCompiles(t *testing.T) {
	require.NoError(t, Validate())
}

func TestBundleScriptsAreIdempotentGuarded(t *testing.T) {
	// Scripts can be injected more than once per document lifetime; each
	// must guard against installing twice.
	for _, s := range Bundle() {
		require.Containsf(t, s.Source, "if (window.__centerpdf_", "script %s lacks a reinjection guard", s.Name)
	}
}

func TestBundlePostsToPluginHandler(t *testing.T) {
	for _, s := range Bundle() {
		require.Contains(t, s.Source, "messageHandlers."+MessageHandlerName)
	}
}

func TestValidateCatchesBrokenSource(t *testing.T) {
	_, err := sobek.Compile("broken", "function ( {", true)
	require.Error(t, err)
}

func TestBundleNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range Bundle() {
		require.Falsef(t, seen[s.Name], "duplicate script name %s", s.Name)
		seen[s.Name] = true
		require.False(t, strings.ContainsAny(s.Name, " \t\n"))
	}
}
