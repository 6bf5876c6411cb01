package webkitdom

import (
	"context"
	"fmt"

	"github.com/bnema/puregotk-webkit/webkit"

	"github.com/dawaltconley/zotero-center-pdf/internal/logging"
	"github.com/dawaltconley/zotero-center-pdf/internal/script"
)

// Injector installs the viewer bootstrap scripts and the optional plugin
// stylesheet into webviews. Scripts go into all frames; the viewer lives in
// a nested iframe and the bootstrap guards itself against double injection.
type Injector struct {
	stylesheet string
}

// NewInjector creates an injector. stylesheet is the raw CSS to inject, or
// empty to skip style injection.
func NewInjector(stylesheet string) *Injector {
	return &Injector{stylesheet: stylesheet}
}

// Inject adds the bundled scripts and stylesheet to the content manager.
// Safe to call once per webview; the bridge guards repeats.
func (in *Injector) Inject(ctx context.Context, ucm *webkit.UserContentManager, webviewID WebViewID) {
	log := logging.FromContext(ctx).With().Str("component", "injector").Logger()

	if ucm == nil {
		log.Warn().Msg("cannot inject scripts: user content manager is nil")
		return
	}

	// The surface id must exist before any bundled script posts a message,
	// so it goes in at document start. It never changes for a webview.
	idScript := webkit.NewUserScript(
		fmt.Sprintf("window.__centerpdf_surface_id = %d;", uint64(webviewID)),
		webkit.UserContentInjectAllFramesValue,
		webkit.UserScriptInjectAtDocumentStartValue,
		nil,
		nil,
	)
	if idScript == nil {
		log.Warn().Msg("failed to create surface id script")
	} else {
		ucm.AddScript(idScript)
	}

	for _, s := range script.Bundle() {
		us := webkit.NewUserScript(
			s.Source,
			webkit.UserContentInjectAllFramesValue,
			webkit.UserScriptInjectAtDocumentEndValue,
			nil,
			nil,
		)
		if us == nil {
			log.Warn().Str("script", s.Name).Msg("failed to create user script")
			continue
		}
		ucm.AddScript(us)
		log.Debug().Str("script", s.Name).Msg("injected user script")
	}

	if in.stylesheet != "" {
		ss := webkit.NewUserStyleSheet(
			in.stylesheet,
			webkit.UserContentInjectAllFramesValue,
			webkit.UserStyleLevelUserValue,
			nil,
			nil,
		)
		if ss == nil {
			log.Warn().Msg("failed to create plugin stylesheet")
		} else {
			ucm.AddStyleSheet(ss)
			log.Debug().Msg("plugin stylesheet injected")
		}
	}

	log.Debug().Uint64("webview_id", uint64(webviewID)).Msg("scripts injected")
}
