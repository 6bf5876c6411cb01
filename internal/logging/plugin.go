package logging

import (
	"context"
	"fmt"
)

// Tag is the bracketed prefix used for plugin lifecycle diagnostics.
const Tag = "center-pdf"

// Pluginf emits a single-line tagged diagnostic of the form
// "[center-pdf] <message>" at debug level. Attachment lifecycle transitions
// and lookup failures go through here; nothing in this channel is an error
// the host has to handle.
func Pluginf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Debug().Msg(fmt.Sprintf("[%s] %s", Tag, fmt.Sprintf(format, args...)))
}
