package webkitdom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/puregotk-webkit/javascriptcore"
	"github.com/bnema/puregotk-webkit/webkit"

	"github.com/dawaltconley/zotero-center-pdf/internal/logging"
	"github.com/dawaltconley/zotero-center-pdf/internal/script"
)

// Message is the JS -> Go envelope posted via the script message handler.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	SurfaceID uint64          `json:"surface_id,omitempty"`
}

// MessageHandler handles one decoded message.
type MessageHandler interface {
	Handle(ctx context.Context, webviewID WebViewID, payload json.RawMessage)
}

// MessageHandlerFunc adapts a function to the MessageHandler interface.
type MessageHandlerFunc func(ctx context.Context, webviewID WebViewID, payload json.RawMessage)

// Handle calls f(ctx, webviewID, payload).
func (f MessageHandlerFunc) Handle(ctx context.Context, webviewID WebViewID, payload json.RawMessage) {
	f(ctx, webviewID, payload)
}

// domEventPayload is posted by listeners installed through Element.On.
type domEventPayload struct {
	Token uint64 `json:"token"`
}

// Router dispatches script messages from viewer pages to registered
// handlers, and DOM event tokens to listener callbacks.
type Router struct {
	baseCtx context.Context

	mu       sync.RWMutex
	handlers map[string]MessageHandler

	tokenMu   sync.Mutex
	nextToken uint64
	tokens    map[uint64]func()

	callbacks []interface{}
	signals   []uint32
}

// NewRouter creates a router. ctx is the base context for handler execution
// and logging.
func NewRouter(ctx context.Context) *Router {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Router{
		baseCtx:  ctx,
		handlers: make(map[string]MessageHandler),
		tokens:   make(map[uint64]func()),
	}
}

// RegisterHandler registers a handler for a message type.
func (r *Router) RegisterHandler(msgType string, handler MessageHandler) error {
	if msgType == "" {
		return errors.New("message type cannot be empty")
	}
	if handler == nil {
		return errors.New("message handler cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[msgType] = handler
	return nil
}

// NewEventToken allocates a token whose arrival from the page invokes fn.
func (r *Router) NewEventToken(fn func()) uint64 {
	r.tokenMu.Lock()
	defer r.tokenMu.Unlock()
	r.nextToken++
	token := r.nextToken
	r.tokens[token] = fn
	return token
}

// Setup wires the router into the given UserContentManager. The script
// message handler is registered in the main world; webkit.messageHandlers
// is only available there.
func (r *Router) Setup(ucm *webkit.UserContentManager) (uint32, error) {
	log := logging.FromContext(r.baseCtx).With().Str("component", "message-router").Logger()

	if ucm == nil {
		return 0, errors.New("user content manager is nil")
	}

	// Connect the signal before registering the handler to avoid a race,
	// as WebKit's documentation recommends.
	cb := func(_ webkit.UserContentManager, valuePtr uintptr) {
		r.handleScriptMessage(valuePtr)
	}

	r.mu.Lock()
	r.callbacks = append(r.callbacks, cb) // keep callback alive
	r.mu.Unlock()

	signalID := uint32(ucm.ConnectScriptMessageReceived(&cb))

	r.mu.Lock()
	r.signals = append(r.signals, signalID)
	r.mu.Unlock()

	if ok := ucm.RegisterScriptMessageHandler(script.MessageHandlerName, nil); !ok {
		return 0, fmt.Errorf("failed to register script message handler %q", script.MessageHandlerName)
	}

	log.Debug().
		Str("handler", script.MessageHandlerName).
		Uint32("signal_id", signalID).
		Msg("script message handler connected")
	return signalID, nil
}

func (r *Router) handleScriptMessage(valuePtr uintptr) {
	log := logging.FromContext(r.baseCtx).With().Str("component", "message-router").Logger()

	if valuePtr == 0 {
		log.Warn().Msg("received script message with nil value pointer")
		return
	}

	jscValue := javascriptcore.ValueNewFromInternalPtr(valuePtr)
	if jscValue == nil {
		log.Warn().Msg("failed to wrap script message JSC value")
		return
	}

	rawJSON := jscValue.ToJson(0)
	if rawJSON == "" {
		log.Warn().Msg("script message JSON is empty")
		return
	}

	var msg Message
	if err := json.Unmarshal([]byte(rawJSON), &msg); err != nil {
		log.Warn().Err(err).Str("json", rawJSON).Msg("failed to unmarshal script message")
		return
	}
	if msg.Type == "" {
		log.Warn().Msg("script message missing type")
		return
	}

	if msg.Type == "dom.event" {
		r.dispatchDOMEvent(msg.Payload)
		return
	}

	r.mu.RLock()
	handler, ok := r.handlers[msg.Type]
	r.mu.RUnlock()
	if !ok {
		log.Warn().Str("type", msg.Type).Msg("no handler registered for message type")
		return
	}

	log.Debug().
		Str("type", msg.Type).
		Uint64("surface_id", msg.SurfaceID).
		Msg("received script message")

	handler.Handle(r.baseCtx, WebViewID(msg.SurfaceID), msg.Payload)
}

func (r *Router) dispatchDOMEvent(payload json.RawMessage) {
	var ev domEventPayload
	if err := json.Unmarshal(payload, &ev); err != nil {
		return
	}

	r.tokenMu.Lock()
	fn := r.tokens[ev.Token]
	r.tokenMu.Unlock()

	if fn != nil {
		fn()
	}
}
