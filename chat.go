package docchat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Chat is the session state machine. It submits one request at a time,
// races the stream against the fallback timer and finalizes exactly one
// assistant message per completed request.
type Chat struct {
	transport Transport
	session   *Session
	timeout   time.Duration
	logger    *slog.Logger
	store     SessionStore
}

// ChatOption configures a Chat.
type ChatOption func(*Chat)

// WithFallbackTimeout sets how long a request may stream without any event
// before the fallback request is issued. Non-positive values keep the
// default.
func WithFallbackTimeout(d time.Duration) ChatOption {
	return func(c *Chat) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) ChatOption {
	return func(c *Chat) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStore persists the session after every finished request.
func WithStore(s SessionStore) ChatOption {
	return func(c *Chat) { c.store = s }
}

// NewChat creates a Chat operating on session.
func NewChat(t Transport, session *Session, opts ...ChatOption) *Chat {
	c := &Chat{
		transport: t,
		session:   session,
		timeout:   DefaultFallbackTimeout,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Session returns the session the chat operates on.
func (c *Chat) Session() *Session { return c.session }

// SubmitOption configures a single Submit invocation.
type SubmitOption func(*submitConfig)

type submitConfig struct {
	onEvent func(Event)
}

// WithEventHandler sets a callback that receives each event accepted by the
// state machine, on the Submit goroutine. Events of a fallback reply are
// delivered as if they had been streamed. Framing errors are not delivered.
func WithEventHandler(h func(Event)) SubmitOption {
	return func(c *submitConfig) {
		c.onEvent = h
	}
}

// Submit sends text as a new user message and blocks until the request
// reaches its terminal outcome. Cancelling ctx aborts the request.
//
// The returned error is non-nil only when no request was started; stream
// and fallback failures are reported through Request.Outcome and
// Request.Err.
func (c *Chat) Submit(ctx context.Context, text string, opts ...SubmitOption) (*Request, error) {
	var cfg submitConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	req := &Request{
		ID:        uuid.NewString(),
		SessionID: c.session.ID,
		TenantID:  c.session.TenantID,
		Message:   text,
		Path:      PathStream,
	}
	if err := req.payload().Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.session.Messages = append(c.session.Messages, NewUserMessage(text))
	c.session.UpdatedAt = time.Now()

	r := &run{
		chat:    c,
		req:     req,
		onEvent: cfg.onEvent,
		log:     c.logger.With("request_id", req.ID, "tenant", req.TenantID),
	}
	r.execute(ctx)
	c.persist(context.WithoutCancel(ctx))
	return req, nil
}

func (c *Chat) persist(ctx context.Context) {
	if c.store == nil || c.session.ID == "" {
		return
	}
	if err := c.store.Save(ctx, *c.session); err != nil {
		c.logger.Error("save session", "session_id", c.session.ID, "error", err)
	}
}

// run holds the state of one in-flight Request. All fields are owned by the
// goroutine running execute.
type run struct {
	chat    *Chat
	req     *Request
	onEvent func(Event)
	log     *slog.Logger

	ctx  context.Context
	arb  Arbitrator
	msg  *ChatMessage // assistant message, nil until first content event
	text strings.Builder
}

func (r *run) execute(ctx context.Context) {
	r.ctx = ctx
	r.req.StartedAt = time.Now()
	r.log.Info("chat request started", "session_id", r.req.SessionID)

	streamCtx, cancelStream := context.WithCancel(ctx)
	events := make(chan Event)
	done := make(chan error, 1)
	payload := r.req.payload()
	go func() {
		forward := func(e Event) {
			select {
			case events <- e:
			case <-streamCtx.Done():
			}
		}
		done <- r.chat.transport.Stream(streamCtx, payload, HandlerFunc(forward))
	}()

	streamDone := false
	defer func() {
		cancelStream()
		if !streamDone {
			<-done
		}
	}()

	r.arb.Arm(r.chat.timeout)
	for !r.req.Done() {
		select {
		case evt := <-events:
			if ctx.Err() != nil {
				r.abort(ctx.Err())
				continue
			}
			r.apply(evt)
		case err := <-done:
			streamDone = true
			r.streamFinished(err)
		case <-r.arb.C():
			r.arb.Fire()
			cancelStream()
			r.fallback(ErrStreamTimeout)
		case <-ctx.Done():
			r.abort(ctx.Err())
		}
	}

	r.req.FinishedAt = time.Now()
	r.log.Info("chat request finished",
		"outcome", r.req.Outcome,
		"path", r.req.Path,
		"frame_errors", r.req.FrameErrors,
		"duration", r.req.FinishedAt.Sub(r.req.StartedAt),
	)
}

// apply applies one event to the request. The first event of any kind
// disarms the fallback timer.
func (r *run) apply(evt Event) {
	r.arb.Disarm()

	switch e := evt.(type) {
	case EventSession:
		// A blank id never replaces one already known for the session.
		if e.SessionID != "" {
			r.req.SessionID = e.SessionID
			r.chat.session.ID = e.SessionID
		}
	case EventText:
		r.message()
		r.text.WriteString(e.Content)
	case EventTools:
		m := r.message()
		m.ToolCalls = append(m.ToolCalls, e.Tools...)
	case EventError:
		if !e.Fatal() {
			r.req.FrameErrors++
			r.log.Warn("skipping malformed frame", "message", e.Message)
			return
		}
	}

	r.emit(evt)

	switch e := evt.(type) {
	case EventEnd:
		r.complete()
	case EventError:
		r.fail(errorFromEvent(e))
	}
}

func (r *run) emit(evt Event) {
	if r.onEvent != nil && r.ctx.Err() == nil {
		r.onEvent(evt)
	}
}

// streamFinished handles the stream returning before a terminal event.
func (r *run) streamFinished(err error) {
	switch {
	case r.ctx.Err() != nil:
		r.abort(r.ctx.Err())
	case err != nil:
		var te *TransportError
		if !errors.As(err, &te) {
			err = &TransportError{Err: err}
		}
		r.fail(err)
	case r.arb.Fire():
		// Closed without a single event: no point waiting for the timer.
		r.fallback(ErrUnexpectedEnd)
	default:
		r.fail(ErrUnexpectedEnd)
	}
}

// fallback issues the synchronous request and finalizes from its reply.
// The stream has already been cancelled and the arbitrator fired, so no
// stream event can reach apply concurrently.
func (r *run) fallback(cause error) {
	r.req.Path = PathFallback
	r.log.Warn("streaming stalled, issuing fallback request", "cause", cause)

	reply, err := r.chat.transport.Complete(r.ctx, r.req.payload())
	if r.ctx.Err() != nil {
		r.abort(r.ctx.Err())
		return
	}
	if err != nil {
		r.log.Error("fallback request failed", "error", err)
		r.fail(&FallbackError{Cause: cause, Err: err})
		return
	}

	if reply.SessionID != "" {
		r.apply(EventSession{SessionID: reply.SessionID})
	}
	if reply.Message != "" {
		r.apply(EventText{Content: reply.Message})
	}
	if len(reply.ToolCalls) > 0 {
		r.apply(EventTools{Tools: reply.ToolCalls})
	}
	r.message().Sources = reply.Sources
	r.apply(EventEnd{})
}

func (r *run) message() *ChatMessage {
	if r.msg == nil {
		r.msg = newAssistantMessage()
	}
	return r.msg
}

func (r *run) complete() {
	r.message()
	r.finalize(false)
	r.req.Outcome = OutcomeCompleted
}

func (r *run) fail(err error) {
	r.arb.Disarm()
	if r.msg != nil {
		r.finalize(true)
	}
	r.req.Outcome = OutcomeErrored
	r.req.Err = err
}

func (r *run) abort(err error) {
	r.arb.Disarm()
	if r.msg != nil {
		r.finalize(true)
	}
	r.req.Outcome = OutcomeAborted
	r.req.Err = err
}

// finalize appends the assistant message to the session. It runs at most
// once per request because every caller sets a terminal outcome right after.
func (r *run) finalize(partial bool) {
	final := *r.msg
	final.Content = r.text.String()
	final.Partial = partial
	r.chat.session.Messages = append(r.chat.session.Messages, final)
	r.chat.session.UpdatedAt = time.Now()
	r.req.Reply = &final
}

func errorFromEvent(e EventError) error {
	if e.Kind == ErrorTransport {
		if e.Status != 0 {
			return &TransportError{Status: e.Status}
		}
		return &TransportError{Err: errors.New(e.Message)}
	}
	return &StreamError{Message: e.Message}
}
