package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/docchat"
	"github.com/fwojciec/docchat/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAskChat(tr *mock.Transport) *docchat.Chat {
	s := docchat.NewSession("acme")
	return docchat.NewChat(tr, &s, docchat.WithFallbackTimeout(20*time.Millisecond))
}

func TestRunAsk_Streamed(t *testing.T) {
	t.Parallel()

	chat := newAskChat(&mock.Transport{
		StreamFn: mock.Events(
			docchat.EventSession{SessionID: "s1"},
			docchat.EventText{Content: "The answer "},
			docchat.EventText{Content: "is 42."},
			docchat.EventEnd{},
		),
	})

	var out bytes.Buffer
	require.NoError(t, runAsk(context.Background(), chat, "What?", &out))
	assert.Equal(t, "The answer is 42.\n", out.String())
}

func TestRunAsk_FallbackSources(t *testing.T) {
	t.Parallel()

	chat := newAskChat(&mock.Transport{
		StreamFn: func(ctx context.Context, _ docchat.ChatRequest, _ docchat.Handlers) error {
			<-ctx.Done()
			return ctx.Err()
		},
		CompleteFn: func(context.Context, docchat.ChatRequest) (docchat.Reply, error) {
			return docchat.Reply{
				Message: "See [1] and [2].",
				Sources: []docchat.Source{
					{DocumentID: "d1", Title: "Handbook", URL: "https://example.com/h"},
					{DocumentID: "d2"},
				},
			}, nil
		},
	})

	var out bytes.Buffer
	require.NoError(t, runAsk(context.Background(), chat, "What?", &out))
	assert.Equal(t, "See [1] and [2].\n\nSources:\n[1] Handbook <https://example.com/h>\n[2] d2\n", out.String())
}

func TestRunAsk_Errored(t *testing.T) {
	t.Parallel()

	chat := newAskChat(&mock.Transport{
		StreamFn: mock.Events(
			docchat.EventText{Content: "partial"},
			docchat.EventError{Message: "model overloaded", Kind: docchat.ErrorServer},
		),
	})

	var out bytes.Buffer
	err := runAsk(context.Background(), chat, "What?", &out)
	require.Error(t, err)
	var se *docchat.StreamError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, "partial\n", out.String())
}

func TestRunAsk_Validation(t *testing.T) {
	t.Parallel()

	chat := newAskChat(&mock.Transport{})

	err := runAsk(context.Background(), chat, "   ", &bytes.Buffer{})
	assert.ErrorIs(t, err, docchat.ErrValidation)
}

func TestRunAsk_Aborted(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	chat := newAskChat(&mock.Transport{
		StreamFn: func(ctx context.Context, _ docchat.ChatRequest, h docchat.Handlers) error {
			h.Dispatch(docchat.EventText{Content: "half"})
			cancel()
			<-ctx.Done()
			return ctx.Err()
		},
	})

	err := runAsk(ctx, chat, "What?", &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errAborted)
	assert.ErrorIs(t, err, context.Canceled)
}
