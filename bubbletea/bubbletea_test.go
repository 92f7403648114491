package bubbletea_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/docchat"
	bt "github.com/fwojciec/docchat/bubbletea"
	"github.com/stretchr/testify/require"
)

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, submit bt.SubmitFunc) bt.Model {
	t.Helper()
	return initModelWithSize(t, submit, 80, 24)
}

// initModelWithSize creates a model with a custom terminal size.
func initModelWithSize(t *testing.T, submit bt.SubmitFunc, width, height int) bt.Model {
	t.Helper()
	m := bt.New(submit, docchat.NewSession("acme"), docchat.DefaultTheme())
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// nopSubmit completes immediately with an empty answer.
func nopSubmit(_ context.Context, text string, _ func(docchat.Event)) (*docchat.Request, error) {
	return &docchat.Request{Message: text, Outcome: docchat.OutcomeCompleted, Path: docchat.PathStream}, nil
}

// scripted returns a SubmitFunc that replays evts and finishes with req.
func scripted(req docchat.Request, evts ...docchat.Event) bt.SubmitFunc {
	return func(_ context.Context, text string, onEvent func(docchat.Event)) (*docchat.Request, error) {
		for _, e := range evts {
			onEvent(e)
		}
		req.Message = text
		return &req, nil
	}
}

func textEvent(s string) bt.StreamEventMsg {
	return bt.StreamEventMsg{Event: docchat.EventText{Content: s}}
}
