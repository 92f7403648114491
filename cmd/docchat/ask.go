package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fwojciec/docchat"
)

// runAsk submits a single question, streaming the answer to w followed by a
// numbered source list.
func runAsk(ctx context.Context, chat *docchat.Chat, question string, w io.Writer) error {
	req, err := chat.Submit(ctx, question, docchat.WithEventHandler(func(e docchat.Event) {
		if t, ok := e.(docchat.EventText); ok {
			fmt.Fprint(w, t.Content)
		}
	}))
	if err != nil {
		return err
	}
	fmt.Fprintln(w)

	if req.Reply != nil && len(req.Reply.Sources) > 0 {
		fmt.Fprintln(w, "\nSources:")
		for i, s := range req.Reply.Sources {
			title := s.Title
			if title == "" {
				title = s.DocumentID
			}
			if s.URL != "" {
				fmt.Fprintf(w, "[%d] %s <%s>\n", i+1, title, s.URL)
			} else {
				fmt.Fprintf(w, "[%d] %s\n", i+1, title)
			}
		}
	}

	switch req.Outcome {
	case docchat.OutcomeErrored:
		return fmt.Errorf("request failed: %w", req.Err)
	case docchat.OutcomeAborted:
		return errors.Join(errAborted, req.Err)
	}
	return nil
}

var errAborted = errors.New("request aborted")
