package sse

import (
	"context"
	"fmt"
	"io"

	"github.com/fwojciec/docchat"
)

const readSize = 32 << 10

// Consume reads r one chunk at a time and dispatches the events it carries
// to h, in frame order, on the calling goroutine. It returns nil when r is
// exhausted and ctx.Err() once ctx is cancelled; after cancellation no
// handler is invoked, and bytes still buffered are discarded.
func Consume(ctx context.Context, r io.Reader, h docchat.Handlers) error {
	var dec Decoder
	buf := make([]byte, readSize)
	for {
		n, readErr := r.Read(buf)
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, record := range dec.Feed(buf[:n]) {
			evt, ok := Parse(record)
			if !ok {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			h.Dispatch(evt)
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("sse: read: %w", readErr)
		}
	}
}
