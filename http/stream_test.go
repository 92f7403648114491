package http_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/docchat"
	dchttp "github.com/fwojciec/docchat/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkedResponse writes each chunk verbatim and flushes after it, so the
// client observes the chunk boundaries.
type chunkedResponse struct {
	chunks []string
}

func (s chunkedResponse) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		for _, c := range s.chunks {
			fmt.Fprint(w, c)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

type recorder struct {
	calls  []string
	errors []docchat.EventError
}

func (r *recorder) handlers() docchat.Handlers {
	return docchat.Handlers{
		OnSession: func(id string) { r.calls = append(r.calls, "session:"+id) },
		OnText:    func(c string) { r.calls = append(r.calls, "text:"+c) },
		OnTools:   func(tools []docchat.ToolCall) { r.calls = append(r.calls, fmt.Sprintf("tools:%d", len(tools))) },
		OnEnd:     func() { r.calls = append(r.calls, "end") },
		OnError: func(e docchat.EventError) {
			r.calls = append(r.calls, "error:"+e.Message)
			r.errors = append(r.errors, e)
		},
	}
}

func streamFrom(t *testing.T, h http.Handler) (*recorder, error) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	client := dchttp.New(docchat.StaticToken("tok"), dchttp.WithBaseURL(srv.URL))
	var rec recorder
	err := client.Stream(context.Background(), docchat.ChatRequest{Message: "hi", TenantID: "acme"}, rec.handlers())
	return &rec, err
}

func TestStream_TextResponse(t *testing.T) {
	t.Parallel()

	rec, err := streamFrom(t, chunkedResponse{chunks: []string{
		`data: {"type":"session","session_id":"s1"}` + "\n\n",
		`data: {"type":"text","content":"Hello "}` + "\n\n",
		`data: {"type":"text","content":"World!"}` + "\n\n",
		`data: {"type":"end"}` + "\n\n",
	}}.handler())

	require.NoError(t, err)
	assert.Equal(t, []string{"session:s1", "text:Hello ", "text:World!", "end"}, rec.calls)
}

func TestStream_SplitFrames(t *testing.T) {
	t.Parallel()

	rec, err := streamFrom(t, chunkedResponse{chunks: []string{
		`data: {"type":"session","sess`,
		`ion_id":"test-session"}` + "\n\n" + `data: {"type":"text","content":"Split message"}` + "\n\n",
	}}.handler())

	require.NoError(t, err)
	assert.Equal(t, []string{"session:test-session", "text:Split message"}, rec.calls)
}

func TestStream_HTTPError(t *testing.T) {
	t.Parallel()

	rec, err := streamFrom(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`data: {"type":"text","content":"must not be seen"}` + "\n\n"))
	}))

	require.NoError(t, err)
	assert.Equal(t, []string{"error:HTTP 500"}, rec.calls)
	require.Len(t, rec.errors, 1)
	assert.Equal(t, docchat.ErrorTransport, rec.errors[0].Kind)
	assert.Equal(t, http.StatusInternalServerError, rec.errors[0].Status)
}

func TestStream_EmptyBody(t *testing.T) {
	t.Parallel()

	rec, err := streamFrom(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, err)
	assert.Equal(t, []string{"error:HTTP 204"}, rec.calls)
	require.Len(t, rec.errors, 1)
	assert.Equal(t, http.StatusNoContent, rec.errors[0].Status)
}

func TestStream_MalformedFrame(t *testing.T) {
	t.Parallel()

	rec, err := streamFrom(t, chunkedResponse{chunks: []string{
		`data: {"type":"session","session_id":"s"}` + "\n\n",
		"data: invalid-json\n\n",
	}}.handler())

	require.NoError(t, err)
	assert.Equal(t, []string{"session:s", "error:invalid JSON event"}, rec.calls)
}

func TestStream_ToolsEvent(t *testing.T) {
	t.Parallel()

	rec, err := streamFrom(t, chunkedResponse{chunks: []string{
		`data: {"type":"tools","tools":[{"name":"hybrid_search","args":{"q":"x"}},{"name":"graph_lookup","args":{}}]}` + "\n\n",
		`data: {"type":"end"}` + "\n\n",
	}}.handler())

	require.NoError(t, err)
	assert.Equal(t, []string{"tools:2", "end"}, rec.calls)
}

func TestStream_Cancel(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `data: {"type":"text","content":"first"}`+"\n\n")
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	client := dchttp.New(nil, dchttp.WithBaseURL(srv.URL))

	var got []string
	h := docchat.Handlers{OnText: func(c string) {
		got = append(got, c)
		cancel()
	}}

	done := make(chan error, 1)
	go func() {
		done <- client.Stream(ctx, docchat.ChatRequest{Message: "hi", TenantID: "acme"}, h)
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not stop after cancel")
	}
	assert.Equal(t, []string{"first"}, got)
}

func TestStream_ConnectionRefused(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := dchttp.New(nil, dchttp.WithBaseURL(url))
	err := client.Stream(context.Background(), docchat.ChatRequest{Message: "hi", TenantID: "acme"}, docchat.Handlers{})

	var te *docchat.TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.Status)
}
