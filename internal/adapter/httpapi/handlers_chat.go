package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

const doneSentinel = "[DONE]"

type chatRequest struct {
	Message string `json:"message"`
}

func (h *handlers) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeMappedError(w, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeMappedError(w, invalidRequestError("message is required"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errorCodeInternal, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	stream := &sseWriter{w: w, flusher: flusher}
	if err := h.chat.Stream(r.Context(), req.Message, stream.Send); err != nil {
		h.logger.Error("Chat stream ended with error", "error", err)
	}
	stream.Done()
}

// sseWriter frames text as server-sent events. A multi-line text becomes
// one event with a data line per text line.
type sseWriter struct {
	w       io.Writer
	flusher http.Flusher
}

func (s *sseWriter) Send(text string) error {
	text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")

	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(&b, "data: %s\n", strings.TrimSuffix(line, "\r"))
	}
	b.WriteString("\n")

	if _, err := io.WriteString(s.w, b.String()); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	s.flusher.Flush()
	return nil
}

func (s *sseWriter) Done() {
	_, _ = fmt.Fprintf(s.w, "data: %s\n\n", doneSentinel)
	s.flusher.Flush()
}
