package input

import "context"

// EmitFunc receives one line of client-visible output. Returning an error
// aborts the stream.
type EmitFunc func(text string) error

type ChatStreamer interface {
	Stream(ctx context.Context, message string, emit EmitFunc) error
}
