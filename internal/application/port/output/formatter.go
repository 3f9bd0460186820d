package output

import "context"

// FormatterPort turns structured tool output into prose for a human reader.
type FormatterPort interface {
	Format(ctx context.Context, content string) (string, error)
}
