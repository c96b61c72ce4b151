package logging

import (
	"context"
	"io"
	"os"
)

type contextKey string

const outputWriterKey contextKey = "release_output_writer"

// GetWriter retrieves the user-facing output writer from context.
// It falls back to stdout if no writer is found.
func GetWriter(ctx context.Context) io.Writer {
	if writer, ok := ctx.Value(outputWriterKey).(io.Writer); ok && writer != nil {
		return writer
	}
	return os.Stdout
}

// WithWriter returns a new context with the user-facing output writer attached.
func WithWriter(ctx context.Context, writer io.Writer) context.Context {
	return context.WithValue(ctx, outputWriterKey, writer)
}
