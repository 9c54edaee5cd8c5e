// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

package errutil

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// Attrs flattens err into slog key/value pairs. oops errors contribute their
// code and context; other errors only their message.
func Attrs(err error) []any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return []any{"error", err}
	}

	attrs := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != nil {
		attrs = append(attrs, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	return attrs
}

// LogError logs err at ERROR with its structured attributes.
func LogError(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, Attrs(err)...)
}

// Log logs err at level with its structured attributes, plus any extra
// key/value pairs.
func Log(ctx context.Context, logger *slog.Logger, level slog.Level, msg string, err error, args ...any) {
	logger.Log(ctx, level, msg, append(args, Attrs(err)...)...)
}
