package middleware

import (
	"context"
	"time"

	"github.com/zkhudr/gemini-agent/domain/middleware"
	"github.com/zkhudr/gemini-agent/domain/tool"
	"github.com/zkhudr/gemini-agent/infrastructure/logging"
)

// Logging returns middleware that records every dispatch with its outcome
// and duration.
func Logging() middleware.Middleware {
	return func(next middleware.Handler) middleware.Handler {
		return func(ctx context.Context, execCtx *middleware.ExecutionContext) (tool.Result, error) {
			start := time.Now()
			logging.Debug().
				Str("session_id", execCtx.SessionID).
				Str("tool", execCtx.Tool.Name()).
				Msg("executing tool")

			result, err := next(ctx, execCtx)
			elapsed := time.Since(start)

			switch {
			case err != nil:
				logging.Error().
					Str("tool", execCtx.Tool.Name()).
					Str("duration", elapsed.String()).
					Err(err).
					Msg("tool execution error")
			case !result.Success:
				logging.Warn().
					Str("tool", execCtx.Tool.Name()).
					Str("duration", elapsed.String()).
					Str("error", result.Error).
					Msg("tool reported failure")
			default:
				logging.Info().
					Str("tool", execCtx.Tool.Name()).
					Str("duration", elapsed.String()).
					Int("output_bytes", len(result.Output)).
					Msg("tool executed")
			}
			return result, err
		}
	}
}
