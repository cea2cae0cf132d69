// Package middleware provides dispatch middleware implementations.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zkhudr/gemini-agent/domain/middleware"
	"github.com/zkhudr/gemini-agent/domain/tool"
	"github.com/zkhudr/gemini-agent/infrastructure/logging"
)

// ApprovalRequest describes a pending tool execution for an approver.
type ApprovalRequest struct {
	SessionID string          `json:"session_id"`
	ToolName  string          `json:"tool_name"`
	Safety    string          `json:"safety"`
	Params    json.RawMessage `json:"params"`
	Timestamp time.Time       `json:"timestamp"`
}

// ApprovalResponse is an approver's verdict.
type ApprovalResponse struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
}

// Approver decides whether a gated tool execution may proceed.
type Approver interface {
	Approve(ctx context.Context, req ApprovalRequest) (ApprovalResponse, error)
}

// ApprovalConfig configures the approval middleware.
type ApprovalConfig struct {
	// Approver, when set, turns the policy into a hard gate: moderate and
	// dangerous tools outside the auto-approve set execute only after an
	// approved verdict. When nil the policy is advisory: a warning is
	// logged and execution proceeds.
	Approver Approver
}

// Approval returns middleware applying the approval policy to moderate and
// dangerous tools that are not auto-approved. Safe tools and auto-approved
// tools pass through untouched.
func Approval(cfg ApprovalConfig) middleware.Middleware {
	return func(next middleware.Handler) middleware.Handler {
		return func(ctx context.Context, execCtx *middleware.ExecutionContext) (tool.Result, error) {
			t := execCtx.Tool
			if !t.Safety().NeedsApproval() || execCtx.AutoApproved {
				return next(ctx, execCtx)
			}

			if cfg.Approver == nil {
				logging.Warn().
					Str("tool", t.Name()).
					Str("safety", t.Safety().String()).
					Msg("tool requires approval")
				return next(ctx, execCtx)
			}

			req := ApprovalRequest{
				SessionID: execCtx.SessionID,
				ToolName:  t.Name(),
				Safety:    t.Safety().String(),
				Params:    execCtx.Params,
				Timestamp: time.Now(),
			}

			resp, err := cfg.Approver.Approve(ctx, req)
			if err != nil {
				return tool.Result{}, fmt.Errorf("approval error: %w", err)
			}
			if !resp.Approved {
				reason := resp.Reason
				if reason == "" {
					reason = "approval denied"
				}
				return tool.Result{}, fmt.Errorf("%w: %s", tool.ErrApprovalDenied, reason)
			}
			return next(ctx, execCtx)
		}
	}
}
