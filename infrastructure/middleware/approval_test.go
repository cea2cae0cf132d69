package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/zkhudr/gemini-agent/domain/middleware"
	"github.com/zkhudr/gemini-agent/domain/tool"
	infmw "github.com/zkhudr/gemini-agent/infrastructure/middleware"
)

func newTool(name string, level func(*tool.Builder) *tool.Builder) tool.Tool {
	b := tool.NewBuilder(name).
		WithHandler(func(context.Context, json.RawMessage) (tool.Result, error) {
			return tool.NewResult("ran"), nil
		})
	return level(b).MustBuild()
}

// approverFunc adapts a function to the Approver interface.
type approverFunc func(ctx context.Context, req infmw.ApprovalRequest) (infmw.ApprovalResponse, error)

func (f approverFunc) Approve(ctx context.Context, req infmw.ApprovalRequest) (infmw.ApprovalResponse, error) {
	return f(ctx, req)
}

func run(t *testing.T, mw middleware.Middleware, tl tool.Tool, autoApproved bool) (tool.Result, error) {
	t.Helper()

	handler := mw(func(ctx context.Context, ec *middleware.ExecutionContext) (tool.Result, error) {
		return ec.Tool.Execute(ctx, ec.Params)
	})
	return handler(context.Background(), &middleware.ExecutionContext{
		SessionID:    "s1",
		Tool:         tl,
		Params:       json.RawMessage(`{}`),
		AutoApproved: autoApproved,
	})
}

func TestApproval(t *testing.T) {
	t.Parallel()

	t.Run("safe tools pass without approver", func(t *testing.T) {
		t.Parallel()

		mw := infmw.Approval(infmw.ApprovalConfig{})
		result, err := run(t, mw, newTool("safe", (*tool.Builder).Safe), false)
		if err != nil || !result.Success {
			t.Errorf("result = %+v, err = %v", result, err)
		}
	})

	t.Run("advisory mode warns but executes", func(t *testing.T) {
		t.Parallel()

		mw := infmw.Approval(infmw.ApprovalConfig{})
		result, err := run(t, mw, newTool("danger", (*tool.Builder).Dangerous), false)
		if err != nil || !result.Success {
			t.Errorf("advisory mode blocked execution: %+v, %v", result, err)
		}
	})

	t.Run("auto-approved skips the approver", func(t *testing.T) {
		t.Parallel()

		called := false
		mw := infmw.Approval(infmw.ApprovalConfig{
			Approver: approverFunc(func(context.Context, infmw.ApprovalRequest) (infmw.ApprovalResponse, error) {
				called = true
				return infmw.ApprovalResponse{Approved: false}, nil
			}),
		})
		result, err := run(t, mw, newTool("mod", (*tool.Builder).Moderate), true)
		if err != nil || !result.Success {
			t.Errorf("result = %+v, err = %v", result, err)
		}
		if called {
			t.Error("approver consulted for auto-approved tool")
		}
	})

	t.Run("hard gate denies execution", func(t *testing.T) {
		t.Parallel()

		mw := infmw.Approval(infmw.ApprovalConfig{
			Approver: approverFunc(func(_ context.Context, req infmw.ApprovalRequest) (infmw.ApprovalResponse, error) {
				if req.ToolName != "danger" {
					t.Errorf("request tool = %q", req.ToolName)
				}
				return infmw.ApprovalResponse{Approved: false, Reason: "not today"}, nil
			}),
		})
		_, err := run(t, mw, newTool("danger", (*tool.Builder).Dangerous), false)
		if !errors.Is(err, tool.ErrApprovalDenied) {
			t.Errorf("err = %v, want ErrApprovalDenied", err)
		}
	})

	t.Run("hard gate approves execution", func(t *testing.T) {
		t.Parallel()

		mw := infmw.Approval(infmw.ApprovalConfig{
			Approver: approverFunc(func(context.Context, infmw.ApprovalRequest) (infmw.ApprovalResponse, error) {
				return infmw.ApprovalResponse{Approved: true}, nil
			}),
		})
		result, err := run(t, mw, newTool("danger", (*tool.Builder).Dangerous), false)
		if err != nil || !result.Success {
			t.Errorf("approved execution failed: %+v, %v", result, err)
		}
	})
}
