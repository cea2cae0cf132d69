package session_test

import (
	"testing"

	"github.com/zkhudr/gemini-agent/domain/session"
)

func TestSession(t *testing.T) {
	t.Parallel()

	t.Run("history grows in pairs", func(t *testing.T) {
		t.Parallel()

		s := session.New()
		s.AppendExchange("hi", "hello")
		s.AppendExchange("how are you", "fine")

		history := s.History()
		if len(history) != 4 {
			t.Fatalf("History() length = %d, want 4", len(history))
		}
		if len(history)%2 != 0 {
			t.Error("history length must stay even")
		}
		if history[0].Role != session.RoleUser || history[1].Role != session.RoleAssistant {
			t.Errorf("roles = %v, %v", history[0].Role, history[1].Role)
		}
	})

	t.Run("clear resets history and tokens", func(t *testing.T) {
		t.Parallel()

		s := session.New()
		s.AppendExchange("a", "b")
		s.AddTokens(10, 20)
		s.Clear()

		if len(s.History()) != 0 {
			t.Error("history not cleared")
		}
		in, out := s.Tokens()
		if in != 0 || out != 0 {
			t.Errorf("Tokens() = %d, %d after clear", in, out)
		}
	})

	t.Run("tokens accumulate", func(t *testing.T) {
		t.Parallel()

		s := session.New()
		s.AddTokens(5, 7)
		s.AddTokens(3, 2)
		in, out := s.Tokens()
		if in != 8 || out != 9 {
			t.Errorf("Tokens() = %d, %d, want 8, 9", in, out)
		}
	})

	t.Run("sessions have unique ids", func(t *testing.T) {
		t.Parallel()

		if session.New().ID() == session.New().ID() {
			t.Error("two sessions share an ID")
		}
	})

	t.Run("attached files are recorded by name", func(t *testing.T) {
		t.Parallel()

		s := session.New()
		s.AttachFile(session.FileMeta{Name: "report.pdf", Size: 1024, MimeType: "application/pdf"})
		s.AttachFile(session.FileMeta{Name: "report.pdf", Size: 2048, MimeType: "application/pdf"})

		files := s.Files()
		if len(files) != 1 {
			t.Fatalf("Files() length = %d, want 1", len(files))
		}
		if files["report.pdf"].Size != 2048 {
			t.Errorf("Size = %d, want latest metadata", files["report.pdf"].Size)
		}
	})

	t.Run("history returns a copy", func(t *testing.T) {
		t.Parallel()

		s := session.New()
		s.AppendExchange("a", "b")
		h := s.History()
		h[0].Text = "mutated"
		if s.History()[0].Text != "a" {
			t.Error("History() exposed internal state")
		}
	})
}

func TestEstimateTokens(t *testing.T) {
	t.Parallel()

	if got := session.EstimateTokens("12345678"); got != 2 {
		t.Errorf("EstimateTokens() = %d, want 2", got)
	}
}
