package assistant

import (
	"context"

	"github.com/zkhudr/gemini-agent/infrastructure/logging"
)

// ApplyWorkflow composes a template with the custom task text, attaches the
// full aggregated project context and applies the template's tool policy to
// the dispatcher. It returns the composed prompt for routing.
func (a *Assistant) ApplyWorkflow(ctx context.Context, name, custom string) (string, error) {
	t, err := a.workflows.Get(name)
	if err != nil {
		return "", err
	}

	a.dispatcher.ClearAutoApprove()
	a.dispatcher.SetAutoApprove(t.AutoApprove...)

	logging.Info().
		Str("session", a.session.ID()).
		Str("workflow", name).
		Msg("workflow applied")

	prompt := t.Compose(custom)
	if pc := a.projectContext(ctx); pc != "" {
		prompt = pc + "\n\n" + prompt
	}
	return prompt, nil
}
