package assistant

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/zkhudr/gemini-agent/domain/tool"
)

// toolUseRe locates the TOOL_USE marker followed by an optional fenced block
// and a brace-delimited JSON object, captured greedily across lines.
var toolUseRe = regexp.MustCompile("(?s)TOOL_USE:\\s*(?:```(?:json)?\\s*)?(\\{.*\\})(?:\\s*```)?")

// previewLimit caps the tool output excerpt spliced into the response.
const previewLimit = 500

// Invocation is one parsed tool call. Parameters keeps the raw JSON so the
// dispatcher sees exactly what the model emitted.
type Invocation struct {
	Tool       string          `json:"tool"`
	Parameters json.RawMessage `json:"parameters"`
}

// extraction is the outcome of scanning a reply for a tool call: the matched
// span, the invocation if parsing succeeded, and the parse error otherwise.
type extraction struct {
	start, end int
	invocation Invocation
	parseErr   error
}

// extractToolCall scans text for the first TOOL_USE block. Non-breaking
// spaces are normalized first so the span offsets refer to the normalized
// text, which is also returned. Only the first match is processed.
func extractToolCall(text string) (string, *extraction, bool) {
	normalized := strings.ReplaceAll(text, "\u00a0", " ")

	loc := toolUseRe.FindStringSubmatchIndex(normalized)
	if loc == nil {
		return normalized, nil, false
	}

	ex := &extraction{start: loc[0], end: loc[1]}
	raw := normalized[loc[2]:loc[3]]

	var inv Invocation
	if err := json.Unmarshal([]byte(raw), &inv); err != nil {
		ex.parseErr = err
		return normalized, ex, true
	}
	if len(inv.Parameters) == 0 {
		inv.Parameters = json.RawMessage(`{}`)
	}
	ex.invocation = inv
	return normalized, ex, true
}

// spliceResult renders the inline block that replaces a matched tool-call
// span once the tool has run.
func spliceResult(name string, result tool.Result) string {
	if !result.Success {
		return fmt.Sprintf("\n[Tool: %s]\n❌ Error: %s", name, result.Error)
	}
	return fmt.Sprintf("\n[Tool: %s]\n✅ Success:\n```\n%s\n```", name, result.Preview(previewLimit))
}

// spliceMalformed renders the inline block for an unparseable tool call. No
// tool executes in this case.
func spliceMalformed(err error) string {
	return fmt.Sprintf("\n[Tool Error: Malformed JSON]\n%s", err)
}
