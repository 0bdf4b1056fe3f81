package generator

import (
	"fmt"
	"strings"
)

// systemPrompt constrains the model to bare JSON output so the parser has
// a fighting chance on the strict path.
const systemPrompt = `You are a list generator. Respond with a single JSON array of strings and nothing else. No prose, no markdown fences, no numbering.`

// buildPrompt renders the user prompt for one generation request.
func buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate exactly %d distinct, well-known items for the topic: %s.\n", req.Count, req.Topic)
	b.WriteString("Each item is a short name, not a sentence. No two items may be the same.\n")
	if len(req.Avoid) > 0 {
		b.WriteString("Do NOT include any of these already-chosen items (or trivial variants of them):\n")
		for _, item := range req.Avoid {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	if req.Hint.Variant > 0 {
		// Nudges the model off the beaten path on retry calls.
		fmt.Fprintf(&b, "Prefer less obvious picks than the usual top answers (variation %d).\n", req.Hint.Variant)
	}
	b.WriteString("Respond with a JSON array of strings only.")
	return b.String()
}
