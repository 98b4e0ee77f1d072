package caption

import (
	"fmt"
	"strings"
)

// BuildUserMessage composes the per-image user message from the base prompt
// and the optional caption prefix/suffix. The prefix and suffix are handed to
// the model as explicit instructions rather than concatenated onto its
// output, so the caption keeps its grammatical flow.
func BuildUserMessage(base, prefix, suffix string) string {
	parts := []string{strings.TrimSpace(base)}
	if parts[0] == "" {
		parts[0] = "Caption this image please"
	}
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		parts = append(parts, fmt.Sprintf("Begin the caption with %q exactly as written, and make the sentence flow naturally from it.", prefix))
	}
	if suffix = strings.TrimSpace(suffix); suffix != "" {
		parts = append(parts, fmt.Sprintf("End the caption with %q exactly as written, and make the sentence flow naturally into it.", suffix))
	}
	return strings.Join(parts, " ")
}
