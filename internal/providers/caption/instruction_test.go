package caption

import (
	"strings"
	"testing"
)

func TestBuildUserMessageBaseOnly(t *testing.T) {
	got := BuildUserMessage("Caption this image please", "", "")
	if got != "Caption this image please" {
		t.Fatalf("message = %q", got)
	}
}

func TestBuildUserMessageDefaultsEmptyBase(t *testing.T) {
	got := BuildUserMessage("  ", "", "")
	if got != "Caption this image please" {
		t.Fatalf("message = %q", got)
	}
}

func TestBuildUserMessageWithPrefixAndSuffix(t *testing.T) {
	got := BuildUserMessage("Caption this image please", "TOK", "in the style of film noir")
	if !strings.Contains(got, `"TOK"`) {
		t.Fatalf("message missing prefix instruction: %q", got)
	}
	if !strings.Contains(got, `"in the style of film noir"`) {
		t.Fatalf("message missing suffix instruction: %q", got)
	}
	if !strings.Contains(got, "Begin the caption with") || !strings.Contains(got, "End the caption with") {
		t.Fatalf("message missing directives: %q", got)
	}
}
