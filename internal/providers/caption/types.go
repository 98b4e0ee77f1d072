package caption

import "context"

// Request carries everything a provider needs to caption one image. It lives
// only for the duration of a single call and its retries.
type Request struct {
	// Data is the raw image payload; adapters base64-encode it on the wire.
	Data []byte
	// Subtype is the MIME subtype of Data ("jpeg", "png", ...).
	Subtype string
	// SystemPrompt describes the desired caption style.
	SystemPrompt string
	// UserMessage is the per-image instruction, including any prefix/suffix
	// directives (see BuildUserMessage).
	UserMessage string
}

// Captioner is the uniform capability implemented by every provider family.
type Captioner interface {
	Caption(ctx context.Context, req Request) (string, error)
	Model() string
}

const maxCaptionTokens = 300
