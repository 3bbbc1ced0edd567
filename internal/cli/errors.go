package cli

import "errors"

// EnvGroqAPIKey is the environment variable holding the Groq API key.
const EnvGroqAPIKey = "GROQ_API_KEY"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrAPIKeyMissing indicates GROQ_API_KEY environment variable is not set.
	ErrAPIKeyMissing = errors.New("GROQ_API_KEY environment variable not set")

	// ErrInvalidChunkSize indicates --max-chunk-mb is out of range.
	ErrInvalidChunkSize = errors.New("invalid max chunk size")
)
