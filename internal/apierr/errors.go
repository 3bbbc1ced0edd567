// Package apierr is the error boundary for Groq API calls. The
// transcription and analysis clients reduce provider failures to the
// sentinels below via Classify, so the rest of the pipeline can decide
// with errors.Is whether a call is worth retrying, fatal for the run,
// or just worth a ledger entry.
package apierr

import "errors"

var (
	// ErrRateLimit marks an HTTP 429 from request throttling. Transient;
	// the transcription client retries these with backoff.
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded marks a 429 caused by an exhausted quota or a
	// billing problem. Retrying cannot help.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTimeout marks a request that timed out, locally or at a
	// gateway. Transient.
	ErrTimeout = errors.New("request timeout")

	// ErrAuthFailed marks a rejected API key.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadRequest marks a non-retryable client-side failure: bad
	// payload, forbidden, or missing resource.
	ErrBadRequest = errors.New("bad request")
)
