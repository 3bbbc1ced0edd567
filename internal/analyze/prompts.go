package analyze

// chunkSystemPrompt instructs the model for per-chunk summaries.
const chunkSystemPrompt = `Summarize this partial transcript making it short and informative.

The summary should be accurate and factual, no formatting.`

// finalSystemPrompt instructs the model for the fold over all chunk
// summaries.
const finalSystemPrompt = `From the summaries provided, create a detailed final result that includes:

- Title
- Summary (2-3 sentences)
- Insights

No formatting.`
