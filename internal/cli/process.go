package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"viddigest/internal/config"
	"viddigest/internal/source"
)

// maxChunkMBLimit caps --max-chunk-mb at the provider's hard upload
// limit.
const maxChunkMBLimit = 25

// ProcessCmd creates the process command.
// The env parameter provides injectable dependencies for testing.
func ProcessCmd(env *Env) *cobra.Command {
	var (
		baseDir    string
		model      string
		prompt     string
		maxChunkMB int
	)

	cmd := &cobra.Command{
		Use:   "process <url>",
		Short: "Download, transcribe and summarize a video",
		Long: `Download a video's audio track, split it into chunks, transcribe each
chunk, and produce per-chunk summaries plus a final analysis.

Every artifact is cached under the base directory, so re-running the
same URL resumes from wherever the previous run stopped. Provider costs
are tracked in cost_metadata.json next to the analysis output.

Requires yt-dlp, ffmpeg and ffprobe on PATH (or their path override
variables), and a GROQ_API_KEY in the environment or a .env file.`,
		Example: `  viddigest process https://www.youtube.com/watch?v=dQw4w9WgXcQ
  viddigest process --base-dir ~/videos --prompt "Kubernetes talk" https://youtu.be/dQw4w9WgXcQ
  viddigest process --max-chunk-mb 10 https://youtu.be/dQw4w9WgXcQ`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, env, args[0], baseDir, model, prompt, maxChunkMB)
		},
	}

	cmd.Flags().StringVar(&baseDir, "base-dir", "", "Directory video workspaces are created under (default: config, then \"videos\")")
	cmd.Flags().StringVar(&model, "model", "", "Analysis chat model (default: openai/gpt-oss-120b)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Context prompt passed to the transcription model")
	cmd.Flags().IntVar(&maxChunkMB, "max-chunk-mb", 18, "Per-chunk size ceiling in MB (1-25)")

	return cmd
}

// runProcess executes the processing pipeline.
// Validation order: URL -> chunk size -> API key -> base dir -> tools.
func runProcess(cmd *cobra.Command, env *Env, url, baseDir, model, prompt string, maxChunkMB int) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	// 1. URL resolves to a video ID.
	if _, err := source.ExtractVideoID(url); err != nil {
		return err
	}

	// 2. Chunk ceiling in range.
	if maxChunkMB < 1 || maxChunkMB > maxChunkMBLimit {
		return fmt.Errorf("%w: %d MB (must be 1-%d)", ErrInvalidChunkSize, maxChunkMB, maxChunkMBLimit)
	}

	// 3. API key present.
	apiKey := env.Getenv(EnvGroqAPIKey)
	if apiKey == "" {
		return ErrAPIKeyMissing
	}

	// 4. Base directory usable.
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return err
	}
	if baseDir == "" {
		baseDir = cfg.BaseDir
	}
	baseDir = config.ExpandPath(baseDir)
	if err := config.ValidBaseDir(baseDir); err != nil {
		return err
	}
	if model == "" {
		model = cfg.Model
	}

	// 5. External tools available.
	ytDlp, err := env.ToolResolver.Resolve("yt-dlp")
	if err != nil {
		return err
	}
	ffmpeg, err := env.ToolResolver.Resolve("ffmpeg")
	if err != nil {
		return err
	}
	ffprobe, err := env.ToolResolver.Resolve("ffprobe")
	if err != nil {
		return err
	}

	// === EXECUTION ===

	runner := env.PipelineFactory.NewPipeline(PipelineSettings{
		APIKey:      apiKey,
		BaseDir:     baseDir,
		Model:       model,
		Prompt:      prompt,
		ChunkBytes:  int64(maxChunkMB) * 1024 * 1024,
		YtDlpPath:   ytDlp,
		FFmpegPath:  ffmpeg,
		FFprobePath: ffprobe,
		Output:      env.Stdout,
	})

	_, err = runner.Run(ctx, url)
	return err
}
