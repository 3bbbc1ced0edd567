package cli

import (
	"context"
	"io"
	"os"

	"viddigest/internal/analyze"
	"viddigest/internal/audio"
	"viddigest/internal/config"
	"viddigest/internal/executor"
	"viddigest/internal/pipeline"
	"viddigest/internal/source"
	"viddigest/internal/transcribe"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in
// isolation.
//
// All fields have production defaults via DefaultEnv(). Tests override
// specific fields using the With* options.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	ConfigLoader    ConfigLoader
	ToolResolver    ToolResolver
	PipelineFactory PipelineFactory
}

// ConfigLoader loads user configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// ToolResolver locates external binaries.
type ToolResolver interface {
	Resolve(name string) (string, error)
}

// PipelineSettings carries everything needed to assemble a pipeline run.
type PipelineSettings struct {
	APIKey      string
	BaseDir     string
	Model       string
	Prompt      string
	ChunkBytes  int64
	YtDlpPath   string
	FFmpegPath  string
	FFprobePath string
	Output      io.Writer
}

// PipelineRunner processes one video URL.
type PipelineRunner interface {
	Run(ctx context.Context, url string) (*pipeline.Outcome, error)
}

// PipelineFactory assembles a runner from settings.
type PipelineFactory interface {
	NewPipeline(settings PipelineSettings) PipelineRunner
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) { e.Stdout = w }
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) { e.Stderr = w }
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) { e.Getenv = fn }
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) { e.ConfigLoader = l }
}

// WithToolResolver sets the tool resolver.
func WithToolResolver(r ToolResolver) EnvOption {
	return func(e *Env) { e.ToolResolver = r }
}

// WithPipelineFactory sets the pipeline factory.
func WithPipelineFactory(f PipelineFactory) EnvOption {
	return func(e *Env) { e.PipelineFactory = f }
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		Getenv:          os.Getenv,
		ConfigLoader:    &defaultConfigLoader{},
		ToolResolver:    &defaultToolResolver{},
		PipelineFactory: &defaultPipelineFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

type defaultToolResolver struct{}

func (defaultToolResolver) Resolve(name string) (string, error) {
	return executor.ResolveTool(name)
}

type defaultPipelineFactory struct{}

func (defaultPipelineFactory) NewPipeline(settings PipelineSettings) PipelineRunner {
	client := analyze.NewGroqChatClient(settings.APIKey)

	groqOpts := []analyze.GroqClientOption{analyze.WithOutput(settings.Output)}
	if settings.Model != "" {
		groqOpts = append(groqOpts, analyze.WithModel(settings.Model))
	}

	deps := pipeline.Deps{
		Downloader: source.NewDownloader(settings.YtDlpPath,
			source.WithStderr(settings.Output)),
		Splitter: audio.NewSplitter(settings.FFmpegPath, settings.FFprobePath,
			audio.WithSizeCeiling(settings.ChunkBytes),
			audio.WithSplitStderr(settings.Output)),
		Transcriber: transcribe.NewGroqTranscriber(client),
		Client:      analyze.NewGroqClient(client, groqOpts...),
	}

	return pipeline.New(settings.BaseDir, deps,
		pipeline.WithPrompt(settings.Prompt),
		pipeline.WithOutput(settings.Output))
}

// Compile-time interface verification.
var (
	_ ConfigLoader    = (*defaultConfigLoader)(nil)
	_ ToolResolver    = (*defaultToolResolver)(nil)
	_ PipelineFactory = (*defaultPipelineFactory)(nil)
	_ PipelineRunner  = (*pipeline.Pipeline)(nil)
)
