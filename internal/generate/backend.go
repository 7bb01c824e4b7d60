package generate

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var ErrUnavailable = errors.New("no generation backend available")

// Kind names the resolved backend variant.
type Kind string

const (
	KindLocal       Kind = "local"
	KindRemote      Kind = "remote"
	KindUnavailable Kind = "unavailable"
)

// Backend turns a fully-built prompt into generated text.
type Backend interface {
	Kind() Kind
	Generate(ctx context.Context, prompt string) (string, error)
}

type unavailable struct{}

func (unavailable) Kind() Kind { return KindUnavailable }

func (unavailable) Generate(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

// Unavailable is the backend selected when neither a local nor a remote
// capability could be resolved. Every Generate call fails with ErrUnavailable;
// callers are expected to degrade rather than abort.
func Unavailable() Backend { return unavailable{} }

// Options configures backend resolution. Probe and NewRemote are injectable so
// resolution is testable without network access; left nil they default to the
// Ollama tags probe and the Gemini constructor.
type Options struct {
	OllamaHost      string
	Model           string
	APIKey          string
	RemoteModel     string
	ProbeTimeout    time.Duration
	GenerateTimeout time.Duration

	Probe     func(ctx context.Context) error
	NewRemote func(ctx context.Context) (Backend, error)
}

// Resolve picks the generation backend once, at pipeline construction.
// Preference order: local endpoint if its probe answers, then the remote
// service if an API key was supplied, else Unavailable. Resolution failures
// are logged, never fatal.
func Resolve(ctx context.Context, opts Options) Backend {
	local := NewOllama(opts.OllamaHost, opts.Model, opts.ProbeTimeout, opts.GenerateTimeout)

	probe := opts.Probe
	if probe == nil {
		probe = local.Ping
	}
	if err := probe(ctx); err == nil {
		slog.InfoContext(ctx, "generation backend resolved", "kind", KindLocal, "model", opts.Model)
		return local
	} else {
		slog.DebugContext(ctx, "local generation endpoint not reachable", "error", err)
	}

	if opts.APIKey != "" {
		newRemote := opts.NewRemote
		if newRemote == nil {
			newRemote = func(ctx context.Context) (Backend, error) {
				return NewGemini(ctx, opts.APIKey, opts.RemoteModel)
			}
		}
		remote, err := newRemote(ctx)
		if err == nil {
			slog.InfoContext(ctx, "generation backend resolved", "kind", KindRemote, "model", opts.RemoteModel)
			return remote
		}
		slog.WarnContext(ctx, "could not initialize remote generation backend", "error", err)
	}

	slog.WarnContext(ctx, "no generation backend available, answers will degrade to raw context")
	return Unavailable()
}
