package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-mdembed/internal/fileutil"
)

// SubstitutionMode selects how resolved assets are written back.
type SubstitutionMode int

const (
	// SubstituteOffsets replaces each reference at the target span recorded
	// during the scan. Repeated target strings are each replaced exactly
	// once, at their own position.
	SubstituteOffsets SubstitutionMode = iota
	// SubstituteFirstOccurrence replaces the first literal occurrence of
	// the target in the evolving text after each resolution. This matches
	// the historical behavior, including its hazard: the first occurrence
	// may be a different reference or plain prose containing the same string.
	SubstituteFirstOccurrence
)

// String returns the mode name used in config files.
func (m SubstitutionMode) String() string {
	if m == SubstituteFirstOccurrence {
		return "first-occurrence"
	}
	return "offsets"
}

// ParseSubstitutionMode parses a config value. Empty means offsets.
func ParseSubstitutionMode(s string) (SubstitutionMode, error) {
	switch strings.ToLower(s) {
	case "", "offsets":
		return SubstituteOffsets, nil
	case "first-occurrence":
		return SubstituteFirstOccurrence, nil
	default:
		return 0, fmt.Errorf("%w: %q (must be offsets or first-occurrence)", ErrInvalidSubstitution, s)
	}
}

// ErrInvalidSubstitution indicates an unknown substitution mode name.
var ErrInvalidSubstitution = errors.New("invalid substitution mode")

// Skip reasons recorded in Outcome.Reason.
const (
	ReasonUnregistered = "unregistered extension"
	ReasonPassthrough  = "passthrough"
	ReasonRemote       = "remote target"
)

// Dirs locates a document. BaseDir resolves relative targets; OutputDir is
// where the converted document will be written. Built-in handlers only read
// from BaseDir.
type Dirs struct {
	BaseDir   string
	OutputDir string
}

// Outcome records what happened to one reference.
type Outcome struct {
	Reference Reference
	Handler   Handler // zero when the extension is unregistered
	Asset     *ResolvedAsset
	Reason    string
	Err       error
}

// RewriteResult is the rewritten markdown plus per-reference outcomes.
type RewriteResult struct {
	Markdown string
	Resolved []Outcome
	Skipped  []Outcome
	Failed   []Outcome
}

// Rewriter inlines local image and diagram references in markdown source.
// A Rewriter processes one document per Run and keeps no state between runs.
type Rewriter struct {
	Registry          *Registry
	Encoder           *AssetEncoder
	Renderer          *DiagramRenderer
	Logger            *zap.SugaredLogger
	Mode              SubstitutionMode
	FoldExtensionCase bool
}

// NewRewriter creates a Rewriter with the default registry, an OS-backed
// encoder and the real draw.io renderer.
func NewRewriter(logger *zap.SugaredLogger) *Rewriter {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	encoder := NewAssetEncoder()
	return &Rewriter{
		Registry: DefaultRegistry(),
		Encoder:  encoder,
		Renderer: NewDiagramRenderer(encoder, logger),
		Logger:   logger,
	}
}

// Run scans source once and resolves every reference in source order.
// Per-asset failures are logged and recorded in the result; the reference
// stays as written. Only context cancellation aborts the run.
func (r *Rewriter) Run(ctx context.Context, source string, dirs Dirs) (*RewriteResult, error) {
	result := &RewriteResult{}
	content := source
	var spans []span

	r.logger().Debugw("rewriting markdown",
		"baseDir", dirs.BaseDir,
		"outputDir", dirs.OutputDir,
		"mode", r.Mode.String(),
	)

	for ref := range Scan(source) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outcome := r.resolve(ctx, ref, dirs)
		if outcome.Err != nil && isContextErr(outcome.Err) {
			return nil, outcome.Err
		}

		switch {
		case outcome.Err != nil:
			r.logger().Warnw("could not inline asset",
				"target", ref.Target,
				"handler", outcome.Handler.String(),
				"error", outcome.Err,
			)
			result.Failed = append(result.Failed, outcome)
		case outcome.Asset == nil:
			r.logger().Debugw("skipping reference", "target", ref.Target, "reason", outcome.Reason)
			result.Skipped = append(result.Skipped, outcome)
		default:
			uri := outcome.Asset.DataURI()
			if r.Mode == SubstituteFirstOccurrence {
				content = strings.Replace(content, outcome.Asset.SourceTarget, uri, 1)
			} else {
				spans = append(spans, span{start: ref.TargetStart, end: ref.TargetEnd, text: uri})
			}
			result.Resolved = append(result.Resolved, outcome)
		}
	}

	if r.Mode != SubstituteFirstOccurrence {
		content = applySpans(source, spans)
	}

	result.Markdown = content
	return result, nil
}

// resolve dispatches one reference to its handler.
func (r *Rewriter) resolve(ctx context.Context, ref Reference, dirs Dirs) Outcome {
	outcome := Outcome{Reference: ref}

	handler, ok := r.Registry.Lookup(Extension(ref.Target, r.FoldExtensionCase))
	if !ok {
		outcome.Reason = ReasonUnregistered
		return outcome
	}
	outcome.Handler = handler

	if handler != HandlerPassthrough && fileutil.IsRemote(ref.Target) {
		outcome.Reason = ReasonRemote
		return outcome
	}

	switch handler {
	case HandlerEncode:
		outcome.Asset, outcome.Err = r.Encoder.Encode(ref.Target, ResolvePath(unescapeTarget(ref.Target), dirs.BaseDir))
	case HandlerRenderDiagram:
		outcome.Asset, outcome.Err = r.Renderer.Render(ctx, ref.Target, dirs.BaseDir)
	default:
		outcome.Reason = ReasonPassthrough
	}
	return outcome
}

func (r *Rewriter) logger() *zap.SugaredLogger {
	if r.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return r.Logger
}

// span is a pending replacement of source[start:end].
type span struct {
	start, end int
	text       string
}

// applySpans writes source with each span replaced. Spans come from Scan,
// so they are ascending and non-overlapping.
func applySpans(source string, spans []span) string {
	if len(spans) == 0 {
		return source
	}

	var b strings.Builder
	b.Grow(len(source))
	prev := 0
	for _, s := range spans {
		b.WriteString(source[prev:s.start])
		b.WriteString(s.text)
		prev = s.end
	}
	b.WriteString(source[prev:])
	return b.String()
}

// unescapeTarget drops markdown backslash escapes so the target can be used
// as a file path: `a\)b.png` names the file `a)b.png`.
func unescapeTarget(target string) string {
	if !strings.Contains(target, `\`) {
		return target
	}
	var b strings.Builder
	b.Grow(len(target))
	for i := 0; i < len(target); i++ {
		if target[i] == '\\' && i+1 < len(target) && isASCIIPunct(target[i+1]) {
			i++
		}
		b.WriteByte(target[i])
	}
	return b.String()
}

func isASCIIPunct(c byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
