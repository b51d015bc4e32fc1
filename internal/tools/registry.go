package tools

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/mwiater/pagemcp/internal/util"
	"github.com/xeipuuv/gojsonschema"
)

var logger = xlog.NewPackageLogger("github.com/mwiater/pagemcp/internal", "tools")

// Option configures a Registry.
type Option func(*Registry)

// WithStrictArguments makes Dispatch validate arguments against the tool schema
// before calling the handler. By default missing or mistyped arguments are passed
// through and the handler sees zero values.
func WithStrictArguments(strict bool) Option {
	return func(r *Registry) {
		r.strict = strict
	}
}

type entry struct {
	def    Definition
	schema *gojsonschema.Schema
}

// Registry maps tool names to definitions. It is populated once at startup and
// only read afterwards, so Dispatch is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	strict  bool
	index   map[string]int
	entries []entry
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{index: make(map[string]int)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Strict reports whether arguments are validated before dispatch.
func (r *Registry) Strict() bool {
	return r.strict
}

// Register adds a definition. Names are unique and case-sensitive.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return errors.Wrap(ErrInvalidTool, "tool name is empty")
	}
	if def.Handler == nil {
		return errors.Wrapf(ErrInvalidTool, "tool %q has no handler", def.Name)
	}

	schema, err := compileSchema(def)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[def.Name]; exists {
		return errors.Wrapf(ErrDuplicateTool, "tool %q", def.Name)
	}
	r.index[def.Name] = len(r.entries)
	r.entries = append(r.entries, entry{def: def, schema: schema})
	return nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	e, ok := r.lookup(name)
	return e.def, ok
}

// List returns every definition in registration order.
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.entries))
	for _, e := range r.entries {
		defs = append(defs, e.def)
	}
	return defs
}

// Descriptors returns the advertised form of every definition in registration order.
func (r *Registry) Descriptors() []Descriptor {
	defs := r.List()
	out := make([]Descriptor, 0, len(defs))
	for _, def := range defs {
		out = append(out, def.Describe())
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) lookup(name string) (entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[name]
	if !ok {
		return entry{}, false
	}
	return r.entries[i], true
}

// Dispatch runs one invocation. It never panics and never returns an error:
// every outcome is folded into the Result.
func (r *Registry) Dispatch(ctx context.Context, req Request) (res Result) {
	started := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res = Failed(KindHandler, errors.Mark(errors.Newf("tool %s panicked: %v", req.Name, p), ErrHandler))
		}
		logResult(ctx, req, res, time.Since(started))
	}()

	e, ok := r.lookup(req.Name)
	if !ok {
		return Failed(KindUnknownTool, errors.Mark(errors.Newf("Unknown tool: %s", req.Name), ErrUnknownTool))
	}

	if r.strict {
		if err := validateArgs(e.schema, req.Arguments); err != nil {
			return Failed(KindInvalidArguments, err)
		}
	}

	args := Args(req.Arguments)
	if args == nil {
		args = Args{}
	}

	data, err := e.def.Handler(ctx, args)
	if err != nil {
		return Failed(KindHandler, errors.Mark(err, ErrHandler))
	}
	return Succeeded(data)
}

// DispatchBatch runs each request in input order and returns one result per
// request. A failing entry does not affect the others.
func (r *Registry) DispatchBatch(ctx context.Context, reqs []Request) []Result {
	results := make([]Result, len(reqs))
	for i, req := range reqs {
		results[i] = r.Dispatch(ctx, req)
	}
	return results
}

// maxLoggedArgs bounds the argument rendering in log lines.
const maxLoggedArgs = 256

func logResult(ctx context.Context, req Request, res Result, elapsed time.Duration) {
	name := req.Name
	if res.Success {
		logger.ContextKV(ctx, xlog.DEBUG,
			"tool", name,
			"args", util.TruncateRunes(util.FormatPayload(req.Arguments), maxLoggedArgs),
			"success", true,
			"elapsed", elapsed.String(),
		)
		return
	}
	logger.ContextKV(ctx, xlog.WARNING,
		"tool", name,
		"success", false,
		"kind", res.Kind,
		"err", res.Error,
		"elapsed", elapsed.String(),
	)
}
