package hydrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	hydration "github.com/vango-dev/hydrate/pkg/hydrate"
	"github.com/vango-dev/hydrate/pkg/render"
	"github.com/vango-dev/hydrate/pkg/vango"
	"github.com/vango-dev/hydrate/pkg/vdom"
)

// ErrNoHandler is returned by Trigger when no element with the id has a
// handler for the event.
var ErrNoHandler = errors.New("hydrate: no handler for event")

// MountOption configures Mount.
type MountOption func(*mountConfig)

type mountConfig struct {
	payload    string
	payloadURL string
	client     *http.Client
	syn        *hydration.Synchronizer
	observer   hydration.Observer

	renderer          render.RendererConfig
	checkMarkup       bool
	replaceOnMismatch bool
	onRender          func(html string)
	logger            *slog.Logger
}

// WithPayload seeds resources from an inline payload, the text of the
// __hydrate script element.
func WithPayload(text string) MountOption {
	return func(c *mountConfig) {
		c.payload = text
	}
}

// WithPayloadURL seeds resources from a payload published out of band.
// A nil client uses http.DefaultClient.
func WithPayloadURL(url string, client *http.Client) MountOption {
	return func(c *mountConfig) {
		c.payloadURL = url
		c.client = client
	}
}

// WithSynchronizer seeds resources from an existing synchronizer. It
// takes precedence over the payload options.
func WithSynchronizer(s *hydration.Synchronizer) MountOption {
	return func(c *mountConfig) {
		c.syn = s
	}
}

// WithHydrationObserver reports seeds and mismatches of the synchronizer
// built from a payload option.
func WithHydrationObserver(o hydration.Observer) MountOption {
	return func(c *mountConfig) {
		c.observer = o
	}
}

// WithRendererConfig sets the serializer config. It must match the one
// the server rendered with.
func WithRendererConfig(cfg render.RendererConfig) MountOption {
	return func(c *mountConfig) {
		c.renderer = cfg
	}
}

// WithoutMarkupCheck mounts without comparing the first render to the
// container. Use it for client-only mounts.
func WithoutMarkupCheck() MountOption {
	return func(c *mountConfig) {
		c.checkMarkup = false
	}
}

// ReplaceOnMismatch makes a markup mismatch non-fatal. The mismatch is
// still reported to the synchronizer and the client render replaces the
// server markup.
func ReplaceOnMismatch() MountOption {
	return func(c *mountConfig) {
		c.replaceOnMismatch = true
	}
}

// OnRender registers a callback run on the loop after every render with
// the new markup.
func OnRender(fn func(html string)) MountOption {
	return func(c *mountConfig) {
		c.onRender = fn
	}
}

// WithMountLogger sets the logger. Defaults to the runtime's logger.
func WithMountLogger(l *slog.Logger) MountOption {
	return func(c *mountConfig) {
		c.logger = l
	}
}

// Root is a mounted tree. It re-renders into its container whenever a
// signal or resource read during the last render changes.
type Root struct {
	tree      *render.Tree
	rt        *vango.Runtime
	container Container
	renderer  *render.Renderer
	syn       *hydration.Synchronizer
	cfg       mountConfig
	logger    *slog.Logger

	effect *vango.Effect

	mu       sync.Mutex
	last     *vdom.VNode
	html     string
	renders  int
	mountErr error
}

// Mount evaluates tree, adopts the server markup held by container and
// keeps the container in sync from then on.
//
// Resources created during the first render are seeded from the payload,
// so no loader runs for a value the server already produced. The first
// render must reproduce the container's markup exactly; otherwise Mount
// returns a *HydrationError of kind markup and nothing stays mounted,
// unless ReplaceOnMismatch is set. A payload that cannot be parsed or
// fetched fails the mount with kind payload.
func Mount(ctx context.Context, tree *render.Tree, container Container, opts ...MountOption) (*Root, error) {
	cfg := mountConfig{checkMarkup: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rt := tree.Runtime()
	logger := cfg.logger
	if logger == nil {
		logger = rt.Logger()
	}

	syn, err := cfg.synchronizer(ctx)
	if err != nil {
		return nil, err
	}
	if syn != nil {
		hydration.AttachSynchronizer(rt, syn)
	}

	r := &Root{
		tree:      tree,
		rt:        rt,
		container: container,
		renderer:  render.NewRenderer(cfg.renderer),
		syn:       syn,
		cfg:       cfg,
		logger:    logger.With("component", "mount"),
	}

	err = rt.Do(func(cx *vango.Cx) {
		r.effect = vango.CreateEffect(cx, func(cx *vango.Cx) vango.Cleanup {
			r.render(cx)
			return nil
		}, vango.EffectName("mount"))
	})
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	mountErr := r.mountErr
	r.mu.Unlock()
	if mountErr != nil {
		r.Dispose()
		return nil, mountErr
	}

	// Only the first render hydrates. A resource created later must load,
	// not adopt an envelope some other resource left behind.
	if n := syn.Drain(); n > 0 {
		r.logger.Warn("payload envelopes left unclaimed", "count", n)
	}
	return r, nil
}

func (c *mountConfig) synchronizer(ctx context.Context) (*hydration.Synchronizer, error) {
	var sopts []hydration.SynchronizerOption
	if c.observer != nil {
		sopts = append(sopts, hydration.WithObserver(c.observer))
	}

	switch {
	case c.syn != nil:
		return c.syn, nil
	case c.payloadURL != "":
		client := c.client
		if client == nil {
			client = http.DefaultClient
		}
		envs, err := hydration.FetchPayload(ctx, client, c.payloadURL)
		if err != nil {
			return nil, err
		}
		return hydration.NewSynchronizer(envs, sopts...), nil
	case c.payload != "":
		return hydration.FromPayload(c.payload, sopts...)
	}
	return nil, nil
}

// render runs inside the mount effect.
func (r *Root) render(cx *vango.Cx) {
	out := r.tree.Evaluate(cx)
	html, err := r.renderer.RenderToString(out)

	r.mu.Lock()
	first := r.renders == 0
	r.renders++
	if err != nil {
		if first {
			r.mountErr = err
		}
		r.mu.Unlock()
		r.logger.Error("render failed", "error", err)
		return
	}
	prev := r.html
	r.last, r.html = out, html
	r.mu.Unlock()

	if first {
		current := r.container.HTML()
		if current == html {
			r.notify(html)
			return
		}
		if r.cfg.checkMarkup {
			herr := &hydration.HydrationError{Kind: hydration.KindMarkup, Detail: mismatchDetail(current, html)}
			r.syn.ReportMismatch(herr)
			if !r.cfg.replaceOnMismatch {
				r.mu.Lock()
				r.mountErr = herr
				r.mu.Unlock()
				return
			}
			r.logger.Warn("server markup replaced", "error", herr)
		}
	} else if html == prev {
		return
	}

	if err := r.container.Replace(html); err != nil {
		r.logger.Error("container replace failed", "error", err)
		return
	}
	r.notify(html)
}

func (r *Root) notify(html string) {
	if r.cfg.onRender != nil {
		r.cfg.onRender(html)
	}
}

// mismatchDetail locates the first differing byte of two renders.
func mismatchDetail(server, client string) string {
	i := 0
	for i < len(server) && i < len(client) && server[i] == client[i] {
		i++
	}
	return fmt.Sprintf("markup differs at byte %d: server %q, client %q",
		i, excerpt(server, i), excerpt(client, i))
}

func excerpt(s string, at int) string {
	const width = 24
	end := at + width
	if end > len(s) {
		end = len(s)
	}
	return s[at:end]
}

// Trigger runs the handler bound to event on the element with the given
// id in the last render. It must not be called on the loop.
func (r *Root) Trigger(id, event string) error {
	r.mu.Lock()
	node := vdom.FindByID(r.last, id)
	r.mu.Unlock()

	h, ok := node.Handler(event)
	if !ok {
		return fmt.Errorf("%w: %s on #%s", ErrNoHandler, event, id)
	}
	return r.rt.Do(func(cx *vango.Cx) { h(cx) })
}

// HTML returns the markup of the last successful render.
func (r *Root) HTML() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.html
}

// Renders returns how many times the tree was rendered.
func (r *Root) Renders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renders
}

// Mismatches returns the hydration failures recorded while mounting.
func (r *Root) Mismatches() []*hydration.HydrationError {
	return r.syn.Mismatches()
}

// Dispose stops re-rendering and disposes every owner of the tree, which
// cancels in-flight loads.
func (r *Root) Dispose() {
	dispose := func(*vango.Cx) {
		if r.effect != nil {
			r.effect.Dispose()
		}
		r.tree.Dispose()
	}
	if r.rt.OnLoop() {
		dispose(nil)
		return
	}
	if err := r.rt.Do(dispose); err != nil && !errors.Is(err, vango.ErrRuntimeClosed) {
		r.logger.Error("dispose failed", "error", err)
	}
}
