// Package demo is the page served by the hydrate command: a click counter
// next to a suspended call of the kill server function.
package demo

import (
	"context"

	"github.com/vango-dev/hydrate"
	"github.com/vango-dev/hydrate/pkg/features/resource"
	"github.com/vango-dev/hydrate/pkg/render"
	"github.com/vango-dev/hydrate/pkg/serverfn"
	"github.com/vango-dev/hydrate/pkg/vdom"
)

// AsciiDeath is the result of kill.
type AsciiDeath struct {
	Killer string `json:"killer"`
	After  bool   `json:"after"`
}

// Kill implements the kill server function. Killer holds a multi-byte
// character, so every encoding step of the payload has to preserve it.
func Kill(ctx context.Context, _ struct{}) (AsciiDeath, error) {
	return AsciiDeath{Killer: "€a", After: true}, nil
}

// App holds the server functions the page calls.
type App struct {
	kill *serverfn.Func[struct{}, AsciiDeath]
}

// New defines the app's server functions on reg.
func New(reg *serverfn.Registry) *App {
	return &App{kill: serverfn.Define(reg, "kill", Kill)}
}

// Remote returns a copy of the app that calls its server functions
// through t. The client uses it.
func (a *App) Remote(t serverfn.Transport) *App {
	return &App{kill: a.kill.Remote(t)}
}

// Page returns the document settings of the page.
func (a *App) Page() render.PageData {
	return render.PageData{
		Title: "hydrate",
		Meta:  []render.MetaTag{{Name: "viewport", Content: "width=device-width, initial-scale=1"}},
	}
}

// Root is the page component.
func (a *App) Root(cx *hydrate.Cx) *hydrate.VNode {
	count := hydrate.UseSignal(cx, 0)
	death := hydrate.NewResource(cx, func(*hydrate.Cx) int { return 0 },
		func(ctx context.Context, _ int) (AsciiDeath, error) {
			return a.kill.Invoke(ctx, struct{}{})
		}, resource.WithName("kill"))

	return vdom.Main(
		vdom.H1("hydrate"),
		vdom.Button(vdom.ID("inc"), vdom.OnClick(func(cx *hydrate.Cx) {
			count.Update(cx, func(n int) int { return n + 1 })
		}), vdom.Textf("%d", count.Get(cx))),
		hydrate.Suspense(
			func(*hydrate.Cx) *hydrate.VNode { return vdom.P("Loading...") },
			func(cx *hydrate.Cx) *hydrate.VNode {
				return death.Match(cx,
					hydrate.OnLoading[AsciiDeath](func() *hydrate.VNode { return vdom.P("Loading...") }),
					hydrate.OnResolved(func(d AsciiDeath) *hydrate.VNode {
						return vdom.P(vdom.ID("death"), vdom.Textf("%s %v", d.Killer, d.After))
					}),
					hydrate.OnErrored[AsciiDeath](func(err error) *hydrate.VNode {
						return vdom.Div(
							vdom.P(vdom.Class("error"), err.Error()),
							vdom.Button(vdom.ID("retry"), vdom.OnClick(death.Refetch), "Retry"),
						)
					}),
				)
			},
		),
	)
}
