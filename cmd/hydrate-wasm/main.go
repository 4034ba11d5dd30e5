//go:build js && wasm

// Command hydrate-wasm is the client half of the demo page. Build it with
// GOOS=js GOARCH=wasm and load it from the bundle served by hydrate serve.
package main

import (
	"log/slog"
	"syscall/js"

	"github.com/vango-dev/hydrate"
	"github.com/vango-dev/hydrate/internal/demo"
	"github.com/vango-dev/hydrate/pkg/serverfn"
)

func main() {
	origin := js.Global().Get("location").Get("origin").String()
	reg := serverfn.NewRegistry()
	app := demo.New(reg).Remote(serverfn.NewHTTPTransport(origin, "/_fn"))

	rt := hydrate.NewRuntime(hydrate.ClientSide)
	root, err := hydrate.MountDocument(hydrate.NewTree(rt, app.Root))
	if err != nil {
		slog.Error("hydration failed", "error", err)
		return
	}
	slog.Info("hydrated", "renders", root.Renders())
	select {}
}
