// Package server serves server-rendered pages and the endpoints their
// client runtime talks to.
//
// Each page request gets a fresh server runtime. The root component is
// resolved with render.Tree, every resource settlement is recorded in a
// hydrate.Collector, and the payload is either inlined in the document or
// published to a hydrate.Store and referenced by URL:
//
//	s, _ := server.New(cfg, server.WithRegistry(reg), server.WithStore(store))
//	s.Page("/", app.Root, render.PageData{Title: "App"})
//	s.Run(ctx)
//
// The server function gateway from the registry is mounted at
// Config.GatewayPrefix, the payload endpoint at hydrate.PayloadPath.
package server
