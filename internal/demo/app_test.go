package demo

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/hydrate"
	hydration "github.com/vango-dev/hydrate/pkg/hydrate"
	"github.com/vango-dev/hydrate/pkg/render"
	"github.com/vango-dev/hydrate/pkg/server"
	"github.com/vango-dev/hydrate/pkg/serverfn"
)

// rootMarkup returns the inner markup of the root element of a document.
func rootMarkup(t *testing.T, document string) string {
	t.Helper()
	open := `<div id="` + render.RootID + `">`
	start := strings.Index(document, open)
	if start < 0 {
		t.Fatalf("document has no root element:\n%s", document)
	}
	rest := document[start+len(open):]
	end := strings.Index(rest, "</div>\n")
	if end < 0 {
		t.Fatalf("root element is not closed:\n%s", document)
	}
	return rest[:end]
}

func TestKill(t *testing.T) {
	got, err := Kill(context.Background(), struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	if want := (AsciiDeath{Killer: "€a", After: true}); got != want {
		t.Errorf("Kill = %+v, want %+v", got, want)
	}
}

func TestServerRenderThenClientMount(t *testing.T) {
	reg := serverfn.NewRegistry()
	var remoteCalls atomic.Int32
	reg.Use(func(ctx context.Context, call serverfn.Call, next serverfn.Invoker) error {
		if call.Side == serverfn.SideHandler {
			remoteCalls.Add(1)
		}
		return next(ctx)
	})
	app := New(reg)

	s, err := server.New(server.DefaultConfig(), server.WithRegistry(reg))
	if err != nil {
		t.Fatal(err)
	}
	s.Page("/", app.Root, app.Page())
	ts := httptest.NewServer(s)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET / = %d", resp.StatusCode)
	}

	document := string(raw)
	markup := rootMarkup(t, document)
	if !strings.Contains(markup, `<p id="death">€a true</p>`) {
		t.Errorf("markup = %q", markup)
	}
	payload, _, ok := hydration.ExtractPayload(document)
	if !ok {
		t.Fatal("document has no payload")
	}

	rt := hydrate.NewRuntime(hydrate.ClientSide)
	defer rt.Close()
	client := app.Remote(serverfn.NewHTTPTransport(ts.URL, server.DefaultConfig().GatewayPrefix))

	rendered := make(chan string, 4)
	container := hydrate.NewMemoryContainer(markup)
	root, err := hydrate.Mount(context.Background(), hydrate.NewTree(rt, client.Root), container,
		hydrate.WithPayload(payload),
		hydrate.OnRender(func(html string) { rendered <- html }),
	)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer root.Dispose()
	<-rendered

	if m := root.Mismatches(); len(m) != 0 {
		t.Errorf("mismatches = %v", m)
	}
	if root.HTML() != markup {
		t.Errorf("HTML = %q, want %q", root.HTML(), markup)
	}
	if n := container.Replacements(); n != 0 {
		t.Errorf("replacements = %d, want 0", n)
	}
	if n := remoteCalls.Load(); n != 0 {
		t.Errorf("remote calls = %d; the client did not adopt the server's result", n)
	}

	if err := root.Trigger("inc", "click"); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	select {
	case got := <-rendered:
		for _, want := range []string{`<button id="inc" data-on-click="true">1</button>`, `<p id="death">€a true</p>`} {
			if !strings.Contains(got, want) {
				t.Errorf("render %q lacks %q", got, want)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no re-render after click")
	}
	if n := remoteCalls.Load(); n != 0 {
		t.Errorf("remote calls after click = %d", n)
	}
}

func TestClientOnlyMountCallsRemote(t *testing.T) {
	reg := serverfn.NewRegistry()
	app := New(reg)
	s, err := server.New(server.DefaultConfig(), server.WithRegistry(reg))
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(s)
	defer ts.Close()

	rt := hydrate.NewRuntime(hydrate.ClientSide)
	defer rt.Close()
	client := app.Remote(serverfn.NewHTTPTransport(ts.URL, "/_fn"))

	rendered := make(chan string, 4)
	root, err := hydrate.Mount(context.Background(), hydrate.NewTree(rt, client.Root), hydrate.NewMemoryContainer(""),
		hydrate.WithoutMarkupCheck(),
		hydrate.OnRender(func(html string) { rendered <- html }),
	)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer root.Dispose()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-rendered:
			if strings.Contains(got, `<p id="death">€a true</p>`) {
				return
			}
		case <-deadline:
			t.Fatalf("resource never resolved, last render %q", root.HTML())
		}
	}
}
