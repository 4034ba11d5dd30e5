package serverfn

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/vango-dev/hydrate/pkg/protocol"
)

// ContentType is the media type of request and response bodies.
const ContentType = "application/x-hydrate-frame"

// Transport carries one call to the execution side and returns the raw
// Response bytes. It fails only when no response was received.
type Transport interface {
	Call(ctx context.Context, name string, args []byte) ([]byte, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, name string, args []byte) ([]byte, error)

// Call implements Transport.
func (f TransportFunc) Call(ctx context.Context, name string, args []byte) ([]byte, error) {
	return f(ctx, name, args)
}

// Loopback returns a Transport that answers through reg in-process. The
// full encode/decode path is exercised without a network.
func Loopback(reg *Registry) Transport {
	return TransportFunc(func(ctx context.Context, name string, args []byte) ([]byte, error) {
		return reg.Handle(ctx, name, args), nil
	})
}

// HTTPTransport sends each call as an HTTP POST to {BaseURL}{Prefix}/{name}.
type HTTPTransport struct {
	BaseURL string
	Prefix  string
	Client  *http.Client
}

// NewHTTPTransport creates an HTTPTransport using http.DefaultClient.
func NewHTTPTransport(baseURL, prefix string) *HTTPTransport {
	return &HTTPTransport{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Prefix:  "/" + strings.Trim(prefix, "/"),
		Client:  http.DefaultClient,
	}
}

// Call implements Transport. A non-2xx status is a transport error; 429
// carries protocol.ErrRateLimited.
func (t *HTTPTransport) Call(ctx context.Context, name string, args []byte) ([]byte, error) {
	endpoint := t.BaseURL + t.Prefix + "/" + url.PathEscape(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(args))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", ContentType)
	req.Header.Set("Accept", ContentType)

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		code := protocol.ErrTransport
		if resp.StatusCode == http.StatusTooManyRequests {
			code = protocol.ErrRateLimited
		}
		return nil, &Error{
			Kind:    KindTransport,
			Func:    name,
			Code:    code,
			Message: fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, protocol.HardMaxAllocation+1))
	if err != nil {
		return nil, err
	}
	if len(body) > protocol.HardMaxAllocation {
		return nil, &Error{
			Kind:    KindDeserialize,
			Func:    name,
			Code:    protocol.ErrDeserialize,
			Message: "response exceeds size limit",
			Err:     protocol.ErrFrameTooLarge,
		}
	}
	return body, nil
}
