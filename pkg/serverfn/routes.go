package serverfn

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/vango-dev/hydrate/pkg/protocol"
)

// RouteOptions configures the HTTP endpoints of a Registry.
type RouteOptions struct {
	// RateLimit is the sustained calls per second allowed per function.
	// Zero disables rate limiting.
	RateLimit rate.Limit

	// Burst is the number of calls allowed above RateLimit at once.
	Burst int

	// CheckOrigin validates websocket upgrades. Nil allows same-origin
	// requests only (gorilla/websocket default).
	CheckOrigin func(r *http.Request) bool

	// WriteTimeout bounds each websocket write. Defaults to 10s.
	WriteTimeout time.Duration

	// DisableWebSocket leaves /_ws unmounted.
	DisableWebSocket bool
}

// limiter hands out one token bucket per function name.
type limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newLimiter(r rate.Limit, burst int) *limiter {
	if r <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &limiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     r,
		burst:    burst,
	}
}

// allow reports whether a call to name may proceed. A nil limiter allows
// everything.
func (l *limiter) allow(name string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	lim, ok := l.limiters[name]
	if !ok {
		lim = rate.NewLimiter(l.rate, l.burst)
		l.limiters[name] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// Routes returns a router serving every registered function:
//
//	POST /{name}  body: codec bytes of the arguments, response: Response
//	GET  /_ws     websocket carrying Request and Response frames
//
// Mount it under the gateway prefix.
func (r *Registry) Routes(opts RouteOptions) chi.Router {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	lim := newLimiter(opts.RateLimit, opts.Burst)
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     opts.CheckOrigin,
	}

	router := chi.NewRouter()
	if !opts.DisableWebSocket {
		router.Get("/_ws", func(w http.ResponseWriter, req *http.Request) {
			conn, err := upgrader.Upgrade(w, req, nil)
			if err != nil {
				r.logger.Error("websocket upgrade failed", "error", err)
				return
			}
			r.serveSocket(req.Context(), conn, lim, opts.WriteTimeout)
		})
	}
	router.Post("/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")

		if !lim.allow(name) {
			r.logger.Warn("rate limit exceeded", "name", name, "remote", req.RemoteAddr)
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		args, err := io.ReadAll(http.MaxBytesReader(w, req.Body, protocol.DefaultMaxAllocation))
		if err != nil {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}

		resp := r.Handle(req.Context(), name, args)
		w.Header().Set("Content-Type", ContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(resp)
	})
	return router
}

// serveSocket answers Request frames until the connection closes. Calls
// run concurrently; responses are written as they complete.
func (r *Registry) serveSocket(ctx context.Context, conn *websocket.Conn, lim *limiter, writeTimeout time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer conn.Close()
	defer wg.Wait()
	defer cancel()

	conn.SetReadLimit(protocol.HardMaxAllocation + protocol.FrameHeaderSize)
	logger := r.logger.With("remote", conn.RemoteAddr().String())

	var writeMu sync.Mutex
	write := func(resp *protocol.Response) {
		payload := r.encode("", resp)
		frame := &protocol.Frame{Type: protocol.FrameResponse, Payload: payload}

		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.BinaryMessage, frame.Encode()); err != nil {
			logger.Debug("websocket write failed", "error", err)
		}
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("websocket read failed", "error", err)
			}
			return
		}

		req, err := decodeRequestFrame(msg)
		if err != nil {
			logger.Warn("invalid request frame", "error", err)
			write(&protocol.Response{Err: protocol.NewFatalError(protocol.ErrInvalidFrame, err.Error())})
			return
		}

		if !lim.allow(req.Name) {
			write(&protocol.Response{
				ID:  req.ID,
				Err: protocol.NewError(protocol.ErrRateLimited, "rate limit exceeded"),
			})
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			write(r.HandleRequest(ctx, req))
		}()
	}
}

func decodeRequestFrame(msg []byte) (*protocol.Request, error) {
	frame, err := protocol.DecodeFrame(msg)
	if err != nil {
		return nil, err
	}
	if frame.Type != protocol.FrameRequest {
		return nil, protocol.ErrInvalidFrameType
	}
	return protocol.DecodeRequest(frame.Payload)
}
