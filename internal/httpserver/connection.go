package httpserver

import (
	"errors"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wattlabs/originhttp/internal/http11"
)

// serverTimeout bounds one full iteration of the per-connection
// loop: reading a request, running the handler, and writing the
// response. keepAliveTimeout bounds just the read of one request,
// guarding the first-byte-to-last-byte window independently of the
// parser's own internal deadline (internal/http11.ReadRequest arms a
// further 30-second backstop of its own; in practice this tighter
// budget fires first for any connection actually going through Serve).
const (
	serverTimeout    = 120 * time.Second
	keepAliveTimeout = 15 * time.Second
)

// serveConnection runs the per-connection loop: it owns conn
// exclusively until the loop ends, either because processRequest
// signals the connection should close or a fatal I/O error occurs.
func serveConnection(conn net.Conn, handler Handler, logger *zap.Logger) {
	defer conn.Close()

	for {
		iterDone := make(chan struct{})
		var shouldContinue bool

		go func() {
			defer close(iterDone)
			shouldContinue = processRequest(conn, handler, logger)
		}()

		select {
		case <-iterDone:
			if !shouldContinue {
				return
			}
		case <-time.After(serverTimeout):
			resp := http11.HTMLResponse(http11.StatusGatewayTimeout, "<html><body><h1>Gateway Timeout</h1></body></html>")
			_ = http11.WriteResponse(conn, resp)
			logger.Warn("connection exceeded server timeout budget")
			return
		}
	}
}

// processRequest reads and handles exactly one request. It returns
// true if the connection loop should continue (keep-alive), false if
// the caller should close the connection.
func processRequest(conn net.Conn, handler Handler, logger *zap.Logger) bool {
	type readResult struct {
		req *http11.Request
		err error
	}
	readCh := make(chan readResult, 1)

	go func() {
		req, err := http11.ReadRequest(conn)
		readCh <- readResult{req, err}
	}()

	var result readResult
	keepAliveTimedOut := false
	select {
	case result = <-readCh:
	case <-time.After(keepAliveTimeout):
		conn.Close()
		result = <-readCh
		if result.err == nil {
			// The request finished parsing in the narrow window between
			// the timer firing and the forced close; honor the 15s
			// budget and treat it as a timeout regardless.
			result.err = http11.ErrTimeout
		}
		keepAliveTimedOut = true
	}

	// started reports whether any bytes of a new request had arrived
	// before the error/timeout, as opposed to the connection sitting
	// idle between requests. A connection on which no byte of a new
	// request was read is given a silent close rather than a synthesized
	// response, since no client request is actually in flight.
	started := result.req != nil && result.req.BytesRead() > 0

	if result.err != nil {
		switch {
		case keepAliveTimedOut:
			if !started {
				return false
			}
			resp := http11.HTMLResponse(http11.StatusRequestTimeout, "<html><body><h1>Request Timeout</h1></body></html>")
			_ = http11.WriteResponse(conn, resp)
			return false
		case errors.Is(result.err, http11.ErrUnexpectedEOF):
			if !started {
				return false
			}
			resp := http11.HTMLResponse(http11.StatusBadRequest, "<html><body><h1>Bad Request</h1></body></html>")
			_ = http11.WriteResponse(conn, resp)
			return false
		case errors.Is(result.err, http11.ErrTimeout):
			resp := http11.HTMLResponse(http11.StatusRequestTimeout, "<html><body><h1>Request Timeout</h1></body></html>")
			_ = http11.WriteResponse(conn, resp)
			return false
		default:
			resp := http11.HTMLResponse(http11.StatusBadRequest, "<html><body><h1>Bad Request</h1></body></html>")
			_ = http11.WriteResponse(conn, resp)
			return false
		}
	}

	req := result.req
	keepAliveRequested := true
	if connHeader, ok := req.Headers.Get("connection"); ok && strings.EqualFold(connHeader, "close") {
		keepAliveRequested = false
	}

	resp, err := func() (resp *http11.Response, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("handler panicked", zap.Any("recover", r))
				resp = http11.HTMLResponse(http11.StatusInternalServerError, "<html><body><h1>Internal Server Error</h1></body></html>")
				err = nil
			}
		}()
		return handler.Handle(req, conn)
	}()
	if err != nil {
		logger.Error("handler returned an error", zap.Error(err))
		resp = http11.HTMLResponse(http11.StatusInternalServerError, "<html><body><h1>Internal Server Error</h1></body></html>")
	}

	if resp == nil {
		// The handler streamed its response directly to conn; the
		// controller has no framing left to add and closes.
		return false
	}

	if werr := http11.WriteResponse(conn, resp); werr != nil {
		logger.Warn("failed to write response", zap.Error(werr))
		return false
	}

	if respConn, ok := resp.Headers.Get("connection"); ok && strings.EqualFold(respConn, "close") {
		return false
	}
	return keepAliveRequested
}
