package httpserver

import (
	"io"

	"github.com/wattlabs/originhttp/internal/http11"
)

// Handler is the application contract the connection controller invokes
// for every parsed request. A handler may stream a response directly to
// sink (chunked bodies, proxied bytes) and return a nil Response, or
// build a Response and let the controller emit it as a buffered unit.
// Implementations must be safe for concurrent use: the controller may
// run handlers for distinct connections on different goroutines at the
// same time.
type Handler interface {
	Handle(req *http11.Request, sink io.Writer) (*http11.Response, error)
}

// HandlerFunc adapts a plain function to Handler, mirroring the
// standard library's http.HandlerFunc idiom.
type HandlerFunc func(req *http11.Request, sink io.Writer) (*http11.Response, error)

// Handle calls f(req, sink).
func (f HandlerFunc) Handle(req *http11.Request, sink io.Writer) (*http11.Response, error) {
	return f(req, sink)
}
