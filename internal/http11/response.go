package http11

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/valyala/bytebufferpool"
)

// StatusCode is a status code from this server's closed set. The set
// is extendable (StatusText tolerates unknown codes), but every
// response the emitter itself synthesizes uses one of these.
type StatusCode int

const (
	StatusOK                  StatusCode = 200
	StatusCreated             StatusCode = 201
	StatusBadRequest          StatusCode = 400
	StatusNotFound            StatusCode = 404
	StatusRequestTimeout      StatusCode = 408
	StatusInternalServerError StatusCode = 500
	StatusGatewayTimeout      StatusCode = 504
)

var reasonPhrases = map[StatusCode]string{
	StatusOK:                  "OK",
	StatusCreated:             "Created",
	StatusBadRequest:          "Bad Request",
	StatusNotFound:            "Not Found",
	StatusRequestTimeout:      "Request Timeout",
	StatusInternalServerError: "Internal Server Error",
	StatusGatewayTimeout:      "Gateway Timeout",
}

// StatusText returns the fixed reason phrase for code, and whether the
// code is one this server recognizes.
func StatusText(code StatusCode) (string, bool) {
	text, ok := reasonPhrases[code]
	return text, ok
}

// Response is a complete HTTP/1.1 response: status, headers, and a
// fully-buffered body. A handler that streams chunked data directly to
// the connection returns no Response at all (see Handler in the
// httpserver package).
type Response struct {
	Status  StatusCode
	Headers *Headers
	Body    []byte
}

// WriteStatusLine emits "HTTP/1.1 <code> <reason>\r\n". Unknown codes
// fall back to an empty reason phrase rather than failing the write.
func WriteStatusLine(w io.Writer, code StatusCode) error {
	reason, _ := StatusText(code)
	_, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", int(code), reason)
	return err
}

// WriteHeaders iterates headers and emits "name: value\r\n" for each
// pair, exactly as stored (already lowercase), then a terminating
// blank line.
func WriteHeaders(w io.Writer, headers *Headers) error {
	var writeErr error
	headers.Iter(func(name, value string) bool {
		if _, err := fmt.Fprintf(w, "%s: %s\r\n", name, value); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	if writeErr != nil {
		return writeErr
	}
	_, err := w.Write([]byte("\r\n"))
	return err
}

// WriteChunkedBody emits one chunk: the length in uppercase hex, the
// data, and a trailing CRLF. A zero-length call is legal but callers
// should prefer WriteFinalBodyChunk to terminate the stream.
func WriteChunkedBody(w io.Writer, data []byte) error {
	if _, err := fmt.Fprintf(w, "%X\r\n", len(data)); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := w.Write([]byte("\r\n"))
	return err
}

// WriteFinalBodyChunk emits the terminating "0\r\n" chunk. If trailers
// is non-nil, each trailer name and value is written lowercased,
// followed by the closing blank line; otherwise just the blank line.
func WriteFinalBodyChunk(w io.Writer, trailers *Headers) error {
	if _, err := w.Write([]byte("0\r\n")); err != nil {
		return err
	}
	if trailers == nil {
		_, err := w.Write([]byte("\r\n"))
		return err
	}
	return writeTrailers(w, trailers)
}

// writeTrailers writes trailer fields with both name and value
// lowercased, matching WriteHeaders in shape but also lowercasing each
// value.
func writeTrailers(w io.Writer, trailers *Headers) error {
	var writeErr error
	trailers.Iter(func(name, value string) bool {
		line := strings.ToLower(name) + ": " + strings.ToLower(value) + "\r\n"
		if _, err := w.Write([]byte(line)); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	if writeErr != nil {
		return writeErr
	}
	_, err := w.Write([]byte("\r\n"))
	return err
}

// HTMLResponse builds a fixed-length Response with content-type
// text/html and content-length set to len(html).
func HTMLResponse(code StatusCode, html string) *Response {
	headers := NewHeaders()
	headers.Insert("content-type", "text/html")
	headers.Insert("content-length", strconv.Itoa(len(html)))
	return &Response{
		Status:  code,
		Headers: headers,
		Body:    []byte(html),
	}
}

// WriteResponse emits a complete Response: status line, headers, then
// body, through a pooled buffer so a slow client doesn't hold the
// connection's write path in many small syscalls.
func WriteResponse(w io.Writer, resp *Response) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := WriteStatusLine(buf, resp.Status); err != nil {
		return err
	}
	if err := WriteHeaders(buf, resp.Headers); err != nil {
		return err
	}
	if _, err := buf.Write(resp.Body); err != nil {
		return err
	}

	_, err := w.Write(buf.B)
	return err
}
