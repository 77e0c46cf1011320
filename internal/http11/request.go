package http11

import (
	"io"
	"net"
	"strconv"
	"time"

	"github.com/valyala/bytebufferpool"
)

// ParseState enumerates the stages the request state machine passes
// through, in order. It is a tagged variant, not a class hierarchy:
// advancing state is a total function of (state, slice).
type ParseState int

const (
	// Initialized is the state before the request line has been parsed.
	Initialized ParseState = iota
	// ParseHeaders is the state while consuming the header block.
	ParseHeaders
	// ParseBody is the state while consuming the declared body.
	ParseBody
	// Done is the terminal state: the request is fully parsed.
	Done
)

func (s ParseState) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case ParseHeaders:
		return "parse-headers"
	case ParseBody:
		return "parse-body"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Request is an HTTP/1.1 request as reconstructed by the state
// machine. RequestLine and Headers are populated incrementally by
// Parse; Body is filled only once Content-Length is known.
type Request struct {
	state     ParseState
	bytesRead int

	RequestLine RequestLine
	Headers     *Headers
	Body        []byte
}

// State returns the request's current parse state.
func (r *Request) State() ParseState {
	return r.state
}

// BytesRead reports how many bytes ReadRequest has read off the
// connection for this request so far, whether or not the parser has
// consumed them yet. A caller that sees an error or timeout alongside
// BytesRead() == 0 knows the connection was still idle, waiting for a
// new request to begin, rather than partway through reading one.
func (r *Request) BytesRead() int {
	return r.bytesRead
}

// newRequest returns a Request ready to be driven through Parse,
// starting at state Initialized.
func newRequest() *Request {
	return &Request{
		state:   Initialized,
		Headers: NewHeaders(),
		Body:    nil,
	}
}

// Parse feeds one buffer slice to the state machine and reports how
// many leading bytes of data were consumed. It never blocks and never
// retains data beyond what it consumes; unconsumed bytes must be
// resubmitted (with more data appended) on the next call.
func (r *Request) Parse(data []byte) (consumed int, err error) {
	switch r.state {
	case Initialized:
		line, n, err := ParseRequestLine(data)
		if err != nil {
			return 0, err
		}
		if line == nil {
			return 0, nil
		}
		if line.HTTPVersion != "1.1" {
			return 0, &UnsupportedVersionError{Version: line.HTTPVersion}
		}
		r.RequestLine = *line
		r.state = ParseHeaders
		return n, nil

	case ParseHeaders:
		n, done, err := r.Headers.ParseHeader(data)
		if err != nil {
			return 0, err
		}
		if done {
			r.state = ParseBody
		}
		return n, nil

	case ParseBody:
		raw, ok := r.Headers.Get("content-length")
		if !ok {
			r.state = Done
			return 0, nil
		}

		contentLength, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return 0, ErrParseError
		}

		alreadyReceived := uint64(len(r.Body))
		if alreadyReceived > contentLength {
			return 0, ErrInvalidBodyLength
		}

		remaining := contentLength - alreadyReceived
		toTake := remaining
		if uint64(len(data)) < toTake {
			toTake = uint64(len(data))
		}

		// The client sent more body than it declared: a hard protocol
		// error, not a recoverable short read.
		if toTake < uint64(len(data)) {
			return 0, ErrInvalidBodyLength
		}

		r.Body = append(r.Body, data[:toTake]...)

		if uint64(len(r.Body)) < contentLength {
			return int(toTake), nil
		}
		r.state = Done
		return int(toTake), nil

	case Done:
		if len(data) != 0 {
			return 0, ErrInvalidBodyLength
		}
		return 0, nil

	default:
		return 0, ErrInvalidParserState
	}
}

// Driver constants: the read-request deadline, the whole-request and
// header-block size caps, and the scratch read size. The scratch size
// is not load-bearing — any size ≥1 byte works as long as the driver
// loops until it makes progress.
const (
	readRequestTimeout = 30 * time.Second
	maxRequestBytes    = 8 << 20  // 8 MiB
	maxHeaderBytes     = 32 << 10 // 32 KiB
	scratchSize        = 64
)

// DeadlineConn is the minimal surface ReadRequest needs from a
// connection: byte reads, plus the ability to extend its own read
// deadline. Depending on this instead of net.Conn keeps the parser
// package testable with plain io.Readers wrapped in a deadline no-op.
type DeadlineConn interface {
	io.Reader
	SetReadDeadline(t time.Time) error
}

// ReadRequest drives Request.Parse to completion against conn. It owns
// a growing buffer and a fixed scratch read buffer, tolerating
// fragmentation at any byte boundary (mid request-line, mid header,
// mid CRLF, mid body).
func ReadRequest(conn DeadlineConn) (*Request, error) {
	if err := conn.SetReadDeadline(time.Now().Add(readRequestTimeout)); err != nil {
		return nil, err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	req := newRequest()
	scratch := make([]byte, scratchSize)

	var totalBytesRead, headerBytesRead int

	for {
		stateBeforeParse := req.state

		parsed, err := req.Parse(buf.B)
		if err != nil {
			return req, err
		}

		if parsed > 0 {
			if stateBeforeParse == ParseHeaders {
				headerBytesRead += parsed
				if headerBytesRead > maxHeaderBytes {
					return req, ErrContentTooLarge
				}
			}
			buf.B = buf.B[:copy(buf.B, buf.B[parsed:])]
			continue
		}

		if req.state == Done {
			return req, nil
		}

		n, err := conn.Read(scratch)
		if n == 0 {
			if req.state == Done {
				return req, nil
			}
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				return req, ErrTimeout
			}
			if err != nil && err != io.EOF {
				return req, err
			}
			return req, ErrUnexpectedEOF
		}

		totalBytesRead += n
		req.bytesRead = totalBytesRead
		if totalBytesRead > maxRequestBytes {
			return req, ErrContentTooLarge
		}

		buf.B = append(buf.B, scratch[:n]...)
	}
}
