package http11

import (
	"errors"
	"fmt"
)

// Sentinel parse errors. These are the error kinds the request state
// machine (C3), the header map (C1), and the request line parser (C2)
// can surface; the connection controller matches them with errors.Is
// to decide which status code to synthesize.
var (
	// ErrInvalidParserState indicates Parse was called while the state
	// machine held a value outside the four defined parse states.
	ErrInvalidParserState = errors.New("http11: parser is in an invalid state")

	// ErrMalformedRequestLine indicates the request line failed the
	// three-part "METHOD SP target SP HTTP/version" grammar.
	ErrMalformedRequestLine = errors.New("http11: request line is malformed")

	// ErrMalformedHeader indicates a header field failed RFC 9110 §5.6.2
	// token grammar or the "name: value" grammar.
	ErrMalformedHeader = errors.New("http11: header is malformed")

	// ErrInvalidHeaders indicates a header passed grammar but failed a
	// semantic check (e.g. an empty Host value).
	ErrInvalidHeaders = errors.New("http11: semantic header error")

	// ErrUnexpectedEOF indicates the peer closed the connection (or a
	// read returned 0 bytes) before the parser reached state Done.
	ErrUnexpectedEOF = errors.New("http11: unexpected EOF")

	// ErrInvalidBodyLength indicates the body is longer than
	// Content-Length declared, or trailing bytes followed state Done.
	ErrInvalidBodyLength = errors.New("http11: body length does not match Content-Length")

	// ErrParseError indicates Content-Length did not parse as a
	// non-negative base-10 integer.
	ErrParseError = errors.New("http11: failed to parse an integer field")

	// ErrContentTooLarge indicates the 8 MiB whole-request cap or the
	// 32 KiB header-block cap was exceeded.
	ErrContentTooLarge = errors.New("http11: request exceeds size limits")

	// ErrInternalInvariantViolated guards against states the state
	// machine believes cannot occur; surfacing it is a bug report, not
	// a client error.
	ErrInternalInvariantViolated = errors.New("http11: internal invariant violated")

	// ErrTimeout indicates the connection's read deadline elapsed
	// before a request finished parsing.
	ErrTimeout = errors.New("http11: timeout")
)

// UnsupportedVersionError reports a request line whose HTTP version is
// not "1.1". It carries the offending version string for logging.
type UnsupportedVersionError struct {
	Version string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("http11: unsupported HTTP version: %s", e.Version)
}

// InvalidMethodError reports a request line whose method token is not
// one of the nine allowed methods. It carries the offending token.
type InvalidMethodError struct {
	Method string
}

func (e *InvalidMethodError) Error() string {
	return fmt.Sprintf("http11: unsupported HTTP method: %s", e.Method)
}

// Response errors, surfaced by the emitter (C4) and its callers.
var (
	// ErrInvalidStatusCode indicates a status code outside the closed
	// set this server knows a reason phrase for.
	ErrInvalidStatusCode = errors.New("http11: invalid status code")
)
