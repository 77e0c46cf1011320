package http11

import "strings"

// RequestLine holds the three tokens of an HTTP/1.1 request line.
type RequestLine struct {
	Method        string
	RequestTarget string
	HTTPVersion   string
}

// ParseRequestLine parses "METHOD SP request-target SP HTTP/version CRLF"
// from the start of data.
//
// If data contains no CRLF, it returns (nil, 0, nil): the caller must
// read more bytes before trying again. Otherwise it returns the parsed
// line and the number of bytes through and including the line's CRLF,
// or a non-nil error if the line is present but malformed.
func ParseRequestLine(data []byte) (*RequestLine, int, error) {
	s := string(data)

	idx := strings.Index(s, "\r\n")
	if idx < 0 {
		return nil, 0, nil
	}

	first := s[:idx]
	parts := strings.Split(first, " ")
	// Splitting on a single space and requiring exactly three parts
	// rejects extra spaces, tabs, and missing fields in one rule.
	if len(parts) != 3 {
		return nil, 0, ErrMalformedRequestLine
	}

	method := parts[0]
	target := parts[1]
	version, ok := strings.CutPrefix(parts[2], "HTTP/")
	if !ok {
		return nil, 0, ErrMalformedRequestLine
	}

	if !IsValidMethod(method) {
		return nil, 0, &InvalidMethodError{Method: method}
	}

	return &RequestLine{
		Method:        method,
		RequestTarget: target,
		HTTPVersion:   version,
	}, len(first) + crlfLen, nil
}
