package http11

import "strings"

// criticalHeaders are the field names for which the peer supplying the
// same header more than once is disallowed (RFC 9110 §5.3 treats
// combining these specially, and combining them silently would hide a
// request-smuggling-style ambiguity).
var criticalHeaders = [...]string{"host", "content-length", "transfer-encoding", "connection"}

// Headers is a multi-valued HTTP field store. Field names read by
// ParseHeader are canonicalized to ASCII lowercase; Insert, Append and
// Get use the name exactly as given. Repeated values for one name are
// combined with ", " in insertion order.
//
// Iteration order across distinct names is unspecified; callers MUST
// NOT depend on it.
type Headers struct {
	m map[string]string
}

// NewHeaders returns an empty Headers map.
func NewHeaders() *Headers {
	return &Headers{m: make(map[string]string)}
}

// Insert overwrites any prior binding for name with value.
func (h *Headers) Insert(name, value string) {
	if h.m == nil {
		h.m = make(map[string]string)
	}
	h.m[name] = value
}

// Append combines value onto any existing binding for name using the
// ", " separator. If name has no prior binding, it is inserted as-is.
// An existing but empty value is replaced rather than prefixed with
// the separator, so append never produces a leading ", ".
func (h *Headers) Append(name, value string) {
	if h.m == nil {
		h.m = make(map[string]string)
	}
	existing, ok := h.m[name]
	if !ok {
		h.m[name] = value
		return
	}
	if existing == "" {
		h.m[name] = value
		return
	}
	h.m[name] = existing + ", " + value
}

// Get looks up the already-lowercased name.
func (h *Headers) Get(name string) (string, bool) {
	v, ok := h.m[name]
	return v, ok
}

// Len returns the number of distinct field names stored.
func (h *Headers) Len() int {
	return len(h.m)
}

// IsEmpty reports whether the map has no fields.
func (h *Headers) IsEmpty() bool {
	return len(h.m) == 0
}

// Iter calls fn once for every (name, value) pair. Iteration order is
// unspecified. Returning false from fn stops iteration early.
func (h *Headers) Iter(fn func(name, value string) bool) {
	for name, value := range h.m {
		if !fn(name, value) {
			return
		}
	}
}

// DuplicateHeaders reports whether any critical header (host,
// content-length, transfer-encoding, connection) carries a combined
// value, which only happens when the peer sent it more than once.
func (h *Headers) DuplicateHeaders() bool {
	for _, name := range criticalHeaders {
		if v, ok := h.m[name]; ok && strings.Contains(v, ", ") {
			return true
		}
	}
	return false
}

// crlfLen is the byte length of a CRLF line terminator.
const crlfLen = 2

// ParseHeader is the restartable header-block parser. It is invoked
// repeatedly with a growing buffer that starts at the first unconsumed
// byte after the request line:
//
//   - If the buffer contains "\r\n\r\n", the whole header block is
//     present: every line up to the blank line is parsed, and
//     (bytesThroughBlankLine, true) is returned.
//   - Else if the buffer contains at least one "\r\n", every complete
//     line (all but a trailing partial line) is parsed and
//     (bytesConsumed, false) is returned; the caller must retain the
//     unterminated tail for the next call. A buffer that begins with
//     "\r\n" is an empty header block and returns (2, true).
//   - Else nothing is consumed: (0, false).
func (h *Headers) ParseHeader(data []byte) (consumed int, done bool, err error) {
	s := string(data)

	if strings.Contains(s, "\r\n\r\n") {
		lines := strings.Split(s, "\r\n")
		lineLength := 0
		for _, line := range lines {
			if line == "" {
				lineLength += crlfLen
				break
			}
			lineLength += len(line) + crlfLen
			if err := h.createHeaderFromString(line); err != nil {
				return 0, false, err
			}
		}
		return lineLength, true, nil
	}

	if idx := strings.LastIndex(s, "\r\n"); idx >= 0 && strings.Contains(s, "\r\n") {
		base := s[:idx]
		lineLength := 0
		for _, line := range strings.Split(base, "\r\n") {
			if line == "" {
				lineLength += crlfLen
				return lineLength, true, nil
			}
			lineLength += len(line) + crlfLen
			if err := h.createHeaderFromString(line); err != nil {
				return 0, false, err
			}
		}
		return lineLength, false, nil
	}

	return 0, false, nil
}

func (h *Headers) createHeaderFromString(line string) error {
	trimmed := strings.TrimSpace(line)
	key, value, ok := strings.Cut(trimmed, ":")
	if !ok {
		return ErrMalformedHeader
	}
	value = strings.TrimSpace(value)

	if strings.Contains(key, " ") {
		return ErrMalformedHeader
	}
	for _, c := range key {
		if !isValidHeaderChar(c) {
			return ErrMalformedHeader
		}
	}

	lowerKey := strings.ToLower(key)

	// Emptiness check intentionally runs on the pre-lowercase key, so it
	// only fires for exact "host" casing.
	if key == "host" && value == "" {
		return ErrInvalidHeaders
	}

	if _, exists := h.m[lowerKey]; exists {
		h.Append(lowerKey, value)
	} else {
		h.Insert(lowerKey, value)
	}
	return nil
}

// isValidHeaderChar implements the RFC 9110 §5.6.2 token grammar:
// ASCII alphanumeric or one of "!#$%&'*+-.^_`|~".
func isValidHeaderChar(c rune) bool {
	if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}
