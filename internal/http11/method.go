package http11

// IsValidMethod reports whether method is one of the nine tokens this
// server accepts on a request line, compared with exact ASCII case.
// The switch is grouped by token length first, then compares the
// candidates of that length.
func IsValidMethod(method string) bool {
	switch len(method) {
	case 3:
		return method == "GET" || method == "PUT"
	case 4:
		return method == "POST" || method == "HEAD"
	case 5:
		return method == "PATCH" || method == "TRACE"
	case 6:
		return method == "DELETE"
	case 7:
		return method == "OPTIONS" || method == "CONNECT"
	default:
		return false
	}
}
