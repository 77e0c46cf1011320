package httpserver

import (
	"bufio"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wattlabs/originhttp/internal/http11"
)

func dial(t *testing.T, addr net.Addr) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr.String(), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestServe_MinimalGET(t *testing.T) {
	handler := HandlerFunc(func(req *http11.Request, sink io.Writer) (*http11.Response, error) {
		if req.RequestLine.RequestTarget != "/" {
			t.Errorf("target = %q", req.RequestLine.RequestTarget)
		}
		return http11.HTMLResponse(http11.StatusOK, "<html>hi</html>"), nil
	})

	handle, err := Serve(0, handler, WithSocketTuning(false))
	if err != nil {
		t.Fatalf("Serve: %v", err)
	}
	defer handle.Close()

	conn := dial(t, handle.Addr())
	defer conn.Close()

	conn.Write([]byte("GET / HTTP/1.1\r\nHost: localhost\r\nConnection: close\r\n\r\n"))

	reader := bufio.NewReader(conn)
	statusLine, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read status line: %v", err)
	}
	if !strings.HasPrefix(statusLine, "HTTP/1.1 200 OK") {
		t.Errorf("status line = %q", statusLine)
	}
}

func TestServe_KeepAliveReusesConnection(t *testing.T) {
	handler := HandlerFunc(func(req *http11.Request, sink io.Writer) (*http11.Response, error) {
		return http11.HTMLResponse(http11.StatusOK, "<html>ok</html>"), nil
	})

	handle, err := Serve(0, handler, WithSocketTuning(false))
	if err != nil {
		t.Fatalf("Serve: %v", err)
	}
	defer handle.Close()

	conn := dial(t, handle.Addr())
	defer conn.Close()
	reader := bufio.NewReader(conn)

	for i := 0; i < 2; i++ {
		conn.Write([]byte("GET /again HTTP/1.1\r\nHost: localhost\r\n\r\n"))
		statusLine, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("request %d: read status line: %v", i, err)
		}
		if !strings.HasPrefix(statusLine, "HTTP/1.1 200 OK") {
			t.Fatalf("request %d: status line = %q", i, statusLine)
		}

		contentLength := 0
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("request %d: read header: %v", i, err)
			}
			if line == "\r\n" {
				break
			}
			if name, value, ok := strings.Cut(line, ":"); ok && strings.EqualFold(strings.TrimSpace(name), "content-length") {
				contentLength = atoiOrFatal(t, strings.TrimSpace(value))
			}
		}

		body := make([]byte, contentLength)
		if _, err := io.ReadFull(reader, body); err != nil {
			t.Fatalf("request %d: read body: %v", i, err)
		}
	}
}

func atoiOrFatal(t *testing.T, s string) int {
	t.Helper()
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			t.Fatalf("not a number: %q", s)
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func TestServe_MalformedRequestGets400(t *testing.T) {
	handler := HandlerFunc(func(req *http11.Request, sink io.Writer) (*http11.Response, error) {
		t.Fatal("handler should not run for a malformed request")
		return nil, nil
	})

	handle, err := Serve(0, handler, WithSocketTuning(false))
	if err != nil {
		t.Fatalf("Serve: %v", err)
	}
	defer handle.Close()

	conn := dial(t, handle.Addr())
	defer conn.Close()

	conn.Write([]byte("GET / HTTP/9.9\r\nHost: localhost\r\n\r\n"))

	reader := bufio.NewReader(conn)
	statusLine, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read status line: %v", err)
	}
	if !strings.HasPrefix(statusLine, "HTTP/1.1 400 Bad Request") {
		t.Errorf("status line = %q", statusLine)
	}
}

func TestServe_PeerCloseEndsLoopSilently(t *testing.T) {
	handler := HandlerFunc(func(req *http11.Request, sink io.Writer) (*http11.Response, error) {
		return http11.HTMLResponse(http11.StatusOK, "ok"), nil
	})

	handle, err := Serve(0, handler, WithSocketTuning(false))
	if err != nil {
		t.Fatalf("Serve: %v", err)
	}
	defer handle.Close()

	conn := dial(t, handle.Addr())
	conn.Close()

	// Nothing to assert beyond "the server doesn't crash": the
	// per-connection loop should observe UnexpectedEOF and return.
	time.Sleep(50 * time.Millisecond)
}

func TestServe_ConcurrentGETs(t *testing.T) {
	handler := HandlerFunc(func(req *http11.Request, sink io.Writer) (*http11.Response, error) {
		return http11.HTMLResponse(http11.StatusOK, "<html>ok</html>"), nil
	})

	handle, err := Serve(0, handler, WithSocketTuning(false))
	if err != nil {
		t.Fatalf("Serve: %v", err)
	}
	defer handle.Close()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			conn := dial(t, handle.Addr())
			defer conn.Close()
			conn.Write([]byte("GET /test HTTP/1.1\r\nHost: localhost\r\nConnection: close\r\n\r\n"))
			reader := bufio.NewReader(conn)
			statusLine, err := reader.ReadString('\n')
			if err != nil {
				errs <- err
				return
			}
			if !strings.HasPrefix(statusLine, "HTTP/1.1 200") {
				errs <- errFromStatus(statusLine)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("20 concurrent GETs did not all complete within 1 second")
	}
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func errFromStatus(statusLine string) error {
	return &unexpectedStatusError{statusLine}
}

type unexpectedStatusError struct{ line string }

func (e *unexpectedStatusError) Error() string {
	return "unexpected status line: " + strings.TrimSpace(e.line)
}

func TestServe_StreamingHandlerClosesAfterwards(t *testing.T) {
	handler := HandlerFunc(func(req *http11.Request, sink io.Writer) (*http11.Response, error) {
		if err := http11.WriteChunkedBody(sink, []byte("streamed")); err != nil {
			return nil, err
		}
		if err := http11.WriteFinalBodyChunk(sink, nil); err != nil {
			return nil, err
		}
		return nil, nil
	})

	handle, err := Serve(0, handler, WithSocketTuning(false))
	if err != nil {
		t.Fatalf("Serve: %v", err)
	}
	defer handle.Close()

	conn := dial(t, handle.Addr())
	defer conn.Close()

	conn.Write([]byte("GET /stream HTTP/1.1\r\nHost: localhost\r\n\r\n"))

	all, _ := io.ReadAll(conn)
	if !strings.Contains(string(all), "streamed") {
		t.Errorf("expected streamed body in %q", all)
	}
}
