package internal

import (
	"bufio"
	"net"
	"net/http"
	"sync"
)

// ResponseWriter wraps the response of a request cycle. It runs hooks before
// the first byte goes out (the session cookie is written that way), records
// status and size for the request log and answers htmx requests with 200 so
// the swap happens.
type ResponseWriter struct {
	http.ResponseWriter
	mu          sync.Mutex
	status      int
	size        int64
	written     bool
	isHTMX      bool
	beforeWrite []func()
}

// NewResponseWriter creates a new ResponseWriter.
func NewResponseWriter(w http.ResponseWriter, isHTMX bool) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		status:         http.StatusOK,
		isHTMX:         isHTMX,
	}
}

// OnBeforeWrite registers a hook to run once before the headers are sent.
func (w *ResponseWriter) OnBeforeWrite(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.beforeWrite = append(w.beforeWrite, fn)
}

// begin marks the response written and runs the hooks. It reports false
// when the headers were already sent.
func (w *ResponseWriter) begin(code int) bool {
	w.mu.Lock()
	if w.written {
		w.mu.Unlock()
		return false
	}
	w.written = true
	w.status = code
	hooks := w.beforeWrite
	w.beforeWrite = nil
	w.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	return true
}

// WriteHeader sends the status code. htmx requests get 200 for any status.
func (w *ResponseWriter) WriteHeader(code int) {
	if !w.begin(code) {
		return
	}
	if w.isHTMX && code != http.StatusOK {
		code = http.StatusOK
	}
	w.ResponseWriter.WriteHeader(code)
}

// Write writes the body, sending a 200 header first if none was sent.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	if w.begin(http.StatusOK) {
		w.ResponseWriter.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.mu.Lock()
	w.size += int64(n)
	w.mu.Unlock()
	return n, err
}

// Status returns the status code written, before the htmx rewrite.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Size returns the number of body bytes written.
func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Written reports whether the headers were sent.
func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Flush implements http.Flusher.
func (w *ResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack implements http.Hijacker.
func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Unwrap returns the wrapped writer for http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
