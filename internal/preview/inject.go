package preview

import (
	"bytes"
	"net/http"
	"strings"
)

const (
	maxInjectBuffer = 512 * 1024
	scriptTag       = `<script async src="/livereload.js"></script>`
)

// injectLiveReload adds the live-reload client script to HTML pages.
func injectLiveReload(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if p != "/" && p != "" && !strings.HasSuffix(p, "/") && !strings.HasSuffix(p, ".html") {
			next.ServeHTTP(w, r)
			return
		}
		injector := newLiveReloadInjector(w)
		next.ServeHTTP(injector, r)
		injector.finalize()
	})
}

// noCache disables browser caching so rebuilt pages are always refetched.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// liveReloadInjector buffers an HTML response up to maxSize and inserts the
// script before </body>. Larger or non-HTML responses pass through untouched.
type liveReloadInjector struct {
	http.ResponseWriter
	statusCode    int
	buffer        []byte
	headerWritten bool
	passthrough   bool
	maxSize       int
}

func newLiveReloadInjector(w http.ResponseWriter) *liveReloadInjector {
	return &liveReloadInjector{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
		maxSize:        maxInjectBuffer,
	}
}

func (l *liveReloadInjector) WriteHeader(code int) {
	l.statusCode = code
	if l.passthrough {
		l.ResponseWriter.WriteHeader(code)
		l.headerWritten = true
	}
}

func (l *liveReloadInjector) Write(data []byte) (int, error) {
	if !l.headerWritten && !l.passthrough && l.buffer == nil {
		contentType := l.Header().Get("Content-Type")
		if contentType != "" && !strings.Contains(contentType, "text/html") {
			l.startPassthrough()
			return l.ResponseWriter.Write(data)
		}
		l.buffer = make([]byte, 0, 64*1024)
	}
	if l.passthrough {
		return l.ResponseWriter.Write(data)
	}
	if len(l.buffer)+len(data) > l.maxSize {
		l.Header().Del("Content-Length")
		l.startPassthrough()
		if len(l.buffer) > 0 {
			if _, err := l.ResponseWriter.Write(l.buffer); err != nil {
				return 0, err
			}
			l.buffer = nil
		}
		return l.ResponseWriter.Write(data)
	}
	l.buffer = append(l.buffer, data...)
	return len(data), nil
}

func (l *liveReloadInjector) startPassthrough() {
	l.passthrough = true
	l.ResponseWriter.WriteHeader(l.statusCode)
	l.headerWritten = true
}

// finalize must run after the wrapped handler returns.
func (l *liveReloadInjector) finalize() {
	if l.passthrough || len(l.buffer) == 0 {
		if !l.headerWritten {
			l.ResponseWriter.WriteHeader(l.statusCode)
		}
		return
	}
	body := l.buffer
	if i := bytes.LastIndex(body, []byte("</body>")); i >= 0 {
		out := make([]byte, 0, len(body)+len(scriptTag))
		out = append(out, body[:i]...)
		out = append(out, scriptTag...)
		out = append(out, body[i:]...)
		body = out
	}
	l.Header().Del("Content-Length")
	l.ResponseWriter.WriteHeader(l.statusCode)
	_, _ = l.ResponseWriter.Write(body)
}
