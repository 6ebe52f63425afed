// Package bodyfilter wires internal/replace into an http.Handler the way a
// reverse proxy would: it inspects the wrapped response's headers at the
// first write, decides whether this response's MIME type and encoding are
// eligible, and if so feeds every subsequent Write through a
// replace.Context before it ever reaches the real client.
//
// Modeled on the teacher's internal/io/bufferedcopy and
// internal/io/bufferedpipe for the shape of "something sits between two
// streams", generalized here to sit between a handler and its
// http.ResponseWriter instead of between two io.ReadWriters.
package bodyfilter

import (
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/replacefilter/replacefilter/internal/config"
	"github.com/replacefilter/replacefilter/internal/errors"
	"github.com/replacefilter/replacefilter/internal/logger"
	"github.com/replacefilter/replacefilter/internal/regex"
	"github.com/replacefilter/replacefilter/internal/replace"
)

// Filter is a compiled, ready-to-wrap replace_filter instance.
type Filter struct {
	prog        *regex.Program
	replacement []byte
	global      bool
	types       map[string]bool
}

// New compiles cfg's pattern and builds a Filter scoped to the given MIME
// types (already merged per config.Merge's inheritance rules).
func New(cfg config.ReplaceFilter, types []string) (*Filter, error) {
	if cfg.Empty() {
		return nil, errors.Wrap(errors.ErrEmptyPattern, "bodyfilter.New")
	}

	flags, err := regex.ParseFlags(cfg.Flags)
	if err != nil {
		return nil, err
	}
	prog, err := regex.Compile(cfg.Pattern, flags)
	if err != nil {
		return nil, err
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[strings.ToLower(t)] = true
	}

	return &Filter{
		prog:        prog,
		replacement: []byte(cfg.Replacement),
		global:      flags.Global,
		types:       typeSet,
	}, nil
}

// Wrap returns an http.Handler that runs next and rewrites its response
// body in place whenever the response's Content-Type matches f's
// configured MIME set and Content-Encoding is absent or identity.
func (f *Filter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := &decorator{ResponseWriter: w, filter: f, requestID: uuid.New()}
		next.ServeHTTP(d, r)
		d.finish()
	})
}

// decorator intercepts Write/WriteHeader to gate and run the body filter.
// It implements the §6 "OnHeaders" / "OnBody" split as two methods of one
// http.ResponseWriter decorator rather than two separate callbacks, since
// net/http only exposes one write path.
type decorator struct {
	http.ResponseWriter
	filter *Filter

	requestID uuid.UUID

	headerChecked bool
	active        bool
	ctx           *replace.Context
}

// WriteHeader triggers the one-time header inspection before the real
// status line goes out, in case the handler never calls Write at all.
func (d *decorator) WriteHeader(status int) {
	d.checkHeaders()
	d.ResponseWriter.WriteHeader(status)
}

// Write triggers header inspection on the first call (a handler that never
// calls WriteHeader gets an implicit 200, same as the standard library),
// then either runs the filter or passes bytes straight through.
func (d *decorator) Write(p []byte) (int, error) {
	d.checkHeaders()

	if !d.active {
		return d.ResponseWriter.Write(p)
	}

	out, status, err := d.ctx.Feed(p, false, false)
	if err != nil {
		logger.Error("bodyfilter", d.requestID, err)
		d.active = false
		return d.ResponseWriter.Write(p)
	}
	if len(out) > 0 {
		if _, werr := d.ResponseWriter.Write(out); werr != nil {
			return 0, werr
		}
	}
	if status == replace.StatusDeclined {
		d.active = false
	}
	return len(p), nil
}

// finish flushes any bytes the filter is still holding once the handler
// has returned, the "last_buf" signal in the stream-cursor model.
func (d *decorator) finish() {
	if !d.active || d.ctx == nil {
		return
	}
	out, _, err := d.ctx.Feed(nil, false, true)
	if err != nil {
		logger.Error("bodyfilter", d.requestID, err)
		return
	}
	if len(out) > 0 {
		d.ResponseWriter.Write(out)
	}
}

// checkHeaders runs once per response: it decides eligibility and, if
// eligible, clears Content-Length/Last-Modified the way the original
// filter module does once it commits to rewriting a response whose length
// it can no longer predict.
func (d *decorator) checkHeaders() {
	if d.headerChecked {
		return
	}
	d.headerChecked = true

	h := d.Header()
	if !d.eligible(h) {
		return
	}

	d.active = true
	d.ctx = replace.NewContext(d.filter.prog, d.filter.replacement, d.filter.global)
	h.Del("Content-Length")
	h.Del("Last-Modified")
	h.Set("X-Replace-Filter-Request-Id", d.requestID.String())
}

// eligible implements the two supplemented gating rules from SPEC_FULL §11:
// Content-Encoding must be absent or identity, and Content-Type must match
// one of the configured MIME types (parameters like charset are ignored).
// A response with no Content-Length (chunked / unknown length) is still
// eligible — the original only skips clearing a length it never set. A
// response that declares a Content-Length of 0 is not eligible.
func (d *decorator) eligible(h http.Header) bool {
	if enc := h.Get("Content-Encoding"); enc != "" && !strings.EqualFold(enc, "identity") {
		return false
	}
	if h.Get("Content-Length") == "0" {
		return false
	}

	ct := h.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.SplitN(ct, ";", 2)[0]))
	}
	return d.filter.types[mediaType]
}
