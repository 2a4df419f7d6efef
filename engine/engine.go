// Package engine drives a user through the required legal documents, one at
// a time, before onboarding is considered complete. It is UI-agnostic: the
// surrounding registration flow feeds it scroll progress and accept actions
// and renders whatever Current() returns.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type State int

const (
	StateLoading State = iota
	StatePresenting
	StateSigning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePresenting:
		return "presenting"
	case StateSigning:
		return "signing"
	case StateCompleted:
		return "completed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrAlreadySigned is returned by API implementations when the server
	// already holds a signature for the pair. The engine treats it as
	// success (the work was already done).
	ErrAlreadySigned = errors.New("document already signed")

	// ErrDocumentNotFound signals client/server desync; fatal for the
	// current document.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrUnauthorized terminates the acceptance session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrReadingIncomplete is returned by Accept before the reading gate
	// (scroll threshold or fallback timer) has opened.
	ErrReadingIncomplete = errors.New("reading gate not yet open")

	// ErrNoSkipAhead is returned by Forward when the current document is
	// unsigned.
	ErrNoSkipAhead = errors.New("cannot skip ahead of an unsigned document")

	errNotPresenting = errors.New("no document currently presented")
)

// Document is one required document as seen by the engine. Simulated marks a
// signature recorded locally in degraded mode; it is never a server-confirmed
// signature.
type Document struct {
	ID        uint
	Slug      string
	Title     string
	Content   string
	Version   string
	IsSigned  bool
	SignedAt  *time.Time
	Simulated bool
}

// SignatureData identifies the signer on a sign call.
type SignatureData struct {
	Name     string
	Email    string
	SignedAt time.Time
}

// SignResult is the server acknowledgement of a recorded signature.
type SignResult struct {
	SignatureID uint
}

// API is the server contract the engine talks to.
type API interface {
	FetchRequired(ctx context.Context) ([]Document, error)
	Sign(ctx context.Context, documentID uint, data SignatureData) (SignResult, error)
}

// Signer is the person walking through the documents.
type Signer struct {
	Name  string
	Email string
}

type Config struct {
	// ReadThreshold is the scroll-position ratio that opens the accept
	// gate. Zero means the default of 0.10.
	ReadThreshold float64
	// ReadTimeout opens the gate even without scrolling, so short
	// documents and slow connections don't block the flow. Zero means
	// the default of 3s.
	ReadTimeout time.Duration
	// AdvanceDelay is how long callers should keep the success state
	// visible before rendering the next document. The engine itself
	// advances immediately; this is purely for the UI.
	AdvanceDelay time.Duration
}

const (
	defaultReadThreshold = 0.10
	defaultReadTimeout   = 3 * time.Second
	defaultAdvanceDelay  = 600 * time.Millisecond
)

// Engine is the sequential acceptance state machine. It is not safe for
// concurrent use; drive it from a single goroutine the way a UI event loop
// would.
type Engine struct {
	// Clock is overridable for tests.
	Clock func() time.Time

	api    API
	signer Signer
	cfg    Config

	state       State
	docs        []Document
	current     int
	degraded    bool
	presentedAt time.Time
	scrollRatio float64

	onCompleted     func()
	completionFired bool
}

func New(api API, signer Signer, cfg Config) *Engine {
	if cfg.ReadThreshold <= 0 {
		cfg.ReadThreshold = defaultReadThreshold
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.AdvanceDelay <= 0 {
		cfg.AdvanceDelay = defaultAdvanceDelay
	}
	return &Engine{
		Clock:  time.Now,
		api:    api,
		signer: signer,
		cfg:    cfg,
		state:  StateLoading,
	}
}

// OnCompleted registers the completion callback. It fires exactly once, when
// every required document is signed.
func (e *Engine) OnCompleted(fn func()) {
	e.onCompleted = fn
}

// Start fetches the required set merged with the signer's existing signature
// status and presents the first unsigned document. If the fetch fails the
// engine falls back to the bundled document set and switches to degraded
// mode instead of blocking onboarding.
func (e *Engine) Start(ctx context.Context) error {
	docs, err := e.api.FetchRequired(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return err
		}
		docs = FallbackDocuments()
		e.degraded = true
	}

	// order is the server's; never re-sort
	e.docs = docs

	if len(e.docs) == 0 || e.allSigned() {
		e.complete()
		return nil
	}

	e.current = e.firstUnsigned()
	e.present(e.current)
	return nil
}

// Current returns the presented document and its index. The bool is false
// before Start and after completion of an empty set.
func (e *Engine) Current() (Document, int, bool) {
	if len(e.docs) == 0 || e.current < 0 || e.current >= len(e.docs) {
		return Document{}, 0, false
	}
	return e.docs[e.current], e.current, true
}

func (e *Engine) State() State   { return e.state }
func (e *Engine) Degraded() bool { return e.degraded }

// AdvanceDelay is how long the UI should keep the post-sign success state
// visible before rendering the next document.
func (e *Engine) AdvanceDelay() time.Duration { return e.cfg.AdvanceDelay }

func (e *Engine) Documents() []Document {
	out := make([]Document, len(e.docs))
	copy(out, e.docs)
	return out
}

// ReportScroll feeds the reading-progress indicator. Ratio is the scroll
// position in [0,1]; the engine keeps the maximum seen for the current
// document.
func (e *Engine) ReportScroll(ratio float64) {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	if ratio > e.scrollRatio {
		e.scrollRatio = ratio
	}
}

// CanAccept reports whether the accept action is enabled for the presented
// document: the scroll threshold was crossed or the fallback timer elapsed,
// whichever came first.
func (e *Engine) CanAccept() bool {
	if e.state != StatePresenting {
		return false
	}
	if e.docs[e.current].IsSigned {
		return false
	}
	if e.scrollRatio >= e.cfg.ReadThreshold {
		return true
	}
	return e.Clock().Sub(e.presentedAt) >= e.cfg.ReadTimeout
}

// Accept records the user's acceptance of the presented document. On API
// failure the engine stays on the document and the action can be retried;
// an accept is never silently dropped. AlreadySigned from the server counts
// as success so an interrupted session resumes cleanly.
func (e *Engine) Accept(ctx context.Context) error {
	if e.state != StatePresenting {
		return errNotPresenting
	}
	doc := &e.docs[e.current]
	if doc.IsSigned {
		return ErrAlreadySigned
	}
	if !e.CanAccept() {
		return ErrReadingIncomplete
	}

	e.state = StateSigning

	now := e.Clock().UTC()
	if e.degraded {
		// offline fallback: record locally, flagged so it can never be
		// confused with a server-confirmed signature
		doc.IsSigned = true
		doc.Simulated = true
		doc.SignedAt = &now
		e.advance()
		return nil
	}

	_, err := e.api.Sign(ctx, doc.ID, SignatureData{
		Name:     e.signer.Name,
		Email:    e.signer.Email,
		SignedAt: now,
	})
	if err != nil && !errors.Is(err, ErrAlreadySigned) {
		// back to presenting; the gate stays open so retry is immediate
		e.state = StatePresenting
		return fmt.Errorf("sign document %d: %w", doc.ID, err)
	}

	doc.IsSigned = true
	doc.SignedAt = &now
	e.advance()
	return nil
}

// Back moves to the previous document. Always permitted above index 0.
func (e *Engine) Back() bool {
	if e.state != StatePresenting || e.current == 0 {
		return false
	}
	e.current--
	e.present(e.current)
	return true
}

// Forward moves past the current document, permitted only once it is signed.
// From the last document it runs the completion check instead.
func (e *Engine) Forward() error {
	if e.state != StatePresenting {
		return errNotPresenting
	}
	if !e.docs[e.current].IsSigned {
		return ErrNoSkipAhead
	}
	if e.current == len(e.docs)-1 {
		if e.allSigned() {
			e.complete()
		}
		return nil
	}
	e.current++
	e.present(e.current)
	return nil
}

// Progress returns the signed percentage rounded for display. Completion
// logic never uses this; see IsComplete.
func (e *Engine) Progress() int {
	if len(e.docs) == 0 {
		return 100
	}
	return int(float64(e.signedCount())/float64(len(e.docs))*100 + 0.5)
}

func (e *Engine) SignedCount() int { return e.signedCount() }

// IsComplete uses exact set comparison, never the rounded percentage.
func (e *Engine) IsComplete() bool { return e.allSigned() }

// Complete is idempotent: the callback fires at most once regardless of how
// many paths signal completion.
func (e *Engine) Complete() {
	if !e.allSigned() {
		return
	}
	e.complete()
}

func (e *Engine) present(i int) {
	e.state = StatePresenting
	e.current = i
	e.scrollRatio = 0
	e.presentedAt = e.Clock()
}

func (e *Engine) advance() {
	if e.allSigned() {
		e.complete()
		return
	}
	if e.current < len(e.docs)-1 {
		e.present(e.current + 1)
		return
	}
	// last document signed but earlier ones skipped via Back; jump to the
	// first unsigned one
	e.present(e.firstUnsigned())
}

func (e *Engine) complete() {
	e.state = StateCompleted
	if e.completionFired {
		return
	}
	e.completionFired = true
	if e.onCompleted != nil {
		e.onCompleted()
	}
}

func (e *Engine) firstUnsigned() int {
	for i := range e.docs {
		if !e.docs[i].IsSigned {
			return i
		}
	}
	return 0
}

func (e *Engine) signedCount() int {
	n := 0
	for i := range e.docs {
		if e.docs[i].IsSigned {
			n++
		}
	}
	return n
}

func (e *Engine) allSigned() bool {
	return e.signedCount() == len(e.docs)
}
