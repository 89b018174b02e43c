package source

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/FocuswithJustin/ChronoVerse/core/ref"
	"github.com/FocuswithJustin/ChronoVerse/internal/logging"
	"github.com/FocuswithJustin/ChronoVerse/internal/store"
)

// DefaultTimeout bounds each remote adapter attempt when no timeout is
// configured.
const DefaultTimeout = 15 * time.Second

// Executor runs the per-translation fallback chains. Adapters are tried
// strictly in order; failures are absorbed and the terminal fallback
// guarantees every fetch returns displayable text.
type Executor struct {
	store    *store.Store
	timeout  time.Duration
	terminal Source

	chains       map[string][]Source
	defaultChain []Source

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewExecutor creates an Executor. A non-positive timeout falls back to
// DefaultTimeout. The terminal fallback is always appended behavior: it
// runs even when a chain omits it.
func NewExecutor(store *store.Store, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{
		store:    store,
		timeout:  timeout,
		terminal: NewStatic(),
		chains:   make(map[string][]Source),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Register installs the adapter chain for a translation code.
func (e *Executor) Register(translation string, chain []Source) {
	e.chains[strings.ToLower(translation)] = chain
}

// SetDefaultChain installs the chain used for translations without a
// registered chain of their own.
func (e *Executor) SetDefaultChain(chain []Source) {
	e.defaultChain = chain
}

// Translations returns the translation codes with a registered chain.
func (e *Executor) Translations() []string {
	codes := make([]string, 0, len(e.chains))
	for code := range e.chains {
		codes = append(codes, code)
	}
	return codes
}

// lock returns the per-translation mutex, creating it on first use.
// It guards the check -> fetch -> insert -> flush sequence so racing
// callers cannot interleave writes; duplicate remote fetches are
// tolerated, lost or corrupted data is not.
func (e *Executor) lock(translation string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[translation]
	if !ok {
		l = &sync.Mutex{}
		e.locks[translation] = l
	}
	return l
}

// Fetch runs the chain for a translation and returns the first
// non-empty result. It never fails: when every adapter is exhausted the
// terminal fallback supplies degraded content.
func (e *Executor) Fetch(ctx context.Context, r ref.Reference, translation string) Record {
	translation = strings.ToLower(translation)

	l := e.lock(translation)
	l.Lock()
	defer l.Unlock()

	chain, ok := e.chains[translation]
	if !ok {
		chain = e.defaultChain
	}

	for _, src := range chain {
		res, ok := e.attempt(ctx, src, r, translation)
		if !ok {
			continue
		}
		if src.Name() != CacheName && !res.Degraded {
			e.writeThrough(r, res)
		}
		return e.record(r, translation, src.Name(), res)
	}

	// Terminal fallback: absorbs total exhaustion so callers never see
	// an error for a normal verse request.
	res, _ := e.terminal.Fetch(ctx, r, translation)
	return e.record(r, translation, e.terminal.Name(), res)
}

func (e *Executor) attempt(ctx context.Context, src Source, r ref.Reference, translation string) (Result, bool) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	logging.AdapterAttempt(src.Name(), translation, r.Key())
	res, err := src.Fetch(attemptCtx, r, translation)
	if err != nil {
		logging.AdapterFailure(src.Name(), translation, r.Key(), err)
		return Result{}, false
	}
	if strings.TrimSpace(res.Text) == "" {
		logging.Debug("adapter returned empty text",
			"source", src.Name(), "translation", translation, "reference", r.Key())
		return Result{}, false
	}
	return res, true
}

// writeThrough stores a remote result into the cache of the translation
// that produced it. First-writer-wins is enforced by the cache; a
// durable-write failure keeps the in-memory entry and is only logged.
func (e *Executor) writeThrough(r ref.Reference, res Result) {
	cache, err := e.store.Open(res.Translation)
	if err != nil {
		logging.Warn("cache open failed", "translation", res.Translation, "error", err)
		return
	}
	if cache.Has(r) {
		return
	}
	if err := cache.Put(r, res.Text); err != nil {
		logging.Warn("cache write failed",
			"translation", res.Translation, "reference", r.Key(), "error", err)
	}
}

// record builds the caller-facing Record, annotating cross-translation
// substitution so presentation layers can surface it.
func (e *Executor) record(r ref.Reference, requested, sourceName string, res Result) Record {
	text := res.Text
	if res.Translation != "" && res.Translation != requested {
		text += " [" + strings.ToUpper(res.Translation) + "]"
	}
	return Record{
		Reference:   r,
		Text:        text,
		Translation: requested,
		Produced:    res.Translation,
		Source:      sourceName,
		Degraded:    res.Degraded,
	}
}
