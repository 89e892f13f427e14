// Package session keeps one form workspace per visitor. A workspace owns the
// controller, draft store, autosaver and presentation state for that visitor,
// built once when the session starts and found again by cookie.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-contactform/pkg/draft"
	"github.com/goliatone/go-contactform/pkg/feedback"
	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/render"
	"github.com/goliatone/go-contactform/pkg/site"
	"github.com/goliatone/go-contactform/pkg/storage"
	"github.com/goliatone/go-contactform/pkg/submit"
	"github.com/goliatone/go-contactform/pkg/validation"
)

// CookieName carries the session id.
const CookieName = "cf_session"

// Options configures how workspaces are built.
type Options struct {
	Form      model.Form
	Submitter submit.Submitter
	Validator *validation.Validator
	Store     storage.Storage
	FAQ       []string
	Debounce  time.Duration
	Timeout   time.Duration
	TTL       time.Duration
	Secure    bool
	Clock     clock.Clock
	Logger    *zap.Logger
}

// Workspace is everything one visitor interacts with.
type Workspace struct {
	ID         string
	CSRF       string
	Controller *submit.Controller
	Drafts     *draft.Store
	Autosaver  *draft.Autosaver
	Theme      *site.ThemePreference

	mu        sync.Mutex
	menu      site.MobileMenu
	accordion *site.Accordion
	lastSeen  time.Time
}

// ToggleMenu flips the mobile menu.
func (w *Workspace) ToggleMenu() (open bool, icon string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	open = w.menu.Toggle()
	return open, w.menu.Icon()
}

// CloseMenu closes the mobile menu after a navigation.
func (w *Workspace) CloseMenu() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.menu.LinkClicked()
}

// MenuOpen reports whether the mobile menu is expanded.
func (w *Workspace) MenuOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.menu.Open()
}

// ToggleFAQ flips an accordion item.
func (w *Workspace) ToggleFAQ(id string) (bool, map[string]bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	open, err := w.accordion.Toggle(id)
	if err != nil {
		return false, nil, err
	}
	return open, w.accordion.OpenIDs(), nil
}

// OpenFAQ lists expanded accordion items.
func (w *Workspace) OpenFAQ() map[string]bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.accordion.OpenIDs()
}

// Registry maps session ids to workspaces.
type Registry struct {
	opts Options

	mu       sync.Mutex
	sessions map[string]*Workspace
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Store == nil {
		opts.Store = storage.NewMemory()
	}
	if opts.Validator == nil {
		opts.Validator = validation.New()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = draft.DefaultDebounce
	}
	if opts.Timeout <= 0 {
		opts.Timeout = submit.DefaultTimeout
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	return &Registry{opts: opts, sessions: make(map[string]*Workspace)}
}

// Get returns the caller's workspace, starting a session and setting the
// cookie when the request carries none. An unknown but well-formed id is
// adopted so persisted drafts survive a restart.
func (r *Registry) Get(w http.ResponseWriter, req *http.Request) *Workspace {
	id := ""
	if cookie, err := req.Cookie(CookieName); err == nil {
		if parsed, err := uuid.Parse(cookie.Value); err == nil {
			id = parsed.String()
		}
	}
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   r.opts.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return r.Workspace(req.Context(), id)
}

// Workspace returns the workspace for id, building it on first use.
func (r *Registry) Workspace(ctx context.Context, id string) *Workspace {
	r.mu.Lock()
	ws, ok := r.sessions[id]
	if !ok {
		ws = r.build(id)
		r.sessions[id] = ws
	}
	r.mu.Unlock()

	ws.mu.Lock()
	ws.lastSeen = r.opts.Clock.Now()
	ws.mu.Unlock()

	if !ok {
		ws.Controller.Restore(ctx)
		r.opts.Logger.Debug("session started", zap.String("session", id))
	}
	return ws
}

func (r *Registry) build(id string) *Workspace {
	scoped := storage.Scope(r.opts.Store, id)
	logger := r.opts.Logger.With(zap.String("session", id))

	drafts := draft.NewStore(scoped, r.opts.Form, draft.WithLogger(logger))
	saver := draft.NewAutosaver(drafts,
		draft.WithDebounce(r.opts.Debounce),
		draft.WithClock(r.opts.Clock),
		draft.WithAutosaveLogger(logger),
	)
	board := feedback.NewBoard(r.opts.Form)
	controller := submit.New(r.opts.Form, r.opts.Submitter,
		submit.WithValidator(r.opts.Validator),
		submit.WithBoard(board),
		submit.WithDrafts(drafts),
		submit.WithAutosaver(saver),
		submit.WithTimeout(r.opts.Timeout),
		submit.WithLogger(logger),
		submit.WithPayloadFilter(r.sanitize),
	)
	return &Workspace{
		ID:         id,
		CSRF:       uuid.NewString(),
		Controller: controller,
		Drafts:     drafts,
		Autosaver:  saver,
		Theme:      site.NewThemePreference(scoped, logger),
		accordion:  site.NewAccordion(r.opts.FAQ, true),
	}
}

// sanitize strips markup from free-text fields before they leave the site.
func (r *Registry) sanitize(payload model.Submission) model.Submission {
	out := model.NewSubmission(render.Sanitize(r.opts.Form, payload.Values()))
	out.Attachments = payload.Attachments
	return out
}

// Len reports how many sessions are live.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops workspaces idle for longer than the TTL. Pending autosaves
// are flushed first so nothing typed is lost.
func (r *Registry) Sweep(ctx context.Context) int {
	cutoff := r.opts.Clock.Now().Add(-r.opts.TTL)

	r.mu.Lock()
	var expired []*Workspace
	for id, ws := range r.sessions {
		ws.mu.Lock()
		idle := ws.lastSeen.Before(cutoff)
		ws.mu.Unlock()
		if idle {
			expired = append(expired, ws)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, ws := range expired {
		r.retire(ctx, ws)
	}
	if len(expired) > 0 {
		r.opts.Logger.Debug("sessions expired", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Close retires every live workspace, as done on shutdown.
func (r *Registry) Close(ctx context.Context) {
	r.mu.Lock()
	live := make([]*Workspace, 0, len(r.sessions))
	for id, ws := range r.sessions {
		live = append(live, ws)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, ws := range live {
		r.retire(ctx, ws)
	}
}

// retire writes a pending draft so nothing typed is lost, then stops the
// autosave timer.
func (r *Registry) retire(ctx context.Context, ws *Workspace) {
	if ws.Autosaver.Pending() {
		if _, err := ws.Autosaver.Flush(ctx); err != nil {
			r.opts.Logger.Warn("draft flush failed", zap.String("session", ws.ID), zap.Error(err))
		}
	}
	ws.Autosaver.Cancel()
}

// Run sweeps every half TTL until ctx is done.
func (r *Registry) Run(ctx context.Context) error {
	ticker := r.opts.Clock.Ticker(r.opts.TTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}
