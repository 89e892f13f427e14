// Package draft keeps unsubmitted contact form values so a visitor can come
// back to a half-written message. Snapshots are a single JSON object stored
// under a fixed key; writes are debounced by Autosaver and the snapshot is
// removed once the form has been sent.
package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/storage"
)

// DefaultKey is the storage key holding the contact form draft.
const DefaultKey = "contactFormData"

// Snapshot maps field names to their last entered text.
type Snapshot map[string]string

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) StoreOption {
	return func(s *Store) {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			s.key = trimmed
		}
	}
}

// WithLogger attaches a logger used to report discarded snapshots.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store reads and writes the draft snapshot of one form.
type Store struct {
	storage storage.Storage
	form    model.Form
	key     string
	logger  *zap.Logger
}

// NewStore binds a draft store to form.
func NewStore(store storage.Storage, form model.Form, options ...StoreOption) *Store {
	s := &Store{
		storage: store,
		form:    form,
		key:     DefaultKey,
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Key returns the storage key in use.
func (s *Store) Key() string {
	return s.key
}

// Snapshot builds the snapshot for values: tracked fields of the form with a
// non-empty value. Keys the form does not track are never included.
func (s *Store) Snapshot(values model.Values) Snapshot {
	out := make(Snapshot)
	for _, name := range s.form.TrackedNames() {
		if value := values.String(name); value != "" {
			out[name] = value
		}
	}
	return out
}

// Save overwrites the stored snapshot with values. Nothing is written when
// every tracked field is empty.
func (s *Store) Save(ctx context.Context, values model.Values) (Snapshot, error) {
	snapshot := s.Snapshot(values)
	if len(snapshot) == 0 {
		return snapshot, nil
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("draft: encode snapshot: %w", err)
	}
	if err := s.storage.Put(ctx, s.key, payload); err != nil {
		return nil, fmt.Errorf("draft: save snapshot: %w", err)
	}
	return snapshot, nil
}

// Load returns the stored snapshot. A missing, unreadable or malformed
// snapshot is reported as absent; failures are logged, never returned, so
// page rendering is not blocked by a bad draft.
func (s *Store) Load(ctx context.Context) (Snapshot, bool) {
	raw, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("could not read saved form data", zap.String("key", s.key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		s.logger.Info("could not load saved form data", zap.String("key", s.key), zap.Error(err))
		return nil, false
	}

	snapshot := make(Snapshot, len(decoded))
	for name, value := range decoded {
		text, isString := value.(string)
		if !isString || text == "" || !s.form.IsTracked(name) {
			continue
		}
		snapshot[name] = text
	}
	if len(snapshot) == 0 {
		return nil, false
	}
	return snapshot, true
}

// Restore fills values with the stored snapshot and returns the merged copy.
func (s *Store) Restore(ctx context.Context, values model.Values) model.Values {
	out := values.Clone()
	snapshot, ok := s.Load(ctx)
	if !ok {
		return out
	}
	for name, value := range snapshot {
		out[name] = value
	}
	return out
}

// Clear deletes the snapshot.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("draft: clear snapshot: %w", err)
	}
	return nil
}
