package server

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-contactform/internal/session"
	"github.com/goliatone/go-contactform/pkg/draft"
	"github.com/goliatone/go-contactform/pkg/feedback"
	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/render"
	"github.com/goliatone/go-contactform/pkg/schema"
	"github.com/goliatone/go-contactform/pkg/site"
	"github.com/goliatone/go-contactform/pkg/submit"
)

// newsletterPrefix namespaces accepted newsletter addresses in storage.
const newsletterPrefix = "newsletter/"

type submitResponse struct {
	State      submit.State         `json:"state"`
	Focus      string               `json:"focus,omitempty"`
	Notice     string               `json:"notice,omitempty"`
	Fields     []feedback.FieldView `json:"fields"`
	Errors     map[string][]string  `json:"errors,omitempty"`
	FormErrors []string             `json:"formErrors,omitempty"`
	Control    submit.Control       `json:"control"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())

	var body any
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if issues := s.contract.ValidatePayload(body); len(issues) > 0 {
		object, _ := body.(map[string]any)
		mapping := render.MapErrorPayload(s.form, schema.Errors(issues))
		report, err := ws.Controller.Reject(model.Values(object), mapping.FieldNames(s.form))
		if errors.Is(err, submit.ErrInFlight) {
			writeJSON(w, http.StatusConflict, submitResponse{
				State:   report.State,
				Fields:  ws.Controller.Views(),
				Control: report.Control,
			})
			return
		}
		s.logger.Debug("contract rejected submission", zap.Int("issues", len(issues)))
		writeJSON(w, http.StatusUnprocessableEntity, submitResponse{
			State:      submit.StateInvalid,
			Focus:      report.Focus,
			Fields:     ws.Controller.Views(),
			Errors:     report.Validation.Errors(),
			FormErrors: mapping.Form,
			Control:    report.Control,
		})
		return
	}

	object, ok := body.(map[string]any)
	if !ok {
		writeError(w, http.StatusBadRequest, "request body must be an object")
		return
	}
	values := model.Values(object)
	if unknown := s.unknownFieldErrors(values); len(unknown) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, submitResponse{
			State:      submit.StateInvalid,
			Fields:     ws.Controller.Views(),
			FormErrors: unknown,
			Control:    ws.Controller.Control(),
		})
		return
	}

	report, err := ws.Controller.Submit(r.Context(), values)
	if errors.Is(err, submit.ErrInFlight) {
		writeJSON(w, http.StatusConflict, submitResponse{
			State:   report.State,
			Fields:  ws.Controller.Views(),
			Control: report.Control,
		})
		return
	}

	resp := submitResponse{
		State:   report.State,
		Focus:   report.Focus,
		Notice:  report.Notice,
		Errors:  report.Validation.Errors(),
		Control: report.Control,
	}
	status := http.StatusOK
	switch report.State {
	case submit.StateInvalid:
		status = http.StatusUnprocessableEntity
	case submit.StateFailed:
		status = http.StatusBadGateway
		resp.FormErrors = s.remoteFormErrors(ws, report)
	}
	resp.Fields = ws.Controller.Views()
	writeJSON(w, status, resp)
}

// unknownFieldErrors runs undeclared keys through the validator's unknown
// field policy.
func (s *Server) unknownFieldErrors(values model.Values) []string {
	var names []string
	for name := range values {
		if !s.form.Has(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		if result := s.validator.ValidateName(s.form, name, values); !result.Valid {
			out = append(out, name+": "+result.Message)
		}
	}
	return out
}

type draftResponse struct {
	Key     string         `json:"key"`
	Saved   draft.Snapshot `json:"saved"`
	Pending bool           `json:"pending"`
	Values  model.Values   `json:"values"`
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	saved, _ := ws.Drafts.Load(r.Context())
	writeJSON(w, http.StatusOK, draftResponse{
		Key:     ws.Drafts.Key(),
		Saved:   saved,
		Pending: ws.Autosaver.Pending(),
		Values:  ws.Controller.Values(),
	})
}

type fieldRequest struct {
	Value any `json:"value"`
}

type counterResponse struct {
	Text      string                `json:"text"`
	Level     feedback.CounterLevel `json:"level"`
	Max       int                   `json:"max"`
	Remaining int                   `json:"remaining"`
}

type fieldResponse struct {
	View    feedback.FieldView `json:"view"`
	Value   any                `json:"value,omitempty"`
	Counter *counterResponse   `json:"counter,omitempty"`
}

func (s *Server) handleFieldInput(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	field, ok := s.form.Field(chi.URLParam(r, "name"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown field")
		return
	}
	var req fieldRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	value := req.Value
	if text, isText := value.(string); isText && field.Kind == model.FieldKindPhone {
		value = site.FormatPhone(text)
	}
	if !ws.Controller.Input(field.Name, value) {
		writeError(w, http.StatusConflict, "the form is being sent")
		return
	}

	resp := fieldResponse{View: viewOf(ws, field.Name), Value: value}
	if field.MaxLength > 0 {
		text, _ := value.(string)
		counter := feedback.CountRemaining(text, field.MaxLength)
		resp.Counter = &counterResponse{
			Text:      counter.Text(),
			Level:     counter.Level,
			Max:       counter.Max,
			Remaining: counter.Remaining,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFieldBlur(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	field, ok := s.form.Field(chi.URLParam(r, "name"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown field")
		return
	}
	var req fieldRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	values := ws.Controller.Values()
	if req.Value != nil {
		values[field.Name] = req.Value
	}
	ws.Controller.Blur(field.Name, values)
	writeJSON(w, http.StatusOK, fieldResponse{View: viewOf(ws, field.Name)})
}

func viewOf(ws *session.Workspace, name string) feedback.FieldView {
	for _, view := range ws.Controller.Views() {
		if view.Name == name {
			return view
		}
	}
	return feedback.FieldView{Name: name}
}

type themeRequest struct {
	PrefersDark bool `json:"prefersDark"`
}

type themeResponse struct {
	Theme   site.Theme        `json:"theme"`
	Icon    string            `json:"icon"`
	CSSVars map[string]string `json:"cssVars"`
}

func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	var req themeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	next, err := ws.Theme.Toggle(r.Context(), req.PrefersDark)
	if err != nil {
		s.logger.Error("theme toggle", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save theme")
		return
	}
	selection, err := s.themes.Select(site.SiteThemeName, string(next))
	if err != nil {
		s.logger.Error("theme select", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "theme unavailable")
		return
	}
	writeJSON(w, http.StatusOK, themeResponse{
		Theme:   next,
		Icon:    site.ToggleIcon(next),
		CSSVars: site.RendererConfig(selection).CSSVars,
	})
}

type menuRequest struct {
	Close bool `json:"close"`
}

type menuResponse struct {
	Open bool   `json:"open"`
	Icon string `json:"icon"`
}

func (s *Server) handleMenuToggle(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	var req menuRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Close {
		ws.CloseMenu()
		writeJSON(w, http.StatusOK, menuResponse{Open: false, Icon: menuIcon(false)})
		return
	}
	open, icon := ws.ToggleMenu()
	writeJSON(w, http.StatusOK, menuResponse{Open: open, Icon: icon})
}

type faqResponse struct {
	ID       string          `json:"id"`
	Expanded bool            `json:"expanded"`
	Open     map[string]bool `json:"open"`
}

func (s *Server) handleFAQToggle(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	id := chi.URLParam(r, "id")
	expanded, open, err := ws.ToggleFAQ(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown question")
		return
	}
	writeJSON(w, http.StatusOK, faqResponse{ID: id, Expanded: expanded, Open: open})
}

type newsletterRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleNewsletter(w http.ResponseWriter, r *http.Request) {
	var req newsletterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result := site.Subscribe(req.Email)
	if !result.Subscribed {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.newsletter.Put(r.Context(), newsletterPrefix+email, []byte(email)); err != nil {
		s.logger.Error("newsletter signup", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not subscribe")
		return
	}
	s.logger.Info("newsletter signup")
	writeJSON(w, http.StatusOK, result)
}

type scheduleResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	writeJSON(w, http.StatusOK, scheduleResponse{Kind: kind, Message: s.content.ScheduleMessage(kind)})
}
