package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-contactform/internal/session"
	"github.com/goliatone/go-contactform/pkg/feedback"
	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/render"
	"github.com/goliatone/go-contactform/pkg/site"
	"github.com/goliatone/go-contactform/pkg/submit"
)

// highlightCount is how many services the home page features.
const highlightCount = 3

// formState is the contact form as rendered after a form post.
type formState struct {
	notice     string
	succeeded  bool
	formErrors []string
}

func (s *Server) handlePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFrom(r.Context())
		ws.CloseMenu()

		if name == "contact" {
			s.prefillSubject(ws, r.URL.Query().Get(model.FieldSubject))
		}
		s.renderPage(w, r, ws, name, http.StatusOK, formState{})
	}
}

// prefillSubject selects subject when it is one of the offered topics.
func (s *Server) prefillSubject(ws *session.Workspace, subject string) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return
	}
	field, ok := s.form.Field(model.FieldSubject)
	if !ok || !field.HasOption(subject) {
		return
	}
	ws.Controller.Input(model.FieldSubject, subject)
}

// handleContactPost is the no-script fallback for the contact form.
func (s *Server) handleContactPost(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	if !render.VerifyCSRF(r.PostForm, ws.CSRF) {
		s.renderPage(w, r, ws, "contact", http.StatusForbidden, formState{
			formErrors: []string{"Your session has expired. Please reload the page and try again."},
		})
		return
	}

	values := model.FromForm(s.form, r.PostForm)
	report, err := ws.Controller.Submit(r.Context(), values)
	if errors.Is(err, submit.ErrInFlight) {
		s.renderPage(w, r, ws, "contact", http.StatusConflict, formState{
			formErrors: []string{"Your message is still being sent."},
		})
		return
	}

	state := formState{notice: report.Notice}
	status := http.StatusOK
	switch report.State {
	case submit.StateInvalid:
		status = http.StatusUnprocessableEntity
	case submit.StateFailed:
		status = http.StatusBadGateway
		state.formErrors = s.remoteFormErrors(ws, report)
	case submit.StateSucceeded:
		state.succeeded = true
	}
	s.renderPage(w, r, ws, "contact", status, state)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, ws *session.Workspace, name string, status int, state formState) {
	data, err := s.pageData(r, ws, name)
	if err != nil {
		s.logger.Error("page data", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if name == "contact" {
		for key, value := range s.contactData(ws, state) {
			data[key] = value
		}
	}

	html, err := s.pages.Render(name, data)
	if err != nil {
		s.logger.Error("render page", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Accept-CH", prefersColorSchemeHeader)
	w.Header().Add("Vary", prefersColorSchemeHeader)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(html))
}

// pageData builds the context shared by every page.
func (s *Server) pageData(r *http.Request, ws *session.Workspace, name string) (map[string]any, error) {
	page, ok := s.content.Page(name)
	if !ok {
		return nil, errors.New("server: unknown page " + name)
	}
	current := s.resolveTheme(r, ws)
	selection, err := s.themes.Select(site.SiteThemeName, string(current))
	if err != nil {
		return nil, err
	}
	cfg := site.RendererConfig(selection)

	phrases, err := json.Marshal(s.content.Phrases)
	if err != nil {
		return nil, err
	}

	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		category = site.AllCategories
	}
	highlights := s.content.Services
	if len(highlights) > highlightCount {
		highlights = highlights[:highlightCount]
	}

	return map[string]any{
		"page":            name,
		"page_title":      page.Title,
		"sections":        page.Sections,
		"site":            s.content.Site,
		"nav":             s.content.Navigation(name),
		"theme":           string(current),
		"theme_icon":      site.ToggleIcon(current),
		"css_vars":        site.CSSVarsStyle(cfg.CSSVars),
		"stylesheet":      cfg.AssetURL("stylesheet"),
		"script":          cfg.AssetURL("script"),
		"csrf":            ws.CSRF,
		"menu_open":       ws.MenuOpen(),
		"menu_icon":       menuIcon(ws.MenuOpen()),
		"phrases_json":    string(phrases),
		"highlights":      highlights,
		"categories":      s.content.Categories,
		"active_category": category,
		"cards":           s.content.Filter(category),
		"stats":           s.content.Stats,
		"schedule":        s.content.Schedule.Options,
		"faq":             s.faqData(ws),
	}, nil
}

// resolveTheme prefers the saved choice, then the client hint, then the
// configured default.
func (s *Server) resolveTheme(r *http.Request, ws *session.Workspace) site.Theme {
	saved := ws.Theme.Load(r.Context())
	hint := strings.TrimSpace(r.Header.Get(prefersColorSchemeHeader))
	if saved == "" && hint == "" {
		return s.defaultTheme
	}
	return site.ResolveTheme(saved, strings.EqualFold(hint, "dark"))
}

func menuIcon(open bool) string {
	menu := site.MobileMenu{}
	if open {
		menu.Toggle()
	}
	return menu.Icon()
}

func (s *Server) faqData(ws *session.Workspace) []map[string]any {
	open := ws.OpenFAQ()
	out := make([]map[string]any, 0, len(s.content.FAQ))
	for _, item := range s.content.FAQ {
		out = append(out, map[string]any{
			"id":       item.ID,
			"question": item.Question,
			"answer":   item.Answer,
			"open":     open[item.ID],
		})
	}
	return out
}

// contactData renders the form fields from the workspace's feedback board.
func (s *Server) contactData(ws *session.Workspace, state formState) map[string]any {
	values := ws.Controller.Values()
	views := ws.Controller.Views()

	fields := make([]map[string]any, 0, len(views))
	for _, view := range views {
		field, _ := s.form.Field(view.Name)
		fields = append(fields, fieldData(field, view, values))
	}

	counter := feedback.CountRemaining(values.String(model.FieldMessage), model.MessageMaxLength)
	hidden := render.MergeHiddenFields(nil, render.CSRFToken(ws.CSRF), render.FormID(s.form.ID))

	return map[string]any{
		"fields":        fields,
		"hidden_fields": render.SortedHiddenFields(hidden),
		"counter":       counter,
		"counter_text":  counter.Text(),
		"control":       ws.Controller.Control(),
		"notice":        state.notice,
		"succeeded":     state.succeeded,
		"form_errors":   state.formErrors,
		"attachments":   attachmentViews(ws.Controller.Attachments()),
	}
}

func fieldData(field model.Field, view feedback.FieldView, values model.Values) map[string]any {
	return map[string]any{
		"name":        view.Name,
		"label":       view.Label,
		"kind":        string(view.Kind),
		"classes":     view.Classes(),
		"value":       values.String(view.Name),
		"checked":     values.Bool(view.Name),
		"focus":       view.Focus,
		"required":    view.Required,
		"options":     field.Options,
		"placeholder": field.Placeholder,
		"max_length":  field.MaxLength,
		"input_type":  inputType(view.Kind),
		"show_error":  view.ShowError,
		"message":     view.Message,
	}
}

func inputType(kind model.FieldKind) string {
	switch kind {
	case model.FieldKindEmail:
		return "email"
	case model.FieldKindPhone:
		return "tel"
	default:
		return "text"
	}
}

// remoteFormErrors attributes an endpoint rejection to fields on the board
// and returns whatever could not be attributed.
func (s *Server) remoteFormErrors(ws *session.Workspace, report submit.Report) []string {
	if report.Outcome == nil {
		return nil
	}
	var rejected *submit.RejectedError
	if !errors.As(report.Outcome.Err, &rejected) || len(rejected.Fields) == 0 {
		return nil
	}
	mapping := render.MapErrorPayload(s.form, rejected.Fields)
	for _, name := range mapping.FieldNames(s.form) {
		ws.Controller.MarkInvalid(name, mapping.Fields[name][0])
	}
	return mapping.Form
}
