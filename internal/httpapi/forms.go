package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/validation"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// formRequest is the body of create and update calls. Fields is a wire
// schema.
type formRequest struct {
	Name   string          `json:"name"`
	Fields json.RawMessage `json:"fields"`
}

type formResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Fields    json.RawMessage `json:"fields"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toResponse(form storage.Form) (formResponse, error) {
	wire, err := codec.Marshal(form.Fields)
	if err != nil {
		return formResponse{}, err
	}
	return formResponse{
		ID:        form.ID,
		Name:      form.Name,
		Fields:    wire,
		CreatedAt: form.CreatedAt,
		UpdatedAt: form.UpdatedAt,
	}, nil
}

func (s *Server) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello World"})
}

func (s *Server) listExamples(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"examples": builder.Examples()})
}

// decodeFormRequest reads a {"name", "fields"} body and decodes its schema.
func (s *Server) decodeFormRequest(w http.ResponseWriter, r *http.Request) (string, []schema.Field, bool) {
	var req formRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return "", nil, false
	}
	fields, err := codec.Decode(req.Fields, nil)
	if err != nil {
		s.writeStoreError(w, err)
		return "", nil, false
	}
	return req.Name, fields, true
}

func (s *Server) createForm(w http.ResponseWriter, r *http.Request) {
	name, fields, ok := s.decodeFormRequest(w, r)
	if !ok {
		return
	}
	form, err := s.repo.Create(r.Context(), name, fields)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.logger.Info("httpapi: form created", "id", form.ID, "name", form.Name, "fields", len(form.Fields))
	s.writeForm(w, http.StatusOK, form)
}

func (s *Server) listForms(w http.ResponseWriter, r *http.Request) {
	forms, err := s.repo.List(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	out := make([]formResponse, 0, len(forms))
	for _, form := range forms {
		resp, err := toResponse(form)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getForm(w http.ResponseWriter, r *http.Request) {
	form, ok := s.loadForm(w, r)
	if !ok {
		return
	}
	s.writeForm(w, http.StatusOK, form)
}

func (s *Server) updateForm(w http.ResponseWriter, r *http.Request) {
	name, fields, ok := s.decodeFormRequest(w, r)
	if !ok {
		return
	}
	form, err := s.repo.Update(r.Context(), chi.URLParam(r, "id"), name, fields)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.logger.Info("httpapi: form updated", "id", form.ID, "fields", len(form.Fields))
	s.writeForm(w, http.StatusOK, form)
}

func (s *Server) deleteForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.repo.Delete(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.logger.Info("httpapi: form deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Form deleted successfully"})
}

type visibleRequest struct {
	Values visibility.Values `json:"values"`
}

type visibleResponse struct {
	Visible []string `json:"visible"`
}

func (s *Server) visibleFields(w http.ResponseWriter, r *http.Request) {
	form, ok := s.loadForm(w, r)
	if !ok {
		return
	}
	var req visibleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}
	writeJSON(w, http.StatusOK, visibleResponse{Visible: s.visibleNames(form, req.Values)})
}

func (s *Server) visibleNames(form storage.Form, values visibility.Values) []string {
	visible := visibility.Filter(s.eval, form.Fields, values)
	names := make([]string, 0, len(visible))
	for _, field := range visible {
		names = append(names, field.Name)
	}
	return names
}

// preview renders the form. Query parameters become form values, except
// renderer (which picks the renderer) and all (which ignores conditions). The
// form submits back here with GET, so submitting re-renders the preview with
// the entered values.
func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	form, ok := s.loadForm(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	values := visibility.Values{}
	for key, items := range query {
		switch {
		case key == "renderer" || key == "all":
			continue
		case len(items) == 1:
			values[key] = items[0]
		default:
			values[key] = append([]string(nil), items...)
		}
	}
	s.renderPreview(w, r, form, query.Get("renderer"), render.RenderOptions{
		Values:  values,
		ShowAll: query.Has("all"),
	})
}

// previewRequest carries values and an error payload from a validating
// backend. Error keys are field names or paths, see render.MapErrorPayload.
type previewRequest struct {
	Renderer string              `json:"renderer"`
	Values   visibility.Values   `json:"values"`
	Errors   map[string][]string `json:"errors"`
	All      bool                `json:"all"`
}

// previewWithErrors renders the form with submitted values and the errors a
// backend reported for them.
func (s *Server) previewWithErrors(w http.ResponseWriter, r *http.Request) {
	form, ok := s.loadForm(w, r)
	if !ok {
		return
	}
	var req previewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}
	mapping := render.MapErrorPayload(form.Fields, req.Errors)
	s.renderPreview(w, r, form, req.Renderer, render.RenderOptions{
		Values:     req.Values,
		Errors:     mapping.Fields,
		FormErrors: mapping.Form,
		ShowAll:    req.All,
	})
}

func (s *Server) renderPreview(w http.ResponseWriter, r *http.Request, form storage.Form, renderer string, opts render.RenderOptions) {
	opts.Title = form.Name
	opts.Action = "/api/forms/" + form.ID + "/preview"
	opts.Method = http.MethodGet
	opts.Evaluator = s.eval

	out, contentType, err := s.renderers.Render(r.Context(), renderer, form.Fields, opts)
	if err != nil {
		s.logger.Warn("httpapi: preview failed", "id", form.ID, "error", err)
		writeError(w, http.StatusBadRequest, "RENDER_FAILED", err.Error())
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) openAPI(w http.ResponseWriter, r *http.Request) {
	form, ok := s.loadForm(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, openapi.Document(form.Name, form.ID, form.Fields))
}

func (s *Server) lintForm(w http.ResponseWriter, r *http.Request) {
	form, ok := s.loadForm(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, validation.Lint(form.Fields))
}

// lintDocument validates an unsaved schema document (JSON or YAML).
func (s *Server) lintDocument(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "could not read body")
		return
	}
	writeJSON(w, http.StatusOK, validation.ValidateDocument(raw))
}

func (s *Server) loadForm(w http.ResponseWriter, r *http.Request) (storage.Form, bool) {
	form, err := s.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err)
		return storage.Form{}, false
	}
	return form, true
}

func (s *Server) writeForm(w http.ResponseWriter, status int, form storage.Form) {
	resp, err := toResponse(form)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, status, resp)
}
