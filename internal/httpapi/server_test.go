package httpapi

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

const contactSchema = `[
	{"type":"radio","label":"Contact type","name":"contact_type","values":[
		{"label":"Client","value":"client","selected":false},
		{"label":"Candidate","value":"candidate","selected":false}
	]},
	{"type":"text","label":"Company","name":"company","subtype":"text","maxlength":80,
	 "conditions":[{"field":"contact_type","operator":"equal","value":"client","condition":"and"}]},
	{"type":"text","label":"Email","name":"email","subtype":"email","required":true}
]`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv, err := New(Config{
		Repository: storage.NewMemory(storage.WithIDGenerator(schema.NewSequence("form"))),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) (int, []byte, http.Header) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data, resp.Header
}

func createContact(t *testing.T, ts *httptest.Server) formResponse {
	t.Helper()
	status, body, _ := do(t, http.MethodPost, ts.URL+"/api/forms", `{"name":"Contact","fields":`+contactSchema+`}`)
	if status != http.StatusOK {
		t.Fatalf("create: status %d body %s", status, body)
	}
	var form formResponse
	if err := json.Unmarshal(body, &form); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	return form
}

func TestRoot(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	status, body, headers := do(t, http.MethodGet, ts.URL+"/api/", "")
	if status != http.StatusOK || !strings.Contains(string(body), `"Hello World"`) {
		t.Fatalf("unexpected root response %d %s", status, body)
	}
	if headers.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected permissive CORS header")
	}
}

func TestFormCRUD(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	form := createContact(t, ts)
	if form.ID != "form-1" || form.Name != "Contact" {
		t.Fatalf("unexpected created form %+v", form)
	}
	if !bytes.Contains(form.Fields, []byte(`"conditions":null`)) {
		t.Fatalf("expected wire schema in response, got %s", form.Fields)
	}

	status, body, _ := do(t, http.MethodGet, ts.URL+"/api/forms", "")
	var list []formResponse
	if err := json.Unmarshal(body, &list); err != nil || status != http.StatusOK || len(list) != 1 {
		t.Fatalf("list: status %d err %v body %s", status, err, body)
	}

	status, body, _ = do(t, http.MethodPut, ts.URL+"/api/forms/form-1", `{"name":"Renamed","fields":[{"type":"hidden","name":"token"}]}`)
	if status != http.StatusOK || !strings.Contains(string(body), `"name":"Renamed"`) || !strings.Contains(string(body), `"token"`) {
		t.Fatalf("update: status %d body %s", status, body)
	}

	status, body, _ = do(t, http.MethodDelete, ts.URL+"/api/forms/form-1", "")
	if status != http.StatusOK || !strings.Contains(string(body), "Form deleted successfully") {
		t.Fatalf("delete: status %d body %s", status, body)
	}

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		status, body, _ = do(t, method, ts.URL+"/api/forms/form-1", "")
		if status != http.StatusNotFound || !strings.Contains(string(body), `"detail":"Form not found"`) {
			t.Fatalf("%s after delete: status %d body %s", method, status, body)
		}
	}
	status, _, _ = do(t, http.MethodPut, ts.URL+"/api/forms/missing", `{"name":"x","fields":[]}`)
	if status != http.StatusNotFound {
		t.Fatalf("update missing: status %d", status)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	cases := []struct {
		name   string
		body   string
		status int
		code   string
		index  *int
	}{
		{name: "malformed body", body: `{"name":`, status: http.StatusBadRequest, code: "INVALID_BODY"},
		{name: "bad entry", body: `{"name":"x","fields":[{"type":"text"},"oops"]}`, status: http.StatusUnprocessableEntity, code: "INVALID_SCHEMA", index: schema.Ptr(1)},
		{name: "missing fields", body: `{"name":"x"}`, status: http.StatusUnprocessableEntity, code: "INVALID_SCHEMA"},
		{name: "empty name", body: `{"name":" ","fields":[]}`, status: http.StatusUnprocessableEntity, code: "INVALID_NAME"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body, _ := do(t, http.MethodPost, ts.URL+"/api/forms", tc.body)
			var got errorBody
			if err := json.Unmarshal(body, &got); err != nil {
				t.Fatalf("decode error body: %v (%s)", err, body)
			}
			if status != tc.status || got.Code != tc.code {
				t.Fatalf("got status %d code %s, want %d %s", status, got.Code, tc.status, tc.code)
			}
			if diff := cmp.Diff(tc.index, got.Index); diff != "" {
				t.Fatalf("index mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestVisibleAndPreview(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	form := createContact(t, ts)
	base := ts.URL + "/api/forms/" + form.ID

	status, body, _ := do(t, http.MethodPost, base+"/visible", `{"values":{"contact_type":"client"}}`)
	var visible visibleResponse
	if err := json.Unmarshal(body, &visible); err != nil || status != http.StatusOK {
		t.Fatalf("visible: status %d err %v", status, err)
	}
	if diff := cmp.Diff([]string{"contact_type", "company", "email"}, visible.Visible); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}

	status, body, headers := do(t, http.MethodGet, base+"/preview?contact_type=candidate", "")
	if status != http.StatusOK || !strings.HasPrefix(headers.Get("Content-Type"), "text/html") {
		t.Fatalf("preview: status %d type %s", status, headers.Get("Content-Type"))
	}
	html := string(body)
	if strings.Contains(html, `data-field="company"`) || !strings.Contains(html, `value="candidate" checked`) {
		t.Fatalf("unexpected preview:\n%s", html)
	}

	if !strings.Contains(html, `action="/api/forms/form-1/preview"`) || !strings.Contains(html, `method="GET"`) {
		t.Fatalf("expected preview to submit back to itself:\n%s", html)
	}

	_, body, _ = do(t, http.MethodGet, base+"/preview?all", "")
	if !strings.Contains(string(body), `data-field="company"`) {
		t.Fatalf("expected all fields in preview:\n%s", body)
	}

	status, _, _ = do(t, http.MethodGet, base+"/preview?renderer=missing", "")
	if status != http.StatusBadRequest {
		t.Fatalf("expected unknown renderer to fail, got %d", status)
	}
}

func TestPreviewWithErrorPayload(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	form := createContact(t, ts)

	body := `{"values":{"contact_type":"client","email":"bad"},"errors":{
		"email":["Email is invalid"],
		"/body/company":["Company is required"],
		"":["Please fix the highlighted fields"],
		"ghost":["Unknown field"]
	}}`
	status, out, _ := do(t, http.MethodPost, ts.URL+"/api/forms/"+form.ID+"/preview", body)
	if status != http.StatusOK {
		t.Fatalf("preview: status %d body %s", status, out)
	}
	html := string(out)
	for _, want := range []string{
		`<p class="formbuilder-error">Email is invalid</p>`,
		`<p class="formbuilder-error">Company is required</p>`,
		`<li>Please fix the highlighted fields</li>`,
		`<li>Unknown field</li>`,
		`value="bad"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %s in preview:\n%s", want, html)
		}
	}

	status, _, _ = do(t, http.MethodPost, ts.URL+"/api/forms/"+form.ID+"/preview", `{"values":`)
	if status != http.StatusBadRequest {
		t.Fatalf("expected malformed body to fail, got %d", status)
	}
}

func TestOpenAPIAndLint(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	form := createContact(t, ts)
	base := ts.URL + "/api/forms/" + form.ID

	status, body, _ := do(t, http.MethodGet, base+"/openapi", "")
	if status != http.StatusOK || !strings.Contains(string(body), `"FormSubmission"`) || !strings.Contains(string(body), `"openapi":"3.0.3"`) {
		t.Fatalf("openapi: status %d body %s", status, body)
	}

	status, body, _ = do(t, http.MethodPost, base+"/lint", "")
	var result validation.SchemaValidationResult
	if err := json.Unmarshal(body, &result); err != nil || status != http.StatusOK || !result.Valid {
		t.Fatalf("lint: status %d err %v body %s", status, err, body)
	}

	status, body, _ = do(t, http.MethodPost, ts.URL+"/api/lint", `[{"type":"text","name":"a","conditions":[{"field":"ghost","operator":"equal","value":"","condition":"and"}]}]`)
	if err := json.Unmarshal(body, &result); err != nil || status != http.StatusOK {
		t.Fatalf("lint document: status %d err %v", status, err)
	}
	if result.Valid || len(result.Issues) != 1 || result.Issues[0].Code != validation.CodeDanglingReference {
		t.Fatalf("unexpected lint result %+v", result)
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/forms", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent || resp.Header.Get("Access-Control-Allow-Headers") != "content-type" {
		t.Fatalf("unexpected preflight response %d %v", resp.StatusCode, resp.Header)
	}
}

func TestLivePreview(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	form := createContact(t, ts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/forms/" + form.ID + "/live"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	read := func() liveServerMessage {
		t.Helper()
		var msg liveServerMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		return msg
	}

	initial := read()
	if diff := cmp.Diff([]string{"contact_type", "email"}, initial.Visible); diff != "" {
		t.Fatalf("initial visible mismatch (-want +got):\n%s", diff)
	}

	if err := wsjson.Write(ctx, conn, liveClientMessage{Name: "contact_type", Value: "client"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if diff := cmp.Diff([]string{"contact_type", "company", "email"}, read().Visible); diff != "" {
		t.Fatalf("visible after set mismatch (-want +got):\n%s", diff)
	}

	if err := wsjson.Write(ctx, conn, liveClientMessage{Type: "reset"}); err != nil {
		t.Fatalf("write reset: %v", err)
	}
	if got := read(); len(got.Visible) != 2 || len(got.Values) != 0 {
		t.Fatalf("unexpected state after reset %+v", got)
	}

	if err := wsjson.Write(ctx, conn, liveClientMessage{Type: "bogus"}); err != nil {
		t.Fatalf("write bogus: %v", err)
	}
	if got := read(); got.Type != msgError {
		t.Fatalf("expected error message, got %+v", got)
	}

	conn.Close(websocket.StatusNormalClosure, "")

	status, _, _ := do(t, http.MethodGet, ts.URL+"/api/forms/missing/live", "")
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for missing form, got %d", status)
	}
}

func TestLivePreviewSendsEmptyVisibleList(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	hiddenOnly := `{"name":"Hidden","fields":[{"type":"text","name":"company",` +
		`"conditions":[{"field":"company","operator":"equal","value":"x","condition":"and"}]}]}`
	status, body, _ := do(t, http.MethodPost, ts.URL+"/api/forms", hiddenOnly)
	if status != http.StatusOK {
		t.Fatalf("create: status %d body %s", status, body)
	}
	var form formResponse
	if err := json.Unmarshal(body, &form); err != nil {
		t.Fatalf("decode create: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/forms/" + form.ID + "/live"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	_, raw, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), `"visible":[]`) {
		t.Fatalf("expected an empty visible list, got %s", raw)
	}
	conn.Close(websocket.StatusNormalClosure, "")

	status, body, _ = do(t, http.MethodPost, ts.URL+"/api/forms/"+form.ID+"/visible", `{"values":{}}`)
	if status != http.StatusOK || !strings.Contains(string(body), `"visible":[]`) {
		t.Fatalf("visible: status %d body %s", status, body)
	}
}
