package rest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"notes-store/internal/api/http/response"
	"notes-store/internal/config"
	"notes-store/internal/model"
	"notes-store/internal/repository"
	"notes-store/internal/repository/file"
	svc "notes-store/internal/service"
	"notes-store/internal/service/notes"

	"github.com/gorilla/websocket"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	server *httptest.Server
	events *notes.EventService
	fs     afero.Fs
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fs := afero.NewMemMapFs()
	events := notes.NewEventService()
	noteService := notes.NewNoteService(file.NewRepository(fs, "data/notes.json"), notes.WithPublishers(events))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.ConfigHTTP{CORSAllowedOrigins: "*", RateLimitRPS: 1000, RateLimitBurst: 1000}
	handler, err := NewRouter(NewHandler(ctx, noteService, events), cfg)
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &testEnv{server: server, events: events, fs: fs}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, e.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// TestNotesAPI_RoundTrip полный сценарий: создание, список, чтение, обновление, удаление
func TestNotesAPI_RoundTrip(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/notes",
		`{"title":"Nota E2E de Prueba","body":"Contenido inicial de la nota"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[model.Note](t, resp)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Nota E2E de Prueba", created.Title)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	resp = env.do(t, http.MethodGet, "/notes", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0]["id"])
	assert.NotContains(t, list[0], "body", "list view must not expose the body")

	resp = env.do(t, http.MethodGet, "/notes/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[model.Note](t, resp)
	assert.Equal(t, "Contenido inicial de la nota", got.Body)

	resp = env.do(t, http.MethodPatch, "/notes/"+created.ID, `{"title":"Nota E2E Actualizada"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody[model.Note](t, resp)
	assert.Equal(t, "Nota E2E Actualizada", updated.Title)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Contenido inicial de la nota", updated.Body)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	resp = env.do(t, http.MethodDelete, "/notes/bulk", `{"ids":["`+created.ID+`"]}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/notes/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody[response.ErrorBody](t, resp)
	assert.Equal(t, http.StatusNotFound, body.StatusCode)
	assert.Equal(t, "Not Found", body.Error)
	assert.Contains(t, body.Message, created.ID)
}

func TestNotesAPI_PersistsToFile(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/notes", `{"title":"En archivo","body":""}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data, err := afero.ReadFile(env.fs, "data/notes.json")
	require.NoError(t, err)

	var stored []model.Note
	require.NoError(t, json.Unmarshal(data, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, "En archivo", stored[0].Title)
	assert.Equal(t, "", stored[0].Body)
}

func TestNotesAPI_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		message string
	}{
		{name: "short title", method: http.MethodPost, path: "/notes", body: `{"title":"ab","body":"x"}`, message: "El título debe tener al menos 3 caracteres"},
		{name: "missing title", method: http.MethodPost, path: "/notes", body: `{"body":"x"}`, message: "El título es obligatorio"},
		{name: "title not a string", method: http.MethodPost, path: "/notes", body: `{"title":5,"body":"x"}`, message: "El título debe ser un texto"},
		{name: "unknown field", method: http.MethodPost, path: "/notes", body: `{"title":"abc","body":"x","tags":[]}`, message: "property tags should not exist"},
		{name: "malformed json", method: http.MethodPost, path: "/notes", body: `{"title":`, message: "request body is not valid JSON"},
		{name: "empty body", method: http.MethodPost, path: "/notes", body: "", message: "request body is empty"},
		{name: "second json value", method: http.MethodPost, path: "/notes", body: `{"title":"abc","body":"x"} {"evil":true}`, message: "request body is not valid JSON"},
		{name: "trailing garbage", method: http.MethodPost, path: "/notes", body: `{"title":"abc","body":"x"}}`, message: "request body is not valid JSON"},
		{name: "update short title", method: http.MethodPatch, path: "/notes/any", body: `{"title":"x"}`, message: "El título debe tener al menos 3 caracteres"},
		{name: "delete without ids", method: http.MethodDelete, path: "/notes/bulk", body: `{}`, message: "ids should not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			body := decodeBody[response.ErrorBody](t, resp)
			assert.Equal(t, "Bad Request", body.Error)
			assert.Contains(t, body.Message, tt.message)
		})
	}
}

func TestNotesAPI_UpdateMissing(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPatch, "/notes/ghost", `{"body":"nuevo"}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNotesAPI_DeleteIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/notes", `{"title":"Borrar","body":"x"}`)
	created := decodeBody[model.Note](t, resp)

	payload := `{"ids":["` + created.ID + `","ghost","` + created.ID + `"]}`
	for i := 0; i < 2; i++ {
		resp = env.do(t, http.MethodDelete, "/notes/bulk", payload)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	}
}

func TestNotesAPI_Routing(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/unknown", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody[response.ErrorBody](t, resp)
	assert.Equal(t, "Cannot GET /unknown", body.Message)

	resp = env.do(t, http.MethodPut, "/notes", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestNotesAPI_StorageFailure(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	noteService := notes.NewNoteService(file.NewRepository(fs, "data/notes.json"))
	handler, err := NewRouter(NewHandler(context.Background(), noteService, nil), &config.ConfigHTTP{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewBufferString(`{"title":"abc","body":"x"}`))
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body.Message)
}

func TestWriteError_Mapping(t *testing.T) {
	h := NewHandler(context.Background(), nil, nil)

	tests := []struct {
		err  error
		code int
	}{
		{svc.NewNotFoundError("x"), http.StatusNotFound},
		{svc.NewUpdateFailedError("x"), http.StatusNotFound},
		{repository.NewStorageError("save", errors.New("io")), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.writeError(rec, tt.err)
		assert.Equal(t, tt.code, rec.Code, tt.err.Error())
	}
}

func TestStreamEvents_NDJSON(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.server.URL+"/notes/events", nil)
	require.NoError(t, err)

	resp, err := env.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	var welcome model.NoteEvent
	require.NoError(t, json.Unmarshal(lines.Bytes(), &welcome))
	assert.Equal(t, model.EventSubscribed, welcome.Type)

	created := decodeBody[model.Note](t, env.do(t, http.MethodPost, "/notes", `{"title":"Transmitida","body":"x"}`))

	require.True(t, lines.Scan())
	var event model.NoteEvent
	require.NoError(t, json.Unmarshal(lines.Bytes(), &event))
	assert.Equal(t, model.EventCreated, event.Type)
	assert.Equal(t, []string{created.ID}, event.NoteIDs)
}

func TestStreamEvents_WebSocket(t *testing.T) {
	env := newTestEnv(t)

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/notes/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var welcome model.NoteEvent
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, model.EventSubscribed, welcome.Type)

	require.Eventually(t, func() bool { return env.events.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)
	created := decodeBody[model.Note](t, env.do(t, http.MethodPost, "/notes", `{"title":"Efímera","body":"x"}`))
	resp := env.do(t, http.MethodDelete, "/notes/bulk", `{"ids":["ghost","`+created.ID+`"]}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var event model.NoteEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, model.EventCreated, event.Type)

	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, model.EventDeleted, event.Type)
	assert.Equal(t, []string{created.ID}, event.NoteIDs, "unknown ids are not reported as deleted")
}
