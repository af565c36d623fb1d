package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/wpq-drafts/internal/draft"
	"github.com/localnerve/wpq-drafts/internal/handlers"
	"github.com/localnerve/wpq-drafts/internal/logging"
	"github.com/localnerve/wpq-drafts/internal/previews"
	"github.com/localnerve/wpq-drafts/internal/services"
	"github.com/localnerve/wpq-drafts/internal/testenv"
	"github.com/stretchr/testify/require"
)

const testUserHeader = "X-Test-User"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

type testApp struct {
	app      *fiber.App
	previews *previews.Registry
	drafts   *draft.Manager
}

// fakeAuth stands in for the authorizer middleware. The user id comes
// from a request header; without it no user is set. Header values alias
// fiber's request buffer, so the id is copied like a decoded session is.
func fakeAuth(c *fiber.Ctx) error {
	if id := c.Get(testUserHeader); id != "" {
		c.Locals(handlers.UserLocal, &services.SessionUser{ID: strings.Clone(id), Roles: []string{"user"}})
	}
	return c.Next()
}

// userStores keeps one in-memory store per user across controller
// evictions, like the database-backed factory does.
func userStores() draft.StoreFactory {
	var mu sync.Mutex
	kvs := map[string]*draft.MemoryKV{}
	return func(userID string) draft.Store {
		mu.Lock()
		defer mu.Unlock()
		kv, ok := kvs[userID]
		if !ok {
			kv = draft.NewMemoryKV()
			kvs[userID] = kv
		}
		return draft.NewKeyedStore(kv)
	}
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := testenv.SQLite(t)
	log := logging.Discard()
	reg := previews.NewRegistry(1024)
	drafts := draft.NewManager(userStores(), log, draft.WithRevoker(reg))

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	api := app.Group("/api", fakeAuth)

	dh := &handlers.DraftHandler{Drafts: drafts, Previews: reg, DB: db, Log: log}
	api.Get("/draft", dh.GetDraft)
	api.Delete("/draft", dh.ResetDraft)
	api.Post("/draft/continuity", dh.AddContinuityEntry)
	api.Patch("/draft/continuity/:id", dh.UpdateContinuityEntry)
	api.Delete("/draft/continuity/:id", dh.RemoveContinuityEntry)
	api.Put("/draft/form-no", dh.SetFormNo)
	api.Post("/draft/files/:target", dh.UploadFile)
	api.Delete("/draft/files/:target", dh.RemoveFile)
	api.Get("/draft/validate/:section", dh.ValidateSection)
	api.Post("/draft/submit", dh.Submit)
	api.Patch("/draft/:section", dh.UpdateSection)
	api.Get("/previews/:id", dh.GetPreview)

	rh := &handlers.RecordsHandler{DB: db, Log: log}
	api.Get("/records", rh.SearchRecords)
	api.Get("/records/:id", rh.GetRecord)
	api.Get("/records/:id/certificate", rh.GetCertificate)
	api.Delete("/records/:id", rh.DeleteRecord)
	api.Get("/attachments/:id", rh.GetAttachment)

	app.Use(handlers.NotFound)

	return &testApp{app: app, previews: reg, drafts: drafts}
}

func (a *testApp) do(t *testing.T, method, path, user string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(testUserHeader, user)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (a *testApp) upload(t *testing.T, path, user, name string, data []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set(testUserHeader, user)
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}
