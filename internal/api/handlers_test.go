package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/mailflow/internal/api"
	"github.com/ignite/mailflow/internal/assistant"
	"github.com/ignite/mailflow/internal/auth"
	"github.com/ignite/mailflow/internal/config"
	"github.com/ignite/mailflow/internal/domain"
	"github.com/ignite/mailflow/internal/mailing"
	"github.com/ignite/mailflow/internal/repository/kvstore"
	"github.com/ignite/mailflow/internal/service/campaign"
	"github.com/ignite/mailflow/internal/service/contact"
	"github.com/ignite/mailflow/internal/service/dashboard"
	"github.com/ignite/mailflow/internal/service/settings"
	"github.com/ignite/mailflow/internal/service/template"
	"github.com/ignite/mailflow/internal/storage"
)

type testEnv struct {
	router    *chi.Mux
	campaigns *campaign.Service
}

func setupTestServer(t *testing.T, authCfg *config.AuthConfig) *testEnv {
	t.Helper()
	kv := storage.NewMemory()

	contactRepo := kvstore.NewContactRepo(kv)
	templateRepo := kvstore.NewTemplateRepo(kv)
	settingsRepo := kvstore.NewSettingsRepo(kv)
	logRepo := kvstore.NewLogRepo(kv, 1000)

	contacts := contact.NewService(contactRepo)
	templates := template.NewService(templateRepo, mailing.NewTemplateService())
	smtp := settings.NewService(settingsRepo, 0)

	runner := campaign.NewRunner(campaign.NewSimulatedDispatcher(0, 0, 0.1), logRepo, templates, smtp)
	campaigns := campaign.NewService(runner, contacts, templates, nil, time.Minute)
	t.Cleanup(func() { campaigns.Close(context.Background()) })

	h := api.NewHandlers(api.Deps{
		Contacts:  contacts,
		Templates: templates,
		Settings:  smtp,
		Campaigns: campaigns,
		Dashboard: dashboard.NewService(logRepo),
		Logs:      logRepo,
		Assistant: assistant.New(nil),
	})

	var am *auth.AuthManager
	if authCfg != nil {
		var err error
		am, err = auth.NewAuthManager(*authCfg, kvstore.NewSessionRepo(kv))
		require.NoError(t, err)
	}
	health := api.NewHealthChecker(kv, nil, nil, campaigns)
	return &testEnv{
		router:    api.SetupRoutes(h, am, health, []string{"http://localhost:5173"}),
		campaigns: campaigns,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthCheck(t *testing.T) {
	env := setupTestServer(t, nil)

	rec := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	status := decode[api.HealthStatus](t, rec)
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "up", status.Checks["storage"].Status)
	assert.Equal(t, "idle", status.Checks["campaign"].Message)
}

func TestAuthGate(t *testing.T) {
	env := setupTestServer(t, &config.AuthConfig{Enabled: true, Password: "admin123"})

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/contacts", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", nil).Code)

	rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"password": "admin123"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/contacts", nil).Code)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/auth/logout", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/contacts", nil).Code)
}

func TestContactEndpoints(t *testing.T) {
	env := setupTestServer(t, nil)

	rec := env.do(t, http.MethodPost, "/api/contacts", contact.AddInput{Email: "ann@x.com", Name: "Ann"})
	require.Equal(t, http.StatusCreated, rec.Code)
	ann := decode[domain.Contact](t, rec)
	assert.Equal(t, domain.ContactActive, ann.Status)

	rec = env.do(t, http.MethodPost, "/api/contacts", contact.AddInput{Email: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/contacts/import/paste", map[string]string{"text": "bob@x.com, nope\ncat@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"imported":2}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/api/contacts/import/csv", strings.NewReader("email,name\ndan@x.com,Dan\n"))
	req.Header.Set("Content-Type", "text/csv")
	csvRec := httptest.NewRecorder()
	env.router.ServeHTTP(csvRec, req)
	require.Equal(t, http.StatusOK, csvRec.Code)
	assert.JSONEq(t, `{"imported":1}`, csvRec.Body.String())

	list := decode[[]domain.Contact](t, env.do(t, http.MethodGet, "/api/contacts", nil))
	require.Len(t, list, 4)
	assert.Equal(t, "Dan", list[3].Name)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/contacts/"+ann.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/contacts/"+ann.ID, nil).Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/contacts", nil).Code)
	assert.Empty(t, decode[[]domain.Contact](t, env.do(t, http.MethodGet, "/api/contacts", nil)))
}

func TestImportCSVMultipart(t *testing.T) {
	env := setupTestServer(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "contacts.csv")
	require.NoError(t, err)
	io.WriteString(fw, "eve@x.com,Eve\nfrank@x.com\n")
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/contacts/import/csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"imported":2}`, rec.Body.String())
}

func TestTemplateEndpoints(t *testing.T) {
	env := setupTestServer(t, nil)

	list := decode[[]domain.EmailTemplate](t, env.do(t, http.MethodGet, "/api/templates", nil))
	require.Len(t, list, 1)
	assert.Equal(t, domain.DefaultTemplateID, list[0].ID)

	rec := env.do(t, http.MethodPost, "/api/templates", domain.EmailTemplate{
		Name:        "Welcome",
		Subject:     "Hi {{ first_name }}",
		HTMLContent: "<p>Hello {{ name | default: \"Friend\" }}</p>",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	saved := decode[domain.EmailTemplate](t, rec)
	require.NotEmpty(t, saved.ID)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/templates", domain.EmailTemplate{}).Code)

	got := decode[domain.EmailTemplate](t, env.do(t, http.MethodGet, "/api/templates/"+saved.ID, nil))
	assert.Equal(t, "Welcome", got.Name)

	preview := decode[template.Preview](t, env.do(t, http.MethodPost, "/api/templates/"+saved.ID+"/preview", nil))
	assert.Equal(t, "Hi Jane", preview.Subject)
	assert.Contains(t, preview.HTML, "Hello Jane Doe")
	assert.Contains(t, preview.Text, "Hello Jane Doe")

	rec = env.do(t, http.MethodPost, "/api/templates/"+saved.ID+"/preview", map[string]string{"contact_id": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/templates/"+saved.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/templates/"+saved.ID, nil).Code)
}

func TestAssistantEndpointsWithoutKey(t *testing.T) {
	env := setupTestServer(t, nil)

	rec := env.do(t, http.MethodPost, "/api/templates/generate", map[string]string{"topic": "spring sale"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/templates/"+domain.DefaultTemplateID+"/spam-score", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, assistant.MsgMissingKey, decode[map[string]string](t, rec)["analysis"])
}

func TestSMTPSettingsEndpoints(t *testing.T) {
	env := setupTestServer(t, nil)

	cfg := decode[domain.SmtpConfig](t, env.do(t, http.MethodGet, "/api/settings/smtp", nil))
	assert.Equal(t, "smtp.gmail.com", cfg.Host)
	assert.Equal(t, 587, cfg.Port)

	cfg.Username = "me@gmail.com"
	cfg.Password = "app-password"
	rec := env.do(t, http.MethodPut, "/api/settings/smtp", cfg)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[domain.SmtpConfig](t, rec).Password, "password is never echoed")

	cfg.Port = 25
	res := decode[domain.ConnectionTestResult](t, env.do(t, http.MethodPost, "/api/settings/smtp/test", cfg))
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "Google Workspace requires Port 587")

	cfg.Port = 587
	cfg.Password = ""
	res = decode[domain.ConnectionTestResult](t, env.do(t, http.MethodPost, "/api/settings/smtp/test", cfg))
	assert.True(t, res.Success, res.Message)

	cfg.Port = 70000
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/settings/smtp", cfg).Code)
}

func TestCampaignEndToEnd(t *testing.T) {
	env := setupTestServer(t, nil)
	env.do(t, http.MethodPost, "/api/contacts/import/paste", map[string]string{"text": "a@x.com\nb@x.com\nc@x.com"})

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/campaigns/current", nil).Code)

	rec := env.do(t, http.MethodPost, "/api/campaigns/send", campaign.StartInput{All: true, TemplateID: domain.DefaultTemplateID})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, env.campaigns.Wait(ctx))

	snap := decode[domain.RunSnapshot](t, env.do(t, http.MethodGet, "/api/campaigns/current", nil))
	assert.Equal(t, domain.RunCompleted, snap.Status)
	assert.Equal(t, 3, snap.Progress.Current)
	assert.Equal(t, 3, snap.Progress.Success+snap.Progress.Failed)
	assert.Len(t, snap.Transcript, 3)

	logs := decode[[]domain.CampaignLogEntry](t, env.do(t, http.MethodGet, "/api/logs", nil))
	require.Len(t, logs, 3)
	assert.Equal(t, "a@x.com", logs[0].Recipient)

	recent := decode[[]domain.CampaignLogEntry](t, env.do(t, http.MethodGet, "/api/logs?limit=1", nil))
	require.Len(t, recent, 1)
	assert.Equal(t, "c@x.com", recent[0].Recipient)

	stats := decode[domain.DashboardStats](t, env.do(t, http.MethodGet, "/api/dashboard/stats", nil))
	assert.Equal(t, 3, stats.Sent+stats.Failed)

	d := decode[dashboard.Dashboard](t, env.do(t, http.MethodGet, "/api/dashboard", nil))
	assert.Equal(t, 3, d.Total)
	assert.Len(t, d.Recent, 3)

	stream := env.do(t, http.MethodGet, "/api/campaigns/current/stream", nil)
	assert.Equal(t, "text/event-stream", stream.Header().Get("Content-Type"))
	assert.Contains(t, stream.Body.String(), "event: progress\ndata: ")
	assert.Contains(t, stream.Body.String(), `"status":"completed"`)
	assert.True(t, strings.HasSuffix(stream.Body.String(), "event: end\ndata: {}\n\n"))

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/campaigns/current/stop", nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, "/api/campaigns/current/reset", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/campaigns/current", nil).Code)
}

func TestCampaignStartErrors(t *testing.T) {
	env := setupTestServer(t, nil)

	rec := env.do(t, http.MethodPost, "/api/campaigns/send", campaign.StartInput{All: true, TemplateID: domain.DefaultTemplateID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.do(t, http.MethodPost, "/api/contacts", contact.AddInput{Email: "a@x.com"})
	rec = env.do(t, http.MethodPost, "/api/campaigns/send", campaign.StartInput{All: true, TemplateID: "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/campaigns/send", "{broken")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	logs := decode[[]domain.CampaignLogEntry](t, env.do(t, http.MethodGet, "/api/logs", nil))
	assert.Empty(t, logs, "rejected starts log nothing")
}

func TestUnknownRoute(t *testing.T) {
	env := setupTestServer(t, nil)
	rec := env.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())
}
