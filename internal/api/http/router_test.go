package http_test

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/miniinbox/inbox/internal/api/http"
	"github.com/miniinbox/inbox/internal/api/http/handlers"
	"github.com/miniinbox/inbox/internal/apiclient"
	"github.com/miniinbox/inbox/internal/domain"
	"github.com/miniinbox/inbox/internal/events"
	"github.com/miniinbox/inbox/internal/locale"
	"github.com/miniinbox/inbox/internal/observability"
	"github.com/miniinbox/inbox/internal/persistence"
	"github.com/miniinbox/inbox/internal/service"
	"github.com/miniinbox/inbox/internal/session"
)

var fixedNow = time.Date(2025, 3, 7, 14, 5, 9, 0, time.UTC)

const metricsJSON = `{
	"total_tickets": 200,
	"priority_counts": {"medium": 100, "high": 50, "low": 50},
	"type_counts": {"Incident": 120, "Request": 80},
	"queue_counts": {"Billing": 150, "Technical": 50},
	"language_counts": {"en": 150, "pt": 50}
}`

// fakeTicketAPI mimics the upstream ticket API.
type fakeTicketAPI struct {
	mu          sync.Mutex
	tickets     []domain.Ticket
	patches     []map[string]string
	failPatch   bool
	failList    bool
	failMetrics bool
	metricsBody string
}

func newFakeTicketAPI() *fakeTicketAPI {
	created := domain.NewTimestamp(time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC))
	return &fakeTicketAPI{tickets: []domain.Ticket{
		{ID: 1, CreatedAt: created, CustomerName: "Ana Silva", Channel: "email", Subject: "Cannot login", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow},
		{ID: 2, CreatedAt: created, CustomerName: "Bruno", Channel: "chat", Subject: "Refund", Status: domain.TicketStatusClosed, Priority: domain.TicketPriorityHigh},
	}, metricsBody: metricsJSON}
}

func (f *fakeTicketAPI) handler() nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("GET /tickets", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failList {
			nethttp.Error(w, "unavailable", nethttp.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(f.tickets)
	})
	mux.HandleFunc("PATCH /tickets/{id}", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failPatch {
			nethttp.Error(w, "boom", nethttp.StatusInternalServerError)
			return
		}
		var patch map[string]string
		_ = json.NewDecoder(r.Body).Decode(&patch)
		f.patches = append(f.patches, patch)
		id, _ := strconv.Atoi(r.PathValue("id"))
		for i := range f.tickets {
			if f.tickets[i].ID != id {
				continue
			}
			if s, ok := patch["status"]; ok {
				f.tickets[i].Status = domain.TicketStatus(s)
			}
			if p, ok := patch["priority"]; ok {
				f.tickets[i].Priority = domain.TicketPriority(p)
			}
			_, _ = io.WriteString(w, `{"message": "Ticket updated"}`)
			return
		}
		nethttp.Error(w, `{"detail": "Ticket not found"}`, nethttp.StatusNotFound)
	})
	mux.HandleFunc("GET /metrics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failMetrics {
			nethttp.Error(w, "boom", nethttp.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, f.metricsBody)
	})
	return mux
}

func (f *fakeTicketAPI) setFailPatch(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPatch = v
}

func (f *fakeTicketAPI) setFailList(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failList = v
}

type testEnv struct {
	app      *fiber.App
	upstream *fakeTicketAPI
	drafts   *persistence.MemoryDraftStore
	events   []events.Event
	cookie   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{upstream: newFakeTicketAPI(), drafts: persistence.NewMemoryDraftStore(time.Hour)}
	srv := httptest.NewServer(env.upstream.handler())
	t.Cleanup(srv.Close)

	client, err := apiclient.New(srv.URL, 2*time.Second)
	require.NoError(t, err)
	translations, err := locale.New("en")
	require.NoError(t, err)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	record := func(_ context.Context, e events.Event) error {
		env.events = append(env.events, e)
		return nil
	}
	dispatcher.Subscribe(events.EventTicketStatusChanged, record)
	dispatcher.Subscribe(events.EventTicketPriorityChanged, record)

	ticketService := service.NewTicketService(service.TicketDependencies{
		Client:     client,
		Drafts:     env.drafts,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	// A cancelled clock context makes each stream emit once and end.
	clockCtx, cancel := context.WithCancel(context.Background())
	cancel()

	app := fiber.New(fiber.Config{Views: httptransport.NewViews(false)})
	httptransport.RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	layout := handlers.NewLayout(translations, func() time.Time { return fixedNow })
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler("mini-inbox", "test", map[string]handlers.Pinger{
			"ticket_api": client,
			"drafts":     env.drafts,
		}, metrics),
		Dashboard: handlers.NewDashboardHandler(service.NewDashboardService(client), layout, logger),
		Tickets:   handlers.NewTicketsHandler(ticketService, layout, logger),
		Clock:     handlers.NewClockHandler(clockCtx, time.Second, func() time.Time { return fixedNow }, logger),
	})
	env.app = app
	return env
}

// do sends a request carrying the env's session cookie and keeps any cookie
// the server issues.
func (e *testEnv) do(t *testing.T, method, target string, form url.Values) (int, string, *nethttp.Response) {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if e.cookie != "" {
		req.Header.Set("Cookie", session.CookieName+"="+e.cookie)
	}
	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			e.cookie = c.Value
		}
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw), resp
}

func TestRootRedirectsToDashboard(t *testing.T) {
	env := newTestEnv(t)
	status, _, resp := env.do(t, "GET", "/", nil)
	assert.Equal(t, fiber.StatusFound, status)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	status, body, _ := env.do(t, "GET", "/dashboard", nil)
	require.Equal(t, fiber.StatusOK, status)

	assert.Contains(t, body, "Mini Inbox - Ticket Manager")
	assert.Contains(t, body, "07/03/2025 14:05:09")
	assert.Contains(t, body, `href="/dashboard" class="active"`)
	assert.Contains(t, body, `id="total-tickets">200<`)
	assert.Contains(t, body, `id="high-priority">50<`)
	assert.Contains(t, body, "Needs attention!")
	assert.Contains(t, body, "width: 50.0%")
	assert.Contains(t, body, "width: 25.0%")
	assert.Contains(t, body, "#1</span> Incident")
	assert.Contains(t, body, "EN: 150")
	assert.Contains(t, body, "PT: 50")
}

func TestDashboard_UpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.failMetrics = true

	status, body, _ := env.do(t, "GET", "/dashboard", nil)
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Contains(t, body, "Failed to load metrics.")
	assert.NotContains(t, body, "total-tickets")
}

func TestDashboard_EmptyMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.metricsBody = `{"total_tickets":0,"priority_counts":{}}`

	status, body, _ := env.do(t, "GET", "/dashboard", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `id="total-tickets">0<`)
	assert.Contains(t, body, `id="high-priority">0<`)
	assert.NotContains(t, body, "Failed to load metrics.")
	assert.NotContains(t, body, "NaN")
}

func TestTicketList_Search(t *testing.T) {
	env := newTestEnv(t)

	status, body, _ := env.do(t, "GET", "/tickets", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "Ana Silva")
	assert.Contains(t, body, "Bruno")
	assert.Contains(t, body, "2 tickets")
	assert.Contains(t, body, "02/01/2025")
	assert.Contains(t, body, `href="/tickets" class="active"`)

	_, body, _ = env.do(t, "GET", "/tickets?q=ana", nil)
	assert.Contains(t, body, "Ana Silva")
	assert.NotContains(t, body, "Bruno")
	assert.Contains(t, body, "1 ticket")
	assert.Contains(t, body, `value="ana"`)

	_, body, _ = env.do(t, "GET", "/tickets?q=zzz", nil)
	assert.Contains(t, body, "No tickets found.")
}

func TestTicketEdit_SaveFlow(t *testing.T) {
	env := newTestEnv(t)

	status, body, _ := env.do(t, "GET", "/tickets/1", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.NotEmpty(t, env.cookie)
	assert.Contains(t, body, "Cannot login")
	assert.NotContains(t, body, "UNSAVED")

	status, body, _ = env.do(t, "POST", "/tickets/1/priority", url.Values{"priority": {"high"}})
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "UNSAVED")

	status, body, _ = env.do(t, "POST", "/tickets/1/save", url.Values{})
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "Changes saved.")
	assert.NotContains(t, body, "UNSAVED")
	assert.Contains(t, body, `class="badge badge-red">High<`)

	require.Len(t, env.upstream.patches, 1)
	assert.Equal(t, map[string]string{"status": "open", "priority": "high"}, env.upstream.patches[0])
	require.Len(t, env.events, 1)
	assert.Equal(t, events.EventTicketPriorityChanged, env.events[0].Type)
}

func TestTicketEdit_SaveFailureKeepsDraft(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, "GET", "/tickets/1", nil)
	env.do(t, "POST", "/tickets/1/status", url.Values{"status": {"closed"}})
	env.upstream.setFailPatch(true)

	status, body, _ := env.do(t, "POST", "/tickets/1/save", url.Values{})
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Contains(t, body, `role="alert"`)
	assert.Contains(t, body, "Error saving changes!")
	assert.Contains(t, body, "UNSAVED")

	env.upstream.setFailPatch(false)
	status, body, _ = env.do(t, "POST", "/tickets/1/save", url.Values{})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "Changes saved.")
	assert.NotContains(t, body, "UNSAVED")
	require.Len(t, env.upstream.patches, 1)
	assert.Equal(t, "closed", env.upstream.patches[0]["status"])
}

func TestTicketEdit_SaveSucceedsWhileListIsDown(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, "GET", "/tickets/1", nil)
	env.do(t, "POST", "/tickets/1/status", url.Values{"status": {"closed"}})
	env.upstream.setFailList(true)

	status, body, _ := env.do(t, "POST", "/tickets/1/save", url.Values{})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "Changes saved.")
	assert.NotContains(t, body, "UNSAVED")
	assert.NotContains(t, body, "Error saving changes!")
	require.Len(t, env.upstream.patches, 1)
	assert.Equal(t, "closed", env.upstream.patches[0]["status"])
}

func TestTicketEdit_SaveWhileAnotherSaveRuns(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, "GET", "/tickets/1", nil)
	env.do(t, "POST", "/tickets/1/status", url.Values{"status": {"closed"}})

	release, ok, err := env.drafts.AcquireSave(context.Background(), persistence.DraftKey{SessionID: env.cookie, TicketID: 1})
	require.NoError(t, err)
	require.True(t, ok)
	defer release()

	status, body, _ := env.do(t, "POST", "/tickets/1/save", url.Values{})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Contains(t, body, "Saving...")
	assert.Contains(t, body, "UNSAVED")
	assert.Empty(t, env.upstream.patches)
}

func TestTicketEdit_Cancel(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, "GET", "/tickets/1", nil)

	_, body, _ := env.do(t, "POST", "/tickets/1/status", url.Values{"status": {"closed"}})
	assert.Contains(t, body, "UNSAVED")

	_, body, _ = env.do(t, "POST", "/tickets/1/cancel", url.Values{})
	assert.NotContains(t, body, "UNSAVED")
	assert.Empty(t, env.upstream.patches)
}

func TestTicketEdit_ReloadDiscardsDraft(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, "GET", "/tickets/1", nil)
	env.do(t, "POST", "/tickets/1/priority", url.Values{"priority": {"medium"}})

	_, body, _ := env.do(t, "GET", "/tickets/1", nil)
	assert.NotContains(t, body, "UNSAVED")
}

func TestTicketEdit_InvalidValue(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, "GET", "/tickets/1", nil)

	status, body, _ := env.do(t, "POST", "/tickets/1/status", url.Values{"status": {"pending"}})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body, "Invalid status: pending")
	assert.NotContains(t, body, "UNSAVED")
}

func TestTicketDetail_NotFound(t *testing.T) {
	env := newTestEnv(t)
	status, body, _ := env.do(t, "GET", "/tickets/99", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Contains(t, body, "Ticket not found")
}

func TestTicketDetail_InvalidID(t *testing.T) {
	env := newTestEnv(t)
	status, body, _ := env.do(t, "GET", "/tickets/abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body, "VALIDATION_FAILED")
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)
	status, body, _ := env.do(t, "GET", "/nope", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Contains(t, body, "NOT_FOUND")
}

func TestClockStream(t *testing.T) {
	env := newTestEnv(t)
	status, body, resp := env.do(t, "GET", "/clock", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "data: 07/03/2025 14:05:09\n\n", body)
	assert.Empty(t, env.cookie)
}

func TestStaticAssets(t *testing.T) {
	env := newTestEnv(t)
	status, body, _ := env.do(t, "GET", "/static/app.css", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, ".badge-red")
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	status, body, _ := env.do(t, "GET", "/health/live", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"status":"alive","service":"mini-inbox","version":"test"}`, body)

	status, body, _ = env.do(t, "GET", "/health/ready", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"status":"ready","dependencies":{"drafts":"ok","ticket_api":"ok"}}`, body)

	env.do(t, "GET", "/tickets", nil)
	status, body, _ = env.do(t, "GET", "/health/stats", nil)
	assert.Equal(t, fiber.StatusOK, status)
	var stats observability.Snapshot
	require.NoError(t, json.Unmarshal([]byte(body), &stats))
	assert.Contains(t, stats.Requests, observability.Counter{Key: "/tickets|GET|200", Count: 1})
}

func TestHealth_UnknownPathAnswersJSON(t *testing.T) {
	env := newTestEnv(t)
	status, body, _ := env.do(t, "GET", "/health/nope", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"Cannot GET /health/nope"}}`, body)
}
