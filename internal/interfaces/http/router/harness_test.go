package router

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	crmapp "github.com/Replicator56/mini-crm/internal/application/crm"
	identityapp "github.com/Replicator56/mini-crm/internal/application/identity"
	"github.com/Replicator56/mini-crm/internal/domain/crm"
	"github.com/Replicator56/mini-crm/internal/infrastructure/auth"
	"github.com/Replicator56/mini-crm/internal/infrastructure/config"
	"github.com/Replicator56/mini-crm/internal/infrastructure/persistence"
	"github.com/Replicator56/mini-crm/internal/infrastructure/session"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/flash"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPassword = "Password123!"

var csrfPattern = regexp.MustCompile(`name="_csrf" value="([^"]+)"`)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "mini-crm", Env: "test", Timezone: "UTC"},
		Session: config.SessionConfig{
			Secret:       "test-secret-key-at-least-32-chars",
			CookieName:   "crm_session",
			NoticeCookie: "crm_notice",
			MaxAge:       time.Hour,
		},
		HTTP: config.HTTPConfig{
			MaxBodySize:           1 << 20,
			RateLimitEnabled:      true,
			RateLimitRequests:     500,
			RateLimitWindow:       15 * time.Minute,
			AuthRateLimitEnabled:  true,
			AuthRateLimitRequests: 100,
			AuthRateLimitWindow:   15 * time.Minute,
		},
		Telemetry: config.TelemetryConfig{ServiceName: "mini-crm"},
	}
}

// testApp is the whole application behind an httptest.Server, on a
// throwaway SQLite file and an in-memory session store.
type testApp struct {
	t        *testing.T
	server   *httptest.Server
	db       *persistence.Database
	sessions *session.MemoryStore
	clients  *persistence.GormClientRepository
	appts    *persistence.GormAppointmentRepository
	users    *persistence.GormUserRepository
}

func newTestApp(t *testing.T, tweak ...func(*config.Config)) *testApp {
	t.Helper()
	cfg := testConfig()
	for _, fn := range tweak {
		fn(cfg)
	}

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "crm.db"),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	log := zap.NewNop()
	users := persistence.NewGormUserRepository(db.DB)
	clients := persistence.NewGormClientRepository(db.DB)
	appts := persistence.NewGormAppointmentRepository(db.DB)

	signer := auth.NewCookieSigner(cfg.Session.Secret, cfg.App.Name)
	store := session.NewMemoryStore()

	r, err := New(Dependencies{
		Config: cfg,
		Logger: log,
		DB:     db,
		Sessions: session.NewManager(store, signer, session.ManagerConfig{
			CookieName: cfg.Session.CookieName,
			MaxAge:     cfg.Session.MaxAge,
		}),
		Notices:      flash.NewStore(signer, cfg.Session.NoticeCookie, false),
		Auth:         identityapp.NewAuthService(users, log),
		Clients:      crmapp.NewClientService(clients, log),
		Appointments: crmapp.NewAppointmentService(appts, clients, cfg.App.Location(), log),
	})
	require.NoError(t, err)
	t.Cleanup(r.Close)

	server := httptest.NewServer(r.Handler())
	t.Cleanup(server.Close)

	return &testApp{t: t, server: server, db: db, sessions: store, clients: clients, appts: appts, users: users}
}

// browser is one cookie jar; it never follows redirects so tests can
// assert on the 303s.
type browser struct {
	app    *testApp
	client *http.Client
}

func (a *testApp) browser() *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(a.t, err)
	return &browser{
		app: a,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type page struct {
	status   int
	location string
	header   http.Header
	body     string
}

func (b *browser) do(req *http.Request) page {
	b.app.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.app.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.app.t, err)
	return page{
		status:   resp.StatusCode,
		location: resp.Header.Get("Location"),
		header:   resp.Header,
		body:     string(body),
	}
}

func (b *browser) get(path string) page {
	b.app.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.app.server.URL+path, nil)
	require.NoError(b.app.t, err)
	return b.do(req)
}

// post submits form as application/x-www-form-urlencoded
func (b *browser) post(path string, form url.Values, headers ...string) page {
	b.app.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.app.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(b.app.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return b.do(req)
}

// follow GETs the redirect target of p
func (b *browser) follow(p page) page {
	b.app.t.Helper()
	require.Equal(b.app.t, http.StatusSeeOther, p.status, "expected a 303, body: %s", p.body)
	return b.get(p.location)
}

// csrf loads path and returns the token its forms carry
func (b *browser) csrf(path string) string {
	b.app.t.Helper()
	p := b.get(path)
	m := csrfPattern.FindStringSubmatch(p.body)
	require.Len(b.app.t, m, 2, "no CSRF token on %s (status %d)", path, p.status)
	return m[1]
}

// submit posts form to path with the token taken from tokenPage
func (b *browser) submit(tokenPage, path string, form url.Values) page {
	b.app.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("_csrf", b.csrf(tokenPage))
	return b.post(path, form)
}

func (b *browser) register(name, email string) page {
	b.app.t.Helper()
	return b.submit("/register", "/register", url.Values{
		"name":     {name},
		"email":    {email},
		"password": {testPassword},
	})
}

func (b *browser) login(email, password string) page {
	b.app.t.Helper()
	return b.submit("/login", "/login", url.Values{
		"email":    {email},
		"password": {password},
	})
}

func (a *testApp) seedClient(name string) *crm.Client {
	a.t.Helper()
	c, err := crm.NewClient(crm.ClientInput{Name: name})
	require.NoError(a.t, err)
	require.NoError(a.t, a.clients.Create(context.Background(), c))
	return c
}
