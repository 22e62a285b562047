package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/valuationdesk/internal/client/api"
	"github.com/dmitrijs2005/valuationdesk/internal/client/config"
	"github.com/dmitrijs2005/valuationdesk/internal/client/dashboard"
	"github.com/dmitrijs2005/valuationdesk/internal/client/models"
	"github.com/dmitrijs2005/valuationdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/valuationdesk/internal/client/storage"
	"github.com/dmitrijs2005/valuationdesk/internal/common"
	"github.com/dmitrijs2005/valuationdesk/internal/logging"
	"github.com/dmitrijs2005/valuationdesk/internal/report/export"
)

type fakeAPI struct {
	mu        sync.Mutex
	data      map[string][]models.Record
	session   *models.Session
	loginErr  error
	lists     int
	statuses  []string
	reworks   []string
	presignTo string
}

func (f *fakeAPI) InvalidateCache(ctx context.Context, substr string) {}

func (f *fakeAPI) List(ctx context.Context, c models.Collection) ([]models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	return f.data[c.Path], nil
}

func (f *fakeAPI) Session(ctx context.Context) (*models.Session, error) { return f.session, nil }

func (f *fakeAPI) Login(ctx context.Context, clientID, username, password string) (*models.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.session = &models.Session{Identity: models.Identity{Username: username, Role: common.RoleManager, ClientID: clientID}, Token: "t"}
	return f.session, nil
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.session = nil
	return nil
}

func (f *fakeAPI) Record(ctx context.Context, form models.FormType, uniqueID string) (models.Record, error) {
	for _, r := range f.data[models.CollectionFor(form).Path] {
		if r.UniqueID() == uniqueID {
			full := r.Clone()
			full["pdfDetails"] = map[string]any{"bankName": "Union Bank of India"}
			return full, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAPI) SetStatus(ctx context.Context, form models.FormType, uniqueID string, status models.Status) error {
	f.statuses = append(f.statuses, string(form)+":"+uniqueID+":"+string(status))
	return nil
}

func (f *fakeAPI) RequestRework(ctx context.Context, form models.FormType, uniqueID, comments string) error {
	f.reworks = append(f.reworks, uniqueID+":"+comments)
	return nil
}

func (f *fakeAPI) PresignExport(ctx context.Context, fileName string) (api.Presigned, error) {
	if f.presignTo == "" {
		return api.Presigned{}, errors.New("archive disabled")
	}
	return api.Presigned{URL: f.presignTo + "/upload/" + fileName, Key: "exports/" + fileName}, nil
}

func sampleData() map[string][]models.Record {
	return map[string][]models.Record{
		"/valuations": {
			{"_id": "1", "uniqueId": "U1", "clientName": "Asha Patil", "bankName": "UBI", "city": "Pune",
				"engineerName": "Ravi", "status": "pending", "createdAt": "2025-06-01T08:00:00Z",
				"mobileNumber": "98200", "address": "Baner"},
			{"_id": "2", "uniqueId": "U2", "clientName": "Mohan", "bankName": "UBI", "city": "Mumbai",
				"engineerName": "Ravi", "status": "approved", "createdAt": "2025-05-01T08:00:00Z"},
		},
		"/bof-maharashtra": {
			{"_id": "3", "uniqueId": "U3", "clientName": "Kiran", "bankName": "BOM", "city": "Pune",
				"engineerName": "Asha", "status": "rework", "createdAt": "2025-05-30T08:00:00Z"},
		},
	}
}

type stubPinger struct {
	mu  sync.Mutex
	err error
}

func (p *stubPinger) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *stubPinger) set(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func newTestApp(t *testing.T, fa *fakeAPI, input string) (*App, *syncBuffer) {
	t.Helper()
	repos, err := storage.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.OutputDir = t.TempDir()

	out := &syncBuffer{}
	log := logging.Discard()
	return &App{
		config:   cfg,
		api:      fa,
		dash:     dashboard.New(fa, log),
		exporter: export.New(nil, log, export.WithRasterizer(export.NewBasicRasterizer(1), 1)),
		meta:     repos.Metadata,
		history:  repos.Exports,
		health:   &stubPinger{},
		http:     http.DefaultClient,
		log:      log,
		reader:   bufio.NewReader(strings.NewReader(input)),
		out:      out,
		now:      func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) },
		mode:     ModeOnline,
		view:     dashboard.View{Page: 1, PageSize: cfg.PageSize},
		session:  fa.session,
	}, out
}

func manager() *models.Session {
	return &models.Session{Identity: models.Identity{Username: "mgr", Role: common.RoleManager, ClientID: "C1"}, Token: "t"}
}

func TestApp_LoginLoadsDashboard(t *testing.T) {
	origText, origPw := getSimpleText, getPassword
	t.Cleanup(func() { getSimpleText, getPassword = origText, origPw })
	answers := []string{"C1", "asha"}
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		v := answers[0]
		answers = answers[1:]
		return v, nil
	}
	getPassword = func(io.Writer) ([]byte, error) { return []byte("secret"), nil }

	fa := &fakeAPI{data: sampleData()}
	a, out := newTestApp(t, fa, "")

	require.NoError(t, a.Login(context.Background()))
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "(asha@C1 online)", a.getStatus())
	assert.Contains(t, out.String(), "Sign in successful")
	assert.Contains(t, out.String(), "Asha Patil")
	assert.Contains(t, out.String(), "Page 1 of 1 (3 records)")
	assert.Contains(t, out.String(), "0d 02h 00m 00s", "pending record shows its age")

	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, a.isLoggedIn())
}

func TestApp_LoginRequiresAllFields(t *testing.T) {
	origText, origPw := getSimpleText, getPassword
	t.Cleanup(func() { getSimpleText, getPassword = origText, origPw })
	getSimpleText = func(*bufio.Reader, string, io.Writer) (string, error) { return "", nil }
	getPassword = func(io.Writer) ([]byte, error) { return []byte("x"), nil }

	a, out := newTestApp(t, &fakeAPI{}, "")
	err := a.Login(context.Background())
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.Contains(t, out.String(), "ClientId, username, and password are required")
}

func TestApp_DashboardViewIsPersisted(t *testing.T) {
	ctx := context.Background()
	fa := &fakeAPI{data: sampleData(), session: manager()}
	a, out := newTestApp(t, fa, "")

	require.NoError(t, a.Dashboard(ctx, []string{"filter", "city=Pune", "status=Pending"}))
	assert.Contains(t, out.String(), "Page 1 of 1 (1 records)")
	assert.Contains(t, out.String(), "U1")

	require.NoError(t, a.Dashboard(ctx, []string{"sort", "clientName"}))
	require.NoError(t, a.Dashboard(ctx, []string{"sort", "clientName"}))

	var v dashboard.View
	found, err := metadata.GetJSON(ctx, a.meta, metadata.KeyView, &v)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Pune", v.Filter.City)
	assert.Equal(t, models.StatusPending, v.Filter.Status)
	assert.Equal(t, dashboard.Sort{Field: "clientName", Desc: true}, v.Sort)

	assert.ErrorIs(t, a.Dashboard(ctx, []string{"filter", "status=bogus"}), errUsage)
	assert.ErrorIs(t, a.Dashboard(ctx, []string{"page", "x"}), errUsage)

	require.NoError(t, a.Dashboard(ctx, []string{"filter", "clear"}))
	require.NoError(t, a.Dashboard(ctx, []string{"page", "9"}))
	assert.Equal(t, 1, a.view.Page, "page is clamped")

	out.b.Reset()
	require.NoError(t, a.Dashboard(ctx, []string{"values", "city"}))
	assert.Equal(t, "Mumbai\nPune\n", out.String())
	assert.Equal(t, 1, fa.lists/len(models.Collections), "sub commands reuse loaded records")
}

func TestApp_StatsAndCopy(t *testing.T) {
	ctx := context.Background()
	fa := &fakeAPI{data: sampleData(), session: manager()}
	a, out := newTestApp(t, fa, "")

	require.NoError(t, a.Stats(ctx))
	assert.Contains(t, out.String(), "Total: 3\n")
	assert.Contains(t, out.String(), "Completion rate: 33%")

	out.b.Reset()
	require.NoError(t, a.Copy(ctx, []string{"U1"}))
	assert.Equal(t, "Client Name: Asha Patil\nPhone Number: 98200\nBank Name: UBI\nClient Address: Baner\n", out.String())

	assert.ErrorIs(t, a.Copy(ctx, []string{"nope"}), errUsage)
}

func TestApp_OfflineKeepsLastRecords(t *testing.T) {
	ctx := context.Background()
	fa := &fakeAPI{data: sampleData(), session: manager()}
	a, out := newTestApp(t, fa, "")

	require.NoError(t, a.Dashboard(ctx, nil))
	calls := fa.lists

	a.setMode(ctx, ModeOffline)
	require.NoError(t, a.Dashboard(ctx, []string{"refresh"}))
	assert.Equal(t, calls, fa.lists)
	assert.Contains(t, out.String(), "Switched to offline mode")
	assert.Contains(t, out.String(), "Offline: showing last loaded records")
	assert.Contains(t, out.String(), "(3 records)")
}

func TestApp_ReviewRequiresReviewer(t *testing.T) {
	ctx := context.Background()
	fa := &fakeAPI{data: sampleData()}
	a, _ := newTestApp(t, fa, "please fix\n\n")

	a.session = &models.Session{Identity: models.Identity{Username: "u", Role: common.RoleUser, ClientID: "C1"}}
	assert.ErrorIs(t, a.SetStatus(ctx, models.StatusApproved, []string{"U1"}), common.ErrorForbidden)

	a.session = manager()
	assert.ErrorIs(t, a.SetStatus(ctx, models.StatusApproved, []string{"missing"}), common.ErrorNotFound)
	assert.ErrorIs(t, a.SetStatus(ctx, models.StatusApproved, nil), errUsage)

	require.NoError(t, a.SetStatus(ctx, models.StatusRejected, []string{"U3"}))
	require.NoError(t, a.Rework(ctx, []string{"U1"}))
	assert.Equal(t, []string{"bomFlat:U3:rejected"}, fa.statuses)
	assert.Equal(t, []string{"U1:please fix"}, fa.reworks)
}

func TestApp_ExportWritesFileAndHistory(t *testing.T) {
	ctx := context.Background()
	fa := &fakeAPI{data: sampleData(), session: manager()}
	a, out := newTestApp(t, fa, "")

	require.NoError(t, a.Export(ctx, []string{"U1", "docx"}))

	path := filepath.Join(a.config.OutputDir, "valuation_Asha Patil.docx")
	_, err := os.Stat(path)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Saved "+path)

	hist, err := a.history.ByUniqueID(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "docx", hist[0].Format)
	assert.Equal(t, "ubiShop", hist[0].FormType)

	assert.ErrorIs(t, a.Export(ctx, []string{"U1", "xls"}), errUsage)
	assert.ErrorIs(t, a.Export(ctx, []string{"missing"}), errUsage)

	out.b.Reset()
	require.NoError(t, a.History(ctx, nil))
	assert.Contains(t, out.String(), path)
}

func TestApp_ExportArchiveUploads(t *testing.T) {
	var (
		gotPath string
		gotType string
		gotLen  int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotPath, gotType, gotLen = r.URL.Path, r.Header.Get("Content-Type"), len(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx := context.Background()
	fa := &fakeAPI{data: sampleData(), session: manager(), presignTo: srv.URL}
	a, out := newTestApp(t, fa, "")

	require.NoError(t, a.Export(ctx, []string{"U3", "pdf", "archive"}))
	assert.Equal(t, "/upload/valuation_Kiran.pdf", gotPath)
	assert.Equal(t, "application/pdf", gotType)
	assert.Positive(t, gotLen)
	assert.Contains(t, out.String(), "Archived as exports/valuation_Kiran.pdf")

	fa.presignTo = ""
	assert.Error(t, a.Export(ctx, []string{"U3", "pdf", "archive"}))
}

func TestApp_Watch(t *testing.T) {
	ctx := context.Background()
	fa := &fakeAPI{data: sampleData(), session: manager()}
	a, out := newTestApp(t, fa, "")

	require.NoError(t, a.Watch(ctx, []string{"2"}))
	assert.Equal(t, 2, strings.Count(out.String(), "U1\t0d 02h 00m 00s"))
	assert.Equal(t, 2, strings.Count(out.String(), "U3\t"))
	assert.NotContains(t, out.String(), "U2\t", "closed records are not watched")

	assert.ErrorIs(t, a.Watch(ctx, []string{"0"}), errUsage)
}

func TestApp_OnlineStatusWatcher(t *testing.T) {
	fa := &fakeAPI{session: manager()}
	a, out := newTestApp(t, fa, "")
	p := &stubPinger{err: errors.New("down")}
	a.health = p

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return !a.online() }, time.Second, 5*time.Millisecond)
	p.set(nil)
	require.Eventually(t, a.online, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Contains(t, out.String(), "Switched to offline mode")
	assert.Contains(t, out.String(), "Switched to online mode")
}
