package http_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/pinmap/internal/adapters/http"
	"github.com/samirrijal/pinmap/internal/adapters/filestore"
	"github.com/samirrijal/pinmap/internal/adapters/nominatim"
	"github.com/samirrijal/pinmap/internal/core/domain"
	"github.com/samirrijal/pinmap/internal/core/usecases"
	"github.com/samirrijal/pinmap/internal/pkg/broadcast"
)

// ---- Mocks ----

type mockPinRepo struct {
	mu       sync.Mutex
	pins     map[string]domain.Pin
	saveFn   func(ctx context.Context, pin *domain.Pin) error
	listFn   func(ctx context.Context) ([]domain.Pin, error)
	deleteFn func(ctx context.Context, id string) (bool, error)
}

func newMockPinRepo() *mockPinRepo {
	return &mockPinRepo{pins: map[string]domain.Pin{}}
}

func (m *mockPinRepo) Save(ctx context.Context, pin *domain.Pin) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, pin)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pins[pin.ID] = *pin
	return nil
}

func (m *mockPinRepo) Get(ctx context.Context, id string) (*domain.Pin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pins[id]
	if !ok {
		return nil, domain.ErrPinNotFound
	}
	return &p, nil
}

func (m *mockPinRepo) List(ctx context.Context) ([]domain.Pin, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Pin, 0, len(m.pins))
	for _, p := range m.pins {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockPinRepo) Delete(ctx context.Context, id string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pins[id]; !ok {
		return false, nil
	}
	delete(m.pins, id)
	return true, nil
}

type staticResolver string

func (s staticResolver) Resolve(ctx context.Context, lat, lon float64) string { return string(s) }

type mockPinger struct{ err error }

func (m mockPinger) Ping(ctx context.Context) error { return m.err }

type mockEvents struct{ connected bool }

func (m mockEvents) Connected() bool { return m.connected }

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(repo *mockPinRepo, opts ...func(*handler.Dependencies)) *handler.Dependencies {
	b := broadcast.New(10)
	d := &handler.Dependencies{
		Pins:        usecases.NewPinService(repo, staticResolver("Testville"), b, nil),
		Broadcaster: b,
		Store:       mockPinger{},
		Heartbeat:   time.Minute,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

// ---- Pin handler tests ----

func TestListPins_Empty(t *testing.T) {
	app := setupApp(makeDeps(newMockPinRepo()))

	resp, err := app.Test(httptest.NewRequest("GET", "/pins", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body := strings.TrimSpace(string(readBody(t, resp.Body))); body != "[]" {
		t.Errorf("expected empty array, got %s", body)
	}
}

func TestListPins_Error(t *testing.T) {
	repo := newMockPinRepo()
	repo.listFn = func(context.Context) ([]domain.Pin, error) { return nil, errors.New("disk gone") }
	app := setupApp(makeDeps(repo))

	resp, _ := app.Test(httptest.NewRequest("GET", "/pins", nil), -1)
	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

func TestListPins_ETag(t *testing.T) {
	repo := newMockPinRepo()
	repo.pins["a"] = domain.Pin{ID: "a", Name: "A", Location: "X"}
	app := setupApp(makeDeps(repo))

	resp, _ := app.Test(httptest.NewRequest("GET", "/pins", nil), -1)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("expected no-cache, got %q", cc)
	}

	req := httptest.NewRequest("GET", "/pins", nil)
	req.Header.Set("If-None-Match", etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

func TestETag_ChangesWithPinsAndSkipsOtherRoutes(t *testing.T) {
	repo := newMockPinRepo()
	repo.pins["a"] = domain.Pin{ID: "a", Name: "A", Location: "X"}
	app := setupApp(makeDeps(repo))

	resp, _ := app.Test(httptest.NewRequest("GET", "/pins", nil), -1)
	first := resp.Header.Get("ETag")
	if !strings.HasPrefix(first, "W/") {
		t.Fatalf("expected weak ETag, got %q", first)
	}

	repo.mu.Lock()
	repo.pins["b"] = domain.Pin{ID: "b", Name: "B", Location: "Y"}
	repo.mu.Unlock()

	req := httptest.NewRequest("GET", "/pins", nil)
	req.Header.Set("If-None-Match", first)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 after the list changed, got %d", resp.StatusCode)
	}
	if resp.Header.Get("ETag") == first {
		t.Error("expected a new ETag after the list changed")
	}

	for _, path := range []string{"/health", "/generate-light-map"} {
		resp, _ := app.Test(httptest.NewRequest("GET", path, nil), -1)
		if tag := resp.Header.Get("ETag"); tag != "" {
			t.Errorf("%s: unexpected ETag %q", path, tag)
		}
	}
}

func TestCreatePin_Success(t *testing.T) {
	repo := newMockPinRepo()
	deps := makeDeps(repo)
	app := setupApp(deps)

	resp := postJSON(t, app, "/pins", `{"lat":52.52,"lng":13.405,"name":"Cafe","image":"https://example.com/c.jpg"}`)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var result handler.CreatePinResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Status != "success" {
		t.Errorf("expected status success, got %s", result.Status)
	}
	p := result.PinData
	if p == nil || p.ID == "" || p.Location != "Testville" || p.Image == "" || p.Timestamp.IsZero() {
		t.Fatalf("unexpected pin_data: %+v", p)
	}
	if _, err := repo.Get(context.Background(), p.ID); err != nil {
		t.Errorf("pin not persisted: %v", err)
	}
	if got := deps.Broadcaster.History(); len(got) != 1 || !strings.Contains(got[0], p.ID) {
		t.Errorf("expected pin broadcast, history=%v", got)
	}
}

func TestCreatePin_ZeroCoordinatesAccepted(t *testing.T) {
	app := setupApp(makeDeps(newMockPinRepo()))
	resp := postJSON(t, app, "/pins", `{"lat":0,"lng":0,"name":"Null Island"}`)
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestCreatePin_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"lat":`},
		{"missing lat", `{"lng":1,"name":"x"}`},
		{"missing lng", `{"lat":1,"name":"x"}`},
		{"missing name", `{"lat":1,"lng":1}`},
		{"empty name", `{"lat":1,"lng":1,"name":""}`},
		{"blank name", `{"lat":1,"lng":1,"name":"   "}`},
		{"lat too high", `{"lat":90.5,"lng":1,"name":"x"}`},
		{"lat too low", `{"lat":-91,"lng":1,"name":"x"}`},
		{"lng out of range", `{"lat":1,"lng":180.01,"name":"x"}`},
		{"lat wrong type", `{"lat":"north","lng":1,"name":"x"}`},
		{"name too long", fmt.Sprintf(`{"lat":1,"lng":1,"name":%q}`, strings.Repeat("n", 201))},
		{"image too long", fmt.Sprintf(`{"lat":1,"lng":1,"name":"x","image":%q}`, strings.Repeat("i", 2049))},
	}

	repo := newMockPinRepo()
	app := setupApp(makeDeps(repo))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, app, "/pins", tt.body)
			if resp.StatusCode != 400 {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			var body map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if msg, _ := body["error"].(string); msg == "" {
				t.Errorf("expected error message, got %v", body)
			}
		})
	}
	if len(repo.pins) != 0 {
		t.Errorf("invalid input must not be stored, got %d pins", len(repo.pins))
	}
}

func TestCreatePin_SaveFailure(t *testing.T) {
	repo := newMockPinRepo()
	repo.saveFn = func(context.Context, *domain.Pin) error { return errors.New("no space left on device") }
	deps := makeDeps(repo)
	app := setupApp(deps)

	resp := postJSON(t, app, "/pins", `{"lat":1,"lng":1,"name":"x"}`)
	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(readBody(t, resp.Body)), "no space left") {
		t.Error("expected underlying error in message")
	}
	if len(deps.Broadcaster.History()) != 0 {
		t.Error("failed write must not be broadcast")
	}
}

func TestCreatePin_ConcurrentDistinctIDs(t *testing.T) {
	repo := newMockPinRepo()
	app := setupApp(makeDeps(repo))

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest("POST", "/pins", strings.NewReader(fmt.Sprintf(`{"lat":1,"lng":1,"name":"p%d"}`, i)))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			if err != nil || resp.StatusCode != 200 {
				t.Errorf("create %d failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if len(repo.pins) != n {
		t.Errorf("expected %d distinct pins, got %d", n, len(repo.pins))
	}
}

func TestGetPin(t *testing.T) {
	repo := newMockPinRepo()
	repo.pins["p1"] = domain.Pin{ID: "p1", Name: "One"}
	app := setupApp(makeDeps(repo))

	resp, _ := app.Test(httptest.NewRequest("GET", "/pins/p1", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp, _ = app.Test(httptest.NewRequest("GET", "/pins/zzz", nil), -1)
	if resp.StatusCode != 404 {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDeletePin(t *testing.T) {
	repo := newMockPinRepo()
	repo.pins["p1"] = domain.Pin{ID: "p1", Name: "One"}
	app := setupApp(makeDeps(repo))

	resp, _ := app.Test(httptest.NewRequest("DELETE", "/pins/p1", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var ok handler.StatusResponse
	_ = json.NewDecoder(resp.Body).Decode(&ok)
	if ok.Status != "success" || ok.Message != "Pin deleted successfully" {
		t.Errorf("unexpected body %+v", ok)
	}

	resp, _ = app.Test(httptest.NewRequest("DELETE", "/pins/p1", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var nf handler.StatusResponse
	_ = json.NewDecoder(resp.Body).Decode(&nf)
	if nf.Status != "error" || nf.Message != "Pin not found" {
		t.Errorf("unexpected body %+v", nf)
	}
}

func TestDeletePin_Failure(t *testing.T) {
	repo := newMockPinRepo()
	repo.deleteFn = func(context.Context, string) (bool, error) { return false, errors.New("permission denied") }
	app := setupApp(makeDeps(repo))

	resp, _ := app.Test(httptest.NewRequest("DELETE", "/pins/p1", nil), -1)
	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	var body handler.StatusResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Status != "error" || !strings.Contains(body.Message, "permission denied") {
		t.Errorf("unexpected body %+v", body)
	}
}

// TestCreatePin_Berlin drives the full path: HTTP, resolver, Nominatim client,
// file store and broadcaster.
func TestCreatePin_Berlin(t *testing.T) {
	var lookups int
	var mu sync.Mutex
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		lookups++
		mu.Unlock()
		_, _ = w.Write([]byte(`{"display_name":"Berlin, Germany","address":{"city":"Berlin"}}`))
	}))
	defer geo.Close()

	store, err := filestore.New(filepath.Join(t.TempDir(), "pins"))
	if err != nil {
		t.Fatal(err)
	}
	resolver := usecases.NewLocationResolver(nominatim.New(geo.URL), usecases.ResolverOptions{Pace: -1})
	b := broadcast.New(100)
	app := setupApp(&handler.Dependencies{
		Pins:        usecases.NewPinService(store, resolver, b, nil),
		Broadcaster: b,
		Store:       store,
	})

	for i := 0; i < 2; i++ {
		resp := postJSON(t, app, "/pins", `{"lat":52.52,"lng":13.405,"name":"Cafe"}`)
		if resp.StatusCode != 200 {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var result handler.CreatePinResponse
		_ = json.NewDecoder(resp.Body).Decode(&result)
		if result.PinData.Location != "Berlin" {
			t.Errorf("expected Berlin, got %s", result.PinData.Location)
		}
	}
	if lookups != 1 {
		t.Errorf("expected a single geocoding request, got %d", lookups)
	}

	resp, _ := app.Test(httptest.NewRequest("GET", "/pins", nil), -1)
	var pins []domain.Pin
	_ = json.NewDecoder(resp.Body).Decode(&pins)
	if len(pins) != 2 || pins[0].ID == pins[1].ID {
		t.Errorf("expected 2 distinct pins, got %+v", pins)
	}
	if len(b.History()) != 2 {
		t.Errorf("expected 2 broadcasts, got %d", len(b.History()))
	}
}

// ---- Stream tests ----

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStream_ReplayThenLive(t *testing.T) {
	deps := makeDeps(newMockPinRepo())
	deps.Broadcaster.Broadcast(`{"id":"old-1"}`)
	deps.Broadcaster.Broadcast(`{"id":"old-2"}`)
	app := setupApp(deps)

	type result struct {
		resp *http.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := app.Test(httptest.NewRequest("GET", "/stream", nil), -1)
		done <- result{resp, err}
	}()

	waitFor(t, func() bool { return deps.Broadcaster.Len() == 1 })
	deps.Broadcaster.Broadcast(`{"id":"live-1"}`)
	deps.Broadcaster.Close()

	var r result
	select {
	case r = <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("stream did not finish after broadcaster close")
	}
	if r.err != nil {
		t.Fatal(r.err)
	}
	if ct := r.resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("unexpected content type %q", ct)
	}

	body := string(readBody(t, r.resp.Body))
	want := "data: {\"id\":\"old-1\"}\n\ndata: {\"id\":\"old-2\"}\n\ndata: {\"id\":\"live-1\"}\n\n"
	if !strings.Contains(body, want) {
		t.Errorf("events missing or out of order:\n%s", body)
	}
	if !strings.HasPrefix(body, ": connected\n\n") {
		t.Errorf("expected connect comment first, got %q", body)
	}
}

func TestStream_Heartbeat(t *testing.T) {
	deps := makeDeps(newMockPinRepo(), func(d *handler.Dependencies) {
		d.Heartbeat = 20 * time.Millisecond
	})
	app := setupApp(deps)

	done := make(chan *http.Response, 1)
	go func() {
		resp, _ := app.Test(httptest.NewRequest("GET", "/stream", nil), -1)
		done <- resp
	}()

	waitFor(t, func() bool { return deps.Broadcaster.Len() == 1 })
	time.Sleep(100 * time.Millisecond)
	deps.Broadcaster.Close()

	resp := <-done
	if resp == nil {
		t.Fatal("no response")
	}
	if body := string(readBody(t, resp.Body)); !strings.Contains(body, ": keep-alive\n\n") {
		t.Errorf("expected heartbeat comment, got %q", body)
	}
}

func TestStream_RejectedAfterShutdown(t *testing.T) {
	deps := makeDeps(newMockPinRepo())
	deps.Broadcaster.Close()
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/stream", nil), -1)
	if resp.StatusCode != 503 {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
}

// ---- Export, GraphQL, health ----

func TestLightMap(t *testing.T) {
	repo := newMockPinRepo()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.pins["b"] = domain.Pin{ID: "b", Lat: 48.1, Lng: 11.6, Name: "Second", Timestamp: base.Add(time.Hour), Location: "Munich"}
	repo.pins["a"] = domain.Pin{ID: "a", Lat: 52.5, Lng: 13.4, Name: "First", Timestamp: base, Location: "Berlin"}
	app := setupApp(makeDeps(repo))

	resp, _ := app.Test(httptest.NewRequest("GET", "/generate-light-map", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "light-map.html") {
		t.Errorf("expected attachment light-map.html, got %q", cd)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected text/html, got %q", ct)
	}
	body := string(readBody(t, resp.Body))
	if i, j := strings.Index(body, "First"), strings.Index(body, "Second"); i < 0 || j < 0 || i > j {
		t.Error("pins should be listed in time order")
	}
}

func TestGraphQL_CreateAndQuery(t *testing.T) {
	repo := newMockPinRepo()
	app := setupApp(makeDeps(repo))

	resp := postJSON(t, app, "/graphql", `{"query":"mutation { createPin(lat: 43.26, lng: -2.93, name: \"Bilbao\") { id location } }"}`)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var created struct {
		Data struct {
			CreatePin struct {
				ID       string `json:"id"`
				Location string `json:"location"`
			} `json:"createPin"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if len(created.Errors) != 0 || created.Data.CreatePin.ID == "" || created.Data.CreatePin.Location != "Testville" {
		t.Fatalf("unexpected result %+v", created)
	}

	resp = postJSON(t, app, "/graphql", `{"query":"{ pins { id name timestamp } }"}`)
	body := string(readBody(t, resp.Body))
	if !strings.Contains(body, created.Data.CreatePin.ID) || !strings.Contains(body, `"name":"Bilbao"`) {
		t.Errorf("pins query missing created pin: %s", body)
	}

	resp = postJSON(t, app, "/graphql", fmt.Sprintf(`{"query":"mutation { deletePin(id: \"%s\") }"}`, created.Data.CreatePin.ID))
	if body := string(readBody(t, resp.Body)); !strings.Contains(body, `"deletePin":true`) {
		t.Errorf("expected deletePin true, got %s", body)
	}
	repo.mu.Lock()
	remaining := len(repo.pins)
	repo.mu.Unlock()
	if remaining != 0 {
		t.Errorf("expected pin removed from store, %d left", remaining)
	}
}

func TestGraphQL_ValidationError(t *testing.T) {
	app := setupApp(makeDeps(newMockPinRepo()))
	resp := postJSON(t, app, "/graphql", `{"query":"mutation { createPin(lat: 123, lng: 0, name: \"x\") { id } }"}`)
	if body := string(readBody(t, resp.Body)); !strings.Contains(body, "errors") {
		t.Errorf("expected GraphQL error, got %s", body)
	}
}

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps(newMockPinRepo()))
	resp, _ := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name string
		opts func(*handler.Dependencies)
		want int
	}{
		{"storage only", nil, 200},
		{"all healthy", func(d *handler.Dependencies) {
			d.Events = mockEvents{connected: true}
			d.Cache = mockPinger{}
		}, 200},
		{"storage down", func(d *handler.Dependencies) { d.Store = mockPinger{err: errors.New("stat: no such file")} }, 503},
		{"nats disconnected", func(d *handler.Dependencies) { d.Events = mockEvents{} }, 503},
		{"cache down", func(d *handler.Dependencies) { d.Cache = mockPinger{err: errors.New("refused")} }, 503},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []func(*handler.Dependencies)
			if tt.opts != nil {
				opts = append(opts, tt.opts)
			}
			app := setupApp(makeDeps(newMockPinRepo(), opts...))
			resp, _ := app.Test(httptest.NewRequest("GET", "/ready", nil), -1)
			if resp.StatusCode != tt.want {
				t.Errorf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestWebSocket_RequiresUpgrade(t *testing.T) {
	app := setupApp(makeDeps(newMockPinRepo()))
	resp, _ := app.Test(httptest.NewRequest("GET", "/ws", nil), -1)
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Errorf("expected 426, got %d", resp.StatusCode)
	}
}

func decodeJSON(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}
