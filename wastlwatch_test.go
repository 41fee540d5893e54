package wastlwatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// incidentsPage is a small incidents table encoded as ISO-8859-1.
const incidentsPage = "<html><body><table>" +
	"<tr><td>Bezirk</td><td>Ort</td><td>Einsatzart</td><td>Zeit</td></tr>" +
	"<tr><td>3 Krems</td><td>Stratzing</td><td>T1 Fahrzeugbergung</td><td>14.03.2024 14:33</td></tr>" +
	"<tr><td>19 St. P\xf6lten</td><td>Gr\xfcnau</td><td>B2 Zimmerbrand</td><td>14.03.2024 14:41</td></tr>" +
	"</table></body></html>"

// departmentsPage lists fire brigades currently deployed.
const departmentsPage = "<table>" +
	"<tr><td>Feuerwehr</td><td>Einsatzart</td><td>Zeit</td></tr>" +
	"<tr><td>FF Krems</td><td>T1 Fahrzeugbergung</td><td>14:33</td></tr>" +
	"</table>"

func wastlServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/aktuell", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte(incidentsPage))
	})
	mux.HandleFunc("/ff", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(departmentsPage))
	})
	mux.HandleFunc("/down", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestWatcher_Refresh(t *testing.T) {
	srv := wastlServer(t)

	w, err := New(
		WithPages(
			mustPage(t, "Aktuelle Einsätze", srv.URL+"/aktuell", Incidents),
			mustPage(t, "FF im Einsatz", srv.URL+"/ff", Departments),
			mustPage(t, "Kaputt", srv.URL+"/down", Incidents),
		),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	snap, err := w.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if snap.Cycle != 1 {
		t.Errorf("Cycle = %d, want 1", snap.Cycle)
	}

	want := map[int][]Record{
		0: {
			{Date: "14.03.2024", Time: "14:33", District: "Krems", Location: "Stratzing", Category: "T1 Fahrzeugbergung"},
			{Date: "14.03.2024", Time: "14:41", District: "St. Pölten", Location: "Grünau", Category: "B2 Zimmerbrand"},
		},
		1: {
			{Date: Missing, Time: "14:33", District: "FF Krems", Location: Missing, Category: "T1 Fahrzeugbergung"},
		},
		2: {},
	}

	got := snap.Mapping()
	for i, records := range want {
		if len(got[i]) != len(records) {
			t.Errorf("page %d: got %d records, want %d", i, len(got[i]), len(records))
			continue
		}
		for j := range records {
			if got[i][j] != records[j] {
				t.Errorf("page %d record %d = %+v, want %+v", i, j, got[i][j], records[j])
			}
		}
	}

	if snap.Pages[2].Error == nil {
		t.Error("failed page should carry its error")
	}
	if w.RecordCount(0) != 2 || w.RecordCount(1) != 1 || w.RecordCount(2) != 0 {
		t.Errorf("RecordCount = %d/%d/%d, want 2/1/0", w.RecordCount(0), w.RecordCount(1), w.RecordCount(2))
	}
}

func TestWatcher_Records(t *testing.T) {
	srv := wastlServer(t)

	w, err := New(
		WithPage(mustPage(t, "Aktuelle Einsätze", srv.URL+"/aktuell", Incidents)),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	attrs, ok := w.Records(0)
	if !ok {
		t.Fatal("Records(0) ok = false before first cycle")
	}
	if attrs.DataList == nil || len(attrs.DataList) != 0 {
		t.Errorf("DataList before first cycle = %v, want empty", attrs.DataList)
	}

	if _, err := w.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	attrs, ok = w.Records(0)
	if !ok || len(attrs.DataList) != 2 {
		t.Fatalf("Records(0) = %+v, %v", attrs, ok)
	}
	if attrs.URL != srv.URL+"/aktuell" {
		t.Errorf("URL = %q", attrs.URL)
	}

	data, err := json.Marshal(attrs)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"data_list":[["14.03.2024","14:33","Krems","Stratzing","T1 Fahrzeugbergung"]`) {
		t.Errorf("attributes JSON = %s", data)
	}

	if _, ok := w.Records(5); ok {
		t.Error("Records(5) ok = true, want false")
	}
}

func TestWatcher_WithHeaderFunc(t *testing.T) {
	srv := wastlServer(t)

	skipKrems := func(cells []string) bool {
		for _, c := range cells {
			if strings.Contains(c, "Krems") {
				return true
			}
		}
		return false
	}

	w, err := New(
		WithPage(mustPage(t, "p", srv.URL+"/aktuell", Incidents)),
		WithHeaderFunc(skipKrems),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	snap, err := w.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	records, _ := snap.Records(0)
	if len(records) != 1 || records[0].District != "St. Pölten" {
		t.Errorf("records = %+v, want only the St. Pölten row", records)
	}
}

func TestWithSnapshotCallback_InvokedOnPublish(t *testing.T) {
	srv := wastlServer(t)

	var mu sync.Mutex
	var got []Snapshot

	w, err := New(
		WithPage(mustPage(t, "p", srv.URL+"/aktuell", Incidents)),
		WithSnapshotCallback(func(s Snapshot) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, s)
		}),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := w.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("callback called %d times, want 2", len(got))
	}
	if got[0].Cycle != 1 || got[1].Cycle != 2 {
		t.Errorf("cycles = %d, %d; want 1, 2", got[0].Cycle, got[1].Cycle)
	}
	if got[1].RecordCount(0) != 2 {
		t.Errorf("callback snapshot RecordCount(0) = %d, want 2", got[1].RecordCount(0))
	}
}

func TestWithSnapshotCallback_ExecutionOrder(t *testing.T) {
	srv := wastlServer(t)

	var mu sync.Mutex
	var order []int
	record := func(n int) func(Snapshot) {
		return func(Snapshot) {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, n)
		}
	}

	w, err := New(
		WithPage(mustPage(t, "p", srv.URL+"/ff", Departments)),
		WithSnapshotCallback(record(1)),
		WithSnapshotCallback(record(2)),
		WithSnapshotCallback(record(3)),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := w.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if fmt.Sprint(order) != "[1 2 3]" {
		t.Errorf("order = %v, want [1 2 3]", order)
	}
}

func TestWithSnapshotCallback_PanicRecovery(t *testing.T) {
	srv := wastlServer(t)

	var after atomic.Int32
	w, err := New(
		WithPage(mustPage(t, "p", srv.URL+"/ff", Departments)),
		WithSnapshotCallback(func(Snapshot) { panic("callback exploded") }),
		WithSnapshotCallback(func(Snapshot) { after.Add(1) }),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := w.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if after.Load() != 1 {
		t.Errorf("callback after the panicking one ran %d times, want 1", after.Load())
	}
	if w.Snapshot().Cycle != 1 {
		t.Errorf("snapshot not published, Cycle = %d", w.Snapshot().Cycle)
	}
}

func TestWithSnapshotCallback_NoSharedReferences(t *testing.T) {
	srv := wastlServer(t)

	w, err := New(
		WithPage(mustPage(t, "p", srv.URL+"/aktuell", Incidents)),
		WithSnapshotCallback(func(s Snapshot) {
			s.Pages[0].Records[0].District = "mutated"
			s.Pages[0].Records = nil
		}),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := w.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	records, _ := w.Snapshot().Records(0)
	if len(records) != 2 || records[0].District != "Krems" {
		t.Errorf("published snapshot was modified by a callback: %+v", records)
	}
}

// TestStart_BlocksUntilContextCancelled verifies that Start serves the API
// and returns once the context is cancelled.
func TestStart_BlocksUntilContextCancelled(t *testing.T) {
	srv := wastlServer(t)
	port := freePort(t)

	published := make(chan struct{}, 1)
	w, err := New(
		WithPage(mustPage(t, "p", srv.URL+"/aktuell", Incidents)),
		WithPort(port),
		WithLogger(testLogger()),
		WithSnapshotCallback(func(Snapshot) {
			select {
			case published <- struct{}{}:
			default:
			}
		}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	select {
	case <-published:
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("no cycle completed after Start")
	}

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/pages/0", port))
	if err != nil {
		cancel()
		t.Fatalf("GET /api/pages/0: %v", err)
	}
	var detail struct {
		State      int            `json:"state"`
		Attributes PageAttributes `json:"attributes"`
	}
	err = json.NewDecoder(resp.Body).Decode(&detail)
	_ = resp.Body.Close()
	if err != nil {
		cancel()
		t.Fatalf("decode: %v", err)
	}
	if detail.State != 2 || len(detail.Attributes.DataList) != 2 {
		t.Errorf("page 0 = %+v, want 2 records", detail)
	}

	select {
	case err := <-done:
		t.Fatalf("Start() returned early: %v", err)
	default:
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}
}

// TestStart_ReturnsImmediatelyIfContextAlreadyCancelled verifies that Start
// does no work with a dead context.
func TestStart_ReturnsImmediatelyIfContextAlreadyCancelled(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer ts.Close()

	w, err := New(
		WithPage(mustPage(t, "p", ts.URL, Incidents)),
		WithPort(freePort(t)),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return with already-cancelled context")
	}
	if hits.Load() != 0 {
		t.Errorf("page fetched %d times, want 0", hits.Load())
	}
}

func TestStart_PortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	defer func() { _ = ln.Close() }()

	w, err := New(
		WithPage(mustPage(t, "p", testPageURL, Incidents)),
		WithPort(ln.Addr().(*net.TCPAddr).Port),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err == nil {
		t.Fatal("Start() on occupied port should return error")
	}
}

// freePort asks the kernel for an unused TCP port.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()
	return port
}
