// Package mockwastl serves fake WASTL dispatch pages for demos and manual
// testing. Pages are encoded as ISO-8859-1 like the real ones.
package mockwastl

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/encoding/charmap"
)

var (
	districts = []string{"Krems", "Melk", "Tulln", "St. Pölten", "Zwettl", "Amstetten"}
	towns     = []string{"Gedersdorf", "Langenlois", "Pöchlarn", "Ybbs", "Rastenfeld", "Wölbling"}
	brigades  = []string{"FF Krems", "FF Melk", "FF Tulln", "FF Zwettl", "FF Traismauer", "FF Mautern"}
	kinds     = []string{"T1 Fahrzeugbergung", "B2 Zimmerbrand", "T1 Wasserschaden", "B1 Kleinbrand", "T2 Verkehrsunfall"}
)

// incident is one fake dispatch.
type incident struct {
	district string
	town     string
	brigade  string
	kind     string
	started  time.Time
}

// Server holds a rotating set of active incidents.
type Server struct {
	mu        sync.Mutex
	rng       *rand.Rand
	active    []incident
	nextShift time.Time
	logger    *slog.Logger
}

// New returns a Server with a few active incidents.
func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger,
	}
	for i := 0; i < 3; i++ {
		s.active = append(s.active, s.randomIncident(time.Now()))
	}
	s.nextShift = time.Now().Add(s.shiftDelay())
	return s
}

// Handler serves /aktuell (incidents layout), /ff (departments layout) and
// /down, which always fails with 503.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /aktuell", func(w http.ResponseWriter, r *http.Request) {
		s.writeLatin1(w, s.incidentsPage())
	})
	mux.HandleFunc("GET /ff", func(w http.ResponseWriter, r *http.Request) {
		s.writeLatin1(w, s.departmentsPage())
	})
	mux.HandleFunc("GET /down", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
	})
	return mux
}

func (s *Server) shiftDelay() time.Duration {
	return time.Duration(20+s.rng.Intn(41)) * time.Second
}

func (s *Server) randomIncident(now time.Time) incident {
	return incident{
		district: districts[s.rng.Intn(len(districts))],
		town:     towns[s.rng.Intn(len(towns))],
		brigade:  brigades[s.rng.Intn(len(brigades))],
		kind:     kinds[s.rng.Intn(len(kinds))],
		started:  now.Add(-time.Duration(s.rng.Intn(90)) * time.Minute),
	}
}

// snapshot returns the active incidents, rotating one out when due.
func (s *Server) snapshot() []incident {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if now.After(s.nextShift) {
		if len(s.active) > 0 {
			done := s.active[0]
			s.active = s.active[1:]
			s.logger.Info("incident closed", "district", done.district, "town", done.town)
		}
		n := s.randomIncident(now)
		s.active = append(s.active, n)
		s.logger.Info("incident opened", "district", n.district, "town", n.town, "kind", n.kind)
		s.nextShift = now.Add(s.shiftDelay())
	}
	return append([]incident(nil), s.active...)
}

func (s *Server) incidentsPage() string {
	var b strings.Builder
	b.WriteString("<html><head><title>Einsätze</title></head><body>\n<table>\n")
	b.WriteString("<tr><td>Bezirk</td><td>Ort</td><td>Einsatzart</td><td>Zeit</td></tr>\n")
	for i, inc := range s.snapshot() {
		fmt.Fprintf(&b, "<tr><td>%d %s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			i+1, inc.district, inc.town, inc.kind, inc.started.Format("02.01.2006 15:04"))
	}
	b.WriteString("</table>\n</body></html>\n")
	return b.String()
}

func (s *Server) departmentsPage() string {
	var b strings.Builder
	b.WriteString("<html><head><title>Feuerwehren im Einsatz</title></head><body>\n<table>\n")
	b.WriteString("<tr><td>Feuerwehr</td><td>Einsatzart</td><td>Zeit</td></tr>\n")
	for _, inc := range s.snapshot() {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			inc.brigade, inc.kind, inc.started.Format("02.01.2006 15:04"))
	}
	b.WriteString("</table>\n</body></html>\n")
	return b.String()
}

// writeLatin1 writes page as ISO-8859-1.
func (s *Server) writeLatin1(w http.ResponseWriter, page string) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String(page)
	if err != nil {
		s.logger.Error("encode page", "error", err)
		http.Error(w, "encoding error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
	_, _ = w.Write([]byte(encoded))
}
