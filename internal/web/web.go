package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/config"
	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/dateutil"
	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/ics"
	appLog "github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/log"
	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/model"
	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/schedule"
	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/term"
)

// Server exposes the schedule engine over HTTP: term/holiday lookups for
// the calendar UI, schedule expansion, and .ics export.
type Server struct {
	cfg *config.Config
	mux *http.ServeMux

	// The term calendar is swapped wholesale by the background refresher;
	// handlers only ever read a consistent snapshot.
	calMu sync.RWMutex
	cal   *term.Calendar

	// now supplies DTSTAMP values; tests pin it for byte-stable exports.
	now func() time.Time
}

// NewServer constructs a Server around an initial term calendar.
func NewServer(cfg *config.Config, cal *term.Calendar) *Server {
	s := &Server{
		cfg: cfg,
		mux: http.NewServeMux(),
		cal: cal,
		now: time.Now,
	}
	s.registerRoutes()
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+cfg.Listen)
	}
	return s
}

// SetCalendar replaces the term calendar (called by the refresh loop).
func (s *Server) SetCalendar(cal *term.Calendar) {
	s.calMu.Lock()
	s.cal = cal
	s.calMu.Unlock()
}

// Calendar returns the current term calendar snapshot.
func (s *Server) Calendar() *term.Calendar {
	s.calMu.RLock()
	defer s.calMu.RUnlock()
	return s.cal
}

// SetClock overrides the DTSTAMP clock. Intended for tests.
func (s *Server) SetClock(now func() time.Time) {
	s.now = now
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	if s.basicAuthEnabled() {
		return s.basicAuthMiddleware(http.Handler(s.mux))
	}
	return s.mux
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password counts as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health is always exposed unauthenticated.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="CourseCal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/terms", s.handleTerms)
	s.mux.HandleFunc("GET /api/holidays", s.handleHolidays)
	s.mux.HandleFunc("GET /api/grid", s.handleGrid)
	s.mux.HandleFunc("POST /api/schedule", s.handleSchedule)
	s.mux.HandleFunc("POST /api/export", s.handleExport)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// termDTO is the JSON shape of a term summary.
type termDTO struct {
	Code     string `json:"code"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Holidays int    `json:"holidays"`
}

func (s *Server) handleTerms(w http.ResponseWriter, _ *http.Request) {
	terms := s.Calendar().Terms()
	out := make([]termDTO, 0, len(terms))
	for _, t := range terms {
		out = append(out, termDTO{
			Code:     t.Code,
			Start:    t.Start.Format("2006-01-02"),
			End:      t.End.Format("2006-01-02"),
			Holidays: len(t.Holidays),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// holidayDTO is the JSON shape of a holiday entry. Exactly one of date
// or start/end is set, mirroring the entry's form.
type holidayDTO struct {
	Name      string `json:"name"`
	Date      string `json:"date,omitempty"`
	Start     string `json:"start,omitempty"`
	End       string `json:"end,omitempty"`
	IsClosure bool   `json:"isClosure"`
}

func (s *Server) handleHolidays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := q.Get("term")
	month, year, ok := monthYearParams(q.Get("month"), q.Get("year"))
	if !ok {
		writeError(w, http.StatusBadRequest, "month and year query parameters are required")
		return
	}

	holidays := s.Calendar().HolidaysFor(code)
	entries := dateutil.HolidaysInMonth(holidays, month, year)

	out := make([]holidayDTO, 0, len(entries))
	for _, h := range entries {
		dto := holidayDTO{Name: h.Name, IsClosure: h.IsClosure()}
		if h.Ranged() {
			dto.Start = h.Start.Format("2006-01-02")
			dto.End = h.End.Format("2006-01-02")
		} else {
			dto.Date = h.Date.Format("2006-01-02")
		}
		out = append(out, dto)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	month, year, ok := monthYearParams(q.Get("month"), q.Get("year"))
	if !ok {
		writeError(w, http.StatusBadRequest, "month and year query parameters are required")
		return
	}

	holidays := s.Calendar().HolidaysFor(q.Get("term"))
	writeJSON(w, http.StatusOK, dateutil.MonthGrid(month, year, holidays))
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	course, ok := decodeCourse(w, r)
	if !ok {
		return
	}

	result, err := schedule.Generate(course, s.Calendar())
	if err != nil {
		writeGenerateError(w, err)
		return
	}

	appLog.Info("schedule generated",
		"class", course.ClassName,
		"term", course.AcademicTerm,
		"events", len(result.Events),
		"warnings", len(result.Warnings),
	)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	course, ok := decodeCourse(w, r)
	if !ok {
		return
	}

	opts := ics.BuildOptions{
		CalendarName: course.ClassName,
		Timestamp:    s.now(),
	}

	var (
		data     []byte
		warnings []schedule.Warning
		err      error
	)
	switch mode := r.URL.Query().Get("mode"); mode {
	case "", "expanded":
		var result schedule.Result
		result, err = schedule.Generate(course, s.Calendar())
		if err == nil {
			warnings = result.Warnings
			data, err = ics.Serialize(result.Events, opts)
		}
	case "recurring":
		data, warnings, err = ics.SerializeRecurring(course, s.Calendar(), opts)
	default:
		writeError(w, http.StatusBadRequest, "mode must be \"expanded\" or \"recurring\"")
		return
	}
	if err != nil {
		writeGenerateError(w, err)
		return
	}

	for _, warn := range warnings {
		appLog.Warn("export skipped malformed slot",
			"class", course.ClassName,
			"weekday", warn.Weekday,
			"label", warn.Label,
			"reason", warn.Reason,
		)
	}

	filename := ics.Filename(course.ClassName)
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func decodeCourse(w http.ResponseWriter, r *http.Request) (model.CourseDefinition, bool) {
	var course model.CourseDefinition
	if err := json.NewDecoder(r.Body).Decode(&course); err != nil {
		writeError(w, http.StatusBadRequest, "invalid course definition: "+err.Error())
		return model.CourseDefinition{}, false
	}
	return course, true
}

func writeGenerateError(w http.ResponseWriter, err error) {
	if errors.Is(err, schedule.ErrInvertedRange) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	appLog.Error("schedule generation failed", err)
	writeError(w, http.StatusInternalServerError, "schedule generation failed")
}

func monthYearParams(monthStr, yearStr string) (time.Month, int, bool) {
	m, err := strconv.Atoi(monthStr)
	if err != nil || m < 1 || m > 12 {
		return 0, 0, false
	}
	y, err := strconv.Atoi(yearStr)
	if err != nil || y < 1 {
		return 0, 0, false
	}
	return time.Month(m), y, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to encode JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
