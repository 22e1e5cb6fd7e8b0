package httpapi

import (
	"context"
	"net/http"
	"time"

	"stagebook/internal/app/performances"
	"stagebook/internal/app/users"
	"stagebook/internal/auth"
	"stagebook/internal/logging"
	"stagebook/internal/models"
	"stagebook/internal/outreach"
	"stagebook/internal/sheets"
)

// UserService captures the session operations needed by the handlers.
type UserService interface {
	AdminLogin(ctx context.Context, passcode string) (users.Session, error)
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// ArtistService describes artist profile workflows.
type ArtistService interface {
	Create(ctx context.Context, artist models.Artist) (models.Artist, error)
	List(ctx context.Context, filter models.ArtistFilter) ([]models.Artist, error)
	SearchPublic(ctx context.Context, name string) ([]models.PublicArtist, error)
	Get(ctx context.Context, id int64) (models.Artist, error)
	Update(ctx context.Context, id int64, update models.ArtistUpdate) (models.Artist, error)
	ToggleFavorite(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context, id int64) (models.ArtistStats, error)
}

// PerformanceService coordinates booking workflows.
type PerformanceService interface {
	Create(ctx context.Context, performance models.Performance) (models.Performance, error)
	CreatePending(ctx context.Context, performance models.Performance) (models.Performance, error)
	ApplyBatch(ctx context.Context, req performances.BatchRequest) (performances.BatchResult, error)
	Get(ctx context.Context, id int64) (models.PerformanceWithArtist, error)
	List(ctx context.Context, window models.PerformanceRange) ([]models.PerformanceWithArtist, error)
	Update(ctx context.Context, id int64, update models.PerformanceUpdate) (models.Performance, error)
	Confirm(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	Weekly(ctx context.Context) ([]models.PerformanceWithArtist, error)
	Monthly(ctx context.Context, year int, month time.Month) ([]models.PerformanceWithArtist, error)
}

// NoticeService manages announcements.
type NoticeService interface {
	Create(ctx context.Context, title, content string) (models.Notice, error)
	List(ctx context.Context) ([]models.Notice, error)
	Latest(ctx context.Context) (*models.Notice, error)
	Update(ctx context.Context, id int64, update models.NoticeUpdate) (models.Notice, error)
	Delete(ctx context.Context, id int64) error
}

// SettingsService reads and writes key/value settings.
type SettingsService interface {
	Get(ctx context.Context, key string) (*string, error)
	Update(ctx context.Context, key, value string) error
}

// Broadcaster sends the outreach template to every artist.
type Broadcaster interface {
	Broadcast(ctx context.Context) (outreach.Report, error)
}

// MonthlyExporter writes a monthly calendar to a spreadsheet.
type MonthlyExporter interface {
	ExportMonth(ctx context.Context, year int, month time.Month, rows []models.PerformanceWithArtist) (sheets.Result, error)
}

// HealthChecker reports database connectivity.
type HealthChecker interface {
	Available() bool
	Ping(ctx context.Context) error
}

// Services bundles the collaborators behind the procedures.
// Broadcaster, Exporter and Health may be nil.
type Services struct {
	Users        UserService
	Artists      ArtistService
	Performances PerformanceService
	Notices      NoticeService
	Settings     SettingsService
	Broadcaster  Broadcaster
	Exporter     MonthlyExporter
	Health       HealthChecker
}

// Server dispatches remote procedure calls to the underlying services.
type Server struct {
	users        UserService
	artists      ArtistService
	performances PerformanceService
	notices      NoticeService
	settings     SettingsService
	broadcaster  Broadcaster
	exporter     MonthlyExporter
	health       HealthChecker
	loc          *time.Location

	procedures map[string]procedure
}

// New configures a Server. Bare dates in inputs are read in loc.
func New(svc Services, loc *time.Location) *Server {
	if loc == nil {
		loc = time.Local
	}
	s := &Server{
		users:        svc.Users,
		artists:      svc.Artists,
		performances: svc.Performances,
		notices:      svc.Notices,
		settings:     svc.Settings,
		broadcaster:  svc.Broadcaster,
		exporter:     svc.Exporter,
		health:       svc.Health,
		loc:          loc,
	}
	s.procedures = s.registry()
	return s
}

func (s *Server) registry() map[string]procedure {
	return map[string]procedure{
		"auth.adminLogin": {mutation, public, s.adminLogin},
		"auth.me":         {query, public, s.me},
		"auth.logout":     {mutation, public, s.logout},

		"artist.list":           {query, protected, s.listArtists},
		"artist.searchPublic":   {query, public, s.searchPublicArtists},
		"artist.create":         {mutation, public, s.createArtist},
		"artist.getById":        {query, protected, s.getArtist},
		"artist.update":         {mutation, protected, s.updateArtist},
		"artist.toggleFavorite": {mutation, protected, s.toggleFavorite},
		"artist.delete":         {mutation, protected, s.deleteArtist},
		"artist.getStats":       {query, protected, s.artistStats},

		"performance.create":        {mutation, protected, s.createPerformance},
		"performance.createPending": {mutation, public, s.createPendingPerformance},
		"performance.applyBatch":    {mutation, public, s.applyBatch},
		"performance.getById":       {query, protected, s.getPerformance},
		"performance.list":          {query, protected, s.listPerformances},
		"performance.update":        {mutation, protected, s.updatePerformance},
		"performance.confirm":       {mutation, protected, s.confirmPerformance},
		"performance.delete":        {mutation, protected, s.deletePerformance},
		"performance.getWeekly":     {query, protected, s.weeklyPerformances},
		"performance.getMonthly":    {query, public, s.monthlyPerformances},
		"performance.exportMonthly": {mutation, protected, s.exportMonthly},

		"notice.create":    {mutation, protected, s.createNotice},
		"notice.update":    {mutation, protected, s.updateNotice},
		"notice.delete":    {mutation, protected, s.deleteNotice},
		"notice.list":      {query, public, s.listNotices},
		"notice.getLatest": {query, public, s.latestNotice},

		"settings.get":               {query, protected, s.getSetting},
		"settings.update":            {mutation, protected, s.updateSetting},
		"settings.broadcastTemplate": {mutation, protected, s.broadcastTemplate},
	}
}

// Routes exposes the RPC endpoint and the health check.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("/api/rpc/{procedure}", s.handleRPC)
	return mux
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("procedure")
	proc, ok := s.procedures[name]
	if !ok {
		writeError(w, r, name, procedureNotFound(name))
		return
	}

	switch {
	case r.Method == http.MethodPost:
	case r.Method == http.MethodGet && proc.kind == query:
	default:
		writeError(w, r, name, errMethodNotSupported)
		return
	}

	input, err := readInput(r)
	if err != nil {
		writeError(w, r, name, err)
		return
	}

	ctx := r.Context()
	user, err := s.users.Resolve(ctx, auth.TokenFromRequest(r))
	if err != nil {
		writeError(w, r, name, err)
		return
	}
	if user != nil {
		ctx = logging.WithUserID(ctx, user.ID)
		r = r.WithContext(ctx)
	}

	if proc.access == protected {
		if user == nil {
			writeError(w, r, name, errUnauthorized)
			return
		}
		if !user.IsAdmin() {
			writeError(w, r, name, errForbidden)
			return
		}
	}

	data, err := proc.handle(ctx, &call{w: w, r: r, input: input, user: user})
	if err != nil {
		writeError(w, r, name, err)
		return
	}
	writeResult(w, data)
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Database: "unconfigured"}
	if s.health != nil && s.health.Available() {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		resp.Database = "up"
		if err := s.health.Ping(ctx); err != nil {
			resp.Database = "down"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
