// Package rest exposes the booking API over HTTP with gin.
package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ignitecall/internal/domain"
	"ignitecall/internal/service/auth"
	"ignitecall/internal/service/availability"
	"ignitecall/internal/service/intervals"
	"ignitecall/internal/service/scheduling"
	"ignitecall/internal/service/users"
)

const (
	claimCookie   = "ignitecall.userId"
	sessionCookie = "ignitecall.session-token"
)

type usersService interface {
	Create(ctx context.Context, in users.CreateInput) (domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, bio string) error
	GetByUsername(ctx context.Context, username string) (domain.User, error)
}

type availabilityService interface {
	Compute(ctx context.Context, username, date string) (availability.Result, error)
	BlockedDates(ctx context.Context, username string, year, month int) (availability.BlockedDates, error)
}

type intervalsService interface {
	Set(ctx context.Context, userID uuid.UUID, in []intervals.IntervalInput) ([]domain.UserTimeInterval, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.UserTimeInterval, error)
}

type schedulingService interface {
	Create(ctx context.Context, username string, in scheduling.CreateInput) (domain.Scheduling, error)
	ListUpcoming(ctx context.Context, userID uuid.UUID, horizon time.Duration) ([]domain.Scheduling, error)
}

type authService interface {
	Authenticate(ctx context.Context, sessionToken string) (domain.Session, domain.User, error)
	SignIn(ctx context.Context, in auth.SignInInput) (auth.SignInResult, error)
	DeleteSession(ctx context.Context, sessionToken string) error
}

type claimSigner interface {
	Sign(userID uuid.UUID) (string, error)
	TTL() time.Duration
}

// ReadyCheck is a named dependency probed by /readyz.
type ReadyCheck struct {
	Name  string
	Check func(context.Context) error
}

type Options struct {
	Users        usersService
	Availability availabilityService
	Intervals    intervalsService
	Scheduling   schedulingService
	Auth         authService
	Claims       claimSigner

	// Limiter guards the public booking routes. Nil disables limiting.
	Limiter Limiter

	Logger         *slog.Logger
	RequestTimeout time.Duration
	// TrustedProxies may set the client IP through forwarding headers. Empty trusts none.
	TrustedProxies []string
	AllowedOrigins []string
	CookieSecure   bool
	// AdapterSecret enables POST /api/auth/sign-in when set.
	AdapterSecret string
	ReadyChecks   []ReadyCheck
}

type Server struct {
	users        usersService
	availability availabilityService
	intervals    intervalsService
	scheduling   schedulingService
	auth         authService
	claims       claimSigner

	limiter       Limiter
	log           *slog.Logger
	timeout       time.Duration
	proxies       []string
	origins       []string
	cookieSecure  bool
	adapterSecret string
	readyChecks   []ReadyCheck
}

func NewServer(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		users:         opts.Users,
		availability:  opts.Availability,
		intervals:     opts.Intervals,
		scheduling:    opts.Scheduling,
		auth:          opts.Auth,
		claims:        opts.Claims,
		limiter:       opts.Limiter,
		log:           log.With(slog.String("component", "http")),
		timeout:       opts.RequestTimeout,
		proxies:       opts.TrustedProxies,
		origins:       opts.AllowedOrigins,
		cookieSecure:  opts.CookieSecure,
		adapterSecret: opts.AdapterSecret,
		readyChecks:   opts.ReadyChecks,
	}
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	if err := r.SetTrustedProxies(s.proxies); err != nil {
		s.log.Error("invalid trusted proxies; trusting none", slog.Any("err", err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery(), requestID(), accessLog(s.log), defaultRequestTimeout(s.timeout))
	if len(s.origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.origins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", s.healthz)
	r.GET("/readyz", s.readyz)

	api := r.Group("/api")

	u := api.Group("/users")
	u.POST("", s.createUser)

	public := u.Group("/:username", rateLimit(s.limiter, s.log))
	public.GET("", s.getProfile)
	public.GET("/availability", s.getAvailability)
	public.GET("/blocked-dates", s.getBlockedDates)
	public.POST("/schedule", s.createScheduling)

	private := api.Group("", s.requireSession())
	private.GET("/users/time-intervals", s.listTimeIntervals)
	private.PUT("/users/time-intervals", s.setTimeIntervals)
	private.PUT("/users/profile", s.updateProfile)
	private.GET("/users/me/calendar.ics", s.exportCalendar)
	private.DELETE("/auth/session", s.signOut)

	if s.adapterSecret != "" {
		api.POST("/auth/sign-in", s.requireAdapterSecret(), s.signIn)
	}

	return r
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) readyz(c *gin.Context) {
	failures := map[string]string{}
	for _, check := range s.readyChecks {
		if check.Check == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		err := check.Check(ctx)
		cancel()
		if err != nil {
			name := check.Name
			if name == "" {
				name = "dependency"
			}
			failures[name] = err.Error()
		}
	}
	if len(failures) > 0 {
		s.log.Warn("readiness check failed", slog.Any("failures", failures))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failures": failures})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
