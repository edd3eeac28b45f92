package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fittrack/internal/achievements"
	"github.com/2beens/fittrack/internal/activity"
	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/biometrics"
	"github.com/2beens/fittrack/internal/calc"
	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/dashboard"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/goals"
	"github.com/2beens/fittrack/internal/hydration"
	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/misc"
	"github.com/2beens/fittrack/internal/nutrition"
	"github.com/2beens/fittrack/internal/profile"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/tips"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config     *config.Config
	dbPool     *pgxpool.Pool
	calculator *calc.Calculator

	redisClient  *redis.Client
	loginChecker *auth.LoginChecker
	authService  *auth.Service

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	AdminUsername           string
	AdminPasswordHash       string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": "fittrack_db"},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("backend", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	if params.HoneycombTracingEnabled {
		rdb.AddHook(redisotel.NewTracingHook())
	}

	authService := auth.NewAuthService(&auth.Admin{
		Username:     params.AdminUsername,
		PasswordHash: params.AdminPasswordHash,
	}, auth.DefaultTTL, rdb)
	go func() {
		for range time.Tick(time.Hour * 8) {
			authService.ScanAndClean(ctx)
		}
	}()

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fittrack-backend")
	if err != nil {
		return nil, err
	}

	calculator := calc.New(calc.Defaults{
		WeightKg:      params.Config.DefaultWeightKg,
		WaterTargetMl: params.Config.DefaultWaterTargetMl,
	})

	return &Server{
		config:      params.Config,
		dbPool:      dbPool,
		calculator:  calculator,
		versionInfo: params.VersionInfo,

		redisClient:  rdb,
		authService:  authService,
		loginChecker: auth.NewLoginChecker(auth.DefaultTTL, rdb),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	profileRepo := profile.NewRepo(s.dbPool)
	profileHandler := profile.NewHandler(profileRepo, s.calculator)
	r.HandleFunc("/profile/{userID}", profileHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-profile")
	r.HandleFunc("/profile/{userID}", profileHandler.HandleUpsert).Methods("PUT", "OPTIONS").Name("upsert-profile")

	activityRepo := activity.NewRepo(s.dbPool)
	activityHandler := activity.NewHandler(activityRepo, profileRepo, s.calculator, s.metricsManager)
	r.HandleFunc("/activities/{userID}", activityHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-activity")
	r.HandleFunc("/activities/{userID}", activityHandler.HandleList).Methods("GET", "OPTIONS").Name("list-activities")
	r.HandleFunc("/activities/activity/{id}", activityHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-activity")
	r.HandleFunc("/activities/{userID}/activity/{id}", activityHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-activity")
	r.HandleFunc("/activities/{userID}/activity/{id}", activityHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-activity")

	biometricsRepo := biometrics.NewRepo(s.dbPool)
	biometricsHandler := biometrics.NewHandler(biometricsRepo, profileRepo)
	r.HandleFunc("/biometrics/{userID}", biometricsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-biometric")
	r.HandleFunc("/biometrics/{userID}", biometricsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-biometrics")
	r.HandleFunc("/biometrics/{userID}/latest", biometricsHandler.HandleLatest).Methods("GET", "OPTIONS").Name("latest-biometric")

	hydrationRepo := hydration.NewRepo(s.dbPool)
	hydrationHandler := hydration.NewHandler(hydrationRepo, profileRepo, s.calculator, s.metricsManager)
	r.HandleFunc("/water/{userID}", hydrationHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-water-intake")
	r.HandleFunc("/water/{userID}", hydrationHandler.HandleList).Methods("GET", "OPTIONS").Name("list-water-intakes")
	r.HandleFunc("/water/{userID}/today", hydrationHandler.HandleToday).Methods("GET", "OPTIONS").Name("water-today")

	nutritionRepo := nutrition.NewRepo(s.dbPool)
	nutritionHandler := nutrition.NewHandler(nutritionRepo, profileRepo, s.calculator, s.metricsManager)
	r.HandleFunc("/meals/{userID}", nutritionHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-meal")
	r.HandleFunc("/meals/{userID}/summary", nutritionHandler.HandleDailySummary).Methods("GET", "OPTIONS").Name("meals-daily-summary")

	goalsRepo := goals.NewRepo(s.dbPool)
	goalsHandler := goals.NewHandler(goalsRepo)
	r.HandleFunc("/goals/{userID}", goalsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-goal")
	r.HandleFunc("/goals/{userID}", goalsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-goals")
	r.HandleFunc("/goals/goal/{id}", goalsHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-goal")
	r.HandleFunc("/goals/{userID}/goal/{id}", goalsHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-goal")
	r.HandleFunc("/goals/{userID}/goal/{id}", goalsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-goal")

	badgesRepo := achievements.NewRepo(s.dbPool)
	badgesEngine := achievements.NewEngine(
		badgesRepo,
		activityRepo,
		hydrationRepo,
		profileRepo,
		s.calculator,
		s.metricsManager,
	)
	badgesHandler := achievements.NewHandler(badgesEngine, badgesRepo)
	r.HandleFunc("/badges/{userID}", badgesHandler.HandleList).Methods("GET", "OPTIONS").Name("list-badges")
	r.HandleFunc("/badges/{userID}/check", badgesHandler.HandleCheckAll).Methods("POST", "OPTIONS").Name("check-badges")
	r.HandleFunc("/badges/{userID}/progress", badgesHandler.HandleProgress).Methods("GET", "OPTIONS").Name("badges-progress")

	activityAnalyzer := activity.NewAnalyzer(activityRepo)
	tipsGenerator := tips.NewGenerator(hydrationRepo, activityRepo)
	dashboardHandler := dashboard.NewHandler(
		profileRepo,
		activityRepo,
		activityAnalyzer,
		hydrationRepo,
		nutritionRepo,
		goalsRepo,
		biometricsRepo,
		tipsGenerator,
		s.calculator,
	)
	r.HandleFunc("/dashboard/{userID}", dashboardHandler.HandleSummary).Methods("GET", "OPTIONS").Name("dashboard-summary")
	r.HandleFunc("/dashboard/{userID}/charts", dashboardHandler.HandleCharts).Methods("GET", "OPTIONS").Name("dashboard-charts")

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	miscHandler := misc.NewHandler(s.versionInfo, s.authService)
	miscHandler.SetupRoutes(r, reqRateLimiter, s.config.LoginRateLimitAllowedPerMin, s.metricsManager)

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
	}
	log.Warnln("server shut down")

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
	}
	log.Warnln("metrics server shut down")
}
