package hydration

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fittrack/internal/calc"
	"github.com/2beens/fittrack/internal/profile"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type hydrationRepo interface {
	Add(ctx context.Context, intake *Intake) (*Intake, error)
	DailyTotal(ctx context.Context, userID int, day time.Time) (int, error)
	ListRange(ctx context.Context, userID int, from, to time.Time) ([]Intake, error)
}

type profileGetter interface {
	Get(ctx context.Context, userID int) (*profile.Profile, error)
}

// TodayResponse is today's hydration status.
type TodayResponse struct {
	TotalMl    int     `json:"totalMl"`
	TargetMl   int     `json:"targetMl"`
	Percentage float64 `json:"percentage"`
}

type Handler struct {
	repo       hydrationRepo
	profiles   profileGetter
	calculator *calc.Calculator
	metrics    *metrics.Manager
}

func NewHandler(
	repo hydrationRepo,
	profiles profileGetter,
	calculator *calc.Calculator,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:       repo,
		profiles:   profiles,
		calculator: calculator,
		metrics:    metricsManager,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.hydration.add")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	userID, err := strconv.Atoi(mux.Vars(r)["userID"])
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	var intake Intake
	if err := json.NewDecoder(r.Body).Decode(&intake); err != nil {
		log.Errorf("new water intake, unmarshal json params: %s", err)
		http.Error(w, "add water intake failed", http.StatusBadRequest)
		return
	}
	intake.UserID = userID
	if intake.RecordedAt.IsZero() {
		intake.RecordedAt = time.Now()
	}

	if err := intake.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	added, err := handler.repo.Add(ctx, &intake)
	if err != nil {
		log.Errorf("failed to add water intake for user %d: %s", userID, err)
		http.Error(w, "error, failed to add water intake", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterWaterIntakesLogged.Inc()

	addedJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("marshal water intake: %s", err)
		http.Error(w, "error, failed to add water intake", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (handler *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.hydration.today")
	defer span.End()

	userID, err := strconv.Atoi(mux.Vars(r)["userID"])
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	total, err := handler.repo.DailyTotal(ctx, userID, time.Now())
	if err != nil {
		log.Errorf("daily water total for user %d: %s", userID, err)
		http.Error(w, "failed to get daily water total", http.StatusInternalServerError)
		return
	}

	resp := TodayResponse{
		TotalMl:  total,
		TargetMl: handler.waterTarget(ctx, userID),
	}
	if resp.TargetMl > 0 {
		resp.Percentage = math.Min(math.Round(float64(total)/float64(resp.TargetMl)*10000)/100, 100)
	}

	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal hydration today response: %s", err)
		http.Error(w, "failed to get daily water total", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.hydration.list")
	defer span.End()

	userID, err := strconv.Atoi(mux.Vars(r)["userID"])
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	// default window: last 7 days
	to := time.Now()
	from := to.AddDate(0, 0, -7)
	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		if from, err = time.Parse("2006-01-02", fromStr); err != nil {
			http.Error(w, "error, invalid from date", http.StatusBadRequest)
			return
		}
	}
	if toStr := r.URL.Query().Get("to"); toStr != "" {
		if to, err = time.Parse("2006-01-02", toStr); err != nil {
			http.Error(w, "error, invalid to date", http.StatusBadRequest)
			return
		}
	}

	intakes, err := handler.repo.ListRange(ctx, userID, from, to)
	if err != nil {
		log.Errorf("list water intakes for user %d: %s", userID, err)
		http.Error(w, "failed to list water intakes", http.StatusInternalServerError)
		return
	}
	if intakes == nil {
		intakes = []Intake{}
	}

	intakesJson, err := json.Marshal(intakes)
	if err != nil {
		log.Errorf("marshal water intakes: %s", err)
		http.Error(w, "failed to list water intakes", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, intakesJson, http.StatusOK)
}

func (handler *Handler) waterTarget(ctx context.Context, userID int) int {
	p, err := handler.profiles.Get(ctx, userID)
	if err != nil {
		return handler.calculator.Defaults().WaterTargetMl
	}
	return handler.calculator.WaterTargetOrDefault(p.WeightKg, p.ActivityLevel)
}
