package nutrition

import (
	"context"
	"encoding/json"
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

type nutritionRepo interface {
	Add(ctx context.Context, meal *Meal) (*Meal, error)
	ListRange(ctx context.Context, userID int, from, to time.Time) ([]Meal, error)
	DailyTotals(ctx context.Context, userID int, day time.Time) (DayTotals, error)
}

type profileGetter interface {
	Get(ctx context.Context, userID int) (*profile.Profile, error)
}

// DailySummaryResponse is today's nutrition against the macro targets.
// Targets are nil when the profile lacks data to compute them.
type DailySummaryResponse struct {
	Totals  DayTotals        `json:"totals"`
	Targets *calc.MacroSplit `json:"targets,omitempty"`
	Meals   []Meal           `json:"meals"`
}

type Handler struct {
	repo       nutritionRepo
	profiles   profileGetter
	calculator *calc.Calculator
	metrics    *metrics.Manager
}

func NewHandler(
	repo nutritionRepo,
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
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.add")
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

	var meal Meal
	if err := json.NewDecoder(r.Body).Decode(&meal); err != nil {
		log.Errorf("new meal, unmarshal json params: %s", err)
		http.Error(w, "add meal failed", http.StatusBadRequest)
		return
	}
	meal.UserID = userID
	if meal.LoggedAt.IsZero() {
		meal.LoggedAt = time.Now()
	}

	if err := meal.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	added, err := handler.repo.Add(ctx, &meal)
	if err != nil {
		log.Errorf("failed to add meal [%s] for user %d: %s", meal.FoodName, userID, err)
		http.Error(w, "error, failed to add meal", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterMealsLogged.Inc()

	addedJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("marshal meal: %s", err)
		http.Error(w, "error, failed to add meal", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (handler *Handler) HandleDailySummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.dailySummary")
	defer span.End()

	userID, err := strconv.Atoi(mux.Vars(r)["userID"])
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	day := time.Now()
	if dayStr := r.URL.Query().Get("day"); dayStr != "" {
		if day, err = time.Parse("2006-01-02", dayStr); err != nil {
			http.Error(w, "error, invalid day", http.StatusBadRequest)
			return
		}
	}

	totals, err := handler.repo.DailyTotals(ctx, userID, day)
	if err != nil {
		log.Errorf("daily nutrition totals for user %d: %s", userID, err)
		http.Error(w, "failed to get daily nutrition totals", http.StatusInternalServerError)
		return
	}

	dayStart := pkg.DayStart(day)
	meals, err := handler.repo.ListRange(ctx, userID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		log.Errorf("list meals for user %d: %s", userID, err)
		http.Error(w, "failed to get daily nutrition totals", http.StatusInternalServerError)
		return
	}
	if meals == nil {
		meals = []Meal{}
	}

	resp := DailySummaryResponse{
		Totals:  totals,
		Targets: handler.macroTargets(ctx, userID),
		Meals:   meals,
	}
	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal daily nutrition summary: %s", err)
		http.Error(w, "failed to get daily nutrition totals", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) macroTargets(ctx context.Context, userID int) *calc.MacroSplit {
	p, err := handler.profiles.Get(ctx, userID)
	if err != nil {
		return nil
	}

	age, ok := handler.calculator.Age(p.DateOfBirth)
	if !ok {
		return nil
	}
	bmr, ok := handler.calculator.BMR(p.WeightKg, p.HeightCm, age, p.Sex)
	if !ok {
		return nil
	}
	tdee, ok := handler.calculator.TDEE(bmr, p.ActivityLevel)
	if !ok {
		return nil
	}
	macros, ok := handler.calculator.Macros(tdee, p.Goal)
	if !ok {
		return nil
	}
	return &macros
}
