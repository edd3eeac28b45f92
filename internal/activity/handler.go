package activity

import (
	"context"
	"encoding/json"
	"errors"
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

type activitiesRepo interface {
	Add(ctx context.Context, activity *Activity) (*Activity, error)
	Get(ctx context.Context, id int) (*Activity, error)
	Update(ctx context.Context, activity *Activity) error
	Delete(ctx context.Context, id, userID int) error
	List(ctx context.Context, params ListParams) (_ []Activity, total int, err error)
}

type profileGetter interface {
	Get(ctx context.Context, userID int) (*profile.Profile, error)
}

type ListResponse struct {
	Activities []Activity `json:"activities"`
	Total      int        `json:"total"`
}

type DeleteResponse struct {
	DeletedID int `json:"deletedId"`
}

type UpdateResponse struct {
	UpdatedID int `json:"updatedId"`
}

type Handler struct {
	repo       activitiesRepo
	profiles   profileGetter
	calculator *calc.Calculator
	metrics    *metrics.Manager
}

func NewHandler(
	repo activitiesRepo,
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
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activity.add")
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

	var activity Activity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		log.Errorf("new activity, unmarshal json params: %s", err)
		http.Error(w, "add activity failed", http.StatusBadRequest)
		return
	}
	activity.UserID = userID
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}

	// calories left out by the client get estimated from the profile weight
	if activity.CaloriesBurned == 0 {
		activity.CaloriesBurned = handler.estimateCalories(ctx, &activity)
	}

	if err := activity.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	addedActivity, err := handler.repo.Add(ctx, &activity)
	if err != nil {
		log.Errorf("failed to add new activity [%s] for user %d: %s", activity.Type, userID, err)
		http.Error(w, "error, failed to add new activity", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterActivitiesLogged.Inc()
	log.Debugf("new activity added: [%s] %d min: %d", addedActivity.Type, addedActivity.DurationMinutes, addedActivity.ID)

	addedJson, err := json.Marshal(addedActivity)
	if err != nil {
		log.Errorf("failed to marshal new activity: %s", err)
		http.Error(w, "error, failed to add new activity", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activity.get")
	defer span.End()

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	activity, err := handler.repo.Get(ctx, id)
	if errors.Is(err, ErrActivityNotFound) {
		http.Error(w, "activity not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("get activity %d: %s", id, err)
		http.Error(w, "failed to get activity", http.StatusInternalServerError)
		return
	}

	activityJson, err := json.Marshal(activity)
	if err != nil {
		log.Errorf("marshal activity: %s", err)
		http.Error(w, "failed to get activity", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, activityJson, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activity.list")
	defer span.End()

	userID, err := strconv.Atoi(mux.Vars(r)["userID"])
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	params := ListParams{UserID: userID}
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if params.Page, err = strconv.Atoi(pageStr); err != nil {
			http.Error(w, "error, page NaN", http.StatusBadRequest)
			return
		}
	}
	if sizeStr := r.URL.Query().Get("size"); sizeStr != "" {
		if params.Size, err = strconv.Atoi(sizeStr); err != nil {
			http.Error(w, "error, size NaN", http.StatusBadRequest)
			return
		}
	}
	if typeStr := r.URL.Query().Get("type"); typeStr != "" {
		activityType := calc.ActivityType(typeStr)
		if !activityType.IsValid() {
			http.Error(w, "error, invalid activity type", http.StatusBadRequest)
			return
		}
		params.Type = &activityType
	}

	activities, total, err := handler.repo.List(ctx, params)
	if err != nil {
		log.Errorf("list activities for user %d: %s", userID, err)
		http.Error(w, "failed to list activities", http.StatusInternalServerError)
		return
	}
	if activities == nil {
		activities = []Activity{}
	}

	respJson, err := json.Marshal(ListResponse{
		Activities: activities,
		Total:      total,
	})
	if err != nil {
		log.Errorf("marshal activities list: %s", err)
		http.Error(w, "failed to list activities", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activity.update")
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
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	var activity Activity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		log.Errorf("update activity, unmarshal json params: %s", err)
		http.Error(w, "update activity failed", http.StatusBadRequest)
		return
	}
	activity.ID = id
	activity.UserID = userID

	if err := activity.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = handler.repo.Update(ctx, &activity)
	if errors.Is(err, ErrActivityNotFound) {
		http.Error(w, "activity not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("update activity %d: %s", id, err)
		http.Error(w, "failed to update activity", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(UpdateResponse{UpdatedID: id})
	if err != nil {
		log.Errorf("marshal update response: %s", err)
		http.Error(w, "failed to update activity", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activity.delete")
	defer span.End()

	userID, err := strconv.Atoi(mux.Vars(r)["userID"])
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	err = handler.repo.Delete(ctx, id, userID)
	if errors.Is(err, ErrActivityNotFound) {
		http.Error(w, "activity not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("delete activity %d: %s", id, err)
		http.Error(w, "failed to delete activity", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(DeleteResponse{DeletedID: id})
	if err != nil {
		log.Errorf("marshal delete response: %s", err)
		http.Error(w, "failed to delete activity", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

// estimateCalories uses the profile weight, or the configured default
// when the profile is missing or has no usable weight.
func (handler *Handler) estimateCalories(ctx context.Context, activity *Activity) int {
	weightKg := handler.calculator.Defaults().WeightKg
	if p, err := handler.profiles.Get(ctx, activity.UserID); err == nil && p.WeightKg > 0 {
		weightKg = p.WeightKg
	}

	calories, ok := handler.calculator.CaloriesBurned(activity.Type, activity.DurationMinutes, weightKg)
	if !ok {
		return 0
	}
	return calories
}
