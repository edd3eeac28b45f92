package goals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type goalsRepo interface {
	Add(ctx context.Context, goal *Goal) (*Goal, error)
	Get(ctx context.Context, id int) (*Goal, error)
	Update(ctx context.Context, goal *Goal) error
	Delete(ctx context.Context, id, userID int) error
	ListByStatus(ctx context.Context, userID int, status Status) ([]Goal, error)
}

// GoalWithProgress decorates a goal with its derived progress.
type GoalWithProgress struct {
	Goal
	Progress float64 `json:"progress"`
	Achieved bool    `json:"achieved"`
}

type DeleteResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	repo goalsRepo
}

func NewHandler(repo goalsRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.add")
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

	var goal Goal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		log.Errorf("new goal, unmarshal json params: %s", err)
		http.Error(w, "add goal failed", http.StatusBadRequest)
		return
	}
	goal.UserID = userID
	if goal.Status == "" {
		goal.Status = StatusActive
	}
	if goal.StartDate.IsZero() {
		goal.StartDate = time.Now()
	}

	if err := goal.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	added, err := handler.repo.Add(ctx, &goal)
	if err != nil {
		log.Errorf("failed to add goal [%s] for user %d: %s", goal.Title, userID, err)
		http.Error(w, "error, failed to add goal", http.StatusInternalServerError)
		return
	}

	addedJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("marshal goal: %s", err)
		http.Error(w, "error, failed to add goal", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.get")
	defer span.End()

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	goal, err := handler.repo.Get(ctx, id)
	if errors.Is(err, ErrGoalNotFound) {
		http.Error(w, "goal not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("get goal %d: %s", id, err)
		http.Error(w, "failed to get goal", http.StatusInternalServerError)
		return
	}

	goalJson, err := json.Marshal(withProgress(*goal))
	if err != nil {
		log.Errorf("marshal goal: %s", err)
		http.Error(w, "failed to get goal", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, goalJson, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.list")
	defer span.End()

	userID, err := strconv.Atoi(mux.Vars(r)["userID"])
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	status := Status(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		http.Error(w, "error, invalid status", http.StatusBadRequest)
		return
	}

	goals, err := handler.repo.ListByStatus(ctx, userID, status)
	if err != nil {
		log.Errorf("list goals for user %d: %s", userID, err)
		http.Error(w, "failed to list goals", http.StatusInternalServerError)
		return
	}

	decorated := make([]GoalWithProgress, 0, len(goals))
	for _, g := range goals {
		decorated = append(decorated, withProgress(g))
	}

	goalsJson, err := json.Marshal(decorated)
	if err != nil {
		log.Errorf("marshal goals: %s", err)
		http.Error(w, "failed to list goals", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, goalsJson, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.update")
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

	var goal Goal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		log.Errorf("update goal, unmarshal json params: %s", err)
		http.Error(w, "update goal failed", http.StatusBadRequest)
		return
	}
	goal.ID = id
	goal.UserID = userID

	// goals that hit their target flip to completed
	if goal.Status == StatusActive && goal.IsAchieved() {
		goal.Status = StatusCompleted
	}

	if err := goal.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = handler.repo.Update(ctx, &goal)
	if errors.Is(err, ErrGoalNotFound) {
		http.Error(w, "goal not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("update goal %d: %s", id, err)
		http.Error(w, "failed to update goal", http.StatusInternalServerError)
		return
	}

	goalJson, err := json.Marshal(withProgress(goal))
	if err != nil {
		log.Errorf("marshal updated goal: %s", err)
		http.Error(w, "failed to update goal", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, goalJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.delete")
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
	if errors.Is(err, ErrGoalNotFound) {
		http.Error(w, "goal not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("delete goal %d: %s", id, err)
		http.Error(w, "failed to delete goal", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(DeleteResponse{DeletedID: id})
	if err != nil {
		log.Errorf("marshal delete response: %s", err)
		http.Error(w, "failed to delete goal", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func withProgress(g Goal) GoalWithProgress {
	return GoalWithProgress{
		Goal:     g,
		Progress: g.ProgressPercentage(),
		Achieved: g.IsAchieved(),
	}
}
