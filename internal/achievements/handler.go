package achievements

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type badgeChecker interface {
	CheckAll(ctx context.Context, userID int) (*CheckAllResult, error)
	Progress(ctx context.Context, userID int) ([]BadgeProgress, error)
}

type ListResponse struct {
	Badges []Badge `json:"badges"`
	Total  int     `json:"total"`
}

type Handler struct {
	engine badgeChecker
	badges badgesRepo
}

func NewHandler(engine badgeChecker, badges badgesRepo) *Handler {
	return &Handler{
		engine: engine,
		badges: badges,
	}
}

// HandleCheckAll runs a full badge evaluation pass for the user.
func (handler *Handler) HandleCheckAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.achievements.checkAll")
	defer span.End()

	userID, err := strconv.Atoi(mux.Vars(r)["userID"])
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	result, err := handler.engine.CheckAll(ctx, userID)
	if err != nil {
		log.Errorf("check badges for user %d: %s", userID, err)
		http.Error(w, "failed to check badges", http.StatusInternalServerError)
		return
	}

	resultJson, err := json.Marshal(result)
	if err != nil {
		log.Errorf("marshal badge check result: %s", err)
		http.Error(w, "failed to check badges", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resultJson, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.achievements.list")
	defer span.End()

	userID, err := strconv.Atoi(mux.Vars(r)["userID"])
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	badges, err := handler.badges.List(ctx, userID)
	if err != nil {
		log.Errorf("list badges for user %d: %s", userID, err)
		http.Error(w, "failed to list badges", http.StatusInternalServerError)
		return
	}
	if badges == nil {
		badges = []Badge{}
	}

	respJson, err := json.Marshal(ListResponse{
		Badges: badges,
		Total:  len(badges),
	})
	if err != nil {
		log.Errorf("marshal badges: %s", err)
		http.Error(w, "failed to list badges", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.achievements.progress")
	defer span.End()

	userID, err := strconv.Atoi(mux.Vars(r)["userID"])
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	progress, err := handler.engine.Progress(ctx, userID)
	if err != nil {
		log.Errorf("badge progress for user %d: %s", userID, err)
		http.Error(w, "failed to get badge progress", http.StatusInternalServerError)
		return
	}

	progressJson, err := json.Marshal(progress)
	if err != nil {
		log.Errorf("marshal badge progress: %s", err)
		http.Error(w, "failed to get badge progress", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, progressJson, http.StatusOK)
}
