package biometrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fittrack/internal/profile"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type biometricsRepo interface {
	Add(ctx context.Context, b *Biometric) (*Biometric, error)
	ListRange(ctx context.Context, userID int, from, to time.Time) ([]Biometric, error)
	Latest(ctx context.Context, userID int) (*Biometric, error)
}

type profileWeightUpdater interface {
	UpdateWeight(ctx context.Context, userID int, weightKg float64) error
}

type Handler struct {
	repo     biometricsRepo
	profiles profileWeightUpdater
}

func NewHandler(repo biometricsRepo, profiles profileWeightUpdater) *Handler {
	return &Handler{
		repo:     repo,
		profiles: profiles,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.biometrics.add")
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

	var b Biometric
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		log.Errorf("new biometric entry, unmarshal json params: %s", err)
		http.Error(w, "add biometric entry failed", http.StatusBadRequest)
		return
	}
	b.UserID = userID
	if b.RecordedAt.IsZero() {
		b.RecordedAt = time.Now()
	}

	if err := b.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	added, err := handler.repo.Add(ctx, &b)
	if err != nil {
		log.Errorf("failed to add biometric entry for user %d: %s", userID, err)
		http.Error(w, "error, failed to add biometric entry", http.StatusInternalServerError)
		return
	}

	// keep the profile weight in sync with the latest snapshot
	if err := handler.profiles.UpdateWeight(ctx, userID, added.WeightKg); err != nil &&
		!errors.Is(err, profile.ErrProfileNotFound) {
		log.Errorf("refresh profile weight for user %d: %s", userID, err)
	}

	addedJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("marshal biometric entry: %s", err)
		http.Error(w, "error, failed to add biometric entry", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.biometrics.list")
	defer span.End()

	userID, err := strconv.Atoi(mux.Vars(r)["userID"])
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	// default window: last 30 days
	to := time.Now()
	from := to.AddDate(0, 0, -30)
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

	entries, err := handler.repo.ListRange(ctx, userID, from, to)
	if err != nil {
		log.Errorf("list biometric entries for user %d: %s", userID, err)
		http.Error(w, "failed to list biometric entries", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []Biometric{}
	}

	entriesJson, err := json.Marshal(entries)
	if err != nil {
		log.Errorf("marshal biometric entries: %s", err)
		http.Error(w, "failed to list biometric entries", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entriesJson, http.StatusOK)
}

func (handler *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.biometrics.latest")
	defer span.End()

	userID, err := strconv.Atoi(mux.Vars(r)["userID"])
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	latest, err := handler.repo.Latest(ctx, userID)
	if errors.Is(err, ErrBiometricNotFound) {
		http.Error(w, "no biometric entries", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("latest biometric entry for user %d: %s", userID, err)
		http.Error(w, "failed to get latest biometric entry", http.StatusInternalServerError)
		return
	}

	latestJson, err := json.Marshal(latest)
	if err != nil {
		log.Errorf("marshal latest biometric entry: %s", err)
		http.Error(w, "failed to get latest biometric entry", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, latestJson, http.StatusOK)
}
