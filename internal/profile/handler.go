package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/fittrack/internal/calc"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type profileRepo interface {
	Get(ctx context.Context, userID int) (*Profile, error)
	Upsert(ctx context.Context, p *Profile) (*Profile, error)
}

// DerivedMetrics carries everything computable from the profile.
// A nil field means the profile lacks the data for that metric.
type DerivedMetrics struct {
	Age              *int              `json:"age,omitempty"`
	BMI              *float64          `json:"bmi,omitempty"`
	BMICategory      string            `json:"bmiCategory,omitempty"`
	BMR              *float64          `json:"bmr,omitempty"`
	TDEE             *float64          `json:"tdee,omitempty"`
	IdealWeightRange *calc.WeightRange `json:"idealWeightRange,omitempty"`
	Macros           *calc.MacroSplit  `json:"macros,omitempty"`
	WaterTargetMl    *int              `json:"waterTargetMl,omitempty"`
}

type ProfileResponse struct {
	Profile *Profile       `json:"profile"`
	Metrics DerivedMetrics `json:"metrics"`
}

type Handler struct {
	repo       profileRepo
	calculator *calc.Calculator
}

func NewHandler(repo profileRepo, calculator *calc.Calculator) *Handler {
	return &Handler{
		repo:       repo,
		calculator: calculator,
	}
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profile.get")
	defer span.End()

	userID, err := strconv.Atoi(mux.Vars(r)["userID"])
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	p, err := handler.repo.Get(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("get profile for user %d: %s", userID, err)
		http.Error(w, "failed to get profile", http.StatusInternalServerError)
		return
	}

	resp := ProfileResponse{
		Profile: p,
		Metrics: DeriveMetrics(handler.calculator, p),
	}
	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal profile response: %s", err)
		http.Error(w, "failed to get profile", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profile.upsert")
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

	var p Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		log.Errorf("save profile, unmarshal json params: %s", err)
		http.Error(w, "save profile failed", http.StatusBadRequest)
		return
	}
	p.UserID = userID

	if err := p.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	saved, err := handler.repo.Upsert(ctx, &p)
	if err != nil {
		log.Errorf("save profile for user %d: %s", userID, err)
		http.Error(w, "failed to save profile", http.StatusInternalServerError)
		return
	}

	log.Debugf("profile saved for user %d: %d", saved.UserID, saved.ID)

	savedJson, err := json.Marshal(saved)
	if err != nil {
		log.Errorf("marshal saved profile: %s", err)
		http.Error(w, "failed to save profile", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, savedJson, http.StatusCreated)
}

// DeriveMetrics computes every metric the profile has data for.
func DeriveMetrics(calculator *calc.Calculator, p *Profile) DerivedMetrics {
	var m DerivedMetrics

	if age, ok := calculator.Age(p.DateOfBirth); ok {
		m.Age = &age
	}

	if bmi, ok := calculator.BMI(p.WeightKg, p.HeightCm); ok {
		m.BMI = &bmi
		m.BMICategory = calculator.BMICategory(bmi)
	}

	if m.Age != nil {
		if bmr, ok := calculator.BMR(p.WeightKg, p.HeightCm, *m.Age, p.Sex); ok {
			m.BMR = &bmr
			if tdee, ok := calculator.TDEE(bmr, p.ActivityLevel); ok {
				m.TDEE = &tdee
				if macros, ok := calculator.Macros(tdee, p.Goal); ok {
					m.Macros = &macros
				}
			}
		}
	}

	if idealRange, ok := calculator.IdealWeightRange(p.HeightCm); ok {
		m.IdealWeightRange = &idealRange
	}

	if waterTarget, ok := calculator.WaterTarget(p.WeightKg, p.ActivityLevel); ok {
		m.WaterTargetMl = &waterTarget
	}

	return m
}
