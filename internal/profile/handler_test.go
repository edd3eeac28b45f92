package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/2beens/fittrack/internal/calc"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type repoMock struct {
	profiles map[int]*Profile
}

func newRepoMock() *repoMock {
	return &repoMock{
		profiles: map[int]*Profile{},
	}
}

func (m *repoMock) Get(_ context.Context, userID int) (*Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

func (m *repoMock) Upsert(_ context.Context, p *Profile) (*Profile, error) {
	p.ID = len(m.profiles) + 1
	m.profiles[p.UserID] = p
	return p, nil
}

func profileRouter(handler *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/profile/{userID}", handler.HandleGet).Methods("GET")
	r.HandleFunc("/profile/{userID}", handler.HandleUpsert).Methods("POST")
	return r
}

func TestHandler_HandleGet(t *testing.T) {
	repo := newRepoMock()
	repo.profiles[1] = &Profile{
		ID:            1,
		UserID:        1,
		Sex:           calc.SexMale,
		DateOfBirth:   time.Date(1990, 5, 15, 0, 0, 0, 0, time.UTC),
		HeightCm:      175,
		WeightKg:      70,
		ActivityLevel: calc.ActivityLevelActive,
		Goal:          calc.GoalMaintain,
	}

	handler := NewHandler(repo, calc.New(calc.DefaultDefaults()))
	router := profileRouter(handler)

	req := httptest.NewRequest("GET", "/profile/1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp ProfileResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Profile.UserID)
	require.NotNil(t, resp.Metrics.BMI)
	assert.Equal(t, 22.86, *resp.Metrics.BMI)
	assert.Equal(t, "Normal weight", resp.Metrics.BMICategory)
	require.NotNil(t, resp.Metrics.BMR)
	require.NotNil(t, resp.Metrics.TDEE)
	require.NotNil(t, resp.Metrics.Macros)
	require.NotNil(t, resp.Metrics.WaterTargetMl)
}

func TestHandler_HandleGet_metricsAbsentWithoutData(t *testing.T) {
	repo := newRepoMock()
	// no height, no weight, zero date of birth
	repo.profiles[2] = &Profile{
		ID:            2,
		UserID:        2,
		Sex:           calc.SexFemale,
		ActivityLevel: calc.ActivityLevelSedentary,
		Goal:          calc.GoalWeightLoss,
	}

	handler := NewHandler(repo, calc.New(calc.DefaultDefaults()))
	router := profileRouter(handler)

	req := httptest.NewRequest("GET", "/profile/2", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp ProfileResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Nil(t, resp.Metrics.BMI)
	assert.Nil(t, resp.Metrics.BMR)
	assert.Nil(t, resp.Metrics.TDEE)
	assert.Nil(t, resp.Metrics.WaterTargetMl)
	assert.Empty(t, resp.Metrics.BMICategory)
}

func TestHandler_HandleGet_notFound(t *testing.T) {
	handler := NewHandler(newRepoMock(), calc.New(calc.DefaultDefaults()))
	router := profileRouter(handler)

	req := httptest.NewRequest("GET", "/profile/55", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_HandleUpsert(t *testing.T) {
	repo := newRepoMock()
	handler := NewHandler(repo, calc.New(calc.DefaultDefaults()))
	router := profileRouter(handler)

	body := `{
		"sex": "female",
		"dateOfBirth": "1995-02-10T00:00:00Z",
		"heightCm": 168,
		"weightKg": 62,
		"activityLevel": "active",
		"goal": "muscle_gain"
	}`
	req := httptest.NewRequest("POST", "/profile/3", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Contains(t, repo.profiles, 3)
	assert.Equal(t, calc.GoalMuscleGain, repo.profiles[3].Goal)
}

func TestHandler_HandleUpsert_invalid(t *testing.T) {
	handler := NewHandler(newRepoMock(), calc.New(calc.DefaultDefaults()))
	router := profileRouter(handler)

	body := `{"sex": "robot", "activityLevel": "active", "goal": "maintain"}`
	req := httptest.NewRequest("POST", "/profile/3", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
