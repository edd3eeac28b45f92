package hydration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/2beens/fittrack/internal/calc"
	"github.com/2beens/fittrack/internal/profile"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type repoMock struct {
	intakes []Intake
}

func (m *repoMock) Add(_ context.Context, intake *Intake) (*Intake, error) {
	intake.ID = len(m.intakes) + 1
	m.intakes = append(m.intakes, *intake)
	return intake, nil
}

func (m *repoMock) DailyTotal(_ context.Context, userID int, day time.Time) (int, error) {
	dayStart := pkg.DayStart(day)
	total := 0
	for _, i := range m.intakes {
		if i.UserID == userID &&
			!i.RecordedAt.Before(dayStart) && i.RecordedAt.Before(dayStart.AddDate(0, 0, 1)) {
			total += i.Milliliters
		}
	}
	return total, nil
}

func (m *repoMock) ListRange(_ context.Context, userID int, from, to time.Time) ([]Intake, error) {
	var intakes []Intake
	for _, i := range m.intakes {
		if i.UserID == userID && !i.RecordedAt.Before(from) && i.RecordedAt.Before(to) {
			intakes = append(intakes, i)
		}
	}
	return intakes, nil
}

type profileGetterMock struct {
	profiles map[int]*profile.Profile
}

func (m *profileGetterMock) Get(_ context.Context, userID int) (*profile.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	return p, nil
}

func hydrationRouter(handler *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/hydration/{userID}", handler.HandleAdd).Methods("POST")
	r.HandleFunc("/hydration/{userID}", handler.HandleList).Methods("GET")
	r.HandleFunc("/hydration/{userID}/today", handler.HandleToday).Methods("GET")
	return r
}

func TestHandler_HandleAdd(t *testing.T) {
	repo := &repoMock{}
	profiles := &profileGetterMock{profiles: map[int]*profile.Profile{}}
	handler := NewHandler(repo, profiles, calc.New(calc.DefaultDefaults()), metrics.NewTestManager())
	router := hydrationRouter(handler)

	body := `{"milliliters": 330}`
	req := httptest.NewRequest("POST", "/hydration/1", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Len(t, repo.intakes, 1)
	assert.Equal(t, 330, repo.intakes[0].Milliliters)

	// non-positive amounts rejected
	req = httptest.NewRequest("POST", "/hydration/1", strings.NewReader(`{"milliliters": 0}`))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Len(t, repo.intakes, 1)
}

func TestHandler_HandleToday(t *testing.T) {
	now := time.Now()
	repo := &repoMock{
		intakes: []Intake{
			{ID: 1, UserID: 1, Milliliters: 500, RecordedAt: now},
			{ID: 2, UserID: 1, Milliliters: 725, RecordedAt: now},
			{ID: 3, UserID: 1, Milliliters: 400, RecordedAt: now.AddDate(0, 0, -1)},
			{ID: 4, UserID: 2, Milliliters: 999, RecordedAt: now},
		},
	}
	profiles := &profileGetterMock{profiles: map[int]*profile.Profile{
		1: {UserID: 1, WeightKg: 70, ActivityLevel: calc.ActivityLevelSedentary},
	}}
	handler := NewHandler(repo, profiles, calc.New(calc.DefaultDefaults()), metrics.NewTestManager())
	router := hydrationRouter(handler)

	req := httptest.NewRequest("GET", "/hydration/1/today", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp TodayResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1225, resp.TotalMl)
	assert.Equal(t, 2450, resp.TargetMl)
	assert.Equal(t, 50.0, resp.Percentage)
}

func TestHandler_HandleToday_fallbackTargetWithoutProfile(t *testing.T) {
	repo := &repoMock{}
	profiles := &profileGetterMock{profiles: map[int]*profile.Profile{}}
	handler := NewHandler(repo, profiles, calc.New(calc.DefaultDefaults()), metrics.NewTestManager())
	router := hydrationRouter(handler)

	req := httptest.NewRequest("GET", "/hydration/5/today", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp TodayResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.TotalMl)
	assert.Equal(t, 2500, resp.TargetMl)
	assert.Equal(t, 0.0, resp.Percentage)
}
