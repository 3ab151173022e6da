package handlers_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/service"
	"github.com/dom/mama-respira/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bitacoraResponse struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	DayNumber int               `json:"day_number"`
	Date      string            `json:"date"`
	Naps      []domain.NapEntry `json:"naps"`
	Notes     *string           `json:"notes"`
	AISummary *string           `json:"ai_summary"`
}

type fixedCompleter struct {
	text string
	err  error
}

func (c fixedCompleter) Complete(context.Context, string, string, int) (string, error) {
	return c.text, c.err
}

func createBitacora(t *testing.T, ts *testutil.TestServer, token string, body map[string]any) *http.Response {
	t.Helper()
	req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/bitacora"), body, token)
	return testutil.Do(t, req)
}

func TestBitacoraRoutes_Gate(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, userToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, premiumToken := testutil.NewUserBuilder().WithRole(domain.RolePremium).BuildAndAuthenticate(t, ts)
	_, coachToken := testutil.NewUserBuilder().WithRole(domain.RoleCoach).BuildAndAuthenticate(t, ts)

	tests := []struct {
		name           string
		token          string
		expectedStatus int
	}{
		{name: "premium", token: premiumToken, expectedStatus: http.StatusOK},
		{name: "coach", token: coachToken, expectedStatus: http.StatusOK},
		{name: "plain user", token: userToken, expectedStatus: http.StatusOK},
		{name: "anonymous", token: "", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/bitacora"), nil, tt.token)
			resp := testutil.Do(t, req)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestBitacoraHandler_PlainUserLogsOwnDay(t *testing.T) {
	ts := testutil.NewTestServer(t, testutil.WithCompleter(fixedCompleter{text: "Buen día."}))

	_, userToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, otherToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, coachToken := testutil.NewUserBuilder().WithRole(domain.RoleCoach).BuildAndAuthenticate(t, ts)

	resp := createBitacora(t, ts, userToken, map[string]any{"baby_mood": "tranquilo"})
	var created bitacoraResponse
	testutil.AssertJSONResponse(t, resp, &created)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, created.DayNumber)

	tests := []struct {
		name           string
		token          string
		expectedStatus int
	}{
		{name: "owner", token: userToken, expectedStatus: http.StatusOK},
		{name: "coach", token: coachToken, expectedStatus: http.StatusOK},
		{name: "another user", token: otherToken, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/bitacora/"+created.ID), nil, tt.token)
			resp := testutil.Do(t, req)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestBitacoraHandler_Create(t *testing.T) {
	tests := []struct {
		name            string
		completer       fixedCompleter
		body            map[string]any
		expectedStatus  int
		expectedSummary string
	}{
		{
			name:            "no observations",
			completer:       fixedCompleter{text: "unused"},
			body:            map[string]any{"date": "2025-05-01"},
			expectedStatus:  http.StatusOK,
			expectedSummary: service.SummaryNoData,
		},
		{
			name:      "summary from completion",
			completer: fixedCompleter{text: "Buen patrón de siestas."},
			body: map[string]any{
				"date":  "2025-05-01",
				"naps":  []map[string]any{{"laid_down_time": "10:00", "duration_minutes": 45}},
				"notes": "Durmió bien",
			},
			expectedStatus:  http.StatusOK,
			expectedSummary: "Buen patrón de siestas.",
		},
		{
			name:      "completion failure falls back",
			completer: fixedCompleter{err: errors.New("upstream down")},
			body: map[string]any{
				"date":              "2025-05-01",
				"baby_mood":         "tranquilo",
				"morning_wake_time": "07:00",
			},
			expectedStatus:  http.StatusOK,
			expectedSummary: service.SummaryFailure,
		},
		{
			name:      "too many naps",
			completer: fixedCompleter{},
			body: map[string]any{
				"naps": []map[string]any{{}, {}, {}, {}},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad date",
			completer:      fixedCompleter{},
			body:           map[string]any{"date": "01/05/2025"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "negative minutes",
			completer:      fixedCompleter{},
			body:           map[string]any{"time_to_fall_asleep_minutes": -5},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := testutil.NewTestServer(t, testutil.WithCompleter(tt.completer))
			owner, token := testutil.NewUserBuilder().WithRole(domain.RolePremium).BuildAndAuthenticate(t, ts)

			resp := createBitacora(t, ts, token, tt.body)
			defer resp.Body.Close()
			require.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var b bitacoraResponse
			testutil.AssertJSONResponse(t, resp, &b)
			assert.Regexp(t, `^bit_[0-9a-f]{12}$`, b.ID)
			assert.Equal(t, owner.UserID, b.UserID)
			assert.Equal(t, 1, b.DayNumber)
			assert.Equal(t, "2025-05-01", b.Date)
			require.NotNil(t, b.AISummary)
			assert.Equal(t, tt.expectedSummary, *b.AISummary)
		})
	}
}

func TestBitacoraHandler_DayNumbersAndList(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().WithRole(domain.RolePremium).BuildAndAuthenticate(t, ts)

	for _, date := range []string{"2025-05-01", "2025-05-02", "2025-05-03"} {
		resp := createBitacora(t, ts, token, map[string]any{"date": date})
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/bitacora?limit=2"), nil, token)
	resp := testutil.Do(t, req)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []bitacoraResponse
	testutil.AssertJSONResponse(t, resp, &list)
	require.Len(t, list, 2)
	assert.Equal(t, 3, list[0].DayNumber)
	assert.Equal(t, 2, list[1].DayNumber)
}

func TestBitacoraHandler_Today(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().WithRole(domain.RolePremium).BuildAndAuthenticate(t, ts)

	req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/bitacora/today"), nil, token)
	resp := testutil.Do(t, req)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "null", strings.TrimSpace(string(raw)))

	// Without a date the entry is filed under the current UTC day.
	created := createBitacora(t, ts, token, map[string]any{})
	created.Body.Close()
	require.Equal(t, http.StatusOK, created.StatusCode)

	req = testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/bitacora/today"), nil, token)
	resp = testutil.Do(t, req)
	defer resp.Body.Close()

	var b bitacoraResponse
	testutil.AssertJSONResponse(t, resp, &b)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), b.Date)
}

func TestBitacoraHandler_GetAndUpdate(t *testing.T) {
	ts := testutil.NewTestServer(t, testutil.WithCompleter(fixedCompleter{text: "Resumen nuevo."}))

	_, ownerToken := testutil.NewUserBuilder().WithRole(domain.RolePremium).BuildAndAuthenticate(t, ts)
	_, strangerToken := testutil.NewUserBuilder().WithRole(domain.RolePremium).BuildAndAuthenticate(t, ts)
	_, coachToken := testutil.NewUserBuilder().WithRole(domain.RoleCoach).BuildAndAuthenticate(t, ts)

	resp := createBitacora(t, ts, ownerToken, map[string]any{"date": "2025-05-01"})
	var created bitacoraResponse
	testutil.AssertJSONResponse(t, resp, &created)
	resp.Body.Close()

	t.Run("owner and coach can read", func(t *testing.T) {
		for _, token := range []string{ownerToken, coachToken} {
			req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/bitacora/"+created.ID), nil, token)
			resp := testutil.Do(t, req)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			resp.Body.Close()
		}
	})

	t.Run("other clients see not found", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/bitacora/"+created.ID), nil, strangerToken)
		resp := testutil.Do(t, req)
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusNotFound, domain.ErrBitacoraNotFound.Message)
	})

	t.Run("unknown id", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/bitacora/bit_000000000000"), nil, ownerToken)
		resp := testutil.Do(t, req)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("only the owner may update", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodPut, ts.APIURL("/bitacora/"+created.ID),
			map[string]any{"notes": "intruso"}, strangerToken)
		resp := testutil.Do(t, req)
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusForbidden, domain.ErrNotBitacoraOwner.Message)
	})

	t.Run("update regenerates summary", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodPut, ts.APIURL("/bitacora/"+created.ID),
			map[string]any{"notes": "Despertó dos veces", "baby_mood": "inquieto"}, ownerToken)
		resp := testutil.Do(t, req)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var updated bitacoraResponse
		testutil.AssertJSONResponse(t, resp, &updated)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, created.DayNumber, updated.DayNumber)
		assert.Equal(t, "2025-05-01", updated.Date, "date is kept when omitted")
		require.NotNil(t, updated.Notes)
		assert.Equal(t, "Despertó dos veces", *updated.Notes)
		require.NotNil(t, updated.AISummary)
		assert.Equal(t, "Resumen nuevo.", *updated.AISummary)
	})
}
