package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowsnest/internal/models"
	"crowsnest/internal/pipeline"
	"crowsnest/internal/respond"
	"crowsnest/internal/sources"
	"crowsnest/internal/store"
	"crowsnest/pkg/llm"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type stubFetcher struct {
	name  string
	posts []models.Post
}

func (f stubFetcher) Name() string { return f.name }
func (f stubFetcher) Fetch(context.Context, string) ([]models.Post, error) {
	return f.posts, nil
}

type staticProvider struct{ reply string }

func (p staticProvider) Complete(context.Context, llm.Request) (string, error) {
	return p.reply, nil
}

type fakeStore struct {
	evidence  map[string][]models.EvidenceResult
	responses map[string]string
	posts     map[string]*store.PostRow
	cleared   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		evidence:  map[string][]models.EvidenceResult{},
		responses: map[string]string{},
		posts:     map[string]*store.PostRow{},
	}
}

func (f *fakeStore) UpsertPost(context.Context, store.PostRow) error                 { return nil }
func (f *fakeStore) InsertEntities(context.Context, string, []store.EntityRow) error { return nil }
func (f *fakeStore) InsertMedia(context.Context, string, []store.MediaRow) error     { return nil }
func (f *fakeStore) InsertEvidence(context.Context, store.EvidenceRow) error         { return nil }
func (f *fakeStore) InsertAdminResponse(context.Context, store.AdminResponseRow) error {
	return nil
}
func (f *fakeStore) GetAdminResponse(_ context.Context, postID string) (string, error) {
	return f.responses[postID], nil
}
func (f *fakeStore) GetEvidence(_ context.Context, postID string) ([]models.EvidenceResult, error) {
	return f.evidence[postID], nil
}
func (f *fakeStore) GetPostByID(_ context.Context, postID string) (*store.PostRow, error) {
	return f.posts[postID], nil
}
func (f *fakeStore) Dashboard(context.Context, string) (*store.DashboardData, error) {
	return &store.DashboardData{TotalMentions: 2, AverageScore: 6.5}, nil
}
func (f *fakeStore) ClearAll(context.Context) error {
	f.cleared = true
	return nil
}

func setup(t *testing.T, st store.Store, translator *respond.Translator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	p := pipeline.New(pipeline.Config{
		Fetchers: []sources.Fetcher{
			stubFetcher{name: "Twitter", posts: []models.Post{{
				ID:        "tw_1",
				Platform:  models.PlatformTwitter,
				Content:   "Acme update",
				Timestamp: "2 hours ago",
				RiskScore: models.PlaceholderRiskScore,
				Sentiment: models.PlaceholderSentiment,
			}}},
		},
		Store:  st,
		Logger: testLogger(),
	})

	h := New(Config{Pipeline: p, Store: st, Translator: translator, Logger: testLogger()})
	h.RegisterRoutes(router)
	return router
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSearch(t *testing.T) {
	router := setup(t, newFakeStore(), nil)

	t.Run("returns scored posts", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/search", `{"keyword": "Acme"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool          `json:"success"`
			Posts   []models.Post `json:"posts"`
			Errors  []string      `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		require.Len(t, resp.Posts, 1)
		assert.Equal(t, "tw_1", resp.Posts[0].ID)
		assert.Equal(t, models.PlaceholderRiskScore, resp.Posts[0].RiskScore)
		assert.Empty(t, resp.Errors)
	})

	t.Run("rejects missing keyword", func(t *testing.T) {
		for _, body := range []string{``, `{}`, `{"keyword": "   "}`} {
			w := do(router, http.MethodPost, "/api/search", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		}
	})
}

func TestDashboard(t *testing.T) {
	t.Run("with store", func(t *testing.T) {
		router := setup(t, newFakeStore(), nil)
		w := do(router, http.MethodGet, "/api/dashboard?timeRange=24h", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"totalMentions":2`)
	})

	t.Run("without store", func(t *testing.T) {
		router := setup(t, nil, nil)
		w := do(router, http.MethodGet, "/api/dashboard", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"data":null`)
	})
}

func TestPostByID(t *testing.T) {
	st := newFakeStore()
	st.posts["tw_1"] = &store.PostRow{ID: "tw_1", Platform: "twitter", FullText: "Acme update"}
	router := setup(t, st, nil)

	w := do(router, http.MethodGet, "/api/posts/tw_1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Acme update")

	w = do(router, http.MethodGet, "/api/posts/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEvidence(t *testing.T) {
	st := newFakeStore()
	st.evidence["tw_1"] = []models.EvidenceResult{{Title: "Reuters", URL: "https://reuters.example/a"}}
	router := setup(t, st, nil)

	w := do(router, http.MethodGet, "/api/evidence/tw_1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Reuters")

	// Unknown post still succeeds with an empty list.
	w = do(router, http.MethodGet, "/api/evidence/missing", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"evidence":[]`)
}

func TestAdminResponse(t *testing.T) {
	st := newFakeStore()
	st.responses["tw_1"] = "We dispute this claim."
	router := setup(t, st, nil)

	w := do(router, http.MethodGet, "/api/admin-response/tw_1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "We dispute this claim.")

	w = do(router, http.MethodGet, "/api/admin-response/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFactCheck(t *testing.T) {
	st := newFakeStore()
	st.evidence["tw_1"] = []models.EvidenceResult{{
		Title:   "Reuters",
		URL:     "https://reuters.example/a",
		Snippet: "Earnings rose twelve percent, beating analyst expectations.",
	}}
	router := setup(t, st, nil)

	t.Run("with evidence", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/factcheck/tw_1", `{"postContent": "Acme is bankrupt"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"hasEvidence":true`)
		assert.Contains(t, w.Body.String(), "Reuters")
	})

	t.Run("without evidence", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/factcheck/unknown", `{"postContent": "Acme is bankrupt"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"hasEvidence":false`)
		assert.Contains(t, w.Body.String(), "unverified")
	})

	t.Run("missing content", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/factcheck/tw_1", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTranslate(t *testing.T) {
	translator := respond.NewTranslator(respond.TranslatorConfig{
		LLM:    staticProvider{reply: "The economy is collapsing."},
		Logger: testLogger(),
	})
	router := setup(t, nil, translator)

	w := do(router, http.MethodPost, "/api/translate", `{"text": "経済が崩壊している。"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "The economy is collapsing.")

	w = do(router, http.MethodPost, "/api/translate", `{"text": ""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// No translator configured.
	router = setup(t, nil, nil)
	w = do(router, http.MethodPost, "/api/translate", `{"text": "hola"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestClear(t *testing.T) {
	st := newFakeStore()
	router := setup(t, st, nil)

	w := do(router, http.MethodDelete, "/api/clear", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, st.cleared)

	router = setup(t, nil, nil)
	w = do(router, http.MethodDelete, "/api/clear", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
