package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinescope/internal/catalog"
	"cinescope/internal/models"
	"cinescope/internal/service"
	"cinescope/internal/storage"
	"cinescope/internal/store"
)

const testToken = "s3cret"

type fixture struct {
	router *gin.Engine
	store  *store.Store
	token  string
}

func newFixture(t *testing.T, token string) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := storage.NewMemoryBackend()
	st := store.New(storage.NewBridge(mem))
	cat, err := catalog.New(catalog.Dataset{
		Movies: []models.ContentItem{
			{ID: 1, Title: "Night Train", Category: "Thriller", Actors: []string{"Ann Lee"}, Duration: 110},
			{ID: 2, Title: "Summer Rain", Category: "Drama", Actors: []string{"Cy Moss"}, Duration: 95},
		},
		Series: []models.ContentItem{
			{ID: 7, Title: "Harbor", Category: "Drama", Seasons: []models.Season{
				{SeasonNumber: 1, Episodes: []models.Episode{{EpisodeNumber: 1, Title: "Arrival", Duration: 50}}},
			}},
		},
	})
	require.NoError(t, err)
	backups := service.NewBackupService(mem, afero.NewMemMapFs(), "/backups", 3)

	r := gin.New()
	NewHTTPHandler(st, cat, backups, token).RegisterRoutes(r)
	return &fixture{router: r, store: st, token: token}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestAuth(t *testing.T) {
	f := newFixture(t, testToken)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code, "health is open")

	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/theme", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/theme", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/theme", "").Code)
}

func TestNoTokenLeavesAPIOpen(t *testing.T) {
	f := newFixture(t, "")
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/theme", "").Code)
}

func TestCollectionToggle(t *testing.T) {
	f := newFixture(t, testToken)

	w := f.do(http.MethodPost, "/api/collections/likedMovies/5/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["member"])

	w = f.do(http.MethodPost, "/api/collections/watchLaterSeries/9/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{9}, f.store.Collection(models.WatchLaterSeries))

	w = f.do(http.MethodGet, "/api/collections/likedMovies", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{float64(5)}, decode(t, w)["ids"])

	w = f.do(http.MethodPost, "/api/collections/likedMovies/5/toggle", "")
	assert.Equal(t, false, decode(t, w)["member"])

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/collections/nope", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/collections/likedMovies/abc/toggle", "").Code)
}

func TestProgressEndpoints(t *testing.T) {
	f := newFixture(t, testToken)

	w := f.do(http.MethodPut, "/api/progress/movie:1", `{"time": 600, "duration": 6000}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "movie:1", body["key"])
	assert.InDelta(t, 0.1, body["percent"], 1e-9)

	f.do(http.MethodPut, "/api/progress/series:7:1:1", `{"time": 3, "duration": 3000}`)

	w = f.do(http.MethodGet, "/api/continue-watching", "")
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["items"].([]any)
	require.Len(t, items, 1, "entries at or below the threshold are hidden")
	assert.Equal(t, "movie:1", items[0].(map[string]any)["key"])

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPut, "/api/progress/movie:1", `{"time": 1}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/progress/bogus", "").Code)

	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/progress/movie:1", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/api/progress/movie:1", "").Code)
}

func TestReviewEndpoints(t *testing.T) {
	f := newFixture(t, testToken)

	w := f.do(http.MethodGet, "/api/reviews/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Nil(t, body["average"])
	assert.Equal(t, float64(0), body["count"])

	w = f.do(http.MethodPost, "/api/reviews/1", `{"name": "", "rating": "7", "text": "fine"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	review := decode(t, w)["review"].(map[string]any)
	assert.Equal(t, models.DefaultAuthorName, review["name"])
	assert.Equal(t, float64(7), review["rating"])

	f.do(http.MethodPost, "/api/reviews/1", `{"name": "Bo", "rating": 8, "text": "good"}`)

	body = decode(t, f.do(http.MethodGet, "/api/reviews/1", ""))
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, 7.5, body["average"])
	first := body["reviews"].([]any)[0].(map[string]any)
	assert.Equal(t, "Bo", first["name"], "newest first")
}

func TestPlayerEndpoints(t *testing.T) {
	f := newFixture(t, testToken)

	w := f.do(http.MethodPost, "/api/player/movie", `{"id": 1}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.PlayerMovie, f.store.Player().Mode)

	w = f.do(http.MethodPost, "/api/player/episode", `{"seriesId": 7, "season": 1, "episode": 1}`)
	require.Equal(t, http.StatusOK, w.Code)
	p := f.store.Player()
	assert.Equal(t, models.PlayerEpisode, p.Mode)
	assert.Nil(t, p.Item)
	assert.Equal(t, "Arrival", p.Episode.Episode.Title)

	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/player/trailer", `{"id": 7, "kind": "series"}`).Code)
	assert.Equal(t, models.PlayerTrailer, f.store.Player().Mode)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/api/player/movie", `{"id": 99}`).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/api/player/episode", `{"seriesId": 7, "season": 2, "episode": 1}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/player/movie", `{}`).Code)

	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/player", "").Code)
	assert.False(t, f.store.Player().IsOpen())
}

func TestProfileEndpoints(t *testing.T) {
	f := newFixture(t, testToken)

	w := f.do(http.MethodPost, "/api/profiles", `{"name": "guest", "color": "bg-pink-500"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	added := decode(t, w)["profile"].(map[string]any)
	assert.Equal(t, float64(5), added["id"])
	assert.Equal(t, "G", added["initial"])

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/profiles", `{"color": "x"}`).Code)

	w = f.do(http.MethodPatch, "/api/profiles/5", `{"name": "Guest"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Guest", decode(t, w)["profile"].(map[string]any)["name"])
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPatch, "/api/profiles/50", `{"name": "x"}`).Code)

	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/profiles/5/switch", "").Code)
	assert.Equal(t, 5, f.store.CurrentProfileID())
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/api/profiles/50/switch", "").Code)

	w = f.do(http.MethodGet, "/api/profiles/current", "")
	assert.Equal(t, "Guest", decode(t, w)["profile"].(map[string]any)["name"])

	for _, id := range []string{"1", "2", "3", "4"} {
		require.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/profiles/"+id, "").Code)
	}
	assert.Equal(t, http.StatusConflict, f.do(http.MethodDelete, "/api/profiles/5", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/api/profiles/1", "").Code)
	assert.Len(t, f.store.Profiles(), 1)
}

func TestFiltersAndCatalog(t *testing.T) {
	f := newFixture(t, testToken)

	w := f.do(http.MethodGet, "/api/catalog/movies", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 2)

	w = f.do(http.MethodPut, "/api/filters", `{"activeCategory": "Drama"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Drama", decode(t, w)["activeCategory"])

	items := decode(t, f.do(http.MethodGet, "/api/catalog/movie", ""))["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Summer Rain", items[0].(map[string]any)["title"])

	assert.Equal(t, []any{"Cy Moss"}, decode(t, f.do(http.MethodGet, "/api/catalog/movie/actors", ""))["actors"])
	assert.Equal(t, []any{"Thriller", "Drama"}, decode(t, f.do(http.MethodGet, "/api/catalog/movie/categories", ""))["categories"])

	f.do(http.MethodDelete, "/api/filters", "")
	assert.Equal(t, models.DefaultFilters(), f.store.Filters())

	assert.Len(t, decode(t, f.do(http.MethodGet, "/api/catalog/movie?q=night", ""))["items"], 1)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/catalog/books", "").Code)
}

func TestThemeEndpoints(t *testing.T) {
	f := newFixture(t, testToken)

	assert.Equal(t, "dark", decode(t, f.do(http.MethodGet, "/api/theme", ""))["theme"])
	assert.Equal(t, "light", decode(t, f.do(http.MethodPost, "/api/theme/toggle", ""))["theme"])
	assert.Equal(t, "dark", decode(t, f.do(http.MethodPut, "/api/theme", `{"theme": "dark"}`))["theme"])
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPut, "/api/theme", `{"theme": "blue"}`).Code)
}

func TestBackupAndRestoreEndpoints(t *testing.T) {
	f := newFixture(t, testToken)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/api/restore", "").Code)

	f.store.ToggleLike(1)
	w := f.do(http.MethodPost, "/api/backup", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["backup_path"])

	f.store.ToggleLike(1)
	f.store.ToggleLike(2)
	require.Equal(t, []int{2}, f.store.Collection(models.LikedMovies))

	w = f.do(http.MethodPost, "/api/restore", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []int{1}, f.store.Collection(models.LikedMovies))

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/restore", `{"file": "../../etc/passwd"}`).Code)
}
