package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/collections-backend/internal/domain"
	"github.com/yungbote/collections-backend/internal/domain/tasks"
	"github.com/yungbote/collections-backend/internal/platform/logger"
)

func testConfig(t *testing.T, redisAddr string) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.LogMode = "test"
	cfg.DatabaseURL = fmt.Sprintf("sqlite://file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	cfg.RedisAddr = redisAddr
	cfg.WorkerConcurrency = 1
	cfg.ShutdownTimeout = 5 * time.Second
	return cfg
}

func newTestApp(t *testing.T, redisAddr string) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	a, err := NewWithConfig(logger.Nop(), testConfig(t, redisAddr))
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func seed(t *testing.T, a *App, n int) (src, tgt types.Collection) {
	t.Helper()
	db := a.Clients.DB.DB()
	companies := make([]types.Company, n)
	for i := range companies {
		companies[i].CompanyName = fmt.Sprintf("company-%d", i)
	}
	require.NoError(t, db.CreateInBatches(&companies, 100).Error)

	src = types.Collection{CollectionName: "My List"}
	require.NoError(t, db.Create(&src).Error)
	require.NoError(t, db.Where("collection_name = ?", a.Cfg.LikedCollectionName).First(&tgt).Error)

	rows := make([]types.Membership, 0, n)
	for _, c := range companies {
		rows = append(rows, types.Membership{CompanyID: c.ID, CollectionID: src.ID})
	}
	require.NoError(t, db.CreateInBatches(&rows, 100).Error)
	return src, tgt
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestBulkCopyEndToEnd(t *testing.T) {
	variants := map[string]func(t *testing.T) string{
		"memory": func(*testing.T) string { return "" },
		"redis":  func(t *testing.T) string { return miniredis.RunT(t).Addr() },
	}
	for name, redisAddr := range variants {
		redisAddr := redisAddr
		t.Run(name, func(t *testing.T) {
			a := newTestApp(t, redisAddr(t))
			src, tgt := seed(t, a, 45)
			srv := httptest.NewServer(a.Router)
			defer srv.Close()

			resp, body := postJSON(t, srv.URL+"/user_actions/add-collection-to-collection", map[string]string{
				"source_collection_id": src.ID.String(),
				"target_collection_id": tgt.ID.String(),
			})
			require.Equal(t, http.StatusOK, resp.StatusCode, body)
			assert.Equal(t, "Bulk addition started.", body["message"])
			taskID, _ := body["task_id"].(string)
			require.NotEmpty(t, taskID)

			resp, body = getJSON(t, srv.URL+"/user_actions/task_in_progress")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, taskID, body["task_id"])

			wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/progress/" + taskID
			conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
			require.NoError(t, err)
			defer conn.Close()
			require.Eventually(t, func() bool { return a.Services.Gateway.Connected(taskID) }, 2*time.Second, 10*time.Millisecond)

			// Workers start only once the observer is attached so no event is missed.
			a.Start(context.Background())

			var events []tasks.Event
			_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			for {
				var ev tasks.Event
				if err := conn.ReadJSON(&ev); err != nil {
					break
				}
				events = append(events, ev)
				if ev.Status.Terminal() {
					break
				}
			}
			require.Len(t, events, 6, "5 chunks plus the final event")
			for i := 1; i < len(events); i++ {
				assert.GreaterOrEqual(t, events[i].Progress, events[i-1].Progress)
			}
			final := events[len(events)-1]
			assert.Equal(t, tasks.StatusCompleted, final.Status)
			assert.Equal(t, 1.0, final.Progress)
			assert.Equal(t, "Finished adding My List to Liked Companies", final.Message)

			var count int64
			require.NoError(t, a.Clients.DB.DB().Model(&types.Membership{}).Where("collection_id = ?", tgt.ID).Count(&count).Error)
			assert.EqualValues(t, 45, count)

			resp, body = getJSON(t, srv.URL+"/user_actions/tasks/"+taskID)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "completed", body["status"])
			assert.EqualValues(t, 45, body["completed"])

			resp, body = getJSON(t, srv.URL+"/user_actions/task_in_progress")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Nil(t, body["task_id"])
		})
	}
}

func TestSynchronousActionsOverHTTP(t *testing.T) {
	a := newTestApp(t, "")
	src, _ := seed(t, a, 3)
	srv := httptest.NewServer(a.Router)
	defer srv.Close()

	var ids []int
	require.NoError(t, a.Clients.DB.DB().Model(&types.Company{}).Order("id").Pluck("id", &ids).Error)

	resp, body := postJSON(t, srv.URL+"/user_actions/like-company", map[string]int{"company_id": ids[0]})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	resp, body = postJSON(t, srv.URL+"/user_actions/like-company", map[string]int{"company_id": ids[0]})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Company already liked", body["message"])

	resp, body = postJSON(t, srv.URL+"/user_actions/remove-companies-from-collection", map[string]any{
		"collection_id": src.ID.String(),
		"company_ids":   ids[:2],
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["removed_count"])

	resp, body = postJSON(t, srv.URL+"/user_actions/add-companies-to-collection", map[string]any{
		"collection_id": "nope",
		"company_ids":   ids,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid collection ID format", body["error"].(map[string]any)["message"])

	resp, _ = postJSON(t, srv.URL+"/user_actions/add-collection-to-collection", map[string]string{
		"source_collection_id": uuid.NewString(),
		"target_collection_id": src.ID.String(),
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = getJSON(t, srv.URL+"/healthcheck")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["db"])
	assert.Equal(t, "ok", body["progress_store"])
}

func TestLoadConfigLayers(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	require.NoError(t, writeFile(path, "port: \"9000\"\nbulk_chunk_size: 25\ntask_retention: 30m\nliked_collection_name: Favourites\n"))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("BULK_CHUNK_SIZE", "50")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 50, cfg.BulkChunkSize, "env overrides file")
	assert.Equal(t, 30*time.Minute, cfg.TaskRetention)
	assert.Equal(t, "Favourites", cfg.LikedCollectionName)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 24*time.Hour, cfg.TaskStaleTTL)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("BULK_CHUNK_SIZE", "0")
	_, err := LoadConfig()
	require.Error(t, err)
}
