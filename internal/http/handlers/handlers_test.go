package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/collections-backend/internal/domain/tasks"
	"github.com/yungbote/collections-backend/internal/platform/apierr"
	"github.com/yungbote/collections-backend/internal/platform/logger"
	"github.com/yungbote/collections-backend/internal/services"
)

type fakeCollections struct {
	gotCollectionID string
	gotCompanyIDs   []int
	gotCompanyID    int
	err             error
}

func (f *fakeCollections) AddCompaniesToCollection(_ context.Context, id string, ids []int) (*services.AddCompaniesResult, error) {
	f.gotCollectionID, f.gotCompanyIDs = id, ids
	if f.err != nil {
		return nil, f.err
	}
	return &services.AddCompaniesResult{AddedCount: len(ids), CollectionName: "Prospects", Message: "2 companies added to 'Prospects' collection successfully"}, nil
}

func (f *fakeCollections) RemoveCompaniesFromCollection(_ context.Context, id string, ids []int) (*services.RemoveCompaniesResult, error) {
	f.gotCollectionID, f.gotCompanyIDs = id, ids
	if f.err != nil {
		return nil, f.err
	}
	return &services.RemoveCompaniesResult{RemovedCount: len(ids), CollectionName: "Prospects"}, nil
}

func (f *fakeCollections) LikeCompany(_ context.Context, id int) (*services.LikeResult, error) {
	f.gotCompanyID = id
	if f.err != nil {
		return nil, f.err
	}
	return &services.LikeResult{Message: "Company liked successfully", Success: true}, nil
}

func (f *fakeCollections) UnlikeCompany(_ context.Context, id int) (*services.LikeResult, error) {
	f.gotCompanyID = id
	return &services.LikeResult{Message: "Company not in liked collection", Success: false}, f.err
}

func (f *fakeCollections) AddCollectionToCollection(_ context.Context, src, tgt string) (*services.BulkTaskResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.BulkTaskResult{Message: "Bulk addition started.", TaskID: "task-1"}, nil
}

type fakeTasks struct {
	active string
	rec    *tasks.Progress
	err    error
}

func (f *fakeTasks) TaskInProgress(context.Context) (string, bool, error) {
	return f.active, f.active != "", f.err
}

func (f *fakeTasks) GetTaskProgress(_ context.Context, id string) (*tasks.Progress, error) {
	if f.rec == nil || f.rec.TaskID != id {
		return nil, apierr.NotFound("tasks.get", "Task "+id+" not found")
	}
	return f.rec, nil
}

func (f *fakeTasks) Ping(context.Context) error { return f.err }

func newEngine(coll services.CollectionService, ts services.TaskService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ch := NewCollectionHandler(logger.Nop(), coll)
	th := NewTaskHandler(logger.Nop(), ts)
	ua := r.Group("/user_actions")
	ua.POST("/add-companies-to-collection", ch.AddCompanies)
	ua.POST("/remove-companies-from-collection", ch.RemoveCompanies)
	ua.POST("/like-company", ch.LikeCompany)
	ua.POST("/unlike-company", ch.UnlikeCompany)
	ua.POST("/add-collection-to-collection", ch.AddCollection)
	ua.GET("/task_in_progress", th.TaskInProgress)
	ua.GET("/tasks/:task_id", th.GetTask)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestAddCompaniesHandler(t *testing.T) {
	fc := &fakeCollections{}
	r := newEngine(fc, &fakeTasks{})

	rec := do(r, http.MethodPost, "/user_actions/add-companies-to-collection", `{"company_ids":[1,2],"collection_id":"abc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 2, body["added_count"])
	assert.Equal(t, "Prospects", body["collection_name"])
	assert.Equal(t, "abc", fc.gotCollectionID)
	assert.Equal(t, []int{1, 2}, fc.gotCompanyIDs)
}

func TestHandlerMalformedBody(t *testing.T) {
	r := newEngine(&fakeCollections{}, &fakeTasks{})
	rec := do(r, http.MethodPost, "/user_actions/like-company", `{"company_id":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(r, http.MethodPost, "/user_actions/add-collection-to-collection", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
		msg    string
	}{
		{apierr.BadRequest("op", "Invalid collection ID format"), http.StatusBadRequest, "bad_request", "Invalid collection ID format"},
		{apierr.NotFound("op", "Collection x not found"), http.StatusNotFound, "not_found", "Collection x not found"},
		{apierr.Conflict("op", "busy"), http.StatusConflict, "conflict", "busy"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "internal", "internal server error"},
	}
	for _, tc := range cases {
		r := newEngine(&fakeCollections{err: tc.err}, &fakeTasks{})
		rec := do(r, http.MethodPost, "/user_actions/remove-companies-from-collection", `{"company_ids":[1],"collection_id":"abc"}`)
		assert.Equal(t, tc.status, rec.Code)
		envelope := decode(t, rec)["error"].(map[string]any)
		assert.Equal(t, tc.code, envelope["code"])
		assert.Equal(t, tc.msg, envelope["message"])
	}
}

func TestLikeAndAddCollectionHandlers(t *testing.T) {
	fc := &fakeCollections{}
	r := newEngine(fc, &fakeTasks{})

	rec := do(r, http.MethodPost, "/user_actions/like-company", `{"company_id":7}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])
	assert.Equal(t, 7, fc.gotCompanyID)

	rec = do(r, http.MethodPost, "/user_actions/unlike-company", `{"company_id":7}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])

	rec = do(r, http.MethodPost, "/user_actions/add-collection-to-collection", `{"source_collection_id":"a","target_collection_id":"b"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Bulk addition started.", body["message"])
	assert.Equal(t, "task-1", body["task_id"])
}

func TestTaskInProgressHandler(t *testing.T) {
	rec := do(newEngine(&fakeCollections{}, &fakeTasks{}), http.MethodGet, "/user_actions/task_in_progress", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"task_id":null}`, rec.Body.String())

	rec = do(newEngine(&fakeCollections{}, &fakeTasks{active: "t1"}), http.MethodGet, "/user_actions/task_in_progress", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"task_id":"t1"}`, rec.Body.String())
}

func TestGetTaskHandler(t *testing.T) {
	ft := &fakeTasks{rec: &tasks.Progress{TaskID: "t1", Total: 4, Completed: 1, Status: tasks.StatusInProgress, Message: "Adding A to B"}}
	r := newEngine(&fakeCollections{}, ft)

	rec := do(r, http.MethodGet, "/user_actions/tasks/t1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, 0.25, body["progress"])
	assert.Equal(t, "in_progress", body["status"])

	rec = do(r, http.MethodGet, "/user_actions/tasks/other", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("dial tcp: refused") })

	r := gin.New()
	r.GET("/healthcheck", NewHealthHandler(map[string]Pinger{"db": ok, "progress_store": ok}).HealthCheck)
	rec := do(r, http.MethodGet, "/healthcheck", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])

	r = gin.New()
	r.GET("/healthcheck", NewHealthHandler(map[string]Pinger{"db": ok, "progress_store": down}).HealthCheck)
	rec = do(r, http.MethodGet, "/healthcheck", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "dial tcp: refused", body["progress_store"])
}
