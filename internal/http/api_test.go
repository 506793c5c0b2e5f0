package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teachassist/internal/auth"
	"teachassist/internal/repository/sqlite"
	"teachassist/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := sqlite.NewUserRepository(db)
	courses := sqlite.NewCourseRepository(db)
	content := sqlite.NewContentRepository(db)

	ctx := context.Background()
	require.NoError(t, users.Init(ctx))
	require.NoError(t, courses.Init(ctx))
	require.NoError(t, content.Init(ctx))

	log := logrus.New()
	log.SetOutput(io.Discard)

	tokens := auth.NewTokenManager([]byte("test-secret"), time.Hour)
	authSvc := service.NewAuthService(users, tokens, 5*time.Second)
	userSvc := service.NewUserService(users, courses)
	courseSvc := service.NewCourseService(courses)
	teacherSvc := service.NewTeacherService(content)

	router := gin.New()
	NewHandler(authSvc, userSvc, courseSvc, teacherSvc, log).RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestRootEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body["msg"], "running")
}

func TestAuthFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodPost, "/auth/register", gin.H{
		"username": "alice", "email": "a@x.com", "password": "Secret123",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	rec, body = doJSON(t, router, http.MethodPost, "/auth/login", gin.H{
		"username": "alice", "email": "a@x.com", "password": "Secret123",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "teacher", body["role"])

	rec, body = doJSON(t, router, http.MethodGet, "/auth/me", nil, bearer(token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "a@x.com", body["email"])

	rec, body = doJSON(t, router, http.MethodPost, "/auth/logout", nil, bearer(token))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "logout success", body["message"])
}

func TestLoginFailureIsGeneric(t *testing.T) {
	router := newTestRouter(t)

	_, _ = doJSON(t, router, http.MethodPost, "/auth/register", gin.H{
		"username": "alice", "email": "a@x.com", "password": "Secret123",
	}, nil)

	wrongPassword, bodyA := doJSON(t, router, http.MethodPost, "/auth/login", gin.H{
		"username": "alice", "email": "a@x.com", "password": "WRONG",
	}, nil)
	unknownEmail, bodyB := doJSON(t, router, http.MethodPost, "/auth/login", gin.H{
		"username": "alice", "email": "ghost@x.com", "password": "Secret123",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, bodyA["error"], bodyB["error"])
}

func TestAvailabilityEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodGet, "/auth/check-username/alice", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["available"])

	_, _ = doJSON(t, router, http.MethodPost, "/auth/register", gin.H{
		"username": "alice", "email": "a@x.com", "password": "Secret123",
	}, nil)

	rec, body = doJSON(t, router, http.MethodGet, "/auth/check-username/alice", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["available"])

	rec, body = doJSON(t, router, http.MethodGet, "/auth/check-email/a@x.com", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["available"])
}

func TestMeRequiresToken(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/auth/me", nil, bearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func adminToken(t *testing.T, router *gin.Engine) string {
	t.Helper()

	rec, _ := doJSON(t, router, http.MethodPost, "/users/", gin.H{
		"username": "root", "email": "root@x.com", "password": "RootPass1", "role": "admin",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, router, http.MethodPost, "/admin/login", gin.H{
		"username": "root", "password": "RootPass1",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAdminLoginRequiresAdminRole(t *testing.T) {
	router := newTestRouter(t)

	_, _ = doJSON(t, router, http.MethodPost, "/auth/register", gin.H{
		"username": "alice", "email": "a@x.com", "password": "Secret123",
	}, nil)

	rec, _ := doJSON(t, router, http.MethodPost, "/admin/login", gin.H{
		"username": "alice", "password": "Secret123",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesAreProtected(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/admin/statistics/dashboard", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// a teacher token is rejected even though it is valid
	_, _ = doJSON(t, router, http.MethodPost, "/auth/register", gin.H{
		"username": "alice", "email": "a@x.com", "password": "Secret123",
	}, nil)
	_, body := doJSON(t, router, http.MethodPost, "/auth/login", gin.H{
		"username": "alice", "email": "a@x.com", "password": "Secret123",
	}, nil)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	rec, _ = doJSON(t, router, http.MethodGet, "/admin/statistics/dashboard", nil, bearer(token))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminUserManagement(t *testing.T) {
	router := newTestRouter(t)
	token := adminToken(t, router)

	rec, created := doJSON(t, router, http.MethodPost, "/admin/user/add", gin.H{
		"username": "bob", "email": "b@x.com", "password": "Secret123", "role": "teacher",
	}, bearer(token))
	require.Equal(t, http.StatusOK, rec.Code)
	userID := int64(created["id"].(float64))
	require.Positive(t, userID)

	rec, fetched := doJSON(t, router, http.MethodGet, "/admin/"+itoa(userID), nil, bearer(token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bob", fetched["username"])

	rec, updated := doJSON(t, router, http.MethodPut, "/admin/user/"+itoa(userID)+"/updateName", gin.H{
		"username": "bobby",
	}, bearer(token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bobby", updated["username"])

	rec, updated = doJSON(t, router, http.MethodPut, "/admin/user/"+itoa(userID)+"/updateEmail", gin.H{
		"email": "bobby@x.com",
	}, bearer(token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bobby@x.com", updated["email"])

	rec, _ = doJSON(t, router, http.MethodDelete, "/admin/delete/"+itoa(userID), nil, bearer(token))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/admin/"+itoa(userID), nil, bearer(token))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminDashboard(t *testing.T) {
	router := newTestRouter(t)
	token := adminToken(t, router)

	_, _ = doJSON(t, router, http.MethodPost, "/auth/register", gin.H{
		"username": "t1", "email": "t1@x.com", "password": "Secret123",
	}, nil)
	_, _ = doJSON(t, router, http.MethodPost, "/courses/", gin.H{
		"title": "Algorithms", "teacher_id": 2,
	}, nil)

	rec, body := doJSON(t, router, http.MethodGet, "/admin/statistics/dashboard", nil, bearer(token))
	require.Equal(t, http.StatusOK, rec.Code)

	userStats := body["userStats"].(map[string]any)
	assert.Equal(t, float64(2), userStats["totalUsers"])
	assert.Equal(t, float64(1), userStats["teacherCount"])
	assert.Equal(t, float64(1), userStats["adminCount"])

	courseStats := body["courseStats"].(map[string]any)
	assert.Equal(t, float64(1), courseStats["totalCourses"])
	assert.Equal(t, float64(1), courseStats["activeCount"])
	assert.Equal(t, float64(0), courseStats["pendingCount"])
}

func TestCourseCRUDOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	rec, teacher := doJSON(t, router, http.MethodPost, "/users/", gin.H{
		"username": "t1", "email": "t1@x.com", "password": "Secret123", "role": "teacher",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	teacherID := int64(teacher["id"].(float64))

	rec, created := doJSON(t, router, http.MethodPost, "/courses/", gin.H{
		"title": "Algorithms", "description": "intro", "teacher_id": teacherID,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	courseID := int64(created["id"].(float64))
	assert.Equal(t, "active", created["status"])

	rec, fetched := doJSON(t, router, http.MethodGet, "/courses/"+itoa(courseID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Algorithms", fetched["title"])

	rec, _ = doJSON(t, router, http.MethodGet, "/courses/teacher/"+itoa(teacherID), nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, updated := doJSON(t, router, http.MethodPut, "/courses/"+itoa(courseID), gin.H{
		"title": "Advanced Algorithms", "status": "inactive",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Advanced Algorithms", updated["title"])
	assert.Equal(t, "inactive", updated["status"])

	rec, _ = doJSON(t, router, http.MethodDelete, "/courses/"+itoa(courseID), nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/courses/"+itoa(courseID), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCourseValidationOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodPost, "/courses/", gin.H{
		"description": "no title", "teacher_id": 7,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/courses/not-a-number", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTeacherContentOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	// empty shape before anything is saved
	rec, body := doJSON(t, router, http.MethodGet, "/teacher/objective/3", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), body["course_id"])
	assert.Equal(t, "", body["course_content"])

	rec, body = doJSON(t, router, http.MethodPost, "/teacher/syllabus/3/generate", gin.H{
		"prompt": "twelve week outline",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body["content"], "twelve week outline")

	rec, body = doJSON(t, router, http.MethodPost, "/teacher/syllabus/3/save", gin.H{
		"content": "final syllabus",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "final syllabus", body["content"])

	rec, body = doJSON(t, router, http.MethodGet, "/teacher/syllabus/3", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "final syllabus", body["content"])

	rec, body = doJSON(t, router, http.MethodPost, "/teacher/objective/3/save", gin.H{
		"course_content": "sorting and graphs", "teaching_target": "analyze complexity",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sorting and graphs", body["course_content"])

	rec, body = doJSON(t, router, http.MethodPost, "/teacher/material/3/generate", gin.H{
		"prompt": "lecture notes",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body["content"], "lecture notes")
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/", nil, nil)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec, _ = doJSON(t, router, http.MethodGet, "/", nil, map[string]string{requestIDHeader: "fixed-id"})
	assert.Equal(t, "fixed-id", rec.Header().Get(requestIDHeader))
}

func TestUsersEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec, created := doJSON(t, router, http.MethodPost, "/users/", gin.H{
		"username": "carol", "email": "c@x.com", "password": "Secret123", "role": "student",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "student", created["role"])

	req := httptest.NewRequest(http.MethodGet, "/users/", nil)
	out := httptest.NewRecorder()
	router.ServeHTTP(out, req)
	require.Equal(t, http.StatusOK, out.Code)

	var users []map[string]any
	require.NoError(t, json.Unmarshal(out.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "carol", users[0]["username"])
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
