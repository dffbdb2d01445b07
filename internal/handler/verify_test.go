package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/borrzu/verify-service/internal/config"
	"github.com/borrzu/verify-service/internal/domain/apilog"
	"github.com/borrzu/verify-service/internal/domain/secretkey"
	"github.com/borrzu/verify-service/internal/domain/user"
	"github.com/borrzu/verify-service/internal/handler/middleware"
	"github.com/borrzu/verify-service/internal/service"
	"github.com/borrzu/verify-service/internal/tasks"
)

type stubUserRepo struct {
	byEmail    map[string]*user.User
	byUsername map[string]*user.User
	total      int64
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	if u, ok := r.byEmail[strings.ToLower(email)]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*user.User, error) {
	if u, ok := r.byUsername[strings.ToLower(username)]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	return r.total, nil
}

type stubKeyRepo struct {
	active int64
}

func (r *stubKeyRepo) Upsert(_ context.Context, _ *secretkey.SecretKey) error { return nil }
func (r *stubKeyRepo) FindByUserID(_ context.Context, _ int64) (*secretkey.SecretKey, error) {
	return nil, secretkey.ErrNotFound
}
func (r *stubKeyRepo) FindByValue(_ context.Context, _ string) (*secretkey.SecretKey, error) {
	return nil, secretkey.ErrNotFound
}
func (r *stubKeyRepo) Delete(_ context.Context, _ int64) error { return nil }
func (r *stubKeyRepo) CountActive(_ context.Context) (int64, error) {
	return r.active, nil
}

type stubPurchaseRepo struct {
	purchased map[int64]map[int64]bool
}

func (r *stubPurchaseRepo) HasPurchased(_ context.Context, userID, productID int64) (bool, error) {
	return r.purchased[userID][productID], nil
}

type stubLogRepo struct{}

func (r *stubLogRepo) Insert(_ context.Context, _ *apilog.Entry) error { return nil }
func (r *stubLogRepo) List(_ context.Context, _ apilog.Filter, _, _ int) ([]*apilog.Entry, int64, error) {
	return nil, 0, nil
}

type capturingEnqueuer struct {
	tasks []*asynq.Task
}

func (e *capturingEnqueuer) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func (e *capturingEnqueuer) lastPayload(t *testing.T) tasks.RecordAPILogPayload {
	t.Helper()
	require.NotEmpty(t, e.tasks, "expected an audit task to be enqueued")
	var payload tasks.RecordAPILogPayload
	require.NoError(t, json.Unmarshal(e.tasks[len(e.tasks)-1].Payload(), &payload))
	return payload
}

type verifyFixture struct {
	router   *gin.Engine
	enqueuer *capturingEnqueuer
}

func newVerifyFixture(t *testing.T, commerceEnabled bool, users *stubUserRepo, keys *stubKeyRepo, purchases *stubPurchaseRepo) *verifyFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	verification := service.NewVerificationService(
		users,
		keys,
		purchases,
		config.CommerceConfig{Enabled: commerceEnabled},
		config.SiteConfig{URL: "https://example.test", Name: "Example", Version: "1.2"},
		logger,
	)

	enqueuer := &capturingEnqueuer{}
	audit := service.NewAPILogService(enqueuer, &stubLogRepo{}, logger)

	h := NewVerifyHandler(verification, audit, logger)

	router := gin.New()
	router.Use(middleware.ErrorHandlerMiddleware(logger))
	router.GET("/borrzu/v1/verify", h.Status)
	router.POST("/borrzu/v1/verify-user", h.VerifyUser)
	router.POST("/borrzu/v1/verify-purchase", h.VerifyPurchase)

	return &verifyFixture{router: router, enqueuer: enqueuer}
}

func (f *verifyFixture) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for name, value := range headers {
		req.Header.Set(name, value)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func sampleUser() *user.User {
	return &user.User{
		ID:           7,
		Email:        "buyer@example.test",
		Username:     "buyer",
		DisplayName:  "Buyer",
		RegisteredAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestStatusReportsActiveInstallation(t *testing.T) {
	f := newVerifyFixture(t, true,
		&stubUserRepo{total: 12},
		&stubKeyRepo{active: 3},
		&stubPurchaseRepo{},
	)

	w := f.do("GET", "/borrzu/v1/verify", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["active"])
	assert.Equal(t, true, body["has_active_keys"])
	assert.Equal(t, true, body["commerce_active"])
	assert.EqualValues(t, 12, body["total_users"])
	assert.Equal(t, "https://example.test", body["site_url"])
}

func TestStatusSignalsMissingCommerceBackend(t *testing.T) {
	f := newVerifyFixture(t, false,
		&stubUserRepo{total: 2},
		&stubKeyRepo{},
		&stubPurchaseRepo{},
	)

	w := f.do("GET", "/borrzu/v1/verify", "", nil)

	require.Equal(t, http.StatusPreconditionRequired, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["commerce_active"])
	assert.Equal(t, false, body["has_active_keys"])
	assert.NotEmpty(t, body["message"])

	payload := f.enqueuer.lastPayload(t)
	assert.Equal(t, "/borrzu/v1/verify", payload.Endpoint)
	assert.Equal(t, http.StatusPreconditionRequired, payload.StatusCode)
}

func TestVerifyUserFindsByEmail(t *testing.T) {
	u := sampleUser()
	f := newVerifyFixture(t, true,
		&stubUserRepo{byEmail: map[string]*user.User{u.Email: u}},
		&stubKeyRepo{},
		&stubPurchaseRepo{},
	)

	w := f.do("POST", "/borrzu/v1/verify-user", `{"email":"buyer@example.test"}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["exists"])
	userData, ok := body["user_data"].(map[string]any)
	require.True(t, ok, "expected user_data object")
	assert.EqualValues(t, 7, userData["id"])
	assert.Equal(t, "buyer", userData["username"])
}

func TestVerifyUserFallsBackToUsername(t *testing.T) {
	u := sampleUser()
	f := newVerifyFixture(t, true,
		&stubUserRepo{byUsername: map[string]*user.User{u.Username: u}},
		&stubKeyRepo{},
		&stubPurchaseRepo{},
	)

	w := f.do("POST", "/borrzu/v1/verify-user", `{"email":"other@example.test","username":"buyer"}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["exists"])
}

func TestVerifyUserReportsMissingUser(t *testing.T) {
	f := newVerifyFixture(t, true, &stubUserRepo{}, &stubKeyRepo{}, &stubPurchaseRepo{})

	w := f.do("POST", "/borrzu/v1/verify-user", `{"email":"nobody@example.test"}`, nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["exists"])
	assert.Nil(t, body["user_data"])
}

func TestVerifyUserRejectsInvalidBody(t *testing.T) {
	f := newVerifyFixture(t, true, &stubUserRepo{}, &stubKeyRepo{}, &stubPurchaseRepo{})

	w := f.do("POST", "/borrzu/v1/verify-user", `{"email":"not-an-email"}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	payload := f.enqueuer.lastPayload(t)
	assert.Equal(t, http.StatusBadRequest, payload.StatusCode)
}

func TestVerifyPurchaseConfirmsPurchase(t *testing.T) {
	u := sampleUser()
	f := newVerifyFixture(t, true,
		&stubUserRepo{byEmail: map[string]*user.User{u.Email: u}},
		&stubKeyRepo{},
		&stubPurchaseRepo{purchased: map[int64]map[int64]bool{7: {42: true}}},
	)

	w := f.do("POST", "/borrzu/v1/verify-purchase", `{"email":"buyer@example.test","product_id":42}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["has_purchased"])
	assert.EqualValues(t, 7, body["user_id"])
	assert.EqualValues(t, 42, body["product_id"])
}

func TestVerifyPurchaseReportsNoPurchase(t *testing.T) {
	u := sampleUser()
	f := newVerifyFixture(t, true,
		&stubUserRepo{byEmail: map[string]*user.User{u.Email: u}},
		&stubKeyRepo{},
		&stubPurchaseRepo{},
	)

	w := f.do("POST", "/borrzu/v1/verify-purchase", `{"email":"buyer@example.test","product_id":42}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["has_purchased"])
}

func TestVerifyPurchaseReportsMissingUser(t *testing.T) {
	f := newVerifyFixture(t, true, &stubUserRepo{}, &stubKeyRepo{}, &stubPurchaseRepo{})

	w := f.do("POST", "/borrzu/v1/verify-purchase", `{"email":"nobody@example.test","product_id":42}`, nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	_, present := body["has_purchased"]
	assert.False(t, present, "has_purchased must be omitted when the user is unknown")
}

func TestVerifyPurchaseFailsWithoutCommerceBackend(t *testing.T) {
	u := sampleUser()
	f := newVerifyFixture(t, false,
		&stubUserRepo{byEmail: map[string]*user.User{u.Email: u}},
		&stubKeyRepo{},
		&stubPurchaseRepo{},
	)

	w := f.do("POST", "/borrzu/v1/verify-purchase", `{"email":"buyer@example.test","product_id":42}`, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuditEntriesMaskCredentialHeaders(t *testing.T) {
	u := sampleUser()
	f := newVerifyFixture(t, true,
		&stubUserRepo{byEmail: map[string]*user.User{u.Email: u}},
		&stubKeyRepo{},
		&stubPurchaseRepo{},
	)

	f.do("POST", "/borrzu/v1/verify-user", `{"email":"buyer@example.test"}`, map[string]string{
		middleware.SecretKeyHeader: "supersecretvalue",
		"Authorization":            "Bearer supersecretvalue",
	})

	payload := f.enqueuer.lastPayload(t)
	assert.NotContains(t, payload.Headers, "supersecretvalue")
	assert.Contains(t, payload.Headers, "[redacted]")
}
