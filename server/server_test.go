package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lintangjaya/go-storefront/audit"
	"github.com/lintangjaya/go-storefront/auth"
	"github.com/lintangjaya/go-storefront/captcha"
	"github.com/lintangjaya/go-storefront/internal/config"
	"github.com/lintangjaya/go-storefront/products"
	fakeproductrepo "github.com/lintangjaya/go-storefront/products/repofake"
	"github.com/lintangjaya/go-storefront/server"
	"github.com/lintangjaya/go-storefront/sessions"
	"github.com/lintangjaya/go-storefront/users"
	fakeuserrepo "github.com/lintangjaya/go-storefront/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	testUserEmail    = "john.doe@example.com"
	testUserPassword = "Password1"
	testAdminEmail   = "admin@example.com"
)

type recordingSink struct {
	events []audit.Event
}

func (s *recordingSink) Write(event audit.Event) error {
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) Count() (int64, error) {
	return int64(len(s.events)), nil
}

// testFixture wires the whole stack against in-memory backends and exposes it
// through a real HTTP server with a cookie-keeping client.
type testFixture struct {
	userRepo    *fakeuserrepo.FakeUserRepo
	productRepo *fakeproductrepo.FakeProductRepo
	sessionRepo *sessions.InMemoryRepo
	sink        *recordingSink
	httpServer  *httptest.Server
	client      *http.Client
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	userRepo := fakeuserrepo.NewFakeUserRepo()
	productRepo := fakeproductrepo.NewFakeProductRepo()
	sessionRepo := sessions.NewInMemoryRepo()
	sink := &recordingSink{}
	auditLogger := audit.NewLogger(sink)
	generator := captcha.NewGenerator()

	service, err := auth.NewService(userRepo, auditLogger, auth.NewSessionChallengeVerifier(generator))
	require.NoError(t, err)

	srv, err := server.New(config.New(), server.Deps{
		Auth:        service,
		Users:       userRepo,
		Products:    productRepo,
		Sessions:    sessionRepo,
		Audit:       auditLogger,
		Captcha:     generator,
		AuditCounts: sink,
	})
	require.NoError(t, err)

	httpServer := httptest.NewServer(srv)
	t.Cleanup(httpServer.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testFixture{
		userRepo:    userRepo,
		productRepo: productRepo,
		sessionRepo: sessionRepo,
		sink:        sink,
		httpServer:  httpServer,
		client:      &http.Client{Jar: jar},
	}
}

func (f *testFixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := f.client.Get(f.httpServer.URL + path)
	require.NoError(t, err)
	return resp
}

func (f *testFixture) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	return f.sendJSON(t, http.MethodPost, path, body)
}

func (f *testFixture) sendJSON(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(method, f.httpServer.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// fetchCaptcha requests a challenge and reads its answer straight out of the
// session store, the way a browser user reads it off the image.
func (f *testFixture) fetchCaptcha(t *testing.T) string {
	t.Helper()

	resp := f.get(t, "/api/captcha")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	_, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	serverURL, err := url.Parse(f.httpServer.URL)
	require.NoError(t, err)
	var sessionID string
	for _, c := range f.client.Jar.Cookies(serverURL) {
		if c.Name == "session_id" {
			sessionID = c.Value
		}
	}
	require.NotEmpty(t, sessionID, "captcha response must set the session cookie")

	sess, err := f.sessionRepo.Get(context.Background(), sessionID)
	require.NoError(t, err)
	require.NotNil(t, sess.Captcha)
	return sess.Captcha.Text
}

func (f *testFixture) createUser(t *testing.T, email string, role users.RoleType) *users.User {
	t.Helper()
	hash, err := users.HashPassword(testUserPassword)
	require.NoError(t, err)
	user := &users.User{
		ID:           uuid.New().String(),
		Name:         "John Doe",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, f.userRepo.Create(user))
	return user
}

func (f *testFixture) login(t *testing.T, email string) {
	t.Helper()
	answer := f.fetchCaptcha(t)
	resp := f.postJSON(t, "/api/login", map[string]any{
		"email":    email,
		"password": testUserPassword,
		"captcha":  answer,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestRegisterLoginLogoutFlow(t *testing.T) {
	f := setupTestFixture(t)

	// Register behind a solved challenge.
	answer := f.fetchCaptcha(t)
	resp := f.postJSON(t, "/api/register", map[string]any{
		"name":            "John Doe",
		"email":           testUserEmail,
		"password":        testUserPassword,
		"confirmPassword": testUserPassword,
		"captcha":         answer,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, "Registration successful", body["message"])

	// Auto-login: status reflects the registered identity.
	status := decodeBody(t, f.get(t, "/api/auth/status"))
	require.Equal(t, true, status["authenticated"])
	user := status["user"].(map[string]any)
	require.Equal(t, testUserEmail, user["email"])

	// Profile is reachable while signed in.
	profile := f.get(t, "/api/profile")
	require.Equal(t, http.StatusOK, profile.StatusCode)
	profile.Body.Close()

	// Logout drops the identity.
	logout := f.postJSON(t, "/api/logout", map[string]any{})
	require.Equal(t, http.StatusOK, logout.StatusCode)
	logout.Body.Close()

	status = decodeBody(t, f.get(t, "/api/auth/status"))
	require.Equal(t, false, status["authenticated"])

	// Login again with a fresh challenge.
	f.login(t, testUserEmail)
	status = decodeBody(t, f.get(t, "/api/auth/status"))
	require.Equal(t, true, status["authenticated"])
}

func TestLoginWrongCaptcha(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t, testUserEmail, users.RoleCustomer)

	f.fetchCaptcha(t)
	resp := f.postJSON(t, "/api/login", map[string]any{
		"email":    testUserEmail,
		"password": testUserPassword,
		"captcha":  "WRONG1",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Invalid or expired captcha", decodeBody(t, resp)["error"])

	// The failed attempt consumed the challenge: the right password with the
	// originally correct answer is still rejected until a new challenge.
	resp = f.postJSON(t, "/api/login", map[string]any{
		"email":    testUserEmail,
		"password": testUserPassword,
		"captcha":  "WRONG1",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t, testUserEmail, users.RoleCustomer)

	answer := f.fetchCaptcha(t)
	resp := f.postJSON(t, "/api/login", map[string]any{
		"email":    testUserEmail,
		"password": "WrongPass1",
		"captcha":  answer,
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Invalid credentials", decodeBody(t, resp)["error"])
}

func TestRegisterValidationDetails(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.postJSON(t, "/api/register", map[string]any{
		"name":            "J",
		"email":           "bad",
		"password":        "weak",
		"confirmPassword": "other",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, "Validation failed", body["error"])
	require.NotEmpty(t, body["details"])
}

func TestProfileRequiresAuth(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.get(t, "/api/profile")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Please login to access this resource", decodeBody(t, resp)["error"])
}

func TestAdminGates(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t, testUserEmail, users.RoleCustomer)
	f.createUser(t, testAdminEmail, users.RoleAdmin)

	// Unauthenticated: 401 before any role check.
	resp := f.get(t, "/api/admin/dashboard")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// A customer is authenticated but not authorized.
	f.login(t, testUserEmail)
	resp = f.get(t, "/api/admin/dashboard")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "Administrator access required", decodeBody(t, resp)["error"])

	logout := f.postJSON(t, "/api/logout", map[string]any{})
	logout.Body.Close()

	// An admin gets the stats.
	f.login(t, testAdminEmail)
	resp = f.get(t, "/api/admin/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decodeBody(t, resp)["stats"].(map[string]any)
	require.EqualValues(t, 2, stats["totalUsers"])
	require.EqualValues(t, 3, stats["totalAuditEvents"])
}

func TestPublicCatalogue(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.productRepo.Create(&products.Product{
		ID:          "prod-1",
		Name:        "Batik Shirt",
		Description: "Hand-dyed batik shirt",
		Price:       45.50,
		Image:       "https://cdn.example.com/batik.jpg",
		Stock:       12,
		Category:    "Clothing",
		CreatedAt:   time.Now(),
	}))

	resp := f.get(t, "/api/products")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	require.Len(t, list, 1)
	require.Equal(t, "Batik Shirt", list[0]["name"])

	resp = f.get(t, "/api/products/prod-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Batik Shirt", decodeBody(t, resp)["name"])

	resp = f.get(t, "/api/products/missing")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Product not found", decodeBody(t, resp)["error"])
}

func TestAdminProductCRUD(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t, testAdminEmail, users.RoleAdmin)
	f.login(t, testAdminEmail)

	// Create
	resp := f.postJSON(t, "/api/admin/products", map[string]any{
		"name":        "Jasmine Tea",
		"description": "Loose leaf",
		"price":       8.5,
		"image":       "https://cdn.example.com/tea.jpg",
		"stock":       40,
		"category":    "Grocery",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)["product"].(map[string]any)
	id := created["id"].(string)
	require.NotEmpty(t, id)

	// Invalid create reports field errors.
	resp = f.postJSON(t, "/api/admin/products", map[string]any{"price": -1})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Paginated listing with search.
	resp = f.get(t, "/api/admin/products?page=1&limit=5&search=tea")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listing := decodeBody(t, resp)
	require.Len(t, listing["products"], 1)
	pagination := listing["pagination"].(map[string]any)
	require.EqualValues(t, 1, pagination["total"])

	// Update
	resp = f.sendJSON(t, http.MethodPut, "/api/admin/products/"+id, map[string]any{
		"name":        "Jasmine Tea",
		"description": "Loose leaf, 100g",
		"price":       9.0,
		"image":       "https://cdn.example.com/tea.jpg",
		"stock":       35,
		"category":    "Grocery",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	got, err := f.productRepo.GetByID(id)
	require.NoError(t, err)
	require.Equal(t, "Loose leaf, 100g", got.Description)

	// Delete
	req, err := http.NewRequest(http.MethodDelete, f.httpServer.URL+"/api/admin/products/"+id, nil)
	require.NoError(t, err)
	delResp, err := f.client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, delResp.StatusCode)
	delResp.Body.Close()

	_, err = f.productRepo.GetByID(id)
	require.ErrorIs(t, err, products.ErrNotFound)

	// Updating a deleted product is a 404.
	resp = f.sendJSON(t, http.MethodPut, "/api/admin/products/"+id, map[string]any{
		"name":        "Jasmine Tea",
		"description": "Loose leaf",
		"price":       9.0,
		"image":       "https://cdn.example.com/tea.jpg",
		"stock":       35,
		"category":    "Grocery",
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminUsersListing(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t, testAdminEmail, users.RoleAdmin)
	for i := 0; i < 3; i++ {
		f.createUser(t, fmt.Sprintf("customer%d@example.com", i), users.RoleCustomer)
	}

	// Admin-only, like the rest of the panel.
	resp := f.get(t, "/api/admin/users")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	f.login(t, testAdminEmail)

	resp = f.get(t, "/api/admin/users?page=1&limit=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.NotContains(t, strings.ToLower(string(raw)), "password",
		"user listing must not leak credential material")

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	require.Len(t, body["users"], 2)
	pagination := body["pagination"].(map[string]any)
	require.EqualValues(t, 4, pagination["total"])
	require.EqualValues(t, 2, pagination["pages"])

	page2 := decodeBody(t, f.get(t, "/api/admin/users?page=2&limit=2"))
	require.Len(t, page2["users"], 2)

	// Out-of-range paging parameters fall back to defaults.
	fallback := decodeBody(t, f.get(t, "/api/admin/users?page=0&limit=500"))
	require.Len(t, fallback["users"], 4)
}

func TestAuditTrail(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t, testUserEmail, users.RoleCustomer)

	f.login(t, testUserEmail)
	logout := f.postJSON(t, "/api/logout", map[string]any{})
	logout.Body.Close()

	var actions []audit.Action
	for _, e := range f.sink.events {
		actions = append(actions, e.Action)
	}
	require.Equal(t, []audit.Action{audit.ActionLogin, audit.ActionLogout}, actions)
	require.NotEmpty(t, f.sink.events[0].IPAddress)
	require.Equal(t, testUserEmail, f.sink.events[0].UserEmail)
}

func TestCorsPreflight(t *testing.T) {
	f := setupTestFixture(t)

	req, err := http.NewRequest(http.MethodOptions, f.httpServer.URL+"/api/login", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := f.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestCorsDisallowedOrigin(t *testing.T) {
	f := setupTestFixture(t)

	req, err := http.NewRequest(http.MethodGet, f.httpServer.URL+"/api/products", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://evil.example.com")

	resp, err := f.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
