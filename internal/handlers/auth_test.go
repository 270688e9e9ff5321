package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/sethu45/social-network/internal/models"
	"github.com/sethu45/social-network/internal/services"
	"github.com/sethu45/social-network/internal/testutil"
)

type mockUserService struct {
	services.UserServiceInterface
	createFunc     func(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	getByIDFunc    func(ctx context.Context, id uuid.UUID) (*models.User, error)
	getByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	searchFunc     func(ctx context.Context, query string, page int) ([]models.UserSummary, int, error)
}

func (m *mockUserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	return m.createFunc(ctx, params)
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.getByEmailFunc(ctx, email)
}

func (m *mockUserService) Search(ctx context.Context, query string, page int) ([]models.UserSummary, int, error) {
	return m.searchFunc(ctx, query, page)
}

type mockAuthService struct {
	services.AuthServiceInterface
	hashPasswordFunc  func(password string) (string, error)
	verifyFunc        func(hash, password string) bool
	createSessionFunc func(ctx context.Context, userID uuid.UUID) (string, error)
	deleteSessionFunc func(ctx context.Context, token string) error
}

func (m *mockAuthService) HashPassword(password string) (string, error) {
	return m.hashPasswordFunc(password)
}

func (m *mockAuthService) VerifyPassword(hash, password string) bool {
	return m.verifyFunc(hash, password)
}

func (m *mockAuthService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	return m.createSessionFunc(ctx, userID)
}

func (m *mockAuthService) DeleteSession(ctx context.Context, token string) error {
	return m.deleteSessionFunc(ctx, token)
}

func authedRequest(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(SetUserInContext(req.Context(), user))
}

func TestSignup_InvalidBody(t *testing.T) {
	h := NewAuthHandler(nil, nil, false)

	req := testutil.NewTestRequest(http.MethodPost, "/api/auth/signup", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	h.Signup(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusBadRequest)
	testutil.AssertJSONContains(t, rr.Body.Bytes(), "error", "Invalid request body")
}

func TestSignup_MissingFields(t *testing.T) {
	h := NewAuthHandler(nil, nil, false)

	req := testutil.NewTestRequestWithJSON(t, http.MethodPost, "/api/auth/signup", SignupRequest{
		Username: "alice",
	})
	rr := httptest.NewRecorder()
	h.Signup(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusBadRequest)
}

func TestSignup_PasswordMismatch(t *testing.T) {
	h := NewAuthHandler(nil, nil, false)

	req := testutil.NewTestRequestWithJSON(t, http.MethodPost, "/api/auth/signup", SignupRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "password123",
		Password2: "password456",
	})
	rr := httptest.NewRecorder()
	h.Signup(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusBadRequest)
	testutil.AssertJSONContains(t, rr.Body.Bytes(), "error", "Password fields didn't match")
}

func TestSignup_ShortPassword(t *testing.T) {
	h := NewAuthHandler(nil, nil, false)

	req := testutil.NewTestRequestWithJSON(t, http.MethodPost, "/api/auth/signup", SignupRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "short",
		Password2: "short",
	})
	rr := httptest.NewRecorder()
	h.Signup(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusBadRequest)
}

func TestSignup_EmailAlreadyExists(t *testing.T) {
	userSvc := &mockUserService{
		createFunc: func(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
			return nil, services.ErrEmailAlreadyExists
		},
	}
	authSvc := &mockAuthService{
		hashPasswordFunc: func(password string) (string, error) { return "hashed", nil },
	}
	h := NewAuthHandler(userSvc, authSvc, false)

	req := testutil.NewTestRequestWithJSON(t, http.MethodPost, "/api/auth/signup", SignupRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "password123",
		Password2: "password123",
	})
	rr := httptest.NewRecorder()
	h.Signup(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusBadRequest)
	testutil.AssertJSONContains(t, rr.Body.Bytes(), "error", "Email already exists")
}

func TestSignup_Success(t *testing.T) {
	userID := testutil.RandomUUID()
	userSvc := &mockUserService{
		createFunc: func(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
			if params.PasswordHash != "hashed" {
				t.Fatalf("expected hashed password to reach the service, got %q", params.PasswordHash)
			}
			return &models.User{ID: userID, Email: params.Email, Username: params.Username}, nil
		},
	}
	authSvc := &mockAuthService{
		hashPasswordFunc: func(password string) (string, error) { return "hashed", nil },
	}
	h := NewAuthHandler(userSvc, authSvc, false)

	req := testutil.NewTestRequestWithJSON(t, http.MethodPost, "/api/auth/signup", SignupRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "password123",
		Password2: "password123",
	})
	rr := httptest.NewRecorder()
	h.Signup(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusCreated)
	testutil.AssertJSONContains(t, rr.Body.Bytes(), "username", "alice")
	body := testutil.ParseJSONResponse(t, rr.Body.Bytes())
	if _, ok := body["password_hash"]; ok {
		t.Fatal("password hash must not appear in the response")
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	userSvc := &mockUserService{
		getByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return nil, services.ErrUserNotFound
		},
	}
	h := NewAuthHandler(userSvc, nil, false)

	req := testutil.NewTestRequestWithJSON(t, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    "ghost@example.com",
		Password: "password123",
	})
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusUnauthorized)
	testutil.AssertJSONContains(t, rr.Body.Bytes(), "error", "Invalid credentials")
}

func TestLogin_WrongPassword(t *testing.T) {
	userSvc := &mockUserService{
		getByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: testutil.RandomUUID(), Email: email, PasswordHash: "hash"}, nil
		},
	}
	authSvc := &mockAuthService{
		verifyFunc: func(hash, password string) bool { return false },
	}
	h := NewAuthHandler(userSvc, authSvc, false)

	req := testutil.NewTestRequestWithJSON(t, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusUnauthorized)
	testutil.AssertJSONContains(t, rr.Body.Bytes(), "error", "Invalid credentials")
}

func TestLogin_Success(t *testing.T) {
	userID := testutil.RandomUUID()
	userSvc := &mockUserService{
		getByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: userID, Email: email, Username: "alice", PasswordHash: "hash"}, nil
		},
	}
	authSvc := &mockAuthService{
		verifyFunc: func(hash, password string) bool { return true },
		createSessionFunc: func(ctx context.Context, id uuid.UUID) (string, error) {
			if id != userID {
				t.Fatalf("expected session for %s, got %s", userID, id)
			}
			return "session-token", nil
		},
	}
	h := NewAuthHandler(userSvc, authSvc, false)

	req := testutil.NewTestRequestWithJSON(t, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr.Body.Bytes(), "token", "session-token")

	cookies := rr.Result().Cookies()
	var found bool
	for _, c := range cookies {
		if c.Name == sessionCookieName && c.Value == "session-token" {
			found = true
			if !c.HttpOnly {
				t.Fatal("session cookie must be http-only")
			}
		}
	}
	if !found {
		t.Fatal("expected session cookie to be set")
	}
}

func TestLogout_NoSession(t *testing.T) {
	h := NewAuthHandler(nil, nil, false)

	req := testutil.NewTestRequest(http.MethodPost, "/api/auth/logout", nil)
	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusUnauthorized)
}

func TestLogout_Success(t *testing.T) {
	var deleted string
	authSvc := &mockAuthService{
		deleteSessionFunc: func(ctx context.Context, token string) error {
			deleted = token
			return nil
		},
	}
	h := NewAuthHandler(nil, authSvc, false)

	req := testutil.NewTestRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "session-token"})
	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr.Body.Bytes(), "message", "Logged out successfully")
	if deleted != "session-token" {
		t.Fatalf("expected session-token deleted, got %q", deleted)
	}

	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName && c.MaxAge >= 0 {
			t.Fatal("expected session cookie to be expired")
		}
	}
}

func TestLogout_BearerToken(t *testing.T) {
	var deleted string
	authSvc := &mockAuthService{
		deleteSessionFunc: func(ctx context.Context, token string) error {
			deleted = token
			return nil
		},
	}
	h := NewAuthHandler(nil, authSvc, false)

	req := testutil.NewTestRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer bearer-token")
	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusOK)
	if deleted != "bearer-token" {
		t.Fatalf("expected bearer-token deleted, got %q", deleted)
	}
}

func TestMe_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(nil, nil, false)

	req := testutil.NewTestRequest(http.MethodGet, "/api/auth/me", nil)
	rr := httptest.NewRecorder()
	h.Me(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusUnauthorized)
}

func TestMe_Success(t *testing.T) {
	h := NewAuthHandler(nil, nil, false)

	user := &models.User{ID: testutil.RandomUUID(), Username: "alice", Email: "alice@example.com"}
	req := authedRequest(testutil.NewTestRequest(http.MethodGet, "/api/auth/me", nil), user)
	rr := httptest.NewRecorder()
	h.Me(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr.Body.Bytes(), "username", "alice")
}
