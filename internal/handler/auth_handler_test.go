package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/SrebrinSharbanov/ControlCards/internal/entity"
	"github.com/SrebrinSharbanov/ControlCards/internal/repository"
	"github.com/SrebrinSharbanov/ControlCards/internal/service"
	"github.com/SrebrinSharbanov/ControlCards/internal/testutil"
	"go.uber.org/zap"
)

func TestLoginAndMe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := service.NewServices(repos, zap.NewNop(), testutil.JWTSecret, time.Hour, nil, nil, time.Minute)
	handlers := NewHandlers(svc)

	router := testutil.SetupRouter()
	router.POST("/api/v1/auth/login", handlers.Auth.Login)
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/auth/me", handlers.Auth.Me)

	workshop := testutil.SeedWorkshop(t, db, "Цех Механика")
	testutil.SeedUser(t, db, "worker1", entity.RoleWorker, workshop.ID)

	// Seed password for all test users is secret123.
	w := testutil.DoRequest(router, "POST", "/api/v1/auth/login", map[string]interface{}{
		"username": "worker1",
		"password": "secret123",
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	tokenStr, _ := data["token"].(string)
	if tokenStr == "" {
		t.Fatal("login must return a token")
	}
	user := data["user"].(map[string]interface{})
	if user["username"] != "worker1" {
		t.Errorf("unexpected user payload: %v", user)
	}
	if _, leaked := user["password"]; leaked {
		t.Error("password hash must never be serialized")
	}

	// Token works against an authenticated endpoint.
	w = testutil.DoRequest(router, "GET", "/api/v1/auth/me", nil, tokenStr)
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	me := testutil.ParseResponse(w)["data"].(map[string]interface{})
	ids := me["workshop_ids"].([]interface{})
	if len(ids) != 1 || ids[0] != workshop.ID {
		t.Errorf("me must include workshop assignments, got %v", me["workshop_ids"])
	}

	// Wrong password and unknown user both answer 401.
	w = testutil.DoRequest(router, "POST", "/api/v1/auth/login", map[string]interface{}{
		"username": "worker1",
		"password": "wrong",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", w.Code)
	}
	w = testutil.DoRequest(router, "POST", "/api/v1/auth/login", map[string]interface{}{
		"username": "ghost",
		"password": "secret123",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown user: expected 401, got %d", w.Code)
	}
}

func TestUpdateProfileEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := service.NewServices(repos, zap.NewNop(), testutil.JWTSecret, time.Hour, nil, nil, time.Minute)
	handlers := NewHandlers(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.PUT("/profile", handlers.User.UpdateProfile)

	worker := testutil.SeedUser(t, db, "worker1", entity.RoleWorker)
	token := testutil.GenerateTestToken(worker.ID, worker.Username, worker.DisplayName(), worker.Role)

	// Seed password for all test users is secret123.
	w := testutil.DoRequest(router, "PUT", "/api/v1/profile", map[string]interface{}{
		"first_name":       "Иван",
		"last_name":        "Иванов",
		"current_password": "secret123",
		"password":         "novaparola1",
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("profile update: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["first_name"] != "Иван" || data["last_name"] != "Иванов" {
		t.Errorf("unexpected profile payload: %v", data)
	}
	if _, leaked := data["password"]; leaked {
		t.Error("password hash must never be serialized")
	}

	// Password change with the wrong current password answers 401.
	w = testutil.DoRequest(router, "PUT", "/api/v1/profile", map[string]interface{}{
		"first_name":       "Иван",
		"last_name":        "Иванов",
		"current_password": "wrong",
		"password":         "oshteedna1",
	}, token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong current password: expected 401, got %d: %s", w.Code, w.Body.String())
	}

	// No token at all answers 401.
	w = testutil.DoRequest(router, "PUT", "/api/v1/profile", map[string]interface{}{
		"first_name": "Иван",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: expected 401, got %d", w.Code)
	}
}
