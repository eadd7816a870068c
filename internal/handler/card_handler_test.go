package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/SrebrinSharbanov/ControlCards/internal/entity"
	"github.com/SrebrinSharbanov/ControlCards/internal/middleware"
	"github.com/SrebrinSharbanov/ControlCards/internal/repository"
	"github.com/SrebrinSharbanov/ControlCards/internal/service"
	"github.com/SrebrinSharbanov/ControlCards/internal/testutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type handlerTestEnv struct {
	db     *gorm.DB
	router *gin.Engine

	workshop   *entity.Workshop
	workCenter *entity.WorkCenter

	worker     *entity.User
	technician *entity.User
	manager    *entity.User
	prodMgr    *entity.User
	admin      *entity.User
}

func setupCardHandlerTest(t *testing.T) *handlerTestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := service.NewServices(repos, zap.NewNop(), testutil.JWTSecret, time.Hour, nil, nil, time.Minute)
	handlers := NewHandlers(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	cards := api.Group("/cards")
	{
		cards.GET("", handlers.Card.List)
		cards.GET("/:id", handlers.Card.Get)
		cards.GET("/:id/abilities", handlers.Card.Abilities)
		cards.POST("", middleware.RequireRoles(entity.RoleWorker), handlers.Card.Create)
		cards.POST("/:id/extend", middleware.RequireRoles(entity.RoleTechnician), handlers.Card.Extend)
		cards.POST("/:id/close", middleware.RequireRoles(entity.RoleManager, entity.RoleProductionManager), handlers.Card.Close)
		cards.POST("/:id/archive", middleware.RequireRoles(entity.RoleProductionManager), handlers.Card.Archive)
	}
	api.GET("/dashboard/counts", handlers.Dashboard.Counts)

	env := &handlerTestEnv{db: db, router: router}
	env.workshop = testutil.SeedWorkshop(t, db, "Цех Механика")
	env.workCenter = testutil.SeedWorkCenter(t, db, env.workshop.ID, "110")
	env.worker = testutil.SeedUser(t, db, "worker1", entity.RoleWorker, env.workshop.ID)
	env.technician = testutil.SeedUser(t, db, "tech1", entity.RoleTechnician, env.workshop.ID)
	env.manager = testutil.SeedUser(t, db, "manager1", entity.RoleManager, env.workshop.ID)
	env.prodMgr = testutil.SeedUser(t, db, "prodmgr1", entity.RoleProductionManager, env.workshop.ID)
	env.admin = testutil.SeedUser(t, db, "admin1", entity.RoleAdmin)
	return env
}

func token(u *entity.User) string {
	return testutil.GenerateTestToken(u.ID, u.Username, u.DisplayName(), u.Role)
}

func (e *handlerTestEnv) createCard(t *testing.T) string {
	t.Helper()
	w := testutil.DoRequest(e.router, "POST", "/api/v1/cards", map[string]interface{}{
		"workshop_id":       e.workshop.ID,
		"work_center_id":    e.workCenter.ID,
		"shift":             "FIRST",
		"short_description": "Счупен шпиндел",
	}, token(e.worker))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	return data["id"].(string)
}

func TestCardEndpointsLifecycle(t *testing.T) {
	env := setupCardHandlerTest(t)
	cardID := env.createCard(t)

	// Worker lists own-workshop cards.
	w := testutil.DoRequest(env.router, "GET", "/api/v1/cards?bucket=created", nil, token(env.worker))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	items := testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 card, got %d", len(items))
	}

	// Technician extends.
	w = testutil.DoRequest(env.router, "POST", "/api/v1/cards/"+cardID+"/extend", map[string]interface{}{
		"detailed_description":        "Износен лагер",
		"resolution_duration_minutes": 30,
	}, token(env.technician))
	if w.Code != http.StatusOK {
		t.Fatalf("extend: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Manager closes.
	w = testutil.DoRequest(env.router, "POST", "/api/v1/cards/"+cardID+"/close", nil, token(env.manager))
	if w.Code != http.StatusOK {
		t.Fatalf("close: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Production manager archives.
	w = testutil.DoRequest(env.router, "POST", "/api/v1/cards/"+cardID+"/archive", nil, token(env.prodMgr))
	if w.Code != http.StatusOK {
		t.Fatalf("archive: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Archived card remains addressable by id.
	w = testutil.DoRequest(env.router, "GET", "/api/v1/cards/"+cardID, nil, token(env.worker))
	if w.Code != http.StatusOK {
		t.Fatalf("get archived: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["status"] != "ARCHIVED" {
		t.Errorf("expected ARCHIVED, got %v", data["status"])
	}
}

func TestCardEndpointRoleGates(t *testing.T) {
	env := setupCardHandlerTest(t)
	cardID := env.createCard(t)

	// Technician cannot create.
	w := testutil.DoRequest(env.router, "POST", "/api/v1/cards", map[string]interface{}{
		"workshop_id":       env.workshop.ID,
		"work_center_id":    env.workCenter.ID,
		"shift":             "FIRST",
		"short_description": "тест",
	}, token(env.technician))
	if w.Code != http.StatusForbidden {
		t.Errorf("technician create: expected 403, got %d", w.Code)
	}

	// Worker cannot extend.
	w = testutil.DoRequest(env.router, "POST", "/api/v1/cards/"+cardID+"/extend", map[string]interface{}{}, token(env.worker))
	if w.Code != http.StatusForbidden {
		t.Errorf("worker extend: expected 403, got %d", w.Code)
	}

	// Manager close of a CREATED card is a status conflict, not a role issue.
	w = testutil.DoRequest(env.router, "POST", "/api/v1/cards/"+cardID+"/close", nil, token(env.manager))
	if w.Code != http.StatusConflict {
		t.Errorf("manager close of CREATED: expected 409, got %d: %s", w.Code, w.Body.String())
	}

	// Admin passes every role gate.
	w = testutil.DoRequest(env.router, "POST", "/api/v1/cards/"+cardID+"/close", nil, token(env.admin))
	if w.Code != http.StatusOK {
		t.Errorf("admin close: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// No token at all.
	w = testutil.DoRequest(env.router, "GET", "/api/v1/cards", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: expected 401, got %d", w.Code)
	}
}

func TestCardAbilitiesEndpoint(t *testing.T) {
	env := setupCardHandlerTest(t)
	cardID := env.createCard(t)

	w := testutil.DoRequest(env.router, "GET", "/api/v1/cards/"+cardID+"/abilities", nil, token(env.technician))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["exists"] != true || data["can_extend"] != true {
		t.Errorf("technician abilities wrong: %v", data)
	}
	if data["can_close"] != false || data["can_archive"] != false {
		t.Errorf("technician should not close or archive: %v", data)
	}

	// Probes degrade to all-false for a missing card, still 200.
	w = testutil.DoRequest(env.router, "GET", "/api/v1/cards/missing/abilities", nil, token(env.technician))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for missing card, got %d", w.Code)
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["exists"] != false || data["can_extend"] != false {
		t.Errorf("missing card abilities must be all false: %v", data)
	}
}

func TestDashboardCountsEndpoint(t *testing.T) {
	env := setupCardHandlerTest(t)
	env.createCard(t)
	env.createCard(t)

	w := testutil.DoRequest(env.router, "GET", "/api/v1/dashboard/counts", nil, token(env.worker))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["created"].(float64) != 2 {
		t.Errorf("expected 2 created cards, got %v", data["created"])
	}
}
