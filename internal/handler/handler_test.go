package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-retreat-store/internal/config"
	applog "go-retreat-store/internal/logger"
	"go-retreat-store/internal/middleware"
	"go-retreat-store/internal/model"
	"go-retreat-store/internal/repository"
	"go-retreat-store/internal/service"
	"go-retreat-store/pkg/database"
	"go-retreat-store/pkg/jwt"
)

type testServer struct {
	app     *fiber.App
	product model.Product
}

// newTestServer wires the full API over an in-memory database with an
// admin, a team leader of "Alpha", a participant and one product
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.Connect(&config.DB{
		Driver:     "sqlite",
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	ctx := context.Background()
	log := applog.SetupWriter(io.Discard, &config.Log{})
	tokens := jwt.NewManager("handler-test-secret", time.Hour)
	notifier := service.NoopNotifier()
	cache := service.NoopCache()

	userRepo := repository.NewUserRepo(db)
	teamRepo := repository.NewTeamRepo(db)
	productRepo := repository.NewProductRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	codeRepo := repository.NewMoneyCodeRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)
	donationRepo := repository.NewDonationRepo(db)

	team := model.Team{Name: "Alpha"}
	require.NoError(t, db.Create(&team).Error)
	for _, u := range []model.User{
		{Username: "admin", Role: model.RoleAdmin},
		{Username: "leader", Role: model.RoleTeamLeader, TeamID: &team.ID},
		{Username: "member", Role: model.RoleParticipant, TeamID: &team.ID},
	} {
		require.NoError(t, u.SetPassword("password"))
		require.NoError(t, userRepo.Create(db, &u))
	}
	product := model.Product{Name: "Coffee", Price: 200, Category: "beverage", IsActive: true, StockQuantity: 5, InitialStock: 5}
	require.NoError(t, productRepo.Create(ctx, &product))

	inventory := service.NewInventoryService(inventoryRepo)
	products := service.NewProductService(db, productRepo, orderRepo, inventoryRepo, notifier, cache, log)
	purchases := service.NewPurchaseService(db, productRepo, userRepo, orderRepo, txRepo, inventory, notifier, cache, log)
	donations := service.NewDonationService(db, productRepo, userRepo, teamRepo, donationRepo, txRepo, inventory, notifier, cache, log)
	codes := service.NewMoneyCodeService(db, codeRepo, userRepo, txRepo, notifier, log)
	rankings := service.NewRankingService(txRepo, userRepo)
	orders := service.NewOrderService(orderRepo)

	app := fiber.New()
	RegisterRoutes(app, Handlers{
		Auth:    NewAuthHandler(service.NewAuthService(userRepo, tokens, log)),
		Store:   NewStoreHandler(products, purchases, donations, orders, inventory),
		Account: NewAccountHandler(codes, rankings, orders, inventory, donations),
		Users:   NewUserHandler(service.NewUserService(db, userRepo, teamRepo, txRepo, log)),
		Admin:   NewAdminHandler(rankings, service.NewTeamService(db, teamRepo, userRepo, log), codes, products, orders, donations, service.NewResetService(db, repository.NewResetRepo(), notifier, cache, log)),
	}, middleware.RequireAuth(userRepo, tokens), RedeemLimit{MaxRequests: 100, Window: time.Minute})

	return &testServer{app: app, product: product}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"username": username, "password": "password"})
	require.Equal(t, http.StatusOK, status, body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRedeemThenPurchase(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin")
	leader := s.login(t, "leader")

	status, body := s.do(t, http.MethodPost, "/api/v1/admin/money-codes", admin, fiber.Map{"amount": 500, "count": 1})
	require.Equal(t, http.StatusCreated, status, body)
	codes := body["codes"].([]interface{})
	require.Len(t, codes, 1)

	status, body = s.do(t, http.MethodPost, "/api/v1/user/redeem-code", leader, fiber.Map{"code": codes[0]})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 500, body["new_balance"])

	status, body = s.do(t, http.MethodPost, "/api/v1/store/purchase", leader, fiber.Map{"product_id": s.product.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 100, body["new_balance"])
	assert.EqualValues(t, 400, body["total_price"])

	status, body = s.do(t, http.MethodGet, "/api/v1/user/team-inventory", leader, nil)
	require.Equal(t, http.StatusOK, status, body)
	items := body["inventory"].([]interface{})
	require.Len(t, items, 1)
	assert.EqualValues(t, 2, items[0].(map[string]interface{})["quantity"])

	// A used code is rejected
	status, body = s.do(t, http.MethodPost, "/api/v1/user/redeem-code", leader, fiber.Map{"code": codes[0]})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid or already used code", body["error"])
}

func TestErrorResponses(t *testing.T) {
	s := newTestServer(t)
	leader := s.login(t, "leader")
	member := s.login(t, "member")

	t.Run("missing token", func(t *testing.T) {
		status, body := s.do(t, http.MethodGet, "/api/v1/store/products", "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, false, body["success"])
	})

	t.Run("wrong password", func(t *testing.T) {
		status, body := s.do(t, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"username": "leader", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid username or password", body["error"])
	})

	t.Run("insufficient balance", func(t *testing.T) {
		status, body := s.do(t, http.MethodPost, "/api/v1/store/purchase", leader, fiber.Map{"product_id": s.product.ID, "quantity": 1})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Insufficient balance", body["error"])
	})

	t.Run("participant cannot redeem", func(t *testing.T) {
		status, body := s.do(t, http.MethodPost, "/api/v1/user/redeem-code", member, fiber.Map{"code": "RC123"})
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, false, body["success"])
	})

	t.Run("unknown product", func(t *testing.T) {
		status, _ := s.do(t, http.MethodPost, "/api/v1/store/purchase", leader, fiber.Map{"product_id": 999, "quantity": 1})
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin")
	leader := s.login(t, "leader")

	status, body := s.do(t, http.MethodGet, "/api/v1/admin/rankings", leader, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, false, body["success"])

	status, body = s.do(t, http.MethodGet, "/api/v1/admin/rankings", admin, nil)
	require.Equal(t, http.StatusOK, status, body)
	rankings := body["rankings"].([]interface{})
	assert.Len(t, rankings, 1)

	status, _ = s.do(t, http.MethodPut, "/api/v1/admin/products/abc/toggle", admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdminStockUpdate(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin")
	path := fmt.Sprintf("/api/v1/admin/products/%d/stock", s.product.ID)

	status, body := s.do(t, http.MethodPut, path, admin, fiber.Map{"stock": 0})
	require.Equal(t, http.StatusOK, status, body)
	product := body["product"].(map[string]interface{})
	assert.EqualValues(t, 0, product["stock_quantity"])
	assert.Equal(t, false, product["is_active"])

	status, body = s.do(t, http.MethodPut, path, admin, fiber.Map{"delta": 3})
	require.Equal(t, http.StatusOK, status, body)
	product = body["product"].(map[string]interface{})
	assert.EqualValues(t, 3, product["stock_quantity"])
	assert.Equal(t, true, product["is_active"])

	status, _ = s.do(t, http.MethodPut, path, admin, fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSecondLoginInvalidatesFirstSession(t *testing.T) {
	s := newTestServer(t)
	first := s.login(t, "leader")
	second := s.login(t, "leader")

	status, _ := s.do(t, http.MethodGet, "/api/v1/auth/me", first, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := s.do(t, http.MethodGet, "/api/v1/auth/me", second, nil)
	require.Equal(t, http.StatusOK, status, body)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "leader", user["username"])
}

func TestLogoutEndsSession(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "leader")

	status, body := s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status, body)

	status, body = s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
}

func TestResetDatabaseKeepsAdmin(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin")
	leader := s.login(t, "leader")

	status, _ := s.do(t, http.MethodPost, "/api/v1/admin/reset-database", leader, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := s.do(t, http.MethodPost, "/api/v1/admin/reset-database", admin, nil)
	require.Equal(t, http.StatusOK, status, body)

	status, body = s.do(t, http.MethodGet, "/api/v1/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Len(t, body["users"].([]interface{}), 1)

	status, body = s.do(t, http.MethodGet, "/api/v1/admin/products", admin, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Empty(t, body["products"])

	// The leader's account is gone with its session
	status, _ = s.do(t, http.MethodGet, "/api/v1/auth/me", leader, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
