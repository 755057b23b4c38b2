package service

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-retreat-store/internal/config"
	applog "go-retreat-store/internal/logger"
	"go-retreat-store/internal/model"
	"go-retreat-store/internal/repository"
	"go-retreat-store/pkg/jwt"
)

type recordedEvent struct {
	Event   string
	Payload map[string]interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) Publish(event string, payload map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{Event: event, Payload: payload})
}

func (n *recordingNotifier) count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e.Event == event {
			c++
		}
	}
	return c
}

type testEnv struct {
	db       *gorm.DB
	notifier *recordingNotifier

	userRepo      repository.UserRepository
	productRepo   repository.ProductRepository

	codes     MoneyCodeService
	purchases PurchaseService
	donations DonationService
	products  ProductService
	inventory InventoryService
	rankings  RankingService
	users     UserService
	teams     TeamService
	orders    OrderService
	auth      AuthService
	resets    ResetService

	teamA, teamB, teamC      model.Team
	admin, leaderA, leaderB  model.User
	memberA                  model.User
	coffee, souvenir, poster model.Product
}

// newTestEnv opens a per-test in-memory database with three teams, one
// admin, a leader for teams A and B and three products
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))

	log := applog.SetupWriter(io.Discard, &config.Log{})
	notifier := &recordingNotifier{}
	cache := NoopCache()

	userRepo := repository.NewUserRepo(db)
	teamRepo := repository.NewTeamRepo(db)
	productRepo := repository.NewProductRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	codeRepo := repository.NewMoneyCodeRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)
	donationRepo := repository.NewDonationRepo(db)

	inventory := NewInventoryService(inventoryRepo)
	env := &testEnv{
		db:            db,
		notifier:      notifier,
		userRepo:      userRepo,
		productRepo:   productRepo,
		codes:         NewMoneyCodeService(db, codeRepo, userRepo, txRepo, notifier, log),
		purchases:     NewPurchaseService(db, productRepo, userRepo, orderRepo, txRepo, inventory, notifier, cache, log),
		donations:     NewDonationService(db, productRepo, userRepo, teamRepo, donationRepo, txRepo, inventory, notifier, cache, log),
		products:      NewProductService(db, productRepo, orderRepo, inventoryRepo, notifier, cache, log),
		inventory:     inventory,
		rankings:      NewRankingService(txRepo, userRepo),
		users:         NewUserService(db, userRepo, teamRepo, txRepo, log),
		teams:         NewTeamService(db, teamRepo, userRepo, log),
		orders:        NewOrderService(orderRepo),
		auth:          NewAuthService(userRepo, jwt.NewManager("test-secret", 0), log),
		resets:        NewResetService(db, repository.NewResetRepo(), notifier, cache, log),
	}

	env.teamA = model.Team{Name: "A그룹"}
	env.teamB = model.Team{Name: "B그룹"}
	env.teamC = model.Team{Name: "C그룹"}
	for _, team := range []*model.Team{&env.teamA, &env.teamB, &env.teamC} {
		require.NoError(t, db.Create(team).Error)
	}

	env.admin = env.createUser(t, "admin", model.RoleAdmin, nil, 0)
	env.leaderA = env.createUser(t, "leader-a", model.RoleTeamLeader, &env.teamA.ID, 0)
	env.leaderB = env.createUser(t, "leader-b", model.RoleTeamLeader, &env.teamB.ID, 0)
	env.memberA = env.createUser(t, "member-a", model.RoleParticipant, &env.teamA.ID, 0)
	require.NoError(t, db.Model(&env.teamA).Update("leader_id", env.leaderA.ID).Error)
	require.NoError(t, db.Model(&env.teamB).Update("leader_id", env.leaderB.ID).Error)

	env.coffee = env.createProduct(t, "Coffee", 200, 10)
	env.souvenir = env.createProduct(t, "Souvenir", 300, 5)
	env.poster = env.createProduct(t, "Poster", 100, 2)
	return env
}

func (e *testEnv) createUser(t *testing.T, username string, role model.Role, teamID *uint, balance int64) model.User {
	t.Helper()
	u := model.User{Username: username, Role: role, TeamID: teamID, Balance: balance}
	require.NoError(t, u.SetPassword("password"))
	require.NoError(t, e.db.Create(&u).Error)
	return u
}

func (e *testEnv) createProduct(t *testing.T, name string, price int64, stock int) model.Product {
	t.Helper()
	p := model.Product{Name: name, Price: price, Category: "item", StockQuantity: stock, InitialStock: stock, IsActive: stock > 0}
	require.NoError(t, e.db.Create(&p).Error)
	return p
}

func (e *testEnv) setBalance(t *testing.T, u model.User, balance int64) {
	t.Helper()
	require.NoError(t, e.db.Model(&model.User{}).Where("id = ?", u.ID).Update("balance", balance).Error)
}

func (e *testEnv) balance(t *testing.T, u model.User) int64 {
	t.Helper()
	var got model.User
	require.NoError(t, e.db.First(&got, u.ID).Error)
	return got.Balance
}

func (e *testEnv) product(t *testing.T, p model.Product) model.Product {
	t.Helper()
	var got model.Product
	require.NoError(t, e.db.First(&got, p.ID).Error)
	return got
}

func (e *testEnv) inventoryQty(t *testing.T, team model.Team, p model.Product) int {
	t.Helper()
	var items []model.TeamInventory
	require.NoError(t, e.db.Where("team_id = ? AND product_id = ?", team.ID, p.ID).Find(&items).Error)
	require.LessOrEqual(t, len(items), 1, "inventory rows must be unique per team and product")
	if len(items) == 0 {
		return 0
	}
	return items[0].Quantity
}

func (e *testEnv) inventoryItem(t *testing.T, team model.Team, p model.Product) model.TeamInventory {
	t.Helper()
	var item model.TeamInventory
	require.NoError(t, e.db.Where("team_id = ? AND product_id = ?", team.ID, p.ID).First(&item).Error)
	return item
}

func (e *testEnv) count(t *testing.T, m interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(m)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func actorOf(u model.User) Actor {
	return Actor{UserID: u.ID, Username: u.Username, Role: u.Role, TeamID: u.TeamID}
}
