package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

type sentEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []sentEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, _ := event.(map[string]any)
	p.events = append(p.events, sentEvent{Topic: topic, Key: key, Event: m})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event["type"].(string))
	}
	return out
}

type testEnv struct {
	DB     *gorm.DB
	Repo   *repo.GormRepo
	Events *recordingPublisher
	Tokens *tokens.Issuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.User{}, &models.Order{}))

	return &testEnv{
		DB:     db,
		Repo:   repo.NewGormRepo(db),
		Events: &recordingPublisher{},
		Tokens: tokens.NewIssuer([]byte("test-jwt-secret"), time.Hour),
	}
}

func (e *testEnv) users() *UserService {
	return &UserService{Users: e.Repo, Tokens: e.Tokens, Events: e.Events}
}

func (e *testEnv) catalog() *CatalogService {
	return &CatalogService{Products: e.Repo, Events: e.Events}
}

func (e *testEnv) orders() *OrderService {
	return &OrderService{Orders: e.Repo, Products: e.Repo, Events: e.Events}
}

func (e *testEnv) createUser(t *testing.T, name string, admin, owner bool) *models.User {
	t.Helper()

	pw, err := hash.HashPassword("123456")
	require.NoError(t, err)
	u := &models.User{Name: name, Email: name + "@example.com", Password: pw, IsAdmin: admin, IsOwner: owner}
	require.NoError(t, e.Repo.CreateUser(context.Background(), u))
	return u
}
