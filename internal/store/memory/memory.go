package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"salesdesk/backend/internal/domain"
	"salesdesk/backend/internal/store"
)

// Store is a mutex-guarded in-memory repository. It backs the dev/demo mode
// (no DATABASE_URL) and the test suites.
type Store struct {
	mu      sync.RWMutex
	clients map[string]domain.Client
	sales   map[string]domain.Sale
}

func New() *Store {
	return &Store{
		clients: make(map[string]domain.Client),
		sales:   make(map[string]domain.Sale),
	}
}

// NewSeeded returns a store pre-populated with a few demo clients and sales
// dated relative to startup, so the dashboard has something to render.
func NewSeeded() *Store {
	s := New()
	now := time.Now()

	clients := []domain.Client{
		{Company: "Padaria Central", Firstname: "Renata", Lastname: "Silva", Email: "renata@padariacentral.com", Credit: decimal.NewFromInt(150), Debt: decimal.Zero},
		{Company: "Oficina do Zé", Firstname: "José", Lastname: "Almeida", Email: "ze@oficinadoze.com", Credit: decimal.Zero, Debt: decimal.NewFromInt(80)},
		{Company: "Mercado Bom Preço", Firstname: "Carla", Lastname: "Souza", Email: "carla@bompreco.com", Credit: decimal.NewFromFloat(42.50), Debt: decimal.NewFromFloat(12.30)},
	}

	created := make([]domain.Client, 0, len(clients))
	for _, c := range clients {
		saved, _ := s.CreateClient(context.Background(), c)
		created = append(created, *saved)
	}

	sales := []domain.Sale{
		{ClientID: created[0].ID, Date: now.Add(-2 * time.Hour), Description: "Monthly bread delivery", Value: decimal.NewFromFloat(35.90)},
		{ClientID: created[1].ID, Date: now.Add(-30 * time.Minute), Description: "Brake pad replacement", Value: decimal.NewFromInt(120)},
		{ClientID: created[2].ID, Date: now.AddDate(0, 0, -1), Description: "Grocery restock", Value: decimal.NewFromFloat(210.75)},
	}
	for _, sale := range sales {
		_, _ = s.CreateSale(context.Background(), sale)
	}

	return s
}

func (s *Store) ListClients(_ context.Context) ([]domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]domain.Client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	return clients, nil
}

func (s *Store) GetClient(_ context.Context, id string) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, ok := s.clients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &client, nil
}

func (s *Store) CreateClient(_ context.Context, client domain.Client) (*domain.Client, error) {
	if client.Credit.IsNegative() || client.Debt.IsNegative() {
		return nil, store.ErrInvalidEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	client.ID = uuid.NewString()
	s.clients[client.ID] = client
	return &client, nil
}

func (s *Store) UpdateClient(_ context.Context, id string, client domain.Client) (*domain.Client, error) {
	if client.Credit.IsNegative() || client.Debt.IsNegative() {
		return nil, store.ErrInvalidEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[id]; !ok {
		return nil, store.ErrNotFound
	}
	client.ID = id
	s.clients[id] = client
	return &client, nil
}

func (s *Store) DeleteClient(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[id]; !ok {
		return store.ErrNotFound
	}
	// No cascade: the client's sales stay behind and joins substitute
	// placeholder display fields.
	delete(s.clients, id)
	return nil
}

func (s *Store) ListSales(_ context.Context) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		sales = append(sales, sale)
	}
	return sales, nil
}

func (s *Store) GetSale(_ context.Context, id string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sale, nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.Value.LessThanOrEqual(decimal.Zero) || sale.Description == "" {
		return nil, store.ErrInvalidEntity
	}
	if sale.Date.IsZero() {
		sale.Date = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sale.ID = uuid.NewString()
	s.sales[sale.ID] = sale
	return &sale, nil
}

func (s *Store) UpdateSale(_ context.Context, id string, sale domain.Sale) (*domain.Sale, error) {
	if sale.Value.LessThanOrEqual(decimal.Zero) || sale.Description == "" {
		return nil, store.ErrInvalidEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sales[id]; !ok {
		return nil, store.ErrNotFound
	}
	sale.ID = id
	s.sales[id] = sale
	return &sale, nil
}

func (s *Store) DeleteSale(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sales[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.sales, id)
	return nil
}
