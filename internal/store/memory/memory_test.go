package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"salesdesk/backend/internal/domain"
	"salesdesk/backend/internal/store"
)

func TestClientCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateClient(ctx, domain.Client{
		Company:   "Mercado Bom Preço",
		Firstname: "Carla",
		Lastname:  "Souza",
		Email:     "carla@bompreco.com",
		Credit:    decimal.NewFromInt(50),
		Debt:      decimal.Zero,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected a generated id")
	}

	got, err := s.GetClient(ctx, created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Email != "carla@bompreco.com" {
		t.Fatalf("unexpected client: %+v", got)
	}

	got.Debt = decimal.NewFromInt(10)
	updated, err := s.UpdateClient(ctx, created.ID, *got)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !updated.Debt.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected debt 10, got %s", updated.Debt)
	}

	if err := s.DeleteClient(ctx, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.GetClient(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCreateClientRejectsNegativeBalance(t *testing.T) {
	s := New()

	_, err := s.CreateClient(context.Background(), domain.Client{
		Company:   "X",
		Firstname: "A",
		Lastname:  "B",
		Email:     "a@b.com",
		Credit:    decimal.NewFromInt(-1),
	})
	if !errors.Is(err, store.ErrInvalidEntity) {
		t.Fatalf("expected ErrInvalidEntity, got %v", err)
	}
}

func TestCreateSaleDefaultsDate(t *testing.T) {
	s := New()

	before := time.Now()
	sale, err := s.CreateSale(context.Background(), domain.Sale{
		ClientID:    "c1",
		Description: "No explicit date",
		Value:       decimal.NewFromInt(5),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if sale.Date.Before(before) {
		t.Fatalf("expected the date to default to now, got %s", sale.Date)
	}
}

func TestCreateSaleRejectsNonPositiveValue(t *testing.T) {
	s := New()

	_, err := s.CreateSale(context.Background(), domain.Sale{
		ClientID:    "c1",
		Description: "Zero value",
		Value:       decimal.Zero,
	})
	if !errors.Is(err, store.ErrInvalidEntity) {
		t.Fatalf("expected ErrInvalidEntity, got %v", err)
	}
}

func TestDeleteClientKeepsSales(t *testing.T) {
	s := New()
	ctx := context.Background()

	client, err := s.CreateClient(ctx, domain.Client{
		Company: "X", Firstname: "A", Lastname: "B", Email: "a@b.com",
	})
	if err != nil {
		t.Fatalf("create client failed: %v", err)
	}
	sale, err := s.CreateSale(ctx, domain.Sale{
		ClientID:    client.ID,
		Description: "Orphaned later",
		Value:       decimal.NewFromInt(5),
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	if err := s.DeleteClient(ctx, client.ID); err != nil {
		t.Fatalf("delete client failed: %v", err)
	}
	if _, err := s.GetSale(ctx, sale.ID); err != nil {
		t.Fatalf("expected sale to survive client removal: %v", err)
	}
}

func TestSeededStoreHasData(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	clients, err := s.ListClients(ctx)
	if err != nil {
		t.Fatalf("list clients failed: %v", err)
	}
	if len(clients) == 0 {
		t.Fatalf("expected seeded clients")
	}

	sales, err := s.ListSales(ctx)
	if err != nil {
		t.Fatalf("list sales failed: %v", err)
	}
	if len(sales) == 0 {
		t.Fatalf("expected seeded sales")
	}
	for _, sale := range sales {
		if sale.Value.LessThanOrEqual(decimal.Zero) {
			t.Fatalf("seeded sale %s has non-positive value", sale.ID)
		}
	}
}
