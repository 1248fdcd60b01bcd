package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"salesdesk/backend/internal/domain"
	"salesdesk/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS clients (
			id         text PRIMARY KEY,
			company    text NOT NULL,
			firstname  text NOT NULL,
			lastname   text NOT NULL,
			email      text NOT NULL,
			credit     numeric(12,2) NOT NULL DEFAULT 0 CHECK (credit >= 0),
			debt       numeric(12,2) NOT NULL DEFAULT 0 CHECK (debt >= 0),
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS sales (
			id          text PRIMARY KEY,
			client_id   text NOT NULL,
			date        timestamptz NOT NULL,
			description text NOT NULL,
			value       numeric(12,2) NOT NULL CHECK (value > 0),
			created_at  timestamptz NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS sales_date_idx ON sales (date DESC);
		CREATE INDEX IF NOT EXISTS sales_client_id_idx ON sales (client_id);
	`)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company, firstname, lastname, email, credit, debt
		FROM clients
		ORDER BY firstname, lastname
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := make([]domain.Client, 0, 64)
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.Company, &c.Firstname, &c.Lastname, &c.Email, &c.Credit, &c.Debt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *Store) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	var c domain.Client
	err := s.db.QueryRowContext(ctx, `
		SELECT id, company, firstname, lastname, email, credit, debt
		FROM clients
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Company, &c.Firstname, &c.Lastname, &c.Email, &c.Credit, &c.Debt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateClient(ctx context.Context, client domain.Client) (*domain.Client, error) {
	if client.Credit.IsNegative() || client.Debt.IsNegative() {
		return nil, store.ErrInvalidEntity
	}

	client.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (id, company, firstname, lastname, email, credit, debt)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, client.ID, client.Company, client.Firstname, client.Lastname, client.Email, client.Credit, client.Debt)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *Store) UpdateClient(ctx context.Context, id string, client domain.Client) (*domain.Client, error) {
	if client.Credit.IsNegative() || client.Debt.IsNegative() {
		return nil, store.ErrInvalidEntity
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE clients
		SET company = $2, firstname = $3, lastname = $4, email = $5, credit = $6, debt = $7, updated_at = now()
		WHERE id = $1
	`, id, client.Company, client.Firstname, client.Lastname, client.Email, client.Credit, client.Debt)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	client.ID = id
	return &client, nil
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	// No cascade on the sales table: orphaned sales are resolved at read time
	// with placeholder display fields.
	res, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListSales(ctx context.Context) ([]domain.Sale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, date, description, value
		FROM sales
		ORDER BY date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, 128)
	for rows.Next() {
		var sale domain.Sale
		if err := rows.Scan(&sale.ID, &sale.ClientID, &sale.Date, &sale.Description, &sale.Value); err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sales, nil
}

func (s *Store) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	var sale domain.Sale
	err := s.db.QueryRowContext(ctx, `
		SELECT id, client_id, date, description, value
		FROM sales
		WHERE id = $1
	`, id).Scan(&sale.ID, &sale.ClientID, &sale.Date, &sale.Description, &sale.Value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.Value.LessThanOrEqual(decimal.Zero) || sale.Description == "" {
		return nil, store.ErrInvalidEntity
	}
	if sale.Date.IsZero() {
		sale.Date = time.Now()
	}

	sale.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sales (id, client_id, date, description, value)
		VALUES ($1,$2,$3,$4,$5)
	`, sale.ID, sale.ClientID, sale.Date, sale.Description, sale.Value)
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) UpdateSale(ctx context.Context, id string, sale domain.Sale) (*domain.Sale, error) {
	if sale.Value.LessThanOrEqual(decimal.Zero) || sale.Description == "" {
		return nil, store.ErrInvalidEntity
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE sales
		SET client_id = $2, date = $3, description = $4, value = $5
		WHERE id = $1
	`, id, sale.ClientID, sale.Date, sale.Description, sale.Value)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	sale.ID = id
	return &sale, nil
}

func (s *Store) DeleteSale(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
