package service

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"salesdesk/backend/internal/cache"
	"salesdesk/backend/internal/domain"
	"salesdesk/backend/internal/report"
	"salesdesk/backend/internal/settlement"
	"salesdesk/backend/internal/store"
)

type Service struct {
	repo      store.Repository
	summaries cache.SummaryCache
	validate  *validator.Validate
	log       *zap.Logger
	cacheTTL  time.Duration
}

func New(repo store.Repository, summaries cache.SummaryCache, log *zap.Logger, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	validate := validator.New()
	// Report field names by their json tag so validation errors line up with
	// the wire format.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Service{
		repo:      repo,
		summaries: summaries,
		validate:  validate,
		log:       log,
		cacheTTL:  cacheTTL,
	}
}

// check runs struct validation and converts the result into a per-field
// domain.ValidationError.
func (s *Service) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = validationMessage(fe)
	}
	return &domain.ValidationError{Fields: fields}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "invalid email format"
	case "gte":
		return "must not be negative"
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "invalid value"
	}
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func (s *Service) ListClients(ctx context.Context) ([]domain.Client, error) {
	return s.repo.ListClients(ctx)
}

func (s *Service) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	return s.repo.GetClient(ctx, id)
}

func (s *Service) CreateClient(ctx context.Context, req domain.ClientCreateRequest) (*domain.Client, error) {
	req.Company = strings.TrimSpace(req.Company)
	req.Firstname = strings.TrimSpace(req.Firstname)
	req.Lastname = strings.TrimSpace(req.Lastname)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.check(req); err != nil {
		return nil, err
	}

	return s.repo.CreateClient(ctx, domain.Client{
		Company:   req.Company,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Credit:    money(req.Credit),
		Debt:      money(req.Debt),
	})
}

func (s *Service) UpdateClient(ctx context.Context, id string, req domain.ClientUpdateRequest) (*domain.Client, error) {
	req.Company = strings.TrimSpace(req.Company)
	req.Firstname = strings.TrimSpace(req.Firstname)
	req.Lastname = strings.TrimSpace(req.Lastname)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.check(req); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateClient(ctx, id, domain.Client{
		Company:   req.Company,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Credit:    money(req.Credit),
		Debt:      money(req.Debt),
	})
	if err != nil {
		return nil, err
	}

	s.dropSummary(ctx)
	return updated, nil
}

func (s *Service) DeleteClient(ctx context.Context, id string) error {
	if err := s.repo.DeleteClient(ctx, id); err != nil {
		return err
	}
	s.dropSummary(ctx)
	return nil
}

// ListSales returns every recorded sale, newest first.
func (s *Service) ListSales(ctx context.Context) ([]domain.Sale, error) {
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, err
	}

	// The memory store returns sales in map order; sort here so both
	// implementations behave the same.
	sort.Slice(sales, func(i, j int) bool {
		return sales[i].Date.After(sales[j].Date)
	})
	return sales, nil
}

// RegisterSale validates and persists a new sale, then settles its value
// against the client's balance. The two writes are not atomic: if the balance
// update fails, the sale stays persisted and a domain.SettlementError carrying
// it is returned so the caller can reconcile.
func (s *Service) RegisterSale(ctx context.Context, req domain.SaleCreateRequest) (*domain.Sale, error) {
	req.ClientID = strings.TrimSpace(req.ClientID)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.check(req); err != nil {
		return nil, err
	}

	client, err := s.repo.GetClient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	date := time.Now()
	if req.Date != nil && !req.Date.IsZero() {
		date = *req.Date
	}

	created, err := s.repo.CreateSale(ctx, domain.Sale{
		ClientID:    client.ID,
		Date:        date,
		Description: req.Description,
		Value:       money(req.Value),
	})
	if err != nil {
		return nil, err
	}

	newCredit, newDebt := settlement.Apply(client.Credit, client.Debt, created.Value)
	settled := *client
	settled.Credit = newCredit
	settled.Debt = newDebt

	if _, err := s.repo.UpdateClient(ctx, client.ID, settled); err != nil {
		s.log.Warn("sale persisted but balance update failed",
			zap.String("sale_id", created.ID),
			zap.String("client_id", client.ID),
			zap.Error(err))
		return created, &domain.SettlementError{Sale: *created, Err: err}
	}

	s.dropSummary(ctx)
	return created, nil
}

// UpdateSale edits a sale's description and value. The client and date are
// immutable, and the client's balance is not recomputed: the settlement from
// registration time stands.
func (s *Service) UpdateSale(ctx context.Context, id string, req domain.SaleUpdateRequest) (*domain.Sale, error) {
	req.Description = strings.TrimSpace(req.Description)
	if err := s.check(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *existing
	updated.Description = req.Description
	updated.Value = money(req.Value)

	saved, err := s.repo.UpdateSale(ctx, id, updated)
	if err != nil {
		return nil, err
	}

	s.dropSummary(ctx)
	return saved, nil
}

// DeleteSale removes a sale without reversing its settlement.
func (s *Service) DeleteSale(ctx context.Context, id string) error {
	if err := s.repo.DeleteSale(ctx, id); err != nil {
		return err
	}
	s.dropSummary(ctx)
	return nil
}

// RecentSales returns sales joined with their client's display fields, newest
// first. limit 0 means no cap (the full sales page); the dashboard widget
// passes report.DashboardRecentSales.
func (s *Service) RecentSales(ctx context.Context, limit int) ([]domain.RecentSale, error) {
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := s.repo.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	return report.JoinRecentSales(sales, clients, limit), nil
}

// Dashboard computes (or serves from cache) the summary the dashboard page
// renders: today's total, today's hourly series and the five most recent
// sales.
func (s *Service) Dashboard(ctx context.Context) (*domain.DashboardSummary, error) {
	now := time.Now()
	key := summaryKey(now)

	cached, ok, err := s.summaries.Get(ctx, key)
	if err != nil {
		s.log.Warn("summary cache read failed", zap.Error(err))
	} else if ok {
		return cached, nil
	}

	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := s.repo.ListClients(ctx)
	if err != nil {
		return nil, err
	}

	summary := &domain.DashboardSummary{
		Date:        now.Format("2006-01-02"),
		TodayTotal:  report.TodayTotal(sales, now),
		Series:      report.TodaySeries(sales, now),
		RecentSales: report.JoinRecentSales(sales, clients, report.DashboardRecentSales),
	}

	if err := s.summaries.Set(ctx, key, summary, s.cacheTTL); err != nil {
		s.log.Warn("summary cache write failed", zap.Error(err))
	}
	return summary, nil
}

func summaryKey(now time.Time) string {
	return "dashboard:" + now.Format("2006-01-02")
}

func (s *Service) dropSummary(ctx context.Context) {
	if err := s.summaries.Delete(ctx, summaryKey(time.Now())); err != nil {
		s.log.Warn("summary cache invalidation failed", zap.Error(err))
	}
}
