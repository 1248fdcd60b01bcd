package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Client is a registered customer with a prepaid credit balance and an
// accumulated debt. Both amounts are kept non-negative at all times.
type Client struct {
	ID        string          `json:"id"`
	Company   string          `json:"company"`
	Firstname string          `json:"firstname"`
	Lastname  string          `json:"lastname"`
	Email     string          `json:"email"`
	Credit    decimal.Decimal `json:"credit"`
	Debt      decimal.Decimal `json:"debt"`
}

// Sale is a recorded transaction against a client. The client reference is
// advisory only: the store does not enforce it and the client may have been
// removed since.
type Sale struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"client_id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
}

type ClientCreateRequest struct {
	Company   string  `json:"company" validate:"required"`
	Firstname string  `json:"firstname" validate:"required"`
	Lastname  string  `json:"lastname" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Credit    float64 `json:"credit" validate:"gte=0"`
	Debt      float64 `json:"debt" validate:"gte=0"`
}

type ClientUpdateRequest struct {
	Company   string  `json:"company" validate:"required"`
	Firstname string  `json:"firstname" validate:"required"`
	Lastname  string  `json:"lastname" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Credit    float64 `json:"credit" validate:"gte=0"`
	Debt      float64 `json:"debt" validate:"gte=0"`
}

type SaleCreateRequest struct {
	ClientID    string     `json:"client_id" validate:"required"`
	Description string     `json:"description" validate:"required"`
	Value       float64    `json:"value" validate:"gt=0"`
	Date        *time.Time `json:"date,omitempty"`
}

// SaleUpdateRequest covers the editable fields of a sale. The client and the
// date are fixed at registration time.
type SaleUpdateRequest struct {
	Description string  `json:"description" validate:"required"`
	Value       float64 `json:"value" validate:"gt=0"`
}

// SeriesPoint is one chart point of the today's-sales time series.
type SeriesPoint struct {
	Time  string          `json:"time"`
	Value decimal.Decimal `json:"value"`
}

// RecentSale is a sale joined with the display fields of its client. When the
// client no longer resolves, the placeholder fields below are substituted.
type RecentSale struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"client_id"`
	Firstname   string          `json:"firstname"`
	Lastname    string          `json:"lastname"`
	Company     string          `json:"company"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Value       decimal.Decimal `json:"value"`
}

// Placeholder display fields for sales whose client was removed.
const (
	MissingClientFirstname = "Client not found"
	MissingClientLastname  = "or removed"
	MissingClientCompany   = "Company not found or removed"
)

// DashboardSummary is the read-side view rendered by the dashboard page.
type DashboardSummary struct {
	Date        string          `json:"date"`
	TodayTotal  decimal.Decimal `json:"today_total"`
	Series      []SeriesPoint   `json:"series"`
	RecentSales []RecentSale    `json:"recent_sales"`
}

// ValidationError reports per-field input problems so a form can highlight
// the offending inputs. It is returned before any store call is made.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

// SettlementError signals that a sale was persisted but the follow-up client
// balance update failed, leaving the client's credit/debt stale. The caller
// gets the persisted sale back and must reconcile manually.
type SettlementError struct {
	Sale Sale
	Err  error
}

func (e *SettlementError) Error() string {
	return fmt.Sprintf("sale %s recorded but balance update for client %s failed: %v", e.Sale.ID, e.Sale.ClientID, e.Err)
}

func (e *SettlementError) Unwrap() error {
	return e.Err
}
