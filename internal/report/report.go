// Package report derives the dashboard's read-side views from the full sale
// and client sets. Nothing is pre-aggregated in the store; every view is
// computed on demand.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"salesdesk/backend/internal/domain"
)

// DashboardRecentSales is the row cap of the dashboard's recent-sales widget.
// The full sales page passes limit 0 (unlimited).
const DashboardRecentSales = 5

// sameDay reports whether t falls on the same calendar day as ref, comparing
// year, month and day-of-month.
func sameDay(t, ref time.Time) bool {
	return t.Year() == ref.Year() && t.Month() == ref.Month() && t.Day() == ref.Day()
}

// TodayTotal sums the value of every sale dated on the same calendar day as
// now. Returns zero when no sale matches.
func TodayTotal(sales []domain.Sale, now time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, sale := range sales {
		if sameDay(sale.Date, now) {
			total = total.Add(sale.Value)
		}
	}
	return total
}

// fallbackSeries is the flat baseline the chart renders on a day without
// sales: nine zero points spanning the day in 3-hour steps.
func fallbackSeries() []domain.SeriesPoint {
	points := make([]domain.SeriesPoint, 0, 9)
	for hour := 0; hour <= 24; hour += 3 {
		points = append(points, domain.SeriesPoint{
			Time:  fmt.Sprintf("%02d:00", hour),
			Value: decimal.Zero,
		})
	}
	return points
}

// TodaySeries buckets today's sales by wall-clock hour and returns one
// {time, value} point per bucket, labeled "HH:00" and sorted ascending. With
// no sales today it returns the fixed zero baseline instead of an empty
// series so the chart still renders.
func TodaySeries(sales []domain.Sale, now time.Time) []domain.SeriesPoint {
	buckets := make(map[int]decimal.Decimal)
	for _, sale := range sales {
		if !sameDay(sale.Date, now) {
			continue
		}
		hour := sale.Date.Hour()
		buckets[hour] = buckets[hour].Add(sale.Value)
	}

	if len(buckets) == 0 {
		return fallbackSeries()
	}

	hours := make([]int, 0, len(buckets))
	for hour := range buckets {
		hours = append(hours, hour)
	}
	sort.Ints(hours)

	points := make([]domain.SeriesPoint, 0, len(hours))
	for _, hour := range hours {
		points = append(points, domain.SeriesPoint{
			Time:  fmt.Sprintf("%02d:00", hour),
			Value: buckets[hour],
		})
	}
	return points
}

// JoinRecentSales resolves each sale's client by id and returns display rows
// sorted by date descending, capped to limit when limit > 0. A sale whose
// client no longer exists gets placeholder display fields instead of failing
// the whole view.
func JoinRecentSales(sales []domain.Sale, clients []domain.Client, limit int) []domain.RecentSale {
	byID := make(map[string]domain.Client, len(clients))
	for _, c := range clients {
		byID[c.ID] = c
	}

	rows := make([]domain.RecentSale, 0, len(sales))
	for _, sale := range sales {
		row := domain.RecentSale{
			ID:          sale.ID,
			ClientID:    sale.ClientID,
			Description: sale.Description,
			Date:        sale.Date,
			Value:       sale.Value,
		}
		if client, ok := byID[sale.ClientID]; ok {
			row.Firstname = client.Firstname
			row.Lastname = client.Lastname
			row.Company = client.Company
		} else {
			row.Firstname = domain.MissingClientFirstname
			row.Lastname = domain.MissingClientLastname
			row.Company = domain.MissingClientCompany
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Date.After(rows[j].Date)
	})

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
