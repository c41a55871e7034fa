package dashboard

import (
	"context"
	"fmt"

	"finman/internal/core"
	"finman/internal/log"
)

// PersonTotalsReader and CategoryTotalsReader are what the service
// needs from the aggregation repository.
type PersonTotalsReader interface {
	TotalsByPerson(ctx context.Context) ([]core.PersonTotals, error)
}

type CategoryTotalsReader interface {
	TotalsByCategory(ctx context.Context) ([]core.CategoryTotals, error)
}

// PersonReport is the totals-by-person response: the rows plus a grand
// total folded from those same rows, so the two can never disagree.
type PersonReport struct {
	Items      []core.PersonTotals `json:"items"`
	GrandTotal core.Totals         `json:"grandTotal"`
}

type CategoryReport struct {
	Items      []core.CategoryTotals `json:"items"`
	GrandTotal core.Totals           `json:"grandTotal"`
}

type Service struct {
	persons    PersonTotalsReader
	categories CategoryTotalsReader
	logger     *log.Logger
}

func NewService(persons PersonTotalsReader, categories CategoryTotalsReader, logger *log.Logger) *Service {
	return &Service{
		persons:    persons,
		categories: categories,
		logger:     logger.WithComponent(log.ComponentDashboard),
	}
}

func (s *Service) TotalsByPerson(ctx context.Context) (PersonReport, error) {
	items, err := s.persons.TotalsByPerson(ctx)
	if err != nil {
		return PersonReport{}, fmt.Errorf("totals by person: %w", err)
	}

	report := PersonReport{Items: items}
	for _, item := range items {
		report.GrandTotal.TotalIncome = report.GrandTotal.TotalIncome.Add(item.TotalIncome)
		report.GrandTotal.TotalExpense = report.GrandTotal.TotalExpense.Add(item.TotalExpense)
	}
	report.GrandTotal.Balance = report.GrandTotal.TotalIncome.Sub(report.GrandTotal.TotalExpense)

	s.logger.Debug("Computed totals by person", "rows", len(items))
	return report, nil
}

func (s *Service) TotalsByCategory(ctx context.Context) (CategoryReport, error) {
	items, err := s.categories.TotalsByCategory(ctx)
	if err != nil {
		return CategoryReport{}, fmt.Errorf("totals by category: %w", err)
	}

	report := CategoryReport{Items: items}
	for _, item := range items {
		report.GrandTotal.TotalIncome = report.GrandTotal.TotalIncome.Add(item.TotalIncome)
		report.GrandTotal.TotalExpense = report.GrandTotal.TotalExpense.Add(item.TotalExpense)
	}
	report.GrandTotal.Balance = report.GrandTotal.TotalIncome.Sub(report.GrandTotal.TotalExpense)

	s.logger.Debug("Computed totals by category", "rows", len(items))
	return report, nil
}
