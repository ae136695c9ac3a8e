package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/townworks/townledger/internal/store"
)

// OpenFund returns the fund for a title and month, creating it on first
// use.
func (s *Service) OpenFund(ctx context.Context, actor, title, month string) (int64, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, &ValidationError{Problems: []string{"fund title is required"}}
	}
	if !ValidMonth(month) {
		return 0, &ValidationError{Problems: []string{fmt.Sprintf("invalid fund month %q", month)}}
	}
	id, err := s.store.GetOrCreateFund(ctx, title, month)
	if err != nil {
		return 0, err
	}
	s.audit(ctx, actor, "create", "fund", id, fmt.Sprintf("%s %s", title, month))
	return id, nil
}

// Funds lists all funds with their aggregates.
func (s *Service) Funds(ctx context.Context) ([]store.Fund, error) {
	return s.store.ListFunds(ctx)
}

// Fund loads one fund with its aggregates.
func (s *Service) Fund(ctx context.Context, id int64) (*store.Fund, error) {
	return s.store.GetFund(ctx, id)
}

// CloseFund deletes a fund and its contributions.
func (s *Service) CloseFund(ctx context.Context, actor string, id int64) error {
	if err := s.store.DeleteFund(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, actor, "delete", "fund", id, "")
	return nil
}

// FundContributions lists the entries recorded for one fund.
func (s *Service) FundContributions(ctx context.Context, fundID int64) ([]store.Contribution, error) {
	return s.store.Contributions(ctx, fundID)
}

// SaveFundContributions applies a contribution sheet: positive amounts
// upsert, listed residents are removed.
func (s *Service) SaveFundContributions(ctx context.Context, actor string, fundID int64, upserts []store.Contribution, removed []int64) error {
	for _, c := range upserts {
		if c.Amount <= 0 {
			return &ValidationError{Problems: []string{
				fmt.Sprintf("contribution for resident %d must be positive", c.ResidentID),
			}}
		}
	}
	if err := s.store.SaveContributions(ctx, fundID, upserts, removed); err != nil {
		return err
	}
	s.audit(ctx, actor, "save", "contribution", fundID,
		fmt.Sprintf("%d saved, %d removed", len(upserts), len(removed)))
	return nil
}
