package sellerlegend

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/sellerlegend/go-sellerlegend/apierror"
)

// CostsService manages cost of goods sold periods.
type CostsService struct {
	client *Client
}

// CostPeriodParams narrow cost period calls to one product or account.
type CostPeriodParams struct {
	Product ProductFilter
	Account AccountFilter
}

func (p *CostPeriodParams) validate() error {
	if p == nil {
		return nil
	}
	if err := p.Product.validate(); err != nil {
		return err
	}
	return p.Account.validate()
}

func (p *CostPeriodParams) query() url.Values {
	query := url.Values{}
	if p != nil {
		p.Product.apply(query)
		p.Account.apply(query)
	}
	return query
}

// CostPeriods lists cost periods for the matched products.
func (s *CostsService) CostPeriods(ctx context.Context, params *CostPeriodParams) (*Page, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	return s.client.page(ctx, "cogs/cost-periods", params.query())
}

// UpdateCostPeriods creates or replaces cost periods. Each entry is sent
// verbatim; the provider owns the entry schema.
func (s *CostsService) UpdateCostPeriods(ctx context.Context, entries []map[string]any, params *CostPeriodParams) (json.RawMessage, error) {
	if len(entries) == 0 {
		return nil, apierror.Validation("data is required for updating cost periods")
	}
	if err := params.validate(); err != nil {
		return nil, err
	}

	body := map[string]any{"data": entries}
	if params != nil {
		params.Product.applyBody(body)
		params.Account.applyBody(body)
	}

	var result json.RawMessage
	if err := s.client.post(ctx, "cogs/cost-periods", body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteCostPeriods removes the cost periods matching the filters.
func (s *CostsService) DeleteCostPeriods(ctx context.Context, params *CostPeriodParams) (json.RawMessage, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	var result json.RawMessage
	if err := s.client.delete(ctx, "cogs/cost-periods", params.query(), &result); err != nil {
		return nil, err
	}
	return result, nil
}
