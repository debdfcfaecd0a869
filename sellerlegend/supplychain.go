package sellerlegend

import (
	"context"
	"net/url"
	"strconv"

	"github.com/sellerlegend/go-sellerlegend/internal/validate"
)

// SupplyChainService reads replenishment planning data.
type SupplyChainService struct {
	client *Client
}

// RestockParams filter the restock suggestion listing.
type RestockParams struct {
	PerPage  int
	Currency string // ISO 4217 code, converted server-side
	Account  AccountFilter
}

// RestockSuggestions lists products due for replenishment with suggested
// order quantities.
func (s *SupplyChainService) RestockSuggestions(ctx context.Context, params *RestockParams) (*Page, error) {
	if params == nil {
		params = &RestockParams{}
	}
	perPage := perPageValue(params.PerPage)
	if err := validate.PerPage(perPage); err != nil {
		return nil, err
	}
	currency, err := validate.Currency(params.Currency)
	if err != nil {
		return nil, err
	}
	if err := params.Account.validate(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("per_page", strconv.Itoa(perPage))
	setNonEmpty(query, "currency", currency)
	params.Account.apply(query)

	return s.client.page(ctx, "supply-chain/restock-suggestions", query)
}
