package sellerlegend

import (
	"context"
	"net/url"
	"strconv"

	"github.com/sellerlegend/go-sellerlegend/internal/validate"
)

// InventoryService reads stock levels and sales velocity.
type InventoryService struct {
	client *Client
}

// InventoryParams filter the inventory listing. The velocity dates bound the
// window the per-product velocity is computed over; FilterBy and FilterValue
// restrict the listing to products matching one field.
type InventoryParams struct {
	PerPage           int
	VelocityStartDate string // YYYY-MM-DD
	VelocityEndDate   string // YYYY-MM-DD
	FilterBy          string // "sku", "asin" or "parent_asin"
	FilterValue       string
	Account           AccountFilter
}

// List reads inventory with velocity calculations.
func (s *InventoryService) List(ctx context.Context, params *InventoryParams) (*Page, error) {
	if params == nil {
		params = &InventoryParams{}
	}
	perPage := perPageValue(params.PerPage)
	if err := validate.PerPage(perPage); err != nil {
		return nil, err
	}
	if err := validate.Date(params.VelocityStartDate, "velocity_start_date"); err != nil {
		return nil, err
	}
	if err := validate.Date(params.VelocityEndDate, "velocity_end_date"); err != nil {
		return nil, err
	}
	if err := validate.DateRange(params.VelocityStartDate, params.VelocityEndDate); err != nil {
		return nil, err
	}
	if err := validate.Filter(params.FilterBy, params.FilterValue); err != nil {
		return nil, err
	}
	if err := params.Account.validate(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("per_page", strconv.Itoa(perPage))
	setNonEmpty(query, "velocity_start_date", params.VelocityStartDate)
	setNonEmpty(query, "velocity_end_date", params.VelocityEndDate)
	setNonEmpty(query, "filter_by", params.FilterBy)
	setNonEmpty(query, "filter_value", params.FilterValue)
	params.Account.apply(query)

	return s.client.page(ctx, "inventory/list", query)
}
