package sellerlegend

import (
	"context"
	"net/url"
	"strconv"

	"github.com/sellerlegend/go-sellerlegend/internal/validate"
)

// WarehouseService reads local warehouse stock and inbound shipments.
type WarehouseService struct {
	client *Client
}

// WarehouseListParams filter the warehouse inventory listing.
type WarehouseListParams struct {
	PerPage int
	Account AccountFilter
}

// List reads warehouse inventory.
func (s *WarehouseService) List(ctx context.Context, params *WarehouseListParams) (*Page, error) {
	if params == nil {
		params = &WarehouseListParams{}
	}
	perPage := perPageValue(params.PerPage)
	if err := validate.PerPage(perPage); err != nil {
		return nil, err
	}
	if err := params.Account.validate(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("per_page", strconv.Itoa(perPage))
	params.Account.apply(query)

	return s.client.page(ctx, "warehouse/list", query)
}

// InboundShipmentsParams filter the inbound shipment listing.
type InboundShipmentsParams struct {
	PerPage     int
	FilterBy    string // "sku", "asin" or "parent_asin"
	FilterValue string
	Account     AccountFilter
}

// InboundShipments lists shipments on their way to a warehouse.
func (s *WarehouseService) InboundShipments(ctx context.Context, params *InboundShipmentsParams) (*Page, error) {
	if params == nil {
		params = &InboundShipmentsParams{}
	}
	perPage := perPageValue(params.PerPage)
	if err := validate.PerPage(perPage); err != nil {
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
	setNonEmpty(query, "filter_by", params.FilterBy)
	setNonEmpty(query, "filter_value", params.FilterValue)
	params.Account.apply(query)

	return s.client.page(ctx, "warehouse/inbound-shipments", query)
}
