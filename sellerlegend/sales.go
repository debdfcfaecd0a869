package sellerlegend

import (
	"context"
	"net/url"
	"strconv"

	"github.com/sellerlegend/go-sellerlegend/internal/validate"
)

// SalesService reads order, revenue and transaction data.
type SalesService struct {
	client *Client
}

// OrdersParams filter the order listing. Zero values are not sent.
type OrdersParams struct {
	PerPage      int    // rows per page, 500, 1000 or 2000
	StartDate    string // YYYY-MM-DD
	EndDate      string // YYYY-MM-DD
	SalesChannel string // SalesChannelAmazon or SalesChannelNonAmazon
	Account      AccountFilter
}

// Orders lists orders in the date window, newest first.
func (s *SalesService) Orders(ctx context.Context, params *OrdersParams) (*Page, error) {
	if params == nil {
		params = &OrdersParams{}
	}
	perPage := perPageValue(params.PerPage)
	if err := validate.PerPage(perPage); err != nil {
		return nil, err
	}
	if err := validate.Date(params.StartDate, "start_date"); err != nil {
		return nil, err
	}
	if err := validate.Date(params.EndDate, "end_date"); err != nil {
		return nil, err
	}
	if err := validate.DateRange(params.StartDate, params.EndDate); err != nil {
		return nil, err
	}
	if err := validate.Enum(params.SalesChannel, salesChannels, "sales_channel"); err != nil {
		return nil, err
	}
	if err := params.Account.validate(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("per_page", strconv.Itoa(perPage))
	setNonEmpty(query, "start_date", params.StartDate)
	setNonEmpty(query, "end_date", params.EndDate)
	setNonEmpty(query, "sales_channel", params.SalesChannel)
	params.Account.apply(query)

	return s.client.page(ctx, "sales/orders", query)
}

// DashboardParams filter the statistics dashboard.
type DashboardParams struct {
	PerPage   int
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	Currency  string // ISO 4217 code, converted server-side
	Account   AccountFilter
}

// StatisticsDashboard reads aggregated sales statistics. viewBy picks the
// axis (ViewByProduct or ViewByDate) and groupBy the bucket within it; valid
// groupBy values depend on the chosen axis.
func (s *SalesService) StatisticsDashboard(ctx context.Context, viewBy, groupBy string, params *DashboardParams) (*Page, error) {
	if params == nil {
		params = &DashboardParams{}
	}
	if err := validate.Required(viewBy, "view_by"); err != nil {
		return nil, err
	}
	if err := validate.Enum(viewBy, viewByValues, "view_by"); err != nil {
		return nil, err
	}
	if err := validate.Required(groupBy, "group_by"); err != nil {
		return nil, err
	}
	perPage := perPageValue(params.PerPage)
	if err := validate.PerPage(perPage); err != nil {
		return nil, err
	}
	if err := validate.Date(params.StartDate, "start_date"); err != nil {
		return nil, err
	}
	if err := validate.Date(params.EndDate, "end_date"); err != nil {
		return nil, err
	}
	if err := validate.DateRange(params.StartDate, params.EndDate); err != nil {
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
	query.Set("view_by", viewBy)
	query.Set("group_by", groupBy)
	query.Set("per_page", strconv.Itoa(perPage))
	setNonEmpty(query, "start_date", params.StartDate)
	setNonEmpty(query, "end_date", params.EndDate)
	setNonEmpty(query, "currency", currency)
	params.Account.apply(query)

	return s.client.page(ctx, "sales/statistics-dashboard", query)
}

// PerDayPerProductParams filter the daily product breakdown.
type PerDayPerProductParams struct {
	PerPage      int
	StartDate    string // YYYY-MM-DD
	EndDate      string // YYYY-MM-DD
	SalesChannel string
	Currency     string
	Account      AccountFilter
}

// PerDayPerProduct lists sales broken down by day and product.
func (s *SalesService) PerDayPerProduct(ctx context.Context, params *PerDayPerProductParams) (*Page, error) {
	if params == nil {
		params = &PerDayPerProductParams{}
	}
	perPage := perPageValue(params.PerPage)
	if err := validate.PerPage(perPage); err != nil {
		return nil, err
	}
	if err := validate.Date(params.StartDate, "start_date"); err != nil {
		return nil, err
	}
	if err := validate.Date(params.EndDate, "end_date"); err != nil {
		return nil, err
	}
	if err := validate.DateRange(params.StartDate, params.EndDate); err != nil {
		return nil, err
	}
	if err := validate.Enum(params.SalesChannel, salesChannels, "sales_channel"); err != nil {
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
	setNonEmpty(query, "start_date", params.StartDate)
	setNonEmpty(query, "end_date", params.EndDate)
	setNonEmpty(query, "sales_channel", params.SalesChannel)
	setNonEmpty(query, "currency", currency)
	params.Account.apply(query)

	return s.client.page(ctx, "sales/per-day-per-product", query)
}

// TransactionsParams filter the financial transaction listing.
type TransactionsParams struct {
	PerPage   int
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	Account   AccountFilter
}

// Transactions lists financial transactions in the date window.
func (s *SalesService) Transactions(ctx context.Context, params *TransactionsParams) (*Page, error) {
	if params == nil {
		params = &TransactionsParams{}
	}
	perPage := perPageValue(params.PerPage)
	if err := validate.PerPage(perPage); err != nil {
		return nil, err
	}
	if err := validate.Date(params.StartDate, "start_date"); err != nil {
		return nil, err
	}
	if err := validate.Date(params.EndDate, "end_date"); err != nil {
		return nil, err
	}
	if err := validate.DateRange(params.StartDate, params.EndDate); err != nil {
		return nil, err
	}
	if err := params.Account.validate(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("per_page", strconv.Itoa(perPage))
	setNonEmpty(query, "start_date", params.StartDate)
	setNonEmpty(query, "end_date", params.EndDate)
	params.Account.apply(query)

	return s.client.page(ctx, "sales/transactions", query)
}
