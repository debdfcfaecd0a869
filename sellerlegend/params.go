package sellerlegend

import (
	"net/url"
	"strconv"

	"github.com/sellerlegend/go-sellerlegend/internal/validate"
)

// DefaultPerPage is the page size sent when a params struct leaves PerPage
// at zero. List endpoints accept 500, 1000 or 2000 rows per page.
const DefaultPerPage = 500

// Sales channel values for the endpoints that split Amazon revenue from the
// rest.
const (
	SalesChannelAmazon    = "amazon"
	SalesChannelNonAmazon = "non-amazon"
)

// View axes for the statistics dashboard.
const (
	ViewByProduct = "product"
	ViewByDate    = "date"
)

var salesChannels = []string{SalesChannelAmazon, SalesChannelNonAmazon}
var viewByValues = []string{ViewByProduct, ViewByDate}

// AccountFilter narrows a call to one connected selling account. All fields
// are optional; SellerID and MarketplaceID identify an account together, the
// provider ignores one without the other.
type AccountFilter struct {
	AccountTitle  string
	SellerID      string
	MarketplaceID string
	AccountID     int
}

func (f AccountFilter) validate() error {
	return validate.PositiveInt(f.AccountID, "account_id")
}

func (f AccountFilter) apply(query url.Values) {
	setNonEmpty(query, "account_title", f.AccountTitle)
	setNonEmpty(query, "seller_id", f.SellerID)
	setNonEmpty(query, "marketplace_id", f.MarketplaceID)
	if f.AccountID > 0 {
		query.Set("account_id", strconv.Itoa(f.AccountID))
	}
}

func (f AccountFilter) applyBody(body map[string]any) {
	putNonEmpty(body, "account_title", f.AccountTitle)
	putNonEmpty(body, "seller_id", f.SellerID)
	putNonEmpty(body, "marketplace_id", f.MarketplaceID)
	if f.AccountID > 0 {
		body["account_id"] = f.AccountID
	}
}

// ProductFilter narrows a call to one product. Set at most one identifier;
// the provider resolves them in SKU, ASIN, parent ASIN order.
type ProductFilter struct {
	SKU        string
	ASIN       string
	ParentASIN string
}

func (f ProductFilter) validate() error {
	return validate.ASIN(f.ASIN)
}

func (f ProductFilter) apply(query url.Values) {
	setNonEmpty(query, "sku", f.SKU)
	setNonEmpty(query, "asin", f.ASIN)
	setNonEmpty(query, "parent_asin", f.ParentASIN)
}

func (f ProductFilter) applyBody(body map[string]any) {
	putNonEmpty(body, "sku", f.SKU)
	putNonEmpty(body, "asin", f.ASIN)
	putNonEmpty(body, "parent_asin", f.ParentASIN)
}

// perPageValue substitutes the default page size for an unset PerPage.
func perPageValue(perPage int) int {
	if perPage == 0 {
		return DefaultPerPage
	}
	return perPage
}

func setNonEmpty(query url.Values, key, value string) {
	if value != "" {
		query.Set(key, value)
	}
}

func putNonEmpty(body map[string]any, key, value string) {
	if value != "" {
		body[key] = value
	}
}
