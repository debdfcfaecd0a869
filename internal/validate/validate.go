// Package validate holds the parameter checks shared by the resource
// services. Checks run locally before a request is built, so a malformed
// parameter never costs a network round trip. Every failure is a validation
// error from the apierror taxonomy and matches
// errors.Is(err, apierror.ValidationErr).
//
// Helpers treat the zero value as "not provided" and pass it through.
// Required parameters are checked with Required by the caller.
package validate

import (
	"strings"
	"time"

	"github.com/sellerlegend/go-sellerlegend/apierror"
)

// DateLayout is the wire format for all date parameters.
const DateLayout = "2006-01-02"

// PerPageSizes lists the page sizes the provider accepts on list endpoints.
var PerPageSizes = []int{500, 1000, 2000}

// FilterFields lists the product fields list endpoints can filter on.
var FilterFields = []string{"sku", "asin", "parent_asin"}

// Currencies lists the currency codes accepted for monetary conversion.
var Currencies = []string{
	"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "INR", "CNY",
	"MXN", "BRL", "SEK", "SGD", "AED", "TRY", "PLN", "SAR",
}

// Required checks that a mandatory string parameter was provided.
func Required(value string, paramName string) error {
	if value == "" {
		return apierror.Validationf("%s is required", paramName)
	}
	return nil
}

// Date checks that value is a calendar date in YYYY-MM-DD form.
func Date(value string, paramName string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		return apierror.Validationf("invalid date format for %s, expected YYYY-MM-DD", paramName)
	}
	return nil
}

// DateRange checks that end does not precede start. Both bounds must already
// be valid dates. YYYY-MM-DD orders lexically, so a string compare suffices.
func DateRange(start, end string) error {
	if start == "" || end == "" {
		return nil
	}
	if end < start {
		return apierror.Validation("end date must be after or equal to start date")
	}
	return nil
}

// Enum checks that value is one of the allowed values.
func Enum(value string, allowed []string, fieldName string) error {
	if value == "" {
		return nil
	}
	for _, v := range allowed {
		if value == v {
			return nil
		}
	}
	return apierror.Validationf("%s must be one of: %s", fieldName, strings.Join(allowed, ", "))
}

// PerPage checks a page size against the sizes the provider accepts.
func PerPage(perPage int) error {
	if perPage == 0 {
		return nil
	}
	for _, size := range PerPageSizes {
		if perPage == size {
			return nil
		}
	}
	return apierror.Validation("per_page must be 500, 1000, or 2000")
}

// Filter checks a filter field name together with its value. A filter value
// on its own is allowed and ignored by the provider, a filter field without
// a value is rejected here.
func Filter(filterBy, filterValue string) error {
	if filterBy == "" {
		return nil
	}
	if err := Enum(filterBy, FilterFields, "filter_by"); err != nil {
		return err
	}
	if filterValue == "" {
		return apierror.Validation("filter_value is required when filter_by is specified")
	}
	return nil
}

// Currency normalizes a currency code to upper case and checks it against
// the accepted list. The empty string passes through unchanged.
func Currency(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	normalized := strings.ToUpper(value)
	if err := Enum(normalized, Currencies, "currency"); err != nil {
		return "", err
	}
	return normalized, nil
}

// ASIN checks the shape of an Amazon standard identification number.
func ASIN(value string) error {
	if value == "" {
		return nil
	}
	if len(value) != 10 {
		return apierror.Validation("asin must be 10 characters")
	}
	if !strings.HasPrefix(value, "B") {
		return apierror.Validation("asin must start with B")
	}
	return nil
}

// PositiveInt checks an optional numeric identifier. Zero means not provided
// and passes.
func PositiveInt(value int, fieldName string) error {
	if value < 0 {
		return apierror.Validationf("%s must be a positive integer", fieldName)
	}
	return nil
}
