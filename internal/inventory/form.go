// ABOUTME: Form and query drafts with local validation for the controller.
// ABOUTME: Validates required fields and numeric coercion before any network I/O.

package inventory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/2389/sweetshop/internal/api"
)

// Form is the transient draft of a sweet under create or edit. Fields hold
// raw user input; coercion happens at submit time. EditingID discriminates
// create mode (nil) from update mode.
type Form struct {
	Name      string
	Category  string
	Price     string
	Quantity  string
	EditingID *int64
}

// Query holds raw search input. Empty fields are omitted from the remote
// query rather than sent as empty or zero values.
type Query struct {
	Name     string
	Category string
	MinPrice string
	MaxPrice string
}

// ValidationError is a local form problem caught before dispatch. It never
// reaches the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// draft coerces the form into a wire payload. Name and category must be
// non-empty after trimming; price and quantity must parse as numbers.
// Negative values are not rejected here; authoritative validation is the
// service's job.
func (f Form) draft() (api.Draft, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return api.Draft{}, &ValidationError{Field: "name", Reason: "is required"}
	}

	category := strings.TrimSpace(f.Category)
	if category == "" {
		return api.Draft{}, &ValidationError{Field: "category", Reason: "is required"}
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	if err != nil {
		return api.Draft{}, &ValidationError{Field: "price", Reason: "must be a number"}
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(f.Quantity))
	if err != nil {
		return api.Draft{}, &ValidationError{Field: "quantity", Reason: "must be a whole number"}
	}

	return api.Draft{
		Name:     name,
		Category: category,
		Price:    price,
		Quantity: quantity,
	}, nil
}

// filters coerces the query into search filters, omitting unset fields.
func (q Query) filters() (api.Filters, error) {
	var f api.Filters

	if name := strings.TrimSpace(q.Name); name != "" {
		f.Name = &name
	}
	if category := strings.TrimSpace(q.Category); category != "" {
		f.Category = &category
	}

	if raw := strings.TrimSpace(q.MinPrice); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return api.Filters{}, &ValidationError{Field: "min price", Reason: "must be a number"}
		}
		f.MinPrice = &min
	}
	if raw := strings.TrimSpace(q.MaxPrice); raw != "" {
		max, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return api.Filters{}, &ValidationError{Field: "max price", Reason: "must be a number"}
		}
		f.MaxPrice = &max
	}

	return f, nil
}
