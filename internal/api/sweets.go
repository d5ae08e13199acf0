// ABOUTME: Inventory operations against the sweet shop service.
// ABOUTME: List/search snapshots plus create, update, delete, restock, purchase.

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultRestockAmount is used when Restock is called with a non-positive
// amount, matching the service's own default.
const DefaultRestockAmount = 10

// List fetches the full inventory snapshot. Anonymous callers are allowed.
func (c *Client) List(ctx context.Context) ([]Sweet, error) {
	var sweets []Sweet
	if err := c.do(ctx, http.MethodGet, "/sweets/", nil, nil, &sweets); err != nil {
		return nil, err
	}
	return sweets, nil
}

// Search fetches a filtered snapshot. Unset filter fields are omitted from
// the query string entirely, never sent as empty or zero.
func (c *Client) Search(ctx context.Context, f Filters) ([]Sweet, error) {
	query := url.Values{}
	if f.Name != nil {
		query.Set("name", *f.Name)
	}
	if f.Category != nil {
		query.Set("category", *f.Category)
	}
	if f.MinPrice != nil {
		query.Set("min_price", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		query.Set("max_price", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}

	var sweets []Sweet
	if err := c.do(ctx, http.MethodGet, "/sweets/search", query, nil, &sweets); err != nil {
		return nil, err
	}
	return sweets, nil
}

// Create adds a new sweet. Admin only; the service assigns the ID.
func (c *Client) Create(ctx context.Context, draft Draft) (*Sweet, error) {
	var sweet Sweet
	if err := c.do(ctx, http.MethodPost, "/sweets/", nil, draft, &sweet); err != nil {
		return nil, err
	}
	return &sweet, nil
}

// Update replaces the named sweet's fields. Admin only.
func (c *Client) Update(ctx context.Context, id int64, draft Draft) (*Sweet, error) {
	var sweet Sweet
	path := fmt.Sprintf("/sweets/%d", id)
	if err := c.do(ctx, http.MethodPut, path, nil, draft, &sweet); err != nil {
		return nil, err
	}
	return &sweet, nil
}

// Delete removes the named sweet. Admin only.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/sweets/%d", id), nil, nil, nil)
}

// Restock increases the named sweet's stock by amount. A non-positive amount
// falls back to DefaultRestockAmount. Admin only.
func (c *Client) Restock(ctx context.Context, id int64, amount int) (*Sweet, error) {
	if amount <= 0 {
		amount = DefaultRestockAmount
	}

	query := url.Values{}
	query.Set("amount", strconv.Itoa(amount))

	var sweet Sweet
	path := fmt.Sprintf("/sweets/%d/restock", id)
	if err := c.do(ctx, http.MethodPost, path, query, nil, &sweet); err != nil {
		return nil, err
	}
	return &sweet, nil
}

// Purchase decrements the named sweet's stock by one. The decrement happens
// server-side; the client never computes stock locally. The service rejects a
// purchase against zero stock with a 400 and leaves the quantity at zero.
func (c *Client) Purchase(ctx context.Context, id int64) (*Sweet, error) {
	var sweet Sweet
	path := fmt.Sprintf("/sweets/%d/purchase", id)
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &sweet); err != nil {
		return nil, err
	}
	return &sweet, nil
}
