// ABOUTME: Tests for the inventory controller's state machine and refresh logic.
// ABOUTME: Covers search replacement, form lifecycle, fire-and-refresh, stale drops.

package inventory

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/sweetshop/internal/api"
)

// stubGateway implements Gateway with overridable function fields. Unset
// fields return empty results.
type stubGateway struct {
	listFn     func(ctx context.Context) ([]api.Sweet, error)
	searchFn   func(ctx context.Context, f api.Filters) ([]api.Sweet, error)
	createFn   func(ctx context.Context, d api.Draft) (*api.Sweet, error)
	updateFn   func(ctx context.Context, id int64, d api.Draft) (*api.Sweet, error)
	deleteFn   func(ctx context.Context, id int64) error
	restockFn  func(ctx context.Context, id int64, amount int) (*api.Sweet, error)
	purchaseFn func(ctx context.Context, id int64) (*api.Sweet, error)

	listCalls   atomic.Int32
	searchCalls atomic.Int32
}

func (g *stubGateway) List(ctx context.Context) ([]api.Sweet, error) {
	g.listCalls.Add(1)
	if g.listFn != nil {
		return g.listFn(ctx)
	}
	return nil, nil
}

func (g *stubGateway) Search(ctx context.Context, f api.Filters) ([]api.Sweet, error) {
	g.searchCalls.Add(1)
	if g.searchFn != nil {
		return g.searchFn(ctx, f)
	}
	return nil, nil
}

func (g *stubGateway) Create(ctx context.Context, d api.Draft) (*api.Sweet, error) {
	if g.createFn != nil {
		return g.createFn(ctx, d)
	}
	return &api.Sweet{ID: 1}, nil
}

func (g *stubGateway) Update(ctx context.Context, id int64, d api.Draft) (*api.Sweet, error) {
	if g.updateFn != nil {
		return g.updateFn(ctx, id, d)
	}
	return &api.Sweet{ID: id}, nil
}

func (g *stubGateway) Delete(ctx context.Context, id int64) error {
	if g.deleteFn != nil {
		return g.deleteFn(ctx, id)
	}
	return nil
}

func (g *stubGateway) Restock(ctx context.Context, id int64, amount int) (*api.Sweet, error) {
	if g.restockFn != nil {
		return g.restockFn(ctx, id, amount)
	}
	return &api.Sweet{ID: id}, nil
}

func (g *stubGateway) Purchase(ctx context.Context, id int64) (*api.Sweet, error) {
	if g.purchaseFn != nil {
		return g.purchaseFn(ctx, id)
	}
	return &api.Sweet{ID: id}, nil
}

func newTestController(gw Gateway) *Controller {
	return New(gw, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var (
	ladoo = api.Sweet{ID: 1, Name: "Ladoo", Category: "Indian", Price: 10, Quantity: 5}
	barfi = api.Sweet{ID: 2, Name: "Barfi", Category: "Indian", Price: 15, Quantity: 3}
)

func TestController_Load(t *testing.T) {
	gw := &stubGateway{
		listFn: func(ctx context.Context) ([]api.Sweet, error) {
			return []api.Sweet{ladoo, barfi}, nil
		},
	}
	c := newTestController(gw)

	assert.Equal(t, PhaseIdle, c.Snapshot().Phase)

	c.Load(context.Background())

	snap := c.Snapshot()
	assert.Equal(t, PhaseReady, snap.Phase)
	assert.Equal(t, []api.Sweet{ladoo, barfi}, snap.Items)
	assert.Empty(t, snap.Message)
}

func TestController_Load_FailureLandsInReady(t *testing.T) {
	gw := &stubGateway{
		listFn: func(ctx context.Context) ([]api.Sweet, error) {
			return nil, &api.APIError{StatusCode: 500}
		},
	}
	c := newTestController(gw)

	c.Load(context.Background())

	snap := c.Snapshot()
	assert.Equal(t, PhaseReady, snap.Phase, "controller must never stay stuck in loading")
	assert.Equal(t, "request failed with status 500", snap.Message)
	assert.Empty(t, snap.Items)
}

func TestController_Search_ReplacesItems(t *testing.T) {
	gw := &stubGateway{
		listFn: func(ctx context.Context) ([]api.Sweet, error) {
			return []api.Sweet{ladoo, barfi}, nil
		},
		searchFn: func(ctx context.Context, f api.Filters) ([]api.Sweet, error) {
			return []api.Sweet{ladoo}, nil
		},
	}
	c := newTestController(gw)

	c.Load(context.Background())
	require.Len(t, c.Snapshot().Items, 2)

	c.SetQuery(Query{Name: "Ladoo"})
	c.Search(context.Background())

	// The search result replaces the list wholesale, no client-side merging.
	assert.Equal(t, []api.Sweet{ladoo}, c.Snapshot().Items)
}

func TestController_Search_OmitsEmptyFields(t *testing.T) {
	var got api.Filters
	gw := &stubGateway{
		searchFn: func(ctx context.Context, f api.Filters) ([]api.Sweet, error) {
			got = f
			return nil, nil
		},
	}
	c := newTestController(gw)

	c.SetQuery(Query{Category: "Indian"})
	c.Search(context.Background())

	require.NotNil(t, got.Category)
	assert.Equal(t, "Indian", *got.Category)
	assert.Nil(t, got.Name)
	assert.Nil(t, got.MinPrice)
	assert.Nil(t, got.MaxPrice)
}

func TestController_Search_InvalidBoundNeverDispatches(t *testing.T) {
	gw := &stubGateway{}
	c := newTestController(gw)

	c.SetQuery(Query{MinPrice: "cheap"})
	c.Search(context.Background())

	assert.Equal(t, int32(0), gw.searchCalls.Load())
	assert.Equal(t, "min price must be a number", c.Snapshot().Message)
}

func TestController_ResetSearch(t *testing.T) {
	gw := &stubGateway{
		listFn: func(ctx context.Context) ([]api.Sweet, error) {
			return []api.Sweet{ladoo, barfi}, nil
		},
		searchFn: func(ctx context.Context, f api.Filters) ([]api.Sweet, error) {
			return []api.Sweet{ladoo}, nil
		},
	}
	c := newTestController(gw)

	c.SetQuery(Query{Name: "Ladoo"})
	c.Search(context.Background())
	require.Len(t, c.Snapshot().Items, 1)

	c.ResetSearch(context.Background())

	snap := c.Snapshot()
	assert.Equal(t, Query{}, snap.Query)
	assert.Len(t, snap.Items, 2)
}

func TestController_Submit_Create(t *testing.T) {
	var created api.Draft
	gw := &stubGateway{
		createFn: func(ctx context.Context, d api.Draft) (*api.Sweet, error) {
			created = d
			return &api.Sweet{ID: 9, Name: d.Name, Category: d.Category, Price: d.Price, Quantity: d.Quantity}, nil
		},
		listFn: func(ctx context.Context) ([]api.Sweet, error) {
			return []api.Sweet{{ID: 9, Name: "Ladoo", Category: "Indian", Price: 10, Quantity: 5}}, nil
		},
	}
	c := newTestController(gw)

	c.SetForm("Ladoo", "Indian", "10", "5")
	c.Submit(context.Background())

	assert.Equal(t, api.Draft{Name: "Ladoo", Category: "Indian", Price: 10, Quantity: 5}, created)

	snap := c.Snapshot()
	assert.Equal(t, "Sweet added successfully", snap.Message)
	assert.Equal(t, Form{}, snap.Form, "form resets to create mode on success")
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "Ladoo", snap.Items[0].Name)
	assert.Equal(t, int32(1), gw.listCalls.Load(), "success triggers a full refresh")
}

func TestController_Submit_Update(t *testing.T) {
	var gotID int64
	gw := &stubGateway{
		updateFn: func(ctx context.Context, id int64, d api.Draft) (*api.Sweet, error) {
			gotID = id
			return &api.Sweet{ID: id, Name: d.Name, Category: d.Category, Price: d.Price, Quantity: d.Quantity}, nil
		},
	}
	c := newTestController(gw)

	c.BeginEdit(ladoo)

	form := c.Snapshot().Form
	require.NotNil(t, form.EditingID)
	assert.Equal(t, ladoo.ID, *form.EditingID)
	assert.Equal(t, "Ladoo", form.Name)
	assert.Equal(t, "10", form.Price)
	assert.Equal(t, "5", form.Quantity)

	c.SetForm("Ladoo", "Indian", "12", "5")
	c.Submit(context.Background())

	assert.Equal(t, ladoo.ID, gotID)
	snap := c.Snapshot()
	assert.Equal(t, "Sweet updated successfully", snap.Message)
	assert.Nil(t, snap.Form.EditingID)
}

func TestController_Submit_ValidationNeverDispatches(t *testing.T) {
	tests := []struct {
		name string
		form [4]string // name, category, price, quantity
		want string
	}{
		{name: "empty name", form: [4]string{"", "Indian", "10", "5"}, want: "name is required"},
		{name: "blank category", form: [4]string{"Ladoo", "   ", "10", "5"}, want: "category is required"},
		{name: "non-numeric price", form: [4]string{"Ladoo", "Indian", "ten", "5"}, want: "price must be a number"},
		{name: "fractional quantity", form: [4]string{"Ladoo", "Indian", "10", "5.5"}, want: "quantity must be a whole number"},
		{name: "empty quantity", form: [4]string{"Ladoo", "Indian", "10", ""}, want: "quantity must be a whole number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created := false
			gw := &stubGateway{
				createFn: func(ctx context.Context, d api.Draft) (*api.Sweet, error) {
					created = true
					return &api.Sweet{}, nil
				},
			}
			c := newTestController(gw)

			c.SetForm(tt.form[0], tt.form[1], tt.form[2], tt.form[3])
			c.Submit(context.Background())

			assert.False(t, created, "validation failures must not reach the network")
			assert.Equal(t, tt.want, c.Snapshot().Message)
		})
	}
}

func TestController_Submit_FailurePreservesForm(t *testing.T) {
	gw := &stubGateway{
		createFn: func(ctx context.Context, d api.Draft) (*api.Sweet, error) {
			return nil, &api.APIError{StatusCode: 400, Detail: "Price must be greater than zero"}
		},
	}
	c := newTestController(gw)

	c.SetForm("Ladoo", "Indian", "0", "5")
	c.Submit(context.Background())

	snap := c.Snapshot()
	assert.Equal(t, "Price must be greater than zero", snap.Message)
	assert.Equal(t, "Ladoo", snap.Form.Name, "form is preserved for correction")
	assert.Equal(t, "0", snap.Form.Price)
	assert.Equal(t, int32(0), gw.listCalls.Load(), "failed submit does not refresh")
}

func TestController_Delete_FailureStillRefreshes(t *testing.T) {
	gw := &stubGateway{
		deleteFn: func(ctx context.Context, id int64) error {
			return &api.APIError{StatusCode: 404, Detail: "Sweet not found"}
		},
		listFn: func(ctx context.Context) ([]api.Sweet, error) {
			return []api.Sweet{barfi}, nil
		},
	}
	c := newTestController(gw)

	c.Delete(context.Background(), 1)

	snap := c.Snapshot()
	assert.Equal(t, "Sweet not found", snap.Message)
	assert.Equal(t, []api.Sweet{barfi}, snap.Items, "view reconciles with server truth even after a failed mutation")
	assert.Equal(t, int32(1), gw.listCalls.Load())
}

func TestController_Restock(t *testing.T) {
	var gotAmount int
	gw := &stubGateway{
		restockFn: func(ctx context.Context, id int64, amount int) (*api.Sweet, error) {
			gotAmount = amount
			return &api.Sweet{ID: id, Name: "Ladoo", Quantity: 15}, nil
		},
	}
	c := newTestController(gw)

	c.Restock(context.Background(), 1, 10)

	assert.Equal(t, 10, gotAmount)
	assert.Equal(t, "Restocked Ladoo, now 15 in stock", c.Snapshot().Message)
	assert.Equal(t, int32(1), gw.listCalls.Load())
}

func TestController_Purchase_RaceOnLastUnit(t *testing.T) {
	// Two rapid purchases against quantity 1: the service accepts one and
	// rejects the other; the controller must render both outcomes and end on
	// the authoritative quantity of zero.
	var stock atomic.Int32
	stock.Store(1)

	gw := &stubGateway{
		purchaseFn: func(ctx context.Context, id int64) (*api.Sweet, error) {
			if stock.Add(-1) < 0 {
				stock.Store(0)
				return nil, &api.APIError{StatusCode: 400, Detail: "Sweet is out of stock"}
			}
			return &api.Sweet{ID: id, Name: "Ladoo", Quantity: 0}, nil
		},
	}
	gw.listFn = func(ctx context.Context) ([]api.Sweet, error) {
		return []api.Sweet{{ID: 1, Name: "Ladoo", Quantity: int(max(stock.Load(), 0))}}, nil
	}
	c := newTestController(gw)

	c.Purchase(context.Background(), 1)
	assert.Equal(t, "Purchased Ladoo, 0 left", c.Snapshot().Message)

	c.Purchase(context.Background(), 1)

	snap := c.Snapshot()
	assert.Equal(t, "Sweet is out of stock", snap.Message)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 0, snap.Items[0].Quantity)
	assert.Equal(t, int32(2), gw.listCalls.Load(), "both purchases refresh regardless of outcome")
}

func TestController_UnauthorizedFlag(t *testing.T) {
	gw := &stubGateway{
		deleteFn: func(ctx context.Context, id int64) error {
			return &api.APIError{StatusCode: 403, Detail: "Admin access required"}
		},
	}
	c := newTestController(gw)

	c.Delete(context.Background(), 1)
	assert.True(t, c.Snapshot().Unauthorized)

	// The next clean cycle clears the flag.
	c.Load(context.Background())
	assert.False(t, c.Snapshot().Unauthorized)
}

func TestController_StaleResponseDropped(t *testing.T) {
	// A slow list response must not overwrite the result of a search issued
	// after it: only the most recently initiated request may win.
	firstEntered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	gw := &stubGateway{
		listFn: func(ctx context.Context) ([]api.Sweet, error) {
			if calls.Add(1) == 1 {
				close(firstEntered)
				<-release
				return []api.Sweet{ladoo, barfi}, nil // stale
			}
			return nil, nil
		},
		searchFn: func(ctx context.Context, f api.Filters) ([]api.Sweet, error) {
			return []api.Sweet{ladoo}, nil // newer
		},
	}
	c := newTestController(gw)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Load(context.Background())
	}()

	<-firstEntered
	c.SetQuery(Query{Name: "Ladoo"})
	c.Search(context.Background())
	require.Equal(t, []api.Sweet{ladoo}, c.Snapshot().Items)

	close(release)
	wg.Wait()

	assert.Equal(t, []api.Sweet{ladoo}, c.Snapshot().Items,
		"stale list response must not clobber the newer search result")
}

func TestController_NetworkFailureMessage(t *testing.T) {
	gw := &stubGateway{
		listFn: func(ctx context.Context) ([]api.Sweet, error) {
			return nil, context.DeadlineExceeded
		},
	}
	c := newTestController(gw)

	c.Load(context.Background())

	snap := c.Snapshot()
	assert.Equal(t, "could not reach the sweet shop service", snap.Message)
	assert.False(t, snap.Unauthorized)
}
