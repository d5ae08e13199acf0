// ABOUTME: Inventory controller orchestrating list/search/mutate intents.
// ABOUTME: Keeps the local view consistent via full refresh after every mutation.

package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/2389/sweetshop/internal/api"
)

// Phase is the controller's lifecycle state. The controller never stays in
// PhaseLoading: the initial load always lands in PhaseReady, with either
// items or a message.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
)

// Gateway is the remote surface the controller drives. Implemented by
// *api.Client.
type Gateway interface {
	List(ctx context.Context) ([]api.Sweet, error)
	Search(ctx context.Context, f api.Filters) ([]api.Sweet, error)
	Create(ctx context.Context, draft api.Draft) (*api.Sweet, error)
	Update(ctx context.Context, id int64, draft api.Draft) (*api.Sweet, error)
	Delete(ctx context.Context, id int64) error
	Restock(ctx context.Context, id int64, amount int) (*api.Sweet, error)
	Purchase(ctx context.Context, id int64) (*api.Sweet, error)
}

// Snapshot is the view-facing copy of controller state. Frontends render it
// and never mutate controller state directly.
type Snapshot struct {
	Phase   Phase
	Items   []api.Sweet
	Form    Form
	Query   Query
	Message string

	// Unauthorized is set when the last failure was a 401/403. Frontends
	// decide whether to force a logout; the controller does not touch the
	// session.
	Unauthorized bool
}

// Controller owns the local inventory view. All methods are safe for
// concurrent use; the items list follows last-writer-wins among concurrent
// completions, except that a list/search response superseded by a newer
// request is dropped.
type Controller struct {
	gw     Gateway
	logger *slog.Logger

	// seq tags list/search requests so stale responses can be dropped.
	seq atomic.Uint64

	mu           sync.Mutex
	phase        Phase
	items        []api.Sweet
	form         Form
	query        Query
	message      string
	unauthorized bool
}

// New creates a controller in PhaseIdle. Call Load to populate it.
func New(gw Gateway, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		gw:     gw,
		logger: logger,
		phase:  PhaseIdle,
	}
}

// Snapshot returns a copy of the current view state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]api.Sweet, len(c.items))
	copy(items, c.items)

	return Snapshot{
		Phase:        c.phase,
		Items:        items,
		Form:         c.form,
		Query:        c.query,
		Message:      c.message,
		Unauthorized: c.unauthorized,
	}
}

// Load fetches the full inventory. Used for the initial mount and for the
// explicit reload intent.
func (c *Controller) Load(ctx context.Context) {
	c.mu.Lock()
	c.phase = PhaseLoading
	c.message = ""
	c.unauthorized = false
	c.mu.Unlock()

	seq := c.seq.Add(1)
	items, err := c.gw.List(ctx)
	c.install(seq, items, err)
}

// Search fetches a filtered snapshot built from the current query and
// replaces the items wholesale; results are never merged with the previous
// list. Invalid numeric bounds are caught locally and never dispatched.
func (c *Controller) Search(ctx context.Context) {
	c.mu.Lock()
	query := c.query
	c.message = ""
	c.unauthorized = false
	c.mu.Unlock()

	filters, err := query.filters()
	if err != nil {
		c.setMessage(err)
		return
	}

	seq := c.seq.Add(1)
	items, err := c.gw.Search(ctx, filters)
	c.install(seq, items, err)
}

// ResetSearch clears the query and re-fetches the full inventory.
func (c *Controller) ResetSearch(ctx context.Context) {
	c.mu.Lock()
	c.query = Query{}
	c.message = ""
	c.unauthorized = false
	c.mu.Unlock()

	c.refresh(ctx)
}

// SetQuery replaces the search query. Pure local state; nothing is dispatched
// until Search.
func (c *Controller) SetQuery(q Query) {
	c.mu.Lock()
	c.query = q
	c.mu.Unlock()
}

// SetForm replaces the draft fields, preserving edit mode.
func (c *Controller) SetForm(name, category, price, quantity string) {
	c.mu.Lock()
	c.form.Name = name
	c.form.Category = category
	c.form.Price = price
	c.form.Quantity = quantity
	c.mu.Unlock()
}

// BeginEdit switches the form into update mode, pre-filled from the sweet.
func (c *Controller) BeginEdit(s api.Sweet) {
	id := s.ID
	c.mu.Lock()
	c.form = Form{
		Name:      s.Name,
		Category:  s.Category,
		Price:     strconv.FormatFloat(s.Price, 'f', -1, 64),
		Quantity:  strconv.Itoa(s.Quantity),
		EditingID: &id,
	}
	c.mu.Unlock()
}

// CancelEdit resets the form to empty create mode.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	c.form = Form{}
	c.mu.Unlock()
}

// Submit validates the form and dispatches a create or update depending on
// edit mode. On success the form resets to create mode and the list is
// re-fetched; on failure the form is preserved verbatim so the user can
// correct and resubmit.
func (c *Controller) Submit(ctx context.Context) {
	c.mu.Lock()
	form := c.form
	c.message = ""
	c.unauthorized = false
	c.mu.Unlock()

	draft, err := form.draft()
	if err != nil {
		c.setMessage(err)
		return
	}

	var opErr error
	if form.EditingID != nil {
		_, opErr = c.gw.Update(ctx, *form.EditingID, draft)
	} else {
		_, opErr = c.gw.Create(ctx, draft)
	}

	if opErr != nil {
		c.setMessage(opErr)
		return
	}

	c.mu.Lock()
	if form.EditingID != nil {
		c.message = "Sweet updated successfully"
	} else {
		c.message = "Sweet added successfully"
	}
	c.form = Form{}
	c.mu.Unlock()

	c.refresh(ctx)
}

// Delete removes a sweet, then refreshes unconditionally. A failed delete
// still refreshes: the item may already be gone through another session, and
// the view must reflect server truth either way.
func (c *Controller) Delete(ctx context.Context, id int64) {
	err := c.gw.Delete(ctx, id)
	if err != nil {
		c.setMessage(err)
	} else {
		c.setMessageText("Sweet deleted")
	}

	c.refresh(ctx)
}

// Restock raises a sweet's stock by amount (the gateway applies the default
// for non-positive amounts), then refreshes unconditionally.
func (c *Controller) Restock(ctx context.Context, id int64, amount int) {
	sweet, err := c.gw.Restock(ctx, id, amount)
	if err != nil {
		c.setMessage(err)
	} else {
		c.setMessageText(fmt.Sprintf("Restocked %s, now %d in stock", sweet.Name, sweet.Quantity))
	}

	c.refresh(ctx)
}

// Purchase buys one unit. The decrement is server-side; rapid repeated
// purchases may race and the service legitimately rejects the loser. Either
// outcome is followed by a refresh so the view shows authoritative stock.
func (c *Controller) Purchase(ctx context.Context, id int64) {
	sweet, err := c.gw.Purchase(ctx, id)
	if err != nil {
		c.setMessage(err)
	} else {
		c.setMessageText(fmt.Sprintf("Purchased %s, %d left", sweet.Name, sweet.Quantity))
	}

	c.refresh(ctx)
}

// refresh re-fetches the full list without toggling the phase. Used after
// mutations and for search reset; a superseded response is dropped.
func (c *Controller) refresh(ctx context.Context) {
	seq := c.seq.Add(1)
	items, err := c.gw.List(ctx)
	c.install(seq, items, err)
}

// install applies a list/search completion. The result only wins if no newer
// list/search has been issued since; otherwise it is dropped so stale data
// cannot overwrite a more recent state.
func (c *Controller) install(seq uint64, items []api.Sweet, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if latest := c.seq.Load(); seq != latest {
		c.logger.Debug("dropping superseded inventory response", "seq", seq, "latest", latest)
		return
	}

	c.phase = PhaseReady
	if err != nil {
		c.message = userMessage(err)
		c.unauthorized = api.IsAuth(err)
		return
	}
	c.items = items
}

func (c *Controller) setMessage(err error) {
	c.mu.Lock()
	c.message = userMessage(err)
	c.unauthorized = api.IsAuth(err)
	c.mu.Unlock()
}

func (c *Controller) setMessageText(msg string) {
	c.mu.Lock()
	c.message = msg
	c.unauthorized = false
	c.mu.Unlock()
}

// userMessage flattens any failure into one user-facing line. Remote business
// rejections surface their detail verbatim; transport failures get a generic
// line because there is nothing actionable in them for the user.
func userMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return fmt.Sprintf("request failed with status %d", apiErr.StatusCode)
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Error()
	}

	return "could not reach the sweet shop service"
}
