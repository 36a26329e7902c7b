package view

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tritonsoft/leadboard/internal/backend"
	"github.com/tritonsoft/leadboard/internal/models"
)

// defaultPageSize mirrors the page size the dashboard views request.
const defaultPageSize = 500

// Store is the pull half of the sync layer as the dashboard consumes it.
// Implemented by *backend.Client.
type Store interface {
	ListContacts(ctx context.Context, token string, f models.FilterParams) (*backend.List[*models.Contact], error)
	ListDemos(ctx context.Context, token string, f models.FilterParams) (*backend.List[*models.Demo], error)
	UpdateContactStatus(ctx context.Context, token, id, status string) (*models.Contact, error)
	UpdateDemoStatus(ctx context.Context, token, id, status string) (*models.Demo, error)
	DeleteContact(ctx context.Context, token, id string) error
	DeleteDemo(ctx context.Context, token, id string) error
}

// Events is the push half. Implemented by *live.Channel.
type Events interface {
	OnNewContact(fn func(models.Contact)) func()
	OnNewDemo(fn func(models.Demo)) func()
	OnContactStatusUpdated(fn func(models.Contact)) func()
	OnDemoStatusUpdated(fn func(models.Demo)) func()
	Connected() bool
}

// Dashboard binds the reconciled contact and demo list views together and
// exposes the derived aggregates the overview reads. It subscribes to the
// shared event channel on Start and detaches every subscription on Close;
// no callback of a closed dashboard ever fires again.
type Dashboard struct {
	store  Store
	events Events
	token  string
	log    *slog.Logger

	Contacts *ListView[*models.Contact]
	Demos    *ListView[*models.Demo]

	mu     sync.Mutex
	filter models.FilterParams
	unsubs []func()
	closed bool
}

// Overview is the derived aggregate set for the dashboard summary.
type Overview struct {
	Connected       bool           `json:"connected"`
	TotalContacts   int            `json:"total_contacts"`
	TotalDemos      int            `json:"total_demos"`
	PendingContacts int            `json:"pending_contacts"`
	PendingDemos    int            `json:"pending_demos"`
	Processing      int            `json:"processing"`
	Qualified       int            `json:"qualified"`
	Leads           int            `json:"leads"`
	Lost            int            `json:"lost"`
	StatusCounts    map[string]int `json:"status_counts"`
}

func NewDashboard(store Store, events Events, token string) *Dashboard {
	return &Dashboard{
		store:    store,
		events:   events,
		token:    token,
		log:      slog.Default().With("component", "dashboard"),
		Contacts: NewListView[*models.Contact](),
		Demos:    NewListView[*models.Demo](),
		filter:   models.FilterParams{Limit: defaultPageSize},
	}
}

// Start subscribes to the event channel and loads the initial snapshots.
// Events delivered while the snapshots are in flight are buffered by the
// list views, so nothing is lost to that race.
func (d *Dashboard) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return errors.New("dashboard is closed")
	}
	d.unsubs = append(d.unsubs,
		d.events.OnNewContact(func(c models.Contact) {
			rec := c
			d.Contacts.AddNew(&rec)
		}),
		d.events.OnContactStatusUpdated(func(c models.Contact) {
			d.Contacts.UpdateStatus(c.ID, c.Status)
		}),
		d.events.OnNewDemo(func(dm models.Demo) {
			rec := dm
			d.Demos.AddNew(&rec)
		}),
		d.events.OnDemoStatusUpdated(func(dm models.Demo) {
			d.Demos.UpdateStatus(dm.ID, dm.Status)
		}),
	)
	d.mu.Unlock()

	return d.Refresh(ctx)
}

// Close detaches every event subscription. The underlying channel is shared
// and stays up; closing a dashboard only stops its own callbacks.
func (d *Dashboard) Close() {
	d.mu.Lock()
	unsubs := d.unsubs
	d.unsubs = nil
	d.closed = true
	d.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

// Refresh issues fresh snapshots for both lists with the current filter.
// Responses from superseded refreshes are discarded by the views.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.mu.Lock()
	filter := d.filter
	d.mu.Unlock()

	cSeq := d.Contacts.BeginSnapshot()
	dSeq := d.Demos.BeginSnapshot()

	var errs []error
	if res, err := d.store.ListContacts(ctx, d.token, filter); err != nil {
		d.Contacts.FailSnapshot(cSeq, err)
		errs = append(errs, err)
	} else {
		d.Contacts.ApplySnapshot(cSeq, res.Items, res.Total, res.Count)
	}
	if res, err := d.store.ListDemos(ctx, d.token, filter); err != nil {
		d.Demos.FailSnapshot(dSeq, err)
		errs = append(errs, err)
	} else {
		d.Demos.ApplySnapshot(dSeq, res.Items, res.Total, res.Count)
	}
	return errors.Join(errs...)
}

// SetFilter replaces the filter criteria and refreshes both lists.
func (d *Dashboard) SetFilter(ctx context.Context, f models.FilterParams) error {
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	d.mu.Lock()
	d.filter = f
	d.mu.Unlock()
	return d.Refresh(ctx)
}

// SetContactStatus optimistically applies a status change and rolls it back
// if the backend rejects it. The later duplicate event for a successful
// change is absorbed by the idempotent merge.
func (d *Dashboard) SetContactStatus(ctx context.Context, id, status string) error {
	previous, ok := d.Contacts.SetStatus(id, status)
	if _, err := d.store.UpdateContactStatus(ctx, d.token, id, status); err != nil {
		if ok {
			d.Contacts.SetStatus(id, previous)
		}
		return err
	}
	return nil
}

// SetDemoStatus is SetContactStatus for demo requests.
func (d *Dashboard) SetDemoStatus(ctx context.Context, id, status string) error {
	previous, ok := d.Demos.SetStatus(id, status)
	if _, err := d.store.UpdateDemoStatus(ctx, d.token, id, status); err != nil {
		if ok {
			d.Demos.SetStatus(id, previous)
		}
		return err
	}
	return nil
}

// RemoveContact optimistically deletes a contact, restoring it at its old
// position if the backend call fails.
func (d *Dashboard) RemoveContact(ctx context.Context, id string) error {
	removed, index, ok := d.Contacts.Remove(id)
	if err := d.store.DeleteContact(ctx, d.token, id); err != nil {
		if ok {
			d.Contacts.Insert(index, removed)
		}
		return err
	}
	return nil
}

// RemoveDemo is RemoveContact for demo requests.
func (d *Dashboard) RemoveDemo(ctx context.Context, id string) error {
	removed, index, ok := d.Demos.Remove(id)
	if err := d.store.DeleteDemo(ctx, d.token, id); err != nil {
		if ok {
			d.Demos.Insert(index, removed)
		}
		return err
	}
	return nil
}

// OnChange registers a hook fired after any change to either list.
func (d *Dashboard) OnChange(fn func()) func() {
	unsubContacts := d.Contacts.OnChange(fn)
	unsubDemos := d.Demos.OnChange(fn)
	return func() {
		unsubContacts()
		unsubDemos()
	}
}

// Overview derives the summary aggregates from the reconciled state.
func (d *Dashboard) Overview() Overview {
	contacts := d.Contacts.State()
	demos := d.Demos.State()

	counts := d.Contacts.StatusCounts()
	for status, n := range d.Demos.StatusCounts() {
		counts[status] += n
	}

	return Overview{
		Connected:       d.events.Connected(),
		TotalContacts:   contacts.Total,
		TotalDemos:      demos.Total,
		PendingContacts: d.Contacts.CountWithStatus(models.ContactStatusPending),
		PendingDemos:    d.Demos.CountWithStatus(models.DemoStatusPending),
		Processing:      counts[models.ContactStatusProcessing],
		Qualified:       counts[models.ContactStatusQualified],
		Leads:           counts[models.ContactStatusLead],
		Lost:            counts[models.ContactStatusLost],
		StatusCounts:    counts,
	}
}
