// Package pipeline orchestrates fetch-with-fallback for each configured
// feed: fetch, normalize, persist the snapshot, and on transport failure
// substitute the previously persisted dataset. Transport errors stop here —
// they become provenance, never panics or re-thrown errors.
package pipeline

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"dealscope/pkg/dataset"
	"dealscope/pkg/feed"
	"dealscope/pkg/storage"
)

// Provenance says where the active dataset came from.
type Provenance string

const (
	ProvenanceLive   Provenance = "live"
	ProvenanceCached Provenance = "cached"
	ProvenanceNone   Provenance = "none"
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// nopLogger silently discards all messages.
type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Fetcher retrieves one feed table. Implemented by feed.Client.
type Fetcher interface {
	Fetch(ctx context.Context, url, format string) (*feed.Table, error)
}

// Store persists and restores snapshots. Implemented by storage.DB.
type Store interface {
	SaveSnapshot(ctx context.Context, feedKey, label string, records []dataset.ActivityRecord, fetchedAt time.Time) error
	LoadSnapshot(ctx context.Context, feedKey string) (*storage.Snapshot, error)
}

// FeedConfig parameterizes one generic pipeline instance. Both source feeds
// (deal and CLO logs) run the exact same code with different URLs and
// column maps.
type FeedConfig struct {
	Key    string
	Label  string
	URL    string
	Format string // feed.FormatCSV or feed.FormatGviz; empty means CSV
	Schema dataset.Schema
}

// State is what the presentation layer sees: the active dataset, where it
// came from, and when it was fetched. A refresh swaps the whole state at
// once; readers never observe a half-applied result. Records must be
// treated as read-only.
type State struct {
	Provenance Provenance               `json:"provenance"`
	FetchedAt  time.Time                `json:"fetchedAt"`
	Records    []dataset.ActivityRecord `json:"-"`
	Loading    bool                     `json:"loading"`
	LastError  string                   `json:"lastError,omitempty"`
}

// Dataset owns the fetch-with-fallback state machine for one feed.
type Dataset struct {
	cfg     FeedConfig
	fetcher Fetcher
	store   Store
	log     Logger
	now     func() time.Time

	mu      sync.Mutex
	state   State
	loading bool
}

// NewDataset starts in the none state; call Restore or Refresh to populate.
func NewDataset(cfg FeedConfig, fetcher Fetcher, store Store, log Logger) *Dataset {
	if log == nil {
		log = nopLogger{}
	}
	return &Dataset{
		cfg:     cfg,
		fetcher: fetcher,
		store:   store,
		log:     log,
		now:     time.Now,
		state:   State{Provenance: ProvenanceNone},
	}
}

// Config returns the feed configuration this dataset runs with.
func (d *Dataset) Config() FeedConfig { return d.cfg }

// State returns the current display state.
func (d *Dataset) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := d.state
	st.Loading = d.loading
	return st
}

// Restore loads the persisted snapshot without touching the network, so a
// restart shows cached data until the user refreshes. Missing snapshots are
// not an error; the dataset just stays in the none state.
func (d *Dataset) Restore(ctx context.Context) error {
	snap, err := d.store.LoadSnapshot(ctx, d.cfg.Key)
	if errors.Is(err, storage.ErrNoSnapshot) {
		return nil
	}
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = State{Provenance: ProvenanceCached, FetchedAt: snap.FetchedAt, Records: snap.Records}
	return nil
}

// Refresh fetches the feed once and resolves to live, cached, or none.
// Refresh is user-initiated only and serialized: a trigger while another
// refresh is in flight is ignored and returns the current state, so a slow
// response can never overwrite a fresher one. The previous dataset stays
// visible until the new outcome resolves.
func (d *Dataset) Refresh(ctx context.Context) State {
	d.mu.Lock()
	if d.loading {
		st := d.state
		st.Loading = true
		d.mu.Unlock()
		return st
	}
	d.loading = true
	d.mu.Unlock()

	st := d.doRefresh(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	d.state = st
	return st
}

func (d *Dataset) doRefresh(ctx context.Context) State {
	table, err := d.fetcher.Fetch(ctx, d.cfg.URL, d.cfg.Format)
	if err != nil {
		d.log.Warnf("feed %s: fetch failed: %v", d.cfg.Key, err)
		return d.fallback(ctx, err)
	}

	cm, err := dataset.ResolveColumns(d.cfg.Schema, table.Header)
	if err != nil {
		d.log.Warnf("feed %s: %v", d.cfg.Key, err)
		return d.fallback(ctx, err)
	}

	records := dataset.NormalizeTable(cm, table.Rows)
	fetchedAt := d.now().UTC().Truncate(time.Second)
	d.log.Infof("feed %s: fetched %d rows, %d records", d.cfg.Key, len(table.Rows), len(records))

	if err := d.store.SaveSnapshot(ctx, d.cfg.Key, d.cfg.Label, records, fetchedAt); err != nil {
		// The live data is still good; only the fallback copy is stale.
		d.log.Errorf("feed %s: persist snapshot: %v", d.cfg.Key, err)
	}
	return State{Provenance: ProvenanceLive, FetchedAt: fetchedAt, Records: records}
}

// fallback restores the last persisted snapshot after a failed fetch. The
// reported timestamp is the snapshot's original fetch time, not now.
func (d *Dataset) fallback(ctx context.Context, cause error) State {
	snap, err := d.store.LoadSnapshot(ctx, d.cfg.Key)
	if err != nil {
		if !errors.Is(err, storage.ErrNoSnapshot) {
			d.log.Errorf("feed %s: load snapshot: %v", d.cfg.Key, err)
		}
		return State{Provenance: ProvenanceNone, LastError: cause.Error()}
	}
	d.log.Infof("feed %s: serving cached snapshot from %s", d.cfg.Key, snap.FetchedAt.Format(time.RFC3339))
	return State{Provenance: ProvenanceCached, FetchedAt: snap.FetchedAt, Records: snap.Records, LastError: cause.Error()}
}

// Manager holds one Dataset per configured feed, in configuration order.
type Manager struct {
	keys []string
	sets map[string]*Dataset
}

func NewManager(cfgs []FeedConfig, fetcher Fetcher, store Store, log Logger) *Manager {
	m := &Manager{sets: make(map[string]*Dataset, len(cfgs))}
	for _, cfg := range cfgs {
		if _, dup := m.sets[cfg.Key]; dup {
			continue
		}
		m.keys = append(m.keys, cfg.Key)
		m.sets[cfg.Key] = NewDataset(cfg, fetcher, store, log)
	}
	sort.Strings(m.keys)
	return m
}

// Keys returns the feed keys, sorted.
func (m *Manager) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Dataset returns the pipeline for one feed key.
func (m *Manager) Dataset(key string) (*Dataset, bool) {
	d, ok := m.sets[key]
	return d, ok
}

// RestoreAll loads every persisted snapshot; individual failures are
// returned but don't stop the others.
func (m *Manager) RestoreAll(ctx context.Context) error {
	var firstErr error
	for _, k := range m.keys {
		if err := m.sets[k].Restore(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RefreshAll refreshes every feed sequentially and returns the resulting
// states keyed by feed.
func (m *Manager) RefreshAll(ctx context.Context) map[string]State {
	out := make(map[string]State, len(m.keys))
	for _, k := range m.keys {
		out[k] = m.sets[k].Refresh(ctx)
	}
	return out
}
