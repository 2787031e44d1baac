// Package syncer keeps the headline list in sync with the remote feed and the reading list
// and publishes a state machine for the presentation layer.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/0x0BSoD/heroNews/internal/broadcast"
	"github.com/0x0BSoD/heroNews/internal/model"
	"github.com/0x0BSoD/heroNews/internal/schedule"
	"github.com/0x0BSoD/heroNews/internal/source"
	"github.com/0x0BSoD/heroNews/internal/viewmodel"
)

const (
	DefaultRefreshInterval = 60 * time.Second

	OfflineMessage = "No internet connection."
)

var ErrIndexOutOfRange = errors.New("row index out of range")

type Feed interface {
	Fetch(ctx context.Context) ([]model.Article, error)
}

type ReadingList interface {
	Add(ctx context.Context, article model.Article) error
	Remove(ctx context.Context, article model.Article) error
	List(ctx context.Context) ([]model.Article, error)
}

type Connectivity interface {
	IsConnected() bool
	Subscribe(fn func(connected bool)) (unsubscribe func())
}

type Option func(e *Engine)

// WithRefreshInterval sets the auto-refresh period. Defaults to one minute.
func WithRefreshInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.refreshInterval = d
		}
	}
}

// WithFetchTimeout bounds each feed and reading-list request. Zero leaves
// timeouts to the collaborators.
func WithFetchTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.fetchTimeout = d
	}
}

// WithClock replaces time.Now for row projection.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithRefreshErrorHandler is called with every silent refresh failure.
// The failure is never surfaced as a state.
func WithRefreshErrorHandler(fn func(error)) Option {
	return func(e *Engine) {
		e.onRefreshError = fn
	}
}

type Engine struct {
	feed  Feed
	list  ReadingList
	netOK Connectivity

	refreshInterval time.Duration
	fetchTimeout    time.Duration
	now             func() time.Time
	onRefreshError  func(error)

	ctx    context.Context
	cancel context.CancelFunc
	lifeMu sync.Mutex
	wg     sync.WaitGroup
	closed atomic.Bool

	mu        sync.RWMutex
	state     State
	all       []model.Article
	filtered  []model.Article
	searching bool
	query     string
	saved     map[uuid.UUID]struct{}

	timerMu sync.Mutex
	timer   *schedule.Handle

	refreshing atomic.Bool

	events         *broadcast.Hub[Event]
	unsubscribeNet func()
}

// New wires the engine and subscribes it to connectivity transitions:
// going online resumes auto-refresh (and loads when nothing is shown yet),
// going offline suspends it.
func New(feed Feed, list ReadingList, netOK Connectivity, opts ...Option) *Engine {
	ctx, cancel := context.WithCancel(context.Background())

	e := &Engine{
		feed:            feed,
		list:            list,
		netOK:           netOK,
		refreshInterval: DefaultRefreshInterval,
		now:             time.Now,
		ctx:             ctx,
		cancel:          cancel,
		state:           State{Phase: PhaseIdle},
		saved:           map[uuid.UUID]struct{}{},
		events:          broadcast.New[Event](),
	}
	for _, o := range opts {
		o(e)
	}

	e.unsubscribeNet = netOK.Subscribe(e.connectivityChanged)

	return e
}

// Subscribe registers fn for every event. Events are delivered in order on
// a single goroutine; fn may call back into the engine.
func (e *Engine) Subscribe(fn func(Event)) (unsubscribe func()) {
	return e.events.Subscribe(fn)
}

// Close stops auto-refresh, waits for in-flight work and stops delivery.
func (e *Engine) Close() {
	e.lifeMu.Lock()
	if e.closed.Load() {
		e.lifeMu.Unlock()
		return
	}
	e.closed.Store(true)
	e.lifeMu.Unlock()

	e.unsubscribeNet()
	e.StopAutoRefresh()
	e.cancel()
	e.wg.Wait()
	e.events.Close()
}

func (e *Engine) connectivityChanged(connected bool) {
	if !connected {
		slog.Info("offline, suspending auto-refresh")
		e.StopAutoRefresh()
		return
	}

	e.mu.RLock()
	empty := len(e.all) == 0
	e.mu.RUnlock()

	if empty {
		e.LoadNews()
	}
	e.StartAutoRefresh()
}

// LoadNews fetches the feed and the reading list concurrently and replaces
// the displayed data when both succeed. It returns immediately; the outcome
// arrives as a Success or Error state.
func (e *Engine) LoadNews() {
	if !e.netOK.IsConnected() {
		e.setState(State{Phase: PhaseError, Message: OfflineMessage})
		return
	}

	e.setState(State{Phase: PhaseLoading})
	e.async(e.load)
}

func (e *Engine) load(ctx context.Context) {
	var articles, saved []model.Article

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		articles, err = e.fetchFeed(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		saved, err = e.fetchSaved(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		slog.Error("failed to load news", "err", err)
		e.setState(State{Phase: PhaseError, Message: err.Error()})
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.all = articles
	e.saved = lo.SliceToMap(saved, func(a model.Article) (uuid.UUID, struct{}) {
		return a.ID, struct{}{}
	})
	if !e.searching {
		e.filtered = articles
	}

	slog.Info("news loaded", "articles", len(articles), "saved", len(saved))
	e.setStateLocked(State{Phase: PhaseSuccess})
}

// StartAutoRefresh (re)starts the periodic silent refresh. Any running
// timer is stopped first, so repeated calls never stack timers. It does
// nothing while offline.
func (e *Engine) StartAutoRefresh() {
	e.timerMu.Lock()
	defer e.timerMu.Unlock()

	e.timer.Stop()
	e.timer = nil

	if e.closed.Load() || !e.netOK.IsConnected() {
		return
	}

	e.timer = schedule.Every(e.refreshInterval, e.silentRefresh)
}

// StopAutoRefresh cancels the timer. No silent refresh starts after it
// returns; one already in flight still completes.
func (e *Engine) StopAutoRefresh() {
	e.timerMu.Lock()
	defer e.timerMu.Unlock()

	e.timer.Stop()
	e.timer = nil
}

// silentRefresh fetches only the feed and publishes EventNewHeadlines when
// the content changed. Failures are logged and never become a state. At
// most one silent refresh runs at a time.
func (e *Engine) silentRefresh() {
	if !e.netOK.IsConnected() {
		return
	}
	if !e.refreshing.CompareAndSwap(false, true) {
		slog.Debug("silent refresh still running, skipping tick")
		return
	}

	started := e.async(func(ctx context.Context) {
		defer e.refreshing.Store(false)

		articles, err := e.fetchFeed(ctx)
		if err != nil {
			if source.IsTransient(err) {
				slog.Warn("silent refresh failed", "err", err)
			} else {
				slog.Error("silent refresh failed", "err", err)
			}
			if e.onRefreshError != nil {
				e.onRefreshError(err)
			}
			return
		}

		e.mu.Lock()
		defer e.mu.Unlock()

		if model.SameHeadlines(articles, e.all) {
			slog.Debug("silent refresh: no changes")
			return
		}

		e.all = articles
		if !e.searching {
			e.filtered = articles
		}
		e.state = State{Phase: PhaseSuccess}

		slog.Info("new headlines fetched", "articles", len(articles))
		e.events.Publish(Event{Kind: EventNewHeadlines, State: e.state})
	})
	if !started {
		e.refreshing.Store(false)
	}
}

// Search filters the displayed rows by a case-insensitive substring of the
// title, summary or source. An empty query shows everything again.
func (e *Engine) Search(query string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if query == "" {
		e.searching = false
		e.query = ""
		e.filtered = e.all
		e.setStateLocked(State{Phase: PhaseSuccess})
		return
	}

	e.searching = true
	e.query = query

	needle := strings.ToLower(query)
	e.filtered = lo.Filter(e.all, func(a model.Article, _ int) bool {
		return strings.Contains(strings.ToLower(a.Title), needle) ||
			strings.Contains(strings.ToLower(a.Summary), needle) ||
			strings.Contains(strings.ToLower(a.Source), needle)
	})

	e.setStateLocked(State{Phase: PhaseSuccess})
}

// ToggleSaved flips the saved flag of the displayed row at index and
// returns the article it applied to. The flag changes and EventRowsUpdated
// is published before the reading list is written; if the write fails the
// flag is restored and the row published again.
func (e *Engine) ToggleSaved(ctx context.Context, index int) (model.Article, Toggle, error) {
	e.mu.Lock()
	if index < 0 || index >= len(e.filtered) {
		e.mu.Unlock()
		return model.Article{}, Removed, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	article := e.filtered[index]
	_, wasSaved := e.saved[article.ID]
	e.setSavedLocked(article.ID, !wasSaved)
	e.events.Publish(Event{Kind: EventRowsUpdated, Rows: []int{index}})
	e.mu.Unlock()

	toggle := Added
	var err error
	if wasSaved {
		toggle = Removed
		err = e.list.Remove(ctx, article)
	} else {
		err = e.list.Add(ctx, article)
	}

	if err != nil {
		e.rollbackSaved(article.ID, wasSaved)
		return article, toggle, fmt.Errorf("updating reading list: %w", err)
	}

	return article, toggle, nil
}

func (e *Engine) rollbackSaved(id uuid.UUID, saved bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, now := e.saved[id]; now == saved {
		return
	}
	e.setSavedLocked(id, saved)

	var rows []int
	for i, a := range e.filtered {
		if a.ID == id {
			rows = append(rows, i)
		}
	}
	if len(rows) > 0 {
		e.events.Publish(Event{Kind: EventRowsUpdated, Rows: rows})
	}
}

func (e *Engine) setSavedLocked(id uuid.UUID, saved bool) {
	if saved {
		e.saved[id] = struct{}{}
	} else {
		delete(e.saved, id)
	}
}

func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Query returns the active search text, "" when not searching.
func (e *Engine) Query() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.query
}

// Headlines returns the full feed, ignoring any active search.
func (e *Engine) Headlines() []model.Article {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.all)
}

func (e *Engine) RowCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.filtered)
}

func (e *Engine) ArticleAt(index int) (model.Article, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if index < 0 || index >= len(e.filtered) {
		return model.Article{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return e.filtered[index], nil
}

func (e *Engine) RowViewModelAt(index int) (viewmodel.Row, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if index < 0 || index >= len(e.filtered) {
		return viewmodel.Row{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	a := e.filtered[index]
	_, saved := e.saved[a.ID]

	return viewmodel.NewRow(a, saved, e.now()), nil
}

// Rows projects the displayed rows in [offset, offset+limit).
func (e *Engine) Rows(offset, limit int) []viewmodel.Row {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if offset < 0 || offset >= len(e.filtered) || limit <= 0 {
		return nil
	}
	end := min(offset+limit, len(e.filtered))
	now := e.now()

	rows := make([]viewmodel.Row, 0, end-offset)
	for _, a := range e.filtered[offset:end] {
		_, saved := e.saved[a.ID]
		rows = append(rows, viewmodel.NewRow(a, saved, now))
	}
	return rows
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setStateLocked(s)
}

// setStateLocked publishes while holding mu so the event order always
// matches the order in which State() changed.
func (e *Engine) setStateLocked(s State) {
	e.state = s
	e.events.Publish(Event{Kind: EventStateChanged, State: s})
}

// async runs fn on its own goroutine, tracked for Close.
func (e *Engine) async(fn func(ctx context.Context)) bool {
	e.lifeMu.Lock()
	defer e.lifeMu.Unlock()

	if e.closed.Load() {
		return false
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn(e.ctx)
	}()

	return true
}

func (e *Engine) fetchFeed(ctx context.Context) ([]model.Article, error) {
	if e.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.fetchTimeout)
		defer cancel()
	}
	return e.feed.Fetch(ctx)
}

func (e *Engine) fetchSaved(ctx context.Context) ([]model.Article, error) {
	if e.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.fetchTimeout)
		defer cancel()
	}
	return e.list.List(ctx)
}
