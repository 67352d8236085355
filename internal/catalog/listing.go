package catalog

import (
	"context"
	"sync"

	"nursery/internal/apperrors"
	"nursery/internal/models"
)

// Finder runs a composed Query against the plant store and returns one
// page of rows plus the exact count of matching rows.
type Finder interface {
	FindPlants(ctx context.Context, q Query) ([]models.Plant, int64, error)
}

// Result is one page of a plant listing.
type Result struct {
	Plants     []models.Plant `json:"plants"`
	TotalCount int64          `json:"total_count"`
	HasMore    bool           `json:"has_more"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
}

// Search runs cfg once without keeping any state.
func Search(ctx context.Context, finder Finder, cfg Config) (Result, error) {
	cfg = cfg.Normalize()
	plants, total, err := finder.FindPlants(ctx, Compose(cfg))
	if err != nil {
		return Result{}, apperrors.DataStore("catalog.Search", err)
	}
	if plants == nil {
		plants = []models.Plant{}
	}
	return Result{
		Plants:     plants,
		TotalCount: total,
		HasMore:    cfg.HasMore(total),
		Page:       cfg.Page,
		PageSize:   cfg.PageSize,
	}, nil
}

// State is what a viewer of a Listing sees.
type State struct {
	Config     Config         `json:"config"`
	Plants     []models.Plant `json:"plants"`
	Loading    bool           `json:"loading"`
	Err        error          `json:"-"`
	TotalCount int64          `json:"total_count"`
	HasMore    bool           `json:"has_more"`
}

// Listing keeps the result of the most recently requested configuration.
// Each Load bumps a version; a response is applied only if its version is
// still the latest, so a slow response for an old configuration never
// replaces a newer one.
type Listing struct {
	finder Finder

	mu      sync.Mutex
	version uint64
	issued  bool
	state   State
}

// NewListing creates an empty listing backed by finder.
func NewListing(finder Finder) *Listing {
	return &Listing{
		finder: finder,
		state:  State{Config: DefaultConfig().Normalize(), Plants: []models.Plant{}},
	}
}

// State returns a copy of the current state.
func (l *Listing) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// Load switches the listing to cfg and queries the store, unless cfg is
// the configuration already loaded or loading. It returns the state after
// its own response was handled, which is the newer state when the request
// was superseded meanwhile.
func (l *Listing) Load(ctx context.Context, cfg Config) State {
	cfg = cfg.Normalize()

	l.mu.Lock()
	if l.issued && l.state.Config.Equal(cfg) && l.state.Err == nil {
		defer l.mu.Unlock()
		return l.snapshot()
	}
	l.mu.Unlock()

	return l.fetch(ctx, cfg)
}

// Refresh re-issues the current configuration.
func (l *Listing) Refresh(ctx context.Context) State {
	l.mu.Lock()
	cfg := l.state.Config
	l.mu.Unlock()
	return l.fetch(ctx, cfg)
}

func (l *Listing) fetch(ctx context.Context, cfg Config) State {
	l.mu.Lock()
	l.version++
	version := l.version
	l.issued = true
	l.state.Config = cfg
	l.state.Loading = true
	l.mu.Unlock()

	plants, total, err := l.finder.FindPlants(ctx, Compose(cfg))

	l.mu.Lock()
	defer l.mu.Unlock()
	if version != l.version {
		return l.snapshot()
	}
	l.state.Loading = false
	if err != nil {
		l.state.Err = apperrors.DataStore("catalog.Listing", err)
		return l.snapshot()
	}
	if plants == nil {
		plants = []models.Plant{}
	}
	l.state.Err = nil
	l.state.Plants = plants
	l.state.TotalCount = total
	l.state.HasMore = cfg.HasMore(total)
	return l.snapshot()
}

func (l *Listing) snapshot() State {
	s := l.state
	s.Plants = make([]models.Plant, len(l.state.Plants))
	copy(s.Plants, l.state.Plants)
	return s
}
