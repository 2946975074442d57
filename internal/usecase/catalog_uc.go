package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bufaso/shopbot/internal/domain"
)

// catalogTTL is how long a catalog snapshot is served without re-reading
// the sheet.
const catalogTTL = 5 * time.Minute

type snapshot struct {
	categories []domain.Category
	byCategory map[string][]domain.Product
	fetched    time.Time
}

// CatalogUC reads the catalog with a last-known-good snapshot cache: fresh
// data when the store answers, the previous snapshot when a read times out.
// Order-mutating paths never go through here, so stale data can only ever
// reach the menu.
type CatalogUC struct {
	Catalog domain.CatalogRepo
	TTL     time.Duration

	mu   sync.Mutex
	snap *snapshot
}

func NewCatalogUC(catalog domain.CatalogRepo) *CatalogUC {
	return &CatalogUC{Catalog: catalog, TTL: catalogTTL}
}

// Invalidate drops the snapshot; the next read hits the store.
func (uc *CatalogUC) Invalidate() {
	uc.mu.Lock()
	uc.snap = nil
	uc.mu.Unlock()
}

func (uc *CatalogUC) load(ctx context.Context) (*snapshot, error) {
	uc.mu.Lock()
	cached := uc.snap
	uc.mu.Unlock()

	if cached != nil && time.Since(cached.fetched) < uc.TTL {
		return cached, nil
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()
	cats, err := uc.Catalog.Categories(cctx)
	if err == nil {
		byCat := make(map[string][]domain.Product, len(cats))
		for _, c := range cats {
			prods, perr := uc.Catalog.ProductsByCategory(cctx, c.ID)
			if perr != nil {
				err = perr
				break
			}
			byCat[c.ID] = prods
		}
		if err == nil {
			fresh := &snapshot{categories: cats, byCategory: byCat, fetched: time.Now()}
			uc.mu.Lock()
			uc.snap = fresh
			uc.mu.Unlock()
			return fresh, nil
		}
	}

	// Serve the stale snapshot rather than an empty menu.
	if cached != nil {
		log.Warn().Err(err).Msg("catalog read failed, serving cached snapshot")
		return cached, nil
	}
	return nil, storeErr(err)
}

func (uc *CatalogUC) Categories(ctx context.Context) ([]domain.Category, error) {
	snap, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.categories, nil
}

func (uc *CatalogUC) CategoryName(ctx context.Context, categoryID string) string {
	snap, err := uc.load(ctx)
	if err == nil {
		for _, c := range snap.categories {
			if c.ID == categoryID {
				return c.Name
			}
		}
	}
	return "Категория " + categoryID
}

func (uc *CatalogUC) ProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	snap, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.byCategory[categoryID], nil
}

// ProductByID returns the product or domain.ErrNotFound. Variants are
// resolved by the caller per request; they are never cached.
func (uc *CatalogUC) ProductByID(ctx context.Context, id string) (*domain.Product, error) {
	snap, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, prods := range snap.byCategory {
		for i := range prods {
			if prods[i].ID == id {
				p := prods[i]
				return &p, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}
