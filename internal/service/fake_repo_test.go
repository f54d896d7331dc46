package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/mmcdole/cinelist/internal/domain"
)

type repoCall struct {
	method  string
	query   string
	genreID int
	page    int
}

// fakeRepo serves canned pages keyed by page number. Requests for a genre
// listed in gates block until that channel is closed.
type fakeRepo struct {
	mu        sync.Mutex
	calls     []repoCall
	pages     map[int]domain.CatalogPage
	byGenre   map[int]domain.CatalogPage
	errs      map[int]error
	gates     map[int]chan struct{}
	details   map[int]domain.CatalogItem
	genres    []domain.Genre
	genreErrs int // ListGenres fails this many times before succeeding
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		pages:   map[int]domain.CatalogPage{},
		byGenre: map[int]domain.CatalogPage{},
		errs:    map[int]error{},
		gates:   map[int]chan struct{}{},
		details: map[int]domain.CatalogItem{},
	}
}

func items(ids ...int) []domain.CatalogItem {
	out := make([]domain.CatalogItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.CatalogItem{ID: id, Title: fmt.Sprintf("Movie %d", id)})
	}
	return out
}

func itemIDs(list []domain.CatalogItem) []int {
	out := make([]int, 0, len(list))
	for _, item := range list {
		out = append(out, item.ID)
	}
	return out
}

func (r *fakeRepo) setPage(page, totalPages int, ids ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages[page] = domain.CatalogPage{Page: page, TotalPages: totalPages, Items: items(ids...)}
}

func (r *fakeRepo) setError(page int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[page] = err
}

func (r *fakeRepo) callLog() []repoCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]repoCall(nil), r.calls...)
}

func (r *fakeRepo) lastCall() repoCall {
	calls := r.callLog()
	if len(calls) == 0 {
		return repoCall{}
	}
	return calls[len(calls)-1]
}

func (r *fakeRepo) page(ctx context.Context, c repoCall) (domain.CatalogPage, error) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	gate := r.gates[c.genreID]
	r.mu.Unlock()

	if gate != nil && c.method == "discover" {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.CatalogPage{}, ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.errs[c.page]; err != nil {
		return domain.CatalogPage{}, err
	}
	if c.method == "discover" {
		if p, ok := r.byGenre[c.genreID]; ok {
			return p, nil
		}
	}
	return r.pages[c.page], nil
}

func (r *fakeRepo) ListPopular(ctx context.Context, page int) (domain.CatalogPage, error) {
	return r.page(ctx, repoCall{method: "popular", page: page})
}

func (r *fakeRepo) GetDetails(ctx context.Context, id int) (domain.CatalogItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, repoCall{method: "details", page: id})
	item, ok := r.details[id]
	if !ok {
		return domain.CatalogItem{}, domain.NewServerError(404, []byte(`{"status_code":34}`))
	}
	return item, nil
}

func (r *fakeRepo) Search(ctx context.Context, query string, page int) (domain.CatalogPage, error) {
	return r.page(ctx, repoCall{method: "search", query: query, page: page})
}

func (r *fakeRepo) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, repoCall{method: "genres"})
	if r.genreErrs > 0 {
		r.genreErrs--
		return nil, domain.NewRequestFailed(fmt.Errorf("timeout"))
	}
	return r.genres, nil
}

func (r *fakeRepo) Discover(ctx context.Context, genreID int, page int) (domain.CatalogPage, error) {
	return r.page(ctx, repoCall{method: "discover", genreID: genreID, page: page})
}
