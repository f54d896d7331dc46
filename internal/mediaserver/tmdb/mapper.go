package tmdb

import (
	"github.com/mmcdole/cinelist/internal/domain"
)

// MapMovie converts a movie DTO to a domain catalog item.
// IsFavorite is left false; callers stamp it from the favorites store.
func MapMovie(dto MovieDTO) domain.CatalogItem {
	item := domain.CatalogItem{
		Title:        domain.UntitledPlaceholder,
		Overview:     domain.OverviewPlaceholder,
		VoteAverage:  deref(dto.VoteAverage),
		PosterPath:   deref(dto.PosterPath),
		BackdropPath: deref(dto.BackdropPath),
		ReleaseDate:  domain.ParseReleaseDate(deref(dto.ReleaseDate)),
		GenreIDs:     dto.GenreIDs,
	}
	if dto.ID != nil {
		item.ID = *dto.ID
	}
	if dto.Title != nil {
		item.Title = *dto.Title
	}
	if dto.Overview != nil {
		item.Overview = *dto.Overview
	}
	if len(item.GenreIDs) == 0 && len(dto.Genres) > 0 {
		item.GenreIDs = make([]int, len(dto.Genres))
		for i, g := range dto.Genres {
			item.GenreIDs[i] = g.ID
		}
	}
	return item
}

// MapMovies converts a slice of movie DTOs, preserving order
func MapMovies(dtos []MovieDTO) []domain.CatalogItem {
	items := make([]domain.CatalogItem, 0, len(dtos))
	for _, dto := range dtos {
		items = append(items, MapMovie(dto))
	}
	return items
}

// MapPage converts a list envelope to a domain page
func MapPage(resp MovieListResponseDTO) domain.CatalogPage {
	page := domain.CatalogPage{
		Page:         deref(resp.Page),
		TotalPages:   deref(resp.TotalPages),
		TotalResults: deref(resp.TotalResults),
		Items:        MapMovies(resp.Results),
	}
	if page.TotalPages < 1 {
		page.TotalPages = 1
	}
	return page
}

// MapGenres converts genre DTOs to domain genres
func MapGenres(dtos []GenreDTO) []domain.Genre {
	genres := make([]domain.Genre, 0, len(dtos))
	for _, g := range dtos {
		genres = append(genres, domain.Genre{ID: g.ID, Name: g.Name})
	}
	return genres
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
