package tmdb

import (
	"net/http"
	"net/url"
	"strconv"
)

// Query parameter values pinned for every request
const (
	languageDefault = "en-US"
	languageGenres  = "en" // genre names are published under the bare language code
	sortPopularity  = "popularity.desc"
)

// Endpoint describes a single remote API call relative to the base URL.
type Endpoint struct {
	Method string
	Path   string
	Query  url.Values
}

// PopularMoviesEndpoint lists popular movies
func PopularMoviesEndpoint(page int) Endpoint {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("language", languageDefault)
	return Endpoint{Method: http.MethodGet, Path: "/movie/popular", Query: q}
}

// MovieDetailsEndpoint fetches a single movie
func MovieDetailsEndpoint(id int) Endpoint {
	q := url.Values{}
	q.Set("language", languageDefault)
	return Endpoint{Method: http.MethodGet, Path: "/movie/" + strconv.Itoa(id), Query: q}
}

// SearchMoviesEndpoint performs a title search. The search endpoint cannot
// filter by genre, so no genre parameter is ever added here.
func SearchMoviesEndpoint(query string, page int) Endpoint {
	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("language", languageDefault)
	q.Set("include_adult", "false")
	return Endpoint{Method: http.MethodGet, Path: "/search/movie", Query: q}
}

// MovieGenresEndpoint lists movie genres
func MovieGenresEndpoint() Endpoint {
	q := url.Values{}
	q.Set("language", languageGenres)
	return Endpoint{Method: http.MethodGet, Path: "/genre/movie/list", Query: q}
}

// DiscoverMoviesEndpoint lists movies by popularity. genreID 0 (All Genres)
// omits the genre filter.
func DiscoverMoviesEndpoint(genreID int, page int) Endpoint {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("language", languageDefault)
	q.Set("sort_by", sortPopularity)
	q.Set("include_adult", "false")
	if genreID > 0 {
		q.Set("with_genres", strconv.Itoa(genreID))
	}
	return Endpoint{Method: http.MethodGet, Path: "/discover/movie", Query: q}
}

// AuthenticationEndpoint checks that the bearer token is accepted
func AuthenticationEndpoint() Endpoint {
	return Endpoint{Method: http.MethodGet, Path: "/authentication"}
}
