package tmdb

import "errors"

// MovieDTO is a movie as returned by list and detail endpoints
type MovieDTO struct {
	Adult            *bool    `json:"adult"`
	BackdropPath     *string  `json:"backdrop_path"`
	GenreIDs         []int    `json:"genre_ids"`
	ID               *int     `json:"id"`
	OriginalLanguage *string  `json:"original_language"`
	OriginalTitle    *string  `json:"original_title"`
	Overview         *string  `json:"overview"`
	Popularity       *float64 `json:"popularity"`
	PosterPath       *string  `json:"poster_path"`
	ReleaseDate      *string  `json:"release_date"`
	Title            *string  `json:"title"`
	Video            *bool    `json:"video"`
	VoteAverage      *float64 `json:"vote_average"`
	VoteCount        *int     `json:"vote_count"`

	// Detail responses carry full genre objects instead of genre_ids
	Genres []GenreDTO `json:"genres"`
}

func (m *MovieDTO) validate() error {
	if m.ID == nil {
		return errors.New("movie is missing id")
	}
	return nil
}

// MovieListResponseDTO is the paginated envelope of list endpoints
type MovieListResponseDTO struct {
	Page         *int       `json:"page"`
	Results      []MovieDTO `json:"results"`
	TotalPages   *int       `json:"total_pages"`
	TotalResults *int       `json:"total_results"`
}

func (r *MovieListResponseDTO) validate() error {
	if r.Page == nil || r.TotalPages == nil || r.Results == nil {
		return errors.New("list response is missing page, total_pages or results")
	}
	for i := range r.Results {
		if err := r.Results[i].validate(); err != nil {
			return err
		}
	}
	return nil
}

// GenreDTO is a single genre
type GenreDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreListResponseDTO wraps the genre catalogue
type GenreListResponseDTO struct {
	Genres []GenreDTO `json:"genres"`
}

func (r *GenreListResponseDTO) validate() error {
	if r.Genres == nil {
		return errors.New("genre response is missing genres")
	}
	return nil
}

// AuthenticationDTO is the token check response
type AuthenticationDTO struct {
	Success       *bool  `json:"success"`
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

func (a *AuthenticationDTO) validate() error {
	if a.Success == nil {
		return errors.New("authentication response is missing success")
	}
	return nil
}
