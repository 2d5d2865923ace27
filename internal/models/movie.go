package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// MovieReference is a snapshot of movie metadata taken when the movie is added to a list.
// It is not refreshed when the upstream catalogue changes.
type MovieReference struct {
	MovieID          int64   `json:"movieId" bson:"movieId" validate:"required,gt=0"`
	Title            string  `json:"title,omitempty" bson:"title,omitempty"`
	OriginalTitle    string  `json:"originalTitle,omitempty" bson:"originalTitle,omitempty"`
	OriginalLanguage string  `json:"originalLanguage,omitempty" bson:"originalLanguage,omitempty"`
	Overview         string  `json:"overview,omitempty" bson:"overview,omitempty"`
	PosterPath       string  `json:"posterPath,omitempty" bson:"posterPath,omitempty"`
	BackdropPath     string  `json:"backdropPath,omitempty" bson:"backdropPath,omitempty"`
	ReleaseDate      string  `json:"releaseDate,omitempty" bson:"releaseDate,omitempty"`
	Popularity       float64 `json:"popularity,omitempty" bson:"popularity,omitempty"`
	VoteAverage      float64 `json:"voteAverage,omitempty" bson:"voteAverage,omitempty"`
	VoteCount        int64   `json:"voteCount,omitempty" bson:"voteCount,omitempty"`
	Video            bool    `json:"video,omitempty" bson:"video,omitempty"`
	GenreIDs         []int64 `json:"genreIds,omitempty" bson:"genreIds,omitempty"`
	UserNote         *string `json:"userNote,omitempty" bson:"userNote,omitempty"`
}

// ForList shapes a reference for storage in the given list.
// Favourites always carry a note; watchlist entries never do.
func (m MovieReference) ForList(kind ListKind) MovieReference {
	shaped := m
	switch kind {
	case ListFavourites:
		if shaped.UserNote == nil {
			empty := ""
			shaped.UserNote = &empty
		}
	default:
		shaped.UserNote = nil
	}
	return shaped
}

// MovieList is an ordered list of references, unique by movie id.
// It is stored as a JSONB array in PostgreSQL.
type MovieList []MovieReference

// Value implements driver.Valuer.
func (l MovieList) Value() (driver.Value, error) {
	data, err := json.Marshal(l.orEmpty())
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *MovieList) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = MovieList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into MovieList", src)
	}

	var list MovieList
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("invalid movie list: %w", err)
	}
	*l = list.orEmpty()
	return nil
}

func (l MovieList) orEmpty() MovieList {
	if l == nil {
		return MovieList{}
	}
	return l
}
