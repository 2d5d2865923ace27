package models

import (
	"github.com/cinevault/cinevault-api/internal/constants"
	"github.com/cinevault/cinevault-api/internal/utils"
)

// ListKind names one of the two per-user movie lists.
type ListKind string

const (
	ListWatchlist  ListKind = constants.ListWatchlist
	ListFavourites ListKind = constants.ListFavourites
)

// ParseListKind accepts only the two known list names.
func ParseListKind(s string) (ListKind, error) {
	switch ListKind(s) {
	case ListWatchlist:
		return ListWatchlist, nil
	case ListFavourites:
		return ListFavourites, nil
	}
	return "", utils.NewInvalidArgumentError("listKind", constants.MsgInvalidListType)
}

func (k ListKind) String() string {
	return string(k)
}
