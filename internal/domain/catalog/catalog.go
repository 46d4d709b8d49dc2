// Package catalog defines the contract the engine needs from the game-catalog
// web API, and the failure kinds every implementation must report.
//
// Implementations return errors wrapping exactly one of the sentinel kinds
// below so callers can apply per-situation policy with errors.Is.
package catalog

import (
	"context"

	"github.com/okian/gamegraph/internal/domain/model"
)

// Catalog fetches per-account data from the upstream catalog.
type Catalog interface {
	// OwnedTitles returns the account's library in source order.
	// An inaccessible library is reported as *PrivateProfileError.
	OwnedTitles(ctx context.Context, id model.AccountID) ([]model.OwnedTitle, error)

	// Achievements returns the account's records for one title.
	// A profile with private game details fails with ErrForbidden.
	Achievements(ctx context.Context, id model.AccountID, titleID int64) ([]model.Achievement, error)

	// FriendIDs returns the account's friend list. A hidden list fails with
	// ErrUnauthorized; an empty list is not an error.
	FriendIDs(ctx context.Context, id model.AccountID) ([]model.AccountID, error)

	// DisplayNames resolves names in one batched call. Missing ids are simply
	// absent from the map.
	DisplayNames(ctx context.Context, ids []model.AccountID) (map[model.AccountID]string, error)
}

// Resolver turns a human-entered identifier into a canonical account id.
type Resolver interface {
	ResolveAccount(ctx context.Context, input string) (model.AccountID, error)
}

// Client is a Catalog that can also resolve identifiers.
type Client interface {
	Catalog
	Resolver
}

// NameOr returns names[id], or fallback when the name is missing or blank.
func NameOr(names map[model.AccountID]string, id model.AccountID, fallback string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return fallback
}
