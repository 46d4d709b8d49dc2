// Package catalogtest provides an in-memory catalog for tests.
package catalogtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/gamegraph/internal/domain/catalog"
	"github.com/okian/gamegraph/internal/domain/model"
)

type achievementKey struct {
	id      model.AccountID
	titleID int64
}

// Fake is a concurrency-safe catalog.Client backed by maps. Unknown accounts
// fail OwnedTitles with a private profile error and return no friends.
type Fake struct {
	mu sync.Mutex

	titles         map[model.AccountID][]model.OwnedTitle
	titleErrs      map[model.AccountID]error
	achievements   map[achievementKey][]model.Achievement
	achErrs        map[achievementKey]error
	accountAchErrs map[model.AccountID]error
	friends        map[model.AccountID][]model.AccountID
	friendErrs     map[model.AccountID]error
	names          map[model.AccountID]string
	namesErr       error
	vanity         map[string]model.AccountID

	calls map[string]int
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		titles:         make(map[model.AccountID][]model.OwnedTitle),
		titleErrs:      make(map[model.AccountID]error),
		achievements:   make(map[achievementKey][]model.Achievement),
		achErrs:        make(map[achievementKey]error),
		accountAchErrs: make(map[model.AccountID]error),
		friends:        make(map[model.AccountID][]model.AccountID),
		friendErrs:     make(map[model.AccountID]error),
		names:          make(map[model.AccountID]string),
		vanity:         make(map[string]model.AccountID),
		calls:          make(map[string]int),
	}
}

// SetTitles sets an account's library.
func (f *Fake) SetTitles(id model.AccountID, titles ...model.OwnedTitle) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles[id] = titles
	return f
}

// FailTitles makes OwnedTitles fail for id.
func (f *Fake) FailTitles(id model.AccountID, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titleErrs[id] = err
	return f
}

// SetAchievements sets the records for one (account, title) pair.
func (f *Fake) SetAchievements(id model.AccountID, titleID int64, records ...model.Achievement) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.achievements[achievementKey{id, titleID}] = records
	return f
}

// FailAchievements makes Achievements fail for one (account, title) pair.
func (f *Fake) FailAchievements(id model.AccountID, titleID int64, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.achErrs[achievementKey{id, titleID}] = err
	return f
}

// FailAllAchievements makes every Achievements call for id fail.
func (f *Fake) FailAllAchievements(id model.AccountID, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accountAchErrs[id] = err
	return f
}

// SetFriends sets an account's friend list.
func (f *Fake) SetFriends(id model.AccountID, friends ...model.AccountID) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.friends[id] = friends
	return f
}

// FailFriends makes FriendIDs fail for id.
func (f *Fake) FailFriends(id model.AccountID, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.friendErrs[id] = err
	return f
}

// SetName sets a display name.
func (f *Fake) SetName(id model.AccountID, name string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names[id] = name
	return f
}

// FailNames makes DisplayNames fail.
func (f *Fake) FailNames(err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.namesErr = err
	return f
}

// SetVanity maps a vanity name to an account id.
func (f *Fake) SetVanity(name string, id model.AccountID) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vanity[name] = id
	return f
}

// Calls returns how many times the named method was invoked. Achievements
// calls are also counted per account as "Achievements:<id>".
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *Fake) record(method string) {
	f.calls[method]++
}

// OwnedTitles implements catalog.Catalog.
func (f *Fake) OwnedTitles(ctx context.Context, id model.AccountID) ([]model.OwnedTitle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("OwnedTitles")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.titleErrs[id]; ok {
		return nil, err
	}
	titles, ok := f.titles[id]
	if !ok {
		return nil, catalog.NewPrivateProfile(id)
	}
	return append([]model.OwnedTitle(nil), titles...), nil
}

// Achievements implements catalog.Catalog.
func (f *Fake) Achievements(ctx context.Context, id model.AccountID, titleID int64) ([]model.Achievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Achievements")
	f.record("Achievements:" + string(id))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.accountAchErrs[id]; ok {
		return nil, err
	}
	key := achievementKey{id, titleID}
	if err, ok := f.achErrs[key]; ok {
		return nil, err
	}
	return append([]model.Achievement(nil), f.achievements[key]...), nil
}

// FriendIDs implements catalog.Catalog.
func (f *Fake) FriendIDs(ctx context.Context, id model.AccountID) ([]model.AccountID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FriendIDs")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.friendErrs[id]; ok {
		return nil, err
	}
	return append([]model.AccountID(nil), f.friends[id]...), nil
}

// DisplayNames implements catalog.Catalog.
func (f *Fake) DisplayNames(ctx context.Context, ids []model.AccountID) (map[model.AccountID]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DisplayNames")
	if f.namesErr != nil {
		return nil, f.namesErr
	}
	out := make(map[model.AccountID]string, len(ids))
	for _, id := range ids {
		if name, ok := f.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

// ResolveAccount implements catalog.Resolver.
func (f *Fake) ResolveAccount(_ context.Context, input string) (model.AccountID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ResolveAccount")
	if id, ok := f.vanity[input]; ok {
		return id, nil
	}
	return "", fmt.Errorf("resolve %q: %w", input, catalog.ErrNotFound)
}

var _ catalog.Client = (*Fake)(nil)
