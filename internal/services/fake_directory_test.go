package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"account-core/internal/repositories"
	"account-core/internal/schemas"
)

// fakeStore keeps users and authorities in memory and enforces the same uniqueness rules
// as the partial indexes of the schema. Create holds the lock for its whole duration, like
// the advisory lock of the transaction does.
type fakeStore struct {
	mu          sync.Mutex
	users       map[int64]*schemas.User
	nextID      int64
	authorities map[string]int64
	grants      map[int64]map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[int64]*schemas.User{},
		authorities: map[string]int64{schemas.AuthorityAdmin: 1, schemas.AuthorityUser: 2},
		grants:      map[int64]map[string]bool{},
	}
}

func (s *fakeStore) accounts() repositories.AccountDirectory {
	return &fakeAccounts{s}
}

func (s *fakeStore) authorityDirectory() repositories.AuthorityDirectory {
	return &fakeAuthorities{s}
}

// raw returns the stored row of the email, deleted rows included.
func (s *fakeStore) raw(email string) *schemas.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *schemas.User
	for _, user := range s.users {
		if user.Email == email && (found == nil || user.ID > found.ID) {
			found = user
		}
	}
	if found == nil {
		return nil
	}
	clone := *found
	return &clone
}

func (s *fakeStore) granted(id int64, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grants[id][name]
}

func (s *fakeStore) conflicts(id int64, email string, activationKey, resetKey *string) bool {
	for _, user := range s.users {
		if user.Deleted || user.ID == id {
			continue
		}
		if email != "" && user.Email == email {
			return true
		}
		if activationKey != nil && user.ActivationKey != nil && *user.ActivationKey == *activationKey {
			return true
		}
		if resetKey != nil && user.ResetKey != nil && *user.ResetKey == *resetKey {
			return true
		}
	}
	return false
}

type fakeAccounts struct {
	*fakeStore
}

func (f *fakeAccounts) Create(ctx context.Context, user *schemas.User, assign repositories.AuthorityPolicy) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	authority := assign(int64(len(f.users)))
	if _, ok := f.authorities[authority]; !ok {
		return "", fmt.Errorf("authority %s is not seeded", authority)
	}

	email := schemas.NormalizeEmail(user.Email)
	if f.conflicts(0, email, user.ActivationKey, user.ResetKey) {
		return "", fmt.Errorf("insert user: %w", repositories.ErrDuplicate)
	}

	f.nextID++
	now := time.Now()
	user.ID = f.nextID
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	f.users[stored.ID] = &stored
	f.grants[stored.ID] = map[string]bool{authority: true}
	return authority, nil
}

func (f *fakeAccounts) find(match func(*schemas.User) bool) (*schemas.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]int64, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	for _, id := range ids {
		if user := f.users[id]; match(user) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeAccounts) FindByEmail(ctx context.Context, email string, excludeDeleted bool) (*schemas.User, error) {
	email = schemas.NormalizeEmail(email)
	return f.find(func(u *schemas.User) bool { return u.Email == email && !(excludeDeleted && u.Deleted) })
}

func (f *fakeAccounts) FindByID(ctx context.Context, id int64, excludeDeleted bool) (*schemas.User, error) {
	return f.find(func(u *schemas.User) bool { return u.ID == id && !(excludeDeleted && u.Deleted) })
}

func (f *fakeAccounts) FindByActivationKey(ctx context.Context, key string) (*schemas.User, error) {
	return f.find(func(u *schemas.User) bool { return !u.Deleted && u.ActivationKey != nil && *u.ActivationKey == key })
}

func (f *fakeAccounts) FindByResetKey(ctx context.Context, key string) (*schemas.User, error) {
	return f.find(func(u *schemas.User) bool { return !u.Deleted && u.ResetKey != nil && *u.ResetKey == key })
}

func (f *fakeAccounts) Update(ctx context.Context, id int64, update schemas.UserUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok || user.Deleted {
		return repositories.ErrNotFound
	}
	if update.MatchActivationKey != nil && (user.ActivationKey == nil || *user.ActivationKey != *update.MatchActivationKey) {
		return repositories.ErrNotFound
	}
	if update.MatchResetKey != nil && (user.ResetKey == nil || *user.ResetKey != *update.MatchResetKey) {
		return repositories.ErrNotFound
	}
	if f.conflicts(id, "", update.ActivationKey, update.ResetKey) {
		return repositories.ErrDuplicate
	}

	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}
	if update.FirstName != nil {
		user.FirstName = update.FirstName
	}
	if update.LastName != nil {
		user.LastName = update.LastName
	}
	if update.Activated != nil {
		user.Activated = *update.Activated
	}
	if update.ActivatedDate != nil {
		user.ActivatedDate = update.ActivatedDate
	}
	if update.ClearActivationKey {
		user.ActivationKey = nil
	} else if update.ActivationKey != nil {
		user.ActivationKey = update.ActivationKey
	}
	if update.ClearReset {
		user.ResetKey = nil
		user.ResetDate = nil
	} else {
		if update.ResetKey != nil {
			user.ResetKey = update.ResetKey
		}
		if update.ResetDate != nil {
			user.ResetDate = update.ResetDate
		}
	}
	user.UpdatedAt = time.Now()
	return nil
}

func (f *fakeAccounts) SoftDelete(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok || user.Deleted {
		return false, nil
	}
	user.Deleted = true
	return true, nil
}

func (f *fakeAccounts) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

func (f *fakeAccounts) List(ctx context.Context, offset, limit int) ([]*schemas.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return paginate(f.liveLocked(), offset, limit), nil
}

func (f *fakeAccounts) Page(ctx context.Context, offset, limit int) ([]*schemas.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	live := f.liveLocked()
	return paginate(live, offset, limit), int64(len(live)), nil
}

func (f *fakeAccounts) liveLocked() []*schemas.User {
	users := make([]*schemas.User, 0)
	for _, user := range f.users {
		if !user.Deleted {
			clone := *user
			users = append(users, &clone)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func paginate(users []*schemas.User, offset, limit int) []*schemas.User {
	if limit <= 0 {
		return users
	}
	if offset > len(users) {
		offset = len(users)
	}
	end := offset + limit
	if end > len(users) {
		end = len(users)
	}
	return users[offset:end]
}

type fakeAuthorities struct {
	*fakeStore
}

func (f *fakeAuthorities) List(ctx context.Context) ([]schemas.Authority, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	authorities := make([]schemas.Authority, 0, len(f.authorities))
	for name, id := range f.authorities {
		authorities = append(authorities, schemas.Authority{ID: id, Name: name})
	}
	sort.Slice(authorities, func(i, j int) bool { return authorities[i].Name < authorities[j].Name })
	return authorities, nil
}

func (f *fakeAuthorities) OfUser(ctx context.Context, userID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0)
	for name := range f.grants[userID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeAuthorities) Has(ctx context.Context, userID int64, name string) (bool, error) {
	return f.granted(userID, schemas.NormalizeAuthority(name)), nil
}

func (f *fakeAuthorities) Grant(ctx context.Context, userID int64, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[userID]; !ok {
		return repositories.ErrNotFound
	}
	if f.grants[userID] == nil {
		f.grants[userID] = map[string]bool{}
	}
	f.grants[userID][schemas.NormalizeAuthority(name)] = true
	return nil
}

func (f *fakeAuthorities) Revoke(ctx context.Context, userID int64, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.grants[userID], schemas.NormalizeAuthority(name))
	return nil
}
