package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/flatchat/backend/internal/logging"
	"github.com/flatchat/backend/internal/models"
)

const (
	defaultProfileImage = "/images/default.png"
	defaultStatus       = "online"
)

// Registry provides account and friendship operations over the users
// collection. Friendships are stored denormalized: each user owns a list of
// friend usernames, and the two lists are reconciled lazily at login rather
// than through a transactional dual-write.
type Registry struct {
	users *Collection[models.User]
}

// NewRegistry constructs a registry over the provided users collection.
func NewRegistry(users *Collection[models.User]) *Registry {
	return &Registry{users: users}
}

// Signup creates a new account with an empty friend list. Usernames are
// unique, matched case-sensitively.
func (r *Registry) Signup(ctx context.Context, username, password string) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: username and password are required", ErrInvalid)
	}

	created := models.User{
		ID:       uuid.NewString(),
		Username: username,
		Password: password,
		Friends:  []string{},
	}

	err := r.users.Update(ctx, func(users []models.User) ([]models.User, bool, error) {
		for _, u := range users {
			if u.Username == username {
				return nil, false, fmt.Errorf("%w: username %q already exists", ErrConflict, username)
			}
		}
		return append(users, created), true, nil
	})
	if err != nil {
		return models.User{}, err
	}
	return created, nil
}

// Login authenticates by exact username/password match and then repairs the
// friend relation: any other user who lists this username gains a reciprocal
// entry in this user's own list. The patch is one-directional and idempotent;
// the collection is rewritten only when at least one entry was added.
func (r *Registry) Login(ctx context.Context, username, password string) (models.User, error) {
	var found models.User

	err := r.users.Update(ctx, func(users []models.User) ([]models.User, bool, error) {
		idx := -1
		for i, u := range users {
			if u.Username == username && u.Password == password {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, false, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
		}

		repaired := false
		user := &users[idx]
		for _, other := range users {
			if other.Username == username {
				continue
			}
			if slices.Contains(other.Friends, username) && !slices.Contains(user.Friends, other.Username) {
				user.Friends = append(user.Friends, other.Username)
				repaired = true
				logging.FromContext(ctx).Info("repaired one-way friendship",
					"username", username, "friend", other.Username)
			}
		}

		found = *user
		return users, repaired, nil
	})
	if err != nil {
		return models.User{}, err
	}
	return found, nil
}

// SendFriendRequest links two users. Acceptance is immediate: there is no
// pending state, both friend lists are appended within one save.
func (r *Registry) SendFriendRequest(ctx context.Context, fromUsername, toUsername string) error {
	return r.users.Update(ctx, func(users []models.User) ([]models.User, bool, error) {
		fromIdx, toIdx := -1, -1
		for i, u := range users {
			switch u.Username {
			case fromUsername:
				fromIdx = i
			case toUsername:
				toIdx = i
			}
		}
		if fromIdx < 0 || toIdx < 0 {
			return nil, false, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		if slices.Contains(users[toIdx].Friends, fromUsername) {
			return nil, false, fmt.Errorf("%w: already friends", ErrConflict)
		}

		users[toIdx].Friends = append(users[toIdx].Friends, fromUsername)
		users[fromIdx].Friends = append(users[fromIdx].Friends, toUsername)
		return users, true, nil
	})
}

// ListFriends projects the user's friend list into friend views, defaulting
// the profile image and status when the friend record omits them. A friend
// entry with no matching record still yields a view with defaults.
func (r *Registry) ListFriends(ctx context.Context, username string) ([]models.FriendView, error) {
	users, err := r.users.Load(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]models.User, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}

	user, ok := byName[username]
	if !ok {
		return nil, fmt.Errorf("%w: user %q", ErrNotFound, username)
	}

	views := make([]models.FriendView, 0, len(user.Friends))
	for _, name := range user.Friends {
		friend := byName[name]
		view := models.FriendView{
			Username:     name,
			ProfileImage: friend.ProfileImage,
			Status:       friend.Status,
		}
		if view.ProfileImage == "" {
			view.ProfileImage = defaultProfileImage
		}
		if view.Status == "" {
			view.Status = defaultStatus
		}
		views = append(views, view)
	}
	return views, nil
}

// UpdateProfileImage records the stored image path on the user and returns it.
func (r *Registry) UpdateProfileImage(ctx context.Context, userID, storedPath string) (string, error) {
	err := r.users.Update(ctx, func(users []models.User) ([]models.User, bool, error) {
		for i := range users {
			if users[i].ID == userID {
				users[i].ProfileImage = storedPath
				return users, true, nil
			}
		}
		return nil, false, fmt.Errorf("%w: user %q", ErrNotFound, userID)
	})
	if err != nil {
		return "", err
	}
	return storedPath, nil
}

// ChangePassword replaces the user's password after verifying the old one.
func (r *Registry) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	return r.users.Update(ctx, func(users []models.User) ([]models.User, bool, error) {
		for i := range users {
			if users[i].ID != userID {
				continue
			}
			if users[i].Password != oldPassword {
				return nil, false, fmt.Errorf("%w: invalid current password", ErrUnauthorized)
			}
			users[i].Password = newPassword
			return users, true, nil
		}
		return nil, false, fmt.Errorf("%w: user %q", ErrNotFound, userID)
	})
}

// HasUsername reports whether a user with the given username exists.
func (r *Registry) HasUsername(ctx context.Context, username string) (bool, error) {
	users, err := r.users.Load(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}
