package memory

import (
	"cmp"
	"context"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/auth"
)

var _ auth.UserRepository = (*UserRepo)(nil)

// UserRepo stores accounts.
type UserRepo struct {
	s *Store
}

// NewUserRepo creates the repository.
func (s *Store) NewUserRepo() *UserRepo {
	return &UserRepo{s: s}
}

func byCreated(a, b auth.User) int {
	return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.Email, b.Email))
}

func emailTaken(st *state, email string, except id.ID) bool {
	for _, u := range st.users {
		if u.Email == email && u.ID != except {
			return true
		}
	}
	return false
}

func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	return r.s.write(ctx, func(st *state) error {
		if emailTaken(st, user.Email, id.Nil()) {
			return apperror.NewDuplicate("user", "email", user.Email)
		}
		st.users[user.ID] = *user
		return nil
	})
}

func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	var out *auth.User
	err := r.s.read(ctx, func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return apperror.NewNotFound("user", userID.String())
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	var out *auth.User
	err := r.s.read(ctx, func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				out = &u
				return nil
			}
		}
		return apperror.NewNotFound("user", email)
	})
	return out, err
}

func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.users[user.ID]; !ok {
			return apperror.NewNotFound("user", user.ID.String())
		}
		if emailTaken(st, user.Email, user.ID) {
			return apperror.NewDuplicate("user", "email", user.Email)
		}
		st.users[user.ID] = *user
		return nil
	})
}

func (r *UserRepo) List(ctx context.Context, filter auth.UserFilter) ([]auth.User, error) {
	var out []auth.User
	err := r.s.read(ctx, func(st *state) error {
		all := sortedValues(st.users, func(u auth.User) bool {
			if filter.Role != "" && u.Role != filter.Role {
				return false
			}
			return !filter.ActiveOnly || u.IsActive
		}, byCreated)
		out = domain.Window(all, domain.Page{Limit: filter.Limit, Offset: filter.Offset})
		return nil
	})
	return out, err
}

func (r *UserRepo) ListActiveByRole(ctx context.Context, role security.Role) ([]auth.User, error) {
	var out []auth.User
	err := r.s.read(ctx, func(st *state) error {
		out = sortedValues(st.users, func(u auth.User) bool {
			return u.IsActive && u.Role == role
		}, byCreated)
		return nil
	})
	return out, err
}

func (r *UserRepo) Exists(ctx context.Context, email string) (bool, error) {
	var found bool
	err := r.s.read(ctx, func(st *state) error {
		found = emailTaken(st, email, id.Nil())
		return nil
	})
	return found, err
}
