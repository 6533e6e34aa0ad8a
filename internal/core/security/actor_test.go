package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	appctx "github.com/harpreet-2146/FM-demo-sub001/internal/core/context"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
)

func TestRequire(t *testing.T) {
	retailer := NewActor(id.New(), RoleRetailer)

	assert.NoError(t, Require(retailer, RoleRetailer))
	assert.NoError(t, Require(retailer, RoleAdmin, RoleRetailer))

	err := Require(retailer, RoleAdmin)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	err = Require(Actor{}, RoleAdmin)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

func TestRequireOwner(t *testing.T) {
	owner := id.New()

	assert.NoError(t, RequireOwner(NewActor(owner, RoleRetailer), owner, "srn"))
	assert.NoError(t, RequireOwner(NewActor(id.New(), RoleAdmin), owner, "srn"))

	err := RequireOwner(NewActor(id.New(), RoleRetailer), owner, "srn")
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
}

func TestActorFromContext(t *testing.T) {
	userID := id.New()
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: userID.String(),
		Roles:  []string{"retailer", "UNKNOWN"},
	})

	actor, err := ActorFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, userID, actor.ID)
	assert.Equal(t, []Role{RoleRetailer}, actor.Roles)

	_, err = ActorFromContext(context.Background())
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}
