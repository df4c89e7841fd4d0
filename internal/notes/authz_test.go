package notes

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/PotatoBoi2658/notesapp/internal/auth"
)

func TestCanAccess_OwnerAndAdmin(t *testing.T) {
	t.Parallel()

	note := &Note{ID: "n1", OwnerID: "user-1"}

	owner := &auth.User{ID: "user-1", Role: auth.RoleUser}
	stranger := &auth.User{ID: "user-2", Role: auth.RoleUser}
	admin := &auth.User{ID: "user-3", Role: auth.RoleAdministrator}

	require.True(t, CanAccess(owner, note))
	require.False(t, CanAccess(stranger, note))
	require.True(t, CanAccess(admin, note))
	require.False(t, CanAccess(nil, note))
	require.False(t, CanAccess(owner, nil))
}

func TestCanAccess_Properties(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		ownerID := rapid.StringMatching(`user-[a-f0-9]{8}`).Draw(t, "ownerID")
		principalID := rapid.StringMatching(`user-[a-f0-9]{8}`).Draw(t, "principalID")
		isAdmin := rapid.Bool().Draw(t, "isAdmin")

		role := auth.RoleUser
		if isAdmin {
			role = auth.RoleAdministrator
		}
		principal := &auth.User{ID: principalID, Role: role}
		note := &Note{ID: "n", OwnerID: ownerID}

		got := CanAccess(principal, note)

		// Admins always pass; non-admins pass exactly when they own the note.
		want := isAdmin || principalID == ownerID
		require.Equal(t, want, got)
	})
}
