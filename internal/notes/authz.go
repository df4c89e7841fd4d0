package notes

import "github.com/PotatoBoi2658/notesapp/internal/auth"

// CanAccess decides whether the principal may read or mutate the note: the
// owner and administrators may, nobody else. This is the only place the
// ownership policy lives; handlers must not inline their own checks.
func CanAccess(principal *auth.User, note *Note) bool {
	if principal == nil || note == nil {
		return false
	}
	return principal.ID == note.OwnerID || principal.IsAdmin()
}
