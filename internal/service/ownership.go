package service

// AssertOwner is the single ownership check applied by every album and image mutation.
func AssertOwner(resourceOwnerID, callerID string) error {
	if callerID == "" || resourceOwnerID != callerID {
		return newError(ErrForbidden, "only the owner can perform this action")
	}
	return nil
}

type FavoritePolicy string

const (
	// FavoriteAny lets any authenticated user flag any image.
	FavoriteAny FavoritePolicy = "any"
	// FavoriteCollaborators allows the album owner, its shared users and the image owner.
	FavoriteCollaborators FavoritePolicy = "collaborators"
	FavoriteOwner         FavoritePolicy = "owner"
)

func ParseFavoritePolicy(s string) (FavoritePolicy, error) {
	switch p := FavoritePolicy(s); p {
	case FavoriteAny, FavoriteCollaborators, FavoriteOwner:
		return p, nil
	case "":
		return FavoriteAny, nil
	default:
		return "", newError(ErrValidation, "unknown favorite policy %q", s)
	}
}
