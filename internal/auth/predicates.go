package auth

import "chirp/internal/models"

// Predicate is an authorization rule over a resolved identity.
type Predicate struct {
	Name    string
	Message string
	Allow   func(u *models.User) bool
}

var (
	// IsAdmin admits admins and the owner.
	IsAdmin = Predicate{
		Name:    "admin",
		Message: "Only admin can access this resource",
		Allow:   func(u *models.User) bool { return u.IsAdmin() },
	}

	// HasSubscription admits users whose subscription is active or ticked.
	HasSubscription = Predicate{
		Name:    "subscription",
		Message: "Only verified users can edit tweets",
		Allow:   func(u *models.User) bool { return u.SubscriptionStatus != models.SubscriptionInactive },
	}

	// IsOwner admits only the owner account.
	IsOwner = Predicate{
		Name:    "owner",
		Message: "Only OWNER can access this resource",
		Allow:   func(u *models.User) bool { return u.Role == models.RoleOwner },
	}
)

// Check returns a Forbidden error for the first predicate u fails, or an
// Unauthorized error when there is no identity.
func Check(u *models.User, preds ...Predicate) error {
	if u == nil {
		return models.NewUnauthorizedError("Please login to access this resource")
	}
	for _, p := range preds {
		if !p.Allow(u) {
			return models.NewForbiddenError(p.Message)
		}
	}
	return nil
}
