package discover

import "context"

// Profile is the read-only view of a user the scorer consumes. Zero values
// mean "unknown"; the scorer renormalizes around missing factors rather than
// penalizing them.
type Profile struct {
	UserID            string
	Skills            []string
	Values            []string
	Locations         []string
	SalaryExpectation *int
	ExperienceLevel   LevelTag
	ClassYear         int
}

// ProfileStore fetches user profiles for personalization. A missing profile
// is (nil, nil), not an error; discovery proceeds unpersonalized.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
}
