package policy

import (
	"context"

	"github.com/diewo77/bespoke-tuition/gate"
	"github.com/diewo77/bespoke-tuition/internal/models"
	"gorm.io/gorm"
)

// DBProfileResolver fetches user profiles from the database.
// It implements the gate.ProfileResolver interface for uint user IDs.
type DBProfileResolver struct {
	DB *gorm.DB
}

func NewDBProfileResolver(db *gorm.DB) *DBProfileResolver {
	return &DBProfileResolver{DB: db}
}

// Resolve looks up the user's profile, preloading permissions.
// Returns nil if the user has no profile assigned.
func (r *DBProfileResolver) Resolve(ctx context.Context, userID uint) (gate.Profile, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Preload("Profile.Permissions").First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	if user.Profile == nil {
		return nil, nil
	}
	return fixedProfile(user.Profile), nil
}

// fixedProfile copies a stored profile's grants into a gate.Profile.
func fixedProfile(p *models.Profile) *gate.FixedProfile {
	grants := make([]gate.Permission, len(p.Permissions))
	for i, perm := range p.Permissions {
		grants[i] = gate.NewPermission(perm.ResourceType, gate.Action(perm.Action))
	}
	return gate.NewFixedProfile(p.ID, p.Name, grants...)
}
