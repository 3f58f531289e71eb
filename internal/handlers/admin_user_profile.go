package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/bespoke-tuition/gate"
	"github.com/diewo77/bespoke-tuition/httpx"
	"github.com/diewo77/bespoke-tuition/internal/models"
	"github.com/diewo77/bespoke-tuition/internal/services"
	"gorm.io/gorm"
)

// notFound turns a missing row into services.ErrNotFound so writeError
// answers 404.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.ErrNotFound
	}
	return err
}

// AdminUserProfileHandler assigns users to profiles.
type AdminUserProfileHandler struct {
	DB            *gorm.DB
	CacheResolver *gate.CachedResolver[uint]
}

func NewAdminUserProfileHandler(db *gorm.DB, cacheResolver *gate.CachedResolver[uint]) *AdminUserProfileHandler {
	return &AdminUserProfileHandler{DB: db, CacheResolver: cacheResolver}
}

// List returns every user with its profile.
func (h *AdminUserProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	if err := h.DB.WithContext(r.Context()).Preload("Profile").Order("email").Find(&users).Error; err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

type assignProfileRequest struct {
	// ProfileID nil or 0 removes the user's profile.
	ProfileID *uint `json:"profile_id"`
}

// AssignProfile sets the profile of the user in the path.
func (h *AdminUserProfileHandler) AssignProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req assignProfileRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ProfileID != nil && *req.ProfileID == 0 {
		req.ProfileID = nil
	}
	db := h.DB.WithContext(r.Context())

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		writeError(w, r, notFound(err))
		return
	}
	if req.ProfileID != nil {
		var profile models.Profile
		if err := db.First(&profile, *req.ProfileID).Error; err != nil {
			writeError(w, r, notFound(err))
			return
		}
	}
	if err := db.Model(&user).Update("profile_id", req.ProfileID).Error; err != nil {
		writeError(w, r, err)
		return
	}

	if h.CacheResolver != nil {
		h.CacheResolver.Invalidate(userID)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user_id":    userID,
		"profile_id": req.ProfileID,
	})
}
