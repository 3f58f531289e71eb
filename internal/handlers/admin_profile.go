package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/bespoke-tuition/gate"
	"github.com/diewo77/bespoke-tuition/httpx"
	"github.com/diewo77/bespoke-tuition/internal/models"
	"gorm.io/gorm"
)

var errSystemProfile = errors.New("system profile cannot be changed")

// AdminProfileHandler manages profiles and their permission grants.
type AdminProfileHandler struct {
	DB            *gorm.DB
	CacheResolver *gate.CachedResolver[uint] // invalidated on changes
}

func NewAdminProfileHandler(db *gorm.DB, cacheResolver *gate.CachedResolver[uint]) *AdminProfileHandler {
	return &AdminProfileHandler{DB: db, CacheResolver: cacheResolver}
}

// List returns all profiles with their permissions.
func (h *AdminProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	var profiles []models.Profile
	if err := h.DB.WithContext(r.Context()).Preload("Permissions").Order("name").Find(&profiles).Error; err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profiles)
}

// ListPermissions returns every grantable permission.
func (h *AdminProfileHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	var permissions []models.Permission
	if err := h.DB.WithContext(r.Context()).Order("resource_type, action").Find(&permissions).Error; err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, permissions)
}

type profileRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

func (h *AdminProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decode(w, r, &req) {
		return
	}
	db := h.DB.WithContext(r.Context())
	var n int64
	if err := db.Model(&models.Profile{}).Where("name = ?", req.Name).Count(&n).Error; err != nil {
		writeError(w, r, err)
		return
	}
	if n > 0 {
		httpx.JSONError(w, http.StatusConflict, "name_already_exists", nil)
		return
	}
	profile := models.Profile{Name: req.Name, Description: req.Description}
	if err := db.Create(&profile).Error; err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, profile)
}

type permissionsRequest struct {
	PermissionIDs []uint `json:"permission_ids"`
}

// SavePermissions replaces the grants of a profile. The built-in profiles
// are fixed.
func (h *AdminProfileHandler) SavePermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req permissionsRequest
	if !decode(w, r, &req) {
		return
	}
	db := h.DB.WithContext(r.Context())

	var profile models.Profile
	if err := db.First(&profile, id).Error; err != nil {
		writeError(w, r, notFound(err))
		return
	}
	if profile.IsSystem {
		httpx.JSONError(w, http.StatusConflict, "system_profile", nil)
		return
	}

	var permissions []models.Permission
	if len(req.PermissionIDs) > 0 {
		if err := db.Where("id IN ?", req.PermissionIDs).Find(&permissions).Error; err != nil {
			writeError(w, r, err)
			return
		}
	}
	if err := db.Model(&profile).Association("Permissions").Replace(permissions); err != nil {
		writeError(w, r, err)
		return
	}

	if h.CacheResolver != nil {
		h.CacheResolver.InvalidateProfile(profile.ID)
	}
	profile.Permissions = permissions
	httpx.JSON(w, http.StatusOK, profile)
}

// Delete removes a custom profile and detaches its users.
func (h *AdminProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	err := h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		if err := tx.First(&profile, id).Error; err != nil {
			return notFound(err)
		}
		if profile.IsSystem {
			return errSystemProfile
		}
		if err := tx.Model(&models.User{}).Where("profile_id = ?", id).Update("profile_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&profile).Association("Permissions").Clear(); err != nil {
			return err
		}
		return tx.Delete(&profile).Error
	})
	if errors.Is(err, errSystemProfile) {
		httpx.JSONError(w, http.StatusConflict, "system_profile", nil)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if h.CacheResolver != nil {
		h.CacheResolver.InvalidateProfile(id)
	}
	w.WriteHeader(http.StatusNoContent)
}
