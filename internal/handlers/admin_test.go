package handlers

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/diewo77/bespoke-tuition/gate"
	"github.com/diewo77/bespoke-tuition/internal/db"
	"github.com/diewo77/bespoke-tuition/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seededDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn := openTestDB(t)
	require.NoError(t, db.Seed(conn))
	return conn
}

func profileNamed(t *testing.T, conn *gorm.DB, name string) models.Profile {
	t.Helper()
	var p models.Profile
	require.NoError(t, conn.Where("name = ?", name).First(&p).Error)
	return p
}

func TestAssignProfile(t *testing.T) {
	conn := seededDB(t)
	cache := gate.NewCachedResolver[uint](gate.NewAssignments[uint](), time.Minute)
	h := NewAdminUserProfileHandler(conn, cache)

	user := models.User{Email: "staff@example.com", Password: "x"}
	require.NoError(t, conn.Create(&user).Error)
	adminProfile := profileNamed(t, conn, models.ProfileAdmin)

	target := "/admin/users/" + itoa(user.ID) + "/profile"
	rec := serve("PUT /admin/users/{id}/profile", h.AssignProfile, http.MethodPut, target,
		`{"profile_id":`+strconv.FormatUint(uint64(adminProfile.ID), 10)+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stored models.User
	require.NoError(t, conn.First(&stored, user.ID).Error)
	require.NotNil(t, stored.ProfileID)
	assert.Equal(t, adminProfile.ID, *stored.ProfileID)

	rec = serve("PUT /admin/users/{id}/profile", h.AssignProfile, http.MethodPut, target, `{"profile_id":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, conn.First(&stored, user.ID).Error)
	assert.Nil(t, stored.ProfileID)

	rec = serve("PUT /admin/users/{id}/profile", h.AssignProfile, http.MethodPut, target, `{"profile_id":9999}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSystemProfilesAreFixed(t *testing.T) {
	conn := seededDB(t)
	h := NewAdminProfileHandler(conn, nil)
	customer := profileNamed(t, conn, models.ProfileCustomer)

	rec := serve("PUT /admin/profiles/{id}/permissions", h.SavePermissions, http.MethodPut,
		"/admin/profiles/"+itoa(customer.ID)+"/permissions", `{"permission_ids":[]}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve("DELETE /admin/profiles/{id}", h.Delete, http.MethodDelete, "/admin/profiles/"+itoa(customer.ID), "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCustomProfileLifecycle(t *testing.T) {
	conn := seededDB(t)
	h := NewAdminProfileHandler(conn, nil)

	rec := serve("POST /admin/profiles", h.Create, http.MethodPost, "/admin/profiles",
		`{"name":"tutor","description":"Books lessons"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Profile
	decodeBody(t, rec, &created)

	rec = serve("POST /admin/profiles", h.Create, http.MethodPost, "/admin/profiles", `{"name":"tutor"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var perm models.Permission
	require.NoError(t, conn.Where("resource_type = ? AND action = ?", "lesson", "create").First(&perm).Error)
	rec = serve("PUT /admin/profiles/{id}/permissions", h.SavePermissions, http.MethodPut,
		"/admin/profiles/"+itoa(created.ID)+"/permissions", `{"permission_ids":[`+itoa(perm.ID)+`]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(1), conn.Model(&created).Association("Permissions").Count())

	rec = serve("DELETE /admin/profiles/{id}", h.Delete, http.MethodDelete, "/admin/profiles/"+itoa(created.ID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
