package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diewo77/bespoke-tuition/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func window(id uint, from time.Time, to *time.Time) models.Address {
	return models.Address{ID: id, PostalAddress: models.PostalAddress{
		LineOne: "line", Town: "town", Postcode: "PC", EffectiveFromDate: from, EffectiveToDate: to,
	}}
}

func TestResolveAt_OpenWindowBesideClosedHistory(t *testing.T) {
	closedEnd := day(2022, 12, 31)
	rows := []models.Address{
		window(1, day(2021, 1, 1), &closedEnd),
		window(2, day(2023, 1, 1), nil),
	}

	got, err := ResolveAt(rows, at(2023, 6, 15, 10, 0), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, uint(2), got.ID)

	got, err = ResolveAt(rows, at(2022, 12, 31, 18, 0), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.ID, "end date is inclusive")
}

func TestResolveAt_Overlaps(t *testing.T) {
	rows := []models.Address{
		window(1, day(2023, 1, 1), nil),
		window(2, day(2023, 3, 1), nil),
		window(3, day(2023, 2, 1), nil),
	}
	got, err := ResolveAt(rows, at(2023, 4, 1, 9, 0), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, uint(2), got.ID, "latest from date wins")

	rows = append(rows, window(4, day(2023, 3, 1), nil))
	got, err = ResolveAt(rows, at(2023, 4, 1, 9, 0), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, uint(4), got.ID, "equal from dates resolve to the later row")
}

func TestResolveAt_NoMatch(t *testing.T) {
	rows := []models.Address{window(1, day(2023, 1, 1), nil)}
	_, err := ResolveAt(rows, at(2022, 6, 1, 9, 0), time.UTC)
	require.Error(t, err)
	assert.True(t, IsIntegrity(err))
	assert.True(t, errors.Is(err, ErrNoAddress))

	_, err = ResolveAt([]models.Address(nil), at(2022, 6, 1, 9, 0), time.UTC)
	assert.ErrorIs(t, err, ErrNoAddress)
}

func TestResolveAt_UsesBillingTimezone(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	end := day(2023, 6, 30)
	rows := []models.Address{
		window(1, day(2023, 1, 1), &end),
		window(2, day(2023, 7, 1), nil),
	}
	// 23:30 UTC on 30 June is 00:30 on 1 July in London.
	instant := at(2023, 6, 30, 23, 30)

	got, err := ResolveAt(rows, instant, london)
	require.NoError(t, err)
	assert.Equal(t, uint(2), got.ID)

	got, err = ResolveAt(rows, instant, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.ID)
}

func TestAddressService(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	client := seedClient(t, conn, "Jane", "Smith")

	closedEnd := day(2022, 12, 31)
	require.NoError(t, conn.Model(&models.Address{}).Where("client_id = ?", client.ID).
		Update("effective_to_date", closedEnd).Error)
	moved := models.Address{ClientID: client.ID, PostalAddress: models.PostalAddress{
		LineOne: "2 New Road", Town: "Stockport", Postcode: "SK1 1AA", EffectiveFromDate: day(2023, 1, 1),
	}}
	require.NoError(t, conn.Create(&moved).Error)

	svc := NewAddressService(conn, time.UTC)
	got, err := svc.AddressAt(ctx, client.ID, at(2024, 3, 5, 14, 30))
	require.NoError(t, err)
	assert.Equal(t, "2 New Road", got.LineOne)

	got, err = svc.AddressAt(ctx, client.ID, at(2021, 3, 5, 14, 30))
	require.NoError(t, err)
	assert.Equal(t, "1 High Street", got.LineOne)

	_, err = svc.AddressAt(ctx, client.ID, at(2019, 3, 5, 14, 30))
	assert.ErrorIs(t, err, ErrNoAddress)
}

func TestTuitionAddressAt(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	student := seedStudent(t, conn, "Ada")
	ta := models.TuitionAddress{StudentID: student.ID, PostalAddress: models.PostalAddress{
		LineOne: "Library", Town: "Manchester", Postcode: "M1 1AA", EffectiveFromDate: day(2024, 1, 1),
	}}
	require.NoError(t, conn.Create(&ta).Error)

	svc := NewAddressService(conn, time.UTC)
	got, err := svc.TuitionAddressAt(ctx, student.ID, at(2024, 9, 10, 16, 0))
	require.NoError(t, err)
	assert.Equal(t, ta.ID, got.ID)
}
