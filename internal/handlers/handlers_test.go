package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/bespoke-tuition/gate"
	"github.com/diewo77/bespoke-tuition/internal/config"
	"github.com/diewo77/bespoke-tuition/internal/db"
	"github.com/diewo77/bespoke-tuition/internal/models"
	"github.com/diewo77/bespoke-tuition/internal/pdf"
	"github.com/diewo77/bespoke-tuition/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeAuthz grants everything unless deny is set; roles are fixed.
type fakeAuthz struct {
	roles []string
	deny  error
}

func (f fakeAuthz) Authorize(context.Context, gate.Action, string, any) error { return f.deny }

func (f fakeAuthz) HasRole(_ context.Context, roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(f.roles, r) {
			return true
		}
	}
	return false
}

var admin = fakeAuthz{roles: []string{models.ProfileAdmin}}

func fixedClock() time.Time { return time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC) }

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := db.Open(config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: "file:" + name + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

// serve routes one request through a mux so path values are populated.
func serve(pattern string, h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.Handle(pattern, Language(h))
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

type seeded struct {
	client  models.Client
	student models.Student
	product models.Product
	term    models.Term
}

func seedBillable(t *testing.T, conn *gorm.DB, withLesson bool) seeded {
	t.Helper()
	var s seeded
	s.client = models.Client{
		Forename: "Jane", Surname: "Smith", Active: true,
		Addresses: []models.Address{{PostalAddress: models.PostalAddress{
			LineOne: "1 High Street", Town: "Manchester", Postcode: "M20 1AA",
			EffectiveFromDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		}}},
	}
	require.NoError(t, conn.Create(&s.client).Error)
	s.student = models.Student{Forename: "Tom", SchoolYear: 5, Parents: []models.Client{s.client}}
	require.NoError(t, conn.Omit("Parents.*").Create(&s.student).Error)
	s.product = models.Product{
		Name: "Maths", Price: decimal.RequireFromString("25.00"),
		EffectiveFromDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, conn.Create(&s.product).Error)
	s.term = models.Term{
		Name:              "Spring 2024",
		TermStartDate:     time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		TermEndDate:       time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC),
		HalfTermStartDate: time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC),
		HalfTermEndDate:   time.Date(2024, 2, 16, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, conn.Create(&s.term).Error)
	if withLesson {
		start := time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC)
		l := models.Lesson{
			StudentID: &s.student.ID, ProductID: s.product.ID, TermID: &s.term.ID,
			LessonStart: start, LessonEnd: start.Add(time.Hour),
		}
		require.NoError(t, conn.Create(&l).Error)
	}
	return s
}

func accountsHandler(conn *gorm.DB, authz Authorizer) *AccountsHandler {
	return NewAccountsHandler(services.NewAccountsService(conn),
		services.NewInvoiceGenerator(conn, time.UTC), authz, fixedClock)
}

func TestGenerate_CreatesInvoice(t *testing.T) {
	conn := openTestDB(t)
	s := seedBillable(t, conn, true)

	h := accountsHandler(conn, admin)
	rec := serve("POST /accounts/{id}/invoices", h.Generate, http.MethodPost,
		"/accounts/"+itoa(s.client.ID)+"/invoices", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body generateResponse
	decodeBody(t, rec, &body)
	assert.True(t, body.Generated)
	assert.Equal(t, 1, body.Lessons)
	require.NotNil(t, body.Invoice)
	assert.Equal(t, "SMI05032024143000", body.Invoice.InvoiceNumber)
	assert.Equal(t, "25.00", body.Invoice.TotalAmount.StringFixed(2))
}

func TestGenerate_NothingToInvoice(t *testing.T) {
	conn := openTestDB(t)
	s := seedBillable(t, conn, false)

	h := accountsHandler(conn, admin)
	rec := serve("POST /accounts/{id}/invoices", h.Generate, http.MethodPost,
		"/accounts/"+itoa(s.client.ID)+"/invoices", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body generateResponse
	decodeBody(t, rec, &body)
	assert.False(t, body.Generated)
	assert.Equal(t, "There are no uninvoiced lessons for this client", body.Message)

	var n int64
	conn.Model(&models.Invoice{}).Count(&n)
	assert.Zero(t, n)
}

func TestGenerate_RequiresAdmin(t *testing.T) {
	conn := openTestDB(t)
	s := seedBillable(t, conn, true)

	h := accountsHandler(conn, fakeAuthz{roles: []string{models.ProfileCustomer}})
	rec := serve("POST /accounts/{id}/invoices", h.Generate, http.MethodPost,
		"/accounts/"+itoa(s.client.ID)+"/invoices", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGenerate_UnknownClient(t *testing.T) {
	conn := openTestDB(t)
	h := accountsHandler(conn, admin)
	rec := serve("POST /accounts/{id}/invoices", h.Generate, http.MethodPost, "/accounts/999/invoices", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookLesson_ReportsViolations(t *testing.T) {
	conn := openTestDB(t)
	s := seedBillable(t, conn, false)
	h := NewStudentHandler(services.NewClientService(conn, time.UTC), services.NewLessonService(conn, time.UTC), fixedClock)

	body := `{"product_id":` + itoa(s.product.ID) + `,"term_id":` + itoa(s.term.ID) +
		`,"lesson_start":"2024-03-04T17:00:00Z","lesson_end":"2024-03-04T16:00:00Z"}`
	rec := serve("POST /students/{id}/lessons", h.BookLesson, http.MethodPost,
		"/students/"+itoa(s.student.ID)+"/lessons", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var resp struct {
		Details violationsBody `json:"details"`
	}
	decodeBody(t, rec, &resp)
	assert.True(t, resp.Details.Violations.Has("lesson_start", "start_after_end"))
	assert.Contains(t, resp.Details.Fields["lesson_start"], "The lesson start should be before the lesson end")
}

func TestBookLesson_Created(t *testing.T) {
	conn := openTestDB(t)
	s := seedBillable(t, conn, false)
	h := NewStudentHandler(services.NewClientService(conn, time.UTC), services.NewLessonService(conn, time.UTC), fixedClock)

	body := `{"product_id":` + itoa(s.product.ID) + `,"term_id":` + itoa(s.term.ID) +
		`,"lesson_start":"2024-03-04T16:00:00Z","lesson_end":"2024-03-04T17:00:00Z"}`
	rec := serve("POST /students/{id}/lessons", h.BookLesson, http.MethodPost,
		"/students/"+itoa(s.student.ID)+"/lessons", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var lesson models.Lesson
	decodeBody(t, rec, &lesson)
	assert.False(t, lesson.Invoiced)
	assert.Equal(t, s.product.ID, lesson.ProductID)
}

func TestDecode_BadJSON(t *testing.T) {
	conn := openTestDB(t)
	h := NewTermHandler(services.NewCatalogService(conn, time.UTC))
	rec := serve("POST /terms", h.Create, http.MethodPost, "/terms", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductDelete_InUse(t *testing.T) {
	conn := openTestDB(t)
	s := seedBillable(t, conn, true)
	h := NewProductHandler(services.NewCatalogService(conn, time.UTC), fixedClock)

	rec := serve("DELETE /products/{id}", h.Delete, http.MethodDelete, "/products/"+itoa(s.product.ID), "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func invoiceHandler(conn *gorm.DB, authz Authorizer) *InvoiceHandler {
	return NewInvoiceHandler(
		services.NewInvoiceDetailService(conn, time.UTC),
		services.NewLedger(conn),
		services.NewClientService(conn, time.UTC),
		pdf.NewRenderer("Bespoke Tuition"),
		authz,
	)
}

func generated(t *testing.T, conn *gorm.DB) *models.Invoice {
	t.Helper()
	s := seedBillable(t, conn, true)
	out, err := services.NewInvoiceGenerator(conn, time.UTC).Generate(context.Background(), s.client.ID, fixedClock())
	require.NoError(t, err)
	require.False(t, out.NoOp())
	return out.Invoice
}

func TestUpdateLesson_InvoicedConflict(t *testing.T) {
	conn := openTestDB(t)
	inv := generated(t, conn)
	var lesson models.Lesson
	require.NoError(t, conn.Where("invoice_id = ?", inv.ID).First(&lesson).Error)
	h := NewLessonHandler(services.NewLessonService(conn, time.UTC))

	rec := serve("PUT /lessons/{id}", h.Update, http.MethodPut, "/lessons/"+itoa(lesson.ID),
		`{"lesson_start":"2024-03-02T16:00:00Z","lesson_end":"2024-03-02T17:00:00Z"}`)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestPay(t *testing.T) {
	conn := openTestDB(t)
	inv := generated(t, conn)
	h := invoiceHandler(conn, admin)
	target := "/invoices/" + itoa(inv.ID) + "/payment"

	rec := serve("PUT /invoices/{id}/payment", h.Pay, http.MethodPut, target,
		`{"status":5,"amount_paid":"30.00"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "overpaid")

	rec = serve("PUT /invoices/{id}/payment", h.Pay, http.MethodPut, target,
		`{"status":4,"amount_paid":"10.00"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Invoice
	decodeBody(t, rec, &updated)
	assert.Equal(t, models.InvoiceStatusPartPaid, updated.Status)
	assert.Equal(t, "15.00", updated.AmountOutstanding.StringFixed(2))
}

func TestPay_ReportsEveryViolation(t *testing.T) {
	conn := openTestDB(t)
	inv := generated(t, conn)
	h := invoiceHandler(conn, admin)

	rec := serve("PUT /invoices/{id}/payment", h.Pay, http.MethodPut,
		"/invoices/"+itoa(inv.ID)+"/payment", `{"amount_paid":"60.00"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var body struct {
		Details violationsBody `json:"details"`
	}
	decodeBody(t, rec, &body)
	v := body.Details.Violations
	assert.True(t, v.Has("status", "invalid_status"), rec.Body.String())
	assert.True(t, v.Has("amount_paid", "overpaid"), rec.Body.String())

	var stored models.Invoice
	require.NoError(t, conn.First(&stored, inv.ID).Error)
	assert.Equal(t, models.InvoiceStatusDraft, stored.Status)
}

func TestPay_CustomerForbidden(t *testing.T) {
	conn := openTestDB(t)
	inv := generated(t, conn)
	h := invoiceHandler(conn, fakeAuthz{roles: []string{models.ProfileCustomer}})

	rec := serve("PUT /invoices/{id}/payment", h.Pay, http.MethodPut,
		"/invoices/"+itoa(inv.ID)+"/payment", `{"status":5,"amount_paid":"25.00"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestInvoiceView_DeniedByPolicy(t *testing.T) {
	conn := openTestDB(t)
	inv := generated(t, conn)
	h := invoiceHandler(conn, fakeAuthz{deny: gate.ErrForbidden})

	rec := serve("GET /invoices/{id}", h.View, http.MethodGet, "/invoices/"+itoa(inv.ID), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestInvoicePDF(t *testing.T) {
	conn := openTestDB(t)
	inv := generated(t, conn)
	h := invoiceHandler(conn, admin)

	rec := serve("GET /invoices/{id}/pdf", h.PDF, http.MethodGet, "/invoices/"+itoa(inv.ID)+"/pdf", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestLanguageNegotiation(t *testing.T) {
	conn := openTestDB(t)
	h := NewTermHandler(services.NewCatalogService(conn, time.UTC))

	mux := http.NewServeMux()
	mux.Handle("POST /terms", Language(http.HandlerFunc(h.Create)))
	req := httptest.NewRequest(http.MethodPost, "/terms", strings.NewReader(`{}`))
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Requis")
}

func TestPathID_Invalid(t *testing.T) {
	conn := openTestDB(t)
	h := NewTermHandler(services.NewCatalogService(conn, time.UTC))
	rec := serve("GET /terms/{id}", h.View, http.MethodGet, "/terms/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
