package models

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCivilDate(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 23:30 UTC on 30 June is already 1 July in London (BST).
	instant := time.Date(2024, 6, 30, 23, 30, 0, 0, time.UTC)
	if got := CivilDate(instant, london); !got.Equal(date(2024, 7, 1)) {
		t.Errorf("CivilDate(london) = %v, want 2024-07-01", got)
	}
	if got := CivilDate(instant, nil); !got.Equal(date(2024, 6, 30)) {
		t.Errorf("CivilDate(nil) = %v, want 2024-06-30", got)
	}
}

func TestCovers(t *testing.T) {
	end := date(2023, 12, 31)
	closed := PostalAddress{EffectiveFromDate: date(2023, 1, 1), EffectiveToDate: &end}
	open := PostalAddress{EffectiveFromDate: date(2024, 1, 1)}

	tests := []struct {
		name string
		w    Windowed
		day  time.Time
		want bool
	}{
		{"before start", closed, date(2022, 12, 31), false},
		{"first day", closed, date(2023, 1, 1), true},
		{"last day inclusive", closed, date(2023, 12, 31), true},
		{"after end", closed, date(2024, 1, 1), false},
		{"open ended", open, date(2030, 5, 5), true},
		{"open before start", open, date(2023, 6, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Covers(tt.w, tt.day); got != tt.want {
				t.Errorf("Covers() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPostalAddress_Lines(t *testing.T) {
	a := PostalAddress{LineOne: "1 High Street", LineThree: "Didsbury", Town: "Manchester", Postcode: "M20 1AA"}
	got := a.Lines()
	want := []string{"1 High Street", "Didsbury", "Manchester", "M20 1AA"}
	if len(got) != len(want) {
		t.Fatalf("Lines() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Lines()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestInvoiceStatus(t *testing.T) {
	if InvoiceStatusDraft != 1 || InvoiceStatusPaid != 5 {
		t.Fatalf("stored status values changed")
	}
	if InvoiceStatusPartPaid.String() != "Part paid" {
		t.Errorf("String() = %q", InvoiceStatusPartPaid.String())
	}
	if InvoiceStatus(0).Valid() || InvoiceStatus(6).Valid() {
		t.Errorf("out of range statuses must be invalid")
	}
}

func TestInvoice_AccountUserID(t *testing.T) {
	uid := uint(42)
	inv := &Invoice{Client: &Client{UserID: &uid}}
	if got := inv.AccountUserID(); got != 42 {
		t.Errorf("AccountUserID() = %d, want 42", got)
	}
	if got := (&Invoice{}).AccountUserID(); got != 0 {
		t.Errorf("AccountUserID() without client = %d, want 0", got)
	}
	if got := (&Client{}).AccountUserID(); got != 0 {
		t.Errorf("unregistered client AccountUserID() = %d, want 0", got)
	}
}

func TestStudentLabels(t *testing.T) {
	s := Student{Forename: "Ada"}
	if s.FullName() != "Ada" {
		t.Errorf("FullName() = %q", s.FullName())
	}
	s.Surname = "Lovelace"
	if s.FullName() != "Ada Lovelace" {
		t.Errorf("FullName() = %q", s.FullName())
	}
	if SchoolYearLabel(0) != "No longer in school" || SchoolYearLabel(7) != "Year 7" {
		t.Errorf("unexpected school year labels")
	}
}

func TestPermission_Code(t *testing.T) {
	p := Permission{ResourceType: "invoice", Action: "pay"}
	if p.Code() != "invoice:pay" {
		t.Errorf("Code() = %q", p.Code())
	}
}
