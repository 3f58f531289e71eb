package handlers

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/diewo77/bespoke-tuition/internal/models"
)

const dateLayout = "2006-01-02"

// Date is a calendar date in JSON, written as "2006-01-02". Full RFC 3339
// timestamps are accepted and truncated.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		ts, err2 := time.Parse(time.RFC3339, s)
		if err2 != nil {
			return err
		}
		t = models.CivilDate(ts, nil)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

type addressRequest struct {
	LineOne           string `json:"line_one"`
	LineTwo           string `json:"line_two"`
	LineThree         string `json:"line_three"`
	Town              string `json:"town"`
	Postcode          string `json:"postcode"`
	EffectiveFromDate Date   `json:"effective_from_date"`
	EffectiveToDate   *Date  `json:"effective_to_date"`
}

func (a addressRequest) postal() models.PostalAddress {
	return models.PostalAddress{
		LineOne:           strings.TrimSpace(a.LineOne),
		LineTwo:           strings.TrimSpace(a.LineTwo),
		LineThree:         strings.TrimSpace(a.LineThree),
		Town:              strings.TrimSpace(a.Town),
		Postcode:          strings.ToUpper(strings.TrimSpace(a.Postcode)),
		EffectiveFromDate: a.EffectiveFromDate.Time,
		EffectiveToDate:   a.EffectiveToDate.ptr(),
	}
}

type contactRequest struct {
	ContactNumber string `json:"contact_number" validate:"required,numeric,max=15"`
	EmailAddress  string `json:"email_address" validate:"required,email,max=100"`
}
