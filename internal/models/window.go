package models

import "time"

// Windowed is implemented by records that are valid between two calendar
// dates. A nil end means the record is still current.
type Windowed interface {
	Window() (from time.Time, to *time.Time)
}

// CivilDate truncates t to its calendar day. Instants are first moved into
// loc; pass nil for values that already are calendar dates (SQL date columns).
func CivilDate(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Covers reports whether the window [from, to] contains day. day must already
// be a civil date.
func Covers(w Windowed, day time.Time) bool {
	from, to := w.Window()
	if CivilDate(from, nil).After(day) {
		return false
	}
	return to == nil || !CivilDate(*to, nil).Before(day)
}

// PostalAddress is the address block shared by client and tuition addresses.
type PostalAddress struct {
	LineOne           string     `gorm:"size:100;not null" json:"line_one"`
	LineTwo           string     `gorm:"size:100" json:"line_two,omitempty"`
	LineThree         string     `gorm:"size:100" json:"line_three,omitempty"`
	Town              string     `gorm:"size:100;not null" json:"town"`
	Postcode          string     `gorm:"size:10;not null" json:"postcode"`
	EffectiveFromDate time.Time  `gorm:"type:date;not null" json:"effective_from_date"`
	EffectiveToDate   *time.Time `gorm:"type:date" json:"effective_to_date,omitempty"`
}

func (a PostalAddress) Window() (time.Time, *time.Time) {
	return a.EffectiveFromDate, a.EffectiveToDate
}

// Lines returns the non-empty address lines, town and postcode last.
func (a PostalAddress) Lines() []string {
	var lines []string
	for _, l := range []string{a.LineOne, a.LineTwo, a.LineThree, a.Town, a.Postcode} {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
