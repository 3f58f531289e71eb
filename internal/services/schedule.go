package services

import (
	"time"

	"github.com/diewo77/bespoke-tuition/internal/models"
	"github.com/diewo77/bespoke-tuition/validation"
)

// DisplayDate is the dd/mm/yyyy layout used in messages and documents.
const DisplayDate = "02/01/2006"

// ValidateLesson runs every booking rule and reports all failures together.
// start and end are instants read in loc; term dates are calendar dates and
// the last day of term is bookable.
func ValidateLesson(start, end time.Time, term models.Term, loc *time.Location) validation.Violations {
	var v validation.Violations
	if start.After(end) {
		v.Add("lesson_start", "start_after_end")
	}
	startDay := models.CivilDate(start, loc)
	endDay := models.CivilDate(end, loc)
	if !startDay.Equal(endDay) {
		v.Add("lesson_start", "different_day")
	}
	termStart := models.CivilDate(term.TermStartDate, nil)
	if startDay.Before(termStart) {
		v.Add("lesson_start", "before_term_start", termStart.Format(DisplayDate))
	}
	termEnd := models.CivilDate(term.TermEndDate, nil)
	if endDay.After(termEnd) {
		v.Add("lesson_end", "after_term_end", termEnd.Format(DisplayDate))
	}
	return v
}

// ValidateLessonUpdate is the lighter check applied when an existing lesson is
// edited: only the ordering of start and end.
func ValidateLessonUpdate(start, end time.Time) validation.Violations {
	var v validation.Violations
	if start.After(end) {
		v.Add("lesson_start", "start_after_end")
	}
	return v
}

func ValidateTerm(t models.Term) validation.Violations {
	var v validation.Violations
	validation.Required("name", t.Name, &v)
	validation.MaxLength("name", t.Name, 100, &v)
	if t.TermStartDate.After(t.TermEndDate) {
		v.Add("term_start_date", "term_start_after_end")
	}
	if t.HalfTermStartDate.After(t.HalfTermEndDate) {
		v.Add("half_term_start_date", "half_term_start_after_end")
	}
	if t.HalfTermEndDate.After(t.TermEndDate) {
		v.Add("half_term_end_date", "half_term_end_after_term_end")
	}
	if t.TermStartDate.After(t.HalfTermStartDate) {
		v.Add("term_start_date", "term_start_after_half_term")
	}
	return v
}
