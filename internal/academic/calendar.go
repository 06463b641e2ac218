package academic

import (
	"fmt"
	"strconv"
	"time"
)

// SemesterAnchor is a wall-clock month/day pair marking when a semester of
// the academic year begins.
type SemesterAnchor struct {
	Month int `json:"month"`
	Day   int `json:"day"`
}

// CalendarConfig holds the admin-configured semester start anchors. It is
// re-read on every resolution; there is no persisted "current year" state.
type CalendarConfig struct {
	FirstSemStart  SemesterAnchor `json:"first_sem_start"`
	SecondSemStart SemesterAnchor `json:"second_sem_start"`
}

// DefaultCalendarConfig returns the anchors used when nothing is configured:
// first semester starts July 1, second semester January 1.
func DefaultCalendarConfig() CalendarConfig {
	return CalendarConfig{
		FirstSemStart:  SemesterAnchor{Month: 7, Day: 1},
		SecondSemStart: SemesterAnchor{Month: 1, Day: 1},
	}
}

// Position is a student's place in the programme calendar at a given instant.
type Position struct {
	StudyYear         int    `json:"study_year"`
	Semester          int    `json:"semester"`
	SemesterLabel     string `json:"semester_label"`
	AcademicStartYear int    `json:"academic_start_year"`
	StudyYearLabel    string `json:"study_year_label"`
	Clamped           bool   `json:"clamped"`
}

var semesterLabels = map[int]string{
	1: "I", 2: "II", 3: "III", 4: "IV",
	5: "V", 6: "VI", 7: "VII", 8: "VIII",
}

// ResolvePosition computes the current study year and semester for a parsed
// roll number. The caller samples now once and passes it through so one
// resolution pass stays self-consistent. Out of range positions (graduated or
// pre-admission entry years) are clamped into the programme span and reported
// through the Clamped flag instead of an error.
func ResolvePosition(rn RollNumber, cfg CalendarConfig, now time.Time) Position {
	currentTotal := int(now.Month())*100 + now.Day()
	firstTotal := cfg.FirstSemStart.Month*100 + cfg.FirstSemStart.Day
	secondTotal := cfg.SecondSemStart.Month*100 + cfg.SecondSemStart.Day

	startYear := now.Year()
	secondHalf := false

	if cfg.SecondSemStart.Month < cfg.FirstSemStart.Month {
		// Second semester anchor rolls over into the next calendar year.
		switch {
		case currentTotal >= firstTotal:
			// first half of the academic year that began this calendar year
		case currentTotal >= secondTotal:
			startYear--
			secondHalf = true
		default:
			// sliver between Jan 1 and the second semester anchor
			startYear--
		}
	} else {
		switch {
		case currentTotal >= secondTotal:
			secondHalf = true
		case currentTotal >= firstTotal:
			// first half, started this calendar year
		default:
			startYear--
			secondHalf = true
		}
	}

	rawYear := startYear - rn.EntryYear + 1
	if rn.Admission == AdmissionLateral {
		rawYear++
	}

	maxYears := MaxStudyYears(rn.Admission)
	studyYear := rawYear
	if studyYear < 1 {
		studyYear = 1
	}
	if studyYear > maxYears {
		studyYear = maxYears
	}

	semester := studyYear*2 - 1
	if secondHalf {
		semester = studyYear * 2
	}

	return Position{
		StudyYear:         studyYear,
		Semester:          semester,
		SemesterLabel:     semesterLabel(semester),
		AcademicStartYear: startYear,
		StudyYearLabel:    StudyYearLabel(rn, studyYear),
		Clamped:           rawYear != studyYear,
	}
}

// AdmissionSpanLabel formats the full programme span for the entrant, e.g.
// "2023-2027" for a regular 2023 admission and "2023-2026" for a lateral one.
// Not interchangeable with StudyYearLabel.
func AdmissionSpanLabel(rn RollNumber) string {
	span := 4
	if rn.Admission == AdmissionLateral {
		span = 3
	}
	return fmt.Sprintf("%d-%d", rn.EntryYear, rn.EntryYear+span)
}

// StudyYearLabel formats the short label for one study year of the entrant,
// e.g. the 2nd study year of a 2023 regular entrant is "2024-25". Lateral
// entrants begin at study year 2, so their labels shift back one calendar
// year.
func StudyYearLabel(rn RollNumber, studyYear int) string {
	offset := 1
	if rn.Admission == AdmissionLateral {
		offset = 2
	}
	start := rn.EntryYear + studyYear - offset
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

func semesterLabel(semester int) string {
	if label, ok := semesterLabels[semester]; ok {
		return label
	}
	return strconv.Itoa(semester)
}
