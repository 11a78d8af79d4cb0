package medicover

import (
	"fmt"
	"time"
)

const (
	// visitDateLayout is the timestamp format the search endpoint returns.
	visitDateLayout = "2006-01-02T15:04:05"
	// displayDateLayout is how visits are rendered to the user.
	displayDateLayout = "02-01-2006 15:04"
	// nextSinceLayout is the format of the searchForNextSince pagination
	// cursor. The trailing Z is literal; the backend expects it verbatim.
	nextSinceLayout = "2006-01-02T15:04:05.000Z"
)

// AvailableVisit is one bookable appointment slot. Immutable once parsed.
type AvailableVisit struct {
	ID             int
	Specialization string
	Clinic         string
	Doctor         string
	Date           time.Time
}

func parseVisit(data VisitData) (AvailableVisit, error) {
	date, err := time.Parse(visitDateLayout, data.AppointmentDate)
	if err != nil {
		return AvailableVisit{}, fmt.Errorf("failed to parse appointment date %q: %w", data.AppointmentDate, err)
	}
	return AvailableVisit{
		ID:             data.ID,
		Specialization: data.SpecializationName,
		Clinic:         data.ClinicName,
		Doctor:         data.DoctorName,
		Date:           date,
	}, nil
}

func (v AvailableVisit) String() string {
	return fmt.Sprintf("%s, %s, %s, %s", v.Specialization, v.Doctor, v.Clinic, v.Date.Format(displayDateLayout))
}
