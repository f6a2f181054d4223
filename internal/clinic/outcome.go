package clinic

// OutcomeKind discriminates what a booking request did to the appointment.
type OutcomeKind int

const (
	OutcomeRejected OutcomeKind = iota + 1
	OutcomeBooked
	OutcomeWaitlisted
	OutcomeAlreadyWaitlisted
	OutcomeUnrecognizedStatus
)

// RejectReasonConcluded is the only reason a booking is rejected.
const RejectReasonConcluded = "concluded"

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeRejected:
		return "rejected"
	case OutcomeBooked:
		return "booked"
	case OutcomeWaitlisted:
		return "waitlisted"
	case OutcomeAlreadyWaitlisted:
		return "already_waitlisted"
	case OutcomeUnrecognizedStatus:
		return "unrecognized_status"
	}
	return "unknown"
}

type Outcome struct {
	Kind          OutcomeKind
	AppointmentID int
	// Reason is set for OutcomeRejected.
	Reason string
	// Previous is the status the appointment had when the request arrived,
	// verbatim from the store.
	Previous string
	// Current is the status after the request. Empty for unrecognized statuses.
	Current Status

	PatientResolution     Resolution
	DoctorResolution      Resolution
	AppointmentWasFound   bool
	AppointmentWasCreated bool
}

// Linked reports whether the outcome claims a link row and a patient count
// increment.
func (o Outcome) Linked() bool {
	switch o.Kind {
	case OutcomeBooked, OutcomeWaitlisted, OutcomeAlreadyWaitlisted:
		return true
	}
	return false
}

func (o Outcome) Message() string {
	switch o.Kind {
	case OutcomeRejected:
		return "Appointment already concluded. Not available."
	case OutcomeBooked:
		return "Appointment booked. Thank you."
	case OutcomeWaitlisted:
		return "Appointment already booked. Added to waitlist."
	case OutcomeAlreadyWaitlisted:
		return "Appointment currently waitlisted. Added to waitlist."
	case OutcomeUnrecognizedStatus:
		return "Unknown Appointment Status."
	}
	return ""
}
