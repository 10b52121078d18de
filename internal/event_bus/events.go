package event_bus

// Case lifecycle events published by the casefile service.
const (
	EventCaseCreated      EventType = "case.created"
	EventCaseUpdated      EventType = "case.updated"
	EventCaseDeleted      EventType = "case.deleted"
	EventPaymentsRecorded EventType = "case.payments_recorded"
)

// PaymentsRecordedData is the payload of EventPaymentsRecorded.
type PaymentsRecordedData struct {
	CaseUid string
	Count   int
}

// CaseData is the payload of the case lifecycle events.
type CaseData struct {
	CaseUid string
}
