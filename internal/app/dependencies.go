package app

import (
	"database/sql"

	"github.com/arrearly/arrearly/internal/event_bus"
	"github.com/arrearly/arrearly/internal/utils"
	"github.com/arrearly/arrearly/pkg/casefile"
	"github.com/arrearly/arrearly/pkg/report"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus

	CaseRepo    casefile.Repo
	CaseService *casefile.ServiceImpl
	CaseHandler *casefile.Handler

	CsvRenderer *report.CsvRenderer

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	subscribeAuditLog(deps.EventBus)

	deps.Clock = &utils.SystemClock{}
	deps.CsvRenderer = report.NewCsvRenderer()

	deps.CaseRepo = casefile.NewRepo(db)
	deps.CaseService = casefile.NewService(deps.CaseRepo, deps.Clock, deps.EventBus)
	deps.CaseHandler = casefile.NewHandler(deps.CaseService, deps.CsvRenderer)

	return deps
}

// subscribeAuditLog records case lifecycle events. Enforcement work product
// ends up in front of a court, so changes to a case are worth a durable log
// trail even in a single-user deployment.
func subscribeAuditLog(bus *event_bus.EventBus) {
	bus.Subscribe(event_bus.EventCaseCreated, func(e event_bus.Event) error {
		if data, ok := e.Data.(event_bus.CaseData); ok {
			log.Infof("case created: %s", data.CaseUid)
		}
		return nil
	})
	bus.Subscribe(event_bus.EventCaseUpdated, func(e event_bus.Event) error {
		if data, ok := e.Data.(event_bus.CaseData); ok {
			log.Infof("case updated: %s", data.CaseUid)
		}
		return nil
	})
	bus.Subscribe(event_bus.EventCaseDeleted, func(e event_bus.Event) error {
		if data, ok := e.Data.(event_bus.CaseData); ok {
			log.Infof("case deleted: %s", data.CaseUid)
		}
		return nil
	})
	bus.Subscribe(event_bus.EventPaymentsRecorded, func(e event_bus.Event) error {
		if data, ok := e.Data.(event_bus.PaymentsRecordedData); ok {
			log.Infof("recorded %d payments on case %s", data.Count, data.CaseUid)
		}
		return nil
	})
}
