package casefile

import (
	"context"
	"fmt"

	"github.com/arrearly/arrearly/internal/event_bus"
	"github.com/arrearly/arrearly/internal/utils"
	"github.com/arrearly/arrearly/pkg/allocation"
	"github.com/arrearly/arrearly/pkg/payment"
	"github.com/arrearly/arrearly/pkg/report"
	"github.com/arrearly/arrearly/pkg/schedule"
	"github.com/arrearly/arrearly/pkg/violation"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Compliance is the full reconciliation result for a case: the allocated due
// calendar, the exhibit totals, and the violations left after every recorded
// payment has been applied.
type Compliance struct {
	Dues       []allocation.AnnotatedDue
	Totals     allocation.Summary
	Violations []violation.Violation
}

type Service interface {
	CreateCase(ctx context.Context, c Case) (Case, error)
	GetCase(ctx context.Context, uid string) (Case, error)
	ListCases(ctx context.Context) ([]Case, error)
	UpdateCase(ctx context.Context, c Case) (Case, error)
	DeleteCase(ctx context.Context, uid string) error
	// RecordPayments parses pasted agency rows and appends them to the case.
	RecordPayments(ctx context.Context, uid string, text string) ([]payment.PaymentMade, error)
	// DueCalendar generates the merged due calendar from the order terms.
	DueCalendar(ctx context.Context, uid string) ([]schedule.AmountDue, error)
	// Compliance reconciles the due calendar against the recorded payments.
	Compliance(ctx context.Context, uid string) (Compliance, error)
	// CombinedReport merges dues and payments into the tagged report stream.
	CombinedReport(ctx context.Context, uid string) ([]report.Record, error)
}

type ServiceImpl struct {
	repo  Repo
	clock utils.Clock
	bus   *event_bus.EventBus
}

func NewService(repo Repo, clock utils.Clock, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: clock, bus: bus}
}

func (s *ServiceImpl) CreateCase(ctx context.Context, c Case) (Case, error) {
	if err := c.Validate(); err != nil {
		return Case{}, fmt.Errorf("invalid case: %w", err)
	}
	c.Uid = uuid.NewString()

	id, err := s.repo.Store(ctx, c)
	if err != nil {
		return Case{}, err
	}
	c.Id = id

	s.bus.Publish(event_bus.NewEvent(ctx, event_bus.EventCaseCreated, event_bus.CaseData{CaseUid: c.Uid}))
	return c, nil
}

func (s *ServiceImpl) GetCase(ctx context.Context, uid string) (Case, error) {
	return s.repo.GetByUid(ctx, uid)
}

func (s *ServiceImpl) ListCases(ctx context.Context) ([]Case, error) {
	return s.repo.GetAll(ctx)
}

func (s *ServiceImpl) UpdateCase(ctx context.Context, c Case) (Case, error) {
	if err := c.Validate(); err != nil {
		return Case{}, fmt.Errorf("invalid case: %w", err)
	}
	stored, err := s.repo.GetByUid(ctx, c.Uid)
	if err != nil {
		return Case{}, err
	}
	c.Id = stored.Id

	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		return Case{}, err
	}
	if !updated {
		log.Warnf("case %s not updated, probably because it was deleted concurrently", c.Uid)
		return Case{}, ErrCaseNotFound
	}

	s.bus.Publish(event_bus.NewEvent(ctx, event_bus.EventCaseUpdated, event_bus.CaseData{CaseUid: c.Uid}))
	return s.repo.GetByUid(ctx, c.Uid)
}

func (s *ServiceImpl) DeleteCase(ctx context.Context, uid string) error {
	deleted, err := s.repo.Delete(ctx, uid)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrCaseNotFound
	}
	s.bus.Publish(event_bus.NewEvent(ctx, event_bus.EventCaseDeleted, event_bus.CaseData{CaseUid: uid}))
	return nil
}

func (s *ServiceImpl) RecordPayments(ctx context.Context, uid string, text string) ([]payment.PaymentMade, error) {
	c, err := s.repo.GetByUid(ctx, uid)
	if err != nil {
		return nil, err
	}

	payments, err := payment.ParseRecords(text)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, fmt.Errorf("no payment rows in input")
	}

	if err := s.repo.AddPayments(ctx, c.Id, payments); err != nil {
		return nil, err
	}

	s.bus.Publish(event_bus.NewEvent(ctx, event_bus.EventPaymentsRecorded, event_bus.PaymentsRecordedData{
		CaseUid: uid,
		Count:   len(payments),
	}))
	return payments, nil
}

func (s *ServiceImpl) DueCalendar(ctx context.Context, uid string) ([]schedule.AmountDue, error) {
	c, err := s.repo.GetByUid(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.dueCalendar(c)
}

func (s *ServiceImpl) Compliance(ctx context.Context, uid string) (Compliance, error) {
	c, err := s.repo.GetByUid(ctx, uid)
	if err != nil {
		return Compliance{}, err
	}

	dues, err := s.dueCalendar(c)
	if err != nil {
		return Compliance{}, err
	}

	annotated, err := allocation.Allocate(dues, c.Payments)
	if err != nil {
		return Compliance{}, fmt.Errorf("allocation failed for case %s: %w", uid, err)
	}

	return Compliance{
		Dues:       annotated,
		Totals:     allocation.Totals(annotated),
		Violations: violation.Derive(annotated),
	}, nil
}

func (s *ServiceImpl) CombinedReport(ctx context.Context, uid string) ([]report.Record, error) {
	c, err := s.repo.GetByUid(ctx, uid)
	if err != nil {
		return nil, err
	}
	dues, err := s.dueCalendar(c)
	if err != nil {
		return nil, err
	}
	return report.Combined(dues, c.Payments), nil
}

func (s *ServiceImpl) dueCalendar(c Case) ([]schedule.AmountDue, error) {
	dues, err := schedule.Combined(schedule.CombinedConfig{
		Dependents:     c.Dependents,
		SupportAmount:  c.Terms.SupportAmount,
		MedicalAmount:  c.Terms.MedicalAmount,
		DentalAmount:   c.Terms.DentalAmount,
		StartDate:      c.Terms.StartDate,
		NotBeforeCourt: c.Terms.NotBeforeCourt,
	}, s.clock)
	if err != nil {
		return nil, fmt.Errorf("could not build due calendar for case %s: %w", c.Uid, err)
	}
	return dues, nil
}
