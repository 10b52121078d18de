package casefile

import (
	"context"
	"sort"

	"github.com/arrearly/arrearly/pkg/payment"
)

type StubRepo struct {
	nextId int
	data   map[string]Case
}

func NewStubRepo() *StubRepo {
	return &StubRepo{data: map[string]Case{}}
}

func (s *StubRepo) Store(ctx context.Context, c Case) (int, error) {
	s.nextId++
	c.Id = s.nextId
	s.data[c.Uid] = c
	return c.Id, nil
}

func (s *StubRepo) GetByUid(ctx context.Context, uid string) (Case, error) {
	c, ok := s.data[uid]
	if !ok {
		return Case{}, ErrCaseNotFound
	}
	return c, nil
}

func (s *StubRepo) GetAll(ctx context.Context) ([]Case, error) {
	cases := make([]Case, 0, len(s.data))
	for _, c := range s.data {
		cases = append(cases, c)
	}
	sort.Slice(cases, func(i, j int) bool { return cases[i].Id < cases[j].Id })
	return cases, nil
}

func (s *StubRepo) Update(ctx context.Context, c Case) (bool, error) {
	stored, ok := s.data[c.Uid]
	if !ok {
		return false, nil
	}
	c.Id = stored.Id
	c.Payments = stored.Payments
	s.data[c.Uid] = c
	return true, nil
}

func (s *StubRepo) Delete(ctx context.Context, uid string) (bool, error) {
	if _, ok := s.data[uid]; !ok {
		return false, nil
	}
	delete(s.data, uid)
	return true, nil
}

func (s *StubRepo) AddPayments(ctx context.Context, caseId int, payments []payment.PaymentMade) error {
	for uid, c := range s.data {
		if c.Id == caseId {
			c.Payments = append(c.Payments, payments...)
			sort.SliceStable(c.Payments, func(i, j int) bool {
				return c.Payments[i].Date.Before(c.Payments[j].Date)
			})
			s.data[uid] = c
		}
	}
	return nil
}

func (s *StubRepo) Cleanup() {
	s.data = map[string]Case{}
}
