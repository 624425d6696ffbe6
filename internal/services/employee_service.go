package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"oficina/internal/amqp"
	"oficina/internal/core"
	"oficina/internal/log"
)

type EmployeeStore interface {
	Create(ctx context.Context, e core.Employee) (int64, error)
	Update(ctx context.Context, e core.Employee) error
	List(ctx context.Context) ([]core.Employee, error)
	Get(ctx context.Context, id int64) (core.Employee, error)
}

// EmployeeService manages the staff register.
type EmployeeService struct {
	employees EmployeeStore
	publisher EventPublisher
	logger    *log.Logger
	now       func() time.Time
}

func NewEmployeeService(employees EmployeeStore, publisher EventPublisher, logger *log.Logger) *EmployeeService {
	if logger == nil {
		logger = log.Discard()
	}
	return &EmployeeService{
		employees: employees,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentEmployees),
		now:       time.Now,
	}
}

// WithClock replaces the clock used by TerminateEmployee and ListActiveEmployees.
func (s *EmployeeService) WithClock(now func() time.Time) *EmployeeService {
	s.now = now
	return s
}

func normalizeEmployee(e core.Employee) core.Employee {
	e.FullName = strings.TrimSpace(e.FullName)
	e.TaxID = strings.TrimSpace(e.TaxID)
	e.Role = strings.TrimSpace(e.Role)
	e.Phone = strings.TrimSpace(e.Phone)
	return e
}

// RegisterEmployee adds an employee and returns the new id.
func (s *EmployeeService) RegisterEmployee(ctx context.Context, e core.Employee) (int64, error) {
	e = normalizeEmployee(e)
	if err := e.Validate(); err != nil {
		return 0, fmt.Errorf("validate employee: %w", err)
	}

	id, err := s.employees.Create(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save employee: %w", err)
	}
	s.logger.InfoContext(ctx, "Employee registered",
		log.NewFields().WithOperation(log.OpCreate).WithRecord(string(core.KindEmployee), id).ToSlice()...)
	publish(ctx, s.publisher, s.logger, core.KindEmployee, id, amqp.OpCreated)
	return id, nil
}

// UpdateEmployee overwrites a persisted employee.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, e core.Employee) error {
	if e.ID == 0 {
		return core.ErrIdentityRequired
	}
	e = normalizeEmployee(e)
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validate employee: %w", err)
	}
	if err := s.employees.Update(ctx, e); err != nil {
		return err
	}
	publish(ctx, s.publisher, s.logger, core.KindEmployee, e.ID, amqp.OpUpdated)
	return nil
}

// TerminateEmployee records the termination date. A zero date means today.
func (s *EmployeeService) TerminateEmployee(ctx context.Context, id int64, on core.Date) error {
	if id == 0 {
		return core.ErrIdentityRequired
	}
	e, err := s.employees.Get(ctx, id)
	if err != nil {
		return err
	}
	if on.IsEmpty() {
		on = core.DateOf(s.now())
	}
	e.TerminatedOn = on
	return s.UpdateEmployee(ctx, e)
}

func (s *EmployeeService) ListEmployees(ctx context.Context) ([]core.Employee, error) {
	return s.employees.List(ctx)
}

// ListActiveEmployees returns employees hired on or before the given day and
// not yet terminated. A zero date means today.
func (s *EmployeeService) ListActiveEmployees(ctx context.Context, on core.Date) ([]core.Employee, error) {
	all, err := s.employees.List(ctx)
	if err != nil {
		return nil, err
	}
	if on.IsEmpty() {
		on = core.DateOf(s.now())
	}
	active := make([]core.Employee, 0, len(all))
	for _, e := range all {
		if e.IsActive(on) {
			active = append(active, e)
		}
	}
	return active, nil
}
