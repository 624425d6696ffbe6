package storage

import (
	"context"
	"fmt"

	"oficina/internal/core"
	"oficina/internal/log"
)

const employeeColumns = `id, full_name, tax_id, phone, role, photo_path, hired_on, payment_day,
	thirteenth_salary_month, vacation_month, terminated_on`

// EmployeeRepository persists employee records.
type EmployeeRepository struct {
	store *Store
}

func NewEmployeeRepository(store *Store) *EmployeeRepository {
	return &EmployeeRepository{store: store}
}

func (r *EmployeeRepository) Create(ctx context.Context, e core.Employee) (int64, error) {
	id, err := r.store.Execute(ctx,
		`INSERT INTO employees (full_name, tax_id, phone, role, photo_path, hired_on, payment_day,
		 thirteenth_salary_month, vacation_month, terminated_on) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.FullName, e.TaxID, stringArg(e.Phone), stringArg(e.Role), stringArg(e.PhotoPath),
		dateArg(e.HiredOn), e.PaymentDay, monthArg(e.ThirteenthSalaryMonth), monthArg(e.VacationMonth),
		dateArg(e.TerminatedOn))
	if err != nil {
		return 0, fmt.Errorf("create employee: %w", err)
	}

	r.store.logger.InfoContext(ctx, "Employee saved to SQLite",
		log.NewFields().WithOperation(log.OpCreate).WithRecord(string(core.KindEmployee), id).ToSlice()...)
	return id, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, e core.Employee) error {
	if e.ID == 0 {
		return core.ErrIdentityRequired
	}
	err := r.store.execAffected(ctx,
		`UPDATE employees SET full_name = ?, tax_id = ?, phone = ?, role = ?, photo_path = ?, hired_on = ?,
		 payment_day = ?, thirteenth_salary_month = ?, vacation_month = ?, terminated_on = ? WHERE id = ?`,
		e.FullName, e.TaxID, stringArg(e.Phone), stringArg(e.Role), stringArg(e.PhotoPath),
		dateArg(e.HiredOn), e.PaymentDay, monthArg(e.ThirteenthSalaryMonth), monthArg(e.VacationMonth),
		dateArg(e.TerminatedOn), e.ID)
	if err != nil {
		return fmt.Errorf("update employee %d: %w", e.ID, err)
	}
	return nil
}

// List returns every employee in ascending id order.
func (r *EmployeeRepository) List(ctx context.Context) ([]core.Employee, error) {
	rows, err := r.store.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	out := make([]core.Employee, 0, len(rows))
	for _, row := range rows {
		e, err := decodeEmployee(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *EmployeeRepository) Get(ctx context.Context, id int64) (core.Employee, error) {
	rows, err := r.store.Query(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	if err != nil {
		return core.Employee{}, fmt.Errorf("get employee %d: %w", id, err)
	}
	if len(rows) == 0 {
		return core.Employee{}, fmt.Errorf("employee %d: %w", id, ErrNotFound)
	}
	return decodeEmployee(rows[0])
}

func decodeEmployee(row []any) (core.Employee, error) {
	d := newRowDecoder(row)
	e := core.Employee{
		ID:                    d.i64(),
		FullName:              d.text(),
		TaxID:                 d.text(),
		Phone:                 d.text(),
		Role:                  d.text(),
		PhotoPath:             d.text(),
		HiredOn:               d.day(),
		PaymentDay:            d.integer(),
		ThirteenthSalaryMonth: d.integer(),
		VacationMonth:         d.integer(),
		TerminatedOn:          d.day(),
	}
	if d.err != nil {
		return core.Employee{}, fmt.Errorf("decode employee: %w", d.err)
	}
	return e, nil
}
