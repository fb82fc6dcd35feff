package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/importdata/internal/domain"
	"github.com/JonMunkholm/importdata/internal/store"
)

func businessUnitColumns() []string {
	return append([]string{"id", "head_company_id", "ceo_id"}, requisitesColumns...)
}

func scanBusinessUnit(row pgx.Row) (*domain.BusinessUnit, error) {
	var (
		bu        domain.BusinessUnit
		head, ceo pgtype.UUID
		rs        requisitesScan
	)
	dest := append([]any{&bu.ID, &head, &ceo}, rs.dest(&bu.Requisites)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	bu.HeadCompanyID = FromPgUUID(head)
	bu.CEOID = FromPgUUID(ceo)
	rs.apply(&bu.Requisites)
	return &bu, nil
}

func (s *session) FindBusinessUnits(ctx context.Context, f store.RequisitesFilter) ([]*domain.BusinessUnit, error) {
	w := requisitesWhere(f)
	if w.empty() {
		return nil, nil
	}
	sql := "SELECT " + joinColumns(businessUnitColumns()) + " FROM business_units" + w.sql("OR") + " ORDER BY seq"
	return query(ctx, s, sql, w.args, scanBusinessUnit)
}

func (s *session) SaveBusinessUnit(ctx context.Context, bu *domain.BusinessUnit) error {
	if err := store.CheckBusinessUnit(bu); err != nil {
		return err
	}
	store.AssignID(&bu.ID)
	args := append([]any{bu.ID, ToPgUUID(bu.HeadCompanyID), ToPgUUID(bu.CEOID)}, requisitesArgs(bu.Requisites)...)
	return s.write(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, upsertSQL("business_units", businessUnitColumns()), args...)
		return err
	})
}

var departmentColumns = []string{
	"id", "name", "short_name", "head_office_id", "business_unit_id", "manager_id", "phone", "note",
}

func scanDepartment(row pgx.Row) (*domain.Department, error) {
	var (
		d                       domain.Department
		shortName, phone, note  pgtype.Text
		headOffice, bu, manager pgtype.UUID
	)
	if err := row.Scan(&d.ID, &d.Name, &shortName, &headOffice, &bu, &manager, &phone, &note); err != nil {
		return nil, err
	}
	d.ShortName = FromPgText(shortName)
	d.HeadOfficeID = FromPgUUID(headOffice)
	d.BusinessUnitID = FromPgUUID(bu)
	d.ManagerID = FromPgUUID(manager)
	d.Phone = FromPgText(phone)
	d.Note = FromPgText(note)
	return &d, nil
}

func (s *session) FindDepartments(ctx context.Context, f store.DepartmentFilter) ([]*domain.Department, error) {
	if f.Name == "" {
		return nil, nil
	}
	w := &where{}
	w.add(normalized("name")+" = ?", store.NormalizeName(f.Name))
	if f.BusinessUnitID != nil {
		w.add("business_unit_id IS NULL OR business_unit_id = ?", *f.BusinessUnitID)
	}
	sql := "SELECT " + joinColumns(departmentColumns) + " FROM departments" + w.sql("AND") + " ORDER BY seq"
	return query(ctx, s, sql, w.args, scanDepartment)
}

func (s *session) GetDepartment(ctx context.Context, id uuid.UUID) (*domain.Department, error) {
	sql := "SELECT " + joinColumns(departmentColumns) + " FROM departments WHERE id = $1"
	return get(ctx, s, sql, []any{id}, scanDepartment)
}

func (s *session) SaveDepartment(ctx context.Context, d *domain.Department) error {
	if err := store.CheckDepartment(d); err != nil {
		return err
	}
	store.AssignID(&d.ID)
	args := []any{
		d.ID, d.Name, ToPgText(d.ShortName), ToPgUUID(d.HeadOfficeID), ToPgUUID(d.BusinessUnitID),
		ToPgUUID(d.ManagerID), ToPgText(d.Phone), ToPgText(d.Note),
	}
	return s.write(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, upsertSQL("departments", departmentColumns), args...)
		return err
	})
}

var employeeColumns = []string{
	"id", "person_id", "name", "department_id", "job_title_id", "personnel_number", "email", "phone", "note",
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var (
		e                                   domain.Employee
		jobTitle                            pgtype.UUID
		personnelNumber, email, phone, note pgtype.Text
	)
	err := row.Scan(&e.ID, &e.PersonID, &e.Name, &e.DepartmentID, &jobTitle,
		&personnelNumber, &email, &phone, &note)
	if err != nil {
		return nil, err
	}
	e.JobTitleID = FromPgUUID(jobTitle)
	e.PersonnelNumber = FromPgText(personnelNumber)
	e.Email = FromPgText(email)
	e.Phone = FromPgText(phone)
	e.Note = FromPgText(note)
	return &e, nil
}

func (s *session) FindEmployees(ctx context.Context, f store.EmployeeFilter) ([]*domain.Employee, error) {
	w := &where{}
	if f.Name != "" {
		w.add(normalized("name")+" = ?", store.NormalizeName(f.Name))
	}
	if f.PersonID != nil {
		w.add("person_id = ?", *f.PersonID)
	}
	if f.DepartmentID != nil {
		w.add("department_id = ?", *f.DepartmentID)
	}
	if w.empty() {
		return nil, nil
	}
	sql := "SELECT " + joinColumns(employeeColumns) + " FROM employees" + w.sql("AND") + " ORDER BY seq"
	return query(ctx, s, sql, w.args, scanEmployee)
}

func (s *session) SaveEmployee(ctx context.Context, e *domain.Employee) error {
	if err := store.CheckEmployee(e); err != nil {
		return err
	}
	store.AssignID(&e.ID)
	args := []any{
		e.ID, e.PersonID, e.Name, e.DepartmentID, ToPgUUID(e.JobTitleID),
		ToPgText(e.PersonnelNumber), ToPgText(e.Email), ToPgText(e.Phone), ToPgText(e.Note),
	}
	return s.write(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, upsertSQL("employees", employeeColumns), args...)
		return err
	})
}
