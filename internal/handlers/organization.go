package handlers

import (
	"context"

	"github.com/JonMunkholm/importdata/internal/core"
	"github.com/JonMunkholm/importdata/internal/domain"
	"github.com/JonMunkholm/importdata/internal/store"
	"github.com/JonMunkholm/importdata/internal/validate"
)

var departmentFields = []core.FieldSpec{
	{Name: "Name", Required: true},
	{Name: "ShortName"},
	{Name: "HeadOffice", Type: core.FieldReference},
	{Name: "BusinessUnit", Type: core.FieldReference},
	{Name: "Manager", Type: core.FieldReference},
	{Name: "Phone"},
	{Name: "Note"},
}

// Department imports departments. A department matches an existing one
// by name within the same business unit; a department without a business
// unit matches any.
type Department struct{ *Deps }

func (h Department) Name() string { return "Department" }

func (h Department) Fields() []core.FieldSpec { return departmentFields }

func (h Department) Import(ctx context.Context, row core.Row, shift int, opts core.ImportOptions) core.Result {
	return h.run(ctx, h.Name(), row, shift, departmentFields, func(r *rowScope, f core.Fields) core.Outcome {
		name := f.Get("Name")
		r.describe("Name: \"%s\"", name)

		bu := r.businessUnit("Business unit", f.Get("BusinessUnit"), warnIfMissing)
		head := r.department("Head office", f.Get("HeadOffice"), bu, warnIfMissing)
		manager := r.employee("Manager", f.Get("Manager"), warnIfMissing)
		if !r.ok() {
			return core.OutcomeRejected
		}

		var existing *domain.Department
		if opts.DetectDuplicates() {
			found, err := r.sess.FindDepartments(ctx, store.DepartmentFilter{Name: name, BusinessUnitID: bu})
			if !r.stored(err) {
				return core.OutcomeRejected
			}
			var ok bool
			if existing, ok = target(r, opts, found, "name and business unit"); !ok {
				return core.OutcomeRejected
			}
		}

		d := existing
		if d == nil {
			d = &domain.Department{}
		}
		d.Name = name
		d.ShortName = f.Get("ShortName")
		d.BusinessUnitID = bu
		d.HeadOfficeID = nil
		if head != nil && head.ID != d.ID {
			d.HeadOfficeID = &head.ID
		}
		d.ManagerID = manager
		d.Phone = f.Get("Phone")
		d.Note = f.Get("Note")
		if !r.stored(r.sess.SaveDepartment(ctx, d)) || !r.commit() {
			return core.OutcomeRejected
		}
		return outcome(existing)
	})
}

var employeeFields = []core.FieldSpec{
	{Name: "LastName", Required: true},
	{Name: "FirstName", Required: true},
	{Name: "MiddleName"},
	{Name: "Department", Type: core.FieldReference, Required: true},
	{Name: "JobTitle", Type: core.FieldReference},
	{Name: "Sex"},
	{Name: "DateOfBirth", Type: core.FieldDate},
	{Name: "TIN"},
	{Name: "SNILS"},
	{Name: "PersonnelNumber"},
	{Name: "Email"},
	{Name: "Phone"},
	{Name: "Note"},
}

// Employee imports employees. The person is reused when one with the same
// full name and a compatible date of birth exists; the department and job
// title are created when missing.
type Employee struct{ *Deps }

func (h Employee) Name() string { return "Employee" }

func (h Employee) Fields() []core.FieldSpec { return employeeFields }

func (h Employee) Import(ctx context.Context, row core.Row, shift int, opts core.ImportOptions) core.Result {
	return h.run(ctx, h.Name(), row, shift, employeeFields, func(r *rowScope, f core.Fields) core.Outcome {
		p := domain.Person{
			LastName:   f.Get("LastName"),
			FirstName:  f.Get("FirstName"),
			MiddleName: f.Get("MiddleName"),
			TIN:        f.Get("TIN"),
			SNILS:      f.Get("SNILS"),
			Email:      f.Get("Email"),
			Phones:     f.Get("Phone"),
		}
		r.describe("Name: \"%s\"", p.Name())
		p.DateOfBirth = r.date("Date of birth", f.Get("DateOfBirth"))
		p.Sex = r.sex(f.Get("Sex"))
		if !r.ok() || !r.validate(validate.TIN(p.TIN), validate.SNILS(p.SNILS)) {
			return core.OutcomeRejected
		}

		dept := r.department("Department", f.Get("Department"), nil, createIfMissing)
		jobTitle := r.directory(domain.KindJobTitle, f.Get("JobTitle"), createIfMissing)
		if !r.ok() {
			return core.OutcomeRejected
		}

		persons, err := findPersons(r, p, false)
		if !r.stored(err) {
			return core.OutcomeRejected
		}
		person := &p
		if len(persons) > 0 {
			person = persons[0]
		} else if !r.stored(r.sess.SavePerson(ctx, person)) {
			return core.OutcomeRejected
		}

		var existing *domain.Employee
		if opts.DetectDuplicates() {
			found, err := r.sess.FindEmployees(ctx, store.EmployeeFilter{PersonID: &person.ID, DepartmentID: &dept.ID})
			if !r.stored(err) {
				return core.OutcomeRejected
			}
			var ok bool
			if existing, ok = target(r, opts, found, "person and department"); !ok {
				return core.OutcomeRejected
			}
		}

		e := existing
		if e == nil {
			e = &domain.Employee{}
		}
		e.PersonID = person.ID
		e.Name = person.Name()
		e.DepartmentID = dept.ID
		e.JobTitleID = jobTitle
		e.PersonnelNumber = f.Get("PersonnelNumber")
		e.Email = f.Get("Email")
		e.Phone = f.Get("Phone")
		e.Note = f.Get("Note")
		if !r.stored(r.sess.SaveEmployee(ctx, e)) || !r.commit() {
			return core.OutcomeRejected
		}
		return outcome(existing)
	})
}
