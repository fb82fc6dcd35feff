package handlers

import "github.com/JonMunkholm/importdata/internal/core"

// NewCommandTable builds the table of every import action.
func NewCommandTable(d *Deps) *core.CommandTable {
	step := func(h core.Handler) []core.Step { return []core.Step{{Handler: h}} }

	return core.NewCommandTable(
		core.Command{Name: "importcompanies", Description: "Import counterparty companies", Steps: step(Company{d})},
		core.Command{Name: "importpersons", Description: "Import individual counterparties", Steps: step(Person{d})},
		core.Command{Name: "importbusinessunits", Description: "Import business units", Steps: step(BusinessUnit{d})},
		core.Command{Name: "importdepartments", Description: "Import departments", Steps: step(Department{d})},
		core.Command{Name: "importemployees", Description: "Import employees", Steps: step(Employee{d})},
		core.Command{Name: "importcontracts", Description: "Import contracts", Steps: step(Contract{d})},
		core.Command{Name: "importsupagreements", Description: "Import supplementary agreements", Steps: step(SupAgreement{d})},
		core.Command{Name: "importincomingletters", Description: "Import incoming letters", Steps: step(IncomingLetter{d})},
		core.Command{Name: "importoutgoingletters", Description: "Import outgoing letters", Steps: step(OutgoingLetter{d})},
		core.Command{Name: "importorders", Description: "Import orders", Steps: step(Order{d})},
		core.Command{Name: "importaddendums", Description: "Import addenda", Steps: step(Addendum{d})},

		// Employees create shells for missing departments; the later steps
		// fill them in, so they always run in supplement mode.
		core.Command{
			Name:        "importcompany",
			Description: "Import employees, then business units and departments of one organization",
			Steps: []core.Step{
				{Handler: Employee{d}},
				{Handler: BusinessUnit{d}, ForceSupplement: true},
				{Handler: Department{d}, ForceSupplement: true},
			},
		},
	)
}
