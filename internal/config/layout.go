package config

import (
	"os"
	"strings"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"
)

// SheetLayout says where an entity's rows live in a workbook.
type SheetLayout struct {
	Sheet string `yaml:"sheet"`
	Shift int    `yaml:"shift" validate:"gte=0"`
}

// Layout maps entity names to sheet placement.
//
// Example file:
//
//	entities:
//	  Company:
//	    sheet: Контрагенты
//	  Department:
//	    sheet: Оргструктура
//	    shift: 3
type Layout struct {
	Entities map[string]SheetLayout `yaml:"entities" validate:"dive"`
}

// defaultSheets names the sheet each entity is read from when the layout
// does not say otherwise.
var defaultSheets = map[string]string{
	"Company":        "Companies",
	"Person":         "Persons",
	"BusinessUnit":   "BusinessUnits",
	"Department":     "Departments",
	"Employee":       "Employees",
	"Contract":       "Contracts",
	"SupAgreement":   "SupAgreements",
	"IncomingLetter": "IncomingLetters",
	"OutgoingLetter": "OutgoingLetters",
	"Order":          "Orders",
	"Addendum":       "Addendums",
}

// DefaultLayout returns the built-in layout: one sheet per entity, no shift.
func DefaultLayout() *Layout {
	l := &Layout{Entities: make(map[string]SheetLayout, len(defaultSheets))}
	for entity, sheet := range defaultSheets {
		l.Entities[entity] = SheetLayout{Sheet: sheet}
	}
	return l
}

// LoadLayout reads a YAML layout from path and merges it over the defaults.
// An empty path returns DefaultLayout.
func LoadLayout(path string) (*Layout, error) {
	l := DefaultLayout()
	if path == "" {
		return l, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read layout %s", path)
	}
	var file Layout
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, "parse layout %s", path)
	}
	if err := validate.Struct(&file); err != nil {
		return nil, errors.Wrapf(err, "layout %s", path)
	}

	for entity, sl := range file.Entities {
		key := l.key(entity)
		if sl.Sheet == "" {
			sl.Sheet = l.Entities[key].Sheet
		}
		l.Entities[key] = sl
	}
	return l, nil
}

// For returns the placement of entity. Unknown entities read a sheet named
// after themselves.
func (l *Layout) For(entity string) SheetLayout {
	if sl, ok := l.Entities[l.key(entity)]; ok {
		return sl
	}
	return SheetLayout{Sheet: entity}
}

// key matches entity names case-insensitively against known entries.
func (l *Layout) key(entity string) string {
	for k := range l.Entities {
		if strings.EqualFold(k, entity) {
			return k
		}
	}
	return entity
}
