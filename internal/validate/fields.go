package validate

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/importdata/internal/domain"
)

var v = validator.New()

// MaxLength checks that value has at most n characters.
func MaxLength(field, value string, n int) error {
	if err := v.Var(value, "max="+strconv.Itoa(n)); err != nil {
		return errors.Errorf("%s cannot be longer than %d characters", field, n)
	}
	return nil
}

// serialEpoch is day zero of the spreadsheet serial date system.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// maxSerial is 9999-12-31.
const maxSerial = 2958465

// SerialDate converts a spreadsheet serial date (days since 1899-12-30,
// fraction is time of day and dropped) into a calendar date.
func SerialDate(value string) (time.Time, error) {
	s := strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, errors.Errorf("cannot parse date %q: expected a spreadsheet serial number", value)
	}
	if f < 1 || f > maxSerial {
		return time.Time{}, errors.Errorf("date %q is out of range", value)
	}
	return serialEpoch.AddDate(0, 0, int(math.Floor(f))), nil
}

// OptionalSerialDate is SerialDate that maps empty input to the zero time.
func OptionalSerialDate(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	return SerialDate(value)
}

// Bool maps the spreadsheet's "yes" marker to true. Anything else is false.
func Bool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "да", "yes", "true":
		return true
	default:
		return false
	}
}

var lifeCycleStates = map[string]domain.LifeCycleState{
	"черновик":    domain.LifeCycleDraft,
	"draft":       domain.LifeCycleDraft,
	"действующий": domain.LifeCycleActive,
	"active":      domain.LifeCycleActive,
	"устаревший":  domain.LifeCycleObsolete,
	"аннулирован": domain.LifeCycleObsolete,
	"obsolete":    domain.LifeCycleObsolete,
	"расторгнут":  domain.LifeCycleTerminated,
	"terminated":  domain.LifeCycleTerminated,
	"исполнен":    domain.LifeCycleClosed,
	"closed":      domain.LifeCycleClosed,
}

// LifeCycleState maps a state name to its enumeration value.
// Empty input yields LifeCycleNone without error.
func LifeCycleState(name string) (domain.LifeCycleState, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return domain.LifeCycleNone, nil
	}
	st, ok := lifeCycleStates[key]
	if !ok {
		return domain.LifeCycleNone, errors.Errorf("unknown life cycle state %q", name)
	}
	return st, nil
}

// Sex maps a sex marker to its enumeration value. Empty is unknown.
func Sex(value string) (domain.Sex, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return domain.SexUnknown, nil
	case "м", "муж", "мужской", "m", "male":
		return domain.SexMale, nil
	case "ж", "жен", "женский", "f", "female":
		return domain.SexFemale, nil
	default:
		return domain.SexUnknown, errors.Errorf("unknown sex %q", value)
	}
}

// Amount parses a money amount. Spaces and a decimal comma are accepted.
// Empty input yields an invalid NullDecimal.
func Amount(value string) (decimal.NullDecimal, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	s = strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, errors.Errorf("cannot parse amount %q", value)
	}
	if d.IsNegative() {
		return decimal.NullDecimal{}, errors.Errorf("amount %q cannot be negative", value)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}
