// Package validate holds the pure field checks applied to imported values.
//
// Every check returns nil on success or an error whose message can be shown
// to the user as is. Checks never normalize or mutate their input.
package validate

import (
	"regexp"
	"strings"

	"github.com/go-faster/errors"
)

var (
	tinWeights10  = []int{2, 4, 10, 3, 5, 9, 4, 6, 8}
	tinWeights11  = []int{7, 2, 4, 10, 3, 5, 9, 4, 6, 8}
	tinWeights12  = []int{3, 7, 2, 4, 10, 3, 5, 9, 4, 6, 8}
	trrcPattern   = regexp.MustCompile(`^\d{4}[\dA-Z]{2}\d{3}$`)
	digitsPattern = regexp.MustCompile(`^\d+$`)
)

func digits(s string) []int {
	out := make([]int, len(s))
	for i, r := range s {
		out[i] = int(r - '0')
	}
	return out
}

func weighted(d, w []int) int {
	sum := 0
	for i := range w {
		sum += d[i] * w[i]
	}
	return sum
}

// TIN checks a taxpayer identification number. Empty is valid.
// Ten digits identify an organization, twelve a person.
func TIN(tin string) error {
	if tin == "" {
		return nil
	}
	if !digitsPattern.MatchString(tin) {
		return errors.New("TIN must contain digits only")
	}
	d := digits(tin)
	switch len(d) {
	case 10:
		if weighted(d, tinWeights10)%11%10 != d[9] {
			return errors.New("TIN checksum mismatch")
		}
	case 12:
		if weighted(d, tinWeights11)%11%10 != d[10] || weighted(d, tinWeights12)%11%10 != d[11] {
			return errors.New("TIN checksum mismatch")
		}
	default:
		return errors.New("TIN must be 10 or 12 digits long")
	}
	return nil
}

// TRRC checks a tax registration reason code. Empty is valid.
func TRRC(trrc string) error {
	if trrc == "" {
		return nil
	}
	if len(trrc) != 9 {
		return errors.New("TRRC must be 9 characters long")
	}
	if !trrcPattern.MatchString(trrc) {
		return errors.New("TRRC must be four digits, two digits or capital letters, then three digits")
	}
	return nil
}

// PSRN checks a primary state registration number. Empty is valid.
// Thirteen digits identify an organization, fifteen an entrepreneur.
func PSRN(psrn string) error {
	if psrn == "" {
		return nil
	}
	if !digitsPattern.MatchString(psrn) {
		return errors.New("PSRN must contain digits only")
	}
	var divisor uint64
	switch len(psrn) {
	case 13:
		divisor = 11
	case 15:
		divisor = 13
	default:
		return errors.New("PSRN must be 13 or 15 digits long")
	}

	var body uint64
	for _, r := range psrn[:len(psrn)-1] {
		body = body*10 + uint64(r-'0')
	}
	check := uint64(psrn[len(psrn)-1] - '0')
	if body%divisor%10 != check {
		return errors.New("PSRN checksum mismatch")
	}
	return nil
}

// SNILS checks an insurance account number. Empty is valid.
// Separators ("-" and spaces) are ignored.
func SNILS(snils string) error {
	if snils == "" {
		return nil
	}
	clean := strings.NewReplacer("-", "", " ", "").Replace(snils)
	if len(clean) != 11 || !digitsPattern.MatchString(clean) {
		return errors.New("SNILS must be 11 digits long")
	}
	d := digits(clean)
	sum := 0
	for i := 0; i < 9; i++ {
		sum += d[i] * (9 - i)
	}
	var check int
	switch {
	case sum < 100:
		check = sum
	case sum == 100 || sum == 101:
		check = 0
	default:
		check = sum % 101
		if check == 100 {
			check = 0
		}
	}
	if check != d[9]*10+d[10] {
		return errors.New("SNILS checksum mismatch")
	}
	return nil
}
