// Package uniq generates collision-resistant values for fields that must not
// clash across parallel or historical test runs.
//
// All functions are stateless and safe for concurrent use: every value is
// derived from a fresh random UUID, so no counters are shared between test
// workers. Collisions are treated as impossible, not handled.
package uniq

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// EmailDomain is the domain of every generated address.
const EmailDomain = "example.com"

// PhoneFormat names a national numbering layout.
type PhoneFormat string

const (
	PhoneUS PhoneFormat = "US"
	PhoneGB PhoneFormat = "GB"
	PhoneDE PhoneFormat = "DE"
	PhoneAU PhoneFormat = "AU"
)

// faker draws from crypto/rand, which is safe for concurrent use.
var faker = gofakeit.NewCrypto()

// Token returns 16 lowercase hex characters of a random UUID.
func Token() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:16]
}

// String returns prefix followed by a random token.
func String(prefix string) string {
	return prefix + Token()
}

// Email returns a unique address under EmailDomain.
func Email() string {
	return EmailWith("test")
}

// EmailWith returns a unique address whose local part starts with stem.
func EmailWith(stem string) string {
	if stem == "" {
		stem = "test"
	}
	return fmt.Sprintf("%s.%s@%s", stem, Token(), EmailDomain)
}

// Phone returns a unique number in the given national format. Unknown formats
// fall back to PhoneUS.
func Phone(format PhoneFormat) string {
	d := digits(10)
	switch format {
	case PhoneGB:
		return fmt.Sprintf("+44 7%s %s", d[:3], d[3:9])
	case PhoneDE:
		return fmt.Sprintf("+49 15%s %s", d[:1], d[1:9])
	case PhoneAU:
		return fmt.Sprintf("+61 4%s %s %s", d[:2], d[2:5], d[5:8])
	default:
		// Area and exchange codes may not start with 0 or 1.
		area := string('2'+d[0]%8) + d[1:3]
		exchange := string('2'+d[3]%8) + d[4:6]
		return fmt.Sprintf("+1 (%s) %s-%s", area, exchange, d[6:10])
	}
}

// digits maps the random bytes of a UUID onto n decimal digits.
func digits(n int) string {
	id := uuid.New()
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte('0' + id[i]%10)
	}
	return sb.String()
}

// FirstName returns a realistic first name. It is not unique.
func FirstName() string {
	return faker.FirstName()
}

// Street returns a realistic street address. It is not unique.
func Street() string {
	return faker.Street()
}

// City returns a realistic city name. It is not unique.
func City() string {
	return faker.City()
}

// Company returns a realistic company name with a unique suffix.
func Company() string {
	return fmt.Sprintf("%s %s", faker.Company(), Token()[:8])
}

// Generator exposes the package functions as methods so callers can accept
// an interface and substitute deterministic values in tests.
type Generator struct{}

func (Generator) String(prefix string) string     { return String(prefix) }
func (Generator) Email(stem string) string        { return EmailWith(stem) }
func (Generator) Phone(format PhoneFormat) string { return Phone(format) }
func (Generator) FirstName() string               { return FirstName() }
func (Generator) Street() string                  { return Street() }
func (Generator) City() string                    { return City() }
func (Generator) Company() string                 { return Company() }
