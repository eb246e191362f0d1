package resolver

import (
	"fmt"
	"time"

	"github.com/wonny/vixterm/internal/contracts"
)

const (
	DefaultRoot       = "VX"
	DefaultSpotSymbol = "VIX"
)

// monthCodes is the futures month-letter table, indexed by time.Month
var monthCodes = [13]byte{0, 'F', 'G', 'H', 'J', 'K', 'M', 'N', 'Q', 'U', 'V', 'X', 'Z'}

// Resolver derives the contract set for a trade date. It never reads the clock.
// ⭐ SSOT: 월물 결정은 이 패키지에서만
type Resolver struct {
	root string
	spot contracts.Symbol
}

// Option configures a Resolver
type Option func(*Resolver)

// WithRoot sets the futures product root (default "VX")
func WithRoot(root string) Option {
	return func(r *Resolver) {
		if root != "" {
			r.root = root
		}
	}
}

// WithSpotSymbol sets the symbol of the spot index row (default "VIX")
func WithSpotSymbol(symbol string) Option {
	return func(r *Resolver) {
		if symbol != "" {
			r.spot = contracts.Symbol(symbol)
		}
	}
}

// New creates a Resolver
func New(opts ...Option) *Resolver {
	r := &Resolver{
		root: DefaultRoot,
		spot: DefaultSpotSymbol,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Root returns the futures product root
func (r *Resolver) Root() string {
	return r.root
}

// FrontMonth returns the contract month that is front month on today.
// The current month stays front month through its settlement day (inclusive).
func FrontMonth(today time.Time) contracts.ContractMonth {
	y, m, d := today.Date()
	current := contracts.ContractMonth{Year: y, Month: m}

	settle, ok := SettlementDate(current)
	if ok && !time.Date(y, m, d, 0, 0, 0, 0, time.UTC).After(settle) {
		return current
	}
	return AddMonths(current, 1)
}

// Resolve builds the M1/M2/M4/M7 contracts and the spot symbol for today
func (r *Resolver) Resolve(today time.Time) contracts.ContractSet {
	front := FrontMonth(today)

	// M2, M4, M7 are 1, 3 and 6 months past the front month
	return contracts.ContractSet{
		Today: today,
		Spot:  r.spot,
		M1:    r.contract("m1", front),
		M2:    r.contract("m2", AddMonths(front, 1)),
		M4:    r.contract("m4", AddMonths(front, 3)),
		M7:    r.contract("m7", AddMonths(front, 6)),
	}
}

func (r *Resolver) contract(label string, cm contracts.ContractMonth) contracts.Contract {
	c := contracts.Contract{Label: label, Month: cm}
	if settle, ok := SettlementDate(cm); ok {
		c.Settlement = &settle
		c.Symbol = FormatSymbol(r.root, cm)
	}
	return c
}

// MonthCode returns the futures month letter for m
func MonthCode(m time.Month) (byte, bool) {
	if m < time.January || m > time.December {
		return 0, false
	}
	return monthCodes[m], true
}

// FormatSymbol renders {root}/{monthCode}{last digit of year}, e.g. VX/H5
func FormatSymbol(root string, cm contracts.ContractMonth) contracts.Symbol {
	code, ok := MonthCode(cm.Month)
	if !ok {
		return ""
	}
	year := cm.Year
	if year < 0 {
		year = -year
	}
	return contracts.Symbol(fmt.Sprintf("%s/%c%d", root, code, year%10))
}

// ParseSymbol splits a futures symbol back into its month and year digit.
// The decade is not recoverable from the symbol alone.
func ParseSymbol(root string, s contracts.Symbol) (month time.Month, yearDigit int, ok bool) {
	prefix := root + "/"
	str := string(s)
	if len(str) != len(prefix)+2 || str[:len(prefix)] != prefix {
		return 0, 0, false
	}

	code, digit := str[len(prefix)], str[len(prefix)+1]
	if digit < '0' || digit > '9' {
		return 0, 0, false
	}

	for m := time.January; m <= time.December; m++ {
		if monthCodes[m] == code {
			return m, int(digit - '0'), true
		}
	}
	return 0, 0, false
}
