package contracts

import (
	"fmt"
	"time"
)

// ContractMonth identifies a futures delivery month
type ContractMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// String formats as YYYY-MM
func (c ContractMonth) String() string {
	return fmt.Sprintf("%04d-%02d", c.Year, int(c.Month))
}

// Symbol is an exchange contract identifier such as "VX/H5" or the spot "VIX".
// The empty Symbol means "no contract" and never matches a quote row.
type Symbol string

// Valid reports whether the symbol is present
func (s Symbol) Valid() bool {
	return s != ""
}

func (s Symbol) String() string {
	return string(s)
}

// Contract is one resolved point on the futures curve
// ⭐ SSOT: Resolver → Extractor 전달 단위
type Contract struct {
	Label      string        `json:"label"` // m1, m2, m4, m7
	Month      ContractMonth `json:"month"`
	Settlement *time.Time    `json:"settlement,omitempty"` // nil = 정산일 없음
	Symbol     Symbol        `json:"symbol,omitempty"`
}

// HasSettlement reports whether the contract month has a settlement date
func (c Contract) HasSettlement() bool {
	return c.Settlement != nil
}

// ContractSet is the resolver's output for one run
type ContractSet struct {
	Today time.Time `json:"today"`
	Spot  Symbol    `json:"spot"`
	M1    Contract  `json:"m1"`
	M2    Contract  `json:"m2"`
	M4    Contract  `json:"m4"`
	M7    Contract  `json:"m7"`
}

// SymbolFor returns the symbol that feeds the given price slot
func (s ContractSet) SymbolFor(slot PriceSlot) Symbol {
	switch slot {
	case SlotSpot:
		return s.Spot
	case SlotM1:
		return s.M1.Symbol
	case SlotM2:
		return s.M2.Symbol
	case SlotM4:
		return s.M4.Symbol
	case SlotM7:
		return s.M7.Symbol
	default:
		return ""
	}
}

// Futures returns the four futures contracts in curve order
func (s ContractSet) Futures() []Contract {
	return []Contract{s.M1, s.M2, s.M4, s.M7}
}

// Symbols returns the five symbols in slot order (absent ones are empty)
func (s ContractSet) Symbols() []Symbol {
	out := make([]Symbol, 0, len(AllSlots))
	for _, slot := range AllSlots {
		out = append(out, s.SymbolFor(slot))
	}
	return out
}
