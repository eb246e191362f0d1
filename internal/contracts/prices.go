package contracts

// PriceSlot names one of the fixed price inputs of the metrics
type PriceSlot int

const (
	SlotSpot PriceSlot = iota
	SlotM1
	SlotM2
	SlotM4
	SlotM7
)

// AllSlots lists every slot in persistence order
var AllSlots = []PriceSlot{SlotSpot, SlotM1, SlotM2, SlotM4, SlotM7}

func (p PriceSlot) String() string {
	switch p {
	case SlotSpot:
		return "spot"
	case SlotM1:
		return "m1"
	case SlotM2:
		return "m2"
	case SlotM4:
		return "m4"
	case SlotM7:
		return "m7"
	default:
		return "unknown"
	}
}

// PriceSlots holds the scraped prices of one run.
// Zero means "not found in this run's scrape"; no slot is ever negative.
// ⭐ SSOT: Extractor → Calculator 전달
type PriceSlots struct {
	Spot float64 `json:"spot"`
	M1   float64 `json:"m1"`
	M2   float64 `json:"m2"`
	M4   float64 `json:"m4"`
	M7   float64 `json:"m7"`
}

// Set assigns a slot; negative values are stored as 0
func (p *PriceSlots) Set(slot PriceSlot, v float64) {
	if v < 0 {
		v = 0
	}

	switch slot {
	case SlotSpot:
		p.Spot = v
	case SlotM1:
		p.M1 = v
	case SlotM2:
		p.M2 = v
	case SlotM4:
		p.M4 = v
	case SlotM7:
		p.M7 = v
	}
}

// Get returns the value of a slot
func (p PriceSlots) Get(slot PriceSlot) float64 {
	switch slot {
	case SlotSpot:
		return p.Spot
	case SlotM1:
		return p.M1
	case SlotM2:
		return p.M2
	case SlotM4:
		return p.M4
	case SlotM7:
		return p.M7
	default:
		return 0
	}
}

// Filled counts slots holding a non-zero price
func (p PriceSlots) Filled() int {
	n := 0
	for _, slot := range AllSlots {
		if p.Get(slot) != 0 {
			n++
		}
	}
	return n
}
