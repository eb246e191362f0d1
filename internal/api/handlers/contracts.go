package handlers

import (
	"net/http"
	"time"

	"github.com/wonny/vixterm/internal/contracts"
	"github.com/wonny/vixterm/internal/resolver"
	"github.com/wonny/vixterm/pkg/logger"
	"github.com/wonny/vixterm/pkg/redis"
)

// ContractsHandler exposes the contract resolver
type ContractsHandler struct {
	resolver *resolver.Resolver
	cache    Cache
	loc      *time.Location
	now      func() time.Time
	logger   *logger.Logger
}

// NewContractsHandler creates a new contracts handler; cache may be nil
func NewContractsHandler(res *resolver.Resolver, cache Cache, loc *time.Location, log *logger.Logger) *ContractsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ContractsHandler{
		resolver: res,
		cache:    cache,
		loc:      loc,
		now:      time.Now,
		logger:   log,
	}
}

// SymbolInfo is a decoded contract symbol
type SymbolInfo struct {
	Symbol    string `json:"symbol"`
	Root      string `json:"root"`
	Month     int    `json:"month"`
	YearDigit int    `json:"year_digit"`
}

// GetContracts returns the resolved contract set for a date (default today)
// GET /api/contracts?date=2025-03-19
func (h *ContractsHandler) GetContracts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	today := h.now().In(h.loc)
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.ParseInLocation("2006-01-02", v, h.loc)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'date' (expected YYYY-MM-DD)")
			return
		}
		today = d
	}

	key := redis.ContractsKey(today.Format("2006-01-02"))
	if h.cache != nil {
		var cached contracts.ContractSet
		if found, err := h.cache.Get(ctx, key, &cached); err == nil && found {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	set := h.resolver.Resolve(today)

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, set, redis.TTLContracts); err != nil {
			h.logger.WithError(err).Warn("Contracts cache write failed")
		}
	}

	respondJSON(w, http.StatusOK, set)
}

// DecodeSymbol explains a scraped symbol such as VX/H5
// GET /api/contracts/decode?symbol=VX/H5
func (h *ContractsHandler) DecodeSymbol(w http.ResponseWriter, r *http.Request) {
	sym := r.URL.Query().Get("symbol")
	if sym == "" {
		respondError(w, http.StatusBadRequest, "Missing 'symbol'")
		return
	}

	month, digit, ok := resolver.ParseSymbol(h.resolver.Root(), contracts.Symbol(sym))
	if !ok {
		respondError(w, http.StatusUnprocessableEntity, "Not a "+h.resolver.Root()+" futures symbol")
		return
	}

	respondJSON(w, http.StatusOK, SymbolInfo{
		Symbol:    sym,
		Root:      h.resolver.Root(),
		Month:     int(month),
		YearDigit: digit,
	})
}
