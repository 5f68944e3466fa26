// Package handler contains HTTP handlers for the progress, shop and map APIs.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hackclub/shipwrecked-sub001/internal/apperror"
	"github.com/hackclub/shipwrecked-sub001/internal/config"
	"github.com/hackclub/shipwrecked-sub001/internal/flight"
	"github.com/hackclub/shipwrecked-sub001/internal/geo"
	"github.com/hackclub/shipwrecked-sub001/internal/model"
	"github.com/hackclub/shipwrecked-sub001/internal/progress"
	"github.com/hackclub/shipwrecked-sub001/internal/shop"
	"github.com/hackclub/shipwrecked-sub001/internal/store"
)

// TelemetrySource is the slice of the telemetry client the handlers use.
type TelemetrySource interface {
	Tracked(ctx context.Context, flightNumbers []string) ([]model.TrackedFlight, error)
}

// PriceRequest asks for an item's shell price for one user.
type PriceRequest struct {
	UserID               string  `json:"user_id" validate:"required"`
	ItemID               string  `json:"item_id" validate:"required"`
	USDCost              float64 `json:"usd_cost"`
	BasePrice            int     `json:"base_price" validate:"gte=0"`
	MinPercent           int     `json:"min_percent" validate:"omitempty,gte=1,lte=1000"`
	MaxPercent           int     `json:"max_percent" validate:"omitempty,gte=1,lte=1000,gtefield=MinPercent"`
	UseRandomizedPricing bool    `json:"use_randomized_pricing"`
}

// OrderValueRequest asks for the USD value of an order against its item.
type OrderValueRequest struct {
	Item  model.ShopItem  `json:"item"`
	Order model.ShopOrder `json:"order"`
}

// PurchaseRequest buys island progress with shells.
type PurchaseRequest struct {
	Hours float64 `json:"hours" validate:"required,gt=0"`
}

// Handler wraps the HTTP endpoints with their collaborators.
type Handler struct {
	log          *zap.Logger
	cfg          *config.Config
	validate     *validator.Validate
	projects     store.ProjectStore
	economy      store.EconomyStore
	reservations store.ReservationStore
	telemetry    TelemetrySource
	resolver     *flight.Resolver

	// now is swapped out in tests.
	now func() time.Time
}

// New creates a new Handler instance.
func New(log *zap.Logger, cfg *config.Config, v *validator.Validate,
	projects store.ProjectStore, economy store.EconomyStore,
	reservations store.ReservationStore, telemetry TelemetrySource,
	resolver *flight.Resolver) *Handler {
	return &Handler{
		log:          log,
		cfg:          cfg,
		validate:     v,
		projects:     projects,
		economy:      economy,
		reservations: reservations,
		telemetry:    telemetry,
		resolver:     resolver,
		now:          time.Now,
	}
}

// Healthz is a simple health check endpoint.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Progress returns a user's island-progress metrics. Store failures degrade
// to zeroed metrics rather than an error.
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	projects, err := h.projects.ProjectsByUser(ctx, userID)
	if err != nil {
		h.log.Warn("project load failed, serving zeroed metrics",
			zap.String("userID", userID), zap.Error(err))
		projects = nil
	}
	snap, err := h.economy.Snapshot(ctx, userID)
	if err != nil {
		h.log.Warn("economy snapshot failed, assuming zero counters",
			zap.String("userID", userID), zap.Error(err))
		snap = model.EconomySnapshot{}
	}

	metrics := progress.CalculateMetrics(projects, snap.PurchasedProgressHours)
	writeJSON(w, http.StatusOK, metrics)
}

// Economy returns a user's metrics together with their spendable shell
// balance.
func (h *Handler) Economy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	projects, err := h.projects.ProjectsByUser(ctx, userID)
	if err != nil {
		h.log.Warn("project load failed, serving zeroed metrics",
			zap.String("userID", userID), zap.Error(err))
		projects = nil
	}
	snap, err := h.economy.Snapshot(ctx, userID)
	if err != nil {
		h.log.Warn("economy snapshot failed, assuming zero counters",
			zap.String("userID", userID), zap.Error(err))
		snap = model.EconomySnapshot{}
	}

	metrics := progress.CalculateMetrics(projects, snap.PurchasedProgressHours)
	writeJSON(w, http.StatusOK, map[string]any{
		"metrics": metrics,
		"balance": metrics.Currency - snap.TotalShellsSpent + snap.AdminShellAdjustment,
	})
}

// PurchaseProgress records a progress purchase for a user.
func (h *Handler) PurchaseProgress(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode json", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request payload"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.log.Warn("validation failed", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, apperror.CustomValidationError(err))
		return
	}

	if err := h.economy.AddPurchasedHours(r.Context(), userID, req.Hours); err != nil {
		h.log.Error("purchase failed", zap.String("userID", userID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unable to record purchase"})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "Ok"})
}

// ShopPrice prices an item for a user, applying deterministic per-user
// jitter when the item asks for it.
func (h *Handler) ShopPrice(w http.ResponseWriter, r *http.Request) {
	var req PriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode json", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request payload"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.log.Warn("validation failed", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, apperror.CustomValidationError(err))
		return
	}

	price := req.BasePrice
	if price == 0 {
		price = shop.ShellPrice(req.USDCost, h.cfg.DollarsPerHour)
	}
	if req.UseRandomizedPricing && req.MinPercent > 0 && req.MaxPercent > 0 {
		price = shop.RandomizedPrice(req.UserID, req.ItemID, price, req.MinPercent, req.MaxPercent)
	}
	writeJSON(w, http.StatusOK, map[string]int{"price": price})
}

// OrderValue computes the USD value of an order.
func (h *Handler) OrderValue(w http.ResponseWriter, r *http.Request) {
	var req OrderValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode json", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request payload"})
		return
	}
	if req.Order.Quantity < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must not be negative"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"usdValue": shop.OrderUSDValue(req.Item, req.Order)})
}

// Flights returns every reservation's legs, telemetry-fused and ranked for
// display. A tracker outage surfaces as a descriptive error so the UI can
// show a banner instead of a blank map.
func (h *Handler) Flights(w http.ResponseWriter, r *http.Request) {
	legs, status, errMsg := h.resolvedLegs(r)
	if errMsg != "" {
		writeJSON(w, status, map[string]string{"error": errMsg})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"flights": flight.Rank(legs)})
}

// FlightPath returns the drawable path and live position for one leg.
func (h *Handler) FlightPath(w http.ResponseWriter, r *http.Request) {
	flightNumber := chi.URLParam(r, "flightNumber")

	legs, status, errMsg := h.resolvedLegs(r)
	if errMsg != "" {
		writeJSON(w, status, map[string]string{"error": errMsg})
		return
	}

	for _, leg := range legs {
		if leg.FlightNumber != flightNumber {
			continue
		}
		calculated := geo.Calculate(leg, h.now())
		if calculated == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no live data for flight " + flightNumber})
			return
		}
		writeJSON(w, http.StatusOK, calculated)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "no reservation for flight " + flightNumber})
}

func (h *Handler) resolvedLegs(r *http.Request) ([]model.FlightLeg, int, string) {
	ctx := r.Context()
	now := h.now()

	rows, err := h.reservations.Reservations(ctx)
	if err != nil {
		h.log.Error("reservation load failed", zap.Error(err))
		return nil, http.StatusInternalServerError, "unable to load reservations"
	}

	var legs []model.FlightLeg
	seen := make(map[string]bool)
	var numbers []string
	for _, row := range rows {
		for _, leg := range flight.NormalizeReservation(row, now) {
			legs = append(legs, leg)
			if !seen[leg.FlightNumber] {
				seen[leg.FlightNumber] = true
				numbers = append(numbers, leg.FlightNumber)
			}
		}
	}

	tracked, err := h.telemetry.Tracked(ctx, numbers)
	if err != nil {
		h.log.Error("telemetry fetch failed", zap.Error(err))
		return nil, http.StatusServiceUnavailable, "live flight data is unavailable right now"
	}

	return h.resolver.Resolve(ctx, legs, tracked, now), 0, ""
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
