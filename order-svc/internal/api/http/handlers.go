package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"qrmenu/order-svc/internal/domain"
	"qrmenu/order-svc/internal/service"
	"qrmenu/pkg/auth"
	"qrmenu/pkg/pathid"
	"qrmenu/schema"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	Devices service.DeviceServiceInterface
	Carts   service.CartServiceInterface
	Orders  service.OrderServiceInterface

	validator *validator.Validate
	log       *zap.SugaredLogger
	secret    []byte
}

func NewHandler(
	deviceSvc service.DeviceServiceInterface,
	cartSvc service.CartServiceInterface,
	orderSvc service.OrderServiceInterface,
	validate *validator.Validate,
	log *zap.SugaredLogger,
	secret []byte,
) *Handler {
	return &Handler{
		Devices:   deviceSvc,
		Carts:     cartSvc,
		Orders:    orderSvc,
		validator: validate,
		log:       log,
		secret:    secret,
	}
}

func (h *Handler) owner(fn http.HandlerFunc) http.Handler {
	return auth.RequireOwner(h.secret)(fn)
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/devices", h.registerDevice).Methods("POST")
	r.HandleFunc("/api/devices/{deviceId}", h.cleanupDevice).Methods("DELETE")
	r.HandleFunc("/api/devices/{deviceId}/orders", h.deviceOrders).Methods("GET")

	r.HandleFunc("/api/devices/{deviceId}/carts/{restaurantId}", h.getCart).Methods("GET")
	r.HandleFunc("/api/devices/{deviceId}/carts/{restaurantId}", h.clearCart).Methods("DELETE")
	r.HandleFunc("/api/devices/{deviceId}/carts/{restaurantId}/lines", h.addCartLine).Methods("POST")
	r.HandleFunc("/api/devices/{deviceId}/carts/{restaurantId}/lines/{lineKey}", h.setCartLine).Methods("PUT")
	r.HandleFunc("/api/devices/{deviceId}/carts/{restaurantId}/lines/{lineKey}", h.removeCartLine).Methods("DELETE")

	r.HandleFunc("/api/orders", h.placeOrder).Methods("POST")
	r.HandleFunc("/api/orders/{orderId}", h.getOrder).Methods("GET")

	r.HandleFunc("/api/restaurants/{id}/tables/{number}/orders", h.tableOrders).Methods("GET")
	r.Handle("/api/restaurants/{id}/tables/{number}/orders", h.owner(h.deleteTableOrders)).Methods("DELETE")
	r.Handle("/api/restaurants/{id}/orders", h.owner(h.restaurantOrders)).Methods("GET")
	r.Handle("/api/restaurants/{id}/orders/by-table", h.owner(h.ordersByTable)).Methods("GET")
	r.Handle("/api/restaurants/{id}/orders/{orderId}/advance", h.owner(h.advanceOrder)).Methods("POST")
	r.Handle("/api/restaurants/{id}/orders/{orderId}/status", h.owner(h.setOrderStatus)).Methods("PUT")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrTableNotFound),
		errors.Is(err, domain.ErrLineNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, service.ErrStatusConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrUnknownStatus),
		service.IsClientError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, schema.ErrSchemaMissing):
		h.log.Errorw("schema mismatch", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "service unavailable: database schema is out of date", http.StatusServiceUnavailable)
	default:
		h.log.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func tableNumber(w http.ResponseWriter, raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		http.Error(w, "table number must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "order-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) registerDevice(w http.ResponseWriter, r *http.Request) {
	id, err := h.Devices.Register(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"device_id": id})
}

func (h *Handler) cleanupDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := mux.Vars(r)["deviceId"]
	deleted, err := h.Devices.Cleanup(r.Context(), deviceID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.Infow("device cleaned up", "device_id", deviceID, "orders_deleted", deleted)
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (h *Handler) deviceOrders(w http.ResponseWriter, r *http.Request) {
	restaurantID := r.URL.Query().Get("restaurant_id")
	if restaurantID != "" && !pathid.Valid(restaurantID) {
		http.Error(w, "restaurant_id must be a UUID", http.StatusBadRequest)
		return
	}
	orders, err := h.Orders.ListForDevice(r.Context(), mux.Vars(r)["deviceId"], restaurantID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

type cartLineRequest struct {
	ItemID         string   `json:"item_id" validate:"required,uuid"`
	VariantID      string   `json:"variant_id" validate:"omitempty,uuid"`
	AddonOptionIDs []string `json:"addon_option_ids" validate:"omitempty,max=50,dive,uuid"`
	Quantity       int      `json:"quantity" validate:"required,min=1,max=99"`
}

func (l cartLineRequest) line() domain.CartLine {
	return domain.CartLine{ItemID: l.ItemID, VariantID: l.VariantID, AddonOptionIDs: l.AddonOptionIDs, Quantity: l.Quantity}
}

type quantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0,max=99"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	view, err := h.Carts.Get(r.Context(), vars["deviceId"], vars["restaurantId"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) addCartLine(w http.ResponseWriter, r *http.Request) {
	var req cartLineRequest
	if !h.decode(w, r, &req) {
		return
	}
	vars := mux.Vars(r)
	view, err := h.Carts.AddLine(r.Context(), vars["deviceId"], vars["restaurantId"], req.line())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) setCartLine(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.updateLine(w, r, *req.Quantity)
}

func (h *Handler) removeCartLine(w http.ResponseWriter, r *http.Request) {
	h.updateLine(w, r, 0)
}

func (h *Handler) updateLine(w http.ResponseWriter, r *http.Request, qty int) {
	vars := mux.Vars(r)
	view, err := h.Carts.SetQuantity(r.Context(), vars["deviceId"], vars["restaurantId"], vars["lineKey"], qty)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.Carts.Clear(r.Context(), vars["deviceId"], vars["restaurantId"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type placeOrderRequest struct {
	RestaurantID string            `json:"restaurant_id" validate:"required,uuid"`
	DeviceID     string            `json:"device_id" validate:"required,uuid"`
	TableNumber  *int              `json:"table_number" validate:"omitempty,min=1"`
	Note         string            `json:"note" validate:"max=500"`
	Items        []cartLineRequest `json:"items" validate:"omitempty,max=100,dive"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if !h.decode(w, r, &req) {
		return
	}
	in := service.PlaceOrderInput{
		RestaurantID: req.RestaurantID,
		DeviceID:     req.DeviceID,
		TableNumber:  req.TableNumber,
		Note:         req.Note,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, it.line())
	}
	order, err := h.Orders.Place(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.Infow("order placed", "order_id", order.ID, "restaurant_id", order.RestaurantID, "total", order.TotalAmount)
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.Get(r.Context(), mux.Vars(r)["orderId"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) tableOrders(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	n, ok := tableNumber(w, vars["number"])
	if !ok {
		return
	}
	orders, err := h.Orders.ListForRestaurant(r.Context(), domain.OrderFilter{RestaurantID: vars["id"], TableNumber: &n})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) restaurantOrders(w http.ResponseWriter, r *http.Request) {
	filter := domain.OrderFilter{RestaurantID: mux.Vars(r)["id"]}
	q := r.URL.Query()
	if raw := q.Get("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		filter.Status = status
	}
	if raw := q.Get("table"); raw != "" {
		n, ok := tableNumber(w, raw)
		if !ok {
			return
		}
		filter.TableNumber = &n
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}
	orders, err := h.Orders.ListForRestaurant(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) ordersByTable(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Orders.ByTable(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *Handler) advanceOrder(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	order, err := h.Orders.Advance(r.Context(), vars["id"], vars["orderId"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=placed preparing ready completed"`
}

func (h *Handler) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !h.decode(w, r, &req) {
		return
	}
	vars := mux.Vars(r)
	order, err := h.Orders.SetStatus(r.Context(), vars["id"], vars["orderId"], domain.Status(req.Status))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) deleteTableOrders(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	n, ok := tableNumber(w, vars["number"])
	if !ok {
		return
	}
	deleted, err := h.Orders.DeleteTableOrders(r.Context(), vars["id"], n)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.Infow("table orders deleted", "restaurant_id", vars["id"], "table_number", n, "deleted", deleted)
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}
