package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"qrmenu/menu-svc/internal/domain"
	"qrmenu/menu-svc/internal/service"
	"qrmenu/pkg/auth"
	"qrmenu/schema"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxMenuBytes = 5 << 20

type Handler struct {
	Auth        service.AuthServiceInterface
	Restaurants service.RestaurantServiceInterface
	Menus       service.MenuServiceInterface
	Tables      service.TableServiceInterface
	QRCodes     service.QRServiceInterface
	Drafts      service.DraftServiceInterface
	Images      service.ImageServiceInterface

	validator *validator.Validate
	log       *zap.SugaredLogger
	secret    []byte
}

func NewHandler(
	authSvc service.AuthServiceInterface,
	restSvc service.RestaurantServiceInterface,
	menuSvc service.MenuServiceInterface,
	tableSvc service.TableServiceInterface,
	qrSvc service.QRServiceInterface,
	draftSvc service.DraftServiceInterface,
	imageSvc service.ImageServiceInterface,
	validate *validator.Validate,
	log *zap.SugaredLogger,
	secret []byte,
) *Handler {
	return &Handler{
		Auth:        authSvc,
		Restaurants: restSvc,
		Menus:       menuSvc,
		Tables:      tableSvc,
		QRCodes:     qrSvc,
		Drafts:      draftSvc,
		Images:      imageSvc,
		validator:   validate,
		log:         log,
		secret:      secret,
	}
}

func (h *Handler) owner(fn http.HandlerFunc) http.Handler {
	return auth.RequireOwner(h.secret)(fn)
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/auth/signup", h.signup).Methods("POST")
	r.HandleFunc("/api/auth/login", h.login).Methods("POST")

	r.HandleFunc("/api/restaurants/{id}", h.getRestaurant).Methods("GET")
	r.Handle("/api/restaurants/{id}", h.owner(h.updateRestaurant)).Methods("PUT")

	r.HandleFunc("/api/restaurants/{id}/menu", h.getMenu).Methods("GET")
	r.Handle("/api/restaurants/{id}/menu/editor", h.owner(h.getEditorMenu)).Methods("GET")
	r.Handle("/api/restaurants/{id}/menu", h.owner(h.saveMenu)).Methods("PUT")
	r.Handle("/api/restaurants/{id}/categories/order", h.owner(h.reorderCategories)).Methods("PUT")
	r.Handle("/api/restaurants/{id}/categories/{categoryId}", h.owner(h.deleteCategory)).Methods("DELETE")
	r.Handle("/api/restaurants/{id}/categories/{categoryId}/items/order", h.owner(h.reorderItems)).Methods("PUT")
	r.Handle("/api/restaurants/{id}/items/{itemId}", h.owner(h.patchItem)).Methods("PATCH")
	r.Handle("/api/restaurants/{id}/items/{itemId}", h.owner(h.deleteItem)).Methods("DELETE")

	r.HandleFunc("/api/restaurants/{id}/tables", h.listTables).Methods("GET")
	r.Handle("/api/restaurants/{id}/tables", h.owner(h.resizeTables)).Methods("PUT")
	r.HandleFunc("/api/restaurants/{id}/tables/{number}", h.getTable).Methods("GET")

	r.HandleFunc("/api/restaurants/{id}/qrcode", h.getMenuQRCode).Methods("GET")
	r.HandleFunc("/api/restaurants/{id}/tables/{number}/qrcode", h.getTableQRCode).Methods("GET")

	r.Handle("/api/restaurants/{id}/uploads", h.owner(h.uploadImage)).Methods("POST")

	r.Handle("/api/restaurants/{id}/draft", h.owner(h.getDraft)).Methods("GET")
	r.Handle("/api/restaurants/{id}/draft", h.owner(h.putDraft)).Methods("PUT")
	r.Handle("/api/restaurants/{id}/draft", h.owner(h.deleteDraft)).Methods("DELETE")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrRestaurantNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrTableNotFound),
		errors.Is(err, service.ErrDraftNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidMenu),
		errors.Is(err, service.ErrInvalidReorder),
		errors.Is(err, service.ErrInvalidTableCount),
		errors.Is(err, service.ErrInvalidDraft),
		errors.Is(err, service.ErrUnsupportedImage),
		errors.Is(err, service.ErrInvalidQRSize):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrDraftTooLarge), errors.Is(err, service.ErrImageTooLarge):
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, service.ErrIDConflict), errors.Is(err, service.ErrEmailTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, schema.ErrSchemaMissing):
		h.log.Errorw("schema mismatch", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "service unavailable: database schema is out of date", http.StatusServiceUnavailable)
	default:
		h.log.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// decode reads a JSON body and runs struct validation on it.
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
		"service":   "menu-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

type signupRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8,max=72"`
	RestaurantName string `json:"restaurant_name" validate:"required,max=200"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.Auth.Signup(r.Context(), req.Email, req.Password, req.RestaurantName)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.Infow("owner signed up", "owner_id", session.OwnerID, "restaurant_id", session.RestaurantID)
	writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) getRestaurant(w http.ResponseWriter, r *http.Request) {
	rest, err := h.Restaurants.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

type restaurantRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	Description   string `json:"description" validate:"max=2000"`
	ImageURL      string `json:"image_url" validate:"omitempty,url"`
	CoverImageURL string `json:"cover_image_url" validate:"omitempty,url"`
	Phone         string `json:"phone" validate:"max=50"`
	Email         string `json:"email" validate:"omitempty,email"`
	Address       string `json:"address" validate:"max=500"`
	OpeningHours  string `json:"opening_hours" validate:"max=500"`
	Currency      string `json:"currency" validate:"omitempty,len=3,alpha"`
}

func (h *Handler) updateRestaurant(w http.ResponseWriter, r *http.Request) {
	var req restaurantRequest
	if !h.decode(w, r, &req) {
		return
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}
	rest := &domain.Restaurant{
		ID:            mux.Vars(r)["id"],
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		CoverImageURL: req.CoverImageURL,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		OpeningHours:  req.OpeningHours,
		Currency:      currency,
	}
	if err := h.Restaurants.Update(r.Context(), rest); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

func (h *Handler) getMenu(w http.ResponseWriter, r *http.Request) {
	var table *int
	if raw := r.URL.Query().Get("table"); raw != "" {
		n, ok := tableNumber(w, raw)
		if !ok {
			return
		}
		table = &n
	}
	menu, err := h.Menus.Preview(r.Context(), mux.Vars(r)["id"], table)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, menu)
}

func (h *Handler) getEditorMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.Menus.Editor(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, menu)
}

func (h *Handler) saveMenu(w http.ResponseWriter, r *http.Request) {
	var doc domain.Menu
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMenuBytes)).Decode(&doc); err != nil {
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}
	restaurantID := mux.Vars(r)["id"]
	result, err := h.Menus.Save(r.Context(), restaurantID, &doc)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.Infow("menu saved", "restaurant_id", restaurantID,
		"added", result.Added, "updated", result.Updated, "removed", result.Removed)
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.Menus.DeleteCategory(r.Context(), vars["id"], vars["categoryId"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.Menus.DeleteItem(r.Context(), vars["id"], vars["itemId"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	IDs []string `json:"ids" validate:"required,dive,uuid"`
}

func (h *Handler) reorderCategories(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.Menus.ReorderCategories(r.Context(), mux.Vars(r)["id"], req.IDs); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) reorderItems(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !h.decode(w, r, &req) {
		return
	}
	vars := mux.Vars(r)
	if err := h.Menus.ReorderItems(r.Context(), vars["id"], vars["categoryId"], req.IDs); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type itemFlagsRequest struct {
	IsAvailable *bool `json:"is_available"`
	IsVisible   *bool `json:"is_visible"`
}

func (h *Handler) patchItem(w http.ResponseWriter, r *http.Request) {
	var req itemFlagsRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.IsAvailable == nil && req.IsVisible == nil {
		http.Error(w, "nothing to update", http.StatusBadRequest)
		return
	}
	vars := mux.Vars(r)
	item, err := h.Menus.SetItemFlags(r.Context(), vars["id"], vars["itemId"], req.IsAvailable, req.IsVisible)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) listTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.Tables.List(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

func (h *Handler) getTable(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	n, ok := tableNumber(w, vars["number"])
	if !ok {
		return
	}
	table, err := h.Tables.Get(r.Context(), vars["id"], n)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

type tablesRequest struct {
	Count *int `json:"count" validate:"required,min=0,max=500"`
}

func (h *Handler) resizeTables(w http.ResponseWriter, r *http.Request) {
	var req tablesRequest
	if !h.decode(w, r, &req) {
		return
	}
	restaurantID := mux.Vars(r)["id"]
	tables, err := h.Tables.Resize(r.Context(), restaurantID, *req.Count)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.Infow("tables resized", "restaurant_id", restaurantID, "count", *req.Count)
	writeJSON(w, http.StatusOK, tables)
}

func writePNG(w http.ResponseWriter, r *http.Request, png []byte, filename string) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if r.URL.Query().Get("download") == "1" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func qrSizeParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("size")
	if raw == "" {
		return 0, true
	}
	size, err := strconv.Atoi(raw)
	if err != nil {
		http.Error(w, "size must be an integer", http.StatusBadRequest)
		return 0, false
	}
	return size, true
}

func (h *Handler) getMenuQRCode(w http.ResponseWriter, r *http.Request) {
	size, ok := qrSizeParam(w, r)
	if !ok {
		return
	}
	png, err := h.QRCodes.MenuQR(r.Context(), mux.Vars(r)["id"], size)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writePNG(w, r, png, "menu-qr.png")
}

func (h *Handler) getTableQRCode(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	n, ok := tableNumber(w, vars["number"])
	if !ok {
		return
	}
	size, ok := qrSizeParam(w, r)
	if !ok {
		return
	}
	png, err := h.QRCodes.TableQR(r.Context(), vars["id"], n, size)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writePNG(w, r, png, "table-"+strconv.Itoa(n)+"-qr.png")
}

func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(service.MaxImageBytes); err != nil {
		h.writeError(w, r, service.ErrImageTooLarge)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Error retrieving the file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	restaurantID := mux.Vars(r)["id"]
	imageURL, err := h.Images.Upload(r.Context(), restaurantID, file, header.Size)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.Infow("image uploaded", "restaurant_id", restaurantID, "url", imageURL, "bytes", header.Size)
	writeJSON(w, http.StatusCreated, map[string]string{"image_url": imageURL})
}

func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	data, err := h.Drafts.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (h *Handler) putDraft(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, service.MaxDraftBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, service.ErrDraftTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Drafts.Put(r.Context(), mux.Vars(r)["id"], data); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.Drafts.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
