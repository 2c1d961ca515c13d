package api

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"rocketcart/internal/cart"
	"rocketcart/internal/ports"
	"rocketcart/internal/types"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const RequestIDHdrName = "X-Request-ID"

type Handler struct {
	Store    *cart.Store
	Notifier ports.Notifier
}

func NewHandler(store *cart.Store, notifier ports.Notifier) *Handler {
	return &Handler{
		Store:    store,
		Notifier: notifier,
	}
}

type cartResponse struct {
	Cart     types.Cart `json:"cart"`
	Lines    int        `json:"lines"`
	Quantity int        `json:"quantity"`
	Error    string     `json:"error,omitempty"`
}

type amountRequest struct {
	Amount *int `json:"amount"`
}

func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(requestLogger)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	r.HandleFunc("/cart", h.handleGetCart).Methods(http.MethodGet)
	r.HandleFunc("/cart/products/{id:[0-9]+}", h.handleAdd).Methods(http.MethodPost)
	r.HandleFunc("/cart/products/{id:[0-9]+}", h.handleRemove).Methods(http.MethodDelete)
	r.HandleFunc("/cart/products/{id:[0-9]+}", h.handleUpdate).Methods(http.MethodPut)
	return r
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.Store.Cart(), "")
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	c, err := h.Store.AddProduct(r.Context(), id)
	h.finish(w, r, cart.OpAdd, id, c, err)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	c, err := h.Store.RemoveProduct(r.Context(), id)
	h.finish(w, r, cart.OpRemove, id, c, err)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read error")
		return
	}
	defer func() {
		_ = r.Body.Close()
	}()
	var req amountRequest
	if err := json.Unmarshal(body, &req); err != nil || req.Amount == nil {
		writeError(w, http.StatusBadRequest, "amount is required")
		return
	}
	c, err := h.Store.UpdateProductAmount(r.Context(), types.UpdateProductAmount{
		ProductID: id,
		Amount:    *req.Amount,
	})
	h.finish(w, r, cart.OpUpdate, id, c, err)
}

// finish reports a failed operation to the notifier and answers with the resulting cart.
func (h *Handler) finish(w http.ResponseWriter, r *http.Request, op cart.Op, id int, c types.Cart, err error) {
	if err == nil {
		h.respond(w, http.StatusOK, c, "")
		return
	}
	log.WithError(err).WithFields(log.Fields{
		"op":        cart.OpTextMap[op],
		"productID": id,
		"requestID": RequestID(r.Context()),
	}).Info("Cart operation rejected")
	msg := cart.Report(r.Context(), h.Notifier, op, err)
	h.respond(w, statusFor(err), c, msg)
}

func (h *Handler) respond(w http.ResponseWriter, code int, c types.Cart, msg string) {
	lines, qty := cart.Totals(c)
	if err := writeJSON(w, code, cartResponse{Cart: c, Lines: lines, Quantity: qty, Error: msg}); err != nil {
		log.WithError(err).Error("failed to write response")
	}
}

func statusFor(err error) int {
	switch cart.KindOf(err) {
	case cart.KindNone:
		return http.StatusOK
	case cart.KindOutOfStock:
		return http.StatusConflict
	case cart.KindNotFound:
		return http.StatusNotFound
	case cart.KindTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}

// requestLogger tags each request with an X-Request-ID and logs it once served.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get(RequestIDHdrName)
		if reqID == "" {
			reqID = uuid.NewString()
			r.Header.Set(RequestIDHdrName, reqID)
		}
		w.Header().Set(RequestIDHdrName, reqID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, reqID)))
		log.WithFields(log.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    rec.status,
			"requestID": reqID,
			"elapsed":   time.Since(start).String(),
		}).Debug("Request served")
	})
}

type requestIDKey struct{}

// RequestID returns the id assigned to the request carrying ctx, or "".
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	if err := writeJSON(w, code, map[string]string{"error": msg}); err != nil {
		log.WithError(err).Error("failed to write response")
	}
}
