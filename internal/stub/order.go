package stub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mughalk/csc301-a2/pkg/httpclient"
)

// Order is a placed order.
type Order struct {
	ID        int `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int `json:"user_id"`
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// Purchase is the per-user running total for one product.
type Purchase struct {
	UserID    int `gorm:"primaryKey"`
	ProductID int `gorm:"primaryKey"`
	Quantity  int
}

// OrderService serves order placement and purchase history. All user and
// product lookups go through the gateway, never directly to the peer
// services.
type OrderService struct {
	db      *gorm.DB
	gateway string // gateway base URL
}

// NewOrderService migrates the schema and returns the service.
func NewOrderService(db *gorm.DB, gatewayBase string) (*OrderService, error) {
	if err := db.AutoMigrate(&Order{}, &Purchase{}); err != nil {
		return nil, fmt.Errorf("stub: migrate orders: %w", err)
	}
	return &OrderService{db: db, gateway: strings.TrimSuffix(gatewayBase, "/")}, nil
}

// Routes mounts the service's endpoints. /user and /product traffic is
// proxied through the gateway so workload scripts can talk to one address.
func (s *OrderService) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/order", s.handlePlace)
	r.Get("/order/{id}", s.handleGet)
	r.Get("/user/purchased/{id}", s.handlePurchased)
	r.HandleFunc("/user", s.proxy)
	r.HandleFunc("/user/{id}", s.proxy)
	r.HandleFunc("/product", s.proxy)
	r.HandleFunc("/product/{id}", s.proxy)
	return r
}

func (s *OrderService) handlePlace(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeObject(r)
	if !ok {
		writeStatus(w, http.StatusBadRequest, "Invalid Request")
		return
	}

	command, _ := fieldString(body, "command")
	if !strings.EqualFold(command, "place order") {
		writeStatus(w, http.StatusBadRequest, "Invalid Request")
		return
	}

	userID, okUser := fieldInt(body, "user_id")
	productID, okProduct := fieldInt(body, "product_id")
	qty, okQty := fieldInt(body, "quantity")
	if !okUser || !okProduct || !okQty || qty <= 0 {
		writeStatus(w, http.StatusBadRequest, "Invalid Request")
		return
	}

	ctx := r.Context()

	if status, _ := s.fetch(ctx, "/user/"+strconv.Itoa(userID)); status != http.StatusOK {
		writeStatus(w, http.StatusNotFound, "Invalid Request")
		return
	}

	status, productBody := s.fetch(ctx, "/product/"+strconv.Itoa(productID))
	if status != http.StatusOK {
		writeStatus(w, http.StatusNotFound, "Invalid Request")
		return
	}

	var product map[string]any
	if err := json.Unmarshal(productBody, &product); err != nil {
		writeStatus(w, http.StatusBadRequest, "Invalid Request")
		return
	}
	stock, ok := fieldInt(product, "quantity")
	if !ok {
		writeStatus(w, http.StatusBadRequest, "Invalid Request")
		return
	}
	if qty > stock {
		writeStatus(w, http.StatusBadRequest, "Exceeded quantity limit")
		return
	}

	update := map[string]any{"command": "update", "id": productID, "quantity": stock - qty}
	resp, err := httpclient.Post(s.gateway+"/product").Body(update).Timeout(5 * time.Second).Send(ctx)
	if err != nil || resp.StatusCode != http.StatusOK {
		writeStatus(w, http.StatusBadRequest, "Invalid Request")
		return
	}

	if err := s.recordPurchase(userID, productID, qty); err != nil {
		writeStatus(w, http.StatusBadRequest, "Invalid Request")
		return
	}
	s.db.Create(&Order{UserID: userID, ProductID: productID, Quantity: qty})

	writeJSON(w, http.StatusOK, map[string]any{
		"product_id": productID,
		"user_id":    userID,
		"quantity":   qty,
		"status":     "Success",
	})
}

func (s *OrderService) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}

	var o Order
	if err := s.db.First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Order not found")
		} else {
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *OrderService) handlePurchased(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Invalid user id")
		return
	}

	if status, _ := s.fetch(r.Context(), "/user/"+strconv.Itoa(userID)); status != http.StatusOK {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	var purchases []Purchase
	if err := s.db.Where("user_id = ?", userID).Find(&purchases).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Product id keys are strings; an empty history is the empty object.
	history := map[string]int{}
	for _, p := range purchases {
		history[strconv.Itoa(p.ProductID)] = p.Quantity
	}
	writeJSON(w, http.StatusOK, history)
}

// recordPurchase upserts the running total for (user, product).
func (s *OrderService) recordPurchase(userID, productID, qty int) error {
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity": gorm.Expr("quantity + ?", qty),
		}),
	}).Create(&Purchase{UserID: userID, ProductID: productID, Quantity: qty}).Error
}

// fetch performs a gateway GET and returns the status and raw body. A
// transport failure reads as status 0.
func (s *OrderService) fetch(ctx context.Context, path string) (int, []byte) {
	resp, err := httpclient.Get(s.gateway + path).Timeout(5 * time.Second).Send(ctx)
	if err != nil {
		return 0, nil
	}
	return resp.StatusCode, resp.Raw
}

// proxy forwards /user and /product traffic to the gateway verbatim.
func (s *OrderService) proxy(w http.ResponseWriter, r *http.Request) {
	target := s.gateway + r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, bytes.NewReader(body))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Forwarding error")
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Forwarding error: "+err.Error())
		return
	}
	defer resp.Body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}
