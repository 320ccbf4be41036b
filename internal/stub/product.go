package stub

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// Product is the persisted product record. The JSON field is "productname",
// matching the wire contract the suites assert on.
type Product struct {
	ID          int     `gorm:"primaryKey" json:"id"`
	ProductName string  `gorm:"size:255" json:"productname"`
	Description string  `gorm:"size:255" json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// ProductService serves the product contract: POST /product with a command
// field for mutations, GET /product/{id} for retrieval.
type ProductService struct {
	db *gorm.DB
}

// NewProductService migrates the schema and returns the service.
func NewProductService(db *gorm.DB) (*ProductService, error) {
	if err := db.AutoMigrate(&Product{}); err != nil {
		return nil, fmt.Errorf("stub: migrate products: %w", err)
	}
	return &ProductService{db: db}, nil
}

// Routes mounts the service's endpoints on a fresh router.
func (s *ProductService) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/product", s.handleCommand)
	r.Get("/product", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusBadRequest, "Missing product id")
	})
	r.Get("/product/{id}", s.handleGet)
	return r
}

func (s *ProductService) handleCommand(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeObject(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	command, _ := fieldString(body, "command")
	if isBlank(command) {
		writeError(w, http.StatusBadRequest, "Missing or invalid required field: command")
		return
	}
	id, ok := fieldInt(body, "id")
	if !ok || id <= 0 {
		writeError(w, http.StatusBadRequest, "Missing or invalid required field: id")
		return
	}

	switch command {
	case "create":
		s.create(w, body, id)
	case "update":
		s.update(w, body, id)
	case "delete":
		s.delete(w, body, id)
	default:
		writeError(w, http.StatusBadRequest, "Invalid command")
	}
}

func (s *ProductService) create(w http.ResponseWriter, body map[string]any, id int) {
	name, _ := fieldString(body, "productname")
	if isBlank(name) {
		writeError(w, http.StatusBadRequest, "Field cannot be empty: productname")
		return
	}
	description, _ := fieldString(body, "description")
	if isBlank(description) {
		writeError(w, http.StatusBadRequest, "Field cannot be empty: description")
		return
	}
	price, ok := fieldFloat(body, "price")
	if !ok || price < 0 {
		writeError(w, http.StatusBadRequest, "Field must be >= 0: price")
		return
	}
	quantity, ok := fieldInt(body, "quantity")
	if !ok || quantity < 0 {
		writeError(w, http.StatusBadRequest, "Field must be >= 0: quantity")
		return
	}

	var count int64
	s.db.Model(&Product{}).Where("id = ?", id).Count(&count)
	if count > 0 {
		writeError(w, http.StatusConflict, "Product id already exists")
		return
	}

	p := Product{ID: id, ProductName: name, Description: description, Price: price, Quantity: quantity}
	if err := s.db.Create(&p).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *ProductService) update(w http.ResponseWriter, body map[string]any, id int) {
	name, hasName := fieldString(body, "productname")
	description, hasDescription := fieldString(body, "description")
	price, hasPrice := fieldFloat(body, "price")
	quantity, hasQuantity := fieldInt(body, "quantity")

	if !hasName && !hasDescription && !hasPrice && !hasQuantity {
		writeError(w, http.StatusBadRequest, "No updatable fields provided")
		return
	}
	if hasName && isBlank(name) {
		writeError(w, http.StatusBadRequest, "Field cannot be empty: productname")
		return
	}
	if hasDescription && isBlank(description) {
		writeError(w, http.StatusBadRequest, "Field must not be blank: description")
		return
	}
	if hasPrice && price < 0 {
		writeError(w, http.StatusBadRequest, "Field must be >= 0: price")
		return
	}
	if hasQuantity && quantity < 0 {
		writeError(w, http.StatusBadRequest, "Field must be >= 0: quantity")
		return
	}

	var p Product
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
		} else {
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	if hasName {
		p.ProductName = name
	}
	if hasDescription {
		p.Description = description
	}
	if hasPrice {
		p.Price = price
	}
	if hasQuantity {
		p.Quantity = quantity
	}
	if err := s.db.Save(&p).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// delete demands the stored name, price and quantity; a mismatch is 401
// while an unknown id is 404.
func (s *ProductService) delete(w http.ResponseWriter, body map[string]any, id int) {
	name, _ := fieldString(body, "productname")
	if isBlank(name) {
		writeError(w, http.StatusBadRequest, "Field cannot be empty: productname")
		return
	}
	price, ok := fieldFloat(body, "price")
	if !ok || price < 0 {
		writeError(w, http.StatusBadRequest, "Field must be >= 0: price")
		return
	}
	quantity, ok := fieldInt(body, "quantity")
	if !ok || quantity < 0 {
		writeError(w, http.StatusBadRequest, "Field must be >= 0: quantity")
		return
	}

	var p Product
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
		} else {
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	if p.ProductName != name || p.Price != price || p.Quantity != quantity {
		writeError(w, http.StatusUnauthorized, "Delete failed: fields do not match")
		return
	}

	if err := s.db.Delete(&Product{}, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeStatus(w, http.StatusOK, "deleted")
}

func (s *ProductService) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var p Product
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
		} else {
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}
