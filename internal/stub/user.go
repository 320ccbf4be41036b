package stub

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// User is the persisted user record. Password holds the SHA-256 hex digest,
// never the plaintext.
type User struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;size:255" json:"username"`
	Email    string `gorm:"size:255" json:"email"`
	Password string `gorm:"size:64" json:"password"`
}

// UserService serves the user contract: POST /user with a command field for
// mutations, GET /user/{id} for retrieval.
type UserService struct {
	db *gorm.DB
}

// NewUserService migrates the schema and returns the service.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if err := db.AutoMigrate(&User{}); err != nil {
		return nil, fmt.Errorf("stub: migrate users: %w", err)
	}
	return &UserService{db: db}, nil
}

// Routes mounts the service's endpoints on a fresh router.
func (s *UserService) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/user", s.handleCommand)
	r.Get("/user/{id}", s.handleGet)
	return r
}

func (s *UserService) handleCommand(w http.ResponseWriter, r *http.Request) {
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

func (s *UserService) create(w http.ResponseWriter, body map[string]any, id int) {
	username, _ := fieldString(body, "username")
	email, _ := fieldString(body, "email")
	password, _ := fieldString(body, "password")
	if !requireFields(w, username, email, password) {
		return
	}

	var count int64
	s.db.Model(&User{}).Where("id = ?", id).Count(&count)
	if count > 0 {
		writeError(w, http.StatusConflict, "User id already exists")
		return
	}

	u := User{ID: id, Username: username, Email: email, Password: hashPassword(password)}
	if err := s.db.Create(&u).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *UserService) update(w http.ResponseWriter, body map[string]any, id int) {
	username, hasUsername := fieldString(body, "username")
	email, hasEmail := fieldString(body, "email")
	password, hasPassword := fieldString(body, "password")
	if !hasUsername && !hasEmail && !hasPassword {
		writeError(w, http.StatusBadRequest, "No updatable fields provided")
		return
	}

	var u User
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
		} else {
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	if hasUsername {
		u.Username = username
	}
	if hasEmail {
		u.Email = email
	}
	if hasPassword {
		u.Password = hashPassword(password)
	}
	if err := s.db.Save(&u).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// delete requires every identifying field to match the stored record; a
// wrong value is 401, not 404.
func (s *UserService) delete(w http.ResponseWriter, body map[string]any, id int) {
	username, _ := fieldString(body, "username")
	email, _ := fieldString(body, "email")
	password, _ := fieldString(body, "password")
	if !requireFields(w, username, email, password) {
		return
	}

	var u User
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
		} else {
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	if u.Username != username || u.Email != email || u.Password != hashPassword(password) {
		writeError(w, http.StatusUnauthorized, "Delete failed: fields do not match")
		return
	}

	if err := s.db.Delete(&User{}, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeStatus(w, http.StatusOK, "deleted")
}

// requireFields checks username, email and password in order and answers 400
// for the first blank one.
func requireFields(w http.ResponseWriter, username, email, password string) bool {
	checks := []struct {
		field, value string
	}{
		{"username", username},
		{"email", email},
		{"password", password},
	}
	for _, c := range checks {
		if isBlank(c.value) {
			writeError(w, http.StatusBadRequest, "Field cannot be empty: "+c.field)
			return false
		}
	}
	return true
}

func (s *UserService) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var u User
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
		} else {
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	writeJSON(w, http.StatusOK, u)
}
