package customer

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"BookShelf/internal/catalog"
	"BookShelf/pkg/kit"
)

const maxBodyBytes = 1 << 20

// Server holds the registration, login and review-mutation handlers.
type Server struct {
	Log      *zap.Logger
	Users    Store
	Catalog  catalog.Store
	Sessions *Sessions
	JWT      *TokenMaker
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsReq, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req credentialsReq
	if err := dec.Decode(&req); err != nil {
		return credentialsReq{}, err
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Password = strings.TrimSpace(req.Password)
	return req, nil
}

func (s *Server) HandleRegister(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(w, r)
	if err != nil {
		kit.WriteMessage(w, r, http.StatusBadRequest, "bad json")
		return
	}

	if req.Username == "" {
		kit.WriteMessage(w, r, http.StatusBadRequest, "Username is required")
		return
	}
	if req.Password == "" {
		kit.WriteMessage(w, r, http.StatusBadRequest, "Password is required")
		return
	}

	free, err := s.Users.Available(r.Context(), req.Username)
	if err != nil {
		s.serverError(w, r, "availability check", err)
		return
	}
	if !free {
		kit.WriteMessage(w, r, http.StatusBadRequest, "User already exists")
		return
	}

	if err := s.Users.Register(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			kit.WriteMessage(w, r, http.StatusBadRequest, "User already exists")
			return
		}
		s.serverError(w, r, "register", err)
		return
	}

	kit.WriteMessage(w, r, http.StatusCreated, "User registered successfully")
}

func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(w, r)
	if err != nil {
		kit.WriteMessage(w, r, http.StatusBadRequest, "bad json")
		return
	}

	if req.Username == "" {
		kit.WriteMessage(w, r, http.StatusBadRequest, "Username is required")
		return
	}
	if req.Password == "" {
		kit.WriteMessage(w, r, http.StatusBadRequest, "Password is required")
		return
	}

	if err := s.Users.Verify(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			kit.WriteMessage(w, r, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		s.serverError(w, r, "verify credentials", err)
		return
	}

	token, err := s.JWT.New(req.Username)
	if err != nil {
		s.serverError(w, r, "token issue", err)
		return
	}

	sess, ok := SessionFromContext(r.Context())
	if !ok {
		// WithSession must wrap this route.
		s.serverError(w, r, "login", errors.New("no session on request"))
		return
	}
	s.Sessions.Bind(sess.ID, req.Username, token)

	kit.WriteMessage(w, r, http.StatusOK, "User successfully logged in")
}

type reviewReq struct {
	Review string `json:"review"`
}

func (s *Server) HandleUpsertReview(w http.ResponseWriter, r *http.Request) {
	username, ok := UsernameFromContext(r.Context())
	if !ok {
		kit.WriteMessage(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	isbn := chi.URLParam(r, "isbn")

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req reviewReq
	if err := dec.Decode(&req); err != nil {
		kit.WriteMessage(w, r, http.StatusBadRequest, "bad json")
		return
	}

	// Book existence is checked before the review text so an unknown ISBN
	// answers 404 even on an empty body.
	_, found, err := s.Catalog.ByISBN(r.Context(), isbn)
	if err != nil {
		s.serverError(w, r, "get book", err)
		return
	}
	if !found {
		kit.WriteMessage(w, r, http.StatusNotFound, "Book not found")
		return
	}

	if strings.TrimSpace(req.Review) == "" {
		kit.WriteMessage(w, r, http.StatusBadRequest, "Review is required")
		return
	}

	title, updated, err := s.Catalog.UpsertReview(r.Context(), isbn, username, req.Review)
	if err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			kit.WriteMessage(w, r, http.StatusNotFound, "Book not found")
			return
		}
		s.serverError(w, r, "upsert review", err)
		return
	}

	verb := "added"
	if updated {
		verb = "updated"
	}
	kit.WriteMessage(w, r, http.StatusOK, fmt.Sprintf("Review %s successfully for %s", verb, title))
}

func (s *Server) HandleDeleteReview(w http.ResponseWriter, r *http.Request) {
	username, ok := UsernameFromContext(r.Context())
	if !ok {
		kit.WriteMessage(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	isbn := chi.URLParam(r, "isbn")

	if err := s.Catalog.DeleteReview(r.Context(), isbn, username); err != nil {
		switch {
		case errors.Is(err, catalog.ErrBookNotFound):
			kit.WriteMessage(w, r, http.StatusNotFound, "Book not found")
		case errors.Is(err, catalog.ErrReviewNotFound):
			kit.WriteMessage(w, r, http.StatusNotFound, "Review not found")
		default:
			s.serverError(w, r, "delete review", err)
		}
		return
	}

	kit.WriteMessage(w, r, http.StatusOK, "Review deleted successfully")
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if s.Log != nil {
		s.Log.Error(op+" failed", zap.Error(err))
	}
	kit.WriteMessage(w, r, http.StatusInternalServerError, "Internal Server Error")
}
