package catalog

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"BookShelf/pkg/kit"
)

// Server exposes the public, unauthenticated book endpoints.
type Server struct {
	Store Store
	Log   *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.listAll)
	r.Get("/isbn/{isbn}", s.byISBN)
	r.Get("/author/{author}", s.byAuthor)
	r.Get("/title/{title}", s.byTitle)
	r.Get("/review/{isbn}", s.reviews)

	return r
}

func (s *Server) listAll(w http.ResponseWriter, r *http.Request) {
	books, err := s.Store.All(r.Context())
	if err != nil {
		s.serverError(w, r, "list books", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"books": books})
}

func (s *Server) byISBN(w http.ResponseWriter, r *http.Request) {
	isbn := chi.URLParam(r, "isbn")
	if isbn == "" {
		kit.WriteMessage(w, r, http.StatusBadRequest, "ISBN is required")
		return
	}

	b, found, err := s.Store.ByISBN(r.Context(), isbn)
	if err != nil {
		s.serverError(w, r, "get book by isbn", err)
		return
	}
	if !found {
		kit.WriteMessage(w, r, http.StatusNotFound, fmt.Sprintf("Book with ISBN %s not found", isbn))
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"book": b})
}

func (s *Server) byAuthor(w http.ResponseWriter, r *http.Request) {
	author := chi.URLParam(r, "author")
	if author == "" {
		kit.WriteMessage(w, r, http.StatusBadRequest, "Author is required")
		return
	}

	books, err := s.Store.ByAuthor(r.Context(), author)
	if err != nil {
		s.serverError(w, r, "get books by author", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"books": books})
}

func (s *Server) byTitle(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")
	if title == "" {
		kit.WriteMessage(w, r, http.StatusBadRequest, "Title is required")
		return
	}

	b, found, err := s.Store.ByTitle(r.Context(), title)
	if err != nil {
		s.serverError(w, r, "get book by title", err)
		return
	}
	if !found {
		kit.WriteMessage(w, r, http.StatusNotFound, fmt.Sprintf("Book with title %s not found", title))
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"book": b})
}

func (s *Server) reviews(w http.ResponseWriter, r *http.Request) {
	isbn := chi.URLParam(r, "isbn")
	if isbn == "" {
		kit.WriteMessage(w, r, http.StatusBadRequest, "ISBN is required")
		return
	}

	reviews, found, err := s.Store.Reviews(r.Context(), isbn)
	if err != nil {
		s.serverError(w, r, "get reviews", err)
		return
	}
	if !found {
		kit.WriteMessage(w, r, http.StatusNotFound, fmt.Sprintf("Book with ISBN %s not found", isbn))
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if s.Log != nil {
		s.Log.Error(op+" failed", zap.Error(err))
	}
	kit.WriteMessage(w, r, http.StatusInternalServerError, "Internal Server Error")
}
