package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kevlar-dev/blog-api/internal/models"
	"github.com/kevlar-dev/blog-api/internal/store"
)

// maxCoverBytes caps cover image uploads at 5 MiB.
const maxCoverBytes = 5 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// PostStore defines the interface for post persistence.
type PostStore interface {
	Insert(ctx context.Context, post *models.Post) (string, error)
	List(ctx context.Context, f models.PostFilter) ([]models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Update(ctx context.Context, id, authorID string, req models.UpdatePostRequest) (*models.Post, error)
	SetCover(ctx context.Context, id, authorID, key string) error
	Delete(ctx context.Context, id string) error
}

// UserDirectory resolves author references for response population.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
}

// FileStore defines the interface for cover image storage.
type FileStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// ViewCounter tracks per-post view totals.
type ViewCounter interface {
	Hit(ctx context.Context, postID string) (int64, error)
	Get(ctx context.Context, postID string) (int64, error)
	Forget(ctx context.Context, postID string) error
}

// Handler holds post HTTP handlers.
type Handler struct {
	posts  PostStore
	users  UserDirectory
	covers FileStore
	views  ViewCounter
}

func NewHandler(posts PostStore, users UserDirectory, covers FileStore, views ViewCounter) *Handler {
	return &Handler{posts: posts, users: users, covers: covers, views: views}
}

// Create persists a new post. The author is always the authenticated
// user, never client input.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	var req models.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.Content == "" {
		http.Error(w, `{"error":"title and content are required"}`, http.StatusBadRequest)
		return
	}

	post := &models.Post{
		Title:      req.Title,
		Content:    req.Content,
		Slug:       NewSlug(req.Title),
		AuthorID:   userID,
		CategoryID: req.CategoryID,
	}
	id, err := h.posts.Insert(r.Context(), post)
	if err != nil {
		log.Printf("post insert error: %v", err)
		http.Error(w, `{"error":"failed to save post"}`, http.StatusInternalServerError)
		return
	}

	saved, err := h.posts.GetByID(r.Context(), id)
	if err != nil {
		log.Printf("post re-fetch error: %v", err)
		http.Error(w, `{"error":"failed to save post"}`, http.StatusInternalServerError)
		return
	}
	h.populateOne(r.Context(), saved)
	writeJSON(w, http.StatusCreated, saved)
}

// List returns posts, optionally filtered by category and paged.
// Always an array, never null.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	f := models.PostFilter{
		CategoryID: r.URL.Query().Get("category"),
		Page:       queryInt(r, "page"),
		Limit:      queryInt(r, "limit"),
	}

	posts, err := h.posts.List(r.Context(), f)
	if err != nil {
		log.Printf("post list error: %v", err)
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	h.populateMany(r.Context(), posts)
	for i := range posts {
		views, err := h.views.Get(r.Context(), posts[i].ID.Hex())
		if err != nil {
			log.Printf("view count error (non-fatal): %v", err)
			break
		}
		posts[i].Views = views
	}
	writeJSON(w, http.StatusOK, posts)
}

// Get returns a single post and counts the view.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, err := h.posts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error":"post not found"}`, http.StatusNotFound)
			return
		}
		log.Printf("post get error: %v", err)
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}

	if views, err := h.views.Hit(r.Context(), id); err == nil {
		post.Views = views
	} else {
		log.Printf("view count error (non-fatal): %v", err)
	}

	h.populateOne(r.Context(), post)
	writeJSON(w, http.StatusOK, post)
}

// Update modifies a post when the caller is its author. A missing post
// and someone else's post are both a plain 404.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)
	id := chi.URLParam(r, "id")

	var req models.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Title == "" && req.Content == "" && req.CategoryID == "" {
		http.Error(w, `{"error":"nothing to update"}`, http.StatusBadRequest)
		return
	}

	post, err := h.posts.Update(r.Context(), id, userID, req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error":"post not found"}`, http.StatusNotFound)
			return
		}
		log.Printf("post update error: %v", err)
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}

	h.populateOne(r.Context(), post)
	writeJSON(w, http.StatusOK, post)
}

// Delete removes a post by id. Cover and view-count cleanup are best
// effort; an absent id still gets the confirmation message.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if post, err := h.posts.GetByID(r.Context(), id); err == nil && post.CoverKey != "" {
		if err := h.covers.Remove(r.Context(), post.CoverKey); err != nil {
			log.Printf("cover remove error (non-fatal): %v", err)
		}
	}

	if err := h.posts.Delete(r.Context(), id); err != nil {
		log.Printf("post delete error: %v", err)
		http.Error(w, `{"error":"delete failed"}`, http.StatusInternalServerError)
		return
	}
	if err := h.views.Forget(r.Context(), id); err != nil {
		log.Printf("view forget error (non-fatal): %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted"})
}

// UploadCover attaches a cover image from a multipart "cover" field,
// owner-scoped like Update. Nothing is written to object storage until
// the caller is known to own the post, and each upload gets its own
// object key so a stale write can never clobber the cover the post
// points at.
func (h *Handler) UploadCover(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)
	id := chi.URLParam(r, "id")

	post, err := h.posts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error":"post not found"}`, http.StatusNotFound)
			return
		}
		log.Printf("post get error: %v", err)
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}
	if post.AuthorID != userID {
		http.Error(w, `{"error":"post not found"}`, http.StatusNotFound)
		return
	}

	if err := r.ParseMultipartForm(maxCoverBytes); err != nil {
		http.Error(w, `{"error":"invalid multipart body"}`, http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("cover")
	if err != nil {
		http.Error(w, `{"error":"cover file is required"}`, http.StatusBadRequest)
		return
	}
	defer file.Close()
	if header.Size > maxCoverBytes {
		http.Error(w, `{"error":"cover too large"}`, http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("%s/cover-%s", id, uuid.NewString()[:8])
	if err := h.covers.Upload(r.Context(), key, file, header.Size, contentType); err != nil {
		log.Printf("cover upload error: %v", err)
		http.Error(w, `{"error":"upload failed"}`, http.StatusInternalServerError)
		return
	}

	if err := h.posts.SetCover(r.Context(), id, userID, key); err != nil {
		// Don't orphan the object we just wrote.
		if rmErr := h.covers.Remove(r.Context(), key); rmErr != nil {
			log.Printf("cover rollback error (non-fatal): %v", rmErr)
		}
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error":"post not found"}`, http.StatusNotFound)
			return
		}
		log.Printf("cover attach error: %v", err)
		http.Error(w, `{"error":"upload failed"}`, http.StatusInternalServerError)
		return
	}

	if post.CoverKey != "" && post.CoverKey != key {
		if err := h.covers.Remove(r.Context(), post.CoverKey); err != nil {
			log.Printf("old cover remove error (non-fatal): %v", err)
		}
	}

	saved, err := h.posts.GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, `{"error":"post not found"}`, http.StatusNotFound)
		return
	}
	h.populateOne(r.Context(), saved)
	writeJSON(w, http.StatusOK, saved)
}

// DownloadCover streams the cover image.
func (h *Handler) DownloadCover(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, err := h.posts.GetByID(r.Context(), id)
	if err != nil || post.CoverKey == "" {
		http.Error(w, `{"error":"cover not available"}`, http.StatusNotFound)
		return
	}

	data, ct, err := h.covers.Download(r.Context(), post.CoverKey)
	if err != nil {
		log.Printf("cover download error: %v", err)
		http.Error(w, `{"error":"download failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ct)
	w.Write(data)
}

func (h *Handler) populateOne(ctx context.Context, post *models.Post) {
	user, err := h.users.GetUserByID(ctx, post.AuthorID)
	if err != nil {
		log.Printf("author populate error (non-fatal): %v", err)
		return
	}
	post.Author = user
}

func (h *Handler) populateMany(ctx context.Context, posts []models.Post) {
	if len(posts) == 0 {
		return
	}
	seen := make(map[string]bool, len(posts))
	ids := make([]string, 0, len(posts))
	for i := range posts {
		if !seen[posts[i].AuthorID] {
			seen[posts[i].AuthorID] = true
			ids = append(ids, posts[i].AuthorID)
		}
	}

	users, err := h.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		log.Printf("author populate error (non-fatal): %v", err)
		return
	}
	for i := range posts {
		if u, ok := users[posts[i].AuthorID]; ok {
			posts[i].Author = &u
		}
	}
}

func queryInt(r *http.Request, key string) int64 {
	n, _ := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return n
}
