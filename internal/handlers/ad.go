package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lastchancecy/apiserver/internal/services"
	"github.com/lastchancecy/apiserver/internal/store"
	"github.com/lastchancecy/apiserver/types"
)

const (
	maxMultipartMemory = 32 << 20
	maxImageBytes      = 16 << 20

	formFieldTitle  = "title"
	formFieldDesc   = "description"
	formFieldImage  = "image"
	formFieldUserID = "userId"
	formFieldDJ     = "dj"
	formFieldStaff  = "staff"
	formFieldPR     = "pr"
)

// ImageFile represents an uploaded ad image.
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AdHandler provides HTTP handlers for ads.
type AdHandler struct {
	adService *services.AdService
}

// NewAdHandler constructs a handler with the provided service.
func NewAdHandler(adService *services.AdService) *AdHandler {
	return &AdHandler{adService: adService}
}

// AdRouter registers ad routes on the given router. Browsing is public;
// creation requires an authenticated caller.
func AdRouter(r chi.Router, adService *services.AdService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewAdHandler(adService)

	r.Get("/", handler.ListAds)
	if authMiddleware != nil {
		r.With(authMiddleware).Post("/", handler.CreateAd)
	} else {
		r.Post("/", handler.CreateAd)
	}
	r.Get("/{adID}", handler.GetAd)
}

func (h *AdHandler) ListAds(w http.ResponseWriter, r *http.Request) {
	ads, err := h.adService.List(r.Context())
	if err != nil {
		log.Printf("list ads: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Error fetching ads")
		return
	}

	writeJSON(w, http.StatusOK, ads)
}

func (h *AdHandler) GetAd(w http.ResponseWriter, r *http.Request) {
	id, err := parseAdID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	ad, err := h.adService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Ad not found")
			return
		}
		log.Printf("fetch ad %d: %v", id, err)
		writeMessage(w, http.StatusInternalServerError, "Error fetching ad details")
		return
	}

	writeJSON(w, http.StatusOK, ad)
}

// CreateAd accepts the multipart ad form, stores the image, and inserts the
// ad. The owner is the authenticated caller; a userId form field, when
// present, must match it.
func (h *AdHandler) CreateAd(w http.ResponseWriter, r *http.Request) {
	callerID, err := userIDFromContext(r.Context())
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	req, err := parseAdForm(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.UserID != 0 && req.UserID != callerID {
		writeMessage(w, http.StatusForbidden, "cannot post an ad for another user")
		return
	}

	ad := types.Ad{
		Title:       req.Title,
		Description: req.Description,
		UserID:      callerID,
		DJ:          req.DJ,
		Staff:       req.Staff,
		PR:          req.PR,
	}

	if _, err := h.adService.Create(r.Context(), ad, req.Image.Filename, req.Image.Data, req.Image.ContentType); err != nil {
		log.Printf("create ad: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Error creating ad")
		return
	}

	writeMessage(w, http.StatusCreated, "Ad created successfully")
}

// AdCreateRequest represents the parsed multipart form payload.
type AdCreateRequest struct {
	Title       string
	Description string
	UserID      int
	DJ          int
	Staff       int
	PR          int
	Image       ImageFile
}

func parseAdID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "adID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid ad id")
	}
	return id, nil
}

func parseAdForm(r *http.Request) (AdCreateRequest, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return AdCreateRequest{}, errors.New("invalid multipart form")
	}

	title := strings.TrimSpace(r.FormValue(formFieldTitle))
	if title == "" {
		return AdCreateRequest{}, errors.New("title is required")
	}

	description := strings.TrimSpace(r.FormValue(formFieldDesc))
	if description == "" {
		return AdCreateRequest{}, errors.New("description is required")
	}

	userID, err := parseOptionalInt(r.FormValue(formFieldUserID))
	if err != nil {
		return AdCreateRequest{}, errors.New("invalid user id")
	}

	dj, err := parseOptionalInt(r.FormValue(formFieldDJ))
	if err != nil {
		return AdCreateRequest{}, errors.New("invalid dj count")
	}

	staff, err := parseOptionalInt(r.FormValue(formFieldStaff))
	if err != nil {
		return AdCreateRequest{}, errors.New("invalid staff count")
	}

	pr, err := parseOptionalInt(r.FormValue(formFieldPR))
	if err != nil {
		return AdCreateRequest{}, errors.New("invalid pr count")
	}

	image, err := parseImageFile(r.MultipartForm)
	if err != nil {
		return AdCreateRequest{}, err
	}

	return AdCreateRequest{
		Title:       title,
		Description: description,
		UserID:      userID,
		DJ:          dj,
		Staff:       staff,
		PR:          pr,
		Image:       image,
	}, nil
}

func parseOptionalInt(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func parseImageFile(form *multipart.Form) (ImageFile, error) {
	if form == nil {
		return ImageFile{}, errors.New("missing form data")
	}

	files := form.File[formFieldImage]
	if len(files) == 0 {
		return ImageFile{}, errors.New("image file is required")
	}
	if len(files) > 1 {
		return ImageFile{}, errors.New("only one image file is allowed")
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		return ImageFile{}, fmt.Errorf("failed to read image file: %w", err)
	}

	data, err := readFileLimited(file, maxImageBytes)
	_ = file.Close()
	if err != nil {
		return ImageFile{}, err
	}

	return ImageFile{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
