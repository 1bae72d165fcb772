package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"path/filepath"
	"time"

	"github.com/lastchancecy/apiserver/internal/events"
	"github.com/lastchancecy/apiserver/internal/storage"
	"github.com/lastchancecy/apiserver/types"
)

const publishTimeout = 5 * time.Second

// AdRepository defines persistence operations for ads.
type AdRepository interface {
	List(ctx context.Context) ([]types.Ad, error)
	Get(ctx context.Context, id int) (types.Ad, error)
	Create(ctx context.Context, ad types.Ad) (types.Ad, error)
}

// AdService encapsulates ad use-cases: image upload to the media store,
// row insertion, and ad-created event fan-out.
type AdService struct {
	repo    AdRepository
	storage *storage.Storage
	events  *events.Events
}

// NewAdService constructs an AdService. The events wrapper may be nil,
// in which case no events are published.
func NewAdService(repo AdRepository, media *storage.Storage, ev *events.Events) *AdService {
	return &AdService{
		repo:    repo,
		storage: media,
		events:  ev,
	}
}

func (s *AdService) List(ctx context.Context) ([]types.Ad, error) {
	return s.repo.List(ctx)
}

func (s *AdService) Get(ctx context.Context, id int) (types.Ad, error) {
	return s.repo.Get(ctx, id)
}

// Create uploads the ad image to the media store, persists the ad with the
// returned URL, and publishes an ad-created event. Publishing is best
// effort: a broker failure never fails the request.
func (s *AdService) Create(ctx context.Context, ad types.Ad, filename string, image []byte, contentType string) (types.Ad, error) {
	key := newObjectKey(filename)
	if err := s.storage.Put(ctx, key, bytes.NewReader(image), int64(len(image)), contentType); err != nil {
		return types.Ad{}, err
	}
	ad.ImageURL = s.storage.URL(key)

	created, err := s.repo.Create(ctx, ad)
	if err != nil {
		return types.Ad{}, err
	}

	s.publishAdCreated(created)
	return created, nil
}

func (s *AdService) publishAdCreated(ad types.Ad) {
	if s.events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	_, err := s.events.PublishAdCreated(ctx, events.AdCreatedEvent{
		AdID:      ad.ID,
		Title:     ad.Title,
		UserID:    ad.UserID,
		CreatedAt: ad.CreatedAt,
	})
	if err != nil {
		log.Printf("publish ad created event: %v", err)
	}
}

// newObjectKey returns a random hex key preserving the upload's extension.
func newObjectKey(filename string) string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return filepath.Base(filename)
	}
	return hex.EncodeToString(buf[:]) + filepath.Ext(filename)
}
