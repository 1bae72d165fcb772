package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/lastchancecy/apiserver/types"
)

func TestCreateAdRoundTripsRoleCounts(t *testing.T) {
	env := newTestEnv()
	userID, token := env.signupAndSignin(t, "dj@club.com", "pw")

	rec := env.postAd(t, token, "Saturday opening", "Need crew for opening night", 2, 0, 1)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if msg := decodeMessage(t, rec); msg != "Ad created successfully" {
		t.Fatalf("message = %q, want %q", msg, "Ad created successfully")
	}

	rec = env.doGet(t, "/ads/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want %d", rec.Code, http.StatusOK)
	}

	var ad types.Ad
	if err := json.Unmarshal(rec.Body.Bytes(), &ad); err != nil {
		t.Fatalf("decode ad: %v", err)
	}
	if ad.DJ != 2 || ad.Staff != 0 || ad.PR != 1 {
		t.Fatalf("role counts = dj=%d staff=%d pr=%d, want dj=2 staff=0 pr=1", ad.DJ, ad.Staff, ad.PR)
	}
	if ad.UserID != userID {
		t.Fatalf("ad owner = %d, want signed-in user %d", ad.UserID, userID)
	}
	if !strings.HasPrefix(ad.ImageURL, "http://media.local/test-bucket/") {
		t.Fatalf("image url %q not served from the media store", ad.ImageURL)
	}
	if len(env.media.objects) != 1 {
		t.Fatalf("media store holds %d objects, want 1", len(env.media.objects))
	}
}

func TestListAdsNewestFirst(t *testing.T) {
	env := newTestEnv()
	_, token := env.signupAndSignin(t, "owner@club.com", "pw")

	if rec := env.postAd(t, token, "Ad A", "first", 0, 0, 0); rec.Code != http.StatusCreated {
		t.Fatalf("create A status = %d", rec.Code)
	}
	if rec := env.postAd(t, token, "Ad B", "second", 0, 0, 0); rec.Code != http.StatusCreated {
		t.Fatalf("create B status = %d", rec.Code)
	}

	rec := env.doGet(t, "/ads", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want %d", rec.Code, http.StatusOK)
	}

	var ads []types.Ad
	if err := json.Unmarshal(rec.Body.Bytes(), &ads); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(ads) != 2 {
		t.Fatalf("list length = %d, want 2", len(ads))
	}
	if ads[0].Title != "Ad B" || ads[1].Title != "Ad A" {
		t.Fatalf("order = [%q, %q], want newest first", ads[0].Title, ads[1].Title)
	}
}

func TestGetAdNotFound(t *testing.T) {
	env := newTestEnv()

	rec := env.doGet(t, "/ads/99", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if msg := decodeMessage(t, rec); msg == "" {
		t.Fatalf("404 response missing message field")
	}
}

func TestCreateAdRequiresAuth(t *testing.T) {
	env := newTestEnv()

	rec := env.postAd(t, "", "No token", "should fail", 1, 1, 1)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if len(env.adRepo.ads) != 0 {
		t.Fatalf("ad was stored despite missing auth")
	}
}

func TestCreateAdRejectsForeignOwner(t *testing.T) {
	env := newTestEnv()
	_, token := env.signupAndSignin(t, "me@club.com", "pw")

	req := newAdFormRequest(t, map[string]string{
		"title":       "Spoofed",
		"description": "claims another owner",
		"userId":      "42",
	}, true)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := serve(env, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestCreateAdMissingImage(t *testing.T) {
	env := newTestEnv()
	_, token := env.signupAndSignin(t, "me@club.com", "pw")

	req := newAdFormRequest(t, map[string]string{
		"title":       "No image",
		"description": "forgot the flyer",
	}, false)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := serve(env, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateAdAcceptsNegativeCounts(t *testing.T) {
	// UI floors at zero but the API does not validate ranges.
	env := newTestEnv()
	_, token := env.signupAndSignin(t, "me@club.com", "pw")

	rec := env.postAd(t, token, "Odd counts", "negative dj via direct call", -3, 0, 0)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	ad, err := env.adRepo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("stored ad not found: %v", err)
	}
	if ad.DJ != -3 {
		t.Fatalf("dj = %d, want -3 stored verbatim", ad.DJ)
	}
}
