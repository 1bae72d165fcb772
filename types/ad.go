package types

import "time"

// Ad is a posted listing: a title, a description, an uploaded image, and
// the number of people sought for each role. Ads are immutable once created.
type Ad struct {
	ID          int    `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`

	// ImageURL is the durable URL returned by the media store.
	ImageURL string `json:"image_url" db:"image_url"`

	// UserID references the user who posted the ad.
	UserID int `json:"user_id" db:"user_id"`

	// Role counts: how many DJs, staff members, and PR people are sought.
	DJ    int `json:"dj" db:"dj"`
	Staff int `json:"staff" db:"staff"`
	PR    int `json:"pr" db:"pr"`

	// CreatedAt orders the listing feed, newest first.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
