package models

import "time"

// Ad is a single marketplace listing.
type Ad struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	// Description is the free-form body of the listing.
	Description string `json:"description"`
	// Category is an open string set; create restricts to Categories,
	// search accepts anything.
	Category string `json:"category"`
	// Price in whole currency units. Nil means "negotiable".
	Price  *float64 `json:"price,omitempty"`
	City   string   `json:"city"`
	Images []string `json:"images"`
	// Active controls visibility in the public feed. Inactive ads remain
	// visible to their owner.
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// AdDraft is the user-submitted form for a new ad. Price arrives as the raw
// input string so validation can distinguish "absent" from "not a number".
type AdDraft struct {
	Title       string
	Description string
	Category    string
	Price       string
	City        string
	Images      []string
}

// Categories is the set of categories the create form offers.
var Categories = []string{
	"Real Estate",
	"Car",
	"Mobile",
	"Laptop",
	"Home",
	"Other",
}

// KnownCategory reports whether cat is one of Categories.
func KnownCategory(cat string) bool {
	for _, c := range Categories {
		if c == cat {
			return true
		}
	}
	return false
}
