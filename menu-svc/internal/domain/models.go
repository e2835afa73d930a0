package domain

import "time"

type Owner struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Restaurant struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id,omitempty"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url"`
	CoverImageURL string    `json:"cover_image_url"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	OpeningHours  string    `json:"opening_hours"`
	Currency      string    `json:"currency"`
	TableCount    int       `json:"table_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Category struct {
	ID           string `json:"id"`
	RestaurantID string `json:"restaurant_id,omitempty"`
	Name         string `json:"name"`
	Position     int    `json:"position"`
	Items        []Item `json:"items"`
}

type Item struct {
	ID            string    `json:"id"`
	CategoryID    string    `json:"category_id,omitempty"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	OldPrice      *float64  `json:"old_price,omitempty"`
	ImageURL      string    `json:"image_url"`
	IsAvailable   bool      `json:"is_available"`
	IsVisible     bool      `json:"is_visible"`
	Position      int       `json:"position"`
	Variants      []Variant `json:"variants"`
	AddonGroupIDs []string  `json:"addon_group_ids"`
}

type Variant struct {
	ID       string  `json:"id"`
	ItemID   string  `json:"item_id,omitempty"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Position int     `json:"position"`
}

type AddonGroup struct {
	ID           string        `json:"id"`
	RestaurantID string        `json:"restaurant_id,omitempty"`
	Name         string        `json:"name"`
	MinSelect    int           `json:"min_select"`
	MaxSelect    int           `json:"max_select"`
	IsRequired   bool          `json:"is_required"`
	Position     int           `json:"position"`
	Options      []AddonOption `json:"options"`
}

type AddonOption struct {
	ID       string  `json:"id"`
	GroupID  string  `json:"group_id,omitempty"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Position int     `json:"position"`
}

// Menu is the whole editable document of one restaurant.
type Menu struct {
	Restaurant  *Restaurant  `json:"restaurant,omitempty"`
	TableNumber *int         `json:"table_number,omitempty"`
	Categories  []Category   `json:"categories"`
	AddonGroups []AddonGroup `json:"addon_groups"`
}

type Table struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	Number       int       `json:"table_number"`
	CreatedAt    time.Time `json:"created_at"`
}

type SaveResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
}
