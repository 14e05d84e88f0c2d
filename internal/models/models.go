package models

type Artisan struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"not null"                 json:"name"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Verified     bool   `gorm:"default:false"            json:"verified"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	ArtisanID   uint    `gorm:"index;not null"           json:"artisan_id"`
	Name        string  `gorm:"not null"                 json:"name"`
	Description string  `json:"description"`
	Price       float64 `gorm:"not null"                 json:"price"`
	Category    string  `gorm:"index"                    json:"category"`
	Image       string  `json:"image"`
	Approved    bool    `gorm:"default:false"            json:"approved"`
}

type CartItem struct {
	ID        uint   `gorm:"primaryKey"                 json:"id"`
	CartToken string `gorm:"index;not null"             json:"-"`
	ProductID uint   `gorm:"not null"                   json:"product_id"`
	Quantity  uint   `gorm:"default:1;check:quantity>0" json:"quantity"`
}

type Order struct {
	ID        uint    `gorm:"primaryKey"     json:"id"`
	CartToken string  `gorm:"index"          json:"-"`
	Email     string  `gorm:"not null"       json:"email"`
	Total     float64 `gorm:"not null"       json:"total"`
	Status    string  `gorm:"not null"       json:"status"`
	CreatedAt int64   `json:"created_at"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey"     json:"id"`
	OrderID   uint    `gorm:"index;not null" json:"order_id"`
	ProductID uint    `gorm:"not null"       json:"product_id"`
	Name      string  `gorm:"not null"       json:"name"`
	Price     float64 `gorm:"not null"       json:"price"`
	Quantity  uint    `gorm:"not null"       json:"quantity"`
}
