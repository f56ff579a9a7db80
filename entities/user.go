package entities

import (
	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Email     string    `gorm:"uniqueIndex" json:"email"`
	Username  string    `gorm:"uniqueIndex" json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`

	Recipes       []*Recipe           `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Favorites     []*Favorite         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ShoppingCart  []*ShoppingCartItem `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Subscriptions []*Subscription     `gorm:"foreignKey:SubscriberID;constraint:OnDelete:CASCADE"`
	Timestamp
}

type Subscription struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	SubscriberID   uuid.UUID `gorm:"uniqueIndex:idx_subscriber_subscribed_to" json:"subscriber_id"`
	SubscribedToID uuid.UUID `gorm:"uniqueIndex:idx_subscriber_subscribed_to" json:"subscribed_to_id"`

	Subscriber   *User `gorm:"foreignKey:SubscriberID"`
	SubscribedTo *User `gorm:"foreignKey:SubscribedToID;constraint:OnDelete:CASCADE"`
	Timestamp
}
