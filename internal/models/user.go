// Package models содержит доменные структуры платформы доставки продуктов:
// пользователей, пакеты подписок, каталог товаров, заказы и платежи.
// Структуры используются в бизнес‑логике, хранилище и HTTP‑слое.
package models

import "time"

// Роли пользователя.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет зарегистрированного пользователя платформы.
type User struct {
	ID                     string     `json:"id"`
	Email                  string     `json:"email"`
	PasswordHash           *string    `json:"-"` // nil для пользователей, вошедших только через OAuth
	GoogleID               *string    `json:"-"`
	FirstName              string     `json:"firstName"`
	LastName               string     `json:"lastName"`
	Phone                  *string    `json:"phone,omitempty"`
	Location               *string    `json:"location,omitempty"` // nil, пока пользователь не выбрал локацию
	Role                   string     `json:"role"`
	EmailVerified          bool       `json:"emailVerified"`
	EmailVerificationToken *string    `json:"-"`
	TermsAccepted          bool       `json:"-"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              *time.Time `json:"-"`
}

// FullName возвращает имя и фамилию через пробел.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// HasLocation сообщает, выбрал ли пользователь локацию доставки.
func (u *User) HasLocation() bool {
	return u.Location != nil && *u.Location != ""
}

// NewUser: данные для создания пользователя при регистрации или первом входе через OAuth.
type NewUser struct {
	Email                  string
	PasswordHash           *string
	GoogleID               *string
	FirstName              string
	LastName               string
	EmailVerified          bool
	TermsAccepted          bool
	EmailVerificationToken *string
}

// ProfileUpdate: изменяемые поля профиля.
type ProfileUpdate struct {
	FirstName string  `json:"firstName" validate:"required,min=1,max=50"`
	LastName  string  `json:"lastName" validate:"required,min=1,max=50"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
}

// Profile: профиль пользователя вместе с кратким описанием активной подписки.
type Profile struct {
	User
	Subscription *ProfileSubscription `json:"subscription"`
}

// ProfileSubscription: краткая информация об активной подписке в профиле.
type ProfileSubscription struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	PackageName string    `json:"packageName"`
	SlotsUsed   int       `json:"slotsUsed"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ActiveData: количество данных, препятствующих удалению аккаунта.
type ActiveData struct {
	ActiveSubscriptions int `json:"activeSubscriptions"`
	PendingOrders       int `json:"pendingOrders"`
}

// GoogleProfile: профиль, полученный от Google после обмена authorization code.
type GoogleProfile struct {
	ID         string
	Email      string
	GivenName  string
	FamilyName string
}

// Registration: данные формы регистрации.
type Registration struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8,max=128"`
	FirstName     string `json:"firstName" validate:"required,min=1,max=50"`
	LastName      string `json:"lastName" validate:"required,min=1,max=50"`
	TermsAccepted bool   `json:"termsAccepted" validate:"required"`
}

// Credentials: email и пароль для входа.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult: пользователь и выданный ему токен доступа.
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// LocationSelection: запрос на выбор локации доставки.
type LocationSelection struct {
	Location string `json:"location" validate:"required,min=2,max=50"`
}

// AccountDeletion: подтверждение удаления аккаунта.
type AccountDeletion struct {
	ConfirmDelete bool `json:"confirmDelete"`
}
