package models

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_USER       = "user"
	ROLE_ADMIN      = "admin"
	STATUS_ACTIVE   = "active"
	STATUS_INACTIVE = "inactive"
	STATUS_DISABLED = "disabled"
)

// activation links stay valid for two days
const activationTokenTTL = 48 * time.Hour

type User struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	Name                 string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=3,max=150"`
	Email                string         `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Password             string         `gorm:"type:text" json:"-" validate:"required,min=6"`
	Role                 string         `gorm:"type:varchar(50);default:'user'" json:"role" validate:"oneof=user admin"`
	Status               string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active inactive disabled"`
	Phone                string         `gorm:"type:varchar(40);default:null" json:"phone" validate:"max=40"`
	AvatarURL            string         `gorm:"type:varchar(255);default:null" json:"avatar_url" validate:"max=255"`
	DeliveryAddress      string         `gorm:"type:varchar(255);default:null" json:"delivery_address" validate:"max=255"`
	City                 string         `gorm:"type:varchar(100);default:null" json:"city" validate:"max=100"`
	ZipCode              string         `gorm:"type:varchar(20);default:null" json:"zip_code" validate:"max=20"`
	DeliveryInstructions string         `gorm:"type:text;default:null" json:"delivery_instructions" validate:"max=500"`
	ActivationToken      string         `gorm:"type:varchar(100);index" json:"-"`
	ActivationSentAt     *time.Time     `gorm:"default:null" json:"-"`
	LastLoginAt          *time.Time     `gorm:"default:null" json:"last_login_at"`
	CreatedAt            time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

// DeliveryAddress is the part of a user that checkout writes back.
type DeliveryAddress struct {
	Street       string
	City         string
	ZipCode      string
	Instructions string
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

func CreateUser(username string, email string, password string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:     strings.TrimSpace(username),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: pw,
		Role:     ROLE_USER,
		Status:   STATUS_INACTIVE,
	}

	err = u.Validate()
	if err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// GenerateActivationToken creates a random token and sets ActivationSentAt
func (u *User) GenerateActivationToken() error {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return err
	}
	u.ActivationToken = hex.EncodeToString(b)
	now := time.Now()
	u.ActivationSentAt = &now
	return nil
}

// ActivationTokenValid reports whether token matches and has not expired.
func (u *User) ActivationTokenValid(token string, now time.Time) bool {
	if u.ActivationToken == "" || u.ActivationSentAt == nil || token != u.ActivationToken {
		return false
	}
	return now.Sub(*u.ActivationSentAt) < activationTokenTTL
}

// Activate marks the account active and consumes the token.
func (u *User) Activate() {
	u.Status = STATUS_ACTIVE
	u.ActivationToken = ""
	u.ActivationSentAt = nil
}

func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}

// Address returns the stored delivery address, used to prefill checkout.
func (u *User) Address() DeliveryAddress {
	return DeliveryAddress{
		Street:       u.DeliveryAddress,
		City:         u.City,
		ZipCode:      u.ZipCode,
		Instructions: u.DeliveryInstructions,
	}
}

func (u *User) HasDeliveryAddress() bool {
	return u.DeliveryAddress != "" && u.City != "" && u.ZipCode != ""
}
