package models

import "time"

// Furnishing used when the submitter leaves it blank
const FurnishingUnspecified = "Unspecified"

// Request types

type SignUpRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Password  string `json:"password" validate:"required,min=6"`
}

type SignUpOwnerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Name        string `json:"name" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Password    string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type FavoriteRequest struct {
	HouseID string `json:"houseId" validate:"required"`
}

// Pointer so a missing field can be told apart from false
type VerifyRequest struct {
	VerificationStatus *bool `json:"verificationStatus" validate:"required"`
}

// Response types

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type SignUpResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId,omitempty"`
	OwnerID string `json:"ownerId,omitempty"`
}

type LoginResponse struct {
	Success  bool    `json:"success"`
	Role     string  `json:"role"`
	User     Profile `json:"user"`
	Redirect string  `json:"redirect,omitempty"`
}

type MeResponse struct {
	User Profile `json:"user"`
}

type FavoriteResponse struct {
	Success      bool `json:"success"`
	AlreadySaved bool `json:"alreadySaved,omitempty"`
}

type SubmitHouseResponse struct {
	Success       bool   `json:"success"`
	HouseID       string `json:"houseId"`
	ImagesStored  int    `json:"imagesStored"`
	ImagesSkipped int    `json:"imagesSkipped"`
}

type VerifyResponse struct {
	Success bool  `json:"success"`
	House   House `json:"house"`
}

type AdminStats struct {
	UnverifiedCount int `json:"unverifiedCount" db:"unverified_count"`
	VerifiedCount   int `json:"verifiedCount" db:"verified_count"`
}

// Profile is what /api/auth/me and login return about the caller
type Profile struct {
	UserID       string `json:"userId,omitempty"`
	OwnerID      string `json:"ownerId,omitempty"`
	AdminID      string `json:"adminId,omitempty"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	Name         string `json:"name"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	IsHouseOwner bool   `json:"isHouseOwner"`
	IsAdmin      bool   `json:"isAdmin"`
}

// Domain types

type User struct {
	ID           string    `db:"id" json:"userId"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"` // Never expose in JSON
	FirstName    string    `db:"first_name" json:"firstName"`
	LastName     string    `db:"last_name" json:"lastName"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type HouseOwner struct {
	ID              string    `db:"id" json:"ownerId"`
	Email           string    `db:"email" json:"email"`
	PasswordHash    string    `db:"password_hash" json:"-"` // Never expose in JSON
	Name            string    `db:"name" json:"name"`
	PhoneNumber     string    `db:"phone_number" json:"phoneNumber"`
	TotalProperties int       `db:"total_properties" json:"totalProperties"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

type Admin struct {
	ID           string    `db:"id" json:"adminId"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"` // Never expose in JSON
	Name         string    `db:"name" json:"name"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type Region struct {
	ID         string   `db:"id" json:"regionId"`
	RegionName string   `db:"region_name" json:"regionName"`
	City       string   `db:"city" json:"city"`
	Country    string   `db:"country" json:"country"`
	PostalCode string   `db:"postal_code" json:"postalCode"`
	Street     string   `db:"street" json:"street"`
	Latitude   *float64 `db:"latitude" json:"latitude"`
	Longitude  *float64 `db:"longitude" json:"longitude"`
}

// OwnerSummary is the owner contact shown alongside a house
type OwnerSummary struct {
	ID              string `db:"id" json:"ownerId"`
	Name            string `db:"name" json:"name"`
	Email           string `db:"email" json:"email"`
	PhoneNumber     string `db:"phone_number" json:"phoneNumber"`
	TotalProperties int    `db:"total_properties" json:"totalProperties"`
}

type ImageRef struct {
	ID  string `json:"imageId"`
	URL string `json:"url"`
}

type House struct {
	ID                 string    `db:"id" json:"houseId"`
	OwnerID            string    `db:"owner_id" json:"ownerId"`
	RegionID           string    `db:"region_id" json:"regionId"`
	Title              string    `db:"title" json:"title"`
	Description        string    `db:"description" json:"description"`
	MonthlyRent        float64   `db:"monthly_rent" json:"monthlyRent"`
	NumberOfRooms      int       `db:"number_of_rooms" json:"numberOfRooms"`
	NumberOfBathrooms  int       `db:"number_of_bathrooms" json:"numberOfBathrooms"`
	FurnishingStatus   string    `db:"furnishing_status" json:"furnishingStatus"`
	IsAvailable        bool      `db:"is_available" json:"isAvailable"`
	VerificationStatus bool      `db:"verification_status" json:"verificationStatus"`
	DatePosted         time.Time `db:"date_posted" json:"datePosted"`

	Region     Region        `db:"region" json:"region"`
	Owner      *OwnerSummary `db:"-" json:"owner,omitempty"`
	Images     []ImageRef    `db:"-" json:"images"`
	IsFavorite bool          `db:"-" json:"isFavorite"`
}

// HouseImage is a stored image. Data is the raw bytes.
type HouseImage struct {
	ID          string    `db:"id"`
	HouseID     string    `db:"house_id"`
	ContentType string    `db:"content_type"`
	SizeBytes   int64     `db:"size_bytes"`
	Data        []byte    `db:"data"`
	CreatedAt   time.Time `db:"created_at"`
}

// NewHouse carries a validated submission into the store
type NewHouse struct {
	OwnerID           string
	Title             string
	Description       string
	MonthlyRent       float64
	NumberOfRooms     int
	NumberOfBathrooms int
	FurnishingStatus  string
	Region            Region
	Images            []NewImage
}

type NewImage struct {
	ContentType string
	Data        []byte
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
