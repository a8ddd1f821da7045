package models

import (
	"time"
)

const (
	RoleSeller = "seller"
	RoleBuyer  = "buyer"
	RoleAdmin  = "admin"
)

// GeoLocation is a geocoded coordinate pair attached to an address.
type GeoLocation struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

type Address struct {
	AddressID  string      `json:"address_id" bson:"address_id"`
	Address    string      `json:"address" bson:"address"`
	City       string      `json:"city" bson:"city"`
	Province   string      `json:"province" bson:"province"`
	PostalCode string      `json:"postal_code" bson:"postal_code"`
	Country    string      `json:"country" bson:"country"`
	Geo        GeoLocation `json:"geo_location" bson:"geo_location"`
	Notes      string      `json:"notes,omitempty" bson:"notes,omitempty"`
}

// User is an account record keyed by the auth provider's UID. Addresses[0] is
// the primary address used for pickup and matching.
type User struct {
	UID          string    `json:"uid" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	FirstName    string    `json:"first_name" bson:"first_name,omitempty"`
	LastName     string    `json:"last_name" bson:"last_name,omitempty"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash,omitempty"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Role         string    `json:"role" bson:"role"`
	Addresses    []Address `json:"addresses" bson:"addresses"`
	ProfileImage string    `json:"profile_image,omitempty" bson:"profile_image,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// PrimaryAddress returns the user's first address, or nil if they have none.
func (u *User) PrimaryAddress() *Address {
	if len(u.Addresses) == 0 {
		return nil
	}
	return &u.Addresses[0]
}

type RegisterRequest struct {
	Username  string   `json:"username"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Phone     string   `json:"phone"`
	Role      string   `json:"role"`
	Address   *Address `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UpdateAddressesRequest struct {
	Addresses []Address `json:"addresses"`
}

func (r *RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Username == "" {
		errors["username"] = "Username is required"
	}
	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < 6 {
		errors["password"] = "Password must be at least 6 characters"
	}
	if r.Role != RoleSeller && r.Role != RoleBuyer {
		errors["role"] = "Role must be seller or buyer"
	}

	return errors
}

func (r *LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

func (r *UpdateAddressesRequest) Validate() map[string]string {
	errors := make(map[string]string)

	for _, a := range r.Addresses {
		if a.Address == "" {
			errors["addresses"] = "Address line is required"
			break
		}
		if a.Geo.Lat == 0 && a.Geo.Lng == 0 {
			errors["addresses"] = "Address must be geocoded before saving"
			break
		}
	}

	return errors
}
