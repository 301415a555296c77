package models

// User is an identity record. The password hash never leaves the server;
// json:"-" keeps it out of every serialized response.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
}

// Tree is a resource owned by exactly one User. OwnerID is set at creation
// from the authenticated caller and never changes afterwards.
type Tree struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Species   string  `gorm:"index;not null" json:"species"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	OwnerID   uint    `gorm:"index;not null" json:"owner_id"`
}

// UserPatch carries the fields a user update may change. Nil means
// "leave as is". Password changes go through no endpoint at all.
type UserPatch struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

// Apply merges the set fields into u.
func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
}

// TreePatch carries the fields a tree update may change. OwnerID is
// deliberately absent: ownership is immutable.
type TreePatch struct {
	Species   *string  `json:"species"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Apply merges the set fields into t.
func (p TreePatch) Apply(t *Tree) {
	if p.Species != nil {
		t.Species = *p.Species
	}
	if p.Latitude != nil {
		t.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		t.Longitude = *p.Longitude
	}
}
