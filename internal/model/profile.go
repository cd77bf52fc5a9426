package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Profile struct {
	ID        bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name      string        `json:"name" bson:"name"`
	Email     string        `json:"email" bson:"email"`
	Bio       string        `json:"bio" bson:"bio"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// ProfileUpdate is an upsert request keyed by Email. Nil fields are left
// untouched on existing profiles and defaulted on new ones.
type ProfileUpdate struct {
	Email string
	Name  *string
	Bio   *string
}

// DemoProfile holds the values used when the demo profile is first created.
type DemoProfile struct {
	Name  string
	Email string
	Bio   string
}

const (
	DefaultDemoName  = "Anna Samson"
	DefaultDemoEmail = "anna.samson@example.com"
	DefaultDemoBio   = "Passionate about coding and web development"
)
