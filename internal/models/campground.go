package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Owner is the denormalized owner snapshot attached to campgrounds and
// comments at creation time. It is never refreshed: a later username change
// does not propagate here, and ownership checks compare IDs only.
type Owner struct {
	ID       string `json:"id"       bson:"id"`
	Username string `json:"username" bson:"username"`
}

// Campground is a single listing stored in MongoDB.
type Campground struct {
	ID          primitive.ObjectID   `json:"id"          bson:"_id,omitempty"`
	Name        string               `json:"name"        bson:"name"`
	Description string               `json:"description" bson:"description"`
	Price       string               `json:"price"       bson:"price"`
	Location    string               `json:"location"    bson:"location"`
	Lat         float64              `json:"lat"         bson:"lat"`
	Lng         float64              `json:"lng"         bson:"lng"`
	ImageURL    string               `json:"image_url"   bson:"image_url"`
	ImageKey    string               `json:"image_key"   bson:"image_key"`
	Owner       Owner                `json:"owner"       bson:"owner"`
	CommentIDs  []primitive.ObjectID `json:"comment_ids" bson:"comments"`
	CreatedAt   time.Time            `json:"created_at"  bson:"created_at"`
}

// Comment is stored in its own collection; the parent campground keeps the
// back-reference in CommentIDs.
type Comment struct {
	ID        primitive.ObjectID `json:"id"         bson:"_id,omitempty"`
	Text      string             `json:"text"       bson:"text"`
	Owner     Owner              `json:"owner"      bson:"owner"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// CampgroundForm is the create/edit form body for a campground.
type CampgroundForm struct {
	Name        string `validate:"required,max=100"`
	Description string `validate:"required"`
	Price       string `validate:"required"`
	Location    string `validate:"required"`
}

// ContactForm is the contact page form body. All fields are passed through
// into the outgoing mail verbatim.
type ContactForm struct {
	Name    string `validate:"required"`
	Phone   string
	Email   string `validate:"required,email"`
	Message string `validate:"required"`
}
