package models

// User is the slice of the identity store this service reads: enough to
// address a notification. Account management lives elsewhere.
type User struct {
	ID    string `bson:"_id,omitempty" json:"id"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
}
