package models

import "time"

// IdempotencyRecord is the stored replay-protection record for mutating
// requests that carry an Idempotency-Key header.
type IdempotencyRecord struct {
	Key         string                 `bson:"key" json:"key"`
	Method      string                 `bson:"method" json:"method"`
	Path        string                 `bson:"path" json:"path"`
	UserID      string                 `bson:"userid" json:"userid"`
	RequestHash string                 `bson:"request_hash" json:"request_hash"`
	Response    map[string]interface{} `bson:"response,omitempty" json:"response,omitempty"`
	CreatedAt   time.Time              `bson:"created_at" json:"created_at"`
	ExpiresAt   time.Time              `bson:"expires_at" json:"expires_at"`
}
