package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"arcane/db"
	"arcane/models"
	"arcane/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// COD order placement has no external idempotency key the way card payments
// do, so duplicate submits are possible when a client retries. Clients that
// send an Idempotency-Key header get at-most-once placement; clients that
// don't are passed through unchanged.

func computeRequestHash(r *http.Request, bodyBytes []byte, userID string) string {
	h := sha256.New()
	h.Write([]byte(r.Method + ":" + r.URL.Path + ":" + userID + ":"))
	h.Write(bodyBytes)
	return hex.EncodeToString(h.Sum(nil))
}

// CaptureResponseWriter wraps http.ResponseWriter to capture status and body.
type CaptureResponseWriter struct {
	w           http.ResponseWriter
	statusCode  int
	buf         bytes.Buffer
	wroteHeader bool
}

func NewCaptureResponseWriter(w http.ResponseWriter) *CaptureResponseWriter {
	return &CaptureResponseWriter{w: w, statusCode: http.StatusOK}
}

func (c *CaptureResponseWriter) Header() http.Header { return c.w.Header() }

func (c *CaptureResponseWriter) WriteHeader(statusCode int) {
	if !c.wroteHeader {
		c.statusCode = statusCode
		c.w.WriteHeader(statusCode)
		c.wroteHeader = true
	}
}

func (c *CaptureResponseWriter) Write(b []byte) (int, error) {
	c.buf.Write(b)
	return c.w.Write(b)
}

func (c *CaptureResponseWriter) Status() int { return c.statusCode }

func (c *CaptureResponseWriter) BodyBytes() []byte { return c.buf.Bytes() }

// Idempotent replays the stored response for a repeated Idempotency-Key
// instead of running the handler twice.
// Behavior:
// - If no header: pass-through.
// - If header present: compute request hash and try to insert a placeholder record.
//   - If insert succeeds: run the handler; capture and store the response.
//   - If insert hits the unique index: fetch the existing record:
//   - request hash mismatch -> 409 Conflict
//   - stored response available -> replay it
//   - still in flight -> run the handler (the ledger's own uniqueness rules hold)
func Idempotent(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		key := r.Header.Get("Idempotency-Key")
		if key == "" {
			next(w, r, ps)
			return
		}

		userID := utils.GetUserIDFromRequest(r)

		// Limit body size to 1 MB
		bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		reqHash := computeRequestHash(r, bodyBytes, userID)
		now := time.Now()
		rec := models.IdempotencyRecord{
			Key:         key,
			Method:      r.Method,
			Path:        r.URL.Path,
			UserID:      userID,
			RequestHash: reqHash,
			CreatedAt:   now,
			ExpiresAt:   now.Add(24 * time.Hour),
		}

		ctx := r.Context()
		_, err = db.IdempotencyCollection.InsertOne(ctx, rec)
		if err == nil {
			crw := NewCaptureResponseWriter(w)
			next(crw, r, ps)

			var parsed interface{}
			if err := json.Unmarshal(crw.BodyBytes(), &parsed); err != nil {
				parsed = string(crw.BodyBytes())
			}

			responseObj := map[string]interface{}{
				"status": crw.Status(),
				"body":   parsed,
			}

			_, _ = db.IdempotencyCollection.UpdateOne(ctx,
				bson.M{"key": key},
				bson.M{"$set": bson.M{"response": responseObj}},
			)
			return
		}

		if !db.IsDuplicateKeyError(err) {
			http.Error(w, "idempotency lookup error", http.StatusInternalServerError)
			return
		}

		var existing models.IdempotencyRecord
		if err := db.IdempotencyCollection.FindOne(ctx, bson.M{"key": key}).Decode(&existing); err != nil {
			http.Error(w, "idempotency lookup error", http.StatusInternalServerError)
			return
		}

		if existing.RequestHash != reqHash {
			http.Error(w, "idempotency-key conflict", http.StatusConflict)
			return
		}

		if existing.Response != nil {
			statusFloat, _ := existing.Response["status"].(float64)
			status := int(statusFloat)
			body := existing.Response["body"]
			utils.RespondWithJSON(w, status, body)
			return
		}

		// In-flight duplicate, let the handler run
		next(w, r, ps)
	}
}
