// Package httpapi is the JSON envelope every endpoint speaks:
//
//	{"success": true|false, "message": "...", ...extra fields}
//
// Success with caveats (a notification or secondary mirror write failed
// after the primary mutation landed) is reported as 202 Accepted with
// success=true and the caveat in the message.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseID converts a wire-format id into an ObjectID.
func ParseID(s string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

const maxBodyBytes = 1 << 20

// ErrBodyTooLarge is returned by Decode when the request body exceeds
// the 1 MiB limit.
var ErrBodyTooLarge = errors.New("request body too large")

// Decode reads a JSON request body into dst with a size cap.
func Decode(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return ErrBodyTooLarge
		}
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return err
	}
	return nil
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, message string, extra map[string]any) {
	writeEnvelope(w, http.StatusOK, true, message, extra)
}

// Accepted writes a 202 success-with-caveat envelope.
func Accepted(w http.ResponseWriter, message string, extra map[string]any) {
	writeEnvelope(w, http.StatusAccepted, true, message, extra)
}

// Error writes a failure envelope with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, false, message, nil)
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, message string, extra map[string]any) {
	body := make(map[string]any, len(extra)+2)
	for k, v := range extra {
		body[k] = v
	}
	body["success"] = success
	if message != "" {
		body["message"] = message
	}
	JSON(w, status, body)
}
