// Package handlers contains the HTTP handlers for every entity surface.
// Responses use a {message, ...} envelope for mutations and bare arrays
// for list reads.
package handlers

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technotrends/workflow-backend/internal/middleware"
)

// M is a response envelope.
type M map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, M{"message": message})
}

// actorID resolves the authenticated caller's object id. The token
// middleware guarantees an identity is present on protected routes.
func actorID(r *http.Request) (primitive.ObjectID, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(identity.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// parseObjectIDs converts hex ids, rejecting the whole batch on the first
// invalid one.
func parseObjectIDs(ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
