package mongo

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/apiforge/apiforge-server/internal/core/domain"
)

// parseID converts a hex id from the API into an ObjectID.
func parseID(hex string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidID
	}
	return oid, nil
}

func insertedHex(id interface{}) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return ""
}
