package catalog

import (
	"context"
	"net/http"
	"time"

	"arcane/db"
	"arcane/models"
	"arcane/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// IsValidID reports whether id is syntactically a catalog ObjectID. The card
// checkout path uses this to decide best-effort product attribution; the COD
// path uses it as a hard validation.
func IsValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

// GetProductByID fetches a catalog product, or nil when absent.
func GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var p models.Product
	err = db.ProductsCollection.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProduct serves the single catalog read the order flow exposes.
func GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	p, err := GetProductByID(ctx, ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not load product")
		return
	}
	if p == nil {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}
