package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Product is the catalog slice consumed here. The orders flow only reads
// products to decide whether a reference is resolvable.
type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Price        float64            `bson:"price" json:"price"`
	Image        string             `bson:"image,omitempty" json:"image,omitempty"`
	CountInStock int                `bson:"countInStock" json:"countInStock"`
}
