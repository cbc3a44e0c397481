package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FileData struct {
	FileName string `bson:"fileName,omitempty" json:"fileName,omitempty"`
	FilePath string `bson:"filePath,omitempty" json:"filePath,omitempty"`
	FileType string `bson:"fileType,omitempty" json:"fileType,omitempty"`
	FileSize string `bson:"fileSize,omitempty" json:"fileSize,omitempty"`
}

// IsEmpty reports whether no image was attached.
func (f FileData) IsEmpty() bool {
	return f == FileData{}
}

type Product struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`

	Name        string   `bson:"name" json:"name"`
	SKU         string   `bson:"sku" json:"sku"`
	Category    string   `bson:"category" json:"category"`
	Quantity    string   `bson:"quantity" json:"quantity"`
	Price       string   `bson:"price" json:"price"`
	Description string   `bson:"description" json:"description"`
	Image       FileData `bson:"image" json:"image"`
}
