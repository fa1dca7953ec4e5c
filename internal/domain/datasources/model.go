package datasources

import "weather-acquisition-go/internal/domain/collection"

const CollectionName = "data_sources"

type DataSource struct {
	collection.Base
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
}

func (DataSource) TableName() string {
	return CollectionName
}

// Equal compares every field, not just the key.
func (d DataSource) Equal(other DataSource) bool {
	return d.ID == other.ID && d.Name == other.Name && d.Description == other.Description
}
