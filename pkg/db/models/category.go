package models

// Category groups products for browsing.
type Category struct {
	CategoryID  string  `gorm:"column:category_id;primaryKey" json:"category_id"`
	Name        string  `gorm:"column:name;not null" json:"name"`
	Description *string `gorm:"column:description" json:"description,omitempty"`
	Image       *string `gorm:"column:image" json:"image,omitempty"`
	ParentID    *string `gorm:"column:parent_id" json:"parent_id,omitempty"`
}
