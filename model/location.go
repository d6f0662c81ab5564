package model

import "time"

type Location struct {
	ID        string  `gorm:"primaryKey;column:id" json:"id"`
	Name      string  `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Latitude  float64 `gorm:"column:latitude;not null" json:"latitude"`
	Longitude float64 `gorm:"column:longitude;not null" json:"longitude"`
	RadiusM   float64 `gorm:"column:radius_m;not null" json:"radiusM"`
	Active    bool    `gorm:"column:active;not null;default:true" json:"active"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Location) TableName() string {
	return "locations"
}
