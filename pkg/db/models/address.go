package models

import "time"

// Address is a shipping destination owned by a user. Analytics only ever
// reads its (state, city) pair.
type Address struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	Nickname  string    `gorm:"column:nickname;not null;default:'home'"`
	Street    string    `gorm:"column:street;not null"`
	City      string    `gorm:"column:city;not null"`
	State     string    `gorm:"column:state;not null"`
	Zip       string    `gorm:"column:zip;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
