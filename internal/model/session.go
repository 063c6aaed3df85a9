package model

import "time"

// Session backs anonymous visitor tokens when sessions live in the database
type Session struct {
	Token     string    `gorm:"type:varchar(40);primarykey"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}
