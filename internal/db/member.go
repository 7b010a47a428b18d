package db

import "gorm.io/gorm"

// Member 是通过宿主 App 登录的日记用户，UserKey 由登录方下发且不透明。
type Member struct {
	gorm.Model
	UserKey  int64  `gorm:"uniqueIndex;not null"`
	Referrer string `gorm:"size:32"`
}
