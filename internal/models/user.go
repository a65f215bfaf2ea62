package models

type User struct {
	BaseModel
	Email    string `gorm:"uniqueIndex;not null"`
	Name     string `gorm:"not null"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"not null;default:'manager';index"` // admin, manager
	IsActive bool   `gorm:"default:true"`
}
