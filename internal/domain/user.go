package domain

// User represents an account that can own boards and be invited to them
type User struct {
	BaseModel
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex:uq_users_email" json:"email"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
