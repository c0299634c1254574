package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// 認証は外部。ここではJWTのsubと紐づく最小限の情報だけ持つ。
type User struct {
	ID           int64        `gorm:"primaryKey;autoIncrement"`
	Email        string       `gorm:"uniqueIndex;not null"`
	FirstName    string       `gorm:"type:varchar(100);not null;default:''"`
	LastName     string       `gorm:"type:varchar(100);not null;default:''"`
	Role         Role         `gorm:"type:varchar(20);not null;default:'USER'"`
	TokenVersion int          `gorm:"not null;default:0"`
	IsActive     bool         `gorm:"not null"`
	Profile      *UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// 配送先などのプロフィール
type UserProfile struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	Phone       string    `gorm:"type:varchar(20);not null;default:''" json:"phone"`
	CompanyName string    `gorm:"type:varchar(255);not null;default:''" json:"company_name"`
	Address     string    `gorm:"type:text;not null;default:''" json:"address"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 下書き注文を作るときにコピーする連絡先
func (u User) Contact() Contact {
	c := Contact{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
	if u.Profile != nil {
		c.Phone = u.Profile.Phone
		c.Address = u.Profile.Address
	}
	return c
}
