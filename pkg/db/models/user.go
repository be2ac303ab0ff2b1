package models

import (
	dbtypes "github.com/angelmondragon/authdash-backend/pkg/db/types"
)

// User is the dashboard identity row. The id is issued by the identity
// provider; every other column is nullable.
type User struct {
	ID             string        `gorm:"column:id;type:varchar(255);primaryKey" json:"id"`
	Email          *string       `gorm:"column:email;type:varchar(255);index" json:"email"`
	Name           *string       `gorm:"column:name;type:varchar(255)" json:"name"`
	Gender         *string       `gorm:"column:gender;type:varchar(50)" json:"gender"`
	Birthday       *dbtypes.Date `gorm:"column:birthday;type:date" json:"birthday"`
	Password       *string       `gorm:"column:password;type:varchar(255)" json:"password"`
	Token          *string       `gorm:"column:token;type:varchar(255)" json:"token"`
	OrgName        *string       `gorm:"column:org_name;type:varchar(255)" json:"orgName"`
	Position       *string       `gorm:"column:position;type:varchar(255)" json:"position"`
	CountryCode    *string       `gorm:"column:country_code;type:varchar(10)" json:"countryCode"`
	Contact        *string       `gorm:"column:contact;type:varchar(20)" json:"contact"`
	ProfilePicture *string       `gorm:"column:profile_picture;type:text" json:"profilepicture"`
}

func (User) TableName() string { return "users" }
