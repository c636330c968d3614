package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User account and profile. PasswordHash never leaves the service layer.
type User struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Role              string     `json:"role"`
	Age               *float64   `json:"age,omitempty"`
	Weight            *float64   `json:"weight,omitempty"`
	Height            *float64   `json:"height,omitempty"`
	Mobile            string     `json:"mobile,omitempty"`
	ProfileImage      string     `json:"profileImage,omitempty"`
	BloodType         string     `json:"bloodType,omitempty"`
	Gender            string     `json:"gender,omitempty"`
	MedicalConditions []string   `json:"medicalConditions"`
	Allergies         []string   `json:"allergies"`
	Medications       []string   `json:"medications"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	LastLogin         *time.Time `json:"lastLogin,omitempty"`
}

// UserSummary embedded wherever a document references its author.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// ProfileUpdate fields accepted by a profile update; nil means unchanged.
type ProfileUpdate struct {
	Name              *string
	Age               *float64
	Height            *float64
	Weight            *float64
	Mobile            *string
	Gender            *string
	BloodType         *string
	ProfileImage      *string
	MedicalConditions *[]string
	Allergies         *[]string
	Medications       *[]string
}

// Apply copies the set fields onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Age != nil {
		u.Age = p.Age
	}
	if p.Height != nil {
		u.Height = p.Height
	}
	if p.Weight != nil {
		u.Weight = p.Weight
	}
	if p.Mobile != nil {
		u.Mobile = *p.Mobile
	}
	if p.Gender != nil {
		u.Gender = *p.Gender
	}
	if p.BloodType != nil {
		u.BloodType = *p.BloodType
	}
	if p.ProfileImage != nil {
		u.ProfileImage = *p.ProfileImage
	}
	if p.MedicalConditions != nil {
		u.MedicalConditions = *p.MedicalConditions
	}
	if p.Allergies != nil {
		u.Allergies = *p.Allergies
	}
	if p.Medications != nil {
		u.Medications = *p.Medications
	}
}
