package models

// Organization is a single organizational contact profile.
// Only ID is assigned by storage; every text field is free-form and may be empty.
type Organization struct {
	ID                 int64  `gorm:"primaryKey;autoIncrement" json:"Id"`
	Name               string `gorm:"type:text" json:"Name"`
	Address            string `gorm:"type:text" json:"Address"`
	PhoneNumber        string `gorm:"type:text" json:"PhoneNumber"`
	Email              string `gorm:"type:text" json:"Email"`
	Website            string `gorm:"type:text" json:"Website"`
	ContactPerson      string `gorm:"type:text" json:"ContactPerson"`
	ContactPersonPhone string `gorm:"type:text" json:"ContactPersonPhone"`
	ContactPersonEmail string `gorm:"type:text" json:"ContactPersonEmail"`
}

// TableName overrides the table name used by GORM for this model.
func (Organization) TableName() string {
	return "organizations"
}

// TextFields returns the searchable text attributes in column order.
func (o Organization) TextFields() []string {
	return []string{
		o.Name,
		o.Address,
		o.PhoneNumber,
		o.Email,
		o.Website,
		o.ContactPerson,
		o.ContactPersonPhone,
		o.ContactPersonEmail,
	}
}
