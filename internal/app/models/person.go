package models

// Person is the canonical contact record shared across admissions and
// students. It is never owned by a single application: several admissions may
// point at the same person, and the identity resolver only ever fills fields
// that are still empty.
type Person struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	Email     string `json:"email" db:"email"`
	Phone     string `json:"phone,omitempty" db:"phone"`
	Mobile    string `json:"mobile,omitempty" db:"mobile"`
	Street    string `json:"street,omitempty" db:"street"`
	Street2   string `json:"street2,omitempty" db:"street2"`
	City      string `json:"city,omitempty" db:"city"`
	Zip       string `json:"zip,omitempty" db:"zip"`
	Country   string `json:"country,omitempty" db:"country"`
	IsStudent bool   `json:"isStudent" db:"is_student"`
	Active    bool   `json:"active" db:"active"`
}

// ContactFields carries the optional contact data supplied alongside a
// resolve call. Empty strings mean "not provided".
type ContactFields struct {
	Phone   string
	Mobile  string
	Street  string
	Street2 string
	City    string
	Zip     string
	Country string
}

// MergeMissing fills empty fields on p from the supplied contact data and
// reports whether anything changed. Populated fields are never overwritten.
func (p *Person) MergeMissing(name string, contact ContactFields) bool {
	changed := false
	set := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
			changed = true
		}
	}
	set(&p.Name, name)
	set(&p.Phone, contact.Phone)
	set(&p.Mobile, contact.Mobile)
	set(&p.Street, contact.Street)
	set(&p.Street2, contact.Street2)
	set(&p.City, contact.City)
	set(&p.Zip, contact.Zip)
	set(&p.Country, contact.Country)
	return changed
}
