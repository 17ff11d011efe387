package models

// Entities holds the structured facts pulled out of a single message.
// Zero values mean "not mentioned": empty strings, nil Symptoms and a nil
// Number.
type Entities struct {
	Date       string   `bson:"date,omitempty" json:"date,omitempty"`
	Time       string   `bson:"time,omitempty" json:"time,omitempty"`
	Specialty  string   `bson:"specialty,omitempty" json:"specialty,omitempty"`
	Symptoms   []string `bson:"symptoms,omitempty" json:"symptoms,omitempty"`
	DoctorName string   `bson:"doctor_name,omitempty" json:"doctorName,omitempty"`
	Number     *int     `bson:"number,omitempty" json:"number,omitempty"`
}

// IsEmpty reports whether no entity kind was found.
func (e Entities) IsEmpty() bool {
	return e.Date == "" && e.Time == "" && e.Specialty == "" &&
		e.Symptoms == nil && e.DoctorName == "" && e.Number == nil
}

// Merge returns a copy of e overlaid with every kind present in other.
// Keys present in other win; keys only in e survive.
func (e Entities) Merge(other Entities) Entities {
	merged := e.Clone()
	if other.Date != "" {
		merged.Date = other.Date
	}
	if other.Time != "" {
		merged.Time = other.Time
	}
	if other.Specialty != "" {
		merged.Specialty = other.Specialty
	}
	if other.Symptoms != nil {
		merged.Symptoms = append([]string{}, other.Symptoms...)
	}
	if other.DoctorName != "" {
		merged.DoctorName = other.DoctorName
	}
	if other.Number != nil {
		n := *other.Number
		merged.Number = &n
	}
	return merged
}

// Clone returns a deep copy.
func (e Entities) Clone() Entities {
	c := e
	if e.Symptoms != nil {
		c.Symptoms = append([]string{}, e.Symptoms...)
	}
	if e.Number != nil {
		n := *e.Number
		c.Number = &n
	}
	return c
}
