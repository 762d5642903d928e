package animal

import (
	"strings"
	"time"

	"github.com/matzehuels/pedigree/pkg/errors"
)

// Type is an animal category such as "Cattle" or "Sheep".
type Type struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Record is a single stored animal.
//
// MotherID and FatherID hold parent record IDs; an empty string means no
// parent is recorded. TypeName is denormalized from the referenced [Type] on
// every write.
type Record struct {
	ID          string    `json:"id"`
	Identifier  string    `json:"identifier"`
	Name        string    `json:"name,omitempty"`
	Gender      Gender    `json:"gender"`
	BirthDate   *Date     `json:"date_of_birth,omitempty"`
	TypeID      string    `json:"type_id"`
	TypeName    string    `json:"animal_type,omitempty"`
	MotherID    string    `json:"mother_id,omitempty"`
	FatherID    string    `json:"father_id,omitempty"`
	Active      bool      `json:"is_active"`
	Description string    `json:"description,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AdultAge is the age in years from which an animal counts as adult.
const AdultAge = 2

// Age returns r's age in whole years on now's calendar date. It is 0 when
// the birth date is unknown or lies after now.
func (r *Record) Age(now time.Time) int {
	if r.BirthDate == nil {
		return 0
	}
	return r.BirthDate.YearsUntil(DateOf(now))
}

// IsAdult reports whether r is at least AdultAge years old on now.
func (r *Record) IsAdult(now time.Time) bool {
	return r.Age(now) >= AdultAge
}

// ParentIDs returns the non-empty parent references, mother first.
func (r *Record) ParentIDs() []string {
	ids := make([]string, 0, 2)
	if r.MotherID != "" {
		ids = append(ids, r.MotherID)
	}
	if r.FatherID != "" {
		ids = append(ids, r.FatherID)
	}
	return ids
}

// Clone returns a copy of r that shares no pointers with it.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	if r.BirthDate != nil {
		d := *r.BirthDate
		c.BirthDate = &d
	}
	return &c
}

// Validate checks the fields a record must carry before it is written.
// Referential checks (type and parents exist) are done by [Registry].
func (r *Record) Validate() error {
	r.Identifier = strings.TrimSpace(r.Identifier)
	r.Name = strings.TrimSpace(r.Name)
	if err := errors.ValidateIdentifier(r.Identifier); err != nil {
		return err
	}
	if err := errors.ValidateName(r.Name); err != nil {
		return err
	}
	if r.Gender == "" {
		r.Gender = Unknown
	}
	if !r.Gender.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "invalid gender %q", r.Gender)
	}
	if r.BirthDate != nil && !r.BirthDate.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "invalid date of birth %s", r.BirthDate)
	}
	if r.TypeID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "animal type is required")
	}
	if r.ID != "" && (r.MotherID == r.ID || r.FatherID == r.ID) {
		return errors.New(errors.ErrCodeInvalidInput, "animal %s cannot be its own parent", r.Identifier)
	}
	if r.MotherID != "" && r.MotherID == r.FatherID {
		return errors.New(errors.ErrCodeInvalidInput, "mother and father must be different animals")
	}
	return nil
}

// Filter narrows ListAnimals results. Zero values match everything.
type Filter struct {
	TypeID string
	Active *bool
	// Search matches a case-insensitive substring of name or identifier.
	Search string
}

// Match reports whether r passes f. Stores that cannot push the filter down
// to the backend use it directly.
func (f Filter) Match(r *Record) bool {
	if f.TypeID != "" && r.TypeID != f.TypeID {
		return false
	}
	if f.Active != nil && r.Active != *f.Active {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(r.Name), q) && !strings.Contains(strings.ToLower(r.Identifier), q) {
			return false
		}
	}
	return true
}

// Relationship names which parent slot links a child to an animal.
type Relationship string

const (
	RelMother Relationship = "mother"
	RelFather Relationship = "father"
)

// Offspring is a child record tagged with how it descends from the queried
// animal.
type Offspring struct {
	*Record
	Relationship Relationship `json:"relationship"`
}

// NotFound returns the coded error stores use for a missing record.
func NotFound(kind, id string) error {
	return errors.New(errors.ErrCodeNotFound, "%s %q not found", kind, id)
}
