// Package storetest holds a conformance suite run against every
// animal.Store implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/pedigree/pkg/animal"
	"github.com/matzehuels/pedigree/pkg/errors"
)

// Run exercises s. The store must be empty.
func Run(t *testing.T, s animal.Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	cattle := &animal.Type{ID: "type-cattle", Name: "Cattle", CreatedAt: now}
	sheep := &animal.Type{ID: "type-sheep", Name: "Sheep", CreatedAt: now}
	for _, ty := range []*animal.Type{sheep, cattle} {
		if err := s.InsertType(ctx, ty); err != nil {
			t.Fatalf("InsertType(%s): %v", ty.Name, err)
		}
	}

	birth := animal.NewDate(2020, time.March, 15)
	rec := func(id, ident, name string, g animal.Gender, typ *animal.Type, mom, dad string) *animal.Record {
		return &animal.Record{
			ID: id, Identifier: ident, Name: name, Gender: g,
			TypeID: typ.ID, TypeName: typ.Name, MotherID: mom, FatherID: dad,
			Active: true, CreatedAt: now, UpdatedAt: now,
		}
	}
	dam := rec("dam", "C-002", "Daisy", animal.Female, cattle, "", "")
	sire := rec("sire", "C-001", "Bruno", animal.Male, cattle, "", "")
	calf := rec("calf", "C-003", "Bessie", animal.Female, cattle, "dam", "sire")
	calf.BirthDate = &birth
	calf.Notes = "first calf"
	ewe := rec("ewe", "S-001", "Dolly", animal.Female, sheep, "", "")
	ewe.Active = false
	for _, r := range []*animal.Record{dam, sire, calf, ewe} {
		if err := s.InsertAnimal(ctx, r); err != nil {
			t.Fatalf("InsertAnimal(%s): %v", r.ID, err)
		}
	}

	t.Run("GetAnimal", func(t *testing.T) {
		got, err := s.GetAnimal(ctx, "calf")
		if err != nil {
			t.Fatalf("GetAnimal: %v", err)
		}
		if got.Identifier != "C-003" || got.Name != "Bessie" || got.Gender != animal.Female {
			t.Errorf("GetAnimal = %+v", got)
		}
		if got.MotherID != "dam" || got.FatherID != "sire" {
			t.Errorf("parents = %q/%q, want dam/sire", got.MotherID, got.FatherID)
		}
		if got.BirthDate == nil || *got.BirthDate != birth {
			t.Errorf("BirthDate = %v, want %v", got.BirthDate, birth)
		}
		if got.TypeName != "Cattle" || got.Notes != "first calf" || !got.Active {
			t.Errorf("GetAnimal = %+v", got)
		}
		if !got.CreatedAt.Equal(now) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
		}
	})

	t.Run("GetAnimalNotFound", func(t *testing.T) {
		if _, err := s.GetAnimal(ctx, "missing"); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("err = %v, want NOT_FOUND", err)
		}
	})

	t.Run("GetAnimalsSkipsMissing", func(t *testing.T) {
		got, err := s.GetAnimals(ctx, []string{"dam", "missing", "sire"})
		if err != nil {
			t.Fatalf("GetAnimals: %v", err)
		}
		if ids := idSet(got); len(ids) != 2 || !ids["dam"] || !ids["sire"] {
			t.Errorf("GetAnimals = %v, want dam and sire", ids)
		}
		if got, err := s.GetAnimals(ctx, nil); err != nil || len(got) != 0 {
			t.Errorf("GetAnimals(nil) = %v, %v", got, err)
		}
	})

	t.Run("ListAnimals", func(t *testing.T) {
		active := true
		tests := []struct {
			name   string
			filter animal.Filter
			want   []string
		}{
			{"all", animal.Filter{}, []string{"sire", "dam", "calf", "ewe"}},
			{"type", animal.Filter{TypeID: sheep.ID}, []string{"ewe"}},
			{"active", animal.Filter{Active: &active}, []string{"sire", "dam", "calf"}},
			{"search name", animal.Filter{Search: "bess"}, []string{"calf"}},
			{"search identifier", animal.Filter{Search: "s-0"}, []string{"ewe"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := s.ListAnimals(ctx, tt.filter)
				if err != nil {
					t.Fatalf("ListAnimals: %v", err)
				}
				if len(got) != len(tt.want) {
					t.Fatalf("ListAnimals = %v, want %v", ids(got), tt.want)
				}
				for i := range got {
					if got[i].ID != tt.want[i] {
						t.Fatalf("ListAnimals = %v, want %v", ids(got), tt.want)
					}
				}
			})
		}
	})

	t.Run("Children", func(t *testing.T) {
		for _, parent := range []string{"dam", "sire"} {
			got, err := s.Children(ctx, parent)
			if err != nil {
				t.Fatalf("Children(%s): %v", parent, err)
			}
			if len(got) != 1 || got[0].ID != "calf" {
				t.Errorf("Children(%s) = %v, want [calf]", parent, ids(got))
			}
		}
		if got, _ := s.Children(ctx, "calf"); len(got) != 0 {
			t.Errorf("Children(calf) = %v, want none", ids(got))
		}
	})

	t.Run("IdentifierConflict", func(t *testing.T) {
		dup := rec("dup", "C-001", "", animal.Male, cattle, "", "")
		if err := s.InsertAnimal(ctx, dup); !errors.Is(err, errors.ErrCodeConflict) {
			t.Errorf("InsertAnimal duplicate identifier err = %v, want CONFLICT", err)
		}
		other := rec("other", "C-001", "", animal.Male, sheep, "", "")
		if err := s.InsertAnimal(ctx, other); err != nil {
			t.Errorf("same identifier in another type: %v", err)
		}
		if err := s.RemoveAnimal(ctx, "other"); err != nil {
			t.Errorf("RemoveAnimal(other): %v", err)
		}
	})

	t.Run("ReplaceAnimal", func(t *testing.T) {
		upd, err := s.GetAnimal(ctx, "ewe")
		if err != nil {
			t.Fatal(err)
		}
		upd.Name = "Dolly II"
		upd.BirthDate = nil
		upd.UpdatedAt = now.Add(time.Hour)
		if err := s.ReplaceAnimal(ctx, upd); err != nil {
			t.Fatalf("ReplaceAnimal: %v", err)
		}
		got, _ := s.GetAnimal(ctx, "ewe")
		if got.Name != "Dolly II" || !got.UpdatedAt.Equal(now.Add(time.Hour)) {
			t.Errorf("after replace = %+v", got)
		}
		missing := rec("ghost", "G-1", "", animal.Unknown, sheep, "", "")
		if err := s.ReplaceAnimal(ctx, missing); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("ReplaceAnimal(missing) err = %v, want NOT_FOUND", err)
		}
	})

	t.Run("RemoveAnimal", func(t *testing.T) {
		if err := s.RemoveAnimal(ctx, "ewe"); err != nil {
			t.Fatalf("RemoveAnimal: %v", err)
		}
		if _, err := s.GetAnimal(ctx, "ewe"); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("removed animal still readable: %v", err)
		}
		if err := s.RemoveAnimal(ctx, "ewe"); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("second RemoveAnimal err = %v, want NOT_FOUND", err)
		}
	})

	t.Run("Types", func(t *testing.T) {
		got, err := s.ListTypes(ctx)
		if err != nil {
			t.Fatalf("ListTypes: %v", err)
		}
		if len(got) != 2 || got[0].Name != "Cattle" || got[1].Name != "Sheep" {
			t.Errorf("ListTypes = %+v, want Cattle, Sheep", got)
		}
		ty, err := s.GetType(ctx, sheep.ID)
		if err != nil || ty.Name != "Sheep" {
			t.Errorf("GetType = %+v, %v", ty, err)
		}
		if _, err := s.GetType(ctx, "missing"); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("GetType(missing) err = %v, want NOT_FOUND", err)
		}
		dup := &animal.Type{ID: "type-dup", Name: "Cattle", CreatedAt: now}
		if err := s.InsertType(ctx, dup); !errors.Is(err, errors.ErrCodeConflict) {
			t.Errorf("InsertType duplicate name err = %v, want CONFLICT", err)
		}
	})
}

func ids(recs []*animal.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func idSet(recs []*animal.Record) map[string]bool {
	out := make(map[string]bool, len(recs))
	for _, r := range recs {
		out[r.ID] = true
	}
	return out
}
