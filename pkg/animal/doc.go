// Package animal defines breeding-animal records and the repository contract
// the rest of the system reads them through.
//
// # Records
//
// A [Record] is one animal: a store-assigned ID, an external Identifier
// (ear tag, registry number) that is unique within its animal [Type], an
// optional display name, a [Gender], an optional birth [Date], and optional
// mother/father references holding the parents' IDs.
//
// # Repositories
//
// [Reader] is the read surface the ancestry resolver depends on. It has a
// single-record lookup and a batched lookup; the batched call silently omits
// IDs it cannot find so that a dangling parent reference never aborts a
// pedigree.
//
// [Store] is the persistence contract implemented by the backends under
// pkg/store. [Registry] wraps a Store with the write-time checks shared by all
// backends (type exists, parents exist, no self-parenting, parents cannot be
// deleted):
//
//	reg := animal.NewRegistry(memory.New())
//	cattle, _ := reg.CreateType(ctx, &animal.Type{Name: "Cattle"})
//	cow, err := reg.CreateAnimal(ctx, &animal.Record{
//	    Identifier: "UK0001",
//	    Name:       "Bessie",
//	    Gender:     animal.Female,
//	    TypeID:     cattle.ID,
//	})
package animal
