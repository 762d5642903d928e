package server

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/pedigree/pkg/animal"
	"github.com/matzehuels/pedigree/pkg/buildinfo"
	"github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/pedigree"
	"github.com/matzehuels/pedigree/pkg/render"
	"github.com/matzehuels/pedigree/pkg/render/presentation"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

// -----------------------------------------------------------------------------
// Types
// -----------------------------------------------------------------------------

func (s *Server) handleListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.registry.ListTypes(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if types == nil {
		types = []*animal.Type{}
	}
	writeJSON(w, http.StatusOK, types)
}

type typeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleCreateType(w http.ResponseWriter, r *http.Request) {
	var req typeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.registry.CreateType(r.Context(), &animal.Type{Name: req.Name, Description: req.Description})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetType(w http.ResponseWriter, r *http.Request) {
	t, err := s.registry.GetType(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// -----------------------------------------------------------------------------
// Animals
// -----------------------------------------------------------------------------

// animalRequest is the writable subset of animal.Record.
type animalRequest struct {
	Identifier  string       `json:"identifier"`
	Name        string       `json:"name"`
	Gender      string       `json:"gender"`
	BirthDate   *animal.Date `json:"date_of_birth"`
	TypeID      string       `json:"type_id"`
	MotherID    string       `json:"mother_id"`
	FatherID    string       `json:"father_id"`
	Active      *bool        `json:"is_active"`
	Description string       `json:"description"`
	Notes       string       `json:"notes"`
}

func (req *animalRequest) record() (*animal.Record, error) {
	g, err := animal.ParseGender(req.Gender)
	if err != nil {
		return nil, err
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return &animal.Record{
		Identifier:  req.Identifier,
		Name:        req.Name,
		Gender:      g,
		BirthDate:   req.BirthDate,
		TypeID:      req.TypeID,
		MotherID:    req.MotherID,
		FatherID:    req.FatherID,
		Active:      active,
		Description: req.Description,
		Notes:       req.Notes,
	}, nil
}

// animalPatch is the body of PUT. Absent or null keys keep the stored
// value; an empty mother_id or father_id clears that parent.
type animalPatch struct {
	Identifier  *string      `json:"identifier"`
	Name        *string      `json:"name"`
	Gender      *string      `json:"gender"`
	BirthDate   *animal.Date `json:"date_of_birth"`
	TypeID      *string      `json:"type_id"`
	MotherID    *string      `json:"mother_id"`
	FatherID    *string      `json:"father_id"`
	Active      *bool        `json:"is_active"`
	Description *string      `json:"description"`
	Notes       *string      `json:"notes"`
}

func (p *animalPatch) apply(rec *animal.Record) error {
	if p.Gender != nil {
		g, err := animal.ParseGender(*p.Gender)
		if err != nil {
			return err
		}
		rec.Gender = g
	}
	if p.BirthDate != nil {
		d := *p.BirthDate
		rec.BirthDate = &d
	}
	if p.Active != nil {
		rec.Active = *p.Active
	}
	for _, f := range []struct {
		src *string
		dst *string
	}{
		{p.Identifier, &rec.Identifier},
		{p.Name, &rec.Name},
		{p.TypeID, &rec.TypeID},
		{p.MotherID, &rec.MotherID},
		{p.FatherID, &rec.FatherID},
		{p.Description, &rec.Description},
		{p.Notes, &rec.Notes},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	return nil
}

// animalView adds the age fields computed at response time.
type animalView struct {
	*animal.Record
	Age     int  `json:"age"`
	IsAdult bool `json:"is_adult"`
}

type offspringView struct {
	animalView
	Relationship animal.Relationship `json:"relationship"`
}

func (s *Server) animalView(rec *animal.Record) animalView {
	now := s.now()
	return animalView{Record: rec, Age: rec.Age(now), IsAdult: rec.IsAdult(now)}
}

func (s *Server) handleListAnimals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := animal.Filter{TypeID: q.Get("type_id"), Search: q.Get("search")}
	if v := q.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "active must be true or false, got %q", v))
			return
		}
		f.Active = &active
	}
	recs, err := s.registry.ListAnimals(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]animalView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, s.animalView(rec))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateAnimal(w http.ResponseWriter, r *http.Request) {
	var req animalRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := req.record()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.registry.CreateAnimal(r.Context(), rec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.animalView(created))
}

func (s *Server) handleGetAnimal(w http.ResponseWriter, r *http.Request) {
	rec, err := s.registry.GetAnimal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.animalView(rec))
}

func (s *Server) handleUpdateAnimal(w http.ResponseWriter, r *http.Request) {
	var patch animalPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.registry.GetAnimal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := patch.apply(rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.registry.UpdateAnimal(r.Context(), rec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.animalView(updated))
}

func (s *Server) handleDeleteAnimal(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.DeleteAnimal(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOffspring(w http.ResponseWriter, r *http.Request) {
	kids, err := s.registry.Offspring(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]offspringView, 0, len(kids))
	for _, k := range kids {
		views = append(views, offspringView{animalView: s.animalView(k.Record), Relationship: k.Relationship})
	}
	writeJSON(w, http.StatusOK, views)
}

// -----------------------------------------------------------------------------
// Pedigree
// -----------------------------------------------------------------------------

func (s *Server) resolve(r *http.Request) (*pedigree.Node, error) {
	generations, err := pedigree.ParseGenerations(r.URL.Query().Get("generations"))
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(r.Context(), chi.URLParam(r, "id"), generations)
}

func (s *Server) handlePedigree(w http.ResponseWriter, r *http.Request) {
	tree, err := s.resolve(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handlePedigreeSVG(w http.ResponseWriter, r *http.Request) {
	if s.svg == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeCapabilityUnavailable, "svg rendering is not configured"))
		return
	}
	tree, err := s.resolve(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	svg, err := s.svg.SVG(r.Context(), presentation.Build(tree, tree.Identifier))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", render.ContentType(render.FormatSVG))
	_, _ = w.Write(svg)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tree, err := s.resolve(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.exporter.Export(r.Context(), format, tree)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Data)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Name}))
	w.Header().Set("X-Export-ID", a.ID)
	w.Header().Set("X-Export-Cached", fmt.Sprint(a.Cached))
	if a.Location != "" {
		w.Header().Set("X-Export-Location", a.Location)
	}
	_, _ = w.Write(a.Data)
}
