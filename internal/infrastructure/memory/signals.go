package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

// SignalRepo señales en memoria.
type SignalRepo struct{ v view }

var _ repository.SignalRepository = (*SignalRepo)(nil)

func (r *SignalRepo) List(_ context.Context, companyID string, includeDismissed bool, limit, offset int) ([]*entity.Signal, int, error) {
	var all []*entity.Signal
	err := r.v.read(func(st *state) error {
		for _, s := range st.signals {
			if s.CompanyID != companyID || (!includeDismissed && s.IsDismissed) {
				continue
			}
			c := *s
			all = append(all, &c)
		}
		return nil
	})
	sortSignals(all)
	return page(all, limit, offset), len(all), err
}

func (r *SignalRepo) ListDismissed(_ context.Context, companyID string) ([]*entity.Signal, error) {
	var out []*entity.Signal
	err := r.v.read(func(st *state) error {
		for _, s := range st.signals {
			if s.CompanyID == companyID && s.IsDismissed {
				c := *s
				out = append(out, &c)
			}
		}
		return nil
	})
	sortSignals(out)
	return out, err
}

func (r *SignalRepo) GetByID(_ context.Context, companyID, id string) (*entity.Signal, error) {
	var out *entity.Signal
	err := r.v.read(func(st *state) error {
		if s, ok := st.signals[id]; ok && s.CompanyID == companyID {
			c := *s
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *SignalRepo) InsertBatch(_ context.Context, signals []*entity.Signal) error {
	return r.v.read(func(st *state) error {
		for _, s := range signals {
			c := *s
			st.signals[s.ID] = &c
		}
		return nil
	})
}

func (r *SignalRepo) DeleteActive(_ context.Context, companyID string) (int, error) {
	n := 0
	err := r.v.read(func(st *state) error {
		for id, s := range st.signals {
			if s.CompanyID == companyID && !s.IsDismissed {
				delete(st.signals, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *SignalRepo) SetFlags(_ context.Context, companyID, id string, read, dismissed bool) error {
	return r.v.read(func(st *state) error {
		s, ok := st.signals[id]
		if !ok || s.CompanyID != companyID {
			return domain.ErrNotFound
		}
		s.IsRead = read
		s.IsDismissed = dismissed
		return nil
	})
}

func (r *SignalRepo) Summary(_ context.Context, companyID string) (entity.SignalSummary, error) {
	var sum entity.SignalSummary
	err := r.v.read(func(st *state) error {
		for _, s := range st.signals {
			if s.CompanyID != companyID || s.IsDismissed {
				continue
			}
			sum.Total++
			switch s.Severity {
			case entity.SeverityCritical:
				sum.Critical++
			case entity.SeverityWarning:
				sum.Warning++
			case entity.SeverityInfo:
				sum.Info++
			}
			if !s.IsRead {
				sum.Unread++
			}
		}
		return nil
	})
	return sum, err
}

// críticas primero, luego por tipo y entidad (orden estable entre refrescos)
func sortSignals(list []*entity.Signal) {
	rank := map[string]int{entity.SeverityCritical: 0, entity.SeverityWarning: 1, entity.SeverityInfo: 2}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if rank[a.Severity] != rank[b.Severity] {
			return rank[a.Severity] < rank[b.Severity]
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.EntityID < b.EntityID
	})
}
