package signals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/application/ports"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	domainsignals "github.com/jhoicas/stockflow-api/internal/domain/signals"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

// SignalsUseCase regenera y administra las alertas derivadas de una empresa.
type SignalsUseCase struct {
	repos ports.Repos
	tx    ports.TxRunner
	rules []domainsignals.Rule
	log   *logger.Logger
	now   ports.Clock
}

// NewSignalsUseCase construye el caso de uso con el conjunto de reglas a evaluar.
func NewSignalsUseCase(repos ports.Repos, tx ports.TxRunner, rules []domainsignals.Rule, log *logger.Logger) *SignalsUseCase {
	return &SignalsUseCase{repos: repos, tx: tx, rules: rules, log: log, now: time.Now}
}

// WithClock reemplaza la fuente de tiempo (tests).
func (uc *SignalsUseCase) WithClock(clock ports.Clock) *SignalsUseCase {
	uc.now = clock
	return uc
}

// Refresh borra las señales no descartadas, evalúa todas las reglas y vuelve a insertar
// el resultado, omitiendo las condiciones que el usuario ya descartó. Se serializa por
// empresa y es seguro reejecutarlo tras un fallo.
func (uc *SignalsUseCase) Refresh(ctx context.Context, companyID string) (*dto.SignalRefreshResponse, error) {
	now := uc.now()
	var (
		removed, suppressed int
		fresh               []*entity.Signal
		summary             entity.SignalSummary
	)
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		if err := r.Locks.Lock(ctx, companyID, "signals"); err != nil {
			return err
		}
		var err error
		removed, err = r.Signals.DeleteActive(ctx, companyID)
		if err != nil {
			return err
		}
		candidates, err := domainsignals.Evaluate(ctx, uc.rules, repoSource{r: r}, companyID, now)
		if err != nil {
			return err
		}
		dismissed, err := r.Signals.ListDismissed(ctx, companyID)
		if err != nil {
			return err
		}
		fresh = domainsignals.Suppress(candidates, dismissed)
		suppressed = len(candidates) - len(fresh)
		for _, s := range fresh {
			s.ID = uuid.New().String()
			s.CreatedAt = now
		}
		if err := r.Signals.InsertBatch(ctx, fresh); err != nil {
			return err
		}
		summary, err = r.Signals.Summary(ctx, companyID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("company_id", companyID).
		Int("removed", removed).
		Int("generated", len(fresh)).
		Int("suppressed", suppressed).
		Msg("señales regeneradas")
	return &dto.SignalRefreshResponse{
		Removed:    removed,
		Generated:  len(fresh),
		Suppressed: suppressed,
		Summary:    toSummaryResponse(summary),
	}, nil
}

// List señales de la empresa; por defecto solo las no descartadas.
func (uc *SignalsUseCase) List(ctx context.Context, companyID string, includeDismissed bool, page dto.PageRequest) (*dto.SignalListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.repos.Signals.List(ctx, companyID, includeDismissed, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SignalResponse, 0, len(list))
	for _, s := range list {
		items = append(items, toSignalResponse(s))
	}
	return &dto.SignalListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Summary conteos por severidad y no leídas.
func (uc *SignalsUseCase) Summary(ctx context.Context, companyID string) (*dto.SignalSummaryResponse, error) {
	s, err := uc.repos.Signals.Summary(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := toSummaryResponse(s)
	return &out, nil
}

// MarkRead marca una señal como leída.
func (uc *SignalsUseCase) MarkRead(ctx context.Context, companyID, id string) (*dto.SignalResponse, error) {
	return uc.setFlags(ctx, companyID, id, func(s *entity.Signal) {
		s.IsRead = true
	})
}

// Dismiss descarta una señal (y la marca leída). La condición no reaparece en los
// siguientes refresh mientras no se restaure.
func (uc *SignalsUseCase) Dismiss(ctx context.Context, companyID, id string) (*dto.SignalResponse, error) {
	return uc.setFlags(ctx, companyID, id, func(s *entity.Signal) {
		s.IsDismissed = true
		s.IsRead = true
	})
}

// Restore revierte un descarte; la señal vuelve a contarse y el próximo refresh la reemplaza.
func (uc *SignalsUseCase) Restore(ctx context.Context, companyID, id string) (*dto.SignalResponse, error) {
	return uc.setFlags(ctx, companyID, id, func(s *entity.Signal) {
		s.IsDismissed = false
	})
}

// DismissAll elimina todas las señales no descartadas sin regenerarlas.
func (uc *SignalsUseCase) DismissAll(ctx context.Context, companyID string) (int, error) {
	var n int
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		n, err = r.Signals.DeleteActive(ctx, companyID)
		return err
	})
	return n, err
}

func (uc *SignalsUseCase) setFlags(ctx context.Context, companyID, id string, apply func(*entity.Signal)) (*dto.SignalResponse, error) {
	var out *entity.Signal
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		s, err := r.Signals.GetByID(ctx, companyID, id)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		apply(s)
		if err := r.Signals.SetFlags(ctx, companyID, id, s.IsRead, s.IsDismissed); err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := toSignalResponse(out)
	return &resp, nil
}

// repoSource adapta los repositorios de la transacción a la lectura que piden las reglas.
type repoSource struct {
	r ports.Repos
}

func (s repoSource) UnpaidInvoices(ctx context.Context, companyID string) ([]*entity.Invoice, error) {
	return s.r.Invoices.ListUnpaid(ctx, companyID)
}

func (s repoSource) TrackedProducts(ctx context.Context, companyID string) ([]*entity.Product, error) {
	return s.r.Products.ListTracked(ctx, companyID)
}

func (s repoSource) OnHandByProduct(ctx context.Context, companyID string) (map[string]decimal.Decimal, error) {
	return s.r.Movements.OnHandByProduct(ctx, companyID)
}

func (s repoSource) OpenDeals(ctx context.Context, companyID string) ([]*entity.Deal, error) {
	return s.r.Deals.ListOpen(ctx, companyID)
}

func (s repoSource) PurchaseOrdersAwaitingDelivery(ctx context.Context, companyID string) ([]*entity.PurchaseOrder, error) {
	return s.r.PurchaseOrders.ListAwaitingDelivery(ctx, companyID)
}

func (s repoSource) AccountsInStage(ctx context.Context, companyID, stage string) ([]*entity.Account, error) {
	return s.r.Accounts.ListByPipelineStage(ctx, companyID, stage)
}

func toSignalResponse(s *entity.Signal) dto.SignalResponse {
	return dto.SignalResponse{
		ID:          s.ID,
		Type:        s.Type,
		Severity:    s.Severity,
		EntityType:  s.EntityType,
		EntityID:    s.EntityID,
		Title:       s.Title,
		Body:        s.Body,
		IsRead:      s.IsRead,
		IsDismissed: s.IsDismissed,
		CreatedAt:   s.CreatedAt,
	}
}

func toSummaryResponse(s entity.SignalSummary) dto.SignalSummaryResponse {
	return dto.SignalSummaryResponse{
		Total:    s.Total,
		Critical: s.Critical,
		Warning:  s.Warning,
		Info:     s.Info,
		Unread:   s.Unread,
	}
}
