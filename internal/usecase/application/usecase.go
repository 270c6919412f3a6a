package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"civic-backoffice/internal/domain/access"
	"civic-backoffice/internal/domain/actor"
	appDomain "civic-backoffice/internal/domain/application"
	auditDomain "civic-backoffice/internal/domain/audit"
	propertyDomain "civic-backoffice/internal/domain/property"
	"civic-backoffice/internal/domain/uow"
	"civic-backoffice/internal/domain/ward"
	"civic-backoffice/internal/infrastructure/logging"
	"civic-backoffice/internal/infrastructure/metrics"
	"civic-backoffice/internal/usecase/identifier"
	"civic-backoffice/pkg/id"
)

// Usecase is the only writer of application status.
type Usecase struct {
	repo    appDomain.Repository
	uow     uow.UnitOfWork
	alloc   *identifier.Allocator
	audit   auditDomain.Sink
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewUsecase(repo appDomain.Repository, tx uow.UnitOfWork, alloc *identifier.Allocator, sink auditDomain.Sink, m *metrics.Metrics) *Usecase {
	if sink == nil {
		sink = auditDomain.NopSink{}
	}
	if alloc == nil {
		alloc = identifier.NewAllocator(identifier.DefaultPrefix, identifier.DefaultWidth, m)
	}
	return &Usecase{
		repo:    repo,
		uow:     tx,
		alloc:   alloc,
		audit:   sink,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (u *Usecase) Create(ctx context.Context, who actor.Actor, in CreateInput) (*appDomain.Application, error) {
	who = actor.OrSystem(who)
	in.WardCode = strings.TrimSpace(in.WardCode)
	if err := validateCreate(in); err != nil {
		u.metrics.Transition(string(appDomain.ActionCreate), outcome(err))
		return nil, err
	}

	attr := actor.Resolve(who)
	a := &appDomain.Application{
		ApplicationNo: id.NewApplicationNo(u.now()),
		Status:        appDomain.StatusDraft,
		CreatedBy:     who.Key(),
		CreatedByID:   attr.ActorID,
		CreatedByRole: attr.ActorRole,
		ApplicantRef:  strings.TrimSpace(in.ApplicantRef),
		Payload:       in.Payload,
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		w, err := resolveWard(ctx, r, in.WardCode)
		if err != nil {
			return err
		}
		a.WardID, a.WardCode = w.ID, w.Code
		return r.Applications.Create(ctx, a)
	})
	u.metrics.Transition(string(appDomain.ActionCreate), outcome(err))
	if err != nil {
		return nil, err
	}

	u.audit.Record(ctx, auditDomain.Event{
		Actor:       who,
		Action:      auditDomain.ActionCreate,
		EntityKind:  auditDomain.EntityPropertyApplication,
		EntityID:    a.ApplicationNo,
		After:       a.Snapshot(),
		Description: fmt.Sprintf("Application %s created in ward %s", a.ApplicationNo, a.WardCode),
	})
	logging.FromContext(ctx).WithField("application_no", a.ApplicationNo).Info("application created")
	return a, nil
}

func (u *Usecase) Get(ctx context.Context, who actor.Actor, applicationNo string) (*appDomain.Application, error) {
	a, err := u.repo.GetByApplicationNo(ctx, applicationNo, access.For(who))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (u *Usecase) List(ctx context.Context, who actor.Actor, f appDomain.Filter) (*Page, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, appDomain.Invalid("status", "is not a known application status")
	}
	f = f.Normalize()
	items, total, err := u.repo.List(ctx, f, access.For(who))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []appDomain.Application{}
	}
	return &Page{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize}, nil
}

func (u *Usecase) Update(ctx context.Context, who actor.Actor, applicationNo string, in appDomain.UpdateInput) (*appDomain.Application, error) {
	if err := validateUpdate(in); err != nil {
		u.metrics.Transition(string(appDomain.ActionUpdate), outcome(err))
		return nil, err
	}
	return u.run(ctx, who, applicationNo, step{
		action:  appDomain.ActionUpdate,
		audit:   auditDomain.ActionUpdate,
		allowed: ownerOrAdmin,
		apply: func(ctx context.Context, r uow.Repos, a *appDomain.Application) error {
			if in.WardCode != nil {
				w, err := resolveWard(ctx, r, strings.TrimSpace(*in.WardCode))
				if err != nil {
					return err
				}
				a.WardID, a.WardCode = w.ID, w.Code
			}
			in.ApplyTo(a)
			return nil
		},
		describe: func(a *appDomain.Application) string {
			return fmt.Sprintf("Application %s updated", a.ApplicationNo)
		},
	})
}

func (u *Usecase) Submit(ctx context.Context, who actor.Actor, applicationNo string) (*appDomain.Application, error) {
	return u.run(ctx, who, applicationNo, step{
		action:  appDomain.ActionSubmit,
		audit:   auditDomain.ActionSubmit,
		allowed: ownerOrAdmin,
		apply: func(_ context.Context, _ uow.Repos, a *appDomain.Application) error {
			now := u.now()
			a.SubmittedAt = &now
			return nil
		},
		describe: func(a *appDomain.Application) string {
			return fmt.Sprintf("Application %s submitted", a.ApplicationNo)
		},
	})
}

func (u *Usecase) StartInspection(ctx context.Context, who actor.Actor, applicationNo string) (*appDomain.Application, error) {
	return u.run(ctx, who, applicationNo, step{
		action:  appDomain.ActionStartInspection,
		audit:   auditDomain.ActionStartInspection,
		allowed: reviewer,
		apply: func(_ context.Context, _ uow.Repos, a *appDomain.Application) error {
			u.stampInspector(a, who)
			return nil
		},
		describe: func(a *appDomain.Application) string {
			return fmt.Sprintf("Inspection started for application %s", a.ApplicationNo)
		},
	})
}

// Approve allocates the property code, registers the property and flips the
// status in one transaction.
func (u *Usecase) Approve(ctx context.Context, who actor.Actor, applicationNo, remarks string) (*appDomain.Application, error) {
	var alloc *identifier.Allocation
	return u.run(ctx, who, applicationNo, step{
		action:  appDomain.ActionApprove,
		audit:   auditDomain.ActionApprove,
		allowed: reviewer,
		apply: func(ctx context.Context, r uow.Repos, a *appDomain.Application) error {
			var err error
			alloc, err = u.alloc.Allocate(ctx, r, a.WardCode, propertyDomain.TypeTag(a.PropertyType))
			if err != nil {
				return err
			}
			p := &propertyDomain.Property{
				PropertyCode:  alloc.Code,
				WardID:        alloc.Ward.ID,
				WardCode:      alloc.Ward.Code,
				Sequence:      alloc.Sequence,
				TypeTag:       propertyDomain.TypeTag(a.PropertyType),
				ApplicationID: a.ID,
				Payload:       a.Payload,
			}
			if err := r.Properties.Create(ctx, p); err != nil {
				return fmt.Errorf("register property %s: %w", alloc.Code, err)
			}
			a.PropertyID = &p.ID
			a.PropertyCode = p.PropertyCode
			if s := strings.TrimSpace(remarks); s != "" {
				a.DecisionRemarks = s
			}
			u.stampInspector(a, who)
			return nil
		},
		describe: func(a *appDomain.Application) string {
			return fmt.Sprintf("Application %s approved, property %s registered", a.ApplicationNo, a.PropertyCode)
		},
		metadata: func(a *appDomain.Application) map[string]any {
			return map[string]any{"property_code": a.PropertyCode, "sequence": alloc.Sequence}
		},
	})
}

func (u *Usecase) Reject(ctx context.Context, who actor.Actor, applicationNo, reason string) (*appDomain.Application, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		err := appDomain.Invalid("reason", "is required")
		u.metrics.Transition(string(appDomain.ActionReject), outcome(err))
		return nil, err
	}
	return u.run(ctx, who, applicationNo, step{
		action:  appDomain.ActionReject,
		audit:   auditDomain.ActionReject,
		allowed: reviewer,
		apply: func(_ context.Context, _ uow.Repos, a *appDomain.Application) error {
			a.RejectionReason = reason
			u.stampInspector(a, who)
			return nil
		},
		describe: func(a *appDomain.Application) string {
			return fmt.Sprintf("Application %s rejected: %s", a.ApplicationNo, reason)
		},
	})
}

func (u *Usecase) Return(ctx context.Context, who actor.Actor, applicationNo, remarks string) (*appDomain.Application, error) {
	remarks = strings.TrimSpace(remarks)
	if remarks == "" {
		err := appDomain.Invalid("remarks", "is required")
		u.metrics.Transition(string(appDomain.ActionReturn), outcome(err))
		return nil, err
	}
	return u.run(ctx, who, applicationNo, step{
		action:  appDomain.ActionReturn,
		audit:   auditDomain.ActionReturn,
		allowed: reviewer,
		apply: func(_ context.Context, _ uow.Repos, a *appDomain.Application) error {
			a.DecisionRemarks = remarks
			u.stampInspector(a, who)
			return nil
		},
		describe: func(a *appDomain.Application) string {
			return fmt.Sprintf("Application %s returned for corrections: %s", a.ApplicationNo, remarks)
		},
	})
}

func (u *Usecase) Delete(ctx context.Context, who actor.Actor, applicationNo string) error {
	_, err := u.run(ctx, who, applicationNo, step{
		action:  appDomain.ActionDelete,
		audit:   auditDomain.ActionDelete,
		allowed: ownerOrAdmin,
		remove:  true,
		describe: func(a *appDomain.Application) string {
			return fmt.Sprintf("Application %s deleted", a.ApplicationNo)
		},
	})
	return err
}

// step describes one guarded mutation of a locked application.
type step struct {
	action   appDomain.Action
	audit    auditDomain.Action
	allowed  func(who actor.Actor, a *appDomain.Application) bool
	apply    func(ctx context.Context, r uow.Repos, a *appDomain.Application) error
	remove   bool
	describe func(a *appDomain.Application) string
	metadata func(a *appDomain.Application) map[string]any
}

func (u *Usecase) run(ctx context.Context, who actor.Actor, applicationNo string, s step) (*appDomain.Application, error) {
	who = actor.OrSystem(who)
	var (
		before, after map[string]any
		result        *appDomain.Application
		from          appDomain.Status
	)
	err := u.uow.WithinApplicationTx(ctx, applicationNo, access.For(who), func(r uow.Repos, a *appDomain.Application) error {
		if !s.allowed(who, a) {
			return appDomain.ErrForbidden
		}
		if err := appDomain.CheckTransition(s.action, a.Status); err != nil {
			return err
		}
		from = a.Status
		before = a.Snapshot()

		if s.remove {
			return r.Applications.Delete(ctx, a)
		}
		if s.apply != nil {
			if err := s.apply(ctx, r, a); err != nil {
				return err
			}
		}
		if to, ok := appDomain.Target(s.action); ok {
			a.Status = to
		}
		if err := a.CheckInvariants(); err != nil {
			return err
		}
		if err := r.Applications.Save(ctx, a); err != nil {
			return err
		}
		after = a.Snapshot()
		result = a
		return nil
	})
	err = notFound(err)
	u.metrics.Transition(string(s.action), outcome(err))
	if err != nil {
		logging.FromContext(ctx).WithError(err).WithFields(logrus.Fields{
			"application_no": applicationNo,
			"action":         string(s.action),
		}).Debug("workflow action refused")
		return nil, err
	}

	// committed; audit must not change the outcome
	subject := result
	if subject == nil {
		subject = &appDomain.Application{ApplicationNo: applicationNo}
	}
	meta := map[string]any{"from": string(from)}
	if result != nil {
		meta["to"] = string(result.Status)
	}
	if s.metadata != nil {
		for k, v := range s.metadata(subject) {
			meta[k] = v
		}
	}
	u.audit.Record(ctx, auditDomain.Event{
		Actor:       who,
		Action:      s.audit,
		EntityKind:  auditDomain.EntityPropertyApplication,
		EntityID:    applicationNo,
		Before:      before,
		After:       after,
		Description: s.describe(subject),
		Metadata:    meta,
	})
	return result, nil
}

func (u *Usecase) stampInspector(a *appDomain.Application, who actor.Actor) {
	now := u.now()
	a.InspectedBy = who.Key()
	a.InspectedAt = &now
}

func ownerOrAdmin(who actor.Actor, a *appDomain.Application) bool {
	return access.CanModify(who, a.CreatedBy)
}

func reviewer(who actor.Actor, _ *appDomain.Application) bool {
	return access.CanInspect(who)
}

func resolveWard(ctx context.Context, r uow.Repos, code string) (*ward.Ward, error) {
	w, err := r.Wards.GetByCode(ctx, code)
	if errors.Is(err, ward.ErrUnknownScope) {
		return nil, appDomain.Invalid("ward_code", fmt.Sprintf("%q does not resolve to an active ward", code))
	}
	return w, err
}

func validateCreate(in CreateInput) error {
	switch {
	case in.WardCode == "":
		return appDomain.Invalid("ward_code", "is required")
	case strings.TrimSpace(in.Payload.OwnerName) == "":
		return appDomain.Invalid("owner_name", "is required")
	case strings.TrimSpace(in.Payload.Address) == "":
		return appDomain.Invalid("address", "is required")
	case strings.TrimSpace(in.Payload.PropertyType) == "":
		return appDomain.Invalid("property_type", "is required")
	}
	return validateMeasures(in.Payload.PlotAreaSqFt, in.Payload.BuiltUpAreaSqFt, in.Payload.Floors)
}

func validateUpdate(in appDomain.UpdateInput) error {
	if in.Empty() {
		return appDomain.Invalid("body", "has no fields to update")
	}
	required := []struct {
		field string
		v     *string
	}{
		{"ward_code", in.WardCode},
		{"owner_name", in.OwnerName},
		{"address", in.Address},
		{"property_type", in.PropertyType},
	}
	for _, r := range required {
		if r.v != nil && strings.TrimSpace(*r.v) == "" {
			return appDomain.Invalid(r.field, "must not be blank")
		}
	}
	var plot, built float64
	var floors int
	if in.PlotAreaSqFt != nil {
		plot = *in.PlotAreaSqFt
	}
	if in.BuiltUpAreaSqFt != nil {
		built = *in.BuiltUpAreaSqFt
	}
	if in.Floors != nil {
		floors = *in.Floors
	}
	return validateMeasures(plot, built, floors)
}

func validateMeasures(plot, built float64, floors int) error {
	switch {
	case plot < 0:
		return appDomain.Invalid("plot_area_sqft", "must not be negative")
	case built < 0:
		return appDomain.Invalid("built_up_area_sqft", "must not be negative")
	case floors < 0:
		return appDomain.Invalid("floors", "must not be negative")
	}
	return nil
}

// notFound folds missing and invisible rows into one error.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return appDomain.ErrNotFound
	}
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case appDomain.IsValidation(err), errors.Is(err, ward.ErrUnknownScope):
		return "invalid"
	case appDomain.IsTransition(err):
		return "conflict"
	case errors.Is(err, appDomain.ErrNotFound):
		return "not_found"
	case errors.Is(err, appDomain.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
