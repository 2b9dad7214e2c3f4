package provisioning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/storekit/pkg/identity"
	"github.com/dmitrymomot/storekit/pkg/logger"
	"github.com/dmitrymomot/storekit/pkg/pg"
	"github.com/dmitrymomot/storekit/pkg/schema"
	"github.com/dmitrymomot/storekit/pkg/secrets"
	"github.com/dmitrymomot/storekit/pkg/tenant"
	"github.com/dmitrymomot/storekit/pkg/validator"
)

// TxBeginner starts transactions. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// OwnerRegistrar creates the owner account inside the provisioning transaction.
type OwnerRegistrar interface {
	RegisterOwner(ctx context.Context, tx identity.Execer, p identity.OwnerParams) (*identity.Owner, error)
}

// RouteRegistrar makes a new store reachable by hostname.
type RouteRegistrar interface {
	Register(ctx context.Context, subdomain string) error
}

// Welcome is the data handed to a Notifier after a store is created.
type Welcome struct {
	TenantID          uuid.UUID
	Subdomain         string
	StoreName         string
	OwnerEmail        string
	VerificationToken string
}

// Notifier greets the owner of a new store.
type Notifier interface {
	Welcome(ctx context.Context, w Welcome) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, w Welcome) error

func (f NotifierFunc) Welcome(ctx context.Context, w Welcome) error { return f(ctx, w) }

// Request is a signup for a new store.
type Request struct {
	Subdomain     string      `json:"subdomain"`
	Name          string      `json:"name"`
	Plan          tenant.Plan `json:"plan"`
	OwnerEmail    string      `json:"owner_email"`
	OwnerPassword string      `json:"owner_password"`
}

func (r Request) normalized() Request {
	r.Subdomain = strings.ToLower(strings.TrimSpace(r.Subdomain))
	r.Name = strings.TrimSpace(r.Name)
	r.OwnerEmail = strings.TrimSpace(r.OwnerEmail)
	if r.Plan == "" {
		r.Plan = tenant.PlanBasic
	}
	return r
}

// Result describes a committed store.
type Result struct {
	Tenant *tenant.Tenant
	Schema schema.Name
	Owner  *identity.Owner
}

var subdomainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$`)

var plans = []tenant.Plan{tenant.PlanBasic, tenant.PlanPro, tenant.PlanEnterprise}

// Service creates stores: a directory row, an isolated schema and an owner,
// committed together or not at all.
type Service struct {
	db       TxBeginner
	owners   OwnerRegistrar
	box      *secrets.Box
	routes   RouteRegistrar
	notifier Notifier
	logger   *slog.Logger
	cfg      Config
	hooks    []func(outcome string, d time.Duration)
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithConfig replaces the default settings. Zero durations keep their defaults.
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		if cfg.Timeout > 0 {
			s.cfg.Timeout = cfg.Timeout
		}
		if cfg.LockTimeout > 0 {
			s.cfg.LockTimeout = cfg.LockTimeout
		}
		if cfg.DefaultCurrency != "" {
			s.cfg.DefaultCurrency = cfg.DefaultCurrency
		}
		if cfg.ReservedSubdomains != nil {
			s.cfg.ReservedSubdomains = cfg.ReservedSubdomains
		}
	}
}

// WithRouteRegistrar sets the post-commit route registration.
func WithRouteRegistrar(r RouteRegistrar) Option {
	return func(s *Service) {
		if r != nil {
			s.routes = r
		}
	}
}

// WithNotifier sets the post-commit welcome notification.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOutcomeHook registers a callback run after every Provision call.
func WithOutcomeHook(fn func(outcome string, d time.Duration)) Option {
	return func(s *Service) {
		if fn != nil {
			s.hooks = append(s.hooks, fn)
		}
	}
}

// New creates a provisioning service.
func New(db TxBeginner, owners OwnerRegistrar, box *secrets.Box, opts ...Option) *Service {
	s := &Service{
		db:     db,
		owners: owners,
		box:    box,
		logger: slog.New(slog.DiscardHandler),
		cfg:    DefaultConfig(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("provisioning"))
	return s
}

// Provision validates req and creates the store in one transaction. The
// transaction is detached from ctx cancellation and bounded by the configured
// timeout instead, so it always ends in commit or rollback. Route registration
// and the welcome notification run after commit and never fail the call.
func (s *Service) Provision(ctx context.Context, req Request) (*Result, error) {
	start := s.now()
	req = req.normalized()

	res, err := s.provision(ctx, req)
	outcome := OutcomeOf(err)
	for _, h := range s.hooks {
		h(outcome, s.now().Sub(start))
	}

	if err != nil {
		level := slog.LevelWarn
		if outcome == OutcomeFailed {
			level = slog.LevelError
		}
		s.logger.Log(ctx, level, "provisioning rejected",
			logger.Subdomain(req.Subdomain),
			logger.Reason(outcome),
			logger.Error(err),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "store provisioned",
		logger.TenantID(res.Tenant.ID),
		logger.Subdomain(res.Tenant.Subdomain),
		logger.Schema(res.Schema.String()),
		logger.Duration(s.now().Sub(start)),
	)
	return res, nil
}

func (s *Service) provision(ctx context.Context, req Request) (*Result, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Timeout)
	defer cancel()

	res, err := s.commit(ctx, req)
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, res)
	return res, nil
}

// Validate checks a request without touching the database.
func (s *Service) Validate(req Request) error {
	req = req.normalized()
	err := validator.Apply(
		validator.Required("subdomain", req.Subdomain),
		validator.MinLen("subdomain", req.Subdomain, 3),
		validator.MaxLen("subdomain", req.Subdomain, 63),
		validator.Matches("subdomain", req.Subdomain, subdomainPattern, "must contain only lowercase letters, digits and inner hyphens"),
		validator.NotOneOf("subdomain", req.Subdomain, s.cfg.ReservedSubdomains, "is reserved"),
		validator.Required("name", req.Name),
		validator.MaxLen("name", req.Name, 120),
		validator.OneOf("plan", req.Plan, plans),
		validator.ValidEmail("owner_email", req.OwnerEmail),
		validator.MinLen("owner_password", req.OwnerPassword, identity.MinPasswordLength),
		validator.MaxBytes("owner_password", req.OwnerPassword, identity.MaxPasswordBytes),
	)
	if err != nil {
		return errors.Join(ErrInvalidRequest, err)
	}
	return nil
}

func (s *Service) commit(ctx context.Context, req Request) (_ *Result, err error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Join(ErrProvisioningFailed, err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.ErrorContext(ctx, "rollback failed", logger.Subdomain(req.Subdomain), logger.Error(rbErr))
		}
	}()

	if err := s.lock(ctx, tx, req.Subdomain); err != nil {
		return nil, err
	}

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM public.tenants WHERE subdomain = $1)`,
		req.Subdomain,
	).Scan(&exists); err != nil {
		return nil, classify(err, "check subdomain")
	}
	if exists {
		return nil, ErrSubdomainTaken
	}

	t := &tenant.Tenant{
		ID:        uuid.New(),
		Subdomain: req.Subdomain,
		Name:      req.Name,
		Plan:      req.Plan,
		Status:    tenant.StatusProvisioning,
		CreatedAt: s.now().UTC(),
	}

	contact, err := s.box.Seal(t.ID, []byte(strings.ToLower(req.OwnerEmail)))
	if err != nil {
		return nil, errors.Join(ErrProvisioningFailed, err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO public.tenants (id, subdomain, name, plan, status, owner_contact, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		t.ID, t.Subdomain, t.Name, string(t.Plan), string(t.Status), contact, t.CreatedAt,
	); err != nil {
		return nil, classify(err, "insert tenant")
	}

	name := schema.FromTenantID(t.ID)
	if err := createSchema(ctx, tx, name); err != nil {
		return nil, classify(err, "create schema")
	}
	if err := seedSettings(ctx, tx, name, s.defaultSettings(req)); err != nil {
		return nil, classify(err, "seed")
	}

	owner, err := s.owners.RegisterOwner(ctx, tx, identity.OwnerParams{
		TenantID: t.ID,
		Email:    req.OwnerEmail,
		Password: req.OwnerPassword,
	})
	if err != nil {
		return nil, errors.Join(ErrProvisioningFailed, fmt.Errorf("register owner: %w", err))
	}

	next, err := tenant.NextStatus(ctx, t.Status, tenant.EventActivate)
	if err != nil {
		return nil, errors.Join(ErrProvisioningFailed, err)
	}
	if err := tenant.NewStore(tx).UpdateStatus(ctx, t.ID, t.Status, next); err != nil {
		return nil, classify(err, "activate")
	}
	t.Status = next

	if err := tx.Commit(ctx); err != nil {
		return nil, classify(err, "commit")
	}

	return &Result{Tenant: t, Schema: name, Owner: owner}, nil
}

func (s *Service) lock(ctx context.Context, tx pgx.Tx, subdomain string) error {
	timeout := fmt.Sprintf("%dms", s.cfg.LockTimeout.Milliseconds())
	if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, timeout); err != nil {
		return classify(err, "set lock timeout")
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(LockKey(subdomain))); err != nil {
		return classify(err, "advisory lock")
	}
	return nil
}

func (s *Service) defaultSettings(req Request) [][2]string {
	return [][2]string{
		{"store_name", req.Name},
		{"currency", s.cfg.DefaultCurrency},
		{"contact_email", strings.ToLower(req.OwnerEmail)},
		{"theme", "default"},
	}
}

func (s *Service) afterCommit(ctx context.Context, res *Result) {
	log := s.logger.With(logger.TenantID(res.Tenant.ID), logger.Subdomain(res.Tenant.Subdomain))

	if s.routes != nil {
		if err := s.routes.Register(ctx, res.Tenant.Subdomain); err != nil {
			log.WarnContext(ctx, "route registration failed", logger.Error(err))
		}
	}

	if s.notifier != nil && res.Owner != nil {
		err := s.notifier.Welcome(ctx, Welcome{
			TenantID:          res.Tenant.ID,
			Subdomain:         res.Tenant.Subdomain,
			StoreName:         res.Tenant.Name,
			OwnerEmail:        res.Owner.Email,
			VerificationToken: res.Owner.VerificationToken,
		})
		if err != nil {
			log.WarnContext(ctx, "welcome notification failed", logger.Error(err))
		}
	}
}

func classify(err error, step string) error {
	switch {
	case pg.IsDuplicateKeyError(err):
		return ErrSubdomainTaken
	case pg.IsLockTimeoutError(err):
		return errors.Join(ErrLockTimeout, err)
	default:
		return errors.Join(ErrProvisioningFailed, fmt.Errorf("%s: %w", step, err))
	}
}
