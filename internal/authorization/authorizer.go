// Package authorization maps profiles onto casbin roles and checks
// permissions. Policies live in the casbin_rule table through gorm-adapter so
// every instance enforces the same rules.
package authorization

import (
	"context"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/railzwaylabs/pricecalc/internal/apperror"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	RoleAdmin = "role:admin"
	RoleSales = "role:sales"
)

const (
	ObjectCatalog = "catalog"
	ObjectImport  = "catalog_import"
	ObjectRefresh = "pricing_refresh"
	ObjectQuote   = "quote"
)

const (
	ActionRead    = "read"
	ActionWrite   = "write"
	ActionTrigger = "trigger"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

var defaultPolicies = [][]string{
	{RoleSales, ObjectCatalog, ActionRead},
	{RoleSales, ObjectQuote, ActionRead},
	{RoleSales, ObjectQuote, ActionWrite},
	{RoleSales, ObjectRefresh, ActionTrigger},
	{RoleAdmin, ObjectImport, ActionRead},
	{RoleAdmin, ObjectImport, ActionWrite},
}

type Authorizer interface {
	// SyncRoles assigns exactly one role to subject based on the admin flag.
	SyncRoles(ctx context.Context, subject string, admin bool) error
	Authorize(ctx context.Context, subject, object, action string) error
}

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type casbinAuthorizer struct {
	enforcer *casbin.SyncedEnforcer
	log      *zap.Logger
}

func New(p Params) (Authorizer, error) {
	adapter, err := gormadapter.NewAdapterByDB(p.DB)
	if err != nil {
		return nil, fmt.Errorf("create casbin adapter: %w", err)
	}
	return NewWithAdapter(adapter, p.Log)
}

// NewWithAdapter builds the enforcer and makes sure the default policies exist.
func NewWithAdapter(adapter *gormadapter.Adapter, log *zap.Logger) (Authorizer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load casbin policy: %w", err)
	}

	for _, rule := range defaultPolicies {
		if _, err := enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
			return nil, fmt.Errorf("seed casbin policy: %w", err)
		}
	}
	// admins can do everything sales can
	if _, err := enforcer.AddGroupingPolicy(RoleAdmin, RoleSales); err != nil {
		return nil, fmt.Errorf("seed casbin role hierarchy: %w", err)
	}

	return &casbinAuthorizer{
		enforcer: enforcer,
		log:      log.Named("authorization"),
	}, nil
}

func (a *casbinAuthorizer) SyncRoles(_ context.Context, subject string, admin bool) error {
	want := RoleSales
	if admin {
		want = RoleAdmin
	}

	roles, err := a.enforcer.GetRolesForUser(subject)
	if err != nil {
		return apperror.Wrap(apperror.ErrStore, err)
	}
	if len(roles) == 1 && roles[0] == want {
		return nil
	}

	if len(roles) > 0 {
		if _, err := a.enforcer.DeleteRolesForUser(subject); err != nil {
			return apperror.Wrap(apperror.ErrStore, err)
		}
	}
	if _, err := a.enforcer.AddRoleForUser(subject, want); err != nil {
		return apperror.Wrap(apperror.ErrStore, err)
	}
	a.log.Info("role assigned", zap.String("subject", subject), zap.String("role", want))
	return nil
}

func (a *casbinAuthorizer) Authorize(_ context.Context, subject, object, action string) error {
	ok, err := a.enforcer.Enforce(subject, object, action)
	if err != nil {
		return apperror.Wrap(apperror.ErrInternal, err)
	}
	if !ok {
		return apperror.WithMessage(apperror.ErrForbidden, "%s on %s is not allowed", action, object)
	}
	return nil
}
