package authz

import (
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:embed model.conf
var modelText string

var Module = fx.Module("authz",
	fx.Provide(NewGate),
)

// Gate answers permission checks against the static matrix. Policies are
// seeded once from the table at construction and never mutated afterwards, so
// the gate is safe for unsynchronized concurrent reads.
type Gate struct {
	enforcer *casbin.SyncedEnforcer
	log      *zap.Logger
}

func NewGate(log *zap.Logger) (*Gate, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, err
	}
	for perm, roles := range permissionTable {
		for _, role := range roles {
			if _, err := enforcer.AddPolicy(string(role), perm); err != nil {
				return nil, err
			}
		}
	}
	return &Gate{
		enforcer: enforcer,
		log:      log.Named("authz.gate"),
	}, nil
}

// Authorize reports whether role holds permission. Unknown permissions and
// unknown roles are denied; enforcement errors are denied and logged, never
// surfaced as an allow.
func (g *Gate) Authorize(permission string, role Role) bool {
	permission = strings.TrimSpace(permission)
	if permission == "" || !role.Valid() {
		return false
	}
	allowed, err := g.enforcer.Enforce(string(role), permission)
	if err != nil {
		g.log.Error("enforce failed, denying",
			zap.String("permission", permission),
			zap.String("role", string(role)),
			zap.Error(err),
		)
		return false
	}
	return allowed
}
