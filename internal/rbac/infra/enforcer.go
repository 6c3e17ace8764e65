package infra

import "github.com/casbin/casbin/v2"

// NewEnforcer builds a casbin enforcer from the model file. Policies
// are loaded per company by the rbac service, not here.
func NewEnforcer(modelPath string) (*casbin.Enforcer, error) {
	return casbin.NewEnforcer(modelPath)
}
