// Package auth authorizes subjects against an ACL read by casbin.
package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Authorizer enforces an ACL loaded from a casbin model/policy pair.
type Authorizer struct {
	enforcer *casbin.Enforcer
}

// New loads the model and policy files at the given paths into a fresh
// casbin enforcer.
func New(model, policy string) (*Authorizer, error) {
	enforcer, err := casbin.NewEnforcer(model, policy)
	if err != nil {
		return nil, err
	}
	return &Authorizer{enforcer: enforcer}, nil
}

// Authorize reports a PermissionDenied status error if subject is not
// permitted to perform action on object.
func (a *Authorizer) Authorize(subject, object, action string) error {
	ok, err := a.enforcer.Enforce(subject, object, action)
	if err != nil {
		return status.New(codes.Internal, err.Error()).Err()
	}

	if !ok {
		msg := fmt.Sprintf(
			"%s not permitted to %s to %s",
			subject,
			action,
			object,
		)
		return status.New(codes.PermissionDenied, msg).Err()
	}

	return nil
}
