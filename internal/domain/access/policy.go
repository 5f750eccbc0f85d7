// Package access holds the authorization predicates that gate every mutation.
//
// A request carries a Caller. A mutation names its Target, a closed set of
// ownership shapes, and Authorize decides with a type switch instead of
// inspecting the entity for owner-like fields.
package access

import (
	"github.com/devask/devask-hub/internal/domain/shared"
)

// Caller is the resolved identity of the requester. The zero value is an
// anonymous caller.
type Caller struct {
	ProfileID string
	IsAdmin   bool
}

// Anonymous is the caller of an unauthenticated request.
var Anonymous = Caller{}

// IsAuthenticated reports whether the caller has an identity.
func (c Caller) IsAuthenticated() bool {
	return c.ProfileID != ""
}

// Ownable is implemented by every entity owned by a profile. Questions and
// credentials resolve through their profile field, answers and articles
// through their author.
type Ownable interface {
	OwnerID() string
}

// Target is what a mutation is authorized against.
type Target interface {
	target()
}

// Owned restricts a mutation to the owner of Entity.
type Owned struct {
	Entity Ownable
}

// QuestionOwned restricts answer acceptance to the owner of the parent
// question. The answer's own author has no say.
type QuestionOwned struct {
	Question Ownable
}

// AdminOnly restricts a mutation to administrators.
type AdminOnly struct{}

func (Owned) target()         {}
func (QuestionOwned) target() {}
func (AdminOnly) target()     {}

// RequireAuthenticated rejects anonymous callers.
func RequireAuthenticated(c Caller) error {
	if !c.IsAuthenticated() {
		return shared.ErrAuthRequired
	}
	return nil
}

// Authorize checks the caller against the target. Anonymous callers get
// Unauthorized, authenticated callers without the right get Forbidden.
func Authorize(c Caller, t Target) error {
	if err := RequireAuthenticated(c); err != nil {
		return err
	}

	switch t := t.(type) {
	case Owned:
		if t.Entity == nil || t.Entity.OwnerID() != c.ProfileID {
			return shared.ErrNotOwner
		}
		return nil

	case QuestionOwned:
		if t.Question == nil || t.Question.OwnerID() != c.ProfileID {
			return shared.ErrNotOwner
		}
		return nil

	case AdminOnly:
		if !c.IsAdmin {
			return shared.ErrAdminRequired
		}
		return nil
	}
	return shared.ErrNotOwner
}
