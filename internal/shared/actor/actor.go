// Package actor converts the authenticated HTTP identity into a workflow actor.
package actor

import (
	"net/http"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/domain"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidID = "invalid id"

// FromIdentity maps token roles onto workflow roles, dropping unknown ones.
func FromIdentity(id httpkit.Identity) domain.Actor {
	return domain.Actor{
		ID:          id.UserID(),
		GlobalRoles: domain.RolesFromStrings(id.Roles()),
	}
}

// Must returns the caller as an actor, aborting with 401 when unauthenticated.
func Must(c *gin.Context) (domain.Actor, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return domain.Actor{}, false
	}
	return FromIdentity(id), true
}

// ParamUUID parses a path parameter, writing a 400 response when malformed.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, name)
		return uuid.Nil, false
	}
	return id, true
}
