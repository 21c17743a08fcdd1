package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/Company-KERL/Kerl-backend/common/errors"
	"github.com/Company-KERL/Kerl-backend/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// abort hands err to the error middleware and stops the chain.
func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// bindJSON decodes the body into dst, aborting with a 400 carrying message
// when it is malformed or fails validation.
func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abort(c, apperrors.New(http.StatusBadRequest, message, bindCause(err)))
		return false
	}
	return true
}

// bindCause condenses validation failures to "field(tag)" pairs for the
// request log.
func bindCause(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s(%s)", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid fields: %s", strings.Join(fields, ", "))
}

// sessionUser returns the authenticated user. A claimed id, taken from the
// path or body, must match the session when present.
func sessionUser(c *gin.Context, claimed string) (primitive.ObjectID, bool) {
	id, err := middleware.GetUserID(c)
	if err != nil {
		abort(c, apperrors.ErrUnauthorized)
		return primitive.NilObjectID, false
	}
	if claimed != "" && claimed != id {
		abort(c, apperrors.ErrUnauthorized)
		return primitive.NilObjectID, false
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		abort(c, apperrors.ErrInvalidToken)
		return primitive.NilObjectID, false
	}
	return oid, true
}
