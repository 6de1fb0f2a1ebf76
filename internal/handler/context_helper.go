package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-enrollment-api/internal/middleware"
	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// sectionKeyFromPath reads :courseCode and :sectionNumber.
func sectionKeyFromPath(c *gin.Context) (models.SectionKey, error) {
	courseCode := strings.TrimSpace(c.Param("courseCode"))
	sectionNumber, err := strconv.Atoi(c.Param("sectionNumber"))
	if err != nil || sectionNumber <= 0 || courseCode == "" {
		return models.SectionKey{}, appErrors.Clone(appErrors.ErrValidation, "invalid course code or section number")
	}
	return models.SectionKey{CourseCode: courseCode, SectionNumber: sectionNumber}, nil
}

// studentIDFromClaims parses the caller's user id as a student id. Only
// STUDENT claims identify a student.
func studentIDFromClaims(claims *models.JWTClaims) (int64, bool) {
	if claims == nil || claims.Role != models.RoleStudent {
		return 0, false
	}
	id, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
