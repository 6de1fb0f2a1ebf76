package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-enrollment-api/internal/dto"
	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
	"github.com/noah-isme/course-enrollment-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, req dto.EnrollmentRequest) (*dto.EnrollmentResponse, error)
}

type eligibilityService interface {
	Decide(ctx context.Context, key models.SectionKey) (models.EnrollmentDecision, error)
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
	eligibility eligibilityService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService, eligibility eligibilityService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, eligibility: eligibility}
}

// Create godoc
// @Summary Enroll in a section
// @Description Decides the attempt and records an enrolled or waitlisted registration.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body dto.EnrollmentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope "not eligible"
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req dto.EnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.CourseCode = strings.TrimSpace(req.CourseCode)

	studentID, ok := studentIDFromClaims(claimsFromContext(c))
	if !ok || studentID != req.StudentID {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "students may only enroll themselves"))
		return
	}

	result, err := h.enrollments.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.EnrollmentDate == nil {
		response.OK(c, result)
		return
	}
	response.Created(c, result)
}

// Eligibility godoc
// @Summary Check enrollment eligibility
// @Tags Enrollments
// @Produce json
// @Param courseCode path string true "Course code"
// @Param sectionNumber path int true "Section number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sections/{courseCode}/{sectionNumber}/eligibility [get]
func (h *EnrollmentHandler) Eligibility(c *gin.Context) {
	key, err := sectionKeyFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	decision, err := h.eligibility.Decide(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.EligibilityResponse{CourseCode: key.CourseCode, SectionNumber: key.SectionNumber, Decision: string(decision)})
}
