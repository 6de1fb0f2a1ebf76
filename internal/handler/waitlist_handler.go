package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-enrollment-api/internal/dto"
	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/internal/service"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
	"github.com/noah-isme/course-enrollment-api/pkg/export"
	"github.com/noah-isme/course-enrollment-api/pkg/response"
)

type waitlistService interface {
	Position(ctx context.Context, key models.SectionKey, studentID int64) (int, error)
	List(ctx context.Context, key models.SectionKey) ([]models.WaitlistEntry, error)
	Export(ctx context.Context, key models.SectionKey, format export.Format) (*service.WaitlistExport, error)
}

// WaitlistHandler exposes waitlist endpoints.
type WaitlistHandler struct {
	waitlist waitlistService
}

// NewWaitlistHandler constructs WaitlistHandler.
func NewWaitlistHandler(waitlist waitlistService) *WaitlistHandler {
	return &WaitlistHandler{waitlist: waitlist}
}

// Position godoc
// @Summary Waitlist position
// @Description Students see their own rank; staff may pass studentId.
// @Tags Waitlist
// @Produce json
// @Param courseCode path string true "Course code"
// @Param sectionNumber path int true "Section number"
// @Param studentId query int false "Student id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sections/{courseCode}/{sectionNumber}/waitlist/position [get]
func (h *WaitlistHandler) Position(c *gin.Context) {
	key, err := sectionKeyFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	claims := claimsFromContext(c)
	studentID, isSelf := studentIDFromClaims(claims)
	if raw := c.Query("studentId"); raw != "" {
		requested, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid studentId"))
			return
		}
		if claims != nil && claims.Role == models.RoleStudent && requested != studentID {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "students may only view their own position"))
			return
		}
		studentID, isSelf = requested, true
	}
	if !isSelf {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId is required"))
		return
	}

	position, err := h.waitlist.Position(c.Request.Context(), key, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.WaitlistPositionResponse{StudentID: studentID, CourseCode: key.CourseCode, SectionNumber: key.SectionNumber, Position: position})
}

// List godoc
// @Summary Waitlist roster
// @Tags Waitlist
// @Produce json
// @Param courseCode path string true "Course code"
// @Param sectionNumber path int true "Section number"
// @Success 200 {object} response.Envelope
// @Router /sections/{courseCode}/{sectionNumber}/waitlist [get]
func (h *WaitlistHandler) List(c *gin.Context) {
	key, err := sectionKeyFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, err := h.waitlist.List(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, map[string]interface{}{"count": len(entries)})
}

// Export godoc
// @Summary Export waitlist roster
// @Tags Waitlist
// @Produce text/csv
// @Produce application/pdf
// @Param courseCode path string true "Course code"
// @Param sectionNumber path int true "Section number"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /sections/{courseCode}/{sectionNumber}/waitlist/export [get]
func (h *WaitlistHandler) Export(c *gin.Context) {
	key, err := sectionKeyFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf"))
		return
	}
	out, err := h.waitlist.Export(c.Request.Context(), key, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, out.Filename, out.ContentType, out.Body)
}
