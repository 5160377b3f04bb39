package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tryshirtonline/face-attandance/internal/api/middleware"
	"github.com/tryshirtonline/face-attandance/internal/domain"
	"github.com/tryshirtonline/face-attandance/internal/service"
)

const (
	maxImageSize = 10 * 1024 * 1024 // 10MB
	maxFrames    = 60
)

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/bmp":  true,
	"image/gif":  true,
}

// AttendanceServiceInterface is the service surface the handler needs.
type AttendanceServiceInterface interface {
	MarkAttendance(ctx context.Context, actor *service.Actor, req service.MarkRequest) (*domain.VerificationOutcome, error)
	EnrollTemplate(ctx context.Context, actor *service.Actor, employeeNumber string, image []byte) (*domain.Employee, error)
	TodayAttendance(ctx context.Context) ([]domain.AttendanceRecord, error)
}

// AttendanceHandler handles verification and enrollment requests.
type AttendanceHandler struct {
	service AttendanceServiceInterface
	logger  *slog.Logger
}

func NewAttendanceHandler(svc AttendanceServiceInterface, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: svc,
		logger:  logger,
	}
}

// EnrollResponse response for template enrollment
type EnrollResponse struct {
	EmployeeNumber  string `json:"employee_number"`
	TemplateVersion int    `json:"template_version"`
}

// TodayResponse response for the daily listing
type TodayResponse struct {
	Date    string                    `json:"date"`
	Records []domain.AttendanceRecord `json:"records"`
}

// Mark POST /v1/attendance/mark - run one verification attempt
func (h *AttendanceHandler) Mark(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}

	employeeNumber := strings.TrimSpace(c.FormValue("employee_number"))
	if employeeNumber == "" {
		return domain.ErrValidationFailed.WithError(errors.New("employee_number is required"))
	}

	frames, err := extractFrames(c)
	if err != nil {
		return fmt.Errorf("mark attendance: %w", err)
	}

	latitude, err := optionalCoordinate(c, "latitude")
	if err != nil {
		return err
	}
	longitude, err := optionalCoordinate(c, "longitude")
	if err != nil {
		return err
	}

	outcome, err := h.service.MarkAttendance(c.Context(), actor, service.MarkRequest{
		EmployeeNumber: employeeNumber,
		Frames:         frames,
		Latitude:       latitude,
		Longitude:      longitude,
	})
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if outcome.Success {
		status = fiber.StatusCreated
	}

	return c.Status(status).JSON(outcome)
}

// Today GET /v1/attendance/today - today's committed records
func (h *AttendanceHandler) Today(c *fiber.Ctx) error {
	if _, err := middleware.GetActor(c); err != nil {
		return err
	}

	records, err := h.service.TodayAttendance(c.Context())
	if err != nil {
		return err
	}

	if records == nil {
		records = []domain.AttendanceRecord{}
	}

	date := ""
	if len(records) > 0 {
		date = records[0].Date
	}

	return c.JSON(TodayResponse{
		Date:    date,
		Records: records,
	})
}

// EnrollTemplate POST /v1/employees/:employee_number/template
func (h *AttendanceHandler) EnrollTemplate(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}

	employeeNumber := strings.TrimSpace(c.Params("employee_number"))
	if employeeNumber == "" {
		return domain.ErrValidationFailed.WithError(errors.New("employee_number is required"))
	}

	image, err := extractSingleImage(c)
	if err != nil {
		return fmt.Errorf("enroll template: %w", err)
	}

	employee, err := h.service.EnrollTemplate(c.Context(), actor, employeeNumber, image)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(EnrollResponse{
		EmployeeNumber:  employee.EmployeeNumber,
		TemplateVersion: employee.TemplateVersion,
	})
}

// extractFrames reads the ordered frame burst from the multipart form. The
// "frames" parts keep their submitted order; a single "image" part is
// accepted as a one-frame burst for clients without burst capture.
func extractFrames(c *fiber.Ctx) ([][]byte, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	files := form.File["frames"]
	if len(files) == 0 {
		files = form.File["image"]
	}
	if len(files) == 0 {
		return nil, domain.ErrValidationFailed.WithError(errors.New("at least one frame is required"))
	}
	if len(files) > maxFrames {
		return nil, domain.ErrValidationFailed.WithError(fmt.Errorf("at most %d frames are accepted", maxFrames))
	}

	frames := make([][]byte, 0, len(files))
	for _, file := range files {
		data, err := readImagePart(file)
		if err != nil {
			return nil, err
		}
		frames = append(frames, data)
	}

	return frames, nil
}

// extractSingleImage reads the "image" part for enrollment.
func extractSingleImage(c *fiber.Ctx) ([]byte, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}
	return readImagePart(file)
}

func readImagePart(file *multipart.FileHeader) ([]byte, error) {
	if file.Size > maxImageSize {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("image exceeds %d bytes", maxImageSize))
	}

	if contentType := file.Header.Get("Content-Type"); contentType != "" && !validImageTypes[contentType] {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("unsupported content type %s", contentType))
	}

	src, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	if len(data) == 0 {
		return nil, domain.ErrInvalidImage.WithError(errors.New("empty image part"))
	}

	return data, nil
}

func optionalCoordinate(c *fiber.Ctx, field string) (*float64, error) {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(fmt.Errorf("invalid %s: %w", field, err))
	}

	return &value, nil
}
