package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// AttendanceRecordData represents a committed attendance record
type AttendanceRecordData struct {
	ID                     string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	EmployeeNumber         string  `json:"employee_number" example:"EMP-001"`
	EmployeeName           string  `json:"employee_name" example:"Maria Santos"`
	Date                   string  `json:"date" example:"2025-03-14"`
	Time                   string  `json:"time" example:"08:15:00"`
	Latitude               float64 `json:"latitude,omitempty" example:"-23.5505"`
	Longitude              float64 `json:"longitude,omitempty" example:"-46.6333"`
	JobTitle               string  `json:"job_title,omitempty" example:"Welder"`
	Category               string  `json:"category,omitempty" example:"Production"`
	MarkingSupervisorName  string  `json:"marking_supervisor_name,omitempty" example:"Joao Silva"`
}

// MarkOutcomeResponse represents the result of one verification attempt
type MarkOutcomeResponse struct {
	Success       bool                  `json:"success" example:"true"`
	Confidence    float64               `json:"confidence" example:"0.87"`
	BlinkDetected bool                  `json:"blink_detected" example:"true"`
	Reason        string                `json:"reason" example:"COMMITTED"`
	Message       string                `json:"message" example:"Attendance marked successfully for Maria Santos"`
	SecurityAlert string                `json:"security_alert,omitempty"`
	ExistingTime  string                `json:"existing_time,omitempty" example:"08:15:00"`
	Record        *AttendanceRecordData `json:"record,omitempty"`
}

// TodayListResponse represents the daily attendance listing
type TodayListResponse struct {
	Date    string                 `json:"date" example:"2025-03-14"`
	Records []AttendanceRecordData `json:"records"`
}

// EnrollTemplateResponse represents a successful template enrollment
type EnrollTemplateResponse struct {
	EmployeeNumber  string `json:"employee_number" example:"EMP-001"`
	TemplateVersion int    `json:"template_version" example:"1"`
}

// HealthStatusResponse represents health and readiness payloads
type HealthStatusResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version,omitempty" example:"0.1.0"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Face Attendance API",
		Version:     "v1.0.0",
		Description: "Biometric attendance verification: face match plus blink liveness over a frame burst, one record per employee per day",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/attendance/mark - Run a verification attempt
		endpoint.New(
			endpoint.POST,
			"/attendance/mark",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Mark attendance through face verification"),
			endpoint.WithDescription("Runs one verification attempt: identifies the employee from the primary frame, confirms a blink across the ordered frame burst, and commits at most one record per employee per calendar day. Rejections are returned in the outcome body, not as errors."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(MarkOutcomeResponse{}, "201", "Attendance committed"),
				response.New(MarkOutcomeResponse{}, "200", "Attempt completed without committing"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing credentials"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Rate limit exceeded, please try again later"}, "429", "Too Many Requests"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// GET /v1/attendance/today - Daily listing
		endpoint.New(
			endpoint.GET,
			"/attendance/today",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("List today's attendance records"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(TodayListResponse{}, "200", "Records for the current date"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing credentials"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// POST /v1/employees/:employee_number/template - Enrollment
		endpoint.New(
			endpoint.POST,
			"/employees/{employee_number}/template",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("Enroll or replace an employee face template"),
			endpoint.WithDescription("Extracts a single-face encoding from the uploaded image and stores it as the employee's reference template."),
			endpoint.WithParams(parameter.StrParam("employee_number", parameter.Path, parameter.WithDescription("Employee number"))),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EnrollTemplateResponse{}, "201", "Template enrolled"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "EMPLOYEE_NOT_FOUND", Message: "Employee not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in the image"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "MULTIPLE_FACES_DETECTED", Message: "Multiple faces detected, please provide image with single face"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "FORBIDDEN", Message: "Access denied"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// GET /health
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthStatusResponse{}, "200", "Service is up"),
			}),
		),

		// GET /ready
		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthStatusResponse{}, "200", "Database reachable"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(HealthStatusResponse{Status: "degraded"}, "503", "Service Unavailable"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
