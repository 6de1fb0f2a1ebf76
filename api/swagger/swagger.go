package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Enrollment API",
        "description": "Seat and waitlist admission for course sections",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Enrollments", "description": "Eligibility and registration"},
        {"name": "Waitlist", "description": "Waitlist rank and roster"},
        {"name": "Catalog", "description": "Available classes by department"},
        {"name": "Health", "description": "Liveness probes"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness check",
                "responses": {"200": {"description": "Ready"}}
            }
        },
        "/db_liveness": {
            "get": {
                "tags": ["Health"],
                "summary": "Database liveness",
                "responses": {
                    "200": {"description": "status ok"},
                    "503": {"description": "status not connected"}
                }
            }
        },
        "/api/v1/classes": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Available classes",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"name": "department", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No classes for department", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll in a section",
                "description": "STUDENT role only. Returns 201 when a registration was recorded and 200 with not_eligible otherwise.",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "Not eligible", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "201": {"description": "Enrolled or waitlisted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Section not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "fail to register", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/sections/{courseCode}/{sectionNumber}/eligibility": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Check enrollment eligibility",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"},
                    {"name": "sectionNumber", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Section not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/sections/{courseCode}/{sectionNumber}/waitlist/position": {
            "get": {
                "tags": ["Waitlist"],
                "summary": "Waitlist position",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"},
                    {"name": "sectionNumber", "in": "path", "required": true, "type": "integer"},
                    {"name": "studentId", "in": "query", "required": false, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not waitlisted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/sections/{courseCode}/{sectionNumber}/waitlist": {
            "get": {
                "tags": ["Waitlist"],
                "summary": "Waitlist roster",
                "description": "INSTRUCTOR and REGISTRAR roles only.",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"},
                    {"name": "sectionNumber", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/sections/{courseCode}/{sectionNumber}/waitlist/export": {
            "get": {
                "tags": ["Waitlist"],
                "summary": "Export waitlist roster",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"Bearer": []}],
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"},
                    {"name": "sectionNumber", "in": "path", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "required": false, "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        }
    },
    "definitions": {
        "EnrollmentRequest": {
            "type": "object",
            "required": ["student_id", "course_code", "section_number"],
            "properties": {
                "student_id": {"type": "integer"},
                "course_code": {"type": "string"},
                "section_number": {"type": "integer"}
            }
        },
        "EnrollmentResponse": {
            "type": "object",
            "properties": {
                "enrollment_status": {"type": "string", "enum": ["enrolled", "waitlisted", "not_eligible"]},
                "enrollment_date": {"type": "string", "format": "date-time"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
