package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Portal API",
        "description": "Role-based school portal: enrollment, documents, grades, attendance, LMS",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Registration, verification, sessions"},
        {"name": "Enrollments", "description": "Term applications and review"},
        {"name": "Documents", "description": "Credential upload and verification"},
        {"name": "Grades", "description": "Component grade encoding"},
        {"name": "Attendance", "description": "Daily attendance marks"},
        {"name": "LMS", "description": "Course modules, lessons, submissions"},
        {"name": "Notifications", "description": "User notification feed"},
        {"name": "Audit", "description": "Admin audit trail"},
        {"name": "Exports", "description": "Report card and attendance exports"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a new account",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Email taken"}, "422": {"description": "Validation failed"}}
            }
        },
        "/auth/verify-otp": {
            "post": {
                "tags": ["Auth"],
                "summary": "Verify the emailed one-time code",
                "responses": {"200": {"description": "Verified"}, "422": {"description": "Bad or expired code"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in and receive a session cookie",
                "responses": {"200": {"description": "Logged in"}, "401": {"description": "Invalid credentials"}, "403": {"description": "Account not active"}}
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log out and destroy the session",
                "responses": {"200": {"description": "Logged out"}}
            }
        },
        "/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List enrollments",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Enrollments"],
                "summary": "File an enrollment application",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate term application"}}
            }
        },
        "/enrollments/{id}/decision": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Approve or reject a pending enrollment",
                "responses": {"200": {"description": "Decided"}, "404": {"description": "Not found"}, "409": {"description": "Already decided"}}
            }
        },
        "/documents": {
            "get": {
                "tags": ["Documents"],
                "summary": "List documents",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Documents"],
                "summary": "Upload a credential document",
                "responses": {"201": {"description": "Uploaded"}, "422": {"description": "Bad file"}}
            }
        },
        "/documents/{id}/verify": {
            "post": {
                "tags": ["Documents"],
                "summary": "Verify or reject a document",
                "responses": {"200": {"description": "Reviewed"}, "404": {"description": "Not found"}}
            }
        },
        "/grades": {
            "get": {
                "tags": ["Grades"],
                "summary": "List grades",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Grades"],
                "summary": "Encode component grades",
                "responses": {"200": {"description": "Saved"}, "422": {"description": "Validation failed"}}
            }
        },
        "/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List attendance records",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Record one attendance entry",
                "responses": {"200": {"description": "Recorded"}}
            }
        },
        "/attendance/sheet": {
            "get": {
                "tags": ["Attendance"],
                "summary": "View the per-student marks for one section meeting",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Record a full section sheet for one date",
                "responses": {"200": {"description": "Recorded"}}
            }
        },
        "/lms/modules": {
            "get": {
                "tags": ["LMS"],
                "summary": "List course modules",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["LMS"],
                "summary": "Create a course module",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/lms/lessons/{id}/submissions": {
            "post": {
                "tags": ["LMS"],
                "summary": "Submit or resubmit work for a lesson",
                "responses": {"201": {"description": "Received"}}
            }
        },
        "/lms/submissions/{id}/grade": {
            "post": {
                "tags": ["LMS"],
                "summary": "Score a submission",
                "responses": {"200": {"description": "Graded"}, "403": {"description": "Not the lesson owner"}}
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List the caller's notifications",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/audit-logs": {
            "get": {
                "tags": ["Audit"],
                "summary": "List audit log entries",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/exports/report-card": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a report card PDF",
                "responses": {"200": {"description": "PDF bytes"}, "404": {"description": "No grades for term"}}
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {"type": "object"},
                "pagination": {"$ref": "#/definitions/Pagination"}
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
