package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TST Bank API",
        "description": "Teacher sub time bank: earned and used hour ledger, approvals, availability schedule",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Login, refresh, and session management"},
        {"name": "Staff", "description": "Directory and balances"},
        {"name": "Earned", "description": "Earned hour claims"},
        {"name": "Used", "description": "Used hour requests"},
        {"name": "Batch", "description": "Bulk approval operations"},
        {"name": "Schedule", "description": "Availability schedule"},
        {"name": "Dashboard", "description": "Pending counts"},
        {"name": "Reports", "description": "History, exports, status emails"},
        {"name": "Coverage", "description": "Coverage requests and signed links"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate a refresh token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid or expired refresh token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "security": [{"BearerAuth": []}],
                "summary": "Revoke the current refresh token",
                "responses": {
                    "204": {"description": "Logged out"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "security": [{"BearerAuth": []}],
                "summary": "Current session claims",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff": {
            "get": {
                "tags": ["Staff"],
                "security": [{"BearerAuth": []}],
                "summary": "List staff in scope",
                "parameters": [
                    {"name": "building", "in": "query", "type": "string"},
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/balances": {
            "get": {
                "tags": ["Staff"],
                "security": [{"BearerAuth": []}],
                "summary": "Balance sheet for a building",
                "parameters": [
                    {"name": "building", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/{email}/balance": {
            "get": {
                "tags": ["Staff"],
                "security": [{"BearerAuth": []}],
                "summary": "One member's balance",
                "parameters": [
                    {"name": "email", "in": "path", "required": true, "type": "string"},
                    {"name": "building", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Member not found"}
                }
            }
        },
        "/earned": {
            "get": {
                "tags": ["Earned"],
                "security": [{"BearerAuth": []}],
                "summary": "List earned claims",
                "parameters": [
                    {"name": "building", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "email", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Earned"],
                "security": [{"BearerAuth": []}],
                "summary": "Submit an earned claim",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitEarnedRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failure"}
                }
            }
        },
        "/earned/{id}/approve": {
            "post": {
                "tags": ["Earned"],
                "security": [{"BearerAuth": []}],
                "summary": "Approve an earned claim",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Claim not found"}
                }
            }
        },
        "/earned/{id}/deny": {
            "post": {
                "tags": ["Earned"],
                "security": [{"BearerAuth": []}],
                "summary": "Deny an earned claim",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DenyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "A reason or note is required"}
                }
            }
        },
        "/earned/{id}/revert": {
            "post": {
                "tags": ["Earned"],
                "security": [{"BearerAuth": []}],
                "summary": "Return an earned claim to pending",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/used": {
            "get": {
                "tags": ["Used"],
                "security": [{"BearerAuth": []}],
                "summary": "List used requests",
                "parameters": [
                    {"name": "building", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "email", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Used"],
                "security": [{"BearerAuth": []}],
                "summary": "Submit a used request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitUsedRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batch/earned/approve": {
            "post": {
                "tags": ["Batch"],
                "security": [{"BearerAuth": []}],
                "summary": "Approve several earned claims",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "Per-item results", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule": {
            "get": {
                "tags": ["Schedule"],
                "security": [{"BearerAuth": []}],
                "summary": "Read one availability cell",
                "parameters": [
                    {"name": "month", "in": "query", "required": true, "type": "string"},
                    {"name": "period", "in": "query", "required": true, "type": "string"},
                    {"name": "building", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Schedule"],
                "security": [{"BearerAuth": []}],
                "summary": "Replace one availability cell",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleWriteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "security": [{"BearerAuth": []}],
                "summary": "Pending request counts",
                "parameters": [
                    {"name": "building", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/history/{email}": {
            "get": {
                "tags": ["Reports"],
                "security": [{"BearerAuth": []}],
                "summary": "Merged earned and used history",
                "parameters": [
                    {"name": "email", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/balances/export": {
            "get": {
                "tags": ["Reports"],
                "security": [{"BearerAuth": []}],
                "summary": "Export the building balance sheet",
                "parameters": [
                    {"name": "building", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File attachment"}
                }
            }
        },
        "/coverage": {
            "post": {
                "tags": ["Coverage"],
                "security": [{"BearerAuth": []}],
                "summary": "Ask a teacher to cover a slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CoverageRequestInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/coverage/respond": {
            "get": {
                "tags": ["Coverage"],
                "summary": "Resolve a signed accept or decline link",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already answered"},
                    "410": {"description": "Link expired or invalid"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {
                "refresh_token": {"type": "string"}
            }
        },
        "SubmitEarnedRequest": {
            "type": "object",
            "required": ["teacher_covered", "date", "period"],
            "properties": {
                "email": {"type": "string"},
                "teacher_covered": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "period": {"type": "string"},
                "coverage_type": {"type": "string"},
                "hours": {"type": "number"},
                "building": {"type": "string"}
            }
        },
        "SubmitUsedRequest": {
            "type": "object",
            "required": ["date", "amount"],
            "properties": {
                "email": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "amount": {"type": "number"},
                "note": {"type": "string"},
                "building": {"type": "string"}
            }
        },
        "DenyRequest": {
            "type": "object",
            "properties": {
                "reasons": {"type": "array", "items": {"type": "string"}},
                "note": {"type": "string"}
            }
        },
        "BatchRequest": {
            "type": "object",
            "required": ["ids"],
            "properties": {
                "ids": {"type": "array", "items": {"type": "string"}},
                "reasons": {"type": "string"},
                "note": {"type": "string"}
            }
        },
        "ScheduleWriteRequest": {
            "type": "object",
            "required": ["month", "period"],
            "properties": {
                "month": {"type": "string"},
                "period": {"type": "string"},
                "building": {"type": "string"},
                "availability": {
                    "type": "object",
                    "additionalProperties": {"type": "string"}
                }
            }
        },
        "CoverageRequestInput": {
            "type": "object",
            "required": ["teacher_email", "date", "period"],
            "properties": {
                "teacher_email": {"type": "string"},
                "teacher_covered": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "period": {"type": "string"},
                "coverage_type": {"type": "string"},
                "building": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "object"}
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
