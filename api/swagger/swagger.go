// Package swagger carries the hand-maintained Swagger document served at
// /docs in non-production environments.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TEDxECU Registration API",
        "description": "Event registration intake, payment review, and ticketing",
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
        {"name": "Registrations", "description": "Public registration intake"},
        {"name": "Tickets", "description": "Ticket display"},
        {"name": "Auth", "description": "Admin authentication"},
        {"name": "Admin", "description": "Review dashboard operations"}
    ],
    "paths": {
        "/registrations": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Submit a registration",
                "description": "Register for the event with a payment proof upload",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "name", "in": "formData", "type": "string", "required": true},
                    {"name": "email", "in": "formData", "type": "string", "required": true},
                    {"name": "phone", "in": "formData", "type": "string", "required": true},
                    {"name": "phoneType", "in": "formData", "type": "string", "enum": ["egyptian", "international"]},
                    {"name": "university", "in": "formData", "type": "string", "required": true},
                    {"name": "paymentProof", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations/check": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Check registration status by email",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"email": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tickets/{ticketId}": {
            "get": {
                "tags": ["Tickets"],
                "summary": "Render the printable ticket page",
                "produces": ["text/html"],
                "parameters": [
                    {"name": "ticketId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Ticket page"},
                    "404": {"description": "Ticket not found"}
                }
            }
        },
        "/proofs/{token}": {
            "get": {
                "tags": ["Admin"],
                "summary": "Download a payment proof via signed link",
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "401": {"description": "Invalid or expired link"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Admin login",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "Access token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current admin profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/registrations": {
            "get": {
                "tags": ["Admin"],
                "summary": "List registrations",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["pending", "confirmed", "rejected"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/registrations/{id}": {
            "get": {
                "tags": ["Admin"],
                "summary": "Get registration detail",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Admin"],
                "summary": "Delete a registration and its stored proof",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/admin/registrations/{id}/status": {
            "patch": {
                "tags": ["Admin"],
                "summary": "Confirm or reject a pending registration",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"status": {"type": "string", "enum": ["confirmed", "rejected"]}}}}
                ],
                "responses": {
                    "200": {"description": "Decision applied", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already reviewed"}
                }
            }
        },
        "/admin/registrations/{id}/ticket": {
            "post": {
                "tags": ["Admin"],
                "summary": "Re-send a ticket email",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Sent", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "No confirmed ticket"},
                    "503": {"description": "Email service not configured"}
                }
            }
        },
        "/admin/registrations/{id}/proof-link": {
            "get": {
                "tags": ["Admin"],
                "summary": "Issue a signed payment-proof download link",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Signed link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No proof on file"}
                }
            }
        },
        "/admin/registrations/bulk-delete": {
            "post": {
                "tags": ["Admin"],
                "summary": "Delete many registrations in batches",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"ids": {"type": "array", "items": {"type": "string"}}, "confirmation_text": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "Summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing confirmation"}
                }
            }
        },
        "/admin/test-data": {
            "post": {
                "tags": ["Admin"],
                "summary": "Generate synthetic registrations",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "schema": {"type": "object", "properties": {"count": {"type": "integer"}}}}
                ],
                "responses": {
                    "200": {"description": "Summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export registrations as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/admin/email-health": {
            "get": {
                "tags": ["Admin"],
                "summary": "Email service health",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
