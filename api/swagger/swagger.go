package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Vistari API",
        "description": "Revision planning backend: auth, referrals, timetables, events and the weekly calendar",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Signup, login and sessions"},
        {"name": "Referrals", "description": "Invite codes and rewards"},
        {"name": "Timetables", "description": "Revision timetables"},
        {"name": "Events", "description": "Standalone calendar events"},
        {"name": "Calendar", "description": "Weekly calendar view, moves and exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a new account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
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
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Expired or revoked token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout current session",
                "responses": {
                    "204": {"description": "No content"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user info",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/referrals/me": {
            "get": {
                "tags": ["Referrals"],
                "summary": "My referral standing",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ReferralSummary"}}
                }
            }
        },
        "/timetables": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List my timetables",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Timetables"],
                "summary": "Create a timetable",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/timetables/{id}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Get a timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Timetables"],
                "summary": "Delete a timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No content"}
                }
            }
        },
        "/timetables/{id}/schedule": {
            "put": {
                "tags": ["Timetables"],
                "summary": "Replace a timetable's schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Malformed schedule"}
                }
            }
        },
        "/events": {
            "get": {
                "tags": ["Events"],
                "summary": "List events in a range",
                "parameters": [
                    {"name": "from", "in": "query", "required": true, "type": "string"},
                    {"name": "to", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Events"],
                "summary": "Create an event",
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/events/{id}": {
            "put": {
                "tags": ["Events"],
                "summary": "Update an event",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Events"],
                "summary": "Delete an event",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No content"}
                }
            }
        },
        "/calendar/week": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Get the flattened calendar week",
                "parameters": [
                    {"name": "timetable_id", "in": "query", "required": true, "type": "string"},
                    {"name": "week_of", "in": "query", "required": false, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CalendarWeek"}},
                    "400": {"description": "Malformed date"}
                }
            }
        },
        "/calendar/move": {
            "post": {
                "tags": ["Calendar"],
                "summary": "Move a calendar item to another day",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MoveRequest"}}
                ],
                "responses": {
                    "200": {"description": "Refreshed week"},
                    "409": {"description": "Stale reference or concurrent move"}
                }
            }
        },
        "/calendar/week/export": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Export the calendar week",
                "parameters": [
                    {"name": "timetable_id", "in": "query", "required": true, "type": "string"},
                    {"name": "week_of", "in": "query", "required": false, "type": "string"},
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf", "ics"]},
                    {"name": "async", "in": "query", "required": false, "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "Rendered document"},
                    "202": {"description": "Render queued"},
                    "400": {"description": "Unsupported format"}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"},
                "referral_code": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ReferralSummary": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "valid_referrals": {"type": "integer"},
                "rewards_earned": {"type": "integer"},
                "next_reward_after": {"type": "integer"}
            }
        },
        "MoveRequest": {
            "type": "object",
            "properties": {
                "timetable_id": {"type": "string"},
                "source": {
                    "type": "object",
                    "properties": {
                        "kind": {"type": "string", "enum": ["session", "event"]},
                        "date_key": {"type": "string"},
                        "index": {"type": "integer"},
                        "event_id": {"type": "string"}
                    }
                },
                "target_date": {"type": "string"}
            }
        },
        "CalendarWeek": {
            "type": "object",
            "properties": {
                "week_of": {"type": "string"},
                "previous_week": {"type": "string"},
                "next_week": {"type": "string"},
                "grid": {"type": "object"},
                "days": {"type": "array", "items": {"type": "object"}}
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
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
