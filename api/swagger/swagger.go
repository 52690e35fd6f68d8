package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable Console API",
        "description": "Grid projection, eligibility and editing console over the timetable generation backend",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Timetables", "description": "Administrative grids and activity editing"},
        {"name": "My Timetable", "description": "Personalized student and faculty grids"},
        {"name": "Change Requests", "description": "Faculty change requests and admin review"},
        {"name": "Exports", "description": "Asynchronous CSV, PDF, XLSX and iCalendar exports"},
        {"name": "Metrics", "description": "Operational health and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Liveness check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Readiness check against the backend and cache",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/timetables/grids": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Administrative grids for every semester timetable",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "scope", "in": "query", "type": "string", "enum": ["published", "latest"]},
                    {"name": "algorithm", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Backend unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/available-spaces": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Rooms free for a day and period set",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "day", "in": "query", "required": true, "type": "string"},
                    {"name": "periods", "in": "query", "required": true, "type": "string", "description": "Comma separated period codes"},
                    {"name": "exclude", "in": "query", "type": "string", "description": "Session id ignored when checking occupancy"},
                    {"name": "scope", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{timetableId}/cells/{period}/{day}/{index}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Select one entry of an administrative cell",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "timetableId", "in": "path", "required": true, "type": "string"},
                    {"name": "period", "in": "path", "required": true, "type": "string"},
                    {"name": "day", "in": "path", "required": true, "type": "string"},
                    {"name": "index", "in": "path", "required": true, "type": "integer"},
                    {"name": "spaces", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Cell or entry not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{timetableId}/activities/{sessionId}": {
            "patch": {
                "tags": ["Timetables"],
                "summary": "Edit a scheduled activity",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "timetableId", "in": "path", "required": true, "type": "string"},
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EditActivityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown day, period, room, teacher or subject", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Scheduling conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/me/timetable": {
            "get": {
                "tags": ["My Timetable"],
                "summary": "Personalized grid for the calling student or faculty member",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "scope", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Identity could not be resolved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/me/timetable/agenda": {
            "get": {
                "tags": ["My Timetable"],
                "summary": "Faculty agenda for one day",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "day", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/me/timetable/explain/{sessionId}": {
            "get": {
                "tags": ["My Timetable"],
                "summary": "Explain why an activity is or is not on the student's grid",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Activity not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/me/timetable/cells/{period}/{day}/change-request": {
            "post": {
                "tags": ["My Timetable"],
                "summary": "Request a change for the activity in a personal cell",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "period", "in": "path", "required": true, "type": "string"},
                    {"name": "day", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CellChangeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Cell is empty", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/change-requests": {
            "get": {
                "tags": ["Change Requests"],
                "summary": "List change requests",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["pending", "approved", "rejected"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Change Requests"],
                "summary": "Submit a change request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateChangeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Change requests disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/change-requests/{id}": {
            "put": {
                "tags": ["Change Requests"],
                "summary": "Approve or reject a change request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewChangeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a timetable export",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export through its signed link",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "text/calendar"],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Link expired or invalid"}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Cache, backend and export counters",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "EditActivityRequest": {
            "type": "object",
            "properties": {
                "scope": {"type": "string"},
                "activity_id": {"type": "string"},
                "subject": {"type": "string"},
                "teacher": {"type": "string"},
                "room": {"type": "string"},
                "day": {"type": "string"},
                "periods": {"type": "array", "items": {"type": "string"}},
                "duration": {"type": "integer"},
                "subgroups": {"type": "array", "items": {"type": "string"}},
                "activity_type": {"type": "string"},
                "is_substitute": {"type": "boolean"},
                "substitute_reason": {"type": "string"}
            },
            "required": ["subject", "teacher", "room", "day", "periods"]
        },
        "CreateChangeRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["substitute", "roomChange", "timeChange"]},
                "timetable_id": {"type": "string"},
                "session_id": {"type": "string"},
                "semester": {"type": "string"},
                "reason": {"type": "string"},
                "substitute_id": {"type": "string"},
                "new_room": {"type": "string"},
                "new_day": {"type": "string"},
                "new_periods": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["type", "timetable_id", "session_id", "reason"]
        },
        "CellChangeRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["substitute", "roomChange", "timeChange"]},
                "reason": {"type": "string"},
                "substitute_id": {"type": "string"},
                "new_room": {"type": "string"},
                "new_day": {"type": "string"},
                "new_periods": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["type", "reason"]
        },
        "ReviewChangeRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["approve", "reject"]},
                "note": {"type": "string"},
                "apply": {"type": "boolean"}
            },
            "required": ["action"]
        },
        "ExportRequest": {
            "type": "object",
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf", "xlsx", "ics"]},
                "scope": {"type": "string"},
                "mode": {"type": "string", "enum": ["admin", "personal"]},
                "timetable_id": {"type": "string"},
                "starts_on": {"type": "string", "format": "date"},
                "weeks": {"type": "integer"}
            },
            "required": ["format"]
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
