package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable Admin API",
        "description": "School timetable dashboard backend: registry, schedules, roster, AI import, attendance",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Admin passphrase gate"},
        {"name": "Entities", "description": "Class and teacher registry"},
        {"name": "Schedule", "description": "Weekly timetable grids"},
        {"name": "Students", "description": "Class rosters"},
        {"name": "Settings", "description": "School-wide settings"},
        {"name": "Imports", "description": "AI timetable import sessions"},
        {"name": "Attendance", "description": "Per-period attendance"},
        {"name": "Dashboard", "description": "Summary and assistant"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Unlock edit mode with the admin passphrase",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid passphrase"}
                }
            }
        },
        "/entities": {
            "get": {
                "tags": ["Entities"],
                "summary": "List class and teacher profiles",
                "parameters": [
                    {"name": "type", "in": "query", "type": "string", "enum": ["CLASS", "TEACHER"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Entities"],
                "summary": "Register a profile",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEntityRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Short code already in use"}
                }
            }
        },
        "/entities/{id}": {
            "get": {
                "tags": ["Entities"],
                "summary": "Get one profile",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Entities"],
                "summary": "Update a profile",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateEntityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Entities"],
                "summary": "Delete a profile and its schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/entities/{id}/timetable": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Get the weekly timetable grid",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/entities/{id}/timetable/cells": {
            "put": {
                "tags": ["Schedule"],
                "summary": "Set one timetable cell",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetCellRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/entities/{id}/timetable/cells/{day}/{period}": {
            "delete": {
                "tags": ["Schedule"],
                "summary": "Clear one timetable cell",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "day", "in": "path", "required": true, "type": "string"},
                    {"name": "period", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/entities/{id}/timetable/export": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Download the timetable as CSV or PDF",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "class_id", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Add one student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/bulk": {
            "post": {
                "tags": ["Students"],
                "summary": "Add students from pasted text",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkAddStudentsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "delete": {
                "tags": ["Students"],
                "summary": "Delete a student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Get school settings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Update school settings",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/imports/text": {
            "post": {
                "tags": ["Imports"],
                "summary": "Start an AI import from pasted text",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StartTextImportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "An import is already being processed"}
                }
            }
        },
        "/imports/document": {
            "post": {
                "tags": ["Imports"],
                "summary": "Start an AI import from an uploaded document",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "File too large"},
                    "415": {"description": "File type not allowed"}
                }
            }
        },
        "/imports/session": {
            "get": {
                "tags": ["Imports"],
                "summary": "Get the current import session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Imports"],
                "summary": "Cancel the current import session",
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "No session to cancel"}
                }
            }
        },
        "/imports/finalize": {
            "post": {
                "tags": ["Imports"],
                "summary": "Merge the reviewed import into the schedule store",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FinalizeImportRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "No session awaiting review"}
                }
            }
        },
        "/imports/source": {
            "get": {
                "tags": ["Imports"],
                "summary": "Download the stored source document",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "403": {"description": "Signature invalid or expired"}
                }
            }
        },
        "/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Get recorded marks for one class, date, and period",
                "parameters": [
                    {"name": "class_id", "in": "query", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string"},
                    {"name": "period", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Record one period's roll call",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkAttendanceRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/attendance/{class_id}/summary": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Summarize attendance over a date range",
                "parameters": [
                    {"name": "class_id", "in": "path", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "required": true, "type": "string"},
                    {"name": "to", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/{class_id}/export": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Download an attendance summary as CSV or PDF",
                "parameters": [
                    {"name": "class_id", "in": "path", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "required": true, "type": "string"},
                    {"name": "to", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/dashboard/summary": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Get the dashboard summary",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/assistant": {
            "post": {
                "tags": ["Dashboard"],
                "summary": "Ask the dashboard assistant a question",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AskRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "passphrase": {"type": "string"}
            },
            "required": ["passphrase"]
        },
        "CreateEntityRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "short_code": {"type": "string"},
                "type": {"type": "string", "enum": ["CLASS", "TEACHER"]}
            },
            "required": ["name", "type"]
        },
        "UpdateEntityRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "short_code": {"type": "string"}
            }
        },
        "SetCellRequest": {
            "type": "object",
            "properties": {
                "day": {"type": "string"},
                "period": {"type": "integer"},
                "subject": {"type": "string"},
                "room": {"type": "string"},
                "teacher_or_class": {"type": "string"}
            },
            "required": ["day", "period", "subject"]
        },
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "roll_number": {"type": "string"},
                "name": {"type": "string"},
                "class_id": {"type": "string"}
            },
            "required": ["roll_number", "name", "class_id"]
        },
        "BulkAddStudentsRequest": {
            "type": "object",
            "properties": {
                "class_id": {"type": "string"},
                "text": {"type": "string"}
            },
            "required": ["class_id", "text"]
        },
        "UpdateSettingsRequest": {
            "type": "object",
            "properties": {
                "school_name": {"type": "string"},
                "academic_year": {"type": "string"},
                "time_slots": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/TimeSlot"}
                }
            }
        },
        "TimeSlot": {
            "type": "object",
            "properties": {
                "period": {"type": "integer"},
                "time_range": {"type": "string"}
            }
        },
        "StartTextImportRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string"}
            },
            "required": ["text"]
        },
        "FinalizeImportRequest": {
            "type": "object",
            "properties": {
                "mappings": {
                    "type": "object",
                    "additionalProperties": {"type": "string"}
                }
            }
        },
        "MarkAttendanceRequest": {
            "type": "object",
            "properties": {
                "class_id": {"type": "string"},
                "date": {"type": "string"},
                "period": {"type": "integer"},
                "subject": {"type": "string"},
                "marks": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/AttendanceMark"}
                }
            },
            "required": ["class_id", "date", "period", "marks"]
        },
        "AttendanceMark": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "status": {"type": "string", "enum": ["PRESENT", "ABSENT", "LATE"]}
            }
        },
        "AskRequest": {
            "type": "object",
            "properties": {
                "question": {"type": "string"}
            },
            "required": ["question"]
        },
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
