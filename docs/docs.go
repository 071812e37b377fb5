// Package docs registers the collector's swagger document with swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/behaviors/report": {
            "post": {
                "description": "Accepts one behavior event sent by the tracker. The body is read as raw text so both application/json and text/plain (beacon) deliveries work. Malformed or invalid events are logged and still acknowledged.",
                "consumes": ["application/json", "text/plain"],
                "tags": ["report"],
                "summary": "Report a behavior event",
                "parameters": [
                    {
                        "description": "Behavior event",
                        "name": "event",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/behavior.Event"}
                    }
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "413": {"description": "Request Entity Too Large"}
                }
            }
        },
        "/admin/auth": {
            "post": {
                "description": "Checks the admin credentials and issues a session token (also set as the \"token\" cookie)",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Authenticate admin",
                "parameters": [
                    {
                        "description": "Admin credentials",
                        "name": "credentials",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/request.AdminLogin"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/wrapper.ResponseWrapper"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/wrapper.ErrorWrapper"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/wrapper.ErrorWrapper"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/wrapper.ErrorWrapper"}}
                }
            }
        },
        "/admin/behaviors": {
            "get": {
                "description": "Get reported behavior events with optional filters",
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Get reported behaviors",
                "parameters": [
                    {"type": "string", "description": "Project name", "name": "projectName", "in": "query"},
                    {"type": "string", "description": "Visitor ID", "name": "userId", "in": "query"},
                    {"type": "string", "description": "uv, pv, click or dwell", "name": "behavior", "in": "query"},
                    {"type": "string", "description": "Page URL (partial match)", "name": "pageUrl", "in": "query"},
                    {"type": "string", "description": "Start time (RFC3339 format)", "name": "startTime", "in": "query"},
                    {"type": "string", "description": "End time (RFC3339 format)", "name": "endTime", "in": "query"},
                    {"type": "integer", "description": "Page number (starts from 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Items per page (default: 20, max: 1000)", "name": "per_page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/entity.PaginatedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/wrapper.ErrorWrapper"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/wrapper.ErrorWrapper"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/wrapper.ErrorWrapper"}}
                }
            }
        },
        "/admin/behaviors/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Get behavior by ID",
                "parameters": [
                    {"type": "string", "description": "Behavior ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/wrapper.ResponseWrapper"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/wrapper.ErrorWrapper"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/wrapper.ErrorWrapper"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/wrapper.ErrorWrapper"}}
                }
            }
        },
        "/admin/stats/daily": {
            "get": {
                "description": "Page views, unique visitors, clicks and average dwell time of a project for one UTC day",
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Daily project stats",
                "parameters": [
                    {"type": "string", "description": "Project name", "name": "project", "in": "query", "required": true},
                    {"type": "string", "description": "Day (YYYY-MM-DD), defaults to today", "name": "day", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/wrapper.ResponseWrapper"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/wrapper.ErrorWrapper"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/wrapper.ErrorWrapper"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/wrapper.ErrorWrapper"}}
                }
            }
        }
    },
    "definitions": {
        "behavior.Event": {
            "type": "object",
            "properties": {
                "behavior": {"type": "string", "enum": ["uv", "pv", "click", "dwell"]},
                "userId": {"type": "string"},
                "projectName": {"type": "string"},
                "timestamp": {"type": "string", "example": "2026-01-01T12:00:00.000Z"},
                "pageUrl": {"type": "string"},
                "referrer": {"type": "string"},
                "pv": {"type": "integer"},
                "element": {"type": "string"},
                "action": {"type": "string"},
                "dwellTime": {"type": "integer"}
            }
        },
        "request.AdminLogin": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "entity.PaginationInfo": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "per_page": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "entity.PaginatedResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "pagination": {"$ref": "#/definitions/entity.PaginationInfo"},
                "success": {"type": "boolean"}
            }
        },
        "wrapper.ErrorWrapper": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "wrapper.ResponseWrapper": {
            "type": "object",
            "properties": {
                "data": {},
                "success": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Behavior monitor collector API",
	Description:      "Receives tracker behavior reports and serves admin queries over them.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
