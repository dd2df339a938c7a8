// Package docs registers the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/dashboard": {
            "get": {"tags": ["dashboard"], "summary": "Dashboard of the selected cycle", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Dashboard"}}}}
        },
        "/dashboard/refresh": {
            "post": {"tags": ["dashboard"], "summary": "Reload every cycle from the backend", "responses": {"200": {"description": "OK"}, "502": {"description": "Backend failure"}}}
        },
        "/dashboard/error": {
            "delete": {"tags": ["dashboard"], "summary": "Dismiss the last error", "responses": {"200": {"description": "OK"}}}
        },
        "/cycles": {
            "get": {"tags": ["cycles"], "summary": "List loaded cycles", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["cycles"], "summary": "Start a new 12-week cycle and select it", "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid input"}, "502": {"description": "Backend failure"}}}
        },
        "/cycles/current": {
            "patch": {"tags": ["cycles"], "summary": "Rename or change the vision of the selected cycle", "responses": {"200": {"description": "OK"}, "409": {"description": "No cycle selected"}}}
        },
        "/cycles/current/week": {
            "put": {"tags": ["cycles"], "summary": "Set the current week (clamped to 1-13)", "responses": {"200": {"description": "OK"}}}
        },
        "/cycles/{id}/select": {
            "post": {"tags": ["cycles"], "summary": "Select a cycle", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/cycles/{id}/archive": {
            "post": {"tags": ["cycles"], "summary": "Archive a cycle", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/cycles/{id}": {
            "delete": {"tags": ["cycles"], "summary": "Delete a cycle and everything in it", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/goals": {"post": {"tags": ["planning"], "summary": "Add a goal", "responses": {"201": {"description": "Created"}}}},
        "/tasks": {"post": {"tags": ["planning"], "summary": "Add a weekly task", "responses": {"201": {"description": "Created"}}}},
        "/tasks/{id}/toggle": {"post": {"tags": ["planning"], "summary": "Toggle a weekly task", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Changed elsewhere"}}}},
        "/actions": {"post": {"tags": ["planning"], "summary": "Add a daily action", "responses": {"201": {"description": "Created"}}}},
        "/habits": {"post": {"tags": ["tracking"], "summary": "Add a habit", "responses": {"201": {"description": "Created"}}}},
        "/habits/{id}/toggle": {"post": {"tags": ["tracking"], "summary": "Toggle a habit on a date", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/scores/{week}": {"post": {"tags": ["tracking"], "summary": "Record the score of a week", "parameters": [{"name": "week", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Week out of range"}}}},
        "/scores/{week}/indicators": {"post": {"tags": ["tracking"], "summary": "Add a lead indicator to a recorded week", "parameters": [{"name": "week", "in": "path", "required": true, "type": "integer"}], "responses": {"201": {"description": "Created"}, "404": {"description": "Week not recorded"}}}}
    },
    "definitions": {
        "Dashboard": {
            "type": "object",
            "properties": {
                "cycle": {"type": "object"},
                "cycles": {"type": "array", "items": {"type": "object"}},
                "execution_rate": {"type": "integer"},
                "target_met": {"type": "boolean"},
                "goal_progress": {"type": "integer"},
                "weeks_remaining": {"type": "integer"},
                "trend": {"type": "array", "items": {"type": "object"}},
                "today_actions": {"type": "array", "items": {"type": "object"}},
                "habits": {"type": "array", "items": {"type": "object"}},
                "last_error": {"type": "string"}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Twelve Week Sync API",
	Description:      "Cycles, goals, tasks, daily actions, habits and weekly scores of the 12 Week Year method.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
