// Package docs registers the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/models": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "List generation models",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ModelsResponse"}}}
            }
        },
        "/extract-text": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["extraction"],
                "summary": "Extract text from documents",
                "parameters": [{"type": "file", "name": "files", "in": "formData", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ExtractTextResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ValidationErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/quizzes": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["quiz"],
                "summary": "Generate a quiz",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.GenerateQuizRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.GenerateQuizResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ValidationErrorResponse"}}
                }
            }
        },
        "/quizzes/from-files": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["quiz"],
                "summary": "Generate a quiz from documents",
                "parameters": [
                    {"type": "file", "name": "files", "in": "formData", "required": true},
                    {"type": "integer", "name": "question_count", "in": "formData", "required": true},
                    {"type": "string", "name": "difficulty", "in": "formData"},
                    {"type": "string", "name": "question_type", "in": "formData"},
                    {"type": "string", "name": "focus_area", "in": "formData"},
                    {"type": "string", "name": "model", "in": "formData"},
                    {"type": "string", "name": "api_key", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.GenerateQuizResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ValidationErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/quizzes/score": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["quiz"],
                "summary": "Score answers",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ScoreQuizRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ScoreReport"}}}
            }
        },
        "/quiz-jobs": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Start an asynchronous quiz generation",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.GenerateQuizRequest"}}],
                "responses": {"202": {"description": "Accepted", "schema": {"$ref": "#/definitions/dto.JobCreatedResponse"}}}
            }
        },
        "/quiz-jobs/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Get a generation job",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.JobResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.GenerateQuizRequest": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "question_count": {"type": "integer"},
                "difficulty": {"type": "string"},
                "question_type": {"type": "string"},
                "focus_area": {"type": "string"},
                "model": {"type": "string"},
                "api_key": {"type": "string"}
            }
        },
        "dto.QuestionResponse": {
            "type": "object",
            "properties": {
                "question": {"type": "string"},
                "options": {"type": "array", "items": {"type": "string"}},
                "correct": {"type": "integer"},
                "explanation": {"type": "string"}
            }
        },
        "dto.GenerateQuizResponse": {
            "type": "object",
            "properties": {
                "questions": {"type": "array", "items": {"$ref": "#/definitions/dto.QuestionResponse"}},
                "outcome": {"type": "string"},
                "requested": {"type": "integer"},
                "generated": {"type": "integer"},
                "batches": {"type": "integer"},
                "synthetic_batches": {"type": "integer"},
                "warnings": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dto.ExtractTextResponse": {
            "type": "object",
            "properties": {"text": {"type": "string"}, "characters": {"type": "integer"}}
        },
        "dto.ModelsResponse": {
            "type": "object",
            "properties": {
                "default": {"type": "string"},
                "models": {"type": "array", "items": {"type": "object"}}
            }
        },
        "dto.JobCreatedResponse": {
            "type": "object",
            "properties": {"job_id": {"type": "string"}, "status": {"type": "string"}}
        },
        "dto.JobResponse": {
            "type": "object",
            "properties": {
                "job_id": {"type": "string"},
                "status": {"type": "string"},
                "progress": {"type": "object"},
                "events": {"type": "array", "items": {"type": "object"}},
                "result": {"$ref": "#/definitions/dto.GenerateQuizResponse"}
            }
        },
        "dto.ScoreQuizRequest": {
            "type": "object",
            "properties": {
                "questions": {"type": "array", "items": {"$ref": "#/definitions/dto.QuestionResponse"}},
                "answers": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "domain.ScoreReport": {
            "type": "object",
            "properties": {
                "score": {"type": "integer"},
                "total": {"type": "integer"},
                "percentage": {"type": "integer"},
                "results": {"type": "array", "items": {"type": "object"}}
            }
        },
        "middleware.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "middleware.ValidationErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "errors": {"type": "array", "items": {"type": "object"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8090",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "SmartStudy Quiz API",
	Description:      "Generates multiple-choice quizzes from study material with Gemini models.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
