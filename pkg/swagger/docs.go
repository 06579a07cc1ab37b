// Package swagger registers the OpenAPI description of the rscapture HTTP API
// with swag so it can be served at /swagger/doc.json.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "summary": "Service health",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.HealthResponse"}}}
            }
        },
        "/devices": {
            "get": {
                "produces": ["application/json"],
                "summary": "List connected depth cameras, excluding platform cameras",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Device"}}},
                    "503": {"description": "Enumeration failed", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/sessions": {
            "get": {
                "produces": ["application/json"],
                "summary": "List streaming sessions",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.SessionInfo"}}}}
            }
        },
        "/stats": {
            "get": {
                "produces": ["application/json"],
                "summary": "Per-device counters",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.DeviceStats"}}}}
            }
        },
        "/config": {
            "get": {
                "produces": ["application/json"],
                "summary": "Effective configuration with secrets removed",
                "responses": {"200": {"description": "OK"}, "404": {"description": "No configuration attached"}}
            }
        },
        "/start_stream": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Start streaming a device; idempotent",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/models.SerialRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SessionInfo"}},
                    "400": {"description": "Missing serial", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Unknown device", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Device busy", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "502": {"description": "Device failure", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/stop_stream": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Stop streaming a device; idempotent",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/models.SerialRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.StopStreamResponse"}}}
            }
        },
        "/stop_all": {
            "post": {
                "produces": ["application/json"],
                "summary": "Stop every session",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.StopAllResponse"}}}
            }
        },
        "/capture": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Save the current color and depth frames of a streaming device",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/models.CaptureRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CaptureResponse"}},
                    "400": {"description": "Invalid folder", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Not streaming", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/get_calibration_info": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Write the device calibration to the capture folder",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/models.CaptureRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CalibrationResponse"}}}
            }
        },
        "/video_feed": {
            "get": {
                "produces": ["multipart/x-mixed-replace"],
                "summary": "MJPEG feed of one device",
                "parameters": [
                    {"in": "query", "name": "serial", "type": "string", "required": true},
                    {"in": "query", "name": "view", "type": "string", "enum": ["color", "depth", "both"]}
                ],
                "responses": {"200": {"description": "Multipart JPEG stream"}}
            }
        },
        "/video_feed/snapshot": {
            "get": {
                "produces": ["image/jpeg"],
                "summary": "Single JPEG frame",
                "parameters": [
                    {"in": "query", "name": "serial", "type": "string", "required": true},
                    {"in": "query", "name": "view", "type": "string", "enum": ["color", "depth", "both"]}
                ],
                "responses": {"200": {"description": "JPEG image"}}
            }
        }
    },
    "definitions": {
        "models.Device": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "serial": {"type": "string"}, "product_line": {"type": "string"}}
        },
        "models.SerialRequest": {
            "type": "object",
            "properties": {"serial": {"type": "string"}}
        },
        "models.CaptureRequest": {
            "type": "object",
            "properties": {"serial": {"type": "string"}, "folder_name": {"type": "string"}}
        },
        "models.CaptureResponse": {
            "type": "object",
            "properties": {"timestamp": {"type": "string"}, "files": {"type": "array", "items": {"type": "string"}}}
        },
        "models.CalibrationResponse": {
            "type": "object",
            "properties": {"filename": {"type": "string"}}
        },
        "models.StopStreamResponse": {
            "type": "object",
            "properties": {"serial": {"type": "string"}, "state": {"type": "string"}}
        },
        "models.StopAllResponse": {
            "type": "object",
            "properties": {"stopped": {"type": "integer"}}
        },
        "models.SessionInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "serial": {"type": "string"},
                "state": {"type": "string"},
                "started_at": {"type": "string", "format": "date-time"},
                "frames_read": {"type": "integer"},
                "last_frame_at": {"type": "string", "format": "date-time"},
                "last_capture_timestamp": {"type": "string"},
                "width": {"type": "integer"},
                "height": {"type": "integer"},
                "fps": {"type": "integer"}
            }
        },
        "models.DeviceStats": {
            "type": "object",
            "properties": {
                "serial": {"type": "string"},
                "streams_started": {"type": "integer"},
                "frames_served": {"type": "integer"},
                "captures": {"type": "integer"},
                "calibrations": {"type": "integer"},
                "errors": {"type": "integer"},
                "streaming": {"type": "boolean"},
                "last_activity": {"type": "string", "format": "date-time"}
            }
        },
        "models.HealthResponse": {
            "type": "object",
            "properties": {"status": {"type": "string"}, "version": {"type": "string"}, "driver": {"type": "string"}, "sessions": {"type": "integer"}}
        },
        "models.ErrorResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "status": {"type": "integer"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "rscapture API",
	Description:      "Multi-device depth camera streaming and capture",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Doc renders the registered document.
func Doc() (string, error) {
	return swag.ReadDoc(SwaggerInfo.InstanceName())
}
