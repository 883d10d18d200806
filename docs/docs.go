// Package docs registers the OpenAPI document of the posts API with swag so
// that http-swagger can serve it under /swagger/.
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
    "paths": {
        "/auth/signup": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a new user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.SignupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.SignupResponse"}},
                    "400": {"description": "Invalid Input", "schema": {"$ref": "#/definitions/types.Response"}},
                    "409": {"description": "Email Taken", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in with email and password",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.LoginResponse"}},
                    "400": {"description": "Invalid Input", "schema": {"$ref": "#/definitions/types.Response"}},
                    "401": {"description": "Invalid Credentials", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log out",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            }
        },
        "/auth/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Users"],
                "summary": "Get the authenticated user's profile",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.User"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["Users"],
                "summary": "Update the authenticated user's profile",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.UpdateProfileParams"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ProfileUpdatedResponse"}},
                    "400": {"description": "Invalid Input", "schema": {"$ref": "#/definitions/types.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/types.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            }
        },
        "/admin/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admin"],
                "summary": "List users",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.User"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/types.Response"}},
                    "403": {"description": "Role Not Permitted", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            }
        },
        "/posts": {
            "get": {
                "tags": ["Posts"],
                "summary": "List posts",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.Post"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Posts"],
                "summary": "Create a post owned by the authenticated user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.CreatePostParams"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.PostCreatedResponse"}},
                    "400": {"description": "Invalid Input", "schema": {"$ref": "#/definitions/types.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            }
        },
        "/posts/{id}": {
            "get": {
                "tags": ["Posts"],
                "summary": "Get a post",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Post"}},
                    "400": {"description": "Invalid ID", "schema": {"$ref": "#/definitions/types.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["Posts"],
                "summary": "Update a post. Only the owner may update it.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.UpdatePostParams"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PostUpdatedResponse"}},
                    "400": {"description": "Invalid Input", "schema": {"$ref": "#/definitions/types.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/types.Response"}},
                    "403": {"description": "Not Owner", "schema": {"$ref": "#/definitions/types.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Posts"],
                "summary": "Delete a post. Only the owner may delete it.",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PostDeletedResponse"}},
                    "400": {"description": "Invalid ID", "schema": {"$ref": "#/definitions/types.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/types.Response"}},
                    "403": {"description": "Not Owner", "schema": {"$ref": "#/definitions/types.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            }
        }
    },
    "definitions": {
        "types.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "types.SignupRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["user", "admin"]}
            }
        },
        "types.SignupResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"},
                "token": {"type": "string"}
            }
        },
        "types.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "types.LoginResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"},
                "token": {"type": "string"}
            }
        },
        "types.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"},
                "bio": {"type": "string"},
                "profilePicture": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "types.UpdateProfileParams": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "bio": {"type": "string"},
                "profilePicture": {"type": "string"}
            }
        },
        "types.ProfileUpdatedResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "user": {"$ref": "#/definitions/types.User"}
            }
        },
        "types.Image": {
            "type": "object",
            "required": ["public_id", "url"],
            "properties": {
                "public_id": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "types.Post": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "images": {"type": "array", "items": {"$ref": "#/definitions/types.Image"}},
                "user": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "types.CreatePostParams": {
            "type": "object",
            "required": ["title", "description", "tags"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "images": {"type": "array", "items": {"$ref": "#/definitions/types.Image"}}
            }
        },
        "types.UpdatePostParams": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "images": {"type": "array", "items": {"$ref": "#/definitions/types.Image"}}
            }
        },
        "types.PostCreatedResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "id": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "types.PostUpdatedResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "post": {"$ref": "#/definitions/types.Post"}
            }
        },
        "types.PostDeletedResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "deleted_id": {"type": "string"},
                "message": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Posts API",
	Description:      "User-owned posts behind bearer-token authentication.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
