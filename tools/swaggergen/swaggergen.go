// Command swaggergen writes the OpenAPI 3.0 description of the tunelib API
// to api/swagger.json and api/swagger.yaml.
//
// Usage:
//
//	go run ./tools/swaggergen
//
// When an endpoint or payload changes, update buildPaths or buildSchemas and
// regenerate. The package test fails if a registered route is missing here.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

type OpenAPI struct {
	OpenAPI    string               `json:"openapi"    yaml:"openapi"`
	Info       Info                 `json:"info"       yaml:"info"`
	Paths      map[string]*PathItem `json:"paths"      yaml:"paths"`
	Components Components           `json:"components" yaml:"components"`
}

type Info struct {
	Title       string `json:"title"       yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Version     string `json:"version"     yaml:"version"`
}

type PathItem struct {
	Get    *Operation `json:"get,omitempty"    yaml:"get,omitempty"`
	Post   *Operation `json:"post,omitempty"   yaml:"post,omitempty"`
	Put    *Operation `json:"put,omitempty"    yaml:"put,omitempty"`
	Delete *Operation `json:"delete,omitempty" yaml:"delete,omitempty"`
}

// operations lists the methods set on the item.
func (p *PathItem) operations() map[string]*Operation {
	ops := map[string]*Operation{}
	for method, op := range map[string]*Operation{"GET": p.Get, "POST": p.Post, "PUT": p.Put, "DELETE": p.Delete} {
		if op != nil {
			ops[method] = op
		}
	}
	return ops
}

type Operation struct {
	Tags        []string              `json:"tags"                  yaml:"tags"`
	Summary     string                `json:"summary"               yaml:"summary"`
	OperationID string                `json:"operationId"           yaml:"operationId"`
	Security    []map[string][]string `json:"security,omitempty"    yaml:"security,omitempty"`
	Parameters  []Parameter           `json:"parameters,omitempty"  yaml:"parameters,omitempty"`
	RequestBody *RequestBody          `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   map[string]Response   `json:"responses"             yaml:"responses"`
}

type Parameter struct {
	Name        string `json:"name"        yaml:"name"`
	In          string `json:"in"          yaml:"in"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required"    yaml:"required"`
	Schema      Schema `json:"schema"      yaml:"schema"`
}

type RequestBody struct {
	Required bool                 `json:"required" yaml:"required"`
	Content  map[string]MediaType `json:"content"  yaml:"content"`
}

type MediaType struct {
	Schema Schema `json:"schema" yaml:"schema"`
}

type Response struct {
	Description string               `json:"description"       yaml:"description"`
	Content     map[string]MediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

type Schema struct {
	Type        string            `json:"type,omitempty"        yaml:"type,omitempty"`
	Format      string            `json:"format,omitempty"      yaml:"format,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Properties  map[string]Schema `json:"properties,omitempty"  yaml:"properties,omitempty"`
	Items       *Schema           `json:"items,omitempty"       yaml:"items,omitempty"`
	Required    []string          `json:"required,omitempty"    yaml:"required,omitempty"`
	Ref         string            `json:"$ref,omitempty"        yaml:"$ref,omitempty"`
	Nullable    bool              `json:"nullable,omitempty"    yaml:"nullable,omitempty"`
	MinLength   *int              `json:"minLength,omitempty"   yaml:"minLength,omitempty"`
	MaxLength   *int              `json:"maxLength,omitempty"   yaml:"maxLength,omitempty"`
	Minimum     *float64          `json:"minimum,omitempty"     yaml:"minimum,omitempty"`
}

type Components struct {
	Schemas         map[string]Schema         `json:"schemas"         yaml:"schemas"`
	SecuritySchemes map[string]SecurityScheme `json:"securitySchemes" yaml:"securitySchemes"`
}

type SecurityScheme struct {
	Type         string `json:"type"         yaml:"type"`
	Scheme       string `json:"scheme"       yaml:"scheme"`
	BearerFormat string `json:"bearerFormat" yaml:"bearerFormat"`
	Description  string `json:"description"  yaml:"description"`
}

func buildSpec() OpenAPI {
	return OpenAPI{
		OpenAPI: "3.0.3",
		Info: Info{
			Title:       "tunelib API",
			Description: "Accounts and per-user libraries of favourite Jamendo tracks.",
			Version:     "1.0.0",
		},
		Paths: buildPaths(),
		Components: Components{
			Schemas:         buildSchemas(),
			SecuritySchemes: buildSecuritySchemes(),
		},
	}
}

var bearerAuth = []map[string][]string{{"BearerAuth": {}}}

func buildPaths() map[string]*PathItem {
	return map[string]*PathItem{
		"/api/auth/register": {
			Post: &Operation{
				Tags:        []string{"Auth"},
				Summary:     "Create an account and start a session",
				OperationID: "register",
				RequestBody: jsonBody("RegisterRequest"),
				Responses: responses(
					ok("201", "Account created", "SessionResponse"),
					failure("400", "Malformed JSON"),
					validationFailure(),
				),
			},
		},
		"/api/auth/login": {
			Post: &Operation{
				Tags:        []string{"Auth"},
				Summary:     "Start a session",
				OperationID: "login",
				RequestBody: jsonBody("LoginRequest"),
				Responses: responses(
					ok("200", "Signed in", "SessionResponse"),
					failure("401", "Invalid credentials"),
					validationFailure(),
				),
			},
		},
		"/api/auth/logout": {
			Post: &Operation{
				Tags:        []string{"Auth"},
				Summary:     "Revoke the presented token",
				OperationID: "logout",
				Security:    bearerAuth,
				Responses:   responses(ok("200", "Signed out", "MessageResponse"), unauthorized()),
			},
		},
		"/api/user": {
			Get: &Operation{
				Tags:        []string{"User"},
				Summary:     "Current profile",
				OperationID: "getProfile",
				Security:    bearerAuth,
				Responses:   responses(ok("200", "The signed-in profile", "Profile"), unauthorized()),
			},
			Delete: &Operation{
				Tags:        []string{"User"},
				Summary:     "Delete the account, its tokens and its library",
				OperationID: "deleteAccount",
				Security:    bearerAuth,
				RequestBody: jsonBody("DeleteAccountRequest"),
				Responses: responses(
					ok("200", "Account deleted", "MessageResponse"),
					unauthorized(),
					validationFailure(),
				),
			},
		},
		"/api/user/password": {
			Put: &Operation{
				Tags:        []string{"User"},
				Summary:     "Change the password",
				OperationID: "updatePassword",
				Security:    bearerAuth,
				RequestBody: jsonBody("UpdatePasswordRequest"),
				Responses: responses(
					ok("200", "Password updated", "MessageResponse"),
					unauthorized(),
					validationFailure(),
				),
			},
		},
		"/api/library": {
			Get: &Operation{
				Tags:        []string{"Library"},
				Summary:     "List saved tracks, newest first",
				OperationID: "getLibrary",
				Security:    bearerAuth,
				Responses: responses(
					statusResponse{"200", Response{Description: "Library entries", Content: jsonContent(Schema{Type: "array", Items: ref("LibraryEntry")})}},
					unauthorized(),
				),
			},
			Post: &Operation{
				Tags:        []string{"Library"},
				Summary:     "Save a catalog track",
				OperationID: "addToLibrary",
				Security:    bearerAuth,
				RequestBody: jsonBody("AddLibraryEntryRequest"),
				Responses: responses(
					ok("201", "Track saved", "LibraryEntry"),
					unauthorized(),
					failure("409", "Track is already in the library"),
					validationFailure(),
				),
			},
		},
		"/api/library/check/{trackRef}": {
			Get: &Operation{
				Tags:        []string{"Library"},
				Summary:     "Whether a track is saved",
				OperationID: "checkLibrary",
				Security:    bearerAuth,
				Parameters:  []Parameter{trackRefParam()},
				Responses:   responses(ok("200", "Favourite status", "FavoriteStatus"), unauthorized()),
			},
		},
		"/api/library/track/{trackRef}": {
			Get: &Operation{
				Tags:        []string{"Library"},
				Summary:     "One saved track",
				OperationID: "getLibraryEntry",
				Security:    bearerAuth,
				Parameters:  []Parameter{trackRefParam()},
				Responses: responses(
					ok("200", "The library entry", "LibraryEntry"),
					unauthorized(),
					failure("404", "Track not found in library"),
				),
			},
		},
		"/api/library/{trackRef}": {
			Delete: &Operation{
				Tags:        []string{"Library"},
				Summary:     "Remove a saved track",
				OperationID: "removeFromLibrary",
				Security:    bearerAuth,
				Parameters:  []Parameter{trackRefParam()},
				Responses: responses(
					ok("200", "Track removed", "MessageResponse"),
					unauthorized(),
					failure("404", "Track not found in library"),
				),
			},
		},
	}
}

// statusResponse pairs a status code with its response for responses().
type statusResponse struct {
	code string
	Response
}

// responses adds the failures every /api route can produce.
func responses(rs ...statusResponse) map[string]Response {
	out := map[string]Response{
		"406": {Description: "Accept header does not allow JSON", Content: errContent()},
		"429": {Description: "Too many requests", Content: errContent()},
		"500": {Description: "Internal server error", Content: errContent()},
	}
	for _, r := range rs {
		out[r.code] = r.Response
	}
	return out
}

func ok(code, description, schema string) statusResponse {
	return statusResponse{code, Response{Description: description, Content: jsonContent(*ref(schema))}}
}

func failure(code, description string) statusResponse {
	return statusResponse{code, Response{Description: description, Content: errContent()}}
}

func unauthorized() statusResponse {
	return failure("401", "Missing, invalid, expired or revoked token")
}

func validationFailure() statusResponse {
	return failure("422", "Validation failed; details lists every violated rule")
}

func ref(name string) *Schema {
	return &Schema{Ref: "#/components/schemas/" + name}
}

func jsonContent(s Schema) map[string]MediaType {
	return map[string]MediaType{"application/json": {Schema: s}}
}

func jsonBody(schema string) *RequestBody {
	return &RequestBody{Required: true, Content: jsonContent(*ref(schema))}
}

func errContent() map[string]MediaType {
	return jsonContent(*ref("ErrorResponse"))
}

func trackRefParam() Parameter {
	return Parameter{
		Name:        "trackRef",
		In:          "path",
		Description: "Jamendo track id",
		Required:    true,
		Schema:      Schema{Type: "string"},
	}
}

func buildSecuritySchemes() map[string]SecurityScheme {
	return map[string]SecurityScheme{
		"BearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
			Description:  "HS256 token carrying sub (user id) and jti (token id). Revoked on logout.",
		},
	}
}

func intPtr(n int) *int { return &n }

func str(maxLen int) Schema {
	return Schema{Type: "string", MaxLength: intPtr(maxLen)}
}

func buildSchemas() map[string]Schema {
	zero := 0.0
	password := Schema{Type: "string", MinLength: intPtr(8), MaxLength: intPtr(255)}

	return map[string]Schema{
		"ErrorResponse": {
			Type: "object",
			Properties: map[string]Schema{
				"error":   {Type: "string"},
				"details": {Type: "array", Items: &Schema{Type: "string"}},
			},
			Required: []string{"error"},
		},
		"MessageResponse": {
			Type:       "object",
			Properties: map[string]Schema{"message": {Type: "string"}},
			Required:   []string{"message"},
		},
		"RegisterRequest": {
			Type: "object",
			Properties: map[string]Schema{
				"email":      {Type: "string", Format: "email", MaxLength: intPtr(255)},
				"username":   str(255),
				"password":   password,
				"name":       str(255),
				"last_name":  str(255),
				"birth_date": {Type: "string", Format: "date", Description: "YYYY-MM-DD, not in the future"},
				"bio":        {Type: "string", Nullable: true},
			},
			Required: []string{"email", "username", "password", "name", "last_name", "birth_date"},
		},
		"LoginRequest": {
			Type: "object",
			Properties: map[string]Schema{
				"email":    {Type: "string", Format: "email"},
				"password": {Type: "string"},
			},
			Required: []string{"email", "password"},
		},
		"UpdatePasswordRequest": {
			Type: "object",
			Properties: map[string]Schema{
				"current_password":          {Type: "string"},
				"new_password":              password,
				"new_password_confirmation": {Type: "string", Description: "Must equal new_password"},
			},
			Required: []string{"current_password", "new_password", "new_password_confirmation"},
		},
		"DeleteAccountRequest": {
			Type:       "object",
			Properties: map[string]Schema{"password": {Type: "string"}},
			Required:   []string{"password"},
		},
		"SessionResponse": {
			Type: "object",
			Properties: map[string]Schema{
				"message": {Type: "string"},
				"token":   {Type: "string"},
				"profile": *ref("Profile"),
			},
			Required: []string{"message", "token", "profile"},
		},
		"Profile": {
			Type: "object",
			Properties: map[string]Schema{
				"id":         {Type: "string", Format: "uuid"},
				"email":      {Type: "string", Format: "email"},
				"username":   {Type: "string"},
				"name":       {Type: "string"},
				"last_name":  {Type: "string"},
				"birth_date": {Type: "string", Format: "date-time"},
				"bio":        {Type: "string", Nullable: true},
				"created_at": {Type: "string", Format: "date-time"},
				"updated_at": {Type: "string", Format: "date-time"},
			},
			Required: []string{"id", "email", "username", "name", "last_name", "birth_date", "created_at", "updated_at"},
		},
		"AddLibraryEntryRequest": {
			Type: "object",
			Properties: map[string]Schema{
				"track_ref":   str(255),
				"title":       str(255),
				"artist_name": str(255),
				"audio_url":   str(255),
				"image_url":   str(255),
				"duration":    {Type: "number", Minimum: &zero, Description: "Seconds"},
			},
			Required: []string{"track_ref", "title", "artist_name", "audio_url", "image_url", "duration"},
		},
		"LibraryEntry": {
			Type: "object",
			Properties: map[string]Schema{
				"id":               {Type: "integer", Format: "int64"},
				"owner_id":         {Type: "string", Format: "uuid"},
				"track_ref":        {Type: "string"},
				"title":            {Type: "string"},
				"artist_name":      {Type: "string"},
				"audio_url":        {Type: "string"},
				"image_url":        {Type: "string"},
				"duration_seconds": {Type: "number"},
				"created_at":       {Type: "string", Format: "date-time"},
			},
			Required: []string{"id", "owner_id", "track_ref", "title", "artist_name", "audio_url", "image_url", "duration_seconds", "created_at"},
		},
		"FavoriteStatus": {
			Type:       "object",
			Properties: map[string]Schema{"isFavorite": {Type: "boolean"}},
			Required:   []string{"isFavorite"},
		},
	}
}

func writeJSON(spec OpenAPI, path string) error {
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}

func writeYAML(spec OpenAPI, path string) error {
	data, err := yaml.Marshal(spec)
	if err != nil {
		return fmt.Errorf("marshal YAML: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func main() {
	_, src, _, _ := runtime.Caller(0)
	outDir := filepath.Join(filepath.Dir(src), "..", "..", "api")

	if err := os.MkdirAll(outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create api/ directory: %v\n", err)
		os.Exit(1)
	}

	spec := buildSpec()

	jsonPath := filepath.Join(outDir, "swagger.json")
	if err := writeJSON(spec, jsonPath); err != nil {
		fmt.Fprintf(os.Stderr, "error writing JSON: %v\n", err)
		os.Exit(1)
	}

	yamlPath := filepath.Join(outDir, "swagger.yaml")
	if err := writeYAML(spec, yamlPath); err != nil {
		fmt.Fprintf(os.Stderr, "error writing YAML: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Swagger specs generated:\n  %s\n  %s\n", jsonPath, yamlPath)
}
