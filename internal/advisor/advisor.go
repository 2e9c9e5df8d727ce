// Package advisor talks to a hosted text-generation model on behalf of the dashboard: it
// produces the narrative financial report, answers follow-up chat and extracts transactions
// from free text. Failures come back as *Failure values so callers decide how to render them.
package advisor

import (
	"context"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message of a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Source is a web page the model cited while answering.
type Source struct {
	Title string
	URI   string
}

// Schema constrains a JSON response. It mirrors the OpenAPI subset the model accepts.
type Schema struct {
	Type        string
	Description string
	Enum        []string
	Properties  map[string]Schema
	Required    []string
}

type Request struct {
	// Model overrides the backend's default model when set.
	Model     string
	System    string
	Turns     []Turn
	WebSearch bool
	// Schema, when set, asks for a JSON response matching it.
	Schema *Schema
}

type Reply struct {
	Text    string
	Sources []Source
}

//go:generate mockgen -source=advisor.go -destination=model_mock.go -package=advisor
type Model interface {
	Generate(ctx context.Context, req Request) (*Reply, error)
}

// Disabled is the Model used when no credential is configured.
type Disabled struct{}

func (Disabled) Generate(context.Context, Request) (*Reply, error) {
	return nil, ErrMissingCredential
}
