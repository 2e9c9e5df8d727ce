// Package gemini implements advisor.Model with the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/MrJamesThe3rd/finco/internal/advisor"
)

const jsonMimeType = "application/json"

type Model struct {
	models *genai.Models
	model  string
}

var _ advisor.Model = (*Model)(nil)

type Option func(*genai.ClientConfig)

// WithEndpoint points the client at another base URL, e.g. a test server.
func WithEndpoint(url string) Option {
	return func(cc *genai.ClientConfig) {
		cc.HTTPOptions.BaseURL = url
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(cc *genai.ClientConfig) {
		cc.HTTPClient = c
	}
}

// New creates a client for the named model.
func New(ctx context.Context, apiKey, model string, opts ...Option) (*Model, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, advisor.ErrMissingCredential
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	for _, opt := range opts {
		opt(cc)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Model{models: client.Models, model: model}, nil
}

func (m *Model) Generate(ctx context.Context, req advisor.Request) (*advisor.Reply, error) {
	name := m.model
	if req.Model != "" {
		name = req.Model
	}

	resp, err := m.models.GenerateContent(ctx, name, toContents(req.Turns), toConfig(req))
	if err != nil {
		if code := statusCode(err); code == http.StatusUnauthorized || code == http.StatusForbidden {
			return nil, fmt.Errorf("%w: %w", advisor.ErrMissingCredential, err)
		}

		return nil, fmt.Errorf("generate content: %w", err)
	}

	return fromResponse(resp), nil
}

// statusCode extracts the HTTP status from a Gemini API error, or 0.
func statusCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code
	}

	return 0
}

func toContents(turns []advisor.Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(turns))

	for _, t := range turns {
		var role genai.Role = genai.RoleUser
		if t.Role == advisor.RoleModel {
			role = genai.RoleModel
		}

		out = append(out, genai.NewContentFromText(t.Content, role))
	}

	return out
}

func toConfig(req advisor.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}

	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	if req.WebSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	if req.Schema != nil {
		cfg.ResponseMIMEType = jsonMimeType
		cfg.ResponseSchema = toSchema(*req.Schema)
	}

	return cfg
}

func toSchema(s advisor.Schema) *genai.Schema {
	out := &genai.Schema{
		Type:        genai.Type(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
	}

	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = toSchema(p)
		}
	}

	return out
}

func fromResponse(resp *genai.GenerateContentResponse) *advisor.Reply {
	reply := &advisor.Reply{}
	if resp == nil || len(resp.Candidates) == 0 {
		return reply
	}

	c := resp.Candidates[0]

	if c.Content != nil {
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if p != nil {
				b.WriteString(p.Text)
			}
		}

		reply.Text = b.String()
	}

	if c.GroundingMetadata != nil {
		for _, chunk := range c.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}

			reply.Sources = append(reply.Sources, advisor.Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
		}
	}

	return reply
}
