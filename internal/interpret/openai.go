// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package interpret

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/matex/pkg/types"
)

// toolName is the function the model is forced to call, so the response
// arrives as schema-checked JSON arguments rather than free text.
const toolName = "normalize_paper_data"

// interpretPromptTmpl frames the document for the model. The structured
// output contract lives in the tool schema, not in the prose.
var interpretPromptTmpl = template.Must(template.New("interpret").Parse(`You are a materials-science data extraction system. Read the following scientific paper content and identify:

- every material studied, with its chemical formula (if stated), chemical class (e.g. "alloy", "ceramic", "polymer"), and alternative names used in the text
- every quantitative measurement of a material property, keeping the value and unit exactly as written (do not convert units)
- the standard abbreviation of the journal, if you recognize it
- for each table listed below that looks garbled or misaligned, a corrected reading of its headers and rows

Report only what the text supports. Use the {{.ToolName}} tool for your answer.

Title: {{.Title}}
Journal: {{.Journal}}

Abstract:
{{.Abstract}}
{{range $i, $t := .Tables}}
Table {{$i}}:
{{$t}}
{{end}}`))

// toolSchema is the JSON Schema for the tool arguments, mirroring the
// Response type.
var toolSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "materials": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "formula": {"type": "string"},
          "chemicalClass": {"type": "string"},
          "synonyms": {"type": "array", "items": {"type": "string"}},
          "properties": {"type": "array", "items": {"type": "string"}},
          "confidence": {"type": "number"}
        },
        "required": ["name", "confidence"]
      }
    },
    "measurements": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "property": {"type": "string"},
          "value": {"type": "string"},
          "unit": {"type": "string"},
          "material": {"type": "string"},
          "conditions": {"type": "string"},
          "confidence": {"type": "number"}
        },
        "required": ["property", "value", "unit", "confidence"]
      }
    },
    "journalAbbreviation": {"type": "string"},
    "tables": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "tableIndex": {"type": "integer"},
          "headers": {"type": "array", "items": {"type": "string"}},
          "rows": {"type": "array", "items": {"type": "array", "items": {"type": "string"}}},
          "dataType": {"type": "string"},
          "confidence": {"type": "number"}
        },
        "required": ["tableIndex", "headers", "rows", "confidence"]
      }
    }
  },
  "required": ["materials", "measurements"]
}`)

// OpenAIBackend calls an OpenAI-compatible chat completion API with a
// forced tool call. Per prd005-interpretation R1.2.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend builds a backend from configuration. BaseURL, when
// set, points the client at a compatible gateway.
func NewOpenAIBackend(cfg types.AIConfig) *OpenAIBackend {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIBackend{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// Interpret sends one document and decodes the forced tool call.
func (b *OpenAIBackend) Interpret(ctx context.Context, doc Document) (Response, error) {
	prompt, err := renderPrompt(doc)
	if err != nil {
		return Response{}, fmt.Errorf("rendering prompt: %w", err)
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Tools: []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolName,
				Description: "Report normalized materials-science data extracted from a paper.",
				Parameters:  toolSchema,
			},
		}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: toolName},
		},
	})
	if err != nil {
		return Response{}, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("empty completion response")
	}
	for _, call := range resp.Choices[0].Message.ToolCalls {
		if call.Function.Name != toolName {
			continue
		}
		var out Response
		if err := json.Unmarshal([]byte(call.Function.Arguments), &out); err != nil {
			return Response{}, fmt.Errorf("decoding tool arguments: %w", err)
		}
		return out, nil
	}
	return Response{}, fmt.Errorf("model did not call %s", toolName)
}

func renderPrompt(doc Document) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Document
		ToolName string
	}{doc, toolName}
	if err := interpretPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
