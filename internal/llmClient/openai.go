package llmclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// OpenAIClient uses the Responses API. When a schema is supplied the model is
// constrained to it via a strict json_schema text format.
type OpenAIClient struct {
	client     *openai.Client
	model      string
	schema     map[string]any
	schemaName string
	maxOut     int64
}

func NewOpenAIClient(opts Options) (*OpenAIClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai: api key is required")
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	// Retries are the fallback chain's job, not the SDK's.
	reqOpts = append(reqOpts, option.WithMaxRetries(0))
	client := openai.NewClient(reqOpts...)
	name := opts.SchemaName
	if name == "" {
		name = "Response"
	}
	return &OpenAIClient{
		client:     &client,
		model:      opts.Model,
		schema:     opts.ResponseSchema,
		schemaName: name,
		maxOut:     800,
	}, nil
}

func (o *OpenAIClient) Name() string  { return "OpenAI:" + o.model }
func (o *OpenAIClient) Model() string { return o.model }
func (o *OpenAIClient) Close() error  { return nil }

func (o *OpenAIClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	params := responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(o.maxOut),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
	}
	if o.schema != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:   o.schemaName,
					Schema: o.schema,
					Strict: openai.Bool(true),
					Type:   "json_schema",
				},
			},
		}
	}
	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			switch apiErr.StatusCode {
			case http.StatusNotFound:
				return "", NewPermanentError(errors.Join(ErrModelNotFound, err))
			case http.StatusTooManyRequests:
				return "", errors.Join(ErrQuotaExceeded, err)
			}
		}
		return "", err
	}
	out := resp.OutputText()
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

const (
	propertiesKey           = "properties"
	additionalPropertiesKey = "additionalProperties"
	typeKey                 = "type"
	requiredKey             = "required"
	itemsKey                = "items"
)

// SchemaFor reflects T into a JSON schema map that satisfies the strict
// structured-output rules: closed objects and every property required.
func SchemaFor[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	b, err := reflector.Reflect(v).MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	delete(m, "$schema")
	closeObjects(m)
	return m
}

func closeObjects(schema map[string]any) {
	if t, ok := schema[typeKey].(string); ok && t == "object" {
		schema[additionalPropertiesKey] = false
		if props, ok := schema[propertiesKey].(map[string]any); ok && len(props) > 0 {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			schema[requiredKey] = required
		}
	}
	if props, ok := schema[propertiesKey].(map[string]any); ok {
		for _, p := range props {
			if pm, ok := p.(map[string]any); ok {
				closeObjects(pm)
			}
		}
	}
	if items, ok := schema[itemsKey].(map[string]any); ok {
		closeObjects(items)
	}
}
