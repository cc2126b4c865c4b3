package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-viper/mapstructure/v2"

	"github.com/leapstack-labs/sqlpilot/internal/session"
	"github.com/leapstack-labs/sqlpilot/pkg/connstr"
)

// NoExplanation is used when the backend answers without any explanation text.
const NoExplanation = "No explanation available"

// Health is the decoded health payload.
type Health struct {
	// Connected is true only when database_connected is the boolean true.
	Connected    bool   `json:"database_connected"`
	DatabaseType string `json:"database_type,omitempty"`
	DatabaseName string `json:"database_name,omitempty"`
}

// Result is a normalized generation response.
type Result struct {
	SQL           string
	Rows          []session.Row
	HasRows       bool
	ExecutionTime *float64
	// Warning carries the backend's "error" field on a 2xx answer.
	Warning string
}

// Validation is the backend's verdict on a statement.
type Validation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// ConnectRequest asks the backend to open a database session. Either
// ConnectionString or Descriptor is used, the string taking precedence.
type ConnectRequest struct {
	ConnectionString string
	Descriptor       connstr.Descriptor
}

func (r ConnectRequest) payload() map[string]any {
	if r.ConnectionString != "" {
		p := map[string]any{
			"connection_string": r.ConnectionString,
			"use_uri":           true,
		}
		if d, err := connstr.Parse(r.ConnectionString); err == nil {
			p["db_type"] = d.Dialect
		}
		return p
	}
	d := r.Descriptor
	p := map[string]any{
		"db_type":  d.Dialect,
		"host":     d.Host,
		"database": d.Database,
		"username": d.Username,
		"password": d.Password,
	}
	if d.Port > 0 {
		p["port"] = d.Port
	}
	return p
}

// Health probes the backend. A transport failure or non-2xx status is
// ErrBackendUnreachable; a 2xx answer is never an error, even when the body
// does not decode.
func (c *Client) Health(ctx context.Context) (Health, error) {
	resp, err := c.do(ctx, http.MethodGet, HealthPath, nil)
	if err != nil {
		var rf *RequestFailedError
		if errors.As(err, &rf) {
			return Health{}, fmt.Errorf("%w: health returned %s", ErrBackendUnreachable, rf.Status)
		}
		return Health{}, err
	}

	obj, err := decodeObject(resp.Body())
	if err != nil {
		return Health{}, nil
	}
	h := Health{}
	h.Connected, _ = obj["database_connected"].(bool)
	h.DatabaseType, _ = obj["database_type"].(string)
	h.DatabaseName, _ = obj["database_name"].(string)
	return h, nil
}

// Generate sends a natural-language query for translation and execution.
func (c *Client) Generate(ctx context.Context, query string) (Result, error) {
	body := map[string]any{
		"query":   query,
		"execute": true,
		"limit":   QueryLimit,
	}
	resp, err := c.do(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return Result{}, err
	}

	obj, err := decodeObject(resp.Body())
	if err != nil {
		return Result{}, fmt.Errorf("decode query response: %w", err)
	}
	return normalizeResult(obj), nil
}

func normalizeResult(obj map[string]any) Result {
	res := Result{
		SQL: firstString(obj, sqlFields),
	}
	if rows, ok := firstRows(obj, rowFields); ok {
		res.Rows = rows
		res.HasRows = true
	}
	if t, ok := firstNonZero(obj, executionTimeFields); ok {
		res.ExecutionTime = &t
	}
	res.Warning, _ = obj["error"].(string)
	return res
}

// Explain asks for a plain-language description of sql.
func (c *Client) Explain(ctx context.Context, sql string) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, ExplainPath, map[string]any{"sql": sql})
	if err != nil {
		return "", err
	}
	obj, err := decodeObject(resp.Body())
	if err != nil {
		return NoExplanation, nil
	}
	if text := firstString(obj, explanationFields); text != "" {
		return text, nil
	}
	return NoExplanation, nil
}

// Schema fetches the table list. The body may be {"tables": [...]} or a bare
// array; anything else yields an empty schema.
func (c *Client) Schema(ctx context.Context) ([]session.TableInfo, error) {
	resp, err := c.do(ctx, http.MethodGet, SchemaPath, nil)
	if err != nil {
		return nil, err
	}
	v, err := decodeValue(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	return decodeTables(v)
}

func decodeTables(v any) ([]session.TableInfo, error) {
	var raw any
	switch t := v.(type) {
	case []any:
		raw = t
	case map[string]any:
		for _, f := range schemaFields {
			if list, ok := t[f].([]any); ok {
				raw = list
				break
			}
		}
	}
	if raw == nil {
		return []session.TableInfo{}, nil
	}

	tables := []session.TableInfo{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &tables,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	return tables, nil
}

// Connect opens a database session on the backend and returns its message.
func (c *Client) Connect(ctx context.Context, req ConnectRequest) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, ConnectPath, req.payload())
	if err != nil {
		return "", err
	}
	if obj, err := decodeObject(resp.Body()); err == nil {
		if msg, _ := obj["message"].(string); msg != "" {
			return msg, nil
		}
	}
	return "Connected successfully!", nil
}

// Disconnect closes the backend's database session.
func (c *Client) Disconnect(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, DisconnectPath, nil)
	return err
}

// Validate asks the backend whether sql is well formed.
func (c *Client) Validate(ctx context.Context, sql string) (Validation, error) {
	resp, err := c.do(ctx, http.MethodPost, ValidatePath, map[string]any{"sql": sql})
	if err != nil {
		return Validation{}, err
	}
	obj, err := decodeObject(resp.Body())
	if err != nil {
		return Validation{}, fmt.Errorf("decode validation: %w", err)
	}
	v := Validation{}
	v.Valid, _ = obj["valid"].(bool)
	v.Message, _ = obj["message"].(string)
	return v, nil
}
