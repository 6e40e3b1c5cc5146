package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"quercle-tools/internal/domain"
)

func newTestLogger() *slog.Logger { return slog.Default() }

// mockCaller implements Caller for testing, recording every call.
type mockCaller struct {
	result    string
	err       error
	callCount int
	lastPath  string
	lastBody  []byte
}

func (m *mockCaller) Call(_ context.Context, path string, body any) (string, error) {
	m.callCount++
	m.lastPath = path
	m.lastBody, _ = json.Marshal(body)
	if m.err != nil {
		return "", m.err
	}
	return m.result, nil
}

func findAdapter(t *testing.T, caller Caller, name string) *Adapter {
	t.Helper()
	for _, a := range NewAdapters(caller, newTestLogger()) {
		if a.Name() == name {
			return a
		}
	}
	t.Fatalf("no adapter named %q", name)
	return nil
}

func TestAdapterTable(t *testing.T) {
	adapters := NewAdapters(&mockCaller{}, newTestLogger())
	if len(adapters) != 5 {
		t.Fatalf("NewAdapters returned %d adapters, want 5", len(adapters))
	}

	want := map[string][]string{
		"search":     {"query"},
		"fetch":      {"url", "prompt"},
		"raw_search": {"query"},
		"raw_fetch":  {"url"},
		"extract":    {"url", "query"},
	}

	for _, a := range adapters {
		required, ok := want[a.Name()]
		if !ok {
			t.Errorf("unexpected adapter %q", a.Name())
			continue
		}
		if a.Description() == "" {
			t.Errorf("%s: empty description", a.Name())
		}

		schema := a.Schema()
		if schema.Name != a.Name() {
			t.Errorf("%s: Schema.Name = %q", a.Name(), schema.Name)
		}
		var parsed struct {
			Type                 string         `json:"type"`
			Properties           map[string]any `json:"properties"`
			Required             []string       `json:"required"`
			AdditionalProperties bool           `json:"additionalProperties"`
		}
		if err := json.Unmarshal(schema.Parameters, &parsed); err != nil {
			t.Fatalf("%s: invalid schema JSON: %v", a.Name(), err)
		}
		if parsed.Type != "object" {
			t.Errorf("%s: schema type = %q", a.Name(), parsed.Type)
		}
		if parsed.AdditionalProperties {
			t.Errorf("%s: additionalProperties should be false", a.Name())
		}
		if len(parsed.Required) != len(required) {
			t.Errorf("%s: required = %v, want %v", a.Name(), parsed.Required, required)
		}
		for _, r := range required {
			if _, ok := parsed.Properties[r]; !ok {
				t.Errorf("%s: schema missing property %q", a.Name(), r)
			}
		}
	}
}

func TestExecuteSuccessPassthrough(t *testing.T) {
	caller := &mockCaller{result: "X"}
	search := findAdapter(t, caller, "search")

	result, err := search.Execute(context.Background(), json.RawMessage(`{"query":"what is Go?"}`))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", result.Content)
	}
	if result.Content != "X" {
		t.Errorf("Content = %q, want %q unmodified", result.Content, "X")
	}
	if result.ToolCallID == "" {
		t.Error("ToolCallID not set")
	}
	if caller.lastPath != "/v1/search" {
		t.Errorf("path = %q, want /v1/search", caller.lastPath)
	}
}

func TestExecuteMissingRequired(t *testing.T) {
	caller := &mockCaller{result: "ok"}
	fetch := findAdapter(t, caller, "fetch")

	_, err := fetch.Execute(context.Background(), json.RawMessage(`{"url":"https://example.com"}`))
	if err == nil {
		t.Fatal("expected validation error for missing prompt")
	}
	if !domain.IsValidation(err) {
		t.Errorf("error %v is not a ValidationError", err)
	}
	if !strings.Contains(err.Error(), "prompt") {
		t.Errorf("error %q does not name the missing field", err)
	}
	if caller.callCount != 0 {
		t.Errorf("network called %d times before validation failure, want 0", caller.callCount)
	}
}

func TestExecuteUnknownKeyRejected(t *testing.T) {
	caller := &mockCaller{result: "ok"}
	search := findAdapter(t, caller, "search")

	_, err := search.Execute(context.Background(), json.RawMessage(`{"query":"x","max_results":5}`))
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError for unknown key, got %v", err)
	}
	if caller.callCount != 0 {
		t.Errorf("network called %d times, want 0", caller.callCount)
	}
}

func TestExecuteWrongType(t *testing.T) {
	caller := &mockCaller{result: "ok"}
	search := findAdapter(t, caller, "search")

	cases := []string{
		`{"query":42}`,
		`{"query":"x","allowed_domains":"example.com"}`,
		`[1,2,3]`,
	}
	for _, in := range cases {
		_, err := search.Execute(context.Background(), json.RawMessage(in))
		if !domain.IsValidation(err) {
			t.Errorf("input %s: expected ValidationError, got %v", in, err)
		}
	}
	if caller.callCount != 0 {
		t.Errorf("network called %d times, want 0", caller.callCount)
	}
}

func TestExecuteEmptyRequiredString(t *testing.T) {
	caller := &mockCaller{result: "ok"}
	search := findAdapter(t, caller, "search")

	_, err := search.Execute(context.Background(), json.RawMessage(`{"query":"   "}`))
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError for blank query, got %v", err)
	}
}

func TestExecuteInvalidEnum(t *testing.T) {
	caller := &mockCaller{result: "ok"}
	rawFetch := findAdapter(t, caller, "raw_fetch")

	_, err := rawFetch.Execute(context.Background(),
		json.RawMessage(`{"url":"https://example.com","format":"pdf"}`))
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError for bad format, got %v", err)
	}
	if caller.callCount != 0 {
		t.Errorf("network called %d times, want 0", caller.callCount)
	}
}

func TestExecuteOptionalOmittedFromBody(t *testing.T) {
	caller := &mockCaller{result: "ok"}
	rawSearch := findAdapter(t, caller, "raw_search")

	_, err := rawSearch.Execute(context.Background(), json.RawMessage(`{"query":"golang"}`))
	if err != nil {
		t.Fatal(err)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(caller.lastBody, &body); err != nil {
		t.Fatalf("body is not a JSON object: %v", err)
	}
	if _, ok := body["format"]; ok {
		t.Error("omitted optional 'format' was sent")
	}
	if _, ok := body["use_safeguard"]; ok {
		t.Error("omitted optional 'use_safeguard' was sent")
	}
	if string(body["query"]) != `"golang"` {
		t.Errorf("query = %s, want verbatim %q", body["query"], `"golang"`)
	}
}

func TestExecuteOptionalCopiedVerbatim(t *testing.T) {
	caller := &mockCaller{result: "ok"}
	search := findAdapter(t, caller, "search")

	_, err := search.Execute(context.Background(),
		json.RawMessage(`{"query":"x","allowed_domains":["*.org","*.edu"],"blocked_domains":["spam.com"]}`))
	if err != nil {
		t.Fatal(err)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(caller.lastBody, &body); err != nil {
		t.Fatal(err)
	}
	if string(body["allowed_domains"]) != `["*.org","*.edu"]` {
		t.Errorf("allowed_domains = %s", body["allowed_domains"])
	}
	if string(body["blocked_domains"]) != `["spam.com"]` {
		t.Errorf("blocked_domains = %s", body["blocked_domains"])
	}
}

func TestExecuteRemoteFailureIsText(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"auth", fmt.Errorf("%w: API error 401", domain.ErrAuthInvalid), "authentication failed"},
		{"timeout", fmt.Errorf("%w: deadline exceeded", domain.ErrTimeout), "timed out"},
		{"server", fmt.Errorf("%w: API error 503", domain.ErrRemoteServer), "remote server error"},
		{"malformed", fmt.Errorf("%w: unexpected end of JSON", domain.ErrMalformedResponse), "malformed response"},
		{"no key", fmt.Errorf("%w: set QUERCLE_API_KEY", domain.ErrMissingAPIKey), "api key not configured"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			caller := &mockCaller{err: tc.err}
			search := findAdapter(t, caller, "search")

			result, err := search.Execute(context.Background(), json.RawMessage(`{"query":"x"}`))
			if err != nil {
				t.Fatalf("remote failure surfaced as Go error: %v", err)
			}
			if !result.IsError {
				t.Fatal("expected error result")
			}
			if !strings.HasPrefix(result.Content, "search: ") {
				t.Errorf("error text %q not prefixed with tool name", result.Content)
			}
			if !strings.Contains(result.Content, tc.want) {
				t.Errorf("error text %q does not mention %q", result.Content, tc.want)
			}
			if strings.ContainsAny(result.Content, "\r\n") {
				t.Errorf("error text %q is not a single line", result.Content)
			}
		})
	}
}

func TestExecuteAsyncParity(t *testing.T) {
	caller := &mockCaller{result: "the same answer"}
	extract := findAdapter(t, caller, "extract")
	params := json.RawMessage(`{"url":"https://example.com","query":"pricing"}`)

	syncResult, syncErr := extract.Execute(context.Background(), params)
	if syncErr != nil {
		t.Fatal(syncErr)
	}

	async := <-extract.ExecuteAsync(context.Background(), params)
	if async.Err != nil {
		t.Fatal(async.Err)
	}
	if async.Result.Content != syncResult.Content {
		t.Errorf("async Content = %q, sync Content = %q", async.Result.Content, syncResult.Content)
	}
	if async.Result.IsError != syncResult.IsError {
		t.Errorf("async IsError = %v, sync IsError = %v", async.Result.IsError, syncResult.IsError)
	}
}

func TestExecuteAsyncValidationParity(t *testing.T) {
	caller := &mockCaller{result: "ok"}
	fetch := findAdapter(t, caller, "fetch")
	params := json.RawMessage(`{"url":"https://example.com"}`)

	_, syncErr := fetch.Execute(context.Background(), params)
	async := <-fetch.ExecuteAsync(context.Background(), params)

	if !domain.IsValidation(syncErr) || !domain.IsValidation(async.Err) {
		t.Fatalf("sync err = %v, async err = %v, both should be validation errors", syncErr, async.Err)
	}
	if syncErr.Error() != async.Err.Error() {
		t.Errorf("sync %q != async %q", syncErr, async.Err)
	}
	if caller.callCount != 0 {
		t.Errorf("network called %d times, want 0", caller.callCount)
	}
}

func TestExecuteAsyncDeliversOnce(t *testing.T) {
	caller := &mockCaller{result: "ok"}
	search := findAdapter(t, caller, "search")

	ch := search.ExecuteAsync(context.Background(), json.RawMessage(`{"query":"x"}`))

	select {
	case res, ok := <-ch:
		if !ok {
			t.Fatal("channel closed before delivering a result")
		}
		if res.Result == nil || res.Result.Content != "ok" {
			t.Errorf("unexpected result %+v", res)
		}
	case <-time.After(time.Second):
		t.Fatal("no result within 1s")
	}

	if _, ok := <-ch; ok {
		t.Error("channel delivered a second result")
	}
}

func TestExecuteErrorWrapping(t *testing.T) {
	caller := &mockCaller{result: "ok"}
	fetch := findAdapter(t, caller, "fetch")

	_, err := fetch.Execute(context.Background(), json.RawMessage(`{}`))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("validation error does not wrap ErrInvalidInput: %v", err)
	}
}
