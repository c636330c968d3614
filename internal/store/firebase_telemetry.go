package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"safetrack/internal/telemetry"

	"github.com/go-resty/resty/v2"
)

// FirebaseTelemetryStore reads the device's Firebase Realtime Database over
// its REST API. Requests are not retried.
type FirebaseTelemetryStore struct {
	httpClient *resty.Client
	authToken  string
	root       string
}

// NewFirebaseTelemetryStore baseURL is the database URL,
// e.g. https://<project>.firebaseio.com
func NewFirebaseTelemetryStore(baseURL, authToken, root string, timeout time.Duration) *FirebaseTelemetryStore {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &FirebaseTelemetryStore{httpClient: client, authToken: authToken, root: strings.Trim(root, "/")}
}

var _ TelemetryStore = (*FirebaseTelemetryStore)(nil)

func (f *FirebaseTelemetryStore) Name() string { return "firebase" }

func (f *FirebaseTelemetryStore) request(ctx context.Context) *resty.Request {
	req := f.httpClient.R().SetContext(ctx)
	if f.authToken != "" {
		req.SetQueryParam("auth", f.authToken)
	}
	return req
}

func (f *FirebaseTelemetryStore) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	resp, err := f.request(ctx).
		SetQueryParams(params).
		Get("/" + strings.Trim(path, "/") + ".json")
	if err != nil {
		return nil, fmt.Errorf("firebase GET %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("firebase GET %s: status %d: %s", path, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return resp.Body(), nil
}

func (f *FirebaseTelemetryStore) Ping(ctx context.Context) error {
	_, err := f.get(ctx, f.root, map[string]string{"shallow": "true"})
	return err
}

func (f *FirebaseTelemetryStore) ReadLastValue(ctx context.Context, path string) (telemetry.Document, error) {
	body, err := f.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeDocument(string(body))
}

func (f *FirebaseTelemetryStore) ReadLastN(ctx context.Context, path string, n int) ([]telemetry.Entry, error) {
	body, err := f.get(ctx, path, map[string]string{
		"orderBy":     strconv.Quote("$key"),
		"limitToLast": strconv.Itoa(n),
	})
	if err != nil {
		return nil, err
	}

	var children map[string]json.RawMessage
	if err := json.Unmarshal(body, &children); err != nil {
		return nil, fmt.Errorf("decode firebase log %s: %w", path, err)
	}
	if len(children) == 0 {
		return nil, nil
	}

	// push ids sort chronologically
	keys := make([]string, 0, len(children))
	for k := range children {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]telemetry.Entry, 0, len(keys))
	for _, k := range keys {
		var doc telemetry.Document
		if err := json.Unmarshal(children[k], &doc); err != nil {
			doc = telemetry.Document{}
		}
		if doc == nil {
			continue
		}
		entries = append(entries, telemetry.Entry{Key: k, Doc: doc})
	}
	return entries, nil
}

func (f *FirebaseTelemetryStore) Paths(ctx context.Context, root string) ([]string, error) {
	body, err := f.get(ctx, root, map[string]string{"shallow": "true"})
	if err != nil {
		return nil, err
	}
	var children map[string]any
	if err := json.Unmarshal(body, &children); err != nil {
		// a scalar at root has no children
		return []string{}, nil
	}
	paths := make([]string, 0, len(children))
	for k := range children {
		paths = append(paths, k)
	}
	sort.Strings(paths)
	return paths, nil
}
