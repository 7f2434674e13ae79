package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/typeshape/pkg/cache"
	"github.com/matzehuels/typeshape/pkg/errors"
	"github.com/matzehuels/typeshape/pkg/schema"
)

const testProject = `{
	"id": 0,
	"name": "client",
	"children": [{
		"id": 1,
		"name": "Client",
		"kindString": "Class",
		"children": [
			{"id": 2, "name": "url", "kindString": "Property", "type": {"type": "intrinsic", "name": "string"}},
			{"id": 3, "name": "status", "kindString": "Property", "type": {"type": "reference", "name": "Status", "target": 4}}
		]
	}, {
		"id": 4,
		"name": "Status",
		"kindString": "Type alias",
		"type": {"type": "union", "types": [{"type": "literal", "value": "ok"}, {"type": "literal", "value": "error"}]}
	}, {
		"id": 6,
		"name": "Opaque",
		"kindString": "Type alias",
		"type": {"type": "conditional"}
	}, {
		"id": 7,
		"name": "Rows",
		"kindString": "Type alias",
		"typeParameters": [{"name": "U"}],
		"type": {"type": "reference", "name": "T", "refersToTypeParameter": true}
	}]
}`

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		formats []string
		wantErr bool
	}{
		{nil, false},
		{[]string{"json"}, false},
		{[]string{"json", "dot", "svg", "tree"}, false},
		{[]string{"json", "png"}, true},
		{[]string{"JSON"}, true}, // case-sensitive
		{[]string{""}, true},
	}

	for _, tt := range tests {
		err := ValidateFormats(tt.formats)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormats(%v) code = %s", tt.formats, errors.GetCode(err))
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Project: []byte(testProject), Declaration: "Client.url"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}

	if opts.MaxDepth != DefaultMaxDepth {
		t.Errorf("MaxDepth should be %d, got %d", DefaultMaxDepth, opts.MaxDepth)
	}
	if opts.MaxNodes != DefaultMaxNodes {
		t.Errorf("MaxNodes should be %d, got %d", DefaultMaxNodes, opts.MaxNodes)
	}
	if opts.DereferenceDepth != DefaultDereferenceDepth {
		t.Errorf("DereferenceDepth should be %d, got %d", DefaultDereferenceDepth, opts.DereferenceDepth)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != DefaultFormat {
		t.Errorf("Formats should default to [%s], got %v", DefaultFormat, opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}

	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call should pass: %v", err)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing project", Options{Declaration: "Client"}, errors.ErrCodeInvalidInput},
		{"negative dereference depth", Options{Project: []byte("{}"), Declaration: "Client", DereferenceDepth: -1}, errors.ErrCodeInvalidConfig},
		{"empty declaration", Options{Project: []byte("{}")}, errors.ErrCodeInvalidDeclaration},
		{"bad declaration", Options{Project: []byte("{}"), Declaration: "Client..url"}, errors.ErrCodeInvalidDeclaration},
		{"negative max depth", Options{Project: []byte("{}"), Declaration: "Client", MaxDepth: -1}, errors.ErrCodeInvalidConfig},
		{"negative max nodes", Options{Project: []byte("{}"), Declaration: "Client", MaxNodes: -1}, errors.ErrCodeInvalidConfig},
		{"bad format", Options{Project: []byte("{}"), Declaration: "Client", Formats: []string{"pdf"}}, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestKeyOpts(t *testing.T) {
	opts := Options{Strict: true, MaxDepth: 12, MaxNodes: 99, DereferenceDepth: 3, Detailed: true}

	sk := opts.SchemaKeyOpts()
	if !sk.Strict || sk.MaxDepth != 12 || sk.MaxNodes != 99 || sk.DereferenceDepth != 3 {
		t.Errorf("SchemaKeyOpts() = %+v", sk)
	}
	ak := opts.ArtifactKeyOpts("dot")
	if ak.Format != "dot" || !ak.Detailed {
		t.Errorf("ArtifactKeyOpts() = %+v", ak)
	}
	no := opts.NormalizeOptions()
	if !no.Strict || no.MaxDepth != 12 || no.MaxNodes != 99 {
		t.Errorf("NormalizeOptions() = %+v", no)
	}
}

func TestLoad(t *testing.T) {
	project, err := Load([]byte(testProject), 0)
	if err != nil {
		t.Fatal(err)
	}
	if project.Hash != cache.Hash([]byte(testProject)) {
		t.Error("Hash should be the content hash of the input")
	}
	decl, embedded, err := project.Resolve("Client.status")
	if err != nil {
		t.Fatalf("Resolve(Client.status): %v", err)
	}
	if embedded != 1 || decl.Type.Dereferenced == nil {
		t.Errorf("Resolve(Client.status) embedded %d targets, want the Status alias", embedded)
	}
	if raw, _ := project.Index.Lookup("Client.status"); raw.Type.Dereferenced != nil {
		t.Error("Resolve should not modify the loaded tree")
	}
	if _, embedded, _ := project.Resolve("Client.url"); embedded != 0 {
		t.Errorf("Resolve(Client.url) embedded %d targets, want 0", embedded)
	}
	if _, err := project.Declaration("Client.missing"); !errors.Is(err, errors.ErrCodeDeclarationNotFound) {
		t.Errorf("Declaration(Client.missing) = %v", err)
	}

	if _, err := Load([]byte("{"), 0); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Load(truncated) = %v", err)
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Fatalf("NewRunner should fill defaults: %+v", r)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	defer r.Close()

	result, err := r.Execute(ctx, Options{
		Project:     []byte(testProject),
		Declaration: "Client.status",
		Formats:     []string{"json", "dot", "tree"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Declaration != "Client.status" {
		t.Errorf("Declaration = %q", result.Declaration)
	}
	if _, ok := result.Schema.Body.(*schema.Union); !ok {
		t.Fatalf("Schema body = %T, want dereferenced union", result.Schema.Body)
	}
	if result.Schema.Name != "status" {
		t.Errorf("Schema name = %q, want property name", result.Schema.Name)
	}
	if result.Stats.Declarations == 0 || result.Stats.Embedded != 1 || result.Stats.NodeCount != 3 {
		t.Errorf("Stats = %+v", result.Stats)
	}
	if result.SchemaHash == "" || result.ProjectHash == "" {
		t.Error("hashes should be set")
	}
	if !strings.Contains(string(result.Artifacts["json"]), `"value": "ok"`) {
		t.Errorf("json artifact = %s", result.Artifacts["json"])
	}
	if !strings.HasPrefix(string(result.Artifacts["dot"]), "digraph G {") {
		t.Errorf("dot artifact = %s", result.Artifacts["dot"])
	}
	if !strings.Contains(string(result.Artifacts["tree"]), "status: union") {
		t.Errorf("tree artifact = %s", result.Artifacts["tree"])
	}
	if result.CacheInfo.SchemaHit || result.CacheInfo.RenderHit {
		t.Error("NullCache should never hit")
	}
}

func TestRunnerExecuteErrors(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"not found", Options{Project: []byte(testProject), Declaration: "Client.nope"}, errors.ErrCodeDeclarationNotFound},
		{"unsupported", Options{Project: []byte(testProject), Declaration: "Opaque"}, errors.ErrCodeUnsupported},
		{"strict", Options{Project: []byte(testProject), Declaration: "Rows", Strict: true}, errors.ErrCodeParamNotInScope},
		{"invalid json", Options{Project: []byte("[1"), Declaration: "Client"}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(ctx, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Execute() = %v, want code %s", err, tt.code)
			}
		})
	}

	// Lenient mode falls through to a plain reference.
	result, err := r.Execute(ctx, Options{Project: []byte(testProject), Declaration: "Rows"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := result.Schema.Body.(*schema.Reference); !ok {
		t.Errorf("lenient body = %T, want reference", result.Schema.Body)
	}
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(ctx, Options{Project: []byte(testProject), Declaration: "Client.url"})
	if err != context.Canceled {
		t.Errorf("Execute() = %v, want context.Canceled", err)
	}
}

func TestRunnerCaching(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()

	opts := Options{
		Project:     []byte(testProject),
		Declaration: "Client.status",
		Formats:     []string{"json", "tree"},
	}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.SchemaHit || first.CacheInfo.RenderHit {
		t.Fatal("first run should miss")
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.SchemaHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if second.SchemaHash != first.SchemaHash {
		t.Error("cached schema should hash identically")
	}
	if string(second.Artifacts["tree"]) != string(first.Artifacts["tree"]) {
		t.Error("cached artifact differs")
	}

	// Refresh bypasses the schema cache.
	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.SchemaHit {
		t.Error("refresh should recompute the schema")
	}

	// Different normalizer options use a different key.
	strict := Options{Project: opts.Project, Declaration: opts.Declaration, Strict: true}
	fourth, err := r.Execute(ctx, strict)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.SchemaHit {
		t.Error("strict run should not reuse the lenient schema")
	}
}

type memCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	sets   int
	setErr error
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	return d, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = data
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) Close() error { return nil }

func TestRunnerScopedKeys(t *testing.T) {
	ctx := context.Background()
	mc := &memCache{}
	a := NewRunner(mc, cache.NewScopedKeyer(nil, "tenant-a"), nil)
	b := NewRunner(mc, cache.NewScopedKeyer(nil, "tenant-b"), nil)

	opts := Options{Project: []byte(testProject), Declaration: "Client.url"}
	if _, err := a.Execute(ctx, opts); err != nil {
		t.Fatal(err)
	}
	result, err := b.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if result.CacheInfo.SchemaHit {
		t.Error("scoped keyers should not share entries")
	}
	if mc.sets != 4 {
		t.Errorf("sets = %d, want one schema and one artifact per tenant", mc.sets)
	}
}

func TestRunnerCacheWriteFailure(t *testing.T) {
	mc := &memCache{setErr: errors.New(errors.ErrCodeInternal, "disk full")}
	r := NewRunner(mc, nil, nil)

	result, err := r.Execute(context.Background(), Options{Project: []byte(testProject), Declaration: "Client.url"})
	if err != nil {
		t.Fatalf("cache write failure should not fail the run: %v", err)
	}
	if result.Schema == nil {
		t.Fatal("missing schema")
	}
	if mc.sets != 2 {
		t.Errorf("sets = %d, want one attempt per entry for non-retryable errors", mc.sets)
	}
}

func TestRunnerSchemaHitSkipsLoad(t *testing.T) {
	ctx := context.Background()
	mc := &memCache{}
	r := NewRunner(mc, nil, nil)

	// Seed the schema cache under the hash of bytes that do not parse. A hit
	// must never reach the loader.
	garbage := []byte("not a project")
	opts := Options{Project: garbage, Declaration: "Client.url"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(&schema.Node{Name: "url", Body: &schema.Intrinsic{Name: "string"}})
	if err != nil {
		t.Fatal(err)
	}
	key := r.Keyer.SchemaKey(cache.Hash(garbage), opts.Declaration, opts.SchemaKeyOpts())
	if err := mc.Set(ctx, key, data, 0); err != nil {
		t.Fatal(err)
	}

	result, err := r.Execute(ctx, Options{Project: garbage, Declaration: "Client.url"})
	if err != nil {
		t.Fatalf("Execute() = %v, want schema cache hit", err)
	}
	if !result.CacheInfo.SchemaHit || result.Stats.Declarations != 0 || result.Stats.LoadTime != 0 {
		t.Errorf("hit should skip loading: info %+v, stats %+v", result.CacheInfo, result.Stats)
	}
	if result.ProjectHash != cache.Hash(garbage) {
		t.Error("ProjectHash should be the content hash of the input")
	}

	// Refresh goes through the loader and fails on the bad input.
	_, err = r.Execute(ctx, Options{Project: garbage, Declaration: "Client.url", Refresh: true})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Execute(refresh) = %v, want INVALID_INPUT", err)
	}
}

// denseProject returns n interfaces whose properties reference every other
// interface.
func denseProject(n int) []byte {
	var decls []string
	for i := 1; i <= n; i++ {
		var props []string
		for j := 1; j <= n; j++ {
			if j == i {
				continue
			}
			props = append(props, fmt.Sprintf(
				`{"id": %d, "name": "p%d", "kindString": "Property", "type": {"type": "reference", "name": "I%d", "target": %d}}`,
				i*1000+j, j, j, j))
		}
		decls = append(decls, fmt.Sprintf(`{"id": %d, "name": "I%d", "kindString": "Interface", "children": [%s]}`,
			i, i, strings.Join(props, ",")))
	}
	return []byte(fmt.Sprintf(`{"id": 0, "name": "dense", "children": [%s]}`, strings.Join(decls, ",")))
}

func TestRunnerDenseProject(t *testing.T) {
	const n = 12
	r := NewRunner(nil, nil, nil)

	project, err := Load(denseProject(n), 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, embedded, err := project.Resolve("I1"); err != nil || embedded != n-1 {
		t.Errorf("Resolve(I1) = %d, %v, want each other interface embedded once", embedded, err)
	}

	_, err = r.Execute(context.Background(), Options{
		Project:     denseProject(n),
		Declaration: "I1",
		MaxNodes:    100,
	})
	if !errors.Is(err, errors.ErrCodeLimitExceeded) {
		t.Errorf("Execute() = %v, want LIMIT_EXCEEDED", err)
	}
}
