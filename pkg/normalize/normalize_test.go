package normalize

import (
	"encoding/json"
	"reflect"
	"sync"
	"testing"

	"github.com/matzehuels/typeshape/pkg/errors"
	"github.com/matzehuels/typeshape/pkg/schema"
	"github.com/matzehuels/typeshape/pkg/typedoc"
)

func rawNode(t *testing.T, data string) *typedoc.RawNode {
	t.Helper()
	var n typedoc.RawNode
	if err := json.Unmarshal([]byte(data), &n); err != nil {
		t.Fatalf("decode raw node: %v", err)
	}
	return &n
}

func encode(t *testing.T, n *schema.Node) string {
	t.Helper()
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return string(data)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "intrinsic with comment",
			raw:  `{"name":"supabaseUrl","comment":{"shortText":"The unique Supabase URL"},"type":{"type":"intrinsic","name":"string"}}`,
			want: `{"name":"supabaseUrl","comment":{"shortText":"The unique Supabase URL"},"type":{"type":"string"}}`,
		},
		{
			name: "literal union keeps order",
			raw:  `{"name":"status","type":{"type":"union","types":[{"type":"literal","value":"ok"},{"type":"literal","value":"timed out"},{"type":"literal","value":"error"}]}}`,
			want: `{"name":"status","type":{"type":"union","types":[{"type":{"type":"literal","value":"ok"}},{"type":{"type":"literal","value":"timed out"}},{"type":{"type":"literal","value":"error"}}]}}`,
		},
		{
			name: "union of nulls is empty",
			raw:  `{"type":{"type":"union","types":[null,null]}}`,
			want: `{"type":{"type":"union","types":[]}}`,
		},
		{
			name: "union drops untagged and unsupported members",
			raw:  `{"type":{"type":"union","types":[{"name":"x"},{"type":"template-literal"},{"type":"intrinsic","name":"number"}]}}`,
			want: `{"type":{"type":"union","types":[{"type":{"type":"number"}}]}}`,
		},
		{
			name: "intersection",
			raw:  `{"type":{"type":"intersection","types":[{"type":"reference","name":"A"},{"type":"reference","name":"B"}]}}`,
			want: `{"type":{"type":"intersection","types":[{"name":"A","type":{"type":"reference","typeArguments":[]}},{"name":"B","type":{"type":"reference","typeArguments":[]}}]}}`,
		},
		{
			name: "null literal",
			raw:  `{"type":{"type":"literal","value":null}}`,
			want: `{"type":{"type":"literal","value":null}}`,
		},
		{
			name: "array of any",
			raw:  `{"type":{"type":"array","elementType":{"type":"intrinsic","name":"any"}}}`,
			want: `{"type":{"type":"array","elementType":{"type":{"type":"any"}}}}`,
		},
		{
			name: "array of unsupported element",
			raw:  `{"type":{"type":"array","elementType":{"type":"template-literal"}}}`,
			want: `{"type":{"type":"array"}}`,
		},
		{
			name: "readonly array",
			raw:  `{"type":{"type":"typeOperator","operator":"readonly","target":{"type":"array","elementType":{"type":"intrinsic","name":"string"}}}}`,
			want: `{"type":{"type":"readonly array","innerType":{"type":{"type":"array","elementType":{"type":{"type":"string"}}}}}}`,
		},
		{
			name: "keyof reference",
			raw:  `{"name":"column","type":{"type":"typeOperator","operator":"keyof","target":{"type":"reference","name":"Row"}}}`,
			want: `{"name":"column","type":{"type":"keyof reference","innerType":{"name":"Row","type":{"type":"reference","typeArguments":[]}}}}`,
		},
		{
			name: "indexed access",
			raw:  `{"type":{"type":"indexedAccess","objectType":{"type":"reference","name":"User"},"indexType":{"type":"literal","value":"id"}}}`,
			want: `{"type":{"type":"indexedAccess","objectType":{"name":"User","type":{"type":"reference","typeArguments":[]}},"indexType":{"type":{"type":"literal","value":"id"}}}}`,
		},
		{
			name: "unresolved reference with arguments",
			raw:  `{"type":{"type":"reference","name":"Promise","typeArguments":[{"type":"intrinsic","name":"void"}]}}`,
			want: `{"name":"Promise","type":{"type":"reference","typeArguments":[{"type":{"type":"void"}}]}}`,
		},
		{
			name: "reference keeps own name",
			raw:  `{"name":"fetch","type":{"type":"reference","name":"Fetch"}}`,
			want: `{"name":"fetch","type":{"type":"reference","typeArguments":[]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := rawNode(t, tt.raw)
			got, err := Normalize(node.TypeKind(), node, nil, tt.name)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if s := encode(t, got); s != tt.want {
				t.Errorf("Normalize =\n%s\nwant\n%s", s, tt.want)
			}
		})
	}
}

func TestNormalizeUnsupported(t *testing.T) {
	tests := []struct {
		name string
		kind string
		raw  string
	}{
		{"template literal", "template-literal", `{"type":{"type":"template-literal"}}`},
		{"conditional", "conditional", `{"type":{"type":"conditional"}}`},
		{"empty kind", "", `{"name":"x"}`},
		{"unknown operator", "typeOperator", `{"type":{"type":"typeOperator","operator":"unique","target":{"type":"intrinsic","name":"symbol"}}}`},
		{"operator on unsupported operand", "typeOperator", `{"type":{"type":"typeOperator","operator":"readonly","target":{"type":"template-literal"}}}`},
		{"reflection without declaration", "reflection", `{"type":{"type":"reflection"}}`},
		{"reflection with empty declaration", "reflection", `{"type":{"type":"reflection","declaration":{"name":"__type"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.kind, rawNode(t, tt.raw), nil, tt.name)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if got != nil {
				t.Errorf("Normalize = %s, want nil", encode(t, got))
			}
		})
	}

	if got, err := Normalize("intrinsic", nil, nil, "nil"); got != nil || err != nil {
		t.Errorf("Normalize(nil) = %v, %v", got, err)
	}
}

func TestNormalizeMetadata(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "all fields",
			raw:  `{"name":"limit","comment":{"shortText":"Max rows"},"defaultValue":"10","flags":{"isOptional":true},"type":{"type":"intrinsic","name":"number"}}`,
			want: `{"name":"limit","comment":{"shortText":"Max rows"},"defaultValue":"10","isOptional":true,"type":{"type":"number"}}`,
		},
		{
			name: "explicit not optional",
			raw:  `{"name":"id","flags":{"isOptional":false},"type":{"type":"intrinsic","name":"string"}}`,
			want: `{"name":"id","isOptional":false,"type":{"type":"string"}}`,
		},
		{
			name: "flags without optional",
			raw:  `{"name":"rest","flags":{"isRest":true},"type":{"type":"intrinsic","name":"string"}}`,
			want: `{"name":"rest","type":{"type":"string"}}`,
		},
		{
			name: "null comment omitted",
			raw:  `{"name":"x","comment":null,"type":{"type":"intrinsic","name":"boolean"}}`,
			want: `{"name":"x","type":{"type":"boolean"}}`,
		},
		{
			name: "anonymous type name dropped",
			raw:  `{"name":"__type","type":{"type":"intrinsic","name":"unknown"}}`,
			want: `{"type":{"type":"unknown"}}`,
		},
		{
			name: "anonymous object name dropped",
			raw:  `{"name":"__object","type":{"type":"intrinsic","name":"object"}}`,
			want: `{"type":{"type":"object"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := rawNode(t, tt.raw)
			got, err := Normalize(node.TypeKind(), node, nil, tt.name)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if s := encode(t, got); s != tt.want {
				t.Errorf("Normalize =\n%s\nwant\n%s", s, tt.want)
			}
		})
	}
}

func TestNormalizeReflection(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "children become interface",
			raw:  `{"name":"options","type":{"type":"reflection","declaration":{"name":"__type","children":[{"name":"schema","flags":{"isOptional":true},"type":{"type":"intrinsic","name":"string"}},{"name":"broken"}]}}}`,
			want: `{"name":"options","type":{"type":"interface","properties":[{"name":"schema","isOptional":true,"type":{"type":"string"}}]}}`,
		},
		{
			name: "index signature becomes indexed object",
			raw:  `{"type":{"type":"reflection","declaration":{"name":"__type","indexSignature":{"name":"__index","kindString":"Index signature","parameters":[{"name":"key","type":{"type":"intrinsic","name":"string"}}],"type":{"type":"intrinsic","name":"number"}}}}}`,
			want: `{"type":{"type":"indexedObject","indexes":[{"name":"key","type":{"type":"string"}}],"value":{"type":{"type":"number"}}}}`,
		},
		{
			name: "legacy index signature list",
			raw:  `{"type":{"type":"reflection","declaration":{"indexSignatures":[{"parameters":[{"name":"k","type":{"type":"intrinsic","name":"string"}}],"type":{"type":"intrinsic","name":"any"}}]}}}`,
			want: `{"type":{"type":"indexedObject","indexes":[{"name":"k","type":{"type":"string"}}],"value":{"type":{"type":"any"}}}}`,
		},
		{
			name: "signatures become function",
			raw:  `{"name":"cb","type":{"type":"reflection","declaration":{"name":"__type","signatures":[{"name":"__type","kindString":"Call signature","parameters":[{"name":"err","flags":{"isOptional":true},"type":{"type":"intrinsic","name":"string"}}],"type":{"type":"intrinsic","name":"void"}},{"kindString":"Constructor signature","type":{"type":"intrinsic","name":"void"}}]}}}`,
			want: `{"name":"cb","type":{"type":"function","signatures":[{"type":{"type":"functionSignature","parameters":[{"name":"err","isOptional":true,"type":{"type":"string"}}],"returns":{"type":{"type":"void"}}}}]}}`,
		},
		{
			name: "children win over signatures",
			raw:  `{"type":{"type":"reflection","declaration":{"children":[{"name":"a","type":{"type":"intrinsic","name":"string"}}],"signatures":[{"kindString":"Call signature"}]}}}`,
			want: `{"type":{"type":"interface","properties":[{"name":"a","type":{"type":"string"}}]}}`,
		},
		{
			name: "index signature wins over signatures",
			raw:  `{"type":{"type":"reflection","declaration":{"indexSignature":{"parameters":[]},"signatures":[{"kindString":"Call signature"}]}}}`,
			want: `{"type":{"type":"indexedObject","indexes":[]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := rawNode(t, tt.raw)
			got, err := Normalize(typedoc.KindReflection, node, nil, tt.name)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if s := encode(t, got); s != tt.want {
				t.Errorf("Normalize =\n%s\nwant\n%s", s, tt.want)
			}
		})
	}
}

func TestNormalizeDereferenced(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "interface target renamed",
			raw:  `{"name":"client","type":{"type":"reference","name":"SupabaseClient","dereferenced":{"name":"SupabaseClient","kindString":"Interface","comment":{"shortText":"Client"},"children":[{"name":"url","type":{"type":"intrinsic","name":"string"}}]}}}`,
			want: `{"name":"client","comment":{"shortText":"Client"},"type":{"type":"interface","properties":[{"name":"url","type":{"type":"string"}}]}}`,
		},
		{
			name: "own comment wins",
			raw:  `{"name":"client","comment":{"shortText":"Mine"},"type":{"type":"reference","name":"C","dereferenced":{"name":"C","comment":{"shortText":"Theirs"},"children":[{"name":"a","type":{"type":"intrinsic","name":"number"}}]}}}`,
			want: `{"name":"client","comment":{"shortText":"Mine"},"type":{"type":"interface","properties":[{"name":"a","type":{"type":"number"}}]}}`,
		},
		{
			name: "alias target with type",
			raw:  `{"name":"state","type":{"type":"reference","name":"Status","dereferenced":{"name":"Status","type":{"type":"union","types":[{"type":"literal","value":"on"},{"type":"literal","value":"off"}]}}}}`,
			want: `{"name":"state","type":{"type":"union","types":[{"type":{"type":"literal","value":"on"}},{"type":{"type":"literal","value":"off"}}]}}`,
		},
		{
			name: "unnamed reference keeps target name",
			raw:  `{"type":{"type":"reference","name":"Options","dereferenced":{"name":"Options","children":[{"name":"a","type":{"type":"intrinsic","name":"string"}}]}}}`,
			want: `{"name":"Options","type":{"type":"interface","properties":[{"name":"a","type":{"type":"string"}}]}}`,
		},
		{
			name: "empty target falls back to reference",
			raw:  `{"name":"x","type":{"type":"reference","name":"X","dereferenced":{}}}`,
			want: `{"name":"x","type":{"type":"reference","typeArguments":[]}}`,
		},
		{
			name: "unsupported target falls back to reference",
			raw:  `{"name":"x","type":{"type":"reference","name":"X","dereferenced":{"name":"X","type":{"type":"template-literal"}}}}`,
			want: `{"name":"x","type":{"type":"reference","typeArguments":[]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := rawNode(t, tt.raw)
			got, err := Normalize(typedoc.KindReference, node, nil, tt.name)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if s := encode(t, got); s != tt.want {
				t.Errorf("Normalize =\n%s\nwant\n%s", s, tt.want)
			}
		})
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	raw := `{"name":"query","type":{"type":"reflection","declaration":{"signatures":[{"kindString":"Call signature","typeParameter":[{"name":"T","default":{"type":"intrinsic","name":"any"}}],"parameters":[{"name":"row","type":{"type":"reference","name":"T","refersToTypeParameter":true}}],"type":{"type":"array","elementType":{"type":"reference","name":"T","refersToTypeParameter":true}}}]}}}`
	node := rawNode(t, raw)
	before, _ := json.Marshal(node)

	first, err := Normalize(typedoc.KindReflection, node, nil, "query")
	if err != nil {
		t.Fatal(err)
	}
	second, err := Normalize(typedoc.KindReflection, rawNode(t, raw), nil, "query")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%s\n%s", encode(t, first), encode(t, second))
	}

	after, _ := json.Marshal(node)
	if string(before) != string(after) {
		t.Error("Normalize modified its input")
	}
}

func TestNormalizeConcurrent(t *testing.T) {
	node := rawNode(t, `{"name":"tags","type":{"type":"array","elementType":{"type":"union","types":[{"type":"intrinsic","name":"string"},{"type":"literal","value":1}]}}}`)
	want, err := Normalize(typedoc.KindArray, node, nil, "tags")
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	results := make([]*schema.Node, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Normalize(typedoc.KindArray, node, nil, "tags")
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if !reflect.DeepEqual(got, want) {
			t.Errorf("result %d differs", i)
		}
	}
}

func TestNormalizeDepthGuard(t *testing.T) {
	t.Run("deep nesting", func(t *testing.T) {
		elem := &typedoc.RawType{Kind: typedoc.KindIntrinsic, Name: "string"}
		for i := 0; i < 10; i++ {
			elem = &typedoc.RawType{Kind: typedoc.KindArray, ElementType: elem}
		}
		nz := New(Options{MaxDepth: 4})
		_, err := nz.Normalize(typedoc.KindArray, elem.Node(), nil, "deep")
		if !errors.Is(err, errors.ErrCodeDepthExceeded) {
			t.Errorf("error = %v, want %s", err, errors.ErrCodeDepthExceeded)
		}

		if _, err := New(Options{MaxDepth: 20}).Normalize(typedoc.KindArray, elem.Node(), nil, "deep"); err != nil {
			t.Errorf("within limit: %v", err)
		}
	})

	t.Run("cyclic dereference", func(t *testing.T) {
		ref := &typedoc.RawType{Kind: typedoc.KindReference, Name: "Tree"}
		ref.Dereferenced = &typedoc.RawNode{
			Name:     "Tree",
			Children: []*typedoc.RawNode{{Name: "child", Type: ref}},
		}
		_, err := Normalize(typedoc.KindReference, ref.Node(), nil, "Tree")
		if !errors.Is(err, errors.ErrCodeDepthExceeded) {
			t.Errorf("error = %v, want %s", err, errors.ErrCodeDepthExceeded)
		}
	})
}

func TestNormalizeNodeBudget(t *testing.T) {
	// Each union lists the same member twice, so twelve levels of shared
	// input expand to 8191 output nodes.
	shared := &typedoc.RawType{Kind: typedoc.KindIntrinsic, Name: "string"}
	for i := 0; i < 12; i++ {
		shared = &typedoc.RawType{Kind: typedoc.KindUnion, Types: []*typedoc.RawType{shared, shared}}
	}

	_, err := New(Options{MaxNodes: 1000}).Normalize(typedoc.KindUnion, shared.Node(), nil, "wide")
	if !errors.Is(err, errors.ErrCodeLimitExceeded) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeLimitExceeded)
	}

	n, err := Normalize(typedoc.KindUnion, shared.Node(), nil, "wide")
	if err != nil {
		t.Fatalf("within default budget: %v", err)
	}
	if got := schema.Count(n); got != 1<<13-1 {
		t.Errorf("Count = %d, want %d", got, 1<<13-1)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.MaxDepth != DefaultMaxDepth || opts.MaxNodes != DefaultMaxNodes || opts.Logger == nil {
		t.Errorf("defaults not applied: %+v", opts)
	}

	bad := Options{MaxDepth: -1}
	if err := bad.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("negative depth error = %v", err)
	}
	if got := New(bad).Options().MaxDepth; got != DefaultMaxDepth {
		t.Errorf("New with invalid depth = %d, want %d", got, DefaultMaxDepth)
	}
	if got := New(Options{MaxNodes: -5}).Options().MaxNodes; got != DefaultMaxNodes {
		t.Errorf("New with invalid node budget = %d, want %d", got, DefaultMaxNodes)
	}
}

func TestSupported(t *testing.T) {
	for _, k := range Kinds {
		if !Supported(string(k)) {
			t.Errorf("Supported(%q) = false", k)
		}
	}
	for _, k := range []string{"template-literal", "conditional", "tuple", ""} {
		if Supported(k) {
			t.Errorf("Supported(%q) = true", k)
		}
	}
}
