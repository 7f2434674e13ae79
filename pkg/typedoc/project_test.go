package typedoc

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleProject = `{
	"id": 0,
	"name": "supabase-js",
	"kind": 1,
	"children": [
		{
			"id": 1,
			"name": "@supabase/supabase-js",
			"kindString": "Module",
			"children": [
				{
					"id": 2,
					"name": "SupabaseClient",
					"kindString": "Class",
					"children": [
						{
							"id": 3,
							"name": "from",
							"kindString": "Method",
							"signatures": [
								{
									"id": 4,
									"name": "from",
									"kindString": "Call signature",
									"parameters": [
										{"id": 5, "name": "relation", "kindString": "Parameter", "type": {"type": "intrinsic", "name": "string"}}
									],
									"type": {"type": "reference", "name": "QueryBuilder", "target": 6}
								}
							]
						}
					]
				},
				{
					"id": 6,
					"name": "QueryBuilder",
					"kindString": "Interface",
					"children": [
						{"id": 7, "name": "url", "kindString": "Property", "type": {"type": "intrinsic", "name": "string"}}
					]
				}
			]
		}
	]
}`

func TestReadProject(t *testing.T) {
	p, err := ReadProject(strings.NewReader(sampleProject))
	if err != nil {
		t.Fatalf("ReadProject: %v", err)
	}
	if p.Name != "supabase-js" {
		t.Errorf("Name = %q, want supabase-js", p.Name)
	}
	if len(p.Children) != 1 {
		t.Fatalf("len(Children) = %d, want 1", len(p.Children))
	}
}

func TestReadProjectInvalid(t *testing.T) {
	if _, err := ReadProject(strings.NewReader(`{"children": [`)); err == nil {
		t.Error("ReadProject should fail on truncated input")
	}
	if _, err := ParseProject([]byte(`[]`)); err == nil {
		t.Error("ParseProject should fail on a non-object document")
	}
}

func TestLoadProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.json")
	if err := os.WriteFile(path, []byte(sampleProject), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadProject(path)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if p.Children[0].Name != "@supabase/supabase-js" {
		t.Errorf("first child = %q", p.Children[0].Name)
	}

	if _, err := LoadProject(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("LoadProject should fail for a missing file")
	}
}

func TestIndex(t *testing.T) {
	p, err := ParseProject([]byte(sampleProject))
	if err != nil {
		t.Fatal(err)
	}
	idx := NewIndex(p)

	wantPaths := []string{
		`"@supabase/supabase-js"`,
		`"@supabase/supabase-js".SupabaseClient`,
		`"@supabase/supabase-js".SupabaseClient.from`,
		`"@supabase/supabase-js".QueryBuilder`,
		`"@supabase/supabase-js".QueryBuilder.url`,
	}
	if got := idx.Declarations(); !reflect.DeepEqual(got, wantPaths) {
		t.Errorf("Declarations() = %q, want %q", got, wantPaths)
	}
	if idx.Len() != len(wantPaths) {
		t.Errorf("Len() = %d, want %d", idx.Len(), len(wantPaths))
	}

	n, ok := idx.Lookup(`"@supabase/supabase-js".SupabaseClient.from`)
	if !ok || n.ID != 3 {
		t.Errorf("Lookup(from) = %+v, %v", n, ok)
	}
	if _, ok := idx.Lookup("SupabaseClient.from"); ok {
		t.Error("Lookup should require the full path")
	}

	for _, id := range []int{2, 4, 5, 6, 7} {
		if _, ok := idx.ByID(id); !ok {
			t.Errorf("ByID(%d) not found", id)
		}
	}
	if _, ok := idx.ByID(99); ok {
		t.Error("ByID(99) should not be found")
	}
}

func TestIndexDeclarationsIsACopy(t *testing.T) {
	idx := NewIndex(&RawNode{Children: []*RawNode{{Name: "a"}}})
	got := idx.Declarations()
	got[0] = "mutated"
	if idx.Declarations()[0] != "a" {
		t.Error("Declarations should return a copy")
	}
}

func TestNewIndexNil(t *testing.T) {
	idx := NewIndex(nil)
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0", idx.Len())
	}
}
