// Package pkg provides the core libraries for Typeshape.
//
// # Overview
//
// Typeshape reads the JSON that TypeDoc emits for a TypeScript library and
// turns the type of a single declaration into a small, self-contained schema
// that documentation renderers can draw without knowing TypeDoc's model. The
// pkg directory is organized into three areas:
//
//  1. Domain logic: [typedoc], [normalize], [schema], [render]
//  2. Orchestration: [pipeline]
//  3. Infrastructure: [cache], [store], [server], [config], [observability]
//
// # Architecture
//
// The typical data flow:
//
//	TypeDoc project JSON
//	         ↓
//	    [typedoc] package (decode, index, dereference by id)
//	         ↓
//	    [normalize] package (raw type graph → schema tree)
//	         ↓
//	    [render] package (JSON, DOT, SVG, text outline)
//
// # Quick Start
//
//	project, _ := pipeline.Load(data, 8)
//	decl, _ := project.Declaration("PostgrestClient.from")
//	node, _ := normalize.New(normalize.Options{}).NormalizeDeclaration(decl, "PostgrestClient.from")
//	out, _ := render.Render(ctx, node, render.FormatJSON, render.DOTOptions{})
//
// Most callers go through [pipeline.Runner], which adds caching and hooks:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Project:     data,
//	    Declaration: "PostgrestClient.from",
//	    Formats:     []string{"json", "svg"},
//	})
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test -run Example ./... # Examples only
package pkg
