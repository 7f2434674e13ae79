// Package normalize converts raw documentation-generator type nodes into the
// schema consumed by renderers.
//
// # Dispatch
//
// [Normalizer.Normalize] selects a handler by the raw kind tag: array,
// indexedAccess, intersection, intrinsic, literal, reference, reflection,
// typeOperator and union. Every other tag, template-literal included, is
// unsupported and yields (nil, nil); callers drop such nodes rather than
// failing. Handlers recurse into their children with the current node pushed
// onto the [Scope] chain.
//
// # References
//
// A reference is resolved against, in order:
//
//   - the nearest enclosing generic parameter list, substituting the
//     parameter's concrete type or wrapping its default in typeParamDefault
//   - the dereferenced target embedded by [typedoc.Dereference], renamed to
//     the referring node
//   - nothing, producing a reference node with the name and type arguments
//
// Only the nearest list is searched. With Options.Strict, a reference flagged
// as a generic parameter that is missing from that list fails with
// ErrCodeParamNotInScope; otherwise the lookup falls through.
//
// # Metadata
//
// Name, comment, default value and isOptional are copied only when the raw
// node supplies them. The synthesized names "__type" and "__object" are
// dropped.
//
// # Example
//
//	n, err := normalize.Normalize("union", node, nil, "User.status")
//	if err != nil {
//	    return err
//	}
//	out, _ := json.Marshal(n)
package normalize
