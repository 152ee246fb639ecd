// Package core holds the error taxonomy shared by the tokenizer, schema store,
// query model, and execution engine.
//
// Callers distinguish failures with errors.Is against the exported sentinels:
//
//	if errors.Is(err, core.ErrAmbiguousAttr) {
//	    // qualify the column
//	}
package core
