// Package internal provides the core of the rmlint Ruby linter.
//
// Key components:
//
// Engine: parses Ruby files with tree-sitter, runs every enabled rule over
// the syntax tree in a single walk and filters the result through nolint
// comments. Results can be cached on disk and re-computed on file change.
//
// Cache: a msgpack-encoded map from file path to issues, invalidated by
// content hash, modification time, age and configuration changes.
//
// Rules live in internal/lints and are registered in rule_set.go. Each rule
// pairs a declarative pattern (internal/pattern) with the callbacks that
// describe and correct a match (internal/rules, internal/rewrite).
//
// Usage:
//
//	engine, err := internal.NewEngine(".", nil)
//	if err != nil {
//	    // handle error
//	}
//
//	issues, err := engine.Run("path/to/file.rb")
//	if err != nil {
//	    // handle error
//	}
//
//	for _, issue := range issues {
//	    fmt.Printf("Found issue: %s at %s\n", issue.Message, issue.Start)
//	}
//
// This package is intended for internal use within the linting tool and should not be
// imported by external packages.
package internal
