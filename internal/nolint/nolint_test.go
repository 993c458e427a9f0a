package nolint

import (
	"context"
	"go/token"
	"testing"

	"github.com/gnolang/rmlint/internal/parse"
	"github.com/gnolang/rmlint/internal/syntax"
)

func parseSource(t *testing.T, src string) *syntax.File {
	t.Helper()
	f, err := parse.Ruby(context.Background(), "test.rb", []byte(src))
	if err != nil {
		t.Fatalf("Failed to parse source: %v", err)
	}
	return f
}

func TestParseNolintRules(t *testing.T) {
	t.Parallel()
	input := "rule1,rule2, rule3"
	expected := []string{"rule1", "rule2", "rule3"}
	result := parseIgnoreRuleNames(input)
	if len(result) != len(expected) {
		t.Errorf("Expected %d rules, got %d", len(expected), len(result))
	}
	for _, rule := range expected {
		if _, exists := result[rule]; !exists {
			t.Errorf("Expected rule %s not found", rule)
		}
	}
}

func TestDirective(t *testing.T) {
	t.Parallel()
	tests := []struct {
		text string
		rest string
		ok   bool
	}{
		{"# nolint", "", true},
		{"#nolint", "", true},
		{"# nolint:rule1", ":rule1", true},
		{"# nolint  ", "", true},
		{"# nolintfoo", "foo", true},
		{"# frozen_string_literal: true", "", false},
		{"// nolint", "", false},
	}
	for _, tt := range tests {
		rest, ok := directive(tt.text)
		if ok != tt.ok || rest != tt.rest {
			t.Errorf("directive(%q) = (%q, %v), want (%q, %v)", tt.text, rest, ok, tt.rest, tt.ok)
		}
	}
}

func TestIsNolint(t *testing.T) {
	t.Parallel()
	source := `require "fileutils"

def clean(dir)
  # nolint
  FileUtils.rm_rf(dir)
  FileUtils.rm_rf(dir)
  FileUtils.rm_rf(dir) # nolint:rule1
  # nolint:rule2
  FileUtils.rm_f(
    dir,
  )
  FileUtils.rm_f(dir) # nolintrule1
  # nolint:
  FileUtils.rm_f(dir)
end
`
	manager := ParseComments(parseSource(t, source))

	tests := []struct {
		rule     string
		line     int
		expected bool
	}{
		{"anyrule", 4, true},  // the comment line itself
		{"anyrule", 5, true},  // covered by nolint without rules
		{"anyrule", 6, false}, // not covered
		{"rule1", 7, true},    // inline nolint:rule1
		{"rule2", 7, false},   // inline comment only lists rule1
		{"rule2", 9, true},    // next statement
		{"rule2", 11, true},   // statement spans lines 9-11
		{"rule3", 9, false},   // rule3 not listed
		{"rule1", 12, false},  // malformed directive is ignored
		{"rule1", 14, false},  // empty rule list after colon is ignored
	}

	for _, test := range tests {
		pos := positionAtLine(test.line)
		result := manager.IsNolint(pos, test.rule)
		if result != test.expected {
			t.Errorf("IsNolint at line %d for rule '%s': expected %v, got %v", test.line, test.rule, test.expected, result)
		}
	}
}

func TestFileLevelNolint(t *testing.T) {
	t.Parallel()
	source := `# nolint:no-fileutils-rmrf

FileUtils.rm_rf("a")

FileUtils.rm_rf("b")
`
	manager := ParseComments(parseSource(t, source))
	for _, line := range []int{1, 3, 5} {
		if !manager.IsNolint(positionAtLine(line), "no-fileutils-rmrf") {
			t.Errorf("Expected line %d to be nolinted", line)
		}
	}
	if manager.IsNolint(positionAtLine(3), "other-rule") {
		t.Errorf("Expected other-rule to be reported")
	}
}

func TestNolintFirstStatementOfBody(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		source   string
		nolinted []int
		reported []int
	}{
		{
			name:     "method body",
			source:   "def clean(dir)\n  # nolint\n  rm_rf(a)\n  rm_rf(b)\n  rm_rf(c)\nend\n",
			nolinted: []int{3},
			reported: []int{4, 5},
		},
		{
			name:     "do block body",
			source:   "dirs.each do |d|\n  # nolint\n  FileUtils.rm_rf(d)\n  FileUtils.rm_f(d)\nend\n",
			nolinted: []int{3},
			reported: []int{4},
		},
		{
			name:     "if branch",
			source:   "if dir\n  # nolint\n  FileUtils.rm_rf(dir)\n  FileUtils.rm_f(dir)\nelse\n  FileUtils.rm_f(x)\nend\n",
			nolinted: []int{3},
			reported: []int{4, 6},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			manager := ParseComments(parseSource(t, tt.source))
			for _, line := range tt.nolinted {
				if !manager.IsNolint(positionAtLine(line), "any") {
					t.Errorf("Expected line %d to be nolinted", line)
				}
			}
			for _, line := range tt.reported {
				if manager.IsNolint(positionAtLine(line), "any") {
					t.Errorf("Expected line %d to be reported", line)
				}
			}
		})
	}
}

func TestNolintAboveFirstStatement(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		source    string
		fileLevel bool
	}{
		{
			name:      "directly above first statement",
			source:    "# nolint:no-fileutils-rmrf\nFileUtils.rm_rf(\"a\")\nFileUtils.rm_rf(\"b\")\n",
			fileLevel: false,
		},
		{
			name:      "inside header comment block",
			source:    "# frozen_string_literal: true\n# nolint:no-fileutils-rmrf\n# cleans the build dir\nFileUtils.rm_rf(\"a\")\nFileUtils.rm_rf(\"b\")\n",
			fileLevel: false,
		},
		{
			name:      "separated by a blank line",
			source:    "# frozen_string_literal: true\n# nolint:no-fileutils-rmrf\n\nFileUtils.rm_rf(\"a\")\nFileUtils.rm_rf(\"b\")\n",
			fileLevel: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := parseSource(t, tt.source)
			manager := ParseComments(f)
			lines := syntax.NewLineIndex(f.Name, f.Source).LineCount()

			// the last statement is on the line before the trailing newline
			last := lines - 1
			first := last - 1
			if !manager.IsNolint(positionAtLine(first), "no-fileutils-rmrf") {
				t.Errorf("Expected first statement on line %d to be nolinted", first)
			}
			if got := manager.IsNolint(positionAtLine(last), "no-fileutils-rmrf"); got != tt.fileLevel {
				t.Errorf("IsNolint at line %d = %v, want %v", last, got, tt.fileLevel)
			}
		})
	}
}

func TestParseCommentsNilFile(t *testing.T) {
	t.Parallel()
	manager := ParseComments(nil)
	if manager.IsNolint(positionAtLine(1), "rule") {
		t.Errorf("Expected empty manager")
	}
}

func positionAtLine(line int) token.Position {
	return token.Position{
		Filename: "test.rb",
		Line:     line,
		Column:   1,
	}
}
