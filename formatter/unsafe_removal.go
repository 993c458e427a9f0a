package formatter

import (
	"sort"
	"strings"

	"github.com/gnolang/rmlint/internal/lints"
	"github.com/gnolang/rmlint/internal/syntax"
)

// UnsafeRemovalFormatter adds the force-remove to safe-remove mapping
// below the message of no-fileutils-rmrf issues.
type UnsafeRemovalFormatter struct{}

func (f *UnsafeRemovalFormatter) IssueTemplate() string {
	return `{{header .Rule .Severity .MaxLineNumWidth .Filename .StartLine .StartColumn}}` +
		`{{snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .CommonIndent .Padding}}` +
		`{{underlineAndMessage .Message .Padding .StartLine .EndLine .StartColumn .EndColumn .SnippetLines .CommonIndent}}` +
		`{{removalHelp .Padding}}` +
		`{{if .Suggestion}}{{suggestion .Suggestion .Padding .MaxLineNumWidth .StartLine}}{{end}}` +
		`{{if .Note}}{{note .Note}}{{end}}` +
		`{{if .FixError}}{{fixError .FixError}}{{end}}` +
		"\n"
}

// removalHelp renders e.g. "= help: rm_f -> rm, rm_rf -> rm_r, rmtree -> rm_r".
func removalHelp(padding string) string {
	methods := append([]string(nil), lints.DefaultFileUtilsMethods...)
	sort.Strings(methods)

	pairs := make([]string, 0, len(methods))
	for _, m := range methods {
		pairs = append(pairs, m+" -> "+lints.SafeMethod(syntax.Symbol(m)))
	}
	return lineStyle.Sprintf("%s= ", padding) + suggestionStyle.Sprint("help: ") + strings.Join(pairs, ", ") + "\n"
}
