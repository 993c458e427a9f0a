package internal

import (
	"github.com/gnolang/rmlint/internal/lints"
	"github.com/gnolang/rmlint/internal/rules"
	tt "github.com/gnolang/rmlint/internal/types"
)

// ruleConstructor builds the registry handlers of one rule from its
// configuration section.
type ruleConstructor func(cfg tt.ConfigRule) ([]rules.Handler, error)

// ruleMap maps rule names to their constructors.
type ruleMap map[string]ruleConstructor

var allRuleConstructors = ruleMap{
	lints.NoFileutilsRmrfRule: lints.NewNoFileutilsRmrf,
}

// KnownRules returns every rule name the engine can run.
func KnownRules() []string {
	names := make([]string, 0, len(allRuleConstructors))
	for name := range allRuleConstructors {
		names = append(names, name)
	}
	return names
}
