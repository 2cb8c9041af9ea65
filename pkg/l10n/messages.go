package l10n

import "golang.org/x/text/language"

var englishMessages = map[string]string{
	"coding_rules.facet.activationSeverities": "Activation Severity",
	"coding_rules.facet.availableSince":       "Available Since",
	"coding_rules.facet.inheritance":          "Inheritance",
	"coding_rules.facet.languages":            "Language",
	"coding_rules.facet.profile":              "Quality Profile",
	"coding_rules.facet.repositories":         "Repository",
	"coding_rules.facet.severities":           "Default Severity",
	"coding_rules.facet.statuses":             "Status",
	"coding_rules.facet.tags":                 "Tag",
	"coding_rules.facet.template":             "Template",
	"coding_rules.facet.types":                "Type",

	"coding_rules.activate":            "Activate",
	"coding_rules.deactivate":          "Deactivate",
	"coding_rules.can_not_deactivate":  "This rule is inherited and can not be deactivated.",
	"coding_rules.overrides":           "This rule is overridden in %s, parent profile is %s.",
	"coding_rules.inherits":            "This rule is inherited from %s, parent profile is %s.",
	"coding_rules.rule_template":       "Template",
	"coding_rules.rule_template.title": "This rule can be used as a template to create custom rules.",
	"coding_rules.similar_rules":       "Find similar rules",

	"coding_rules.type.tooltip.BUG":           "Bug Detection Rule",
	"coding_rules.type.tooltip.CODE_SMELL":    "Code Smell Detection Rule",
	"coding_rules.type.tooltip.VULNERABILITY": "Vulnerability Detection Rule",

	"issue.type.BUG":           "Bug",
	"issue.type.CODE_SMELL":    "Code Smell",
	"issue.type.VULNERABILITY": "Vulnerability",

	"rules.status.BETA":       "Beta",
	"rules.status.DEPRECATED": "Deprecated",
	"rules.status.READY":      "Ready",
	"rules.status.REMOVED":    "Removed",

	"severity.BLOCKER":  "Blocker",
	"severity.CRITICAL": "Critical",
	"severity.MAJOR":    "Major",
	"severity.MINOR":    "Minor",
	"severity.INFO":     "Info",
}

// English returns the built-in English bundle.
func English() *Bundle {
	bundle, err := NewBundle(language.English, englishMessages)
	if err != nil {
		// Static messages are known to be valid
		panic(err)
	}
	return bundle
}
