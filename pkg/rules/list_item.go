package rules

import (
	"strings"

	"github.com/mwantia/codingrules/pkg/query"
)

// Translator resolves message keys.
type Translator interface {
	Translate(keys ...string) string
	TranslateWithParameters(key string, params ...any) string
}

type ActionKind string

const (
	ActionNone       ActionKind = ""
	ActionActivate   ActionKind = "activate"
	ActionDeactivate ActionKind = "deactivate"
)

type Action struct {
	Kind     ActionKind `json:"kind,omitempty"`
	Label    string     `json:"label,omitempty"`
	Disabled bool       `json:"disabled,omitempty"`
	Tooltip  string     `json:"tooltip,omitempty"`
}

type ActivationCell struct {
	Severity    string            `json:"severity"`
	Inheritance query.Inheritance `json:"inheritance"`
	// Icon and Tooltip are only set when the profile has a parent
	Icon    string `json:"icon,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
}

type Badge struct {
	Label   string `json:"label"`
	Tooltip string `json:"tooltip,omitempty"`
}

type ListItem struct {
	Key        string          `json:"key"`
	Name       string          `json:"name"`
	Selected   bool            `json:"selected"`
	Activation *ActivationCell `json:"activation,omitempty"`
	Template   *Badge          `json:"template,omitempty"`
	Status     *Badge          `json:"status,omitempty"`
	LangName   string          `json:"langName"`
	Type       Badge           `json:"type"`
	Tags       string          `json:"tags,omitempty"`
	Action     Action          `json:"action"`
	Similar    []SimilarFilter `json:"similar"`
}

type ListItemInput struct {
	Rule     Rule
	Selected bool
	// Activation of Rule in Profile, nil when inactive
	Activation *query.Activation
	// Profile is the selected quality profile, nil when none is selected
	Profile *Profile
}

// BuildListItem renders one row of the rule list.
func BuildListItem(in ListItemInput, tr Translator) ListItem {
	rule := in.Rule

	item := ListItem{
		Key:        rule.Key,
		Name:       rule.Name,
		Selected:   in.Selected,
		Activation: activationCell(in, tr),
		LangName:   rule.LangName,
		Type: Badge{
			Label:   tr.Translate("issue.type", rule.Type),
			Tooltip: tr.Translate("coding_rules.type.tooltip", rule.Type),
		},
		Tags:    strings.Join(rule.AllTags(), ", "),
		Action:  action(in, tr),
		Similar: SimilarRules(rule),
	}

	if rule.IsTemplate {
		item.Template = &Badge{
			Label:   tr.Translate("coding_rules.rule_template"),
			Tooltip: tr.Translate("coding_rules.rule_template.title"),
		}
	}
	if rule.Status != StatusReady {
		item.Status = &Badge{Label: tr.Translate("rules.status", rule.Status)}
	}

	return item
}

func activationCell(in ListItemInput, tr Translator) *ActivationCell {
	if in.Activation == nil {
		return nil
	}

	cell := &ActivationCell{
		Severity:    in.Activation.Severity,
		Inheritance: query.ParseInheritance(in.Activation.Inherit),
	}
	if in.Profile == nil || in.Profile.ParentName == "" {
		return cell
	}

	switch cell.Inheritance {
	case query.Overridden:
		cell.Icon = "icon-inheritance-overridden"
		cell.Tooltip = tr.TranslateWithParameters("coding_rules.overrides", in.Profile.Name, in.Profile.ParentName)
	case query.Inherited:
		cell.Icon = "icon-inheritance"
		cell.Tooltip = tr.TranslateWithParameters("coding_rules.inherits", in.Profile.Name, in.Profile.ParentName)
	}

	return cell
}

func action(in ListItemInput, tr Translator) Action {
	profile := in.Profile
	if profile == nil || !profile.CanEdit || profile.IsBuiltIn {
		return Action{}
	}

	if in.Activation == nil {
		if in.Rule.IsTemplate {
			return Action{}
		}
		return Action{Kind: ActionActivate, Label: tr.Translate("coding_rules.activate")}
	}

	deactivate := Action{Kind: ActionDeactivate, Label: tr.Translate("coding_rules.deactivate")}
	// Only the profile that owns an activation may remove it
	if query.ParseInheritance(in.Activation.Inherit) != query.NotInherited {
		deactivate.Disabled = true
		deactivate.Tooltip = tr.Translate("coding_rules.can_not_deactivate")
	}
	return deactivate
}
