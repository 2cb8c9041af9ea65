package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mwantia/codingrules/pkg/db/models"
	"github.com/mwantia/codingrules/pkg/rules"
)

type ActivationDetail struct {
	Profile  rules.Profile `json:"profile"`
	Severity string        `json:"severity"`
	Inherit  string        `json:"inherit"`
}

type RuleDetails struct {
	Rule        rules.Rule            `json:"rule"`
	Description string                `json:"description,omitempty"`
	Similar     []rules.SimilarFilter `json:"similar"`
	Activations []ActivationDetail    `json:"activations"`
}

func (s *Server) showRule(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		badRequest(c, "'key' is required")
		return
	}

	ctx := c.Request.Context()

	m, err := s.store.GetRule(ctx, key)
	if err != nil {
		s.fail(c, err, "rule not found")
		return
	}

	profiles, err := s.store.ListProfiles(ctx, m.Language)
	if err != nil {
		s.fail(c, err, "")
		return
	}

	byKey := make(map[string]models.QualityProfile, len(profiles))
	profileKeys := make([]string, 0, len(profiles))
	for _, p := range profiles {
		byKey[p.Key] = p
		profileKeys = append(profileKeys, p.Key)
	}

	actives, err := s.store.ListActivations(ctx, profileKeys, []string{m.Key})
	if err != nil {
		s.fail(c, err, "")
		return
	}

	rule := rules.FromModel(*m)
	details := RuleDetails{
		Rule:        rule,
		Description: m.Description,
		Similar:     rules.SimilarRules(rule),
		Activations: make([]ActivationDetail, 0, len(actives)),
	}
	for _, a := range actives {
		details.Activations = append(details.Activations, ActivationDetail{
			Profile:  profileWithParent(byKey, byKey[a.ProfileKey]),
			Severity: a.Severity,
			Inherit:  a.Inherit,
		})
	}

	c.JSON(http.StatusOK, NewSuccessResponse(details))
}

func (s *Server) searchProfiles(c *gin.Context) {
	profiles, err := s.store.ListProfiles(c.Request.Context(), c.Query("language"))
	if err != nil {
		s.fail(c, err, "")
		return
	}

	byKey := make(map[string]models.QualityProfile, len(profiles))
	for _, p := range profiles {
		byKey[p.Key] = p
	}

	result := make([]rules.Profile, 0, len(profiles))
	for _, p := range profiles {
		result = append(result, profileWithParent(byKey, p))
	}

	c.JSON(http.StatusOK, NewSuccessResponse(result))
}

// profileWithParent converts p, looking up its parent in byKey. Profiles
// inherit only from profiles of the same language.
func profileWithParent(byKey map[string]models.QualityProfile, p models.QualityProfile) rules.Profile {
	parent, ok := byKey[p.ParentKey]
	if p.ParentKey == "" || !ok {
		return rules.ProfileFromModel(p, nil)
	}
	return rules.ProfileFromModel(p, &parent)
}
