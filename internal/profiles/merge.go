package profiles

import "github.com/cuentame-ec/cuentame/internal/classifier"

// MergePsychographics unions newly observed facet values into the
// existing set. Order is preserved: existing values first, then new
// ones in observation order, duplicates dropped.
func MergePsychographics(existing, observed classifier.Psychographics) classifier.Psychographics {
	return classifier.Psychographics{
		Emotions:          mergeFacet(existing.Emotions, observed.Emotions),
		Interests:         mergeFacet(existing.Interests, observed.Interests),
		SocialSkills:      mergeFacet(existing.SocialSkills, observed.SocialSkills),
		RiskFactors:       mergeFacet(existing.RiskFactors, observed.RiskFactors),
		ProtectiveFactors: mergeFacet(existing.ProtectiveFactors, observed.ProtectiveFactors),
	}
}

func mergeFacet(existing, observed []string) []string {
	if len(observed) == 0 {
		return existing
	}
	seen := make(map[string]struct{}, len(existing)+len(observed))
	out := make([]string, 0, len(existing)+len(observed))
	for _, v := range existing {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, v := range observed {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
