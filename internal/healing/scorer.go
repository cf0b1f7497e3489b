package healing

import (
	"fmt"
	"sort"
	"strings"

	"ui-harness/internal/entity"
)

// Attribute weights for proposal ranking. Test hooks and unique identifiers
// outrank descriptive attributes, which outrank structure.
const (
	scoreID        = 100
	scoreTestID    = 95
	scoreName      = 90
	scoreAriaLabel = 85
	scoreClass     = 70
	scoreTextXPath = 60
	scoreTag       = 30
)

var testIDAttrs = []string{"data-testid", "data-test-id", "data-test", "data-qa", "data-cy"}

// ScoredSelector is one replacement proposal derived from a fingerprint.
type ScoredSelector struct {
	Selector string
	Score    int
}

// Propose derives candidate selectors from a captured fingerprint, best
// first. The caller feeds them into TryInOrder after the original locator.
func Propose(fp *entity.Fingerprint) []ScoredSelector {
	if fp == nil {
		return nil
	}

	var candidates []ScoredSelector

	if id := fp.Attributes["id"]; id != "" && !isCommonID(id) {
		candidates = append(candidates, ScoredSelector{Selector: "#" + id, Score: scoreID})
	}

	for _, attr := range testIDAttrs {
		if val := fp.Attributes[attr]; val != "" {
			candidates = append(candidates, ScoredSelector{
				Selector: fmt.Sprintf("[%s=%q]", attr, val),
				Score:    scoreTestID,
			})

			break
		}
	}

	if name := fp.Attributes["name"]; name != "" {
		candidates = append(candidates, ScoredSelector{
			Selector: fmt.Sprintf("%s[name=%q]", fp.Tag, name),
			Score:    scoreName,
		})
	}

	if label := fp.Attributes["aria-label"]; label != "" {
		if role := fp.Attributes["role"]; role != "" {
			candidates = append(candidates, ScoredSelector{
				Selector: fmt.Sprintf("[role=%q][aria-label=%q]", role, label),
				Score:    scoreAriaLabel,
			})
		} else {
			candidates = append(candidates, ScoredSelector{
				Selector: fmt.Sprintf("[aria-label=%q]", label),
				Score:    scoreAriaLabel,
			})
		}
	}

	if class := fp.Attributes["class"]; class != "" && fp.Tag != "" {
		first := strings.Fields(class)[0]
		if !isCommonClass(first) {
			candidates = append(candidates, ScoredSelector{
				Selector: fp.Tag + "." + first,
				Score:    scoreClass,
			})
		}
	}

	if fp.Text != "" && len(fp.Text) < 50 && fp.Tag != "" {
		candidates = append(candidates, ScoredSelector{
			Selector: fmt.Sprintf("xpath=//%s[contains(normalize-space(.), %q)]", fp.Tag, fp.Text),
			Score:    scoreTextXPath,
		})
	}

	if fp.Tag != "" {
		candidates = append(candidates, ScoredSelector{Selector: fp.Tag, Score: scoreTag})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return candidates
}

// Similarity scores how closely a freshly captured fingerprint matches the
// baseline, in [0, 1]. Used to reject proposals that found an element but
// not the same element.
func Similarity(baseline, current *entity.Fingerprint) float64 {
	if baseline == nil || current == nil {
		return 0
	}

	var total, matched float64

	weigh := func(weight float64, a, b string) {
		if a == "" && b == "" {
			return
		}

		total += weight

		if a == b {
			matched += weight
		}
	}

	weigh(2, baseline.Tag, current.Tag)
	weigh(3, baseline.Text, current.Text)

	keys := make(map[string]struct{}, len(baseline.Attributes)+len(current.Attributes))
	for k := range baseline.Attributes {
		keys[k] = struct{}{}
	}
	for k := range current.Attributes {
		keys[k] = struct{}{}
	}

	for k := range keys {
		weigh(1, baseline.Attributes[k], current.Attributes[k])
	}

	if total == 0 {
		return 0
	}

	return matched / total
}

func isCommonID(id string) bool {
	switch strings.ToLower(id) {
	case "content", "main", "header", "footer", "nav", "menu":
		return true
	}

	return false
}

func isCommonClass(class string) bool {
	common := []string{
		"container", "wrapper", "row", "col", "btn", "button",
		"active", "disabled", "hidden", "visible", "flex", "grid",
	}

	lower := strings.ToLower(class)
	for _, c := range common {
		if strings.Contains(lower, c) {
			return true
		}
	}

	return false
}
