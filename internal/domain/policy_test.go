package domain

import "testing"

func TestMoreRestrictive_DenyBeatsEverything(t *testing.T) {
	others := []PolicyAction{ActionAllow, ActionAnnotate, ActionRedact, ActionRequireHumanReview}
	for _, o := range others {
		if !MoreRestrictive(ActionDeny, o) {
			t.Errorf("deny should be more restrictive than %s", o)
		}
	}
}

func TestMoreRestrictive_Ordering(t *testing.T) {
	cases := []struct {
		more, less PolicyAction
	}{
		{ActionRequireHumanReview, ActionRedact},
		{ActionRedact, ActionAnnotate},
		{ActionAnnotate, ActionAllow},
	}
	for _, c := range cases {
		if !MoreRestrictive(c.more, c.less) {
			t.Errorf("%s should be more restrictive than %s", c.more, c.less)
		}
		if MoreRestrictive(c.less, c.more) {
			t.Errorf("%s should not be more restrictive than %s", c.less, c.more)
		}
	}
}
