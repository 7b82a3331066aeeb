package blocking

import (
	"reflect"
	"sort"
	"testing"
)

func TestMakeKeysStrongAndWeak(t *testing.T) {
	serialized := "name: widget pro 3000\nmanufacturer: acme inc"

	keys := MakeKeys(serialized, 2)
	if !reflect.DeepEqual(keys.Strong, []string{"acme__widget pro"}) {
		t.Errorf("strong keys = %v, want [acme__widget pro]", keys.Strong)
	}
	if !reflect.DeepEqual(keys.Weak, []string{"acme", "widget"}) {
		t.Errorf("weak keys = %v, want [acme widget]", keys.Weak)
	}
}

func TestMakeKeysManufacturerOnly(t *testing.T) {
	keys := MakeKeys("name: \nmanufacturer: acme corp", 2)
	if len(keys.Strong) != 0 {
		t.Errorf("strong keys = %v, want none without a name", keys.Strong)
	}
	if !reflect.DeepEqual(keys.Weak, []string{"acme"}) {
		t.Errorf("weak keys = %v, want [acme]", keys.Weak)
	}
}

func TestMakeKeysTitleFallback(t *testing.T) {
	keys := MakeKeys("title: gadget mini\nmanufacturer: widgets llc", 2)
	if !reflect.DeepEqual(keys.Strong, []string{"widgets__gadget mini"}) {
		t.Errorf("strong keys = %v, want [widgets__gadget mini]", keys.Strong)
	}
}

func TestMakeKeysJoinsSplitNumbers(t *testing.T) {
	keys := MakeKeys("name: 30 00 deluxe\nmanufacturer: acme", 2)
	if !reflect.DeepEqual(keys.Strong, []string{"acme__3000 deluxe"}) {
		t.Errorf("strong keys = %v, want [acme__3000 deluxe]", keys.Strong)
	}
}

func TestMakeKeysEmpty(t *testing.T) {
	keys := MakeKeys("name: \nmanufacturer: ", 2)
	if len(keys.Strong) != 0 || len(keys.Weak) != 0 {
		t.Errorf("keys = %+v, want none", keys)
	}
}

func buildTestIndex(t *testing.T) *Index {
	t.Helper()
	ids := []string{"g1", "g2", "g3"}
	texts := []string{
		"name: widget pro 3000\nmanufacturer: acme inc",
		"name: widget basic\nmanufacturer: acme corp",
		"name: sprocket\nmanufacturer: other co",
	}
	return BuildIndex(ids, texts, 2, nil)
}

func TestLookupStrongKeyMatch(t *testing.T) {
	index := buildTestIndex(t)

	// Same strong key as g1; strong tier alone already satisfies
	// minCandidates=1, so the weak tier stays untouched.
	got := index.Lookup("title: widget pro deluxe\nmanufacturer: acme, inc.", 1)
	if _, ok := got["g1"]; !ok {
		t.Errorf("candidates = %v, want g1 via strong key", setKeys(got))
	}
	if _, ok := got["g3"]; ok {
		t.Error("g3 should not match an acme strong key")
	}
}

func TestLookupWeakExpansion(t *testing.T) {
	index := buildTestIndex(t)

	// Strong key "acme__widget deluxe" matches nothing, so the weak
	// manufacturer key pulls in both acme records.
	got := index.Lookup("name: widget deluxe\nmanufacturer: acme", 20)
	want := []string{"g1", "g2"}
	if !reflect.DeepEqual(setKeys(got), want) {
		t.Errorf("candidates = %v, want %v", setKeys(got), want)
	}
}

func TestLookupWeakTierSkippedWhenStrongSuffices(t *testing.T) {
	index := buildTestIndex(t)

	got := index.Lookup("name: widget pro ultra\nmanufacturer: acme", 1)
	if _, ok := got["g2"]; ok {
		t.Error("weak expansion ran even though the strong tier met minCandidates")
	}
}

func TestLookupNoKeysMatch(t *testing.T) {
	index := buildTestIndex(t)

	got := index.Lookup("name: unrelated thing\nmanufacturer: nobody", 20)
	if len(got) != 0 {
		t.Errorf("candidates = %v, want empty set", setKeys(got))
	}
}

func TestBuildIndexKeyCount(t *testing.T) {
	index := buildTestIndex(t)
	if index.KeyCount() == 0 {
		t.Error("index should contain keys")
	}
}

func setKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
