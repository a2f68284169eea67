package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseFeaturesDropsAdministrativeColumns(t *testing.T) {
	cols := []string{"organization", "project", "familyCode", "createdAt", "surveyNumber", "income", "reds", "yellows", "greens", "housing"}
	assert.Equal(t, []string{"income", "housing"}, BaseFeatures(cols))
}

func TestSelectFeaturesIntersectsInBaseOrder(t *testing.T) {
	got, fellBack := SelectFeatures([]string{"feat1", "feat2"}, []string{"feat2", "unknownCol"})
	assert.Equal(t, []string{"feat2"}, got)
	assert.False(t, fellBack)

	got, _ = SelectFeatures([]string{"a", "b", "c"}, []string{"c", "a"})
	assert.Equal(t, []string{"a", "c"}, got)
}

func TestSelectFeaturesIsIdempotent(t *testing.T) {
	base := []string{"income", "housing", "water"}
	withBase, _ := SelectFeatures(base, base)
	without, _ := SelectFeatures(base, nil)
	assert.Equal(t, without, withBase)

	again, _ := SelectFeatures(base, withBase)
	assert.Equal(t, withBase, again)
}

func TestSelectFeaturesFallsBackWhenEmpty(t *testing.T) {
	base := []string{"income", "housing"}
	got, fellBack := SelectFeatures(base, []string{"nope"})
	assert.True(t, fellBack)
	assert.Equal(t, base, got)

	got[0] = "mutated"
	assert.Equal(t, "income", base[0], "fallback must not alias base")
}

func TestExcludeFeature(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, ExcludeFeature([]string{"a", "b", "c"}, "b"))
	assert.Equal(t, []string{"a", "b"}, ExcludeFeature([]string{"a", "b"}, "zzz"))
	assert.Empty(t, ExcludeFeature([]string{"a"}, "a"))
}
