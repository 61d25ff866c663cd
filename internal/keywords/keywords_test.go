package keywords

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_CaseInsensitiveInVocabularyOrder(t *testing.T) {
	got := Extract("Shipping docker images to aws with PYTHON; agile team, python again")
	assert.Equal(t, []string{"Python", "AWS", "Docker", "Agile"}, got)
}

func TestExtract_NoMatches(t *testing.T) {
	assert.Empty(t, Extract("nothing relevant in here"))
	assert.Empty(t, Extract(""))
}

func TestRequirements_Categories(t *testing.T) {
	text := "We need 5+ years of experience with Golang and Kubernetes. " +
		"Agile mindset. A Bachelor's degree or AWS certification preferred."
	got := Requirements(text)
	assert.Equal(t, []string{
		"Golang", "Kubernetes", "AWS", "Agile",
		"5+ years of experience", "Bachelor's degree", "certification",
	}, got)
}

func TestRequirements_DedupKeepsFirstCasing(t *testing.T) {
	got := Requirements("python, Python, PYTHON and docker")
	assert.Equal(t, []string{"python", "docker"}, got)
}

func TestRequirements_Capped(t *testing.T) {
	text := strings.Join([]string{
		"JavaScript", "TypeScript", "Python", "Java", "Golang", "Ruby",
		"PHP", "Kotlin", "Swift", "React", "Angular", "Django",
	}, " ")
	assert.Len(t, Requirements(text), MaxRequirements)
}
