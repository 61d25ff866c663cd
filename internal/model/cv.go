package model

import (
	"slices"
	"strings"
)

// CVAnalysis is the scored result for one CV document.
type CVAnalysis struct {
	FileName    string   `json:"file_name"`
	Content     string   `json:"-"`
	Keywords    []string `json:"keywords"`
	ATSScore    int      `json:"ats_score"` // 0-100
	Suggestions []string `json:"suggestions"`
}

// Clone returns a deep copy.
func (a CVAnalysis) Clone() CVAnalysis {
	a.Keywords = slices.Clone(a.Keywords)
	a.Suggestions = slices.Clone(a.Suggestions)
	return a
}

// Profile is the user-edited CV context. It is read-only to this module.
type Profile struct {
	Name           string       `yaml:"name"`
	Email          string       `yaml:"email"`
	Phone          string       `yaml:"phone"`
	Location       string       `yaml:"location"`
	Summary        string       `yaml:"summary"`
	Skills         []string     `yaml:"skills"`
	Experience     []Experience `yaml:"experience"`
	Education      []Education  `yaml:"education"`
	Certifications []string     `yaml:"certifications"`
}

type Experience struct {
	Title       string `yaml:"title"`
	Company     string `yaml:"company"`
	Period      string `yaml:"period"`
	Description string `yaml:"description"`
}

type Education struct {
	Degree      string `yaml:"degree"`
	Institution string `yaml:"institution"`
	Year        string `yaml:"year"`
}

// Clone returns a deep copy.
func (p Profile) Clone() Profile {
	p.Skills = slices.Clone(p.Skills)
	p.Experience = slices.Clone(p.Experience)
	p.Education = slices.Clone(p.Education)
	p.Certifications = slices.Clone(p.Certifications)
	return p
}

// Text flattens the profile into plain text for keyword and match scoring.
func (p Profile) Text() string {
	var b strings.Builder
	line := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			b.WriteString(s)
			b.WriteByte('\n')
		}
	}
	line(p.Summary)
	line(strings.Join(p.Skills, ", "))
	for _, e := range p.Experience {
		line(e.Title + " " + e.Company)
		line(e.Description)
	}
	for _, e := range p.Education {
		line(e.Degree + " " + e.Institution)
	}
	line(strings.Join(p.Certifications, ", "))
	return strings.TrimSpace(b.String())
}
