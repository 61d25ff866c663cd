// Package keywords extracts vocabulary terms and requirement phrases from
// free text (CVs and job descriptions).
package keywords

import (
	"regexp"
	"strings"
)

// MaxRequirements caps the number of requirement phrases returned per text.
const MaxRequirements = 10

// Vocabulary is the controlled vocabulary matched by Extract. Entries are
// matched as case-insensitive substrings, so very short terms ("go", "r",
// "ai") are deliberately absent.
var Vocabulary = []string{
	// languages and frameworks
	"JavaScript", "TypeScript", "Python", "Java", "Golang", "C++", "C#",
	"Ruby", "PHP", "Kotlin", "Swift", "React", "Angular", "Vue.js",
	"Node.js", "Django", "Flask", "Spring Boot", ".NET", "GraphQL",
	"REST API", "SQL", "PostgreSQL", "MySQL", "MongoDB", "Redis", "Kafka",
	"HTML", "CSS", "Machine Learning", "Data Analysis",
	// cloud and infrastructure
	"AWS", "Azure", "GCP", "Google Cloud", "Docker", "Kubernetes",
	"Terraform", "Ansible", "Jenkins", "CI/CD", "Linux", "Serverless",
	"Microservices", "GitHub", "GitLab",
	// methodology
	"Agile", "Scrum", "Kanban", "DevOps", "Test-Driven Development",
	// soft skills
	"Leadership", "Communication", "Teamwork", "Problem Solving",
	"Project Management", "Stakeholder Management", "Mentoring",
}

var lowerVocabulary = func() []string {
	out := make([]string, len(Vocabulary))
	for i, v := range Vocabulary {
		out[i] = strings.ToLower(v)
	}
	return out
}()

// Extract returns the vocabulary terms present in text, in vocabulary order.
func Extract(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for i, term := range lowerVocabulary {
		if strings.Contains(lower, term) {
			found = append(found, Vocabulary[i])
		}
	}
	return found
}

// requirementPatterns are applied in order; matches keep the casing found in
// the source text.
var requirementPatterns = []*regexp.Regexp{
	// languages and frameworks
	regexp.MustCompile(`(?i)\b(?:JavaScript|TypeScript|Python|Java|Golang|Ruby|PHP|Kotlin|Swift|React|Angular|Vue(?:\.js)?|Node\.js|Django|Flask|Spring(?: Boot)?|GraphQL|PostgreSQL|MySQL|MongoDB|SQL)\b`),
	// cloud and infrastructure
	regexp.MustCompile(`(?i)\b(?:AWS|Azure|GCP|Google Cloud|Docker|Kubernetes|Terraform|Ansible|Jenkins|CI/CD|Linux|Serverless|Microservices)\b`),
	// methodology
	regexp.MustCompile(`(?i)\b(?:Agile|Scrum|Kanban|DevOps|TDD|Test[- ]Driven Development)\b`),
	// experience
	regexp.MustCompile(`(?i)\b\d+\+?\s*years?\s+(?:of\s+)?experience\b`),
	// qualifications
	regexp.MustCompile(`(?i)\b(?:Bachelor(?:'s)?(?: degree)?|Master(?:'s)?(?: degree)?|PhD|degree|certifications?|certified)\b`),
}

// Requirements returns requirement phrases found in text, deduplicated
// case-insensitively and capped at MaxRequirements.
func Requirements(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, re := range requirementPatterns {
		for _, m := range re.FindAllString(text, -1) {
			key := strings.ToLower(m)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, m)
			if len(out) == MaxRequirements {
				return out
			}
		}
	}
	return out
}
