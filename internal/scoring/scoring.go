// Package scoring computes deterministic ATS compatibility and CV/job match
// scores.
package scoring

import (
	"math"
	"regexp"
	"strings"

	"github.com/amishk599/jobscout/internal/keywords"
	"github.com/amishk599/jobscout/internal/model"
)

// GoodScore is the ATS score at or above which generic suggestions are
// withheld.
const GoodScore = 70

// Weights for the ATS score.
const (
	experiencePoints  = 15
	educationPoints   = 10
	skillsPoints      = 10
	summaryPoints     = 5
	keywordPointsEach = 1.5
	keywordPointsMax  = 25
	bulletPoints      = 8
	achievementPoints = 5
	numericPoints     = 4
	datePoints        = 3
	minNumericTokens  = 5 // strictly more than this earns numericPoints
)

// Weights for the match score.
const (
	keywordMatchPoints     = 3
	requirementMatchPoints = 2
)

var (
	reExperience  = regexp.MustCompile(`(?i)\b(?:experience|employment)\b`)
	reEducation   = regexp.MustCompile(`(?i)\b(?:education|qualifications?)\b`)
	reSkills      = regexp.MustCompile(`(?i)\b(?:skills|competencies)\b`)
	reSummary     = regexp.MustCompile(`(?i)\b(?:summary|profile)\b`)
	reBullet      = regexp.MustCompile(`(?m)^\s*[•\-*▪◦‣]\s+`)
	reAchievement = regexp.MustCompile(`(?i)achievements?|accomplishments?`)
	reNumber      = regexp.MustCompile(`\d+`)
	reMonthYear   = regexp.MustCompile(`(?i)\b(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+\d{4}\b`)

	reImpactVerbs = regexp.MustCompile(`(?i)\b(?:achieved|accomplished|delivered|improved|increased|reduced|launched)\b`)
	reProjects    = regexp.MustCompile(`(?i)\bprojects?\b`)
)

// ATSScore scores text additively for ATS compatibility; keywordCount is the
// number of recognised vocabulary terms. The result is clamped to [0, 100].
func ATSScore(text string, keywordCount int) int {
	var score float64

	if reExperience.MatchString(text) {
		score += experiencePoints
	}
	if reEducation.MatchString(text) {
		score += educationPoints
	}
	if reSkills.MatchString(text) {
		score += skillsPoints
	}
	if reSummary.MatchString(text) {
		score += summaryPoints
	}

	score += math.Min(keywordPointsEach*float64(keywordCount), keywordPointsMax)
	score += float64(lengthPoints(wordCount(text)))

	if reBullet.MatchString(text) {
		score += bulletPoints
	}
	if reAchievement.MatchString(text) {
		score += achievementPoints
	}
	if len(reNumber.FindAllStringIndex(text, -1)) > minNumericTokens {
		score += numericPoints
	}
	if reMonthYear.MatchString(text) {
		score += datePoints
	}

	return clamp(int(score))
}

func lengthPoints(words int) int {
	switch {
	case words >= 400 && words <= 1000:
		return 15
	case words >= 200 && words <= 1500:
		return 10
	case words >= 100:
		return 5
	}
	return 0
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

// MatchScore rates how well cvText covers a posting's keywords and
// requirement phrases. A job keyword matches when the CV text contains it or
// it overlaps (substring in either direction) with a keyword extracted from
// the CV; a requirement matches on literal containment. Returns 0 when the
// posting has nothing to match against.
func MatchScore(cvText string, jobKeywords, requirements []string) int {
	lowerCV := strings.ToLower(cvText)
	cvKeywords := keywords.Extract(cvText)
	for i, k := range cvKeywords {
		cvKeywords[i] = strings.ToLower(k)
	}

	var matched, possible int
	for _, kw := range jobKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		possible += keywordMatchPoints
		if keywordMatches(kw, lowerCV, cvKeywords) {
			matched += keywordMatchPoints
		}
	}
	for _, req := range requirements {
		req = strings.ToLower(strings.TrimSpace(req))
		if req == "" {
			continue
		}
		possible += requirementMatchPoints
		if strings.Contains(lowerCV, req) {
			matched += requirementMatchPoints
		}
	}

	if possible == 0 {
		return 0
	}
	return clamp(int(math.Round(100 * float64(matched) / float64(possible))))
}

// MissingKeywords returns the job keywords cvText does not cover, by the
// same rule MatchScore uses, in input order.
func MissingKeywords(cvText string, jobKeywords []string) []string {
	lowerCV := strings.ToLower(cvText)
	cvKeywords := keywords.Extract(cvText)
	for i, k := range cvKeywords {
		cvKeywords[i] = strings.ToLower(k)
	}

	var missing []string
	for _, kw := range jobKeywords {
		kw = strings.TrimSpace(kw)
		if kw == "" || keywordMatches(strings.ToLower(kw), lowerCV, cvKeywords) {
			continue
		}
		missing = append(missing, kw)
	}
	return missing
}

// keywordMatches also accepts a job keyword found anywhere in the CV text.
// Collaborator-supplied job keywords are often outside the extraction
// vocabulary, so they never appear among cvKeywords.
func keywordMatches(kw, lowerCV string, cvKeywords []string) bool {
	if strings.Contains(lowerCV, kw) {
		return true
	}
	for _, ck := range cvKeywords {
		if strings.Contains(ck, kw) || strings.Contains(kw, ck) {
			return true
		}
	}
	return false
}

// Suggestion texts.
const (
	SuggestKeywords     = "Add more industry-relevant keywords to improve ATS compatibility"
	SuggestSummary      = "Include a professional summary at the top of your CV"
	SuggestBullets      = "Use bullet points to describe your responsibilities"
	SuggestMetrics      = "Quantify your achievements with specific metrics and numbers"
	SuggestImpact       = "Describe your impact using action verbs such as achieved, improved or delivered"
	SuggestProjects     = "Add a projects section to showcase relevant work"
	SuggestExpand       = "Expand your CV with more detail about your experience and skills"
	SuggestCondense     = "Condense your CV to keep it focused and easy to scan"
	minSuggestWordCount = 300
	maxSuggestWordCount = 1200
)

// Suggestions derives improvement advice from the score and document
// content. Rules accumulate independently.
func Suggestions(score int, text string) []string {
	var out []string
	if score < GoodScore {
		out = append(out, SuggestKeywords, SuggestSummary, SuggestBullets, SuggestMetrics)
	}
	if !reImpactVerbs.MatchString(text) && !reAchievement.MatchString(text) {
		out = append(out, SuggestImpact)
	}
	if !reProjects.MatchString(text) {
		out = append(out, SuggestProjects)
	}
	switch words := wordCount(text); {
	case words < minSuggestWordCount:
		out = append(out, SuggestExpand)
	case words > maxSuggestWordCount:
		out = append(out, SuggestCondense)
	}
	return out
}

// AnalyzeCV produces the deterministic analysis of a CV document.
func AnalyzeCV(fileName, text string) model.CVAnalysis {
	kws := keywords.Extract(text)
	score := ATSScore(text, len(kws))
	return model.CVAnalysis{
		FileName:    fileName,
		Content:     text,
		Keywords:    kws,
		ATSScore:    score,
		Suggestions: Suggestions(score, text),
	}
}

func clamp(score int) int {
	return max(0, min(score, 100))
}
