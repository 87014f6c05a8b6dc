package services

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"job-insights/models"
)

// commonSkills are detected in titles and descriptions even when the
// skills column omits them.
var commonSkills = []string{
	"React", "JavaScript", "Python", "Node.js", "TypeScript", "PHP", "Java", "C#", "C++",
	"HTML", "CSS", "SQL", "MongoDB", "PostgreSQL", "MySQL", "AWS", "Docker", "Kubernetes",
	"Git", "REST API", "GraphQL", "WordPress", "Shopify", "Figma", "Adobe", "Photoshop",
	"Illustrator", "UI/UX", "Mobile", "iOS", "Android", "Flutter", "React Native",
	"Vue.js", "Angular", "Laravel", "Django", "Express", "Next.js", "Nuxt.js",
	"Machine Learning", "AI", "Data Science", "Analytics", "SEO", "Marketing",
	"Content Writing", "Translation", "Video Editing", "Animation", "3D Modeling",
	"Blockchain", "Solidity", "Smart Contracts", "Web3", "DevOps", "CI/CD",
	"TensorFlow", "PyTorch", "Pandas", "NumPy", "Scikit-learn", "R", "Tableau",
	"Power BI", "Excel", "Google Analytics", "Facebook Ads", "Google Ads",
}

var skillAliases = map[string]string{
	"js":                      "JavaScript",
	"javascript":              "JavaScript",
	"reactjs":                 "React",
	"react.js":                "React",
	"nodejs":                  "Node.js",
	"node":                    "Node.js",
	"typescript":              "TypeScript",
	"ts":                      "TypeScript",
	"html5":                   "HTML",
	"css3":                    "CSS",
	"postgresql":              "PostgreSQL",
	"postgres":                "PostgreSQL",
	"mysql":                   "MySQL",
	"mongodb":                 "MongoDB",
	"mongo":                   "MongoDB",
	"aws":                     "AWS",
	"amazon web services":     "AWS",
	"machine learning":        "Machine Learning",
	"ml":                      "Machine Learning",
	"artificial intelligence": "AI",
	"ui/ux":                   "UI/UX",
	"user experience":         "UI/UX",
	"user interface":          "UI/UX",
}

type skillPattern struct {
	name string
	re   *regexp.Regexp
}

// skillPatterns match whole words only, so "R" does not match every "r"
// and "Java" does not match inside "JavaScript".
var skillPatterns = compileSkillPatterns(commonSkills)

var canonicalSkills = func() map[string]string {
	m := make(map[string]string, len(commonSkills))
	for _, s := range commonSkills {
		m[strings.ToLower(s)] = s
	}
	return m
}()

func compileSkillPatterns(skills []string) []skillPattern {
	patterns := make([]skillPattern, 0, len(skills))
	for _, s := range skills {
		// word characters plus the symbols that appear inside skill names
		re := regexp.MustCompile(`(?i)(?:^|[^\w.#+/-])` + regexp.QuoteMeta(s) + `(?:$|[^\w#+/]|\.(?:\s|$))`)
		patterns = append(patterns, skillPattern{name: s, re: re})
	}
	return patterns
}

// NormaliseSkill maps aliases and casing variants onto one canonical name.
// Names outside the catalog become sentence case ("WEB DESIGN" → "Web
// design"). Names shorter than two characters are rejected unless they are
// a known skill such as "R".
func NormaliseSkill(skill string) (string, bool) {
	s := normaliseText(skill)
	lower := strings.ToLower(s)
	if alias, ok := skillAliases[lower]; ok {
		return alias, true
	}
	if canonical, ok := canonicalSkills[lower]; ok {
		return canonical, true
	}
	if utf8.RuneCountInString(s) < 2 {
		return "", false
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:]), true
}

// JobSkills returns the distinct normalized skills of one job: the explicit
// skills column plus catalog skills found in the title and description.
func JobSkills(job *models.Job) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(raw string) {
		name, ok := NormaliseSkill(raw)
		if !ok {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	for _, s := range job.Skills {
		add(s)
	}
	if job.Text != "" {
		for _, p := range skillPatterns {
			if p.re.MatchString(job.Text) {
				add(p.name)
			}
		}
	}
	return out
}
