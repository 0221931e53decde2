package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/repolens/repolens/internal/domain"
	"github.com/repolens/repolens/internal/port"
)

// Enrichment bounds.
const (
	DefaultEnhanceTimeout = 30 * time.Second
	readmeExcerptLimit    = 4000
	fileTreeLimit         = 100
	maxFeatures           = 7
	maxPerCategory        = 10
)

// Synthesizer produces the project description: a deterministic rule-based
// baseline, optionally merged with an AI enrichment.
type Synthesizer struct {
	rules    []TechRule
	enhancer port.Enhancer // nil disables enrichment
	timeout  time.Duration
}

// NewSynthesizer creates a synthesizer. A nil rule set selects
// DefaultTechRules; a nil enhancer disables enrichment entirely.
func NewSynthesizer(rules []TechRule, enhancer port.Enhancer, timeout time.Duration) *Synthesizer {
	if rules == nil {
		rules = DefaultTechRules()
	}
	if timeout <= 0 {
		timeout = DefaultEnhanceTimeout
	}
	return &Synthesizer{rules: rules, enhancer: enhancer, timeout: timeout}
}

// Synthesize builds the description. The baseline runs unconditionally and
// never makes an external call; enrichment is best-effort and any failure
// leaves the baseline untouched with AIEnhanced absent.
func (s *Synthesizer) Synthesize(ctx context.Context, meta *domain.RepositoryMetadata, tree *domain.TreeNode, langs []domain.LanguageStat, readme string, samples []domain.CodeSample) domain.Description {
	desc := domain.Description{
		Summary:           s.summary(meta, readme),
		Architecture:      s.architecture(tree, langs),
		MainFeatures:      s.features(readme, langs),
		Technologies:      s.technologies(tree, langs),
		SetupInstructions: s.setupInstructions(readme),
		CodeQuality:       s.codeQuality(meta, tree),
	}

	if s.enhancer != nil {
		ectx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		enriched, err := s.enhancer.Enhance(ectx, buildEnhanceRequest(meta, tree, langs, readme, samples))
		if err != nil {
			slog.Warn("description enrichment unavailable", "repo", meta.FullName, "error", err)
		} else {
			desc.AIEnhanced = enriched
		}
	}
	return desc
}

var paragraphRe = regexp.MustCompile(`\n\s*\n`)

func (s *Synthesizer) summary(meta *domain.RepositoryMetadata, readme string) string {
	summary := meta.Description

	// Fall back to the first substantial README paragraph, skipping
	// headings and badge lines.
	if summary == "" {
		for _, p := range paragraphRe.Split(readme, -1) {
			p = strings.TrimSpace(p)
			if p == "" || strings.HasPrefix(p, "#") || strings.Contains(p, "![") || len(p) <= 30 {
				continue
			}
			summary = p
			break
		}
	}
	if summary == "" {
		summary = "No description provided."
	}

	var stats []string
	if meta.Stars > 0 {
		stats = append(stats, fmt.Sprintf("%d stars", meta.Stars))
	}
	if meta.Forks > 0 {
		stats = append(stats, fmt.Sprintf("%d forks", meta.Forks))
	}
	if len(stats) > 0 {
		summary += fmt.Sprintf(" This project has %s.", strings.Join(stats, ", "))
	}
	return summary
}

func (s *Synthesizer) architecture(tree *domain.TreeNode, langs []domain.LanguageStat) string {
	var b strings.Builder
	b.WriteString("Project structure analysis:\n\n")

	if tree.HasDir("src") || tree.HasDir("app") {
		b.WriteString("- Source code is separated into a dedicated directory, indicating a structured development approach.\n")
	}
	if tree.HasDir("tests") || tree.HasDir("test") {
		b.WriteString("- The project includes tests, suggesting a focus on code quality and reliability.\n")
	}
	if tree.HasDir("docs") {
		b.WriteString("- Documentation lives in its own directory, indicating good project organization.\n")
	}
	if tree.HasDir("cmd") && tree.HasDir("internal") {
		b.WriteString("- The layout follows Go project conventions with cmd and internal packages.\n")
	}
	if tree.HasFile("package.json") {
		b.WriteString("- This is a Node.js project using npm or yarn for package management.\n")
	}
	if tree.HasFile("requirements.txt") || tree.HasFile("Pipfile") {
		b.WriteString("- This is a Python project with dependency management.\n")
	}
	if tree.HasFile("Dockerfile") || tree.HasFile("docker-compose.yml") {
		b.WriteString("- The project uses Docker for containerization.\n")
	}
	if tree.HasDir("public") && tree.HasDir("src") {
		b.WriteString("- This appears to be a frontend application with separated public assets.\n")
	}
	if b.Len() == len("Project structure analysis:\n\n") {
		b.WriteString("- No conventional directory layout was detected.\n")
	}

	if len(langs) > 0 {
		b.WriteString("\nLanguage distribution:\n")
		for _, l := range langs {
			fmt.Fprintf(&b, "- %s: %.1f%%\n", l.Name, l.Percent)
		}
	}
	return b.String()
}

var (
	featureSectionRe = regexp.MustCompile(`(?mi)^#+\s*Features?\s*$`)
	nextHeadingRe    = regexp.MustCompile(`(?m)^#+\s`)
	bulletRe         = regexp.MustCompile(`(?m)^\s*[-*]\s+(.+)$`)
	sentenceBulletRe = regexp.MustCompile(`(?m)^\s*[-*]\s+([A-Z].*?\.)\s*$`)
)

func (s *Synthesizer) features(readme string, langs []domain.LanguageStat) []string {
	var features []string

	// Bullets under a "Features" heading come first.
	if loc := featureSectionRe.FindStringIndex(readme); loc != nil {
		section := readme[loc[1]:]
		if next := nextHeadingRe.FindStringIndex(section); next != nil {
			section = section[:next[0]]
		}
		for _, m := range bulletRe.FindAllStringSubmatch(section, -1) {
			features = append(features, strings.TrimSpace(m[1]))
		}
	}

	// Otherwise guess from sentence-shaped bullets anywhere in the README.
	if len(features) == 0 {
		for _, m := range sentenceBulletRe.FindAllStringSubmatch(readme, 5) {
			features = append(features, strings.TrimSpace(m[1]))
		}
	}

	if len(features) == 0 {
		main := ""
		if len(langs) > 0 {
			main = langs[0].Name
		}
		switch main {
		case "Python":
			features = []string{"Python-based application", "Modular structure", "Command-line interface"}
		case "JavaScript", "TypeScript":
			features = []string{"JavaScript-based application", "Web interface", "Modern JS architecture"}
		case "Go":
			features = []string{"Go-based application", "Structured codebase", "Static binary distribution"}
		default:
			features = []string{"Software application", "Structured codebase", "Developer-friendly"}
		}
	}

	if len(features) > maxFeatures {
		features = features[:maxFeatures]
	}
	return features
}

func (s *Synthesizer) technologies(tree *domain.TreeNode, langs []domain.LanguageStat) domain.TechStack {
	stack := domain.TechStack{
		Languages:  []string{},
		Frameworks: []string{},
		Libraries:  []string{},
		Tools:      []string{},
	}
	for _, l := range langs {
		stack.Languages = append(stack.Languages, l.Name)
	}

	paths := tree.FilePaths()
	seen := make(map[string]bool)
	for _, rule := range s.rules {
		if seen[rule.Name] || !rule.Matches(tree, paths) {
			continue
		}
		seen[rule.Name] = true
		switch rule.Category {
		case CategoryFrameworks:
			stack.Frameworks = append(stack.Frameworks, rule.Name)
		case CategoryLibraries:
			stack.Libraries = append(stack.Libraries, rule.Name)
		case CategoryTools:
			stack.Tools = append(stack.Tools, rule.Name)
		}
	}

	stack.Languages = capList(stack.Languages)
	stack.Frameworks = capList(stack.Frameworks)
	stack.Libraries = capList(stack.Libraries)
	stack.Tools = capList(stack.Tools)
	return stack
}

func capList(list []string) []string {
	if len(list) > maxPerCategory {
		return list[:maxPerCategory]
	}
	return list
}

var setupSectionRe = regexp.MustCompile(`(?mi)^#+\s*(?:Installation|Setup|Getting Started|How to Install|Usage)\b.*$`)

func (s *Synthesizer) setupInstructions(readme string) string {
	if loc := setupSectionRe.FindStringIndex(readme); loc != nil {
		section := readme[loc[1]:]
		if next := nextHeadingRe.FindStringIndex(section); next != nil {
			section = section[:next[0]]
		}
		if trimmed := strings.TrimSpace(section); trimmed != "" {
			return trimmed
		}
	}
	return "No setup instructions found in the README."
}

func (s *Synthesizer) codeQuality(meta *domain.RepositoryMetadata, tree *domain.TreeNode) string {
	var b strings.Builder
	b.WriteString("Code quality assessment:\n\n")

	if tree.HasDir("tests") || tree.HasDir("test") {
		b.WriteString("- Includes a test suite\n")
	} else {
		b.WriteString("- No test directory detected\n")
	}

	if meta.License != "" || tree.HasFile("LICENSE") || tree.HasFile("LICENSE.md") {
		b.WriteString("- Carries an explicit license\n")
	} else {
		b.WriteString("- No license detected\n")
	}

	if hasManifest(tree) {
		b.WriteString("- Dependencies are managed through a manifest\n")
	} else {
		b.WriteString("- No dependency manifest found\n")
	}

	if hasWorkflows(tree) {
		b.WriteString("- Continuous integration is configured\n")
	} else {
		b.WriteString("- No CI configuration detected\n")
	}

	if tree.HasFile("README.md") || tree.HasFile("README.rst") || tree.HasFile("README") {
		b.WriteString("- Ships a README\n")
	} else {
		b.WriteString("- No README found\n")
	}
	return b.String()
}

func hasManifest(tree *domain.TreeNode) bool {
	for _, f := range manifestFiles {
		if tree.HasFile(f) {
			return true
		}
	}
	return false
}

func hasWorkflows(tree *domain.TreeNode) bool {
	for _, p := range tree.FilePaths() {
		if strings.HasPrefix(p, ".github/workflows/") {
			return true
		}
	}
	return false
}

func buildEnhanceRequest(meta *domain.RepositoryMetadata, tree *domain.TreeNode, langs []domain.LanguageStat, readme string, samples []domain.CodeSample) port.EnhanceRequest {
	// The excerpt limit counts runes so the cut never splits a multi-byte rune.
	excerpt := readme
	if len(excerpt) > readmeExcerptLimit {
		if runes := []rune(excerpt); len(runes) > readmeExcerptLimit {
			excerpt = string(runes[:readmeExcerptLimit])
		}
	}

	paths := tree.FilePaths()
	if len(paths) > fileTreeLimit {
		paths = paths[:fileTreeLimit]
	}

	languages := make([]string, 0, len(langs))
	for _, l := range langs {
		languages = append(languages, fmt.Sprintf("%s (%.1f%%)", l.Name, l.Percent))
	}

	return port.EnhanceRequest{
		Name:          meta.FullName,
		Description:   meta.Description,
		ReadmeExcerpt: excerpt,
		Languages:     languages,
		FileTree:      paths,
		Samples:       samples,
	}
}
