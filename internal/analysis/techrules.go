package analysis

import (
	"strings"

	"github.com/repolens/repolens/internal/domain"
)

// TechStack categories.
const (
	CategoryFrameworks = "frameworks"
	CategoryLibraries  = "libraries"
	CategoryTools      = "tools"
)

// TechRule maps structural markers in the file tree to one technology entry.
// A rule matches when any of its markers is present. The table is data, not
// logic: callers can extend or replace it without touching the synthesizer.
type TechRule struct {
	Name     string   // technology name, e.g. "Docker"
	Category string   // CategoryFrameworks, CategoryLibraries or CategoryTools
	Files    []string // root-level file names
	Dirs     []string // root-level directory names
	Prefixes []string // path prefixes anywhere in the tree
	Contains []string // case-insensitive substrings of any path
}

// Matches reports whether any marker of the rule is present in the tree.
func (r TechRule) Matches(tree *domain.TreeNode, paths []string) bool {
	for _, f := range r.Files {
		if tree.HasFile(f) {
			return true
		}
	}
	for _, d := range r.Dirs {
		if tree.HasDir(d) {
			return true
		}
	}
	for _, p := range paths {
		for _, prefix := range r.Prefixes {
			if strings.HasPrefix(p, prefix) {
				return true
			}
		}
		lower := strings.ToLower(p)
		for _, sub := range r.Contains {
			if strings.Contains(lower, sub) {
				return true
			}
		}
	}
	return false
}

// DefaultTechRules covers common ecosystem markers: dependency manifests,
// container/build files, CI definitions and well-known framework footprints.
// The set is heuristic by nature and deliberately open for extension.
func DefaultTechRules() []TechRule {
	return []TechRule{
		// Package ecosystems and build tools
		{Name: "npm", Category: CategoryTools, Files: []string{"package.json"}},
		{Name: "pip", Category: CategoryTools, Files: []string{"requirements.txt"}},
		{Name: "Pipenv", Category: CategoryTools, Files: []string{"Pipfile"}},
		{Name: "Poetry", Category: CategoryTools, Files: []string{"pyproject.toml", "poetry.lock"}},
		{Name: "Go modules", Category: CategoryTools, Files: []string{"go.mod"}},
		{Name: "Cargo", Category: CategoryTools, Files: []string{"Cargo.toml"}},
		{Name: "Bundler", Category: CategoryTools, Files: []string{"Gemfile"}},
		{Name: "Maven", Category: CategoryTools, Files: []string{"pom.xml"}},
		{Name: "Gradle", Category: CategoryTools, Files: []string{"build.gradle", "build.gradle.kts"}},
		{Name: "Composer", Category: CategoryTools, Files: []string{"composer.json"}},
		{Name: "Make", Category: CategoryTools, Files: []string{"Makefile"}},
		{Name: "Docker", Category: CategoryTools, Files: []string{"Dockerfile", "docker-compose.yml", "docker-compose.yaml"}},
		{Name: "GitHub Actions", Category: CategoryTools, Prefixes: []string{".github/workflows/"}},
		{Name: "Webpack", Category: CategoryTools, Files: []string{"webpack.config.js"}},
		{Name: "Vite", Category: CategoryTools, Files: []string{"vite.config.js", "vite.config.ts"}},
		{Name: "Jest", Category: CategoryTools, Files: []string{"jest.config.js", "jest.config.ts"}},
		{Name: "pytest", Category: CategoryTools, Files: []string{"pytest.ini", "conftest.py"}},

		// Frameworks
		{Name: "Django", Category: CategoryFrameworks, Files: []string{"manage.py"}},
		{Name: "Flask", Category: CategoryFrameworks, Contains: []string{"flask"}},
		{Name: "FastAPI", Category: CategoryFrameworks, Contains: []string{"fastapi"}},
		{Name: "React", Category: CategoryFrameworks, Contains: []string{"react"}},
		{Name: "Angular", Category: CategoryFrameworks, Files: []string{"angular.json"}},
		{Name: "Vue.js", Category: CategoryFrameworks, Contains: []string{"vue"}},
		{Name: "Next.js", Category: CategoryFrameworks, Files: []string{"next.config.js", "next.config.mjs"}},
		{Name: "Ruby on Rails", Category: CategoryFrameworks, Files: []string{"config.ru"}},

		// Storage
		{Name: "PostgreSQL", Category: CategoryLibraries, Contains: []string{"postgres"}},
		{Name: "MySQL", Category: CategoryLibraries, Contains: []string{"mysql"}},
		{Name: "SQLite", Category: CategoryLibraries, Contains: []string{"sqlite"}},
		{Name: "MongoDB", Category: CategoryLibraries, Contains: []string{"mongo"}},
		{Name: "Redis", Category: CategoryLibraries, Contains: []string{"redis"}},
	}
}

// manifestFiles mark dependency management for the code-quality checklist.
var manifestFiles = []string{
	"package.json", "requirements.txt", "Pipfile", "pyproject.toml",
	"go.mod", "Cargo.toml", "Gemfile", "pom.xml", "build.gradle", "composer.json",
}
