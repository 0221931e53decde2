package domain

import "sort"

// TreeNode is a tagged variant: either a file leaf or a directory mapping
// child names to nested nodes. Each node is exclusively owned by its parent.
type TreeNode struct {
	File     bool                 `json:"file,omitempty"`
	Size     int64                `json:"size,omitempty"`
	Children map[string]*TreeNode `json:"children,omitempty"`
}

// NewDir returns an empty directory node.
func NewDir() *TreeNode {
	return &TreeNode{Children: make(map[string]*TreeNode)}
}

// NewFile returns a file leaf.
func NewFile(size int64) *TreeNode {
	return &TreeNode{File: true, Size: size}
}

// ChildNames returns the node's child names in lexicographic order so that
// every traversal of the same tree is deterministic.
func (n *TreeNode) ChildNames() []string {
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CountFiles returns the number of file leaves under n.
func (n *TreeNode) CountFiles() int {
	if n.File {
		return 1
	}
	count := 0
	for _, child := range n.Children {
		count += child.CountFiles()
	}
	return count
}

// Files returns every file under n as a FileEntry, in lexicographic path order.
func (n *TreeNode) Files() []FileEntry {
	var entries []FileEntry
	n.collectFiles("", &entries)
	return entries
}

func (n *TreeNode) collectFiles(prefix string, entries *[]FileEntry) {
	for _, name := range n.ChildNames() {
		child := n.Children[name]
		path := name
		if prefix != "" {
			path = prefix + "/" + name
		}
		if child.File {
			*entries = append(*entries, FileEntry{Path: path, Size: child.Size})
		} else {
			child.collectFiles(path, entries)
		}
	}
}

// FilePaths returns every file path under n in lexicographic order.
func (n *TreeNode) FilePaths() []string {
	entries := n.Files()
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths
}

// HasDir reports whether a direct child directory with the given name exists.
func (n *TreeNode) HasDir(name string) bool {
	child, ok := n.Children[name]
	return ok && !child.File
}

// HasFile reports whether a direct child file with the given name exists.
func (n *TreeNode) HasFile(name string) bool {
	child, ok := n.Children[name]
	return ok && child.File
}

// TechStack is the technology taxonomy: four disjoint categories.
type TechStack struct {
	Languages  []string `json:"languages"`
	Frameworks []string `json:"frameworks"`
	Libraries  []string `json:"libraries"`
	Tools      []string `json:"tools"`
}

// Enrichment is the AI-generated addition to the baseline description.
// It is attached all-or-nothing: a partial model response is discarded.
type Enrichment struct {
	Summary             string `json:"summary,omitempty"`
	Features            string `json:"features,omitempty"`
	Architecture        string `json:"architecture,omitempty"`
	UseCases            string `json:"use_cases,omitempty"`
	TechnicalAssessment string `json:"technical_assessment,omitempty"`
	Workflow            string `json:"workflow,omitempty"`
	Dependencies        string `json:"dependencies,omitempty"`
}

// Description is the narrative part of an analysis. The baseline fields are
// always populated; AIEnhanced is present only when enrichment succeeded.
type Description struct {
	Summary           string      `json:"summary"`
	Architecture      string      `json:"architecture"`
	MainFeatures      []string    `json:"main_features"`
	Technologies      TechStack   `json:"technologies"`
	SetupInstructions string      `json:"setup_instructions"`
	CodeQuality       string      `json:"code_quality"`
	AIEnhanced        *Enrichment `json:"ai_enhanced,omitempty"`
}

// AnalysisResult is the complete render-ready report for one repository.
// It is immutable after construction and scoped to a single request.
type AnalysisResult struct {
	Metadata     RepositoryMetadata `json:"repo_info"`
	Tree         *TreeNode          `json:"file_tree"`
	Languages    []LanguageStat     `json:"languages"`
	Contributors []ContributorStat  `json:"contributors"`
	Samples      []CodeSample       `json:"sample_code"`
	Description  Description        `json:"description"`
	Readme       string             `json:"readme"`
}
