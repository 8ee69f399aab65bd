package source

import (
	"path"
	"sort"
	"strings"

	"github.com/reforge-labs/reforge/internal/config"
)

// SelectionError means automated selection found nothing worth reworking.
// The run that triggered it fails without calling the model.
type SelectionError struct {
	Reason string
}

func (e *SelectionError) Error() string {
	return "file selection: " + e.Reason
}

// binaryExts are extensions never sent to the model.
var binaryExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".ico": true, ".svg": true, ".bmp": true, ".tiff": true,
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true,
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true, ".7z": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".bin": true,
	".wasm": true, ".class": true, ".jar": true, ".pyc": true,
	".mp3": true, ".mp4": true, ".wav": true, ".avi": true, ".mov": true,
	".db": true, ".sqlite": true, ".lock": true,
}

// sourceExts score highest: these are the files a rework is really about.
var sourceExts = map[string]bool{
	".go": true, ".ts": true, ".tsx": true, ".js": true, ".jsx": true,
	".py": true, ".rb": true, ".java": true, ".kt": true, ".rs": true,
	".c": true, ".h": true, ".cpp": true, ".hpp": true, ".cs": true,
	".php": true, ".swift": true, ".scala": true, ".vue": true, ".svelte": true,
	".css": true, ".scss": true, ".sass": true, ".less": true,
	".html": true, ".sql": true, ".sh": true,
}

// Select picks up to cfg.MaxFiles representative files from a repository
// listing, staying within cfg.MaxTotalBytes overall. Skip-listed
// directories, binary and lockfile extensions, generated-looking files and
// anything over cfg.MaxFileBytes are excluded; the rest are scored and the
// winners returned in path order. An empty result is an error: a run with
// nothing to rework cannot proceed.
func Select(entries []TreeEntry, cfg config.SelectConfig) ([]string, error) {
	maxFiles := cfg.MaxFiles
	if maxFiles <= 0 {
		maxFiles = 40
	}
	maxBytes := cfg.MaxFileBytes
	if maxBytes <= 0 {
		maxBytes = 65536
	}
	maxTotal := cfg.MaxTotalBytes
	if maxTotal <= 0 {
		maxTotal = 1 << 20
	}

	type scored struct {
		path  string
		size  int64
		score int
	}
	var candidates []scored

	for _, e := range entries {
		if !eligible(e, maxBytes) {
			continue
		}
		candidates = append(candidates, scored{path: e.Path, size: e.Size, score: scoreFile(e.Path)})
	}

	if len(candidates) == 0 {
		return nil, &SelectionError{Reason: "no eligible files in repository"}
	}

	// Highest score first; ties break toward shorter, then lexicographic,
	// so the pick is stable across runs.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if len(candidates[i].path) != len(candidates[j].path) {
			return len(candidates[i].path) < len(candidates[j].path)
		}
		return candidates[i].path < candidates[j].path
	})

	// Budgeted walk over the ranking: files that would overflow the total
	// are skipped so smaller, lower-ranked files can still fit. The top
	// pick is always taken, budget or not.
	var total int64
	paths := make([]string, 0, maxFiles)
	for _, c := range candidates {
		if len(paths) == maxFiles {
			break
		}
		if len(paths) > 0 && total+c.size > maxTotal {
			continue
		}
		paths = append(paths, c.path)
		total += c.size
	}

	sort.Strings(paths)
	return paths, nil
}

func eligible(e TreeEntry, maxBytes int64) bool {
	if e.Size > maxBytes || e.Size == 0 {
		return false
	}

	lower := strings.ToLower(e.Path)
	for _, part := range strings.Split(path.Dir(lower), "/") {
		if skipDirs[part] {
			return false
		}
	}

	if binaryExts[path.Ext(lower)] {
		return false
	}

	base := path.Base(lower)
	switch base {
	case "package-lock.json", "yarn.lock", "pnpm-lock.yaml", "go.sum", "cargo.lock", "composer.lock", "gemfile.lock", "poetry.lock":
		return false
	}
	if strings.Contains(base, ".min.") || strings.HasSuffix(base, ".map") {
		return false
	}
	return true
}

// scoreFile ranks a path by how much it tells a reviewer about the project.
// Entry documents and manifests outrank source, source outranks the rest,
// and depth costs a point per directory.
func scoreFile(p string) int {
	lower := strings.ToLower(p)
	base := path.Base(lower)
	ext := path.Ext(lower)

	score := 0
	switch {
	case strings.HasPrefix(base, "readme"):
		score = 100
	case base == "package.json" || base == "go.mod" || base == "cargo.toml" ||
		base == "pyproject.toml" || base == "pom.xml" || base == "makefile" ||
		base == "dockerfile" || base == "docker-compose.yml":
		score = 80
	case sourceExts[ext]:
		score = 60
	case ext == ".md" || ext == ".rst":
		score = 40
	case ext == ".json" || ext == ".yml" || ext == ".yaml" || ext == ".toml":
		score = 30
	default:
		score = 10
	}

	// main/index/app entry points stand in for their whole tree.
	name := strings.TrimSuffix(base, ext)
	if name == "main" || name == "index" || name == "app" || name == "server" {
		score += 15
	}

	score -= strings.Count(p, "/") * 2
	return score
}
