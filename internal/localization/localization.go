// Package localization reads Paradox localisation files.
//
// Localisation files are not YAML despite the extension: values may hold
// unescaped quotes and the files start with a UTF-8 BOM, so they are
// scanned line by line with a regex instead of a YAML decoder. Files are
// named <anything>_l_<language>.yml and hold one key per line:
//
//	l_english:
//	 PROV1013:0 "Akershus"
package localization

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// _linePattern matches one localisation entry: key, optional numeric
// revision marker, then the value in double quotes. Everything after the
// closing quote (usually a comment) is ignored.
var _linePattern = regexp.MustCompile(`^\s*([\w.\-']+):\d*\s*"(.*)"`)

var _bom = []byte{0xEF, 0xBB, 0xBF}

// Localizer resolves localisation keys to display strings.
type Localizer struct {
	language string
	entries  map[string]string
}

// New returns an empty Localizer for the given language.
func New(language string) *Localizer {
	return &Localizer{
		language: language,
		entries:  make(map[string]string),
	}
}

// Language returns the language the Localizer was built for.
func (l *Localizer) Language() string {
	return l.language
}

// Len reports the number of loaded entries.
func (l *Localizer) Len() int {
	return len(l.entries)
}

// LoadFolder scans dir recursively for files of the Localizer's language
// and merges their entries. Later calls override earlier ones, so load
// the base game first and replacement folders after.
func (l *Localizer) LoadFolder(dir string) error {
	suffix := fmt.Sprintf("_l_%s.yml", l.language)

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), suffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning localisation folder %s: %w", dir, err)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := l.LoadFile(path); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile merges one localisation file's entries, overriding existing keys.
func (l *Localizer) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading localisation %s: %w", path, err)
	}
	l.load(raw)
	return nil
}

func (l *Localizer) load(raw []byte) {
	raw = bytes.TrimPrefix(raw, _bom)

	sc := bufio.NewScanner(bytes.NewReader(raw))
	// Some vanilla lines exceed the default 64K token limit.
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		m := _linePattern.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		l.entries[m[1]] = m[2]
	}
}

// Localize resolves key to its display string, or returns def when the
// key is not loaded.
func (l *Localizer) Localize(key, def string) string {
	if v, ok := l.entries[key]; ok {
		return v
	}
	return def
}

// Has reports whether key is loaded.
func (l *Localizer) Has(key string) bool {
	_, ok := l.entries[key]
	return ok
}
