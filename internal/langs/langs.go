// Package langs holds the table of languages the service knows by name.
package langs

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed languages.yaml
var languagesYAML []byte

// Language is one entry of the table.
type Language struct {
	Code    string `yaml:"code" json:"code"`
	Name    string `yaml:"name" json:"name"`
	Popular bool   `yaml:"popular" json:"popular"`
}

type table struct {
	Languages []Language `yaml:"languages"`
}

var (
	loadOnce sync.Once
	all      []Language
	byCode   map[string]Language
	loadErr  error
)

func load() {
	loadOnce.Do(func() {
		var t table
		if err := yaml.Unmarshal(languagesYAML, &t); err != nil {
			loadErr = fmt.Errorf("parse languages.yaml: %w", err)
			return
		}
		all = t.Languages
		byCode = make(map[string]Language, len(all))
		for _, l := range all {
			byCode[l.Code] = l
		}
	})
}

// All returns every known language in table order.
func All() []Language {
	load()
	out := make([]Language, len(all))
	copy(out, all)
	return out
}

// Popular returns the languages flagged as popular, in table order.
func Popular() []Language {
	load()
	var out []Language
	for _, l := range all {
		if l.Popular {
			out = append(out, l)
		}
	}
	return out
}

// Name returns the English name for code, or the code itself if unknown.
func Name(code string) string {
	load()
	if l, ok := byCode[strings.ToLower(code)]; ok {
		return l.Name
	}
	return code
}

// Known reports whether code is in the table.
func Known(code string) bool {
	load()
	_, ok := byCode[strings.ToLower(code)]
	return ok
}

// Err reports a problem loading the embedded table, if any.
func Err() error {
	load()
	return loadErr
}
