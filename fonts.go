package dfpextract

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// FontTag is the semantic category assigned to a text element from its font.
type FontTag string

const (
	TagTitle      FontTag = "titulo"
	TagSubtitle   FontTag = "subtitulo"
	TagColumn     FontTag = "coluna"
	TagContent    FontTag = "conteudo"
	TagTableTitle FontTag = "titulo_tabela"
	TagText       FontTag = "texto"

	// TagUnmapped marks elements whose font is not in the mapping.
	// Only produced when strict font checking is disabled.
	TagUnmapped FontTag = ""
)

// Valid reports whether t is one of the known tags.
func (t FontTag) Valid() bool {
	switch t {
	case TagTitle, TagSubtitle, TagColumn, TagContent, TagTableTitle, TagText:
		return true
	}
	return false
}

// FontMapping maps font descriptors ("Name,Size") to font tags.
type FontMapping map[string]FontTag

// DefaultFontMapping returns the mapping for the CVM DFP filing template.
func DefaultFontMapping() FontMapping {
	return FontMapping{
		"Arial,Bold,11.0": TagTitle,
		"Arial,9.1":       TagSubtitle,
		"Arial,Bold,7.9":  TagColumn,
		"Arial,Bold,7.0":  TagColumn,
		"Arial,7.9":       TagContent,
		"Arial,Bold,12.0": TagTableTitle,
		"Arial,12.0":      TagText,
	}
}

// Classify returns the tag for a descriptor.
func (m FontMapping) Classify(descriptor string) (FontTag, bool) {
	tag, ok := m[descriptor]
	return tag, ok
}

// Validate checks that every mapped tag is a known tag.
func (m FontMapping) Validate() error {
	for descriptor, tag := range m {
		if !tag.Valid() {
			return errors.Errorf("font %q mapped to unknown tag %q", descriptor, tag)
		}
	}
	return nil
}

// FontDescriptor builds the classification key for a font: the base font name
// without its subset prefix, followed by the size rounded to one decimal.
func FontDescriptor(fontName string, size float64) string {
	return fmt.Sprintf("%s,%.1f", baseFontName(fontName), math.Round(size*10)/10)
}

// baseFontName strips a six-letter subset tag such as "ABCDEF+".
func baseFontName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) > 7 && name[6] == '+' {
		for _, r := range name[:6] {
			if r < 'A' || r > 'Z' {
				return name
			}
		}
		return name[7:]
	}
	return name
}
