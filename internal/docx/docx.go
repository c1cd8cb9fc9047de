// Package docx converts Word documents to plain text for ingestion.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// Result is a converted document plus any non-fatal conversion warnings.
type Result struct {
	Text     string
	Warnings []string
}

// ConvertFile extracts paragraph and table text from a .docx file.
func ConvertFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return Convert(data)
}

// Convert extracts text from DOCX bytes. Legacy .doc files are not OOXML
// zip archives and fail here with a descriptive error.
func Convert(data []byte) (*Result, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("not a DOCX archive: %w", err)
	}

	var docFile *zip.File
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open document.xml: %w", err)
	}
	defer rc.Close()

	xmlContent, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read document.xml: %w", err)
	}

	return parseDocumentXML(xmlContent), nil
}

// OOXML structures, namespace prefixes stripped before unmarshalling.
type document struct {
	Body body `xml:"body"`
}

type body struct {
	Paragraphs []paragraph `xml:"p"`
	Tables     []table     `xml:"tbl"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []text `xml:"t"`
}

type text struct {
	Content string `xml:",chardata"`
}

type table struct {
	Rows []tableRow `xml:"tr"`
}

type tableRow struct {
	Cells []tableCell `xml:"tc"`
}

type tableCell struct {
	Paragraphs []paragraph `xml:"p"`
}

var (
	openTagRe  = regexp.MustCompile(`<w:`)
	closeTagRe = regexp.MustCompile(`</w:`)
	xmlnsRe    = regexp.MustCompile(`xmlns:w="[^"]*"`)
	wtRe       = regexp.MustCompile(`<w:t[^>]*>([^<]+)</w:t>`)
)

func parseDocumentXML(xmlContent []byte) *Result {
	var doc document
	if err := xml.Unmarshal(cleanNamespaces(xmlContent), &doc); err != nil {
		// Degrade to a regex sweep over the raw markup.
		return &Result{
			Text:     fallbackExtract(xmlContent),
			Warnings: []string{fmt.Sprintf("document.xml did not parse cleanly: %v", err)},
		}
	}

	var blocks []string
	for _, p := range doc.Body.Paragraphs {
		if t := paragraphText(&p); strings.TrimSpace(t) != "" {
			blocks = append(blocks, t)
		}
	}
	for _, tbl := range doc.Body.Tables {
		if t := tableText(&tbl); strings.TrimSpace(t) != "" {
			blocks = append(blocks, t)
		}
	}

	return &Result{Text: strings.Join(blocks, "\n")}
}

func cleanNamespaces(content []byte) []byte {
	s := string(content)
	s = openTagRe.ReplaceAllString(s, `<`)
	s = closeTagRe.ReplaceAllString(s, `</`)
	s = xmlnsRe.ReplaceAllString(s, ``)
	return []byte(s)
}

func paragraphText(p *paragraph) string {
	var b strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Text {
			b.WriteString(t.Content)
		}
	}
	return b.String()
}

func tableText(tbl *table) string {
	var rows []string
	for _, row := range tbl.Rows {
		var cells []string
		for _, cell := range row.Cells {
			var cellText []string
			for _, p := range cell.Paragraphs {
				if t := paragraphText(&p); t != "" {
					cellText = append(cellText, t)
				}
			}
			cells = append(cells, strings.Join(cellText, " "))
		}
		rows = append(rows, strings.Join(cells, " | "))
	}
	return strings.Join(rows, "\n")
}

func fallbackExtract(content []byte) string {
	var b strings.Builder
	for _, match := range wtRe.FindAllSubmatch(content, -1) {
		if len(match) > 1 {
			b.Write(match[1])
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}
