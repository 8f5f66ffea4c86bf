package adr

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// frontMatterDelim separates the YAML header from the markdown body.
const frontMatterDelim = "---"

// Parse decodes an ADR file: YAML front-matter between "---" delimiters
// followed by the markdown body. The policy block is kept raw (see
// FrontMatter.Policy) so a malformed policy never fails document parsing.
func Parse(raw []byte) (*Document, error) {
	text := string(bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n")))

	if !strings.HasPrefix(text, frontMatterDelim+"\n") {
		return nil, fmt.Errorf("missing front-matter: file must start with %q", frontMatterDelim)
	}
	rest := text[len(frontMatterDelim)+1:]

	// The closing delimiter must be a whole line: "----" or a YAML value
	// that merely starts with "---" does not terminate the header.
	lines := strings.Split(rest, "\n")
	end := -1
	for i, line := range lines {
		if line == frontMatterDelim {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, fmt.Errorf("unterminated front-matter: closing %q not found", frontMatterDelim)
	}
	header := strings.Join(lines[:end], "\n")
	body := strings.Join(lines[end+1:], "\n")
	body = strings.TrimPrefix(body, "\n")

	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return nil, fmt.Errorf("parsing front-matter: %w", err)
	}

	if fm.ID == "" {
		return nil, fmt.Errorf("front-matter missing required field 'id'")
	}
	if _, err := ParseID(fm.ID); err != nil {
		return nil, err
	}
	if fm.Title == "" {
		return nil, fmt.Errorf("front-matter missing required field 'title' (%s)", fm.ID)
	}
	if err := ValidateStatus(fm.Status); err != nil {
		return nil, fmt.Errorf("%s: %w", fm.ID, err)
	}

	return &Document{FrontMatter: fm, Body: strings.TrimLeft(body, "\n")}, nil
}

// Markdown serializes the document back to its file form with YAML
// front-matter. Round-trips with Parse for any document Parse accepts.
func (d *Document) Markdown() (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.FrontMatter); err != nil {
		return "", fmt.Errorf("encoding front-matter for %s: %w", d.ID(), err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding front-matter for %s: %w", d.ID(), err)
	}

	var sb strings.Builder
	sb.WriteString(frontMatterDelim + "\n")
	sb.Write(buf.Bytes())
	sb.WriteString(frontMatterDelim + "\n\n")
	sb.WriteString(strings.TrimRight(d.Body, "\n"))
	sb.WriteString("\n")
	return sb.String(), nil
}

// NewDocument assembles a fresh proposed ADR from its parts. The body is
// built from the standard sections; empty optional sections are omitted.
func NewDocument(id, title, context, decision, consequences, alternatives string, deciders, tags []string) *Document {
	var body strings.Builder
	body.WriteString("## Context\n\n" + strings.TrimSpace(context) + "\n\n")
	body.WriteString("## Decision\n\n" + strings.TrimSpace(decision) + "\n\n")
	body.WriteString("## Consequences\n\n" + strings.TrimSpace(consequences) + "\n")
	if strings.TrimSpace(alternatives) != "" {
		body.WriteString("\n## Alternatives Considered\n\n" + strings.TrimSpace(alternatives) + "\n")
	}

	return &Document{
		FrontMatter: FrontMatter{
			ID:       id,
			Title:    title,
			Status:   StatusProposed,
			Date:     timeNow().UTC().Format("2006-01-02"),
			Deciders: deciders,
			Tags:     tags,
		},
		Body: body.String(),
	}
}
