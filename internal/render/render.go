// Package render turns controller snapshots into text, json or yaml.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/spigell/match-responder/internal/matching"
	"github.com/spigell/match-responder/internal/utils"
)

// DescriptionLimit is the number of characters of a job description shown in text output.
const DescriptionLimit = 200

const emptyMessage = "No job matches found. Run matching to get started!"

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", "table", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (text, json or yaml)", s)
	}
}

// Description shortens a job description for display.
func Description(s string) string {
	return utils.Truncate(s, DescriptionLimit)
}

// Write renders the snapshot in the requested format.
func Write(w io.Writer, format Format, snap matching.Snapshot) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeText(w, snap)
	}
}

func writeText(w io.Writer, snap matching.Snapshot) error {
	if snap.Notice != "" {
		if _, err := fmt.Fprintf(w, "%s\n\n", snap.Notice); err != nil {
			return err
		}
	}

	page := snap.Page
	if page.Len() == 0 {
		_, err := fmt.Fprintln(w, emptyMessage)
		return err
	}

	if _, err := fmt.Fprintln(w, Header(page)); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for _, r := range page.Results {
		fmt.Fprintf(tw, "\n%s\t%d%% (%s)\n", Title(r), r.MatchScore, r.Tier())
		fmt.Fprintf(tw, "  id:\t%s\n", r.ID)
		if desc := Description(r.JobDescription); desc != "" {
			fmt.Fprintf(tw, "  description:\t%s\n", desc)
		}
		fmt.Fprintf(tw, "  matched skills:\t%s\n", joinSkills(r.MatchedSkills))
		if len(r.MissingSkills) > 0 {
			fmt.Fprintf(tw, "  missing skills:\t%s\n", joinSkills(r.MissingSkills))
		}
		if r.Summary != "" {
			fmt.Fprintf(tw, "  summary:\t%s\n", r.Summary)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%s\n", Footer(page))
	return err
}

// Header is the one line overview of a page.
func Header(p matching.Page) string {
	return fmt.Sprintf("Showing %d of %d matches | Page %d of %d", p.Len(), p.TotalMatches, p.Page, p.TotalPages)
}

// Footer shows where navigation is possible.
func Footer(p matching.Page) string {
	prev, next := "  ", "  "
	if p.HasPrevious {
		prev = "<-"
	}
	if p.HasNext {
		next = "->"
	}

	return fmt.Sprintf("%s Page %d of %d %s", prev, p.Page, p.TotalPages, next)
}

// Title is the job title and company of a match.
func Title(r matching.Result) string {
	switch {
	case r.JobCompany == "":
		return r.JobTitle
	case r.JobTitle == "":
		return r.JobCompany
	default:
		return fmt.Sprintf("%s @ %s", r.JobTitle, r.JobCompany)
	}
}

func joinSkills(skills []string) string {
	if len(skills) == 0 {
		return "-"
	}

	return strings.Join(skills, ", ")
}
