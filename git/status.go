package git

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grovetools/release/errors"
	"github.com/samber/lo"
)

const (
	headerMarker   = "#"
	trackingHeader = "# branch.ab "
)

// Reason explains why a working copy is not clean.
type Reason int

const (
	// ReasonNone means the working copy is clean.
	ReasonNone Reason = iota
	// ReasonLocalChanges means at least one file is modified, staged or untracked.
	ReasonLocalChanges
	// ReasonUnpushedChanges means the branch is ahead of its upstream.
	ReasonUnpushedChanges
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "clean"
	case ReasonLocalChanges:
		return "local changes present"
	case ReasonUnpushedChanges:
		return "unpushed changes present"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// Verdict is the cleanliness verdict derived from one status report.
type Verdict struct {
	// Reason is ReasonNone for a clean working copy.
	Reason Reason `json:"reason"`

	// ContentLines are the non-empty, non-header lines of the report, one per changed file.
	ContentLines []string `json:"content_lines,omitempty"`

	// AheadToken and BehindToken are the raw "+N" and "-N" tokens of the tracking header.
	AheadToken  string `json:"ahead_token"`
	BehindToken string `json:"behind_token"`

	// Ahead and Behind are the parsed counts.
	Ahead  int `json:"ahead"`
	Behind int `json:"behind"`

	// TagChecked is always false: whether HEAD is tagged is not verified.
	TagChecked bool `json:"tag_checked"`
}

// Clean reports whether the working copy has neither local nor unpushed changes.
func (v *Verdict) Clean() bool {
	return v.Reason == ReasonNone
}

// Message returns the diagnostic shown to the user, or "" when clean.
func (v *Verdict) Message() string {
	switch v.Reason {
	case ReasonLocalChanges:
		var b strings.Builder
		b.WriteString("there are some local changes in the repository:")
		for _, line := range v.ContentLines {
			b.WriteString("\n  ")
			b.WriteString(line)
		}
		return b.String()
	case ReasonUnpushedChanges:
		return "there are some unpushed changes in the repository"
	default:
		return ""
	}
}

// ParseStatus turns the output of `git status --porcelain=2 --branch` into a Verdict.
//
// Local changes take precedence over unpushed commits. A report without a
// tracking header, or with more than one, is rejected with STATUS_MALFORMED;
// note that git omits the header entirely for branches without an upstream.
func ParseStatus(report []byte) (*Verdict, error) {
	lines := strings.Split(string(report), "\n")

	isHeader := func(line string, _ int) bool { return strings.HasPrefix(line, headerMarker) }
	headers := lo.Filter(lines, isHeader)
	content := lo.Compact(lo.Reject(lines, isHeader))

	tracking := lo.Filter(headers, func(line string, _ int) bool {
		return strings.HasPrefix(line, trackingHeader)
	})
	switch len(tracking) {
	case 0:
		return nil, errors.StatusMalformed("no '# branch.ab' header (does the branch have an upstream?)")
	case 1:
	default:
		return nil, errors.StatusMalformed(fmt.Sprintf("%d '# branch.ab' headers, expected exactly one", len(tracking))).
			WithDetail("headers", tracking)
	}

	verdict, err := parseTrackingHeader(tracking[0])
	if err != nil {
		return nil, err
	}
	verdict.ContentLines = content

	switch {
	case len(content) > 0:
		verdict.Reason = ReasonLocalChanges
	case verdict.AheadToken != "+0":
		verdict.Reason = ReasonUnpushedChanges
	default:
		verdict.Reason = ReasonNone
	}

	return verdict, nil
}

// parseTrackingHeader reads "# branch.ab +<ahead> -<behind>".
func parseTrackingHeader(line string) (*Verdict, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return nil, errors.StatusMalformed(fmt.Sprintf("tracking header %q has %d fields, expected 4", line, len(fields)))
	}

	ahead, err := parseCount(fields[2], "+")
	if err != nil {
		return nil, errors.StatusMalformed(fmt.Sprintf("bad ahead count in %q", line))
	}
	behind, err := parseCount(fields[3], "-")
	if err != nil {
		return nil, errors.StatusMalformed(fmt.Sprintf("bad behind count in %q", line))
	}

	return &Verdict{
		AheadToken:  fields[2],
		BehindToken: fields[3],
		Ahead:       ahead,
		Behind:      behind,
	}, nil
}

func parseCount(token, sign string) (int, error) {
	if !strings.HasPrefix(token, sign) {
		return 0, fmt.Errorf("missing %q prefix", sign)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(token, sign))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("not a count: %q", token)
	}
	return n, nil
}
