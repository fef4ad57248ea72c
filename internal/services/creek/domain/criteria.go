package domain

import (
	"pvcreek/internal/core/filter"
	perr "pvcreek/internal/platform/errors"
)

// Criteria is the flat form of a request's filters used by the CLI and the API
// Each record field takes either an exact value or a pattern, never both
type Criteria struct {
	Prefix   string
	Contains string
	Regex    string

	DomainCode   string
	DomainCodeRe string
	PageTitle    string
	PageTitleRe  string
	Language     string
	LanguageRe   string
	Project      string
	ProjectRe    string

	MinViews *int64
	MaxViews *int64
	Mobile   *bool
}

// Build turns c into line and record criteria
func (c Criteria) Build() (filter.LineCriteria, filter.RecordCriteria, error) {
	lines := filter.LineCriteria{Prefix: c.Prefix, Contains: c.Contains, Regex: c.Regex}

	var rec filter.RecordCriteria
	var err error
	if rec.DomainCode, err = choose("domain_code", c.DomainCode, c.DomainCodeRe); err != nil {
		return lines, rec, err
	}
	if rec.PageTitle, err = choose("page_title", c.PageTitle, c.PageTitleRe); err != nil {
		return lines, rec, err
	}
	if rec.Language, err = choose("language", c.Language, c.LanguageRe); err != nil {
		return lines, rec, err
	}
	if rec.ProjectDomain, err = choose("project", c.Project, c.ProjectRe); err != nil {
		return lines, rec, err
	}

	if c.MinViews != nil && c.MaxViews != nil && *c.MinViews > *c.MaxViews {
		return lines, rec, perr.WithField(perr.Validationf("min_views %d is greater than max_views %d", *c.MinViews, *c.MaxViews), "min_views")
	}
	rec.Views = filter.Range{Min: c.MinViews, Max: c.MaxViews}
	if c.Mobile != nil {
		rec.Mobile = filter.Is(*c.Mobile)
	}
	return lines, rec, nil
}

// Apply builds c into req
func (c Criteria) Apply(req *Request) error {
	lines, rec, err := c.Build()
	if err != nil {
		return err
	}
	req.Lines, req.Records = lines, rec
	return nil
}

func choose(field, exact, pattern string) (filter.StringMatch, error) {
	if exact != "" && pattern != "" {
		return filter.Any(), perr.WithField(perr.Validationf("%s and %s_re are mutually exclusive", field, field), field)
	}
	if pattern != "" {
		return filter.Pattern(pattern), nil
	}
	return filter.Exact(exact), nil
}
