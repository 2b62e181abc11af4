package dashboard

import (
	"net/url"

	"datadash/internal/chart"
)

// Query parameter names carrying widget state between renders
const (
	ParamRaw        = "raw"
	ParamSummary    = "summary"
	ParamColumn     = "column"
	ParamPrevColumn = "prev_column"
	ParamValues     = "values"
	ParamValuesSet  = "values_set"
	ParamX          = "x"
	ParamY          = "y"
	ParamKind       = "kind"
)

// Selection is the state of every widget on the page. Zero values mean
// "use the default".
type Selection struct {
	ShowRaw     bool
	ShowSummary bool

	FilterColumn string
	// PrevColumn is the filter column the submitting page was rendered
	// with; a change of column discards FilterValues.
	PrevColumn string
	// FilterValues holds distinct-value keys. It is only honored when
	// ValuesSet is true, so an explicit empty choice differs from none.
	FilterValues []string
	ValuesSet    bool

	X    string
	Y    string
	Kind chart.Kind
}

// ParseSelection reads widget state from a query string or form
func ParseSelection(q url.Values) Selection {
	kind, _ := chart.ParseKind(q.Get(ParamKind))
	return Selection{
		ShowRaw:      q.Get(ParamRaw) == "1",
		ShowSummary:  q.Get(ParamSummary) == "1",
		FilterColumn: q.Get(ParamColumn),
		PrevColumn:   q.Get(ParamPrevColumn),
		FilterValues: q[ParamValues],
		ValuesSet:    q.Get(ParamValuesSet) == "1",
		X:            q.Get(ParamX),
		Y:            q.Get(ParamY),
		Kind:         kind,
	}
}

// Query encodes a resolved selection so that parsing it again reproduces
// the same render
func (s Selection) Query() url.Values {
	q := url.Values{}
	if s.ShowRaw {
		q.Set(ParamRaw, "1")
	}
	if s.ShowSummary {
		q.Set(ParamSummary, "1")
	}
	if s.FilterColumn != "" {
		q.Set(ParamColumn, s.FilterColumn)
		q.Set(ParamPrevColumn, s.FilterColumn)
		q.Set(ParamValuesSet, "1")
		for _, v := range s.FilterValues {
			q.Add(ParamValues, v)
		}
	}
	if s.X != "" {
		q.Set(ParamX, s.X)
	}
	if s.Y != "" {
		q.Set(ParamY, s.Y)
	}
	if s.Kind != "" {
		q.Set(ParamKind, string(s.Kind))
	}
	return q
}
