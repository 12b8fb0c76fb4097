package ui

import (
	"golang.org/x/net/html"
)

// Option is one choice of a select field.
type Option struct {
	Value string
	Label string
}

// Field describes one form input.  Type is an HTML input type, or "select"
// and "textarea".
type Field struct {
	Name        string
	Label       string
	Type        string
	Options     []Option
	ReadOnly    bool
	Step        string
	Min         string
	Max         string
	Placeholder string
}

// Render builds the labelled input with its current value and, when errMsg
// is set, the inline error below it.
func (f Field) Render(value, errMsg string) *html.Node {
	var input *html.Node
	common := []html.Attribute{ID("f-" + f.Name), Name(f.Name)}
	if f.ReadOnly {
		common = append(common, At("readonly", ""))
	}
	if errMsg != "" {
		common = append(common, Class("error-field"))
	}
	switch f.Type {
	case "select":
		opts := make([]*html.Node, 0, len(f.Options))
		for _, o := range f.Options {
			opts = append(opts, El("option", Value(o.Value), If(o.Value == value, At("selected", "")), o.Label))
		}
		input = El("select", common, opts)
	case "textarea":
		input = El("textarea", common, value)
	default:
		typ := f.Type
		if typ == "" {
			typ = "text"
		}
		input = El("input", common, Type(typ), Value(value),
			optional("step", f.Step), optional("min", f.Min), optional("max", f.Max),
			optional("placeholder", f.Placeholder))
	}
	group := El("div", Class("form-group"), El("label", At("for", "f-"+f.Name), f.Label), input)
	if errMsg != "" {
		group.AppendChild(El("div", Class("field-error"), errMsg))
	}
	return group
}

func optional(key, val string) any {
	if val == "" {
		return nil
	}
	return At(key, val)
}

// Form renders fields inside a form posting scope+"/submit".  The form is
// also the value scope: the browser sends the named inputs inside it.
func Form(scope, submitLabel string, fields []Field, values, errs map[string]string, extra ...*html.Node) *html.Node {
	if submitLabel == "" {
		submitLabel = "Save"
	}
	body := make([]*html.Node, 0, len(fields)+2)
	for _, f := range fields {
		body = append(body, f.Render(values[f.Name], errs[f.Name]))
	}
	body = append(body, extra...)
	return El("form", At("data-form", ""), Action(scope+"/submit", ""), body,
		El("div", Class("form-actions"),
			El("button", Type("submit"), Class("btn-primary"), submitLabel)))
}

// Pick keeps only the values of the given fields.
func Pick(values map[string]string, fields []Field) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if v, ok := values[f.Name]; ok {
			out[f.Name] = v
		}
	}
	return out
}
