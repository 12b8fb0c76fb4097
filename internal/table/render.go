package table

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/iliyamo/philharmonic-console/internal/model"
	"github.com/iliyamo/philharmonic-console/internal/ui"
)

func (t *Table) skeleton() *html.Node {
	return ui.El("div", ui.Class("table-wrapper"), ui.At("data-table", t.scope),
		ui.El("div", ui.Class("table-header"), ui.ID(t.scope+"-header"), t.header()),
		ui.El("div", ui.Class("table-filters"), ui.ID(t.scope+"-filters"), ui.At("data-form", ""), t.filters()),
		ui.El("div", ui.Class("table-container"),
			ui.El("table", ui.Class("data-table"),
				ui.El("thead", ui.El("tr", ui.ID(t.scope+"-columns"), t.columnHeads())),
				ui.El("tbody", ui.ID(t.scope+"-body"), t.messageRow("row-loading", "Loading..."))),
		),
		ui.El("div", ui.Class("table-pagination"), ui.ID(t.scope+"-footer"), t.pagerIdle()),
	)
}

// bind registers the table's handlers.  Controls only exist when their
// capability and role allow it, so the binding pass already gates them; the
// handlers check again because the role may change between render and post.
func (t *Table) bind() {
	s := t.screen
	s.On(t.scope+"/sort", func(ctx context.Context, ev ui.Event) { t.ToggleSort(ctx, ev.Arg) })
	s.On(t.scope+"/search", func(ctx context.Context, ev ui.Event) { t.Search(ctx, ev.Values[SearchKey]) })
	s.On(t.scope+"/filter", func(ctx context.Context, ev ui.Event) { t.Filter(ctx, ev.Values) })
	s.On(t.scope+"/next", func(ctx context.Context, ev ui.Event) { t.NextPage(ctx) })
	s.On(t.scope+"/prev", func(ctx context.Context, ev ui.Event) { t.PrevPage(ctx) })
	s.On(t.scope+"/create", func(ctx context.Context, ev ui.Event) { t.Create(ctx) })
	s.On(t.scope+"/edit", func(ctx context.Context, ev ui.Event) { t.EditItem(ctx, ev.Arg) })
	s.On(t.scope+"/delete", func(ctx context.Context, ev ui.Event) { t.DeleteItem(ctx, ev.Arg, ev.Confirmed) })
	s.On(t.scope+"/return", func(ctx context.Context, ev ui.Event) { t.ReturnTicket(ctx, ev.Arg, ev.Input) })
}

func (t *Table) header() []*html.Node {
	out := []*html.Node{ui.El("h2", t.cfg.Title())}
	if t.canCreate() {
		out = append(out, ui.El("button", ui.Type("button"), ui.Class("btn-primary"), ui.Action(t.scope+"/create", ""), "Create"))
	}
	return out
}

// isDateField matches date, startDate, endDate and similar names.
func isDateField(f string) bool {
	return f == "date" || strings.HasSuffix(f, "Date")
}

func (t *Table) filters() *html.Node {
	fields := t.cfg.SearchFields()
	if len(fields) == 0 {
		return ui.El("input", ui.Type("text"), ui.Name(SearchKey), ui.At("placeholder", "Search..."),
			ui.Value(t.state.Filters[SearchKey]), ui.Action(t.scope+"/search", ""), ui.OnChange())
	}
	group := ui.El("div", ui.Class("filter-group"))
	for _, f := range fields {
		cur := t.state.Filters[f]
		var ctl *html.Node
		switch {
		case isDateField(f):
			ctl = ui.El("input", ui.Type("date"), ui.At("placeholder", f), ui.Value(cur))
		case f == "role" || f == "status":
			opts := []*html.Node{ui.El("option", ui.Value(""), ui.If(cur == "", ui.At("selected", "")), "All")}
			for _, r := range model.Roles {
				opts = append(opts, ui.El("option", ui.Value(r.String()), ui.If(cur == r.String(), ui.At("selected", "")), r.String()))
			}
			ctl = ui.El("select", opts)
		default:
			ctl = ui.El("input", ui.Type("text"), ui.At("placeholder", f), ui.Value(cur))
		}
		ctl.Attr = append(ctl.Attr, ui.ID(t.scope+"-filter-"+f), ui.Name(f), ui.OnChange())
		ctl.Attr = append(ctl.Attr, ui.Action(t.scope+"/filter", "")...)
		group.AppendChild(ctl)
	}
	return group
}

func (t *Table) columnHeads() []*html.Node {
	cols := t.cfg.Columns()
	out := make([]*html.Node, 0, len(cols)+1)
	for _, c := range cols {
		th := ui.El("th", c.Label)
		if c.Sortable {
			icon := "⇅"
			if t.state.Sort.Field == c.Key {
				icon = "▲"
				if t.state.Sort.Desc {
					icon = "▼"
				}
			}
			th.AppendChild(ui.El("span", ui.Class("sort-icon"), ui.Action(t.scope+"/sort", c.Key), icon))
		}
		out = append(out, th)
	}
	return append(out, ui.El("th", "Actions"))
}

func (t *Table) refreshHeader() {
	if c := t.box.Child(t.scope + "-columns"); c != nil {
		c.Set(t.columnHeads()...)
	}
}

func (t *Table) refreshFilters() {
	if c := t.box.Child(t.scope + "-filters"); c != nil {
		c.Set(t.filters())
	}
}

func (t *Table) messageRow(class, text string) *html.Node {
	span := strconv.Itoa(len(t.cfg.Columns()) + 1)
	return ui.El("tr", ui.Class(class), ui.El("td", ui.At("colspan", span), text))
}

func (t *Table) rows(items []model.Entity) []*html.Node {
	if len(items) == 0 {
		return []*html.Node{t.messageRow("row-empty", "No data")}
	}
	out := make([]*html.Node, 0, len(items))
	for _, item := range items {
		out = append(out, t.row(item))
	}
	return out
}

func (t *Table) row(item model.Entity) *html.Node {
	tr := ui.El("tr")
	for _, c := range t.cfg.Columns() {
		text := model.FormatValue(item[c.Key])
		if c.Format != nil {
			text = c.Format(item[c.Key], item)
		}
		if strings.TrimSpace(text) == "" {
			text = "-"
		}
		tr.AppendChild(ui.El("td", ui.At("data-key", c.Key), text))
	}

	actions := ui.El("td", ui.Class("actions"))
	id, ok := item.ResolveID(t.cfg.Kind())
	if !ok {
		t.log.Warnf("table %s: %v (fields %v): actions suppressed", t.cfg.Title(), ErrMissingID, t.cfg.Kind().IDFields())
		actions.AppendChild(ui.Text("-"))
		tr.AppendChild(actions)
		return tr
	}
	tr.Attr = append(tr.Attr, ui.At("data-id", id))
	if t.canEdit() {
		actions.AppendChild(ui.El("button", ui.Type("button"), ui.Class("btn-small"), ui.Action(t.scope+"/edit", id), "Edit"))
	}
	if t.canDelete() {
		actions.AppendChild(ui.El("button", ui.Type("button"), ui.Class("btn-small btn-danger"),
			ui.Action(t.scope+"/delete", id), ui.Confirm("Delete this record?"), "Delete"))
	}
	if t.canReturn() {
		actions.AppendChild(ui.El("button", ui.Type("button"), ui.Class("btn-small"),
			ui.Action(t.scope+"/return", id), ui.Prompt("Reason for return:"), "Return"))
	}
	tr.AppendChild(actions)
	return tr
}

func (t *Table) pagerIdle() []*html.Node {
	return []*html.Node{
		ui.El("button", ui.Type("button"), ui.Class("btn"), ui.Action(t.scope+"/prev", ""), ui.Disabled(), "Previous"),
		ui.El("span", ui.Class("page-info"), "Page 1"),
		ui.El("button", ui.Type("button"), ui.Class("btn"), ui.Action(t.scope+"/next", ""), ui.Disabled(), "Next"),
	}
}

func (t *Table) pager(p model.Page[model.Entity]) []*html.Node {
	return []*html.Node{
		ui.El("button", ui.Type("button"), ui.Class("btn"), ui.Action(t.scope+"/prev", ""), ui.If(p.First, ui.Disabled()), "Previous"),
		ui.El("span", ui.Class("page-info"), fmt.Sprintf("Page %d of %d (Total: %d)", p.Number+1, p.TotalPages, p.TotalElements)),
		ui.El("button", ui.Type("button"), ui.Class("btn"), ui.Action(t.scope+"/next", ""), ui.If(p.Last, ui.Disabled()), "Next"),
	}
}

// rowFromCells rebuilds a partial entity from the rendered row with the
// given id.  Placeholder dashes become empty values.
func (t *Table) rowFromCells(id string) model.Entity {
	body := t.box.Child(t.scope + "-body")
	if body == nil {
		return nil
	}
	tr := ui.Find(body.Node(), func(n *html.Node) bool {
		v, ok := ui.AttrOf(n, "data-id")
		return ok && v == id
	})
	if tr == nil {
		return nil
	}
	item := model.Entity{"id": id}
	for _, td := range ui.FindAll(tr, func(n *html.Node) bool { _, ok := ui.AttrOf(n, "data-key"); return ok }) {
		key, _ := ui.AttrOf(td, "data-key")
		if text := ui.TextOf(td); text != "-" {
			item[key] = text
		}
	}
	return item
}
