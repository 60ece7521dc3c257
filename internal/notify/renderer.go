package notify

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/phrazzld/workboard-api/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

//go:embed templates/*.html templates/set.yaml
var templateFS embed.FS

// Placeholders rendered in place of empty task fields.
const (
	NoDescription = "No description"
	Unassigned    = "Unassigned"
	NoDueDate     = "No due date"
)

// ErrPayloadMismatch is returned when a payload does not match its kind.
var ErrPayloadMismatch = errors.New("payload does not match notification kind")

// ErrUnknownKind is returned for a kind the template set does not define.
var ErrUnknownKind = errors.New("unknown notification kind")

// Renderer builds a message body for a notification kind.
type Renderer interface {
	Render(kind Kind, payload any) (Rendered, error)
}

// Rendered is a subject and HTML body.
type Rendered struct {
	Subject string
	HTML    string
}

// RendererConfig controls presentation details.
type RendererConfig struct {
	// BaseURL is the web application root used for call-to-action links.
	BaseURL string
	// DateLayout is a Go time layout for the recipient locale.
	DateLayout string
	// Language is a BCP 47 tag used for number formatting.
	Language string
	// Location is the time zone dates are shown in. Defaults to UTC.
	Location *time.Location
}

type kindTemplate struct {
	Subject string `yaml:"subject"`
	Heading string `yaml:"heading"`
	Action  string `yaml:"action"`
}

type style struct {
	Label string `yaml:"label"`
	Color string `yaml:"color"`
}

type templateSet struct {
	Kinds    map[Kind]kindTemplate `yaml:"kinds"`
	Status   map[string]style      `yaml:"status"`
	Priority map[string]style      `yaml:"priority"`
}

type row struct {
	Label string
	Value string
	Color string
}

type changeRow struct {
	Field string
	From  string
	To    string
}

// view is the data every layout renders. Subjects are evaluated against its
// Code, Title and Date fields.
type view struct {
	Subject     string
	Heading     string
	Intro       string
	Rows        []row
	Changes     []changeRow
	ActionLabel string
	ActionURL   string
	Footer      string

	Code  string
	Title string
	Date  string
}

// TemplateRenderer renders notifications from the embedded template set.
type TemplateRenderer struct {
	set      templateSet
	layout   *template.Template
	subjects map[Kind]*texttemplate.Template
	printer  *message.Printer
	cfg      RendererConfig
}

var _ Renderer = (*TemplateRenderer)(nil)

// NewTemplateRenderer parses the embedded template set.
func NewTemplateRenderer(cfg RendererConfig) (*TemplateRenderer, error) {
	if cfg.DateLayout == "" {
		cfg.DateLayout = "02/01/2006"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	tag := language.English
	if cfg.Language != "" {
		parsed, err := language.Parse(cfg.Language)
		if err != nil {
			return nil, fmt.Errorf("invalid notification language %q: %w", cfg.Language, err)
		}
		tag = parsed
	}

	raw, err := templateFS.ReadFile("templates/set.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read template set: %w", err)
	}
	var set templateSet
	if err := yaml.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("failed to parse template set: %w", err)
	}

	layout, err := template.New("layout.html").
		Funcs(template.FuncMap{
			// Colors come from the embedded template set, never from payloads.
			"safeCSS": func(s string) template.CSS { return template.CSS(s) },
		}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	subjects := make(map[Kind]*texttemplate.Template, len(Kinds))
	for _, k := range Kinds {
		kt, ok := set.Kinds[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s missing from template set", ErrUnknownKind, k)
		}
		st, err := texttemplate.New(string(k)).Option("missingkey=error").Parse(kt.Subject)
		if err != nil {
			return nil, fmt.Errorf("failed to parse subject for %s: %w", k, err)
		}
		subjects[k] = st
	}

	return &TemplateRenderer{
		set:      set,
		layout:   layout,
		subjects: subjects,
		printer:  message.NewPrinter(tag),
		cfg:      cfg,
	}, nil
}

// Render implements Renderer.
func (r *TemplateRenderer) Render(kind Kind, payload any) (Rendered, error) {
	kt, ok := r.set.Kinds[kind]
	if !ok {
		return Rendered{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	var v view
	var err error
	switch kind {
	case KindTaskCreated, KindTaskUpdated:
		v, err = r.taskView(kind, payload)
	case KindPasswordIssued:
		v, err = r.passwordView(payload)
	case KindTest:
		v, err = r.testView(payload)
	case KindDailyReport:
		v, err = r.reportView(payload)
	}
	if err != nil {
		return Rendered{}, err
	}
	v.Heading = kt.Heading
	v.ActionLabel = kt.Action

	var subject bytes.Buffer
	if err := r.subjects[kind].Execute(&subject, v); err != nil {
		return Rendered{}, fmt.Errorf("failed to render subject for %s: %w", kind, err)
	}
	v.Subject = subject.String()

	var body bytes.Buffer
	if err := r.layout.ExecuteTemplate(&body, "layout.html", v); err != nil {
		return Rendered{}, fmt.Errorf("failed to render %s: %w", kind, err)
	}
	return Rendered{Subject: v.Subject, HTML: body.String()}, nil
}

func (r *TemplateRenderer) taskView(kind Kind, payload any) (view, error) {
	p, ok := payload.(TaskPayload)
	if !ok || p.Task == nil {
		return view{}, fmt.Errorf("%w: %s wants TaskPayload, got %T", ErrPayloadMismatch, kind, payload)
	}
	t := p.Task

	status := r.set.Status[string(t.Status)]
	priority := r.set.Priority[string(t.Priority)]
	v := view{
		Code:  t.Code,
		Title: t.Title,
		Rows: []row{
			{Label: "Task", Value: t.Code},
			{Label: "Title", Value: t.Title},
			{Label: "Description", Value: orDefault(t.Description, NoDescription)},
			{Label: "Assignee", Value: orDefault(t.Assignee, Unassigned)},
			{Label: "Status", Value: orDefault(status.Label, string(t.Status)), Color: status.Color},
			{Label: "Priority", Value: orDefault(priority.Label, string(t.Priority)), Color: priority.Color},
			{Label: "Due date", Value: r.date(t.DueDate)},
			{Label: "Labels", Value: orDefault(strings.Join(t.Labels, ", "), "None")},
		},
		ActionURL: r.link("tasks", t.ID.String()),
	}
	if p.Actor != "" {
		v.Intro = "By " + p.Actor
	}
	if kind == KindTaskUpdated {
		for _, ch := range p.Changes {
			v.Changes = append(v.Changes, changeRow{
				Field: ch.Field,
				From:  r.value(ch.Field, ch.From),
				To:    r.value(ch.Field, ch.To),
			})
		}
	}
	return v, nil
}

func (r *TemplateRenderer) passwordView(payload any) (view, error) {
	p, ok := payload.(PasswordPayload)
	if !ok {
		return view{}, fmt.Errorf("%w: password-issued wants PasswordPayload, got %T", ErrPayloadMismatch, payload)
	}
	return view{
		Intro: "Use the temporary password below to sign in, then change it.",
		Rows: []row{
			{Label: "Name", Value: p.Name},
			{Label: "Email", Value: p.Email},
			{Label: "Temporary password", Value: p.Password},
		},
		ActionURL: r.link("login"),
	}, nil
}

func (r *TemplateRenderer) testView(payload any) (view, error) {
	p, ok := payload.(TestPayload)
	if !ok {
		return view{}, fmt.Errorf("%w: test wants TestPayload, got %T", ErrPayloadMismatch, payload)
	}
	sent := p.SentAt
	return view{
		Intro:     "This is a test message sent from the WorkBoard admin panel.",
		Rows:      []row{{Label: "Sent", Value: r.date(&sent)}},
		ActionURL: r.link(),
	}, nil
}

func (r *TemplateRenderer) reportView(payload any) (view, error) {
	p, ok := payload.(ReportPayload)
	if !ok {
		return view{}, fmt.Errorf("%w: daily-report wants ReportPayload, got %T", ErrPayloadMismatch, payload)
	}
	s := p.Report
	// The snapshot date is already truncated in the reporting time zone.
	date := s.Date.Format(r.cfg.DateLayout)
	rows := []row{{Label: "Total tasks", Value: r.count(s.Total)}}
	for _, st := range domain.Statuses {
		sty := r.set.Status[string(st)]
		rows = append(rows, row{
			Label: orDefault(sty.Label, string(st)),
			Value: r.count(s.ByStatus[st]),
			Color: sty.Color,
		})
	}
	rows = append(rows,
		row{Label: "Overdue", Value: r.count(s.OverdueTasks), Color: r.set.Priority["P1"].Color},
		row{Label: "Due today", Value: r.count(s.DueTodayTasks)},
		row{Label: "Pending P1", Value: r.count(s.P1Tasks), Color: r.set.Priority["P1"].Color},
		row{Label: "Pending P2", Value: r.count(s.P2Tasks), Color: r.set.Priority["P2"].Color},
	)
	return view{
		Date:      date,
		Intro:     "Task summary as of " + date,
		Rows:      rows,
		ActionURL: r.link(),
		Footer:    fmt.Sprintf("Report ref %016x", s.Fingerprint()),
	}, nil
}

func (r *TemplateRenderer) date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NoDueDate
	}
	return t.In(r.cfg.Location).Format(r.cfg.DateLayout)
}

func (r *TemplateRenderer) count(n int) string {
	return r.printer.Sprintf("%d", n)
}

// value formats a recorded change value of field for display. Lookup tables
// and date formatting apply only to the field they describe; any other text
// is shown as written.
func (r *TemplateRenderer) value(field string, v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case domain.Status:
		v = string(x)
	case domain.Priority:
		v = string(x)
	case *time.Time:
		if x == nil {
			return "None"
		}
		return r.date(x)
	case time.Time:
		return r.date(&x)
	}

	switch domain.Field(field) {
	case domain.FieldStatus:
		if s, ok := v.(string); ok {
			return orDefault(r.set.Status[s].Label, orDefault(s, "None"))
		}
	case domain.FieldPriority:
		if s, ok := v.(string); ok {
			return orDefault(r.set.Priority[s].Label, orDefault(s, "None"))
		}
	case domain.FieldDueDate:
		if s, ok := v.(string); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return r.date(&t)
			}
		}
	}

	switch x := v.(type) {
	case string:
		return orDefault(x, "None")
	case []string:
		return orDefault(strings.Join(x, ", "), "None")
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			parts = append(parts, fmt.Sprint(e))
		}
		return orDefault(strings.Join(parts, ", "), "None")
	default:
		return fmt.Sprint(x)
	}
}

func (r *TemplateRenderer) link(elem ...string) string {
	base := r.cfg.BaseURL
	if base == "" {
		base = "/"
	}
	u, err := url.JoinPath(base, elem...)
	if err != nil {
		return base
	}
	return u
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
