package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

const DefaultBoardContainerID = "trello-board"

// LayoutProps are the inputs to the page layout.
type LayoutProps struct {
	Location         string
	Title            string
	Children         template.HTML
	DontRenderFooter bool
}

// BoardEmbed is a container for the externally loaded Trello board.
// ScriptURL defaults to the site's board script.
type BoardEmbed struct {
	BoardURL    string
	ContainerID string
	ScriptURL   string
}

type NavLink struct {
	Label    string
	URL      string
	External bool
}

// PostView is what the index and post pages need from a post.
type PostView struct {
	Slug        string
	Title       string
	Description string
	ContentHTML template.HTML
	PubDate     time.Time
	Tags        []string
}

func (p PostView) Link() string {
	return "/posts/" + p.Slug
}

// Renderer renders the site's pages from the embedded templates.
type Renderer struct {
	config    *Config
	templates *template.Template
	now       func() time.Time
}

func NewRenderer(config *Config) (*Renderer, error) {
	if config == nil {
		return nil, fmt.Errorf("site config is required")
	}

	tmpl, err := template.New("site").Funcs(template.FuncMap{
		"formatDate": formatDate,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Renderer{
		config:    config,
		templates: tmpl,
		now:       time.Now,
	}, nil
}

func (r *Renderer) Config() *Config {
	return r.config
}

// Layout wraps children with the header, navigation and footer. The site root
// gets the large heading, every other location the small one.
func (r *Renderer) Layout(props LayoutProps) (template.HTML, error) {
	nav, err := r.Navigation()
	if err != nil {
		return "", err
	}

	isRoot := props.Location == r.config.RootPath()
	link := Style{
		{"box-shadow", "none"},
		{"text-decoration", "none"},
	}

	var heading Style
	if isRoot {
		heading = Scale(1.5).With(
			Decl{"margin-bottom", "0"},
			Decl{"margin-top", "0"},
		)
		link = link.With(Decl{"color", r.config.Style.PrimaryAccent})
	} else {
		heading = Style{
			{"font-family", "Montserrat, sans-serif"},
			{"margin-top", "0"},
			{"color", r.config.Style.PrimaryAccent},
		}
		link = link.With(Decl{"color", "inherit"})
	}

	data := struct {
		IsRoot         bool
		RootPath       string
		Title          string
		Children       template.HTML
		Navigation     template.HTML
		RenderFooter   bool
		Year           int
		BuiltWith      Link
		RSSURL         string
		OuterStyle     template.CSS
		ContainerStyle template.CSS
		HeadingStyle   template.CSS
		LinkStyle      template.CSS
	}{
		IsRoot:       isRoot,
		RootPath:     r.config.RootPath(),
		Title:        props.Title,
		Children:     props.Children,
		Navigation:   nav,
		RenderFooter: !props.DontRenderFooter,
		Year:         r.now().Year(),
		BuiltWith:    r.config.BuiltWith,
		RSSURL:       r.config.RSSURL(),
		OuterStyle: Style{
			{"background-color", r.config.Style.PrimaryBackground},
			{"color", r.config.Style.PrimaryText},
			{"min-height", "100vh"},
		}.CSS(),
		ContainerStyle: Style{
			{"margin-left", "auto"},
			{"margin-right", "auto"},
			{"max-width", Rhythm(30)},
			{"padding", Rhythm(1.5) + " " + Rhythm(0.75)},
		}.CSS(),
		HeadingStyle: heading.CSS(),
		LinkStyle:    link.CSS(),
	}

	return r.fragment("layout", data)
}

func (r *Renderer) NavLinks() []NavLink {
	return []NavLink{
		{Label: "Blog", URL: r.config.RootPath()},
		{Label: "Article Library", URL: r.config.Path("/articles")},
		{Label: "Knowledge Base", URL: r.config.KnowledgeBaseURL, External: true},
	}
}

func (r *Renderer) Navigation() (template.HTML, error) {
	data := struct {
		Links      []NavLink
		NavStyle   template.CSS
		LinkStyle  template.CSS
		LabelStyle template.CSS
	}{
		Links:    r.NavLinks(),
		NavStyle: Style{{"padding-bottom", "2em"}}.CSS(),
		LinkStyle: Style{
			{"display", "inline-block"},
			{"margin", ".5em"},
			{"padding", ".2em"},
		}.CSS(),
		LabelStyle: Style{{"padding", "0em"}, {"margin", "0em"}}.CSS(),
	}

	return r.fragment("navigation", data)
}

// Board renders the board container with its fallback link and a mount
// script that only runs once window.TrelloBoards exists.
func (r *Renderer) Board(embed BoardEmbed) (template.HTML, error) {
	if embed.BoardURL == "" {
		return "", fmt.Errorf("board URL is required")
	}
	if embed.ContainerID == "" {
		embed.ContainerID = DefaultBoardContainerID
	}
	if embed.ScriptURL == "" {
		embed.ScriptURL = r.config.BoardScriptURL
	}

	return r.fragment("board", embed)
}

func (r *Renderer) IndexPage(posts []PostView) ([]byte, error) {
	body, err := r.fragment("index", struct {
		Posts      []PostView
		PathPrefix string
		TitleStyle template.CSS
	}{
		Posts:      posts,
		PathPrefix: r.config.PathPrefix,
		TitleStyle: Style{{"margin-bottom", Rhythm(0.25)}}.CSS(),
	})
	if err != nil {
		return nil, err
	}

	return r.document(r.config.RootPath(), "All posts", body)
}

func (r *Renderer) ArticlesPage() ([]byte, error) {
	board, err := r.Board(BoardEmbed{BoardURL: r.config.BoardURL})
	if err != nil {
		return nil, err
	}

	body, err := r.fragment("articles", struct{ Board template.HTML }{Board: board})
	if err != nil {
		return nil, err
	}

	return r.document(r.config.Path("/articles"), "Articles by Other Authors", body)
}

func (r *Renderer) PostPage(post PostView) ([]byte, error) {
	body, err := r.fragment("post", struct {
		Post       PostView
		TitleStyle template.CSS
		DateStyle  template.CSS
		RuleStyle  template.CSS
	}{
		Post:       post,
		TitleStyle: Style{{"margin-top", Rhythm(1)}, {"margin-bottom", "0"}}.CSS(),
		DateStyle: Scale(-0.2).With(
			Decl{"display", "block"},
			Decl{"margin-bottom", Rhythm(1)},
		).CSS(),
		RuleStyle: Style{{"margin-bottom", Rhythm(1)}}.CSS(),
	})
	if err != nil {
		return nil, err
	}

	return r.document(r.config.Path(post.Link()), post.Title, body)
}

// NotFoundPage renders the 404 page for location.
func (r *Renderer) NotFoundPage(location string) ([]byte, error) {
	body, err := r.fragment("notfound", struct {
		Location string
		RootPath string
	}{
		Location: location,
		RootPath: r.config.RootPath(),
	})
	if err != nil {
		return nil, err
	}

	return r.document(location, "404: Not Found", body)
}

func (r *Renderer) document(location, pageTitle string, body template.HTML) ([]byte, error) {
	wrapped, err := r.Layout(LayoutProps{
		Location: location,
		Title:    r.config.Title,
		Children: body,
	})
	if err != nil {
		return nil, err
	}

	data := struct {
		Language    string
		PageTitle   string
		SiteTitle   string
		Description string
		Author      string
		RSSURL      string
		BodyStyle   template.CSS
		Body        template.HTML
	}{
		Language:    r.config.Language,
		PageTitle:   pageTitle,
		SiteTitle:   r.config.Title,
		Description: r.config.Description,
		Author:      r.config.Author,
		RSSURL:      r.config.RSSURL(),
		BodyStyle:   Style{{"margin", "0"}}.CSS(),
		Body:        wrapped,
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "document", data); err != nil {
		return nil, fmt.Errorf("failed to render page %s: %w", location, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) fragment(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 02, 2006")
}
