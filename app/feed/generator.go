package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"time"
)

const defaultGenerator = "benbrougher.tech"

type Generator struct {
	name string
	now  func() time.Time
}

func NewGenerator(version string) *Generator {
	return &Generator{
		name: fmt.Sprintf("%s/%s", defaultGenerator, cmp.Or(version, "dev")),
		now:  time.Now,
	}
}

// Run serializes the channel and its items as RSS 2.0. Items are written in
// the order given.
func (g *Generator) Run(feedConfig Config, items []Item) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", feedConfig.Title, 4)
	g.writeElement(&buf, "link", feedConfig.Site, 4)
	g.writeElement(&buf, "description", cmp.Or(feedConfig.Description, feedConfig.Title), 4)

	selfLink := feedConfig.Site + "/rss.xml"
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(selfLink)))

	lastBuildDate := g.now().In(time.Local)
	if len(items) > 0 && !items[0].PubDate.IsZero() {
		lastBuildDate = items[0].PubDate
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", g.name, 4)

	if feedConfig.CustomData != "" {
		buf.WriteString("    ")
		buf.WriteString(feedConfig.CustomData)
		buf.WriteString("\n")
	}

	for _, item := range items {
		g.writeItem(&buf, item)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, item Item) {
	buf.WriteString("    <item>\n")

	g.writeElement(buf, "title", item.Title, 6)
	g.writeElement(buf, "link", item.Link, 6)

	guid := cmp.Or(item.GUID, item.Link)
	if guid != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(guid)))
		xml.EscapeText(buf, []byte(guid))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "description", item.Description, 6)

	if item.Content != "" && item.Content != item.Description {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.Write(bytes.ReplaceAll([]byte(item.Content), []byte("]]>"), []byte("]]]]><![CDATA[>")))
		buf.WriteString("]]></content:encoded>\n")
	}

	if !item.PubDate.IsZero() {
		g.writeElement(buf, "pubDate", item.PubDate.Format(time.RFC1123Z), 6)
	}

	g.writeElement(buf, "author", item.Author, 6)

	for _, category := range item.Categories {
		g.writeElement(buf, "category", category, 6)
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return (len(s) > 7 && s[:7] == "http://") || (len(s) > 8 && s[:8] == "https://")
}
