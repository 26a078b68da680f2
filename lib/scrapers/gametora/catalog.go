package gametora

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"

	"umaharvest-backend/lib/htmlutil"
	"umaharvest-backend/lib/textutil"
)

// Entry is one catalog list item before it is mapped into a service
// level entity.
type Entry struct {
	Id          string
	DisplayName string
	ImageRef    string
	Rarity      string
	Href        string
}

// Reference is one row of the skill or status reference table.
type Reference struct {
	Name       string
	EffectText string
}

// Characters fetches the trainee character list.
func (c *Client) Characters(ctx context.Context) ([]Entry, error) {
	return c.entityList(ctx, "/umamusume/characters", "/umamusume/characters/")
}

// SupportCards fetches the support card list.
func (c *Client) SupportCards(ctx context.Context) ([]Entry, error) {
	return c.entityList(ctx, "/umamusume/supports", "/umamusume/supports/")
}

func (c *Client) entityList(ctx context.Context, path, hrefPrefix string) ([]Entry, error) {
	ctx, span := tracer.Start(ctx, "entityList")
	defer span.End()

	doc, err := c.fetchDocument(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch list page")
		return nil, err
	}
	return parseEntityList(doc, hrefPrefix), nil
}

// Scenarios fetches the scenario names. Scenarios have no stable
// numeric id, they are identified by display name alone.
func (c *Client) Scenarios(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Scenarios")
	defer span.End()

	doc, err := c.fetchDocument(ctx, "/umamusume/scenarios")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch scenario page")
		return nil, err
	}

	var names []string
	seen := map[string]bool{}
	for _, entry := range parseEntityList(doc, "/umamusume/scenarios/") {
		if entry.DisplayName == "" || seen[entry.DisplayName] {
			continue
		}
		seen[entry.DisplayName] = true
		names = append(names, entry.DisplayName)
	}
	return names, nil
}

// Skills fetches the skill reference table.
func (c *Client) Skills(ctx context.Context) ([]Reference, error) {
	return c.referenceTable(ctx, "/umamusume/skills")
}

// Statuses fetches the status condition reference table.
func (c *Client) Statuses(ctx context.Context) ([]Reference, error) {
	return c.referenceTable(ctx, "/umamusume/statuses")
}

func (c *Client) referenceTable(ctx context.Context, path string) ([]Reference, error) {
	ctx, span := tracer.Start(ctx, "referenceTable")
	defer span.End()

	doc, err := c.fetchDocument(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch reference page")
		return nil, err
	}
	return parseReferenceTable(doc), nil
}

// parseEntityList walks every anchor under the given section. List
// pages render each entry as a link wrapping a portrait image and the
// display name.
func parseEntityList(doc *goquery.Document, hrefPrefix string) []Entry {
	var out []Entry
	seen := map[string]bool{}

	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.HasPrefix(href, hrefPrefix) || href == hrefPrefix {
			return
		}
		if seen[href] {
			return
		}
		seen[href] = true

		entry := Entry{
			Href:        href,
			DisplayName: htmlutil.CleanText(sel.Text()),
			ImageRef:    htmlutil.GetImageSrc(sel),
		}
		entry.Id = textutil.ImageRefId(entry.ImageRef)
		if entry.Id == "" {
			entry.Id = textutil.ImageRefId(href)
		}
		if entry.Id == "" {
			entry.Id = strings.TrimPrefix(href, hrefPrefix)
		}
		entry.Rarity = rarityOf(sel)

		out = append(out, entry)
	})
	return out
}

// rarityOf pulls a rarity marker out of the entry's class list, e.g.
// "sc_rarity_ssr" -> "SSR".
func rarityOf(sel *goquery.Selection) string {
	class, _ := sel.Attr("class")
	for _, part := range strings.Fields(class) {
		if i := strings.LastIndex(part, "rarity_"); i >= 0 {
			return strings.ToUpper(part[i+len("rarity_"):])
		}
	}
	return ""
}

// parseReferenceTable reads name/description rows. Reference pages
// render each row as an element with a "tooltips_tooltip" name cell
// followed by the effect description.
func parseReferenceTable(doc *goquery.Document) []Reference {
	var out []Reference
	seen := map[string]bool{}

	doc.Find("[data-name], tr").Each(func(_ int, sel *goquery.Selection) {
		name, ok := sel.Attr("data-name")
		if !ok {
			cells := sel.Find("td")
			if cells.Length() < 2 {
				return
			}
			name = htmlutil.CleanText(cells.Eq(0).Text())
			effect := htmlutil.CleanText(cells.Eq(1).Text())
			appendReference(&out, seen, name, effect)
			return
		}
		effect, _ := sel.Attr("data-effect")
		if effect == "" {
			effect = htmlutil.CleanText(sel.Text())
		}
		appendReference(&out, seen, name, effect)
	})
	return out
}

func appendReference(out *[]Reference, seen map[string]bool, name, effect string) {
	if name == "" || seen[name] {
		return
	}
	seen[name] = true
	*out = append(*out, Reference{Name: name, EffectText: effect})
}
