package nodes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

const (
	// NodeTypeCrawler — тип crawler-узла.
	NodeTypeCrawler = "crawler"

	// Значения по умолчанию.
	defaultCrawlTimeout = 30 * time.Second
	waitPollInterval    = 500 * time.Millisecond
)

// Ключи конфигурации crawler-узла.
const (
	configWaitForSelector = "waitForSelector"
	configWaitInIframe    = "waitInIframe"
	configExtractSelector = "extractSelector"
	configExtractRules    = "extractRules"
)

// CrawlerNode — узел извлечения контента веб-страницы.
//
// Загружает URL, опционально дожидается появления CSS-селектора
// (повторными загрузками страницы, в том числе внутри iframe),
// и извлекает контент.
//
// Конфигурация:
//
//	{
//	    "url": "https://example.com",
//	    "waitForSelector": ".article-body",
//	    "waitInIframe": false,
//	    "timeout": 30000,
//	    "extractSelector": ".article-body",
//	    "extractRules": [
//	        {"name": "title", "selector": "h1", "target": "text"},
//	        {"name": "links", "selector": "a", "target": "attribute",
//	         "attribute": "href", "multiple": true}
//	    ]
//	}
//
// Без extractSelector/extractRules выходом становится очищенный
// текст всей страницы.
type CrawlerNode struct {
	client *http.Client
}

// NewCrawlerNode создаёт новый CrawlerNode.
func NewCrawlerNode(client *http.Client) *CrawlerNode {
	if client == nil {
		client = &http.Client{Timeout: defaultCrawlTimeout}
	}
	return &CrawlerNode{client: client}
}

// Type возвращает тип узла.
func (n *CrawlerNode) Type() string {
	return NodeTypeCrawler
}

// Execute загружает страницу и извлекает контент.
func (n *CrawlerNode) Execute(ctx context.Context, req *Request) (*Response, error) {
	pageURL := GetConfigString(req.Config, configURL)
	if pageURL == "" {
		// URL может прийти и входом от предыдущего узла
		if s, ok := req.Input.(string); ok {
			pageURL = s
		}
	}
	if pageURL == "" {
		return nil, fmt.Errorf("%w: %s: url is required", ErrInvalidConfig, NodeTypeCrawler)
	}
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("%w: %s: invalid url %q", ErrInvalidConfig, NodeTypeCrawler, pageURL)
	}

	timeout := defaultCrawlTimeout
	if ms := GetConfigInt(req.Config, configTimeoutMs); ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	doc, err := n.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	// Ожидание селектора: страница перезапрашивается, пока селектор
	// не появится или не истечёт таймаут. Истечение не фатально —
	// работаем с тем, что загрузилось.
	if selector := GetConfigString(req.Config, configWaitForSelector); selector != "" {
		doc, err = n.waitForSelector(ctx, pageURL, doc, selector,
			GetConfigBool(req.Config, configWaitInIframe, false))
		if err != nil {
			return nil, err
		}
	}

	// Правила извлечения дают структурированный выход
	if rules := GetConfigSlice(req.Config, configExtractRules); len(rules) > 0 {
		return NewResponse(extractByRules(doc, rules)), nil
	}

	// Одиночный селектор сужает выход до одного элемента
	if selector := GetConfigString(req.Config, configExtractSelector); selector != "" {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			return nil, fmt.Errorf("%s: selector %q matched nothing at %s", NodeTypeCrawler, selector, pageURL)
		}
		return NewResponse(sanitizeContent(sel.Text())), nil
	}

	return NewResponse(sanitizeContent(doc.Find("body").Text())), nil
}

// fetchDocument загружает и парсит одну страницу.
func (n *CrawlerNode) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (compatible; NodeflowCrawler/1.0)")

	resp, err := n.client.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %s", ErrNodeTimeout, pageURL)
		}
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %s: HTTP %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}

// waitForSelector перезапрашивает страницу, пока селектор не появится.
//
// При waitInIframe селектор ищется в документе первого iframe с src.
// Таймаут ожидания не фатален: возвращается последняя загруженная версия.
func (n *CrawlerNode) waitForSelector(ctx context.Context, pageURL string, doc *goquery.Document, selector string, inIframe bool) (*goquery.Document, error) {
	for {
		target := doc
		if inIframe {
			if frameDoc := n.iframeDocument(ctx, pageURL, doc); frameDoc != nil {
				target = frameDoc
			}
		}
		if target.Find(selector).Length() > 0 {
			return target, nil
		}

		select {
		case <-ctx.Done():
			slog.Warn("crawler selector wait timed out, continuing with loaded content",
				"url", pageURL, "selector", selector)
			return doc, nil
		case <-time.After(waitPollInterval):
		}

		fresh, err := n.fetchDocument(ctx, pageURL)
		if err != nil {
			// Повторная загрузка упала — работаем с тем, что есть
			return doc, nil
		}
		doc = fresh
	}
}

// iframeDocument загружает документ первого iframe страницы (nil, если его нет).
func (n *CrawlerNode) iframeDocument(ctx context.Context, pageURL string, doc *goquery.Document) *goquery.Document {
	src, ok := doc.Find("iframe").First().Attr("src")
	if !ok || src == "" {
		return nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	ref, err := url.Parse(src)
	if err != nil {
		return nil
	}

	frameDoc, err := n.fetchDocument(ctx, base.ResolveReference(ref).String())
	if err != nil {
		return nil
	}
	return frameDoc
}

// extractByRules применяет правила извлечения к документу.
//
// Правило: {name, selector, target: text|html|attribute, attribute, multiple}.
func extractByRules(doc *goquery.Document, rules []any) map[string]any {
	result := make(map[string]any, len(rules))

	for _, raw := range rules {
		rule, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		name := GetConfigString(rule, "name")
		selector := GetConfigString(rule, "selector")
		if name == "" || selector == "" {
			continue
		}

		target := GetConfigString(rule, "target")
		attribute := GetConfigString(rule, "attribute")

		if GetConfigBool(rule, "multiple", false) {
			var values []any
			doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
				values = append(values, extractValue(sel, target, attribute))
			})
			result[name] = values
			continue
		}

		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			result[name] = nil
			continue
		}
		result[name] = extractValue(sel, target, attribute)
	}

	return result
}

// extractValue извлекает значение одного элемента по цели правила.
func extractValue(sel *goquery.Selection, target, attribute string) any {
	switch target {
	case "html":
		html, err := sel.Html()
		if err != nil {
			return ""
		}
		return html
	case "attribute":
		value, _ := sel.Attr(attribute)
		return value
	default:
		return sanitizeContent(sel.Text())
	}
}

// sanitizeContent нормализует извлечённый текст: схлопывает пробельные
// последовательности и выбрасывает непечатаемые символы.
func sanitizeContent(content string) string {
	var b strings.Builder
	b.Grow(len(content))

	inSpace := false
	for _, r := range content {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if !unicode.IsPrint(r) {
			continue
		}
		if inSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inSpace = false
		b.WriteRune(r)
	}

	return b.String()
}
