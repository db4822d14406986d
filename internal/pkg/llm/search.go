package llm

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const duckduckgoURL = "https://html.duckduckgo.com/html"

// WebSearcher 为赛道分析提供实时网页检索
type WebSearcher struct {
	httpClient *resty.Client
	searchURL  string
}

func NewWebSearcher() *WebSearcher {
	ua := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	client := resty.New().
		SetTimeout(15 * time.Second).
		SetHeader("User-Agent", ua)

	return &WebSearcher{httpClient: client, searchURL: duckduckgoURL}
}

// Search 返回前5条检索结果的标题/链接/摘要文本
func (s *WebSearcher) Search(ctx context.Context, query string) (string, error) {
	if err := SearchSem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer SearchSem.Release(1)

	formData := url.Values{}
	formData.Set("q", query)

	resp, err := s.httpClient.R().SetContext(ctx).SetFormDataFromValues(formData).Post(s.searchURL)
	if err != nil {
		log.ErrorContext(ctx, "WebSearch", "error", err)
		return "", errors.New("网络搜索失败")
	}
	// 403/5xx 同样带分类返回，不能把错误页当检索结果去解析
	if resp.IsError() {
		return "", ClassifyHTTPStatus("web_search", resp.StatusCode(), resp.String())
	}

	doc, _ := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	var builder strings.Builder
	realIdx := 1
	doc.Find(".result").Each(func(i int, sel *goquery.Selection) {
		if realIdx > 5 {
			return
		}
		anchor := sel.Find(".result__title a")
		link, _ := anchor.Attr("href")
		if strings.Contains(link, "y.js") || strings.Contains(link, "ad_provider") {
			return
		}
		if strings.Contains(link, "uddg=") {
			u, _ := url.Parse(link)
			rawLink := u.Query().Get("uddg")
			if decodedLink, err := url.QueryUnescape(rawLink); err == nil {
				link = decodedLink
			} else {
				link = rawLink
			}
		}
		title := strings.TrimSpace(anchor.Text())
		snippet := strings.TrimSpace(sel.Find(".result__snippet").Text())
		builder.WriteString(fmt.Sprintf("[%d] %s\n%s\n%s\n\n", realIdx, title, link, snippet))
		realIdx++
	})
	log.InfoContext(ctx, "WebSearch", "query", query, "results", realIdx-1)
	return builder.String(), nil
}
