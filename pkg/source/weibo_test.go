package source

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const weiboBoardHTML = `
<div id="pl_top_realtimehot">
  <table>
    <tr><th>序号</th><th>关键词</th><th>标签</th></tr>
    <tr>
      <td class="td-01">1</td>
      <td class="td-02"><a href="/weibo?q=%23某地突发地震%23">某地突发地震</a><span>233万</span></td>
      <td class="td-03"><i class="icon-txt icon-txt-fei"></i></td>
    </tr>
    <tr>
      <td class="td-01">2</td>
      <td class="td-02"><a href="https://s.weibo.com/weibo?q=test">新剧官宣</a><span>98万</span><i class="icon-txt icon-txt-new"></i></td>
      <td class="td-03"></td>
    </tr>
    <tr>
      <td class="td-01"></td>
      <td class="td-02"><span>广告位</span></td>
    </tr>
  </table>
</div>`

func TestParseWeiboBoard(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(weiboBoardHTML))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	items := parseWeiboBoard(doc)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (header and ad rows skipped)", len(items))
	}

	first := items[0]
	if first.Keyword != "某地突发地震" {
		t.Errorf("keyword = %q", first.Keyword)
	}
	if first.HeatScore != 2_330_000 {
		t.Errorf("heat = %v, want 2330000", first.HeatScore)
	}
	if first.Platform != PlatformWeibo {
		t.Errorf("platform = %s", first.Platform)
	}
	if first.Metadata["rank"] != 1 {
		t.Errorf("rank = %v, want 1", first.Metadata["rank"])
	}
	if url, _ := first.Metadata["url"].(string); !strings.HasPrefix(url, "https://s.weibo.com/") {
		t.Errorf("relative link not absolutized: %q", url)
	}

	second := items[1]
	if second.Keyword != "新剧官宣" || second.HeatScore != 980_000 {
		t.Errorf("second item = %q/%v", second.Keyword, second.HeatScore)
	}
	if second.Metadata["tag"] != "新" {
		t.Errorf("tag = %v, want 新", second.Metadata["tag"])
	}
}

func TestParseWeiboBoardEmpty(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>登录后查看</body></html>"))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	if items := parseWeiboBoard(doc); len(items) != 0 {
		t.Errorf("got %d items from a login wall page, want 0", len(items))
	}
}
