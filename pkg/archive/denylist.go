package archive

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// denyTerms excludes recurring structural noise from archive statistics:
// games, e-sports leagues, variety shows, broadcast dramas, horoscope and
// weather segments, daily market boilerplate, fixed political segments and
// device launches. An item is excluded when its title contains any term,
// case-insensitively.
var denyTerms = []string{
	// games
	"王者荣耀", "原神", "第五人格", "阴阳师", "和平精英", "英雄联盟", "lol",
	"恋与深空", "恋与制作人", "光与夜之恋", "代号鸢", "明日方舟", "崩坏",
	"永夜星河", "世界之外", "逆水寒", "剑网3", "梦幻西游", "天涯明月刀",
	"蛋仔派对", "金铲铲", "云顶之弈", "绝区零", "鸣潮", "黑神话悟空",

	// e-sports and sports leagues
	"kpl", "wtt", "cba", "lpl", "s赛", "msi", "世冠", "挑战者杯",
	"英超", "西甲", "德甲", "意甲", "法甲", "欧冠", "中超", "亚锦赛",
	"欧洲杯", "世界杯", "亚运会", "全运会",

	// variety shows
	"你好星期六", "披荆斩棘", "乘风破浪", "奔跑吧", "极限挑战",
	"大侦探", "花儿与少年", "向往的生活", "快乐大本营", "天天向上",
	"声生不息", "歌手", "我是歌手", "中国好声音", "创造营",
	"青春有你", "偶像练习生", "登陆计划", "种地吧", "半熟男女",

	// broadcast dramas
	"春色寄情人", "花间令", "承欢记", "惜花芷", "边水往事", "锦绣中国年",
	"新生", "春花焰", "好东西", "冰雪春天", "长相思", "繁花",
	"庆余年", "玫瑰的故事", "墨雨云间", "度华年", "小日子", "狐妖小红娘",
	"唐朝诡事录", "莲花楼", "与凤行", "柳舟记", "九尾狐传", "默杀",
	"人民军队淬火向前", "文化中国团圆年", "小龙糕",
	"白月梵星", "仙台有树", "白色橄榄树", "六姊妹", "值得爱", "雁回时",
	"天地剑心", "敖光", "敖丙", "藕饼", "扫毒风暴", "盛世天下",
	"以法之名", "一笑随歌", "临江仙", "入青云", "得闲谨制", "凡人歌",
	"浪浪山小妖怪", "要久久爱", "爱你", "蛇小姐", "小蛇糕",
	"难哄", "赴山海", "棋士", "仙逆", "无限暖暖", "大奉打更人",
	"射雕", "石矶娘娘", "红房子", "桃花映江山", "四喜", "b萌",

	// film and animation
	"疯狂动物城", "票房", "周处除三害", "哪吒", "热辣滚烫",

	// horoscope and weather
	"白桃星座", "星座", "天气", "天气预报", "早安",

	// daily market boilerplate
	"a股", "股市", "大盘", "涨停", "跌停", "金价",

	// fixed political segments
	"学习新语", "改革", "新时代", "私藏浪漫", "九重紫",
	"感悟总书记", "读懂全会", "习近平", "总书记",

	// device launches
	"小米15", "小米14", "华为", "iphone", "mate",
}

// denyPatterns excludes structural title shapes: versus matchups,
// previews, premieres, finales, release announcements, movie-title
// prefixes and festival-segment suffixes. Anchored at the start,
// case-insensitive.
var denyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^.*vs.*$`),
	regexp.MustCompile(`(?i)^跟着.*探寻.*$`),
	regexp.MustCompile(`(?i)^.*恋综.*$`),
	regexp.MustCompile(`(?i)^.*收视率.*$`),
	regexp.MustCompile(`(?i)^.*预告.*$`),
	regexp.MustCompile(`(?i)^.*首播.*$`),
	regexp.MustCompile(`(?i)^.*大结局.*$`),
	regexp.MustCompile(`(?i)^.*定档.*$`),
	regexp.MustCompile(`(?i)^.*官宣.*$`),
	regexp.MustCompile(`(?i)^电影.*$`),
	regexp.MustCompile(`(?i)^.*之行$`),
	regexp.MustCompile(`(?i)^.*中国年.*$`),
}

// Denylisted reports whether a title belongs to the recurring-noise
// corpus filter. Full-width ASCII variants are folded before the
// substring check so "ＬＯＬ" matches the same as "lol".
func Denylisted(title string) bool {
	folded := strings.ToLower(width.Fold.String(title))
	for _, term := range denyTerms {
		if strings.Contains(folded, term) {
			return true
		}
	}
	for _, p := range denyPatterns {
		if p.MatchString(title) {
			return true
		}
	}
	return false
}
