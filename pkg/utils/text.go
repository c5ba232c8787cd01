package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// 匿名版只接受纯文本，所有标签一律剥离
var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText 去除 HTML 标签与首尾空白，结果保持 HTML 转义
// 先还原实体再清洗，已转义的标签同样会被剥离
func SanitizeText(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(html.UnescapeString(s)))
}

// NormalizeTag 单个标签规范化
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags 标签规范化：去空白、转小写、去空、去重，最多保留 max 个（保留先出现的）
func NormalizeTags(tags []string, max int) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = NormalizeTag(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == max {
			break
		}
	}
	return out
}

// Truncate 按字符截断，超出部分以 ... 结尾
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern 构造 ILIKE 子串匹配模式，转义通配符
func LikePattern(keyword string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(keyword)) + "%"
}
