package analyzer

import (
	"regexp"
	"strings"

	"resume-analyzer/internal/types"
)

// LabelPerson 人名实体标签
const LabelPerson = "PERSON"

// Entity 命名实体识别结果
type Entity struct {
	Text  string
	Label string
}

// EntityRecognizer 命名实体识别器
// 实现方在识别失败时返回空结果，不影响其他字段的提取
type EntityRecognizer interface {
	Entities(text string) []Entity
}

var (
	// local-part@domain，domain 为点分隔的类DNS标签
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._+\-]+@[A-Za-z0-9\-]+(?:\.[A-Za-z0-9\-]+)+`)

	// 北美格式：可选的 (xxx) 或 xxx 区号，分隔符为空格、点、短横线或无
	// 两侧不允许紧邻数字，避免截取更长数字串的片段
	phonePattern = regexp.MustCompile(`(?:^|[^\d])((?:\(\d{3}\)|\d{3})?[ \t.\-]?\d{3}[ \t.\-]?\d{4})(?:$|[^\d])`)
)

// ExtractEntities 提取姓名、邮箱、电话，未识别的字段为空字符串
func ExtractEntities(text string, recognizer EntityRecognizer) types.Contact {
	return types.Contact{
		Name:  ExtractName(text, recognizer),
		Email: ExtractEmail(text),
		Phone: ExtractPhone(text),
	}
}

// 姓名只在前若干个非空行中查找
const maxNameLines = 20

// ExtractName 逐行识别，返回第一个人名实体
// 简历抬头的相邻行 (姓名、职位) 整段识别时会被合并成一个实体
func ExtractName(text string, recognizer EntityRecognizer) string {
	if recognizer == nil {
		return ""
	}
	scanned := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if scanned == maxNameLines {
			break
		}
		scanned++
		for _, ent := range recognizer.Entities(line) {
			if ent.Label != LabelPerson {
				continue
			}
			if name := strings.TrimSpace(ent.Text); name != "" {
				return name
			}
		}
	}
	return ""
}

// ExtractEmail 返回第一个符合邮箱模式的子串，不做有效性校验
func ExtractEmail(text string) string {
	return emailPattern.FindString(text)
}

// ExtractPhone 返回第一个符合北美电话模式的子串
func ExtractPhone(text string) string {
	m := phonePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.Trim(m[1], " \t.-")
}
