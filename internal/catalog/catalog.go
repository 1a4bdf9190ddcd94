// Package catalog 提供简历分析所需的静态数据：职业方向技能分类、推荐表和评分规则。
// 数据在构造分析器时显式传入，测试可以替换为小规模目录。
package catalog

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"resume-analyzer/internal/types"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

// DefaultMaxScore 评分展示上限
const DefaultMaxScore = 100

// ErrInvalidCatalog 目录数据不满足约束
var ErrInvalidCatalog = errors.New("目录配置无效")

// FieldSkills 单个职业方向及其技能关键词
type FieldSkills struct {
	Field  string   `yaml:"field"`
	Skills []string `yaml:"skills"`
}

// Taxonomy 有序的职业方向列表，声明顺序即分类优先级
type Taxonomy []FieldSkills

// Fields 按声明顺序返回职业方向名称
func (t Taxonomy) Fields() []string {
	fields := make([]string, 0, len(t))
	for _, fs := range t {
		fields = append(fields, fs.Field)
	}
	return fields
}

// Keywords 返回所有方向技能关键词的并集，按首次出现顺序
func (t Taxonomy) Keywords() []string {
	seen := make(map[string]struct{})
	var keywords []string
	for _, fs := range t {
		for _, skill := range fs.Skills {
			if _, ok := seen[skill]; ok {
				continue
			}
			seen[skill] = struct{}{}
			keywords = append(keywords, skill)
		}
	}
	return keywords
}

// Recommendation 某个职业方向的补充技能与课程
type Recommendation struct {
	Skills  []string       `yaml:"skills"`
	Courses []types.Course `yaml:"courses"`
}

// RecommendationTable 职业方向到推荐内容的映射，键与 Taxonomy 的方向一一对应
type RecommendationTable map[string]Recommendation

// Criterion 评分项：简历中出现该章节关键词时加 Weight 分
type Criterion struct {
	Keyword string `yaml:"keyword"`
	Weight  int    `yaml:"weight"`
}

// Coupling 声明 Redundant 与 Primary 语义重复，Primary 已计分时跳过 Redundant
type Coupling struct {
	Primary   string `yaml:"primary"`
	Redundant string `yaml:"redundant"`
}

// ScoreCriteria 有序评分规则
type ScoreCriteria struct {
	MaxScore  int         `yaml:"max_score"`
	Criteria  []Criterion `yaml:"criteria"`
	Couplings []Coupling  `yaml:"couplings"`
}

// Catalog 分析器使用的全部静态数据
type Catalog struct {
	Taxonomy        Taxonomy            `yaml:"taxonomy"`
	Recommendations RecommendationTable `yaml:"recommendations"`
	Scoring         ScoreCriteria       `yaml:"scoring"`
}

// Fingerprint 目录内容的短摘要，内容相同则相同
func (c *Catalog) Fingerprint() string {
	// yaml.v3 输出的 map 键是有序的
	data, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:6])
}

// Default 返回内置目录
func Default() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		// 内置数据在构建时已确定，解析失败属于程序错误
		panic(fmt.Sprintf("内置目录无效: %v", err))
	}
	return c
}

// Load 从文件加载目录，path 为空时返回内置目录
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取目录文件失败: %w", err)
	}
	return Parse(data)
}

// Parse 解析YAML目录内容，规范化后校验
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("解析目录失败: %w", err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// normalize 去除空白，技能关键词统一为小写
func (c *Catalog) normalize() {
	for i := range c.Taxonomy {
		c.Taxonomy[i].Field = strings.TrimSpace(c.Taxonomy[i].Field)
		skills := c.Taxonomy[i].Skills[:0]
		for _, s := range c.Taxonomy[i].Skills {
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" {
				skills = append(skills, s)
			}
		}
		c.Taxonomy[i].Skills = skills
	}
	for i := range c.Scoring.Criteria {
		c.Scoring.Criteria[i].Keyword = strings.TrimSpace(c.Scoring.Criteria[i].Keyword)
	}
	if c.Scoring.MaxScore == 0 {
		c.Scoring.MaxScore = DefaultMaxScore
	}
	if c.Recommendations == nil {
		c.Recommendations = RecommendationTable{}
	}
}

// Validate 校验目录约束
func (c *Catalog) Validate() error {
	fields := make(map[string]struct{}, len(c.Taxonomy))
	for _, fs := range c.Taxonomy {
		if fs.Field == "" {
			return fmt.Errorf("%w: 职业方向名称不能为空", ErrInvalidCatalog)
		}
		if _, dup := fields[fs.Field]; dup {
			return fmt.Errorf("%w: 职业方向重复: %s", ErrInvalidCatalog, fs.Field)
		}
		fields[fs.Field] = struct{}{}
	}

	// 推荐表与分类表必须一一对应
	for field := range c.Recommendations {
		if _, ok := fields[field]; !ok {
			return fmt.Errorf("%w: 推荐表包含未声明的职业方向: %s", ErrInvalidCatalog, field)
		}
	}
	for field := range fields {
		if _, ok := c.Recommendations[field]; !ok {
			return fmt.Errorf("%w: 职业方向缺少推荐内容: %s", ErrInvalidCatalog, field)
		}
	}

	return c.Scoring.Validate()
}

// Validate 校验评分规则
func (s ScoreCriteria) Validate() error {
	if s.MaxScore < 0 {
		return fmt.Errorf("%w: 评分上限不能为负数", ErrInvalidCatalog)
	}
	keywords := make(map[string]int, len(s.Criteria)) // 关键词 -> 声明位置
	for i, cr := range s.Criteria {
		if cr.Keyword == "" {
			return fmt.Errorf("%w: 评分关键词不能为空", ErrInvalidCatalog)
		}
		if cr.Weight < 0 {
			return fmt.Errorf("%w: 评分项 %s 的权重为负数", ErrInvalidCatalog, cr.Keyword)
		}
		key := strings.ToLower(cr.Keyword)
		if _, dup := keywords[key]; dup {
			return fmt.Errorf("%w: 评分关键词重复: %s", ErrInvalidCatalog, cr.Keyword)
		}
		keywords[key] = i
	}
	for _, cp := range s.Couplings {
		p, r := strings.ToLower(cp.Primary), strings.ToLower(cp.Redundant)
		if p == r {
			return fmt.Errorf("%w: 关联规则的两端不能相同: %s", ErrInvalidCatalog, cp.Primary)
		}
		pi, ok := keywords[p]
		if !ok {
			return fmt.Errorf("%w: 关联规则引用了未声明的评分项: %s", ErrInvalidCatalog, cp.Primary)
		}
		ri, ok := keywords[r]
		if !ok {
			return fmt.Errorf("%w: 关联规则引用了未声明的评分项: %s", ErrInvalidCatalog, cp.Redundant)
		}
		// 按声明顺序判定，primary 必须先于 redundant，因此不会成环
		if pi > ri {
			return fmt.Errorf("%w: 关联规则 %s -> %s 中 primary 必须先声明", ErrInvalidCatalog, cp.Primary, cp.Redundant)
		}
	}
	return nil
}

// RawTotal 返回所有评分项权重之和，可能超过 MaxScore
func (s ScoreCriteria) RawTotal() int {
	total := 0
	for _, cr := range s.Criteria {
		total += cr.Weight
	}
	return total
}
