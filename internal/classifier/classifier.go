package classifier

import (
	"strings"

	"github.com/ouyangqi017/Chubang/internal/model"
)

// Classifier 产品名称 → (品类, 子品类)
//
// 规则按配置顺序逐条匹配，第一条关键词为产品名子串的规则生效；
// 不做"最佳匹配"，规则顺序即业务含义。
type Classifier struct {
	rules         []model.CategoryRule
	defaultCat    string
	defaultSubCat string
}

// New 使用给定规则创建分类器，规则会被复制，调用方后续修改不影响分类结果
func New(rules []model.CategoryRule) *Classifier {
	copied := make([]model.CategoryRule, len(rules))
	copy(copied, rules)
	return &Classifier{
		rules:         copied,
		defaultCat:    model.DefaultCategory,
		defaultSubCat: model.DefaultSubCategory,
	}
}

// NewDefault 使用内置规则创建分类器
func NewDefault() *Classifier {
	return New(DefaultRules())
}

// Classify 返回产品所属品类与子品类，未命中时返回默认品类
func (c *Classifier) Classify(productName string) (category, subCategory string) {
	for _, rule := range c.rules {
		// 空关键词不参与匹配（strings.Contains 对空串恒为 true）
		if rule.Keyword == "" {
			continue
		}
		if strings.Contains(productName, rule.Keyword) {
			return rule.Category, rule.SubCategory
		}
	}
	return c.defaultCat, c.defaultSubCat
}

// Rules 当前规则副本
func (c *Classifier) Rules() []model.CategoryRule {
	out := make([]model.CategoryRule, len(c.rules))
	copy(out, c.rules)
	return out
}
