package classifier

import "github.com/ouyangqi017/Chubang/internal/model"

// DefaultRules 内置品类规则
//
// 顺序敏感：更具体的关键词（如"生抽"、"酱油"）必须排在宽泛关键词（"酱"、"油"）之前。
func DefaultRules() []model.CategoryRule {
	return []model.CategoryRule{
		{Keyword: "礼盒", Category: "礼盒", SubCategory: "节日礼盒"},
		{Keyword: "生抽", Category: "酱油", SubCategory: "生抽"},
		{Keyword: "老抽", Category: "酱油", SubCategory: "老抽"},
		{Keyword: "味极鲜", Category: "酱油", SubCategory: "特级酱油"},
		{Keyword: "酱油", Category: "酱油", SubCategory: "其他酱油"},
		{Keyword: "蚝油", Category: "调味汁", SubCategory: "蚝油"},
		{Keyword: "陈醋", Category: "食醋", SubCategory: "陈醋"},
		{Keyword: "米醋", Category: "食醋", SubCategory: "米醋"},
		{Keyword: "醋", Category: "食醋", SubCategory: "其他食醋"},
		{Keyword: "料酒", Category: "料酒", SubCategory: "料酒"},
		{Keyword: "鸡精", Category: "复合调味料", SubCategory: "鸡精"},
		{Keyword: "味精", Category: "复合调味料", SubCategory: "味精"},
		{Keyword: "豆瓣", Category: "调味酱", SubCategory: "豆瓣酱"},
		{Keyword: "黄豆酱", Category: "调味酱", SubCategory: "黄豆酱"},
		{Keyword: "酱", Category: "调味酱", SubCategory: "其他酱类"},
		{Keyword: "花生油", Category: "食用油", SubCategory: "花生油"},
		{Keyword: "菜籽油", Category: "食用油", SubCategory: "菜籽油"},
		{Keyword: "油", Category: "食用油", SubCategory: "其他食用油"},
	}
}
