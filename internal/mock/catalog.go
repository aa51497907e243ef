package mock

type salesTeam struct {
	businessUnit string
	department   string
	salespersons []string
}

type customer struct {
	name   string
	parent string
}

type product struct {
	sku   string
	name  string
	price float64 // 含税单价（元/箱）
}

var teams = []salesTeam{
	{"零售事业部", "华东销售部", []string{"张伟", "王芳", "李娜"}},
	{"零售事业部", "华南销售部", []string{"刘洋", "陈静", "杨帆"}},
	{"餐饮事业部", "华北销售部", []string{"赵磊", "黄敏"}},
	{"餐饮事业部", "西南销售部", []string{"周杰", "吴倩"}},
	{"电商事业部", "线上运营部", []string{"徐超", "孙丽"}},
}

var customers = []customer{
	{"永辉超市福州仓", "永辉超市股份有限公司"},
	{"永辉超市重庆仓", "永辉超市股份有限公司"},
	{"华润万家深圳店", "华润万家有限公司"},
	{"华润万家天津店", "华润万家有限公司"},
	{"物美北京配送中心", "物美科技集团"},
	{"盒马鲜生上海", "阿里巴巴集团"},
	{"天猫超市旗舰店", "阿里巴巴集团"},
	{"京东自营调味品", "京东集团"},
	{"海底捞中央厨房", "海底捞国际控股"},
	{"西贝莜面村", ""},
	{"老乡鸡合肥总部", ""},
	{"成都聚鑫餐饮", ""},
}

var products = []product{
	{"SP-1001", "海天金标生抽 500ml", 96},
	{"SP-1002", "李锦记精选老抽 500ml", 108},
	{"SP-1003", "千禾味极鲜 1L", 156},
	{"SP-1004", "厨邦酱油 1.25L", 138},
	{"SP-1101", "李锦记旧庄蚝油 510g", 120},
	{"SP-1201", "山西老陈醋 420ml", 72},
	{"SP-1202", "保宁米醋 500ml", 66},
	{"SP-1203", "镇江香醋 500ml", 78},
	{"SP-1301", "王致和料酒 500ml", 54},
	{"SP-1401", "太太乐鸡精 200g", 84},
	{"SP-1402", "莲花味精 400g", 60},
	{"SP-1501", "郫县豆瓣 500g", 90},
	{"SP-1502", "东古黄豆酱 800g", 102},
	{"SP-1503", "六必居甜面酱 300g", 48},
	{"SP-1601", "鲁花花生油 5L", 780},
	{"SP-1602", "金龙鱼菜籽油 5L", 540},
	{"SP-1603", "福临门调和油 5L", 420},
	{"SP-1701", "海天调味礼盒", 260},
	{"SP-1801", "白砂糖 1kg", 36},
}
