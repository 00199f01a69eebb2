package youtube

// categories maps platform category ids to display names
var categories = map[string]string{
	"1":  "영화/애니메이션",
	"2":  "자동차",
	"10": "음악",
	"15": "반려동물",
	"17": "스포츠",
	"19": "여행",
	"20": "게임",
	"22": "인물/블로그",
	"23": "코미디",
	"24": "엔터테인먼트",
	"25": "뉴스/정치",
	"26": "노하우/스타일",
	"27": "교육",
	"28": "과학기술",
}

// OtherCategory is shown for ids without a known name
const OtherCategory = "기타"

// CategoryName returns the display name of a category id
func CategoryName(categoryID string) string {
	if name, ok := categories[categoryID]; ok {
		return name
	}
	return OtherCategory
}
