package recipe

// Recipe 回傳給前端的食譜卡片；Image 一定是可用網址
type Recipe struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	Source      string `json:"source"`
	Description string `json:"description"`
}

// AttemptTrace 單次查詢嘗試的診斷資訊
type AttemptTrace struct {
	Query         string `json:"query"`
	Status        int    `json:"status,omitempty"`
	Error         string `json:"error,omitempty"`
	RawCount      int    `json:"rawCount"`
	FilteredCount int    `json:"filteredCount"`
}

// Result 食譜產生結果。UsedQuery 為 nil 表示使用內建備用食譜
type Result struct {
	Recipes   []Recipe       `json:"recipes"`
	Message   string         `json:"message"`
	UsedQuery *string        `json:"usedQuery"`
	Attempts  int            `json:"attempts"`
	Debug     []AttemptTrace `json:"debug,omitempty"`
}
