package dto

// ModelResponse は保存済みの回帰モデルの概要を表すレスポンスDTOです。
type ModelResponse struct {
	Code        string  `json:"code"`        // 銘柄コード
	Name        string  `json:"name"`        // 企業名
	Equation    string  `json:"equation"`    // 表示用の回帰式 "y = ax + b"
	Slope       float64 `json:"slope"`       // 傾き（丸めなし）
	Intercept   float64 `json:"intercept"`   // 切片（丸めなし）
	Correlation float64 `json:"correlation"` // 相関係数
	MinDate     string  `json:"min_date"`    // 最古の日付
	MaxDate     string  `json:"max_date"`    // 最新の日付
	Points      int     `json:"points"`      // データ点数
	PlotURL     string  `json:"plot_url"`    // グラフ画像のURL
}

// PredictionResponse は予測結果のレスポンスDTOです。
type PredictionResponse struct {
	PredictionDate        string        `json:"prediction_date"`
	PredictedPrice        float64       `json:"predicted_price"`
	PredictedPriceDisplay string        `json:"predicted_price_display"`
	Model                 ModelResponse `json:"model"`
}

// ErrorBody はエラー種別とユーザー向けメッセージです。
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ErrorResponse はエラーレスポンスDTOです。
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// PredictRequest は予測リクエストです。フォームとJSONの両方を受け付けます。
type PredictRequest struct {
	PredictionDate string `form:"prediction_date" json:"prediction_date"`
}
