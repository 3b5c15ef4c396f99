// Package handler は regression フィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stock_predictor/internal/feature/regression/domain"
	"stock_predictor/internal/feature/regression/domain/entity"
	"stock_predictor/internal/feature/regression/transport/http/dto"
	jwtmw "stock_predictor/internal/platform/jwt"
	"stock_predictor/internal/platform/metrics"
)

const dateLayout = "2006-01-02"

// RegressionUsecase はアップロードと予測のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type RegressionUsecase interface {
	Upload(ctx context.Context, sessionID, filename string, data []byte) (*entity.FittedModel, error)
	Predict(ctx context.Context, sessionID, date string) (*entity.FittedModel, *entity.PredictionResult, error)
	CurrentModel(ctx context.Context, sessionID string) (*entity.FittedModel, error)
}

// RegressionHandler は /prediction 配下のリクエストを処理します。
type RegressionHandler struct {
	uc             RegressionUsecase
	plotURL        string
	maxUploadBytes int64
}

// NewRegressionHandler は RegressionHandler を生成します。
// plotURL はグラフ画像の公開URL、maxUploadBytes はアップロードの上限サイズです。
func NewRegressionHandler(uc RegressionUsecase, plotURL string, maxUploadBytes int64) *RegressionHandler {
	return &RegressionHandler{uc: uc, plotURL: plotURL, maxUploadBytes: maxUploadBytes}
}

// Upload はCSVファイルを受け取り、回帰モデルを作成してセッションに保存します。
//
// エンドポイント例:
// POST /prediction/upload (multipart/form-data, field "file")
func (h *RegressionHandler) Upload(c *gin.Context) {
	start := time.Now()

	if h.maxUploadBytes > 0 {
		if c.Request.ContentLength > h.maxUploadBytes {
			h.uploadTooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.uploadTooLarge(c)
			return
		}
		metrics.UploadsTotal.WithLabelValues(domain.KindName(domain.ErrSchema)).Inc()
		writeError(c, http.StatusBadRequest, domain.KindName(domain.ErrSchema), "no file was uploaded; please choose a CSV file")
		return
	}

	f, err := fh.Open()
	if err != nil {
		slog.Error("failed to open uploaded file", "error", err, "filename", fh.Filename)
		h.respondUploadError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("failed to read uploaded file", "error", err, "filename", fh.Filename)
		h.respondUploadError(c, err)
		return
	}

	model, err := h.uc.Upload(c.Request.Context(), jwtmw.SessionID(c), fh.Filename, data)
	metrics.UploadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		h.respondUploadError(c, err)
		return
	}

	metrics.UploadsTotal.WithLabelValues(metrics.ResultOK).Inc()
	metrics.UploadPoints.Observe(float64(model.Points))
	c.JSON(http.StatusOK, h.modelResponse(model))
}

// Predict は保存済みモデルで指定日の株価を予測します。
//
// エンドポイント例:
// POST /prediction/predict (prediction_date=2025-01-01)
func (h *RegressionHandler) Predict(c *gin.Context) {
	var req dto.PredictRequest
	if err := c.ShouldBind(&req); err != nil {
		slog.Warn("invalid predict request", "error", err, "remote_addr", c.ClientIP())
		h.respondPredictError(c, domain.NewError(domain.ErrDateParse, "invalid prediction request"))
		return
	}

	model, res, err := h.uc.Predict(c.Request.Context(), jwtmw.SessionID(c), req.PredictionDate)
	if err != nil {
		h.respondPredictError(c, err)
		return
	}

	metrics.PredictionsTotal.WithLabelValues(metrics.ResultOK).Inc()
	c.JSON(http.StatusOK, dto.PredictionResponse{
		PredictionDate:        res.Date.Format(dateLayout),
		PredictedPrice:        res.Price,
		PredictedPriceDisplay: res.DisplayPrice(),
		Model:                 h.modelResponse(model),
	})
}

// CurrentModel はセッションに保存されているモデルの概要を返します。
//
// エンドポイント例:
// GET /prediction/model
func (h *RegressionHandler) CurrentModel(c *gin.Context) {
	model, err := h.uc.CurrentModel(c.Request.Context(), jwtmw.SessionID(c))
	if err != nil {
		status, kind, msg := classify(err)
		if status == http.StatusInternalServerError {
			slog.Error("failed to load current model", "error", err)
		}
		writeError(c, status, kind, msg)
		return
	}
	c.JSON(http.StatusOK, h.modelResponse(model))
}

func (h *RegressionHandler) uploadTooLarge(c *gin.Context) {
	kind := domain.KindName(domain.ErrSchema)
	metrics.UploadsTotal.WithLabelValues(kind).Inc()
	writeError(c, http.StatusRequestEntityTooLarge, kind,
		"file is too large; the limit is "+strconv.FormatInt(h.maxUploadBytes, 10)+" bytes")
}

func (h *RegressionHandler) respondUploadError(c *gin.Context, err error) {
	status, kind, msg := classify(err)
	metrics.UploadsTotal.WithLabelValues(kind).Inc()
	if status == http.StatusInternalServerError {
		slog.Error("upload failed", "error", err, "kind", kind)
	} else {
		slog.Warn("upload rejected", "error", err, "kind", kind, "remote_addr", c.ClientIP())
	}
	writeError(c, status, kind, msg)
}

func (h *RegressionHandler) respondPredictError(c *gin.Context, err error) {
	status, kind, msg := classify(err)
	metrics.PredictionsTotal.WithLabelValues(kind).Inc()
	if status == http.StatusInternalServerError {
		slog.Error("prediction failed", "error", err)
	}
	writeError(c, status, kind, msg)
}

func (h *RegressionHandler) modelResponse(m *entity.FittedModel) dto.ModelResponse {
	return dto.ModelResponse{
		Code:        m.Series.Code,
		Name:        m.Series.Name,
		Equation:    m.Equation(),
		Slope:       m.Slope,
		Intercept:   m.Intercept,
		Correlation: m.Correlation,
		MinDate:     m.MinDate.Format(dateLayout),
		MaxDate:     m.MaxDate.Format(dateLayout),
		Points:      m.Points,
		PlotURL:     h.versionedPlotURL(m),
	}
}

// versionedPlotURL はブラウザキャッシュを避けるため、フィット時刻をクエリに付与します。
func (h *RegressionHandler) versionedPlotURL(m *entity.FittedModel) string {
	if h.plotURL == "" || m.FittedAt.IsZero() {
		return h.plotURL
	}
	return h.plotURL + "?v=" + strconv.FormatInt(m.FittedAt.Unix(), 10)
}

// classify はエラー種別からHTTPステータス、種別名、ユーザー向けメッセージを決定します。
func classify(err error) (int, string, string) {
	kind := domain.KindName(err)

	var status int
	switch {
	case errors.Is(err, domain.ErrSchema),
		errors.Is(err, domain.ErrUnknownSeries),
		errors.Is(err, domain.ErrParse),
		errors.Is(err, domain.ErrDateRange),
		errors.Is(err, domain.ErrDateParse):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNoModel):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientData):
		status = http.StatusUnprocessableEntity
	default:
		// ArtifactWrite と内部エラー。詳細はログにのみ出す
		return http.StatusInternalServerError, kind, defaultMessages[kind]
	}

	var de *domain.Error
	if errors.As(err, &de) && de.Detail != "" {
		return status, kind, de.Detail
	}
	return status, kind, defaultMessages[kind]
}

var defaultMessages = map[string]string{
	"SchemaError":           "the file must be a CSV with 'timestamp' and 'close' columns",
	"UnknownSeriesError":    "the file name does not match any known stock code",
	"ParseError":            "the file contains rows that could not be read",
	"InsufficientDataError": "at least two distinct dates are needed to fit a line",
	"ArtifactWriteError":    "the chart could not be saved; please try again",
	"NoModelError":          "no previous file upload found; please upload a file first",
	"DateRangeError":        "prediction date must be between 1900-01-01 and 2100-01-01",
	"DateParseError":        "the prediction date is not a valid date",
	"InternalError":         "internal server error",
}

func writeError(c *gin.Context, status int, kind, msg string) {
	c.JSON(status, dto.ErrorResponse{Error: dto.ErrorBody{Kind: kind, Message: msg}})
}
