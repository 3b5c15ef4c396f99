// Package plot renders the regression chart with gonum/plot.
package plot

import (
	"errors"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"stock_predictor/internal/feature/regression/domain"
	"stock_predictor/internal/feature/regression/domain/entity"
	"stock_predictor/internal/feature/regression/usecase"
)

const (
	Title       = "Linear Regression of Stock Prices"
	XLabel      = "Date"
	YLabel      = "Stock Price"
	PointsLabel = "Data Points"
	LineLabel   = "Regression Line"
)

var (
	pointColor = color.RGBA{B: 255, A: 255}
	lineColor  = color.RGBA{R: 255, A: 255}
)

// Renderer writes the chart to a fixed path, replacing the previous image.
type Renderer struct {
	path   string
	width  vg.Length
	height vg.Length
}

var _ usecase.PlotRenderer = (*Renderer)(nil)

// NewRenderer creates a Renderer that publishes to path. The image format follows
// the file extension (png when there is none).
func NewRenderer(path string) *Renderer {
	return &Renderer{
		path:   path,
		width:  10 * vg.Inch,
		height: 6 * vg.Inch,
	}
}

// Path returns the fixed artifact path.
func (r *Renderer) Path() string {
	return r.path
}

// Stage draws the chart into a temporary file next to the artifact path.
func (r *Renderer) Stage(points []entity.TimeSeriesPoint, model *entity.FittedModel) (usecase.StagedPlot, error) {
	p, err := build(points, model)
	if err != nil {
		return nil, domain.NewError(domain.ErrArtifactWrite, "build plot: %v", err)
	}

	format := strings.TrimPrefix(filepath.Ext(r.path), ".")
	if format == "" {
		format = "png"
	}
	wt, err := p.WriterTo(r.width, r.height, format)
	if err != nil {
		return nil, domain.NewError(domain.ErrArtifactWrite, "encode plot: %v", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.NewError(domain.ErrArtifactWrite, "create plot directory: %v", err)
	}
	f, err := os.CreateTemp(dir, ".plot-*."+format)
	if err != nil {
		return nil, domain.NewError(domain.ErrArtifactWrite, "create temp plot: %v", err)
	}
	tmp := f.Name()

	if _, err := wt.WriteTo(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return nil, domain.NewError(domain.ErrArtifactWrite, "write plot: %v", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return nil, domain.NewError(domain.ErrArtifactWrite, "close plot: %v", err)
	}
	// CreateTemp は 0600 で作るため、静的配信できるよう権限を広げる
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return nil, domain.NewError(domain.ErrArtifactWrite, "chmod plot: %v", err)
	}

	return &stagedPlot{tmp: tmp, dst: r.path}, nil
}

func build(points []entity.TimeSeriesPoint, model *entity.FittedModel) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = Title
	p.X.Label.Text = XLabel
	p.Y.Label.Text = YLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.Date.Unix())
		xys[i].Y = pt.Price
	}
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyle.Color = pointColor
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(3)

	line, err := plotter.NewLine(plotter.XYs{
		{X: float64(model.MinDate.Unix()), Y: model.Evaluate(usecase.DaysSinceEpoch(model.MinDate))},
		{X: float64(model.MaxDate.Unix()), Y: model.Evaluate(usecase.DaysSinceEpoch(model.MaxDate))},
	})
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = lineColor
	line.LineStyle.Width = vg.Points(2)

	p.Add(scatter, line)
	p.Legend.Add(PointsLabel, scatter)
	p.Legend.Add(LineLabel, line)
	p.Legend.Top = true
	p.Legend.Left = true

	return p, nil
}

// stagedPlot is a rendered image waiting to replace the published one.
type stagedPlot struct {
	tmp string
	dst string
}

// Commit renames the temporary file over the artifact path.
func (s *stagedPlot) Commit() error {
	if err := os.Rename(s.tmp, s.dst); err != nil {
		_ = os.Remove(s.tmp)
		return domain.NewError(domain.ErrArtifactWrite, "publish plot: %v", err)
	}
	return nil
}

// Discard removes the temporary file.
func (s *stagedPlot) Discard() error {
	if err := os.Remove(s.tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
