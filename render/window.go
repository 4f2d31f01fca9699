package render

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"cluster-service/cluster"
	"cluster-service/display"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Options configure the cluster window
type Options struct {
	Width      int
	Height     int
	Fullscreen bool
	Title      string
}

var (
	bgColor      = color.RGBA{20, 20, 24, 255}
	lineColor    = color.RGBA{255, 255, 255, 255}
	dimColor     = color.RGBA{70, 70, 80, 255}
	trackColor   = color.RGBA{40, 40, 50, 255}
	fuelColor    = color.RGBA{0, 200, 255, 255}
	successColor = color.RGBA{0, 200, 80, 255}
	warningColor = color.RGBA{255, 165, 0, 255}
	needleColor  = color.RGBA{255, 50, 50, 255}
)

// Window draws a display document every frame
type Window struct {
	ctx  context.Context
	doc  *display.Document
	opts Options
}

// Run opens the window and blocks until it is closed or ctx is cancelled.
// It must be called from the main goroutine.
func Run(ctx context.Context, doc *display.Document, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 800, 480
	}
	if opts.Title == "" {
		opts.Title = "Cluster"
	}

	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if opts.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	w := &Window{ctx: ctx, doc: doc, opts: opts}
	if err := ebiten.RunGame(w); err != nil {
		return fmt.Errorf("failed to run cluster window: %w", err)
	}
	return nil
}

func (w *Window) Update() error {
	select {
	case <-w.ctx.Done():
		return ebiten.Termination
	default:
		return nil
	}
}

func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return w.opts.Width, w.opts.Height
}

func (w *Window) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)

	nodes := make(map[string]display.NodeState)
	for _, s := range w.doc.Snapshots() {
		nodes[s.Key] = s
	}

	width, height := screen.Bounds().Dx(), screen.Bounds().Dy()
	dialR := float32(height) * 0.35
	dialX, dialY := float32(width)/3, float32(height)*0.45

	w.drawSpeedDial(screen, dialX, dialY, dialR, nodes)

	ebitenutil.DebugPrintAt(screen, "RPM "+nodes[display.IDRPM].Text, int(dialX)-24, int(dialY+dialR)+10)

	barX := int(float32(width) * 0.62)
	barW := width - barX - 80
	w.drawBar(screen, barX, int(float32(height)*0.2), barW, 18, "FUEL", nodes[display.IDFuelBar], nodes[display.IDFuelText].Text, fuelColor)
	w.drawBar(screen, barX, int(float32(height)*0.35), barW, 18, "TEMP", nodes[display.IDTempBar], nodes[display.IDTempValue].Text, successColor)
	ebitenutil.DebugPrintAt(screen, "GEAR "+nodes[display.IDVoltage].Text, barX, int(float32(height)*0.5))

	w.drawIcons(screen, 20, height-50, nodes)
}

// drawSpeedDial renders the arc, needle, readout and unit label
func (w *Window) drawSpeedDial(screen *ebiten.Image, cx, cy, r float32, nodes map[string]display.NodeState) {
	vector.StrokeCircle(screen, cx, cy, r, 2, dimColor, true)

	for speed := 0.0; speed <= cluster.NeedleMaxSpeed; speed += 20 {
		x1, y1 := polar(cx, cy, r-10, cluster.NeedleAngle(speed))
		x2, y2 := polar(cx, cy, r, cluster.NeedleAngle(speed))
		vector.StrokeLine(screen, x1, y1, x2, y2, 2, lineColor, true)
	}

	angle, ok := parseDegrees(nodes[display.IDSpeedNeedle].Style("--rotation"))
	if !ok {
		angle = cluster.NeedleMinAngle
	}
	tx, ty := polar(cx, cy, r-14, angle)
	vector.StrokeLine(screen, cx, cy, tx, ty, 3, needleColor, true)
	vector.DrawFilledCircle(screen, cx, cy, 6, needleColor, true)

	ebitenutil.DebugPrintAt(screen, nodes[display.IDSpeed].Text, int(cx)-8, int(cy+r/3))
	ebitenutil.DebugPrintAt(screen, nodes[display.IDSpeedGauge+"/"+display.ClassSpeedUnit].Text, int(cx)-10, int(cy+r/3)+16)
}

// drawBar draws a horizontal gauge whose fill follows the node width style
func (w *Window) drawBar(screen *ebiten.Image, x, y, barW, h int, label string, bar display.NodeState, value string, fill color.RGBA) {
	ebitenutil.DebugPrintAt(screen, label, x, y+2)

	barX := x + 40
	vector.DrawFilledRect(screen, float32(barX), float32(y), float32(barW), float32(h), trackColor, true)

	pct, _ := parsePercent(bar.Style("width"))
	fillW := float32(barW-4) * clampFraction(pct/100)
	if strings.Contains(bar.Style("background"), "warning-color") && !strings.Contains(bar.Style("background"), "gradient") {
		fill = warningColor
	}
	vector.DrawFilledRect(screen, float32(barX+2), float32(y+2), fillW, float32(h-4), fill, true)
	vector.StrokeRect(screen, float32(barX), float32(y), float32(barW), float32(h), 1, dimColor, true)

	ebitenutil.DebugPrintAt(screen, value, barX+barW+5, y+2)
}

var iconLabels = []struct {
	id    string
	label string
}{
	{display.IDEngineIcon, "ENG"},
	{display.IDLightsIcon, "LGT"},
	{display.IDSeatbeltIcon, "BELT"},
	{display.IDDoorIcon, "DOOR"},
	{display.IDLockIcon, "LOCK"},
}

// drawIcons renders the status row coloured by active and warning classes
func (w *Window) drawIcons(screen *ebiten.Image, x, y int, nodes map[string]display.NodeState) {
	for i, icon := range iconLabels {
		s := nodes[icon.id]
		c := dimColor
		switch {
		case s.HasClass(cluster.ClassWarning):
			c = warningColor
		case s.HasClass(cluster.ClassActive):
			c = successColor
		}
		cx := float32(x + 20 + i*60)
		vector.DrawFilledCircle(screen, cx, float32(y), 14, c, true)
		ebitenutil.DebugPrintAt(screen, icon.label, int(cx)-12, y+18)
	}
}

// polar returns the point at distance r from the centre along a needle
// angle, 0 pointing up and positive angles clockwise
func polar(cx, cy, r float32, degrees float64) (float32, float32) {
	rad := degrees * math.Pi / 180
	return cx + r*float32(math.Sin(rad)), cy - r*float32(math.Cos(rad))
}

// parseDegrees reads a "<n>deg" style value
func parseDegrees(v string) (float64, bool) {
	return parseUnit(v, "deg")
}

// parsePercent reads a "<n>%" style value
func parsePercent(v string) (float64, bool) {
	return parseUnit(v, "%")
}

func parseUnit(v, unit string) (float64, bool) {
	v = strings.TrimSpace(v)
	if !strings.HasSuffix(v, unit) {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSuffix(v, unit), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func clampFraction(f float64) float32 {
	return float32(math.Max(0, math.Min(1, f)))
}
