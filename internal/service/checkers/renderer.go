package checkers

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"

	"github.com/mossbit/garden-checkers-bot/internal/checkers"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

type MoveHighlight struct {
	From int
	To   int
}

type RenderOptions struct {
	Highlight *MoveHighlight
	// Marks are extra squares to flag, e.g. mandatory capture landings.
	Marks     []int
	Score     checkers.Score
	HUDHeader string
	HUDTurn   string
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, board *checkers.Board, opts RenderOptions) ([]byte, error)
}

type svgBoardRenderer struct {
}

func NewSVGBoardRenderer() BoardRenderer {
	return &svgBoardRenderer{}
}

func (r *svgBoardRenderer) RenderPNG(ctx context.Context, board *checkers.Board, opts RenderOptions) ([]byte, error) {
	if board == nil {
		return nil, fmt.Errorf("board is nil")
	}

	const (
		squareSize    = 64
		boardSquares  = 8
		boardPixels   = squareSize * boardSquares
		sideMargin    = 32
		topMargin     = 96
		bottomMargin  = 32
		titleHeight   = 34
		turnHeight    = 26
		panelGap      = 10
		gapToBoard    = 18
		panelRadius   = 10
		titlePaddingX = 22
		scorePaddingX = 18
		turnPaddingX  = 16
		titleMinWidth = 260
		scoreMinWidth = 84
		turnMinWidth  = 120
		shadowOffsetY = 5
	)

	totalWidth := boardPixels + sideMargin*2
	totalHeight := boardPixels + topMargin + bottomMargin
	boardOrigin := image.Point{X: sideMargin, Y: topMargin}
	boardRect := image.Rect(
		boardOrigin.X,
		boardOrigin.Y,
		boardOrigin.X+boardPixels,
		boardOrigin.Y+boardPixels,
	)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img := image.NewRGBA(image.Rect(0, 0, totalWidth, totalHeight))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	drawHUD(img, opts, boardRect, panelRadius, titleHeight, turnHeight, panelGap, gapToBoard,
		titlePaddingX, scorePaddingX, turnPaddingX, titleMinWidth, scoreMinWidth, turnMinWidth, shadowOffsetY)
	drawSquares(img, squareSize, boardOrigin)
	if opts.Highlight != nil {
		drawSquareOverlay(img, opts.Highlight.From, squareSize, boardOrigin, moveHighlightFill)
		drawSquareOverlay(img, opts.Highlight.To, squareSize, boardOrigin, moveHighlightFill)
	}
	for _, sq := range opts.Marks {
		drawSquareOverlay(img, sq, squareSize, boardOrigin, markHighlightFill)
	}
	if err := drawPieces(img, board, squareSize, boardOrigin); err != nil {
		return nil, err
	}
	drawCoordinates(img, squareSize, boardOrigin, sideMargin)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return pngBuf.Bytes(), nil
}

var (
	backgroundColor     = color.NRGBA{R: 22, G: 36, B: 26, A: 255}
	lightSquareColor    = color.RGBA{205, 222, 189, 255}
	darkSquareColor     = color.RGBA{94, 128, 83, 255}
	moveHighlightFill   = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	markHighlightFill   = color.NRGBA{R: 255, G: 120, B: 96, A: 120}
	hudPanelColor       = color.NRGBA{R: 24, G: 40, B: 30, A: 250}
	hudTurnPanelColor   = color.NRGBA{R: 30, G: 48, B: 36, A: 245}
	hudShadowColor      = color.NRGBA{0, 0, 0, 50}
	hudTextPrimary      = color.NRGBA{R: 236, G: 246, B: 236, A: 255}
	hudTurnTextColor    = color.NRGBA{R: 206, G: 224, B: 206, A: 255}
	coordinateTextColor = color.NRGBA{R: 180, G: 208, B: 168, A: 255}
)

func hudFace() font.Face { return basicfont.Face7x13 }

func drawSquares(dst imagedraw.Image, squareSize int, origin image.Point) {
	for idx := 0; idx < checkers.BoardCells; idx++ {
		x := origin.X + checkers.ColOf(idx)*squareSize
		y := origin.Y + checkers.RowOf(idx)*squareSize
		clr := lightSquareColor
		if checkers.DarkSquare(idx) {
			clr = darkSquareColor
		}
		imagedraw.Draw(dst, image.Rect(x, y, x+squareSize, y+squareSize), image.NewUniform(clr), image.Point{}, imagedraw.Src)
	}
}

func drawPieces(dst imagedraw.Image, board *checkers.Board, squareSize int, origin image.Point) error {
	for idx := 0; idx < checkers.BoardCells; idx++ {
		piece := board[idx]
		if piece.Empty() {
			continue
		}
		img, err := renderPieceImage(piece.Owner, piece.King, squareSize)
		if err != nil {
			return err
		}
		x := origin.X + checkers.ColOf(idx)*squareSize
		y := origin.Y + checkers.RowOf(idx)*squareSize
		imagedraw.Draw(dst, image.Rect(x, y, x+squareSize, y+squareSize), img, image.Point{}, imagedraw.Over)
	}
	return nil
}

func drawSquareOverlay(img *image.RGBA, idx, squareSize int, origin image.Point, clr color.Color) {
	if img == nil || idx < 0 || idx >= checkers.BoardCells {
		return
	}
	rect := squareRect(idx, squareSize, origin)
	imagedraw.Draw(img, rect, image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawHUD(
	img *image.RGBA,
	opts RenderOptions,
	boardRect image.Rectangle,
	radius,
	titleHeight,
	turnHeight,
	panelGap,
	gapToBoard,
	titlePaddingX,
	scorePaddingX,
	turnPaddingX,
	titleMinWidth,
	scoreMinWidth,
	turnMinWidth,
	shadowOffsetY int,
) {
	if img == nil {
		return
	}

	drawer := &font.Drawer{
		Dst:  img,
		Face: hudFace(),
	}

	title := strings.TrimSpace(opts.HUDHeader)
	if title == "" {
		title = "Player vs Bot"
	}
	scoreText := fmt.Sprintf("%d : %d", opts.Score.South, opts.Score.North)
	turnText := strings.TrimSpace(opts.HUDTurn)
	if turnText == "" {
		turnText = "Turn"
	}

	turnBottom := boardRect.Min.Y - gapToBoard
	turnTop := turnBottom - turnHeight
	titleBottom := turnTop - panelGap
	titleTop := titleBottom - titleHeight

	scoreBottom := boardRect.Min.Y - gapToBoard
	scoreTop := scoreBottom - turnHeight

	titleWidth := titleMinWidth
	if w := drawer.MeasureString(title).Round() + titlePaddingX*2; w > titleWidth {
		titleWidth = w
	}
	scoreWidth := scoreMinWidth
	if w := drawer.MeasureString(scoreText).Round() + scorePaddingX*2; w > scoreWidth {
		scoreWidth = w
	}
	turnWidth := turnMinWidth
	if w := drawer.MeasureString(turnText).Round() + turnPaddingX*2; w > turnWidth {
		turnWidth = w
	}

	maxTitleWidth := boardRect.Dx() - scoreWidth - 20
	if maxTitleWidth < titleMinWidth {
		maxTitleWidth = titleMinWidth
	}
	if titleWidth > maxTitleWidth {
		titleWidth = maxTitleWidth
	}
	if maxTurnWidth := boardRect.Dx() - 32; turnWidth > maxTurnWidth {
		turnWidth = maxTurnWidth
	}

	titleRect := image.Rect(boardRect.Min.X, titleTop, boardRect.Min.X+titleWidth, titleBottom)
	scoreRect := image.Rect(boardRect.Max.X-scoreWidth, scoreTop, boardRect.Max.X, scoreBottom)
	turnLeft := boardRect.Min.X + (boardRect.Dx()-turnWidth)/2
	turnRect := image.Rect(turnLeft, turnTop, turnLeft+turnWidth, turnBottom)

	drawRoundedPanel(img, titleRect.Add(image.Pt(0, shadowOffsetY)), radius, hudShadowColor)
	drawRoundedPanel(img, scoreRect.Add(image.Pt(0, shadowOffsetY)), radius, hudShadowColor)
	drawRoundedPanel(img, turnRect.Add(image.Pt(0, shadowOffsetY)), radius, hudShadowColor)

	title = truncateWithEllipsis(drawer.Face, title, titleRect.Dx()-titlePaddingX*2)
	turnText = truncateWithEllipsis(drawer.Face, turnText, turnRect.Dx()-turnPaddingX*2)

	drawRoundedPanel(img, titleRect, radius, hudPanelColor)
	drawRoundedPanel(img, scoreRect, radius, hudPanelColor)
	drawRoundedPanel(img, turnRect, radius, hudTurnPanelColor)

	drawCenteredString(drawer, titleRect, title, hudTextPrimary)
	drawCenteredString(drawer, scoreRect, scoreText, hudTextPrimary)
	drawCenteredString(drawer, turnRect, turnText, hudTurnTextColor)
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || maxWidth <= 0 || face == nil {
		return trimmed
	}

	drawer := font.Drawer{Face: face}
	if drawer.MeasureString(trimmed).Round() <= maxWidth {
		return trimmed
	}

	ellipsis := "..."
	if drawer.MeasureString(ellipsis).Round() > maxWidth {
		return ""
	}

	runes := []rune(trimmed)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + ellipsis
		if drawer.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}

func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if img == nil || rect.Empty() {
		return
	}
	if radius < 0 {
		radius = 0
	}
	maxRadius := rect.Dx() / 2
	if r := rect.Dy() / 2; r < maxRadius {
		maxRadius = r
	}
	if radius > maxRadius {
		radius = maxRadius
	}
	fill := image.NewUniform(clr)
	if radius == 0 {
		imagedraw.Draw(img, rect, fill, image.Point{}, imagedraw.Over)
		return
	}

	core := image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y)
	if core.Dx() > 0 {
		imagedraw.Draw(img, core, fill, image.Point{}, imagedraw.Over)
	}
	leftRect := image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Min.X+radius, rect.Max.Y-radius)
	if leftRect.Dx() > 0 {
		imagedraw.Draw(img, leftRect, fill, image.Point{}, imagedraw.Over)
	}
	rightRect := image.Rect(rect.Max.X-radius, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius)
	if rightRect.Dx() > 0 {
		imagedraw.Draw(img, rightRect, fill, image.Point{}, imagedraw.Over)
	}

	corners := []image.Point{
		{rect.Min.X + radius, rect.Min.Y + radius},
		{rect.Max.X - radius - 1, rect.Min.Y + radius},
		{rect.Min.X + radius, rect.Max.Y - radius - 1},
		{rect.Max.X - radius - 1, rect.Max.Y - radius - 1},
	}
	for _, center := range corners {
		drawDisc(img, center, radius, clr)
	}
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	if drawer == nil {
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := rect.Min.X + (rect.Dx()-width)/2
	if x < rect.Min.X {
		x = rect.Min.X
	}
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func drawCoordinates(dst imagedraw.Image, squareSize int, origin image.Point, margin int) {
	drawer := &font.Drawer{
		Dst:  dst,
		Face: hudFace(),
		Src:  image.NewUniform(coordinateTextColor),
	}

	ascent := drawer.Face.Metrics().Ascent.Ceil()
	boardEndY := origin.Y + 8*squareSize

	for row := 0; row < 8; row++ {
		rankLabel := fmt.Sprintf("%d", 8-row)
		baseline := origin.Y + row*squareSize + squareSize/2 + ascent/2
		drawCenteredText(drawer, rankLabel, origin.X-margin/2, baseline)
	}
	for col := 0; col < 8; col++ {
		fileLabel := string(rune('a' + col))
		centerX := origin.X + col*squareSize + squareSize/2
		drawCenteredText(drawer, fileLabel, centerX, boardEndY+ascent+4)
	}
}

func drawDisc(img *image.RGBA, center image.Point, radius int, clr color.Color) {
	if radius <= 0 {
		blendPixel(img, center.X, center.Y, clr)
		return
	}
	rSquared := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y > rSquared {
				continue
			}
			blendPixel(img, center.X+x, center.Y+y, clr)
		}
	}
}

func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if img == nil {
		return
	}
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}

	sr, sg, sb, sa := clr.RGBA()
	srcA := float64(sa) / 65535.0
	if srcA <= 0 {
		return
	}
	srcR := float64(sr) / 65535.0
	srcG := float64(sg) / 65535.0
	srcB := float64(sb) / 65535.0

	dst := img.RGBAAt(x, y)
	dstA := float64(dst.A) / 255.0

	var dstR, dstG, dstB float64
	if dstA > 0 {
		inv := 1.0 / dstA
		dstR = float64(dst.R) / 255.0 * inv
		dstG = float64(dst.G) / 255.0 * inv
		dstB = float64(dst.B) / 255.0 * inv
	}

	outA := srcA + dstA*(1-srcA)
	if outA <= 0 {
		img.SetRGBA(x, y, color.RGBA{})
		return
	}

	outR := (srcR*srcA + dstR*dstA*(1-srcA)) / outA
	outG := (srcG*srcA + dstG*dstA*(1-srcA)) / outA
	outB := (srcB*srcA + dstB*dstA*(1-srcA)) / outA

	img.SetRGBA(x, y, color.RGBA{
		R: floatToUint8(outR * outA * 255.0),
		G: floatToUint8(outG * outA * 255.0),
		B: floatToUint8(outB * outA * 255.0),
		A: floatToUint8(outA * 255.0),
	})
}

func floatToUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func squareRect(idx, squareSize int, origin image.Point) image.Rectangle {
	x := origin.X + checkers.ColOf(idx)*squareSize
	y := origin.Y + checkers.RowOf(idx)*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}
