package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"

	"sourcing/models"
)

const (
	labelQRSize     = 512
	labelPadding    = 30
	labelLineHeight = 28
	labelValueX     = 140
)

func drawText(img *image.RGBA, x, y int, text string, face font.Face, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

func ellipsize(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// BuildRFQQRLabel renders a printable JPEG: a QR code for respondURL above
// the RFQ reference, title, quantity and deadline.
func BuildRFQQRLabel(sub *models.RFQSubmission, respondURL string) ([]byte, error) {
	qr, err := qrcode.New(respondURL, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr code generation failed: %w", err)
	}
	qrImg := qr.Image(labelQRSize)
	qrSize := qrImg.Bounds().Dy()

	rows := [][2]string{
		{"Reference:", sub.Reference},
		{"Title:", ellipsize(sub.RFQData.Title, 28)},
	}
	if sub.RFQData.Quantity > 0 {
		rows = append(rows, [2]string{"Quantity:", fmt.Sprintf("%d", sub.RFQData.Quantity)})
	}
	if sub.RFQData.Deadline != "" {
		rows = append(rows, [2]string{"Deadline:", sub.RFQData.Deadline})
	}

	textHeight := len(rows)*labelLineHeight + labelPadding
	img := image.NewRGBA(image.Rect(0, 0, qrSize, qrSize+labelPadding+textHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, qrSize, qrSize), qrImg, image.Point{}, draw.Src)

	separatorY := qrSize + labelPadding/2
	for x := 0; x < qrSize; x++ {
		img.Set(x, separatorY, color.RGBA{R: 200, G: 200, B: 200, A: 255})
	}

	y := qrSize + labelPadding + labelLineHeight/2
	for _, row := range rows {
		drawText(img, 20, y, row[0], inconsolata.Bold8x16, color.RGBA{R: 30, G: 30, B: 30, A: 255})
		drawText(img, labelValueX, y, row[1], inconsolata.Regular8x16, color.Black)
		y += labelLineHeight
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("jpeg encoding failed: %w", err)
	}
	return buf.Bytes(), nil
}
