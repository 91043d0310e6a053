package services

import (
	"bytes"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sourcing/models"
)

func TestBuildRFQQRLabel(t *testing.T) {
	sub := &models.RFQSubmission{
		Reference: "RFQ-AB12345",
		RFQData:   models.RFQData{Title: "Foldable Camp Table", Quantity: 1000, Deadline: "2024-03-01"},
	}

	out, err := BuildRFQQRLabel(sub, "https://app.example/rfqs/sub-1/respond")
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	b := img.Bounds()
	assert.Equal(t, labelQRSize, b.Dx())
	// four text rows under the code
	assert.Equal(t, labelQRSize+2*labelPadding+4*labelLineHeight, b.Dy())
}

func TestEllipsize(t *testing.T) {
	assert.Equal(t, "short", ellipsize("short", 10))
	assert.Equal(t, "Foldable...", ellipsize("Foldable Camp Table", 11))
}
