package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sourcing/services"
)

// GenerateRFQQRCodeHandler godoc
// @Summary      RFQ QR label
// @Description  Printable JPEG with a QR code pointing at the supplier reply page and the RFQ reference underneath.
// @Tags         export
// @Produce      image/jpeg
// @Security     BearerAuth
// @Param        id   path      string  true  "RFQ ID"
// @Success      200  {file}    file    "JPEG image"
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/rfqs/{id}/qr [get]
func GenerateRFQQRCodeHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, ok := loadSubmission(c, d, c.Param("id"))
		if !ok {
			return
		}

		out, err := services.BuildRFQQRLabel(sub, d.rfqLink(sub.ID)+"/respond")
		if err != nil {
			d.Logger.Error("failed to build rfq qr label", zap.String("rfq_id", sub.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "QR code generation failed"})
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("inline; filename=rfq_%s_qr.jpg", sub.Reference))
		c.Data(http.StatusOK, "image/jpeg", out)
	}
}
