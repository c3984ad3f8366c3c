package predict

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Service       *Service
	MaxUploadSize int64
}

func NewHandler(svc *Service, maxUploadSize int64) *Handler {
	return &Handler{Service: svc, MaxUploadSize: maxUploadSize}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/predict", h.predict) // POST /api/predict (multipart: image, anonymousId)
}

func (h *Handler) predict(c *gin.Context) {
	if h.MaxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadSize)
	}

	fh, err := c.FormFile("image")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusBadRequest, ErrorBody{Message: "The image file is too large."})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorBody{Message: MsgImageRequired})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorBody{Message: MsgImageRequired})
		return
	}
	defer f.Close()

	image, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorBody{Message: MsgImageRequired})
		return
	}

	res := h.Service.Handle(c.Request.Context(), image, c.PostForm("anonymousId"))
	c.JSON(res.Status, res.Body)
}
