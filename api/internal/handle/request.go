package handle

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"medassist/api/internal/assist"
	"medassist/api/internal/util"
)

type fileReq struct {
	Data     string `json:"data" binding:"required"` // base64 or data: URI
	MIMEType string `json:"mimeType" binding:"omitempty,mediatype"`
}

type profileReq struct {
	Age        int      `json:"age" binding:"omitempty,min=0,max=150"`
	Weight     float64  `json:"weight" binding:"omitempty,gt=0,lt=700"`
	Conditions []string `json:"conditions" binding:"omitempty,max=50,dive,max=200"`
	Symptoms   string   `json:"symptoms" binding:"max=4000"`
}

func (p *profileReq) toProfile() *assist.Profile {
	if p == nil {
		return nil
	}
	return &assist.Profile{
		Age:        p.Age,
		Weight:     p.Weight,
		Conditions: p.Conditions,
		Symptoms:   p.Symptoms,
	}
}

// bind decodes the JSON body and writes a 400/413 on failure.
func bind(c *gin.Context, dst any) bool {
	return bindErr(c, c.ShouldBindJSON(dst))
}

// bindOptional is bind for endpoints whose body may be empty, whatever
// the Content-Length says.
func bindOptional(c *gin.Context, dst any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	err := c.ShouldBindJSON(dst)
	if errors.Is(err, io.EOF) {
		return true
	}
	return bindErr(c, err)
}

func bindErr(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body is too large"})
		return false
	}
	badRequest(c, "invalid request: "+err.Error())
	return false
}

// blob decodes an uploaded file. A nil request yields a nil blob.
func (f *fileReq) blob() (*assist.Blob, error) {
	if f == nil || strings.TrimSpace(f.Data) == "" {
		return nil, nil
	}
	data, hint, err := util.DecodeBase64MaybeDataURL(f.Data)
	if err != nil {
		return nil, errors.New("file.data is not valid base64")
	}
	return &assist.Blob{Data: data, MIMEType: util.PickMIME(f.MIMEType, hint, data)}, nil
}
