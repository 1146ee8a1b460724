package telegram

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"medassist/api/internal/assist"
	"medassist/api/internal/util"
)

const maxDocumentBytes = 15 << 20

// acceptPhoto queues a report page. Pages of one album, or photos sent in
// quick succession, are stitched into a single image before analysis.
func (r *Router) acceptPhoto(msg tgbotapi.Message) {
	cid := msg.Chat.ID
	ph := msg.Photo[len(msg.Photo)-1]
	imgBytes, err := r.fetch(context.Background(), ph.FileID)
	if err != nil {
		r.SendError(cid, err)
		return
	}

	key := fmt.Sprintf("chat:%d", cid)
	if msg.MediaGroupID != "" {
		key = "grp:" + msg.MediaGroupID
	}

	bi, _ := batches.LoadOrStore(key, &photoBatch{ChatID: cid, Key: key, images: make([][]byte, 0, 4)})
	b := bi.(*photoBatch)

	b.mu.Lock()
	b.images = append(b.images, imgBytes)
	first := len(b.images) == 1
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(debounce, func() { r.processBatch(key) })
	b.mu.Unlock()

	if first {
		r.send(cid, "Got it. If the report has more pages, send them now and I'll read them together.")
	}
}

func (r *Router) processBatch(key string) {
	bi, ok := batches.LoadAndDelete(key)
	if !ok {
		return
	}
	b := bi.(*photoBatch)

	b.mu.Lock()
	images := append([][]byte(nil), b.images...)
	chatID := b.ChatID
	b.mu.Unlock()

	if len(images) == 0 {
		return
	}
	data := images[0]
	if len(images) > 1 {
		merged, err := combineAsOne(images)
		if err != nil {
			r.SendError(chatID, &assist.Error{Op: assist.OpReport, Kind: assist.ErrInput, Err: err})
			return
		}
		data = merged
	}
	r.analyzeReport(context.Background(), chatID, &assist.Blob{Data: data, MIMEType: util.PickMIME("", "", data)})
}

// acceptDocument analyzes a PDF or image sent as a file.
func (r *Router) acceptDocument(ctx context.Context, msg tgbotapi.Message) {
	cid := msg.Chat.ID
	doc := msg.Document
	if doc.FileSize > maxDocumentBytes {
		r.send(cid, "That file is too large. Please send a report under 15 MB.")
		return
	}
	data, err := r.fetch(ctx, doc.FileID)
	if err != nil {
		r.SendError(cid, err)
		return
	}
	mime := util.PickMIME("", "", data)
	if !supportedReport(mime) {
		r.send(cid, "I can read PDFs and images. Please send the report in one of those formats.")
		return
	}
	r.analyzeReport(ctx, cid, &assist.Blob{Data: data, MIMEType: mime})
}

func supportedReport(mime string) bool {
	m := util.BaseMIME(mime)
	return m == "application/pdf" || strings.HasPrefix(m, "image/")
}

func (r *Router) fetch(ctx context.Context, fileID string) ([]byte, error) {
	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}
	return download(ctx, url)
}

func combineAsOne(images [][]byte) ([]byte, error) {
	decoded := make([]image.Image, 0, len(images))
	maxW, sumH := 0, 0
	for _, b := range images {
		img, err := decodeImage(b)
		if err != nil {
			return nil, err
		}
		decoded = append(decoded, img)
		bounds := img.Bounds()
		maxW = max(maxW, bounds.Dx())
		sumH += bounds.Dy()
	}
	if maxW == 0 || sumH == 0 {
		return nil, fmt.Errorf("empty images")
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxW, sumH))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	y := 0
	for _, img := range decoded {
		w, h := img.Bounds().Dx(), img.Bounds().Dy()
		x := (maxW - w) / 2
		draw.Draw(dst, image.Rect(x, y, x+w, y+h), img, img.Bounds().Min, draw.Over)
		y += h
	}

	final := image.Image(dst)
	if totalPx := maxW * sumH; totalPx > maxPixels {
		scale := math.Sqrt(float64(maxPixels) / float64(totalPx))
		newW := max(1, int(float64(maxW)*scale+0.5))
		newH := max(1, int(float64(sumH)*scale+0.5))
		final = scaleDownNN(dst, newW, newH)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, final, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func decodeImage(b []byte) (image.Image, error) {
	switch util.PickMIME("", "", b) {
	case "image/jpeg":
		return jpeg.Decode(bytes.NewReader(b))
	case "image/png":
		return png.Decode(bytes.NewReader(b))
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	return img, err
}

func scaleDownNN(src image.Image, newW, newH int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	sb := src.Bounds()
	srcW, srcH := sb.Dx(), sb.Dy()
	for y := 0; y < newH; y++ {
		sy := sb.Min.Y + (y*srcH)/newH
		for x := 0; x < newW; x++ {
			sx := sb.Min.X + (x*srcW)/newW
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}

func download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("download: status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
}

var httpClient = &http.Client{Timeout: 60 * time.Second}
