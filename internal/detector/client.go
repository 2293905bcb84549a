package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/SeakMengs/OpenSight/internal/config"
	"github.com/SeakMengs/OpenSight/internal/util"
	"go.uber.org/zap"
)

const maxErrorBody = 4 << 10

// Client talks to the inference sidecar over HTTP:
//
//	POST /predict  multipart "file"   -> {"detections": [...]}
//	POST /train    JSON TrainRequest  -> TrainResult
//	GET  /health
type Client struct {
	baseURL   string
	http      *http.Client
	trainHTTP *http.Client
	logger    *zap.SugaredLogger
}

func NewClient(cfg config.DetectorConfig, logger *zap.SugaredLogger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.URL, "/"),
		http:      &http.Client{Timeout: cfg.Timeout},
		trainHTTP: &http.Client{Timeout: cfg.TrainTimeout},
		logger:    logger,
	}
}

func (c *Client) Predict(ctx context.Context, imagePath string) ([]Detection, error) {
	c.logger.Debugf("Predict on image %s", imagePath)

	file, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}

	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result struct {
		Detections []Detection `json:"detections"`
	}
	if err := c.do(c.http, req, &result); err != nil {
		return nil, err
	}

	if result.Detections == nil {
		result.Detections = []Detection{}
	}

	return result.Detections, nil
}

func (c *Client) Train(ctx context.Context, trainReq TrainRequest) (*TrainResult, error) {
	c.logger.Infof("Start training with manifest %s on device %s", trainReq.Data, trainReq.Device)

	payload, err := json.Marshal(trainReq)
	if err != nil {
		return nil, fmt.Errorf("encode train request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/train", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result TrainResult
	if err := c.do(c.trainHTTP, req, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	return c.do(c.http, req, nil)
}

// do sends req and decodes a 200 JSON reply into out when out is not nil.
func (c *Client) do(client *http.Client, req *http.Request, out any) error {
	if rid := util.RequestIDFromContext(req.Context()); rid != "" {
		req.Header.Set(util.RequestIDHeader, rid)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s %s returned %d: %s", ErrUnavailable, req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
