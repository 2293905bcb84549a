package detector

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/SeakMengs/OpenSight/internal/config"
	"github.com/SeakMengs/OpenSight/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.DetectorConfig{
		URL:          srv.URL + "/",
		Timeout:      5 * time.Second,
		TrainTimeout: 5 * time.Second,
	}, zap.NewNop().Sugar())
}

func TestClientPredict(t *testing.T) {
	imagePath := filepath.Join(t.TempDir(), "cat.png")
	require.NoError(t, os.WriteFile(imagePath, []byte("image-bytes"), 0644))

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, _ := io.ReadAll(file)
		assert.Equal(t, "cat.png", header.Filename)
		assert.Equal(t, "image-bytes", string(data))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"detections":[{"x1":10,"y1":20,"x2":110,"y2":70,"confidence":0.9,"class_id":15,"label":"cat"}]}`)
	}))

	detections, err := client.Predict(context.Background(), imagePath)
	require.NoError(t, err)
	require.Len(t, detections, 1)

	ann := detections[0].ToAnnotation("auto-1")
	assert.Equal(t, 10.0, ann.X)
	assert.Equal(t, 20.0, ann.Y)
	assert.Equal(t, 100.0, ann.Width)
	assert.Equal(t, 50.0, ann.Height)
	assert.Equal(t, "cat", ann.Label)
}

func TestClientPredictEmpty(t *testing.T) {
	imagePath := filepath.Join(t.TempDir(), "empty.png")
	require.NoError(t, os.WriteFile(imagePath, []byte("x"), 0644))

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	}))

	detections, err := client.Predict(context.Background(), imagePath)
	require.NoError(t, err)
	assert.NotNil(t, detections)
	assert.Empty(t, detections)
}

func TestClientTrain(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/train", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "req-42", r.Header.Get(util.RequestIDHeader))

		var req TrainRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "/data/p1/dataset/data.yaml", req.Data)
		assert.Equal(t, 3, req.Epochs)
		assert.Equal(t, 320, req.ImageSize)
		assert.Equal(t, "auto", req.Device)

		io.WriteString(w, `{"weights":"/runs/p1/weights/best.pt","metrics":{"mAP50":0.71}}`)
	}))

	// training runs detached from the http request but keeps its request id
	ctx := context.WithoutCancel(util.WithRequestID(context.Background(), "req-42"))

	result, err := client.Train(ctx, TrainRequest{
		Data:      "/data/p1/dataset/data.yaml",
		Epochs:    3,
		ImageSize: 320,
		Device:    "auto",
		Model:     "yolov8n.pt",
	})
	require.NoError(t, err)
	assert.Equal(t, "/runs/p1/weights/best.pt", result.WeightsPath)
	assert.Equal(t, 0.71, result.Metrics["mAP50"])
}

func TestClientErrors(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))

	err := client.Health(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.True(t, strings.Contains(err.Error(), "model not loaded"))

	unreachable := NewClient(config.DetectorConfig{URL: "http://127.0.0.1:1", Timeout: time.Second}, zap.NewNop().Sugar())
	assert.ErrorIs(t, unreachable.Health(context.Background()), ErrUnavailable)

	_, err = client.Predict(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestProposals(t *testing.T) {
	detections := []Detection{
		{X1: 0, Y1: 0, X2: 10, Y2: 10, Confidence: 0.2, Label: "cat"},
		{X1: 5, Y1: 5, X2: 15, Y2: 25, Confidence: 0.8, Label: "dog"},
	}

	all, err := Proposals(detections, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.NotEqual(t, all[0].ID, all[1].ID)
	assert.True(t, strings.HasPrefix(all[0].ID, "auto-"))

	confident, err := Proposals(detections, 0.5)
	require.NoError(t, err)
	require.Len(t, confident, 1)
	assert.Equal(t, "dog", confident[0].Label)
	assert.Equal(t, 20.0, confident[0].Height)
}
