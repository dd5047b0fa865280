package detect

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// YOLOConfig holds YOLOv8 model parameters.
type YOLOConfig struct {
	ModelPath        string
	ConfidenceThresh float32
	NMSThresh        float32
	InputWidth       int
	InputHeight      int
}

// DefaultYOLOConfig returns production defaults for YOLOv8n.
func DefaultYOLOConfig() YOLOConfig {
	return YOLOConfig{
		ModelPath:        "models/yolov8n.onnx",
		ConfidenceThresh: 0.25,
		NMSThresh:        0.45,
		InputWidth:       640,
		InputHeight:      640,
	}
}

// YOLODetector runs YOLOv8 via the gocv DNN module and exposes the raw
// boxes through the RawDetector contract. The low built-in confidence
// floor leaves final thresholding to the ModelAdapter.
type YOLODetector struct {
	net       gocv.Net
	cfg       YOLOConfig
	mu        sync.Mutex
	inputSize image.Point
}

// NewYOLO loads the ONNX model and prepares the network.
func NewYOLO(cfg YOLOConfig) (*YOLODetector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load YOLO model from %s", cfg.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &YOLODetector{
		net:       net,
		cfg:       cfg,
		inputSize: image.Pt(cfg.InputWidth, cfg.InputHeight),
	}, nil
}

// Name identifies the detector in logs.
func (d *YOLODetector) Name() string { return "yolov8" }

// DetectRaw runs one forward pass and decodes the output tensor.
func (d *YOLODetector) DetectRaw(ctx context.Context, f *Frame) ([]RawBox, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if f.Mat.Empty() {
		return nil, fmt.Errorf("empty frame")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blob := gocv.BlobFromImage(f.Mat, 1.0/255.0, d.inputSize, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	return d.decode(output, float32(f.Width), float32(f.Height)), nil
}

// decode parses the YOLOv8 output tensor.
// Shape is [1, 84, 8400]: 4 box values plus 80 class scores per anchor.
func (d *YOLODetector) decode(output gocv.Mat, imgW, imgH float32) []RawBox {
	rows := output.Cols() // anchors
	cols := output.Rows() // 4 + classes

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil
	}

	var boxes []image.Rectangle
	var confidences []float32
	var classIDs []int

	for i := 0; i < rows; i++ {
		maxScore := float32(0)
		maxClassID := 0
		for c := 4; c < cols; c++ {
			if score := data[c*rows+i]; score > maxScore {
				maxScore = score
				maxClassID = c - 4
			}
		}
		if maxScore < d.cfg.ConfidenceThresh {
			continue
		}

		cx := data[0*rows+i]
		cy := data[1*rows+i]
		w := data[2*rows+i]
		h := data[3*rows+i]

		x1 := int((cx - w/2) * imgW / float32(d.cfg.InputWidth))
		y1 := int((cy - h/2) * imgH / float32(d.cfg.InputHeight))
		x2 := int((cx + w/2) * imgW / float32(d.cfg.InputWidth))
		y2 := int((cy + h/2) * imgH / float32(d.cfg.InputHeight))

		boxes = append(boxes, image.Rect(x1, y1, x2, y2))
		confidences = append(confidences, maxScore)
		classIDs = append(classIDs, maxClassID)
	}

	if len(boxes) == 0 {
		return nil
	}

	indices := gocv.NMSBoxes(boxes, confidences, d.cfg.ConfidenceThresh, d.cfg.NMSThresh)

	raw := make([]RawBox, 0, len(indices))
	for _, idx := range indices {
		box := boxes[idx]
		name := ""
		if classIDs[idx] < len(COCOClasses) {
			name = COCOClasses[classIDs[idx]]
		}
		raw = append(raw, RawBox{
			ClassID:    classIDs[idx],
			ClassName:  name,
			Confidence: float64(confidences[idx]),
			X:          box.Min.X,
			Y:          box.Min.Y,
			W:          box.Dx(),
			H:          box.Dy(),
		})
	}
	return raw
}

// Close releases the network.
func (d *YOLODetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}

// COCOClasses contains the 80 COCO class names in model output order.
var COCOClasses = []string{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat",
	"dog", "horse", "sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack",
	"umbrella", "handbag", "tie", "suitcase", "frisbee", "skis", "snowboard", "sports ball",
	"kite", "baseball bat", "baseball glove", "skateboard", "surfboard", "tennis racket",
	"bottle", "wine glass", "cup", "fork", "knife", "spoon", "bowl", "banana", "apple",
	"sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut", "cake", "chair",
	"couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink", "refrigerator",
	"book", "clock", "vase", "scissors", "teddy bear", "hair drier", "toothbrush",
}

// Verify YOLODetector implements RawDetector at compile time.
var _ RawDetector = (*YOLODetector)(nil)
