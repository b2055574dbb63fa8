package detector

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/vanban-tech/vanban/internal/fields"
	"github.com/vanban-tech/vanban/internal/onnx"
	"github.com/vanban-tech/vanban/internal/utils"
)

// Config configures the ONNX region detector.
type Config struct {
	ModelPath   string
	LibraryPath string
	InputSize   int
	NumThreads  int
}

// DefaultConfig returns the detector defaults for the bundled YOLO model.
func DefaultConfig() Config {
	return Config{InputSize: 640}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.ModelPath == "" {
		return errors.New("detector model path is required")
	}
	if _, err := os.Stat(c.ModelPath); err != nil {
		return fmt.Errorf("detector model not found: %w", err)
	}
	if c.InputSize <= 0 {
		return fmt.Errorf("invalid detector input size %d", c.InputSize)
	}
	return nil
}

// ONNXDetector runs a YOLO-style region detection model through ONNX
// Runtime. Output rows decode as (x1, y1, x2, y2, confidence, class) in
// model input coordinates.
type ONNXDetector struct {
	mu      sync.Mutex
	config  Config
	session *ort.DynamicAdvancedSession
}

// NewONNX creates a detector session for the given model.
func NewONNX(config Config) (*ONNXDetector, error) {
	if config.InputSize == 0 {
		config.InputSize = DefaultConfig().InputSize
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := onnx.EnsureRuntime(config.LibraryPath); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(config.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("read model info: %w", err)
	}
	if len(inputs) < 1 || len(outputs) < 1 {
		return nil, errors.New("model must have at least one input and output")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer func() {
		if err := options.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "destroy session options: %v\n", err)
		}
	}()
	if config.NumThreads > 0 {
		if err := options.SetIntraOpNumThreads(config.NumThreads); err != nil {
			return nil, fmt.Errorf("set thread count: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(config.ModelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, options)
	if err != nil {
		return nil, fmt.Errorf("create detector session: %w", err)
	}
	return &ONNXDetector{config: config, session: session}, nil
}

// Detect runs inference and returns regions in page pixel coordinates.
func (d *ONNXDetector) Detect(img image.Image) ([]Detection, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session == nil {
		return nil, errors.New("detector is closed")
	}

	size := d.config.InputSize
	tensor, err := onnx.ImageToNCHW(img, size, size)
	if err != nil {
		return nil, fmt.Errorf("prepare detector input: %w", err)
	}

	input, err := ort.NewTensor(ort.NewShape(tensor.Shape...), tensor.Data)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer func() {
		if err := input.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "destroy input tensor: %v\n", err)
		}
	}()

	outputs := []ort.Value{nil}
	if err := d.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("detector inference: %w", err)
	}
	output := outputs[0]
	defer func() {
		if err := output.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "destroy output tensor: %v\n", err)
		}
	}()

	floatOutput, ok := output.(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("expected float32 output tensor, got %T", output)
	}

	bounds := img.Bounds()
	scaleX := float64(bounds.Dx()) / float64(size)
	scaleY := float64(bounds.Dy()) / float64(size)
	return decodeDetections(floatOutput.GetData(), output.GetShape(), scaleX, scaleY)
}

// Close releases the underlying session.
func (d *ONNXDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session == nil {
		return nil
	}
	err := d.session.Destroy()
	d.session = nil
	return err
}

// decodeDetections parses flat model output into detections, scaling
// boxes from model input coordinates back to page coordinates. Rows with
// unknown class ids are dropped.
func decodeDetections(data []float32, shape []int64, scaleX, scaleY float64) ([]Detection, error) {
	rows, stride, err := rowLayout(shape, len(data))
	if err != nil {
		return nil, err
	}

	detections := make([]Detection, 0, rows)
	for i := 0; i < rows; i++ {
		row := data[i*stride : i*stride+stride]
		class := fields.Class(int(row[5]))
		if !class.Valid() {
			continue
		}
		detections = append(detections, Detection{
			Class:      class,
			Confidence: float64(row[4]),
			Box: utils.NewBox(
				float64(row[0])*scaleX,
				float64(row[1])*scaleY,
				float64(row[2])*scaleX,
				float64(row[3])*scaleY,
			),
		})
	}
	return detections, nil
}

// rowLayout derives (rows, stride) from the output shape, accepting
// [N, 6] and [1, N, 6] layouts.
func rowLayout(shape []int64, dataLen int) (int, int, error) {
	var rows, stride int
	switch len(shape) {
	case 2:
		rows, stride = int(shape[0]), int(shape[1])
	case 3:
		if shape[0] != 1 {
			return 0, 0, fmt.Errorf("unexpected batch dimension %d", shape[0])
		}
		rows, stride = int(shape[1]), int(shape[2])
	default:
		return 0, 0, fmt.Errorf("unexpected output rank %d", len(shape))
	}
	if stride < 6 {
		return 0, 0, fmt.Errorf("detection row stride %d < 6", stride)
	}
	if rows*stride > dataLen {
		return 0, 0, fmt.Errorf("output data length %d < %d rows of stride %d", dataLen, rows, stride)
	}
	return rows, stride, nil
}
